// Copyright 2026 The bitrec Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package cmd

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bpowers/bitrec"
	"github.com/bpowers/bitrec/query"
	"github.com/bpowers/bitrec/search"
)

// parseRange parses an inclusive "min:max" range.  Either bound may be
// omitted, and a bare number is a single-value range.
func parseRange(s string) (lo, hi uint16, err error) {
	loStr, hiStr, found := strings.Cut(s, ":")
	if !found {
		hiStr = loStr
	}
	lo, hi = 0, math.MaxUint16
	if loStr != "" {
		if lo, err = parseUint16(loStr); err != nil {
			return 0, 0, fmt.Errorf("range %q: %w", s, err)
		}
	}
	if hiStr != "" {
		if hi, err = parseUint16(hiStr); err != nil {
			return 0, 0, fmt.Errorf("range %q: %w", s, err)
		}
	}
	if lo > hi {
		return 0, 0, fmt.Errorf("range %q: %w", s, query.ErrInvalidRange)
	}
	return lo, hi, nil
}

// parseUint16 accepts decimal, 0x hex, 0o octal and 0b binary.
func parseUint16(s string) (uint16, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 16)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}

func buildQuery(cmd *cobra.Command) (query.Query, error) {
	var opts []query.Option
	if s, _ := cmd.Flags().GetString("value"); s != "" {
		lo, hi, err := parseRange(s)
		if err != nil {
			return query.Query{}, fmt.Errorf("--value: %w", err)
		}
		opts = append(opts, query.ValueRange(lo, hi))
	}
	if s, _ := cmd.Flags().GetString("position"); s != "" {
		lo, hi, err := parseRange(s)
		if err != nil {
			return query.Query{}, fmt.Errorf("--position: %w", err)
		}
		opts = append(opts, query.PositionRange(lo, hi))
	}
	if s, _ := cmd.Flags().GetString("flags"); s != "" {
		mask, err := parseUint16(s)
		if err != nil {
			return query.Query{}, fmt.Errorf("--flags: %w", err)
		}
		opts = append(opts, query.Flags(mask))
	}
	if checksum, _ := cmd.Flags().GetBool("checksum"); checksum {
		opts = append(opts, query.RequireChecksum())
	}
	q := query.New(opts...)
	return q, q.Validate()
}

func newQueryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Find records matching range and flag criteria",
		Long: `Find the first record matching range and flag criteria, or with --all
every matching slot.

The linear mode always returns the lowest matching slot.  The binary
mode probes far fewer slots but assumes an ordering the store does not
guarantee, so it can miss matches.

Example:
  bitrec query --value 100:200 --position 5000:10000 --flags 0x8 --checksum`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := stringFlag(cmd, "store", a.cfg.Store)
			mode := a.cfg.Mode()
			if cmd.Flags().Changed("mode") {
				v, _ := cmd.Flags().GetString("mode")
				m, err := search.ParseMode(v)
				if err != nil {
					return err
				}
				mode = m
			}
			q, err := buildQuery(cmd)
			if err != nil {
				return err
			}

			s, err := bitrec.Open(path, bitrec.WithLogger(a.logger), bitrec.WithSearchMode(mode))
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			out := cmd.OutOrStdout()
			if all, _ := cmd.Flags().GetBool("all"); all {
				limit, _ := cmd.Flags().GetInt("limit")
				bm, err := s.FindAll(cmd.Context(), q)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%d matching records\n", bm.GetCardinality())
				it := bm.Iterator()
				for i := 0; it.HasNext() && (limit <= 0 || i < limit); i++ {
					slot := int64(it.Next())
					r, err := s.Record(slot)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "%d: %s\n", slot, r)
				}
				return nil
			}

			start := time.Now()
			m, ok, err := s.FindFirstContext(cmd.Context(), q)
			if err != nil {
				return err
			}
			if ok {
				fmt.Fprintf(out, "First matching record found at slot: %d\n", m.Slot)
				fmt.Fprintln(out, m.Record)
			} else {
				fmt.Fprintln(out, "No matching record found")
			}
			fmt.Fprintf(out, "Query took: %s\n", time.Since(start))
			return nil
		},
	}
	cmd.Flags().StringP("store", "s", "", "store path (default from config)")
	cmd.Flags().String("value", "", "inclusive value range, min:max")
	cmd.Flags().String("position", "", "inclusive position range, min:max")
	cmd.Flags().String("flags", "", "flag bits that must all be set, e.g. 0x8")
	cmd.Flags().Bool("checksum", false, "only match records whose checksum validates")
	cmd.Flags().String("mode", "", "search mode: linear or binary (default from config)")
	cmd.Flags().Bool("all", false, "list every matching slot instead of the first")
	cmd.Flags().Int("limit", 20, "with --all, the most records to print (0 for no limit)")
	return cmd
}
