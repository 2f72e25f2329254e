// Copyright 2026 The bitrec Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bpowers/bitrec"
)

// errCorrupt is returned so the process exits non-zero.
var errCorrupt = errors.New("store has corrupt records")

func newVerifyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check every stored record's checksum",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := stringFlag(cmd, "store", a.cfg.Store)
			s, err := bitrec.Open(path, bitrec.WithLogger(a.logger))
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			bad, err := s.Verify(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if bad.IsEmpty() {
				fmt.Fprintf(out, "%s: ok\n", path)
				return nil
			}
			fmt.Fprintf(out, "%s: %d corrupt records\n", path, bad.GetCardinality())
			it := bad.Iterator()
			for i := 0; it.HasNext() && i < 20; i++ {
				slot := int64(it.Next())
				r, err := s.Record(slot)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%d: %s\n", slot, r)
			}
			return errCorrupt
		},
	}
	cmd.Flags().StringP("store", "s", "", "store path (default from config)")
	return cmd
}
