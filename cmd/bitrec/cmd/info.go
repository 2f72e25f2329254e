// Copyright 2026 The bitrec Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bpowers/bitrec"
	"github.com/bpowers/bitrec/query"
)

func newInfoCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Print a store's capacity, occupancy and digest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := stringFlag(cmd, "store", a.cfg.Store)
			s, err := bitrec.Open(path, bitrec.WithLogger(a.logger))
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			digest, err := s.Digest()
			if err != nil {
				return err
			}
			written, err := s.FindAll(cmd.Context(), query.New(query.RequireChecksum()))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "path:     %s\n", path)
			fmt.Fprintf(out, "capacity: %d\n", s.Capacity())
			fmt.Fprintf(out, "bytes:    %d\n", s.Capacity()*8)
			fmt.Fprintf(out, "valid:    %d\n", written.GetCardinality())
			fmt.Fprintf(out, "digest:   %016x\n", digest)
			return nil
		},
	}
	cmd.Flags().StringP("store", "s", "", "store path (default from config)")
	return cmd
}
