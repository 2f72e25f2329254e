// Copyright 2026 The bitrec Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bpowers/bitrec"
)

func newImportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Rebuild a store from a snapshot",
		Long: `Rebuild a store from a snapshot written by export.  The snapshot's
digest is checked before the command succeeds.

Example:
  bitrec import --in store.snap --store memory_mapped.dat`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := stringFlag(cmd, "store", a.cfg.Store)
			inPath, _ := cmd.Flags().GetString("in")

			f, err := os.Open(inPath)
			if err != nil {
				return fmt.Errorf("os.Open: %w", err)
			}
			defer func() { _ = f.Close() }()

			s, err := bitrec.Import(bufio.NewReader(f), path, bitrec.WithLogger(a.logger))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d records into %s\n", s.Capacity(), path)
			return s.Close()
		},
	}
	cmd.Flags().StringP("store", "s", "", "store path (default from config)")
	cmd.Flags().StringP("in", "i", "", "snapshot path")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}
