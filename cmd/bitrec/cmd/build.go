// Copyright 2026 The bitrec Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bpowers/bitrec"
	"github.com/bpowers/bitrec/internal/dataset"
	"github.com/bpowers/bitrec/record"
)

func newBuildCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a store from a dataset",
		Long: `Build a store from a dataset.  Line i of the dataset becomes slot i,
with position i % 65536 and the even-position flag set on even
positions.  Slots past the end of the dataset stay zero.  The store
is built in a temporary file and only replaces an existing store once
the whole dataset has loaded.

Example:
  bitrec build --dataset dataset.txt --store memory_mapped.dat`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := stringFlag(cmd, "dataset", a.cfg.Dataset)
			path := stringFlag(cmd, "store", a.cfg.Store)
			capacity := int64Flag(cmd, "capacity", a.cfg.Capacity)

			f, err := os.Open(in)
			if err != nil {
				return fmt.Errorf("os.Open: %w", err)
			}
			defer func() { _ = f.Close() }()

			s, err := bitrec.Build(path, capacity, bitrec.WithLogger(a.logger))
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			n, err := s.Load(cmd.Context(), dataset.NewReader(f, record.EvenPositionFlags))
			if err != nil {
				return fmt.Errorf("loading %s: %w", in, err)
			}
			if err := s.Commit(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "loaded %d records into %s (capacity %d)\n", n, path, capacity)
			return s.Close()
		},
	}
	cmd.Flags().String("dataset", "", "dataset path (default from config)")
	cmd.Flags().StringP("store", "s", "", "store path (default from config)")
	cmd.Flags().Int64("capacity", 0, "store capacity in records (default from config)")
	return cmd
}
