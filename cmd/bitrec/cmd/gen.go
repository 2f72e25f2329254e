// Copyright 2026 The bitrec Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bpowers/bitrec/internal/dataset"
)

const defaultGenCount = 10_000_000

func newGenCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Write a synthetic dataset",
		Long: `Write a synthetic dataset: one value per line, value i being i % 65536.

Example:
  bitrec gen --out dataset.txt --count 10000000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := stringFlag(cmd, "out", a.cfg.Dataset)
			count, _ := cmd.Flags().GetInt64("count")
			if count < 0 {
				return fmt.Errorf("--count must be >= 0, got %d", count)
			}

			start := time.Now()
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("os.Create: %w", err)
			}
			if err := dataset.Generate(f, count); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("f.Close: %w", err)
			}
			a.logger.Info("generated dataset", "path", out, "count", count, "duration", time.Since(start))
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d values to %s\n", count, out)
			return nil
		},
	}
	cmd.Flags().StringP("out", "o", "", "dataset path (default from config)")
	cmd.Flags().Int64P("count", "n", defaultGenCount, "number of values to write")
	return cmd
}
