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
	"github.com/bpowers/bitrec/internal/snapshot"
)

func newExportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a compressed snapshot of a store",
		Long: `Write a compressed snapshot of a store.

Example:
  bitrec export --store memory_mapped.dat --out store.snap --codec lz4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := stringFlag(cmd, "store", a.cfg.Store)
			codec, err := snapshot.ParseCodec(stringFlag(cmd, "codec", a.cfg.SnapshotCodec))
			if err != nil {
				return err
			}
			outPath, _ := cmd.Flags().GetString("out")

			s, err := bitrec.Open(path, bitrec.WithLogger(a.logger))
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("os.Create: %w", err)
			}
			w := bufio.NewWriter(f)
			if err := s.Export(w, codec); err != nil {
				_ = f.Close()
				return err
			}
			if err := w.Flush(); err != nil {
				_ = f.Close()
				return fmt.Errorf("bufio.Flush: %w", err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("f.Close: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %s to %s (%s)\n", path, outPath, codec)
			return nil
		},
	}
	cmd.Flags().StringP("store", "s", "", "store path (default from config)")
	cmd.Flags().StringP("out", "o", "", "snapshot path")
	cmd.Flags().String("codec", "", "compression: zstd or lz4 (default from config)")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
