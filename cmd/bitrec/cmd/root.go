// Copyright 2026 The bitrec Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package cmd implements the bitrec command line.
package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bpowers/bitrec/internal/config"
)

// app is the state shared by every subcommand once flags are parsed.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewRootCmd builds the bitrec command tree.
func NewRootCmd() *cobra.Command {
	a := &app{cfg: config.DefaultConfig()}

	root := &cobra.Command{
		Use:   "bitrec",
		Short: "bitrec - packed 16-bit records in a memory mapped file",
		Long: `bitrec stores (value, position, flags) triples packed with a CRC-16
checksum into 64-bit words in a memory mapped file, and answers
range and flag queries over them.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().String("config", "", "YAML config file")
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		newGenCmd(a),
		newBuildCmd(a),
		newQueryCmd(a),
		newVerifyCmd(a),
		newInfoCmd(a),
		newExportCmd(a),
		newImportCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		a.cfg.Logging.Level = level
	}
	level, err := config.ParseLevel(a.cfg.Logging.Level)
	if err != nil {
		return err
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}

// stringFlag returns the named flag if it was set on the command line,
// otherwise the config value.
func stringFlag(cmd *cobra.Command, name, fallback string) string {
	if !cmd.Flags().Changed(name) {
		return fallback
	}
	v, _ := cmd.Flags().GetString(name)
	return v
}

func int64Flag(cmd *cobra.Command, name string, fallback int64) int64 {
	if !cmd.Flags().Changed(name) {
		return fallback
	}
	v, _ := cmd.Flags().GetInt64(name)
	return v
}

// Execute runs the root command, exiting non-zero on failure.  An
// interrupt cancels the running command's context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
