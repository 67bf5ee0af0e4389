// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClearDesk Contributors

package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root cleardesk command with all subcommands
// registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cleardesk",
		Short:         "ClearDesk — access-safe document retrieval",
		Long:          "ClearDesk ingests organisational documents, masks PII, and serves role-filtered semantic search.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringP("config", "c", "", "path to config file")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newServeCmd(),
		newIngestCmd(),
		newQueryCmd(),
		newEvalCmd(),
		newSecretCmd(),
		newVersionCmd(),
	)

	return root
}

// newLogger builds the command logger; --verbose lowers the level to
// debug.
func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
