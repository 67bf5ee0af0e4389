// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClearDesk Contributors

package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cleardesk-hq/cleardesk/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the ClearDesk HTTP server",
		Long:  "Load configuration, wire the ingestion and retrieval pipeline, and serve the REST API until interrupted.",
		RunE:  runServe,
	}

	cmd.Flags().String("listen", "", "override listen address (host:port)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := buildRuntime(ctx, cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	listen := rt.cfg.Server.Listen
	if flagListen, _ := cmd.Flags().GetString("listen"); flagListen != "" {
		listen = flagListen
	}

	srv, err := server.New(server.Config{
		ListenAddr:  listen,
		CORSOrigins: rt.cfg.Server.CORSOrigins,
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	srv.RegisterServices(&server.Services{
		Pipeline:  rt.pipeline,
		Retriever: rt.retriever,
		Guard:     rt.guard,
	})

	rt.logger.Info("starting cleardesk",
		"listen", listen,
		"embedding", rt.cfg.Embedding.Provider,
		"vector_backend", rt.cfg.Vector.Backend,
	)
	return srv.Start(ctx)
}
