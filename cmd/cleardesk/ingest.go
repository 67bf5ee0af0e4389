// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClearDesk Contributors

package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/cleardesk-hq/cleardesk/internal/ingest"
)

func newIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <file>...",
		Short: "Ingest documents into the index",
		Long:  "Parse, PII-mask, chunk, and index one or more text documents.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runIngest,
	}

	cmd.Flags().String("department", "", "owning department")
	cmd.Flags().StringSlice("roles", nil, "roles allowed to read; empty means public")
	cmd.Flags().String("uploaded-by", "", "uploader identifier")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := buildRuntime(ctx, cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	department, _ := cmd.Flags().GetString("department")
	roles, _ := cmd.Flags().GetStringSlice("roles")
	uploadedBy, _ := cmd.Flags().GetString("uploaded-by")

	out := cmd.OutOrStdout()
	for _, path := range args {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		doc, err := rt.pipeline.Ingest(content, path, ingest.Options{
			UploadedBy:  uploadedBy,
			Department:  department,
			AccessRoles: roles,
		})
		if err != nil {
			return fmt.Errorf("ingesting %s: %w", path, err)
		}

		indexed, err := rt.retriever.IndexChunks(ctx, doc.Chunks, doc.Metadata.DocumentID)
		if err != nil {
			return fmt.Errorf("indexing %s: %w", path, err)
		}

		fmt.Fprintf(out, "%s: document %s, %d chunks indexed%s\n",
			path, doc.Metadata.DocumentID, indexed, piiSummary(doc.Metadata.PIIDetected))
	}

	return nil
}

func piiSummary(detected map[string]int) string {
	if len(detected) == 0 {
		return ""
	}
	types := make([]string, 0, len(detected))
	for t := range detected {
		types = append(types, t)
	}
	sort.Strings(types)

	s := ", PII masked:"
	for _, t := range types {
		s += fmt.Sprintf(" %s=%d", t, detected[t])
	}
	return s
}
