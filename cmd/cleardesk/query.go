// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClearDesk Contributors

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleardesk-hq/cleardesk/internal/rbac"
)

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <text>...",
		Short: "Search the index",
		Long:  "Run a semantic query with role-based result filtering. Without --roles the caller sees only public documents.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runQuery,
	}

	cmd.Flags().IntP("top-k", "k", 0, "number of results; 0 uses the configured default")
	cmd.Flags().StringSlice("roles", nil, "caller roles for access filtering")
	cmd.Flags().String("department", "", "restrict results to one department")
	cmd.Flags().String("user", "cli", "caller identifier")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := buildRuntime(ctx, cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	topK, _ := cmd.Flags().GetInt("top-k")
	roles, _ := cmd.Flags().GetStringSlice("roles")
	department, _ := cmd.Flags().GetString("department")
	userID, _ := cmd.Flags().GetString("user")

	var filters map[string]any
	if department != "" {
		filters = map[string]any{"department": department}
	}

	user := rbac.User{ID: userID, Roles: roles}
	result, err := rt.guard.RetrieveAsUser(ctx, strings.Join(args, " "), user, topK, filters)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if result.TotalResults == 0 {
		fmt.Fprintln(out, "No results.")
		return nil
	}

	for i, hit := range result.Hits {
		source, _ := hit.Metadata["filename"].(string)
		if source == "" {
			source = hit.ID
		}
		fmt.Fprintf(out, "%d. [%.4f] %s\n   %s\n", i+1, hit.Score, source, snippet(hit.Text, 200))
	}
	return nil
}

func snippet(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}
