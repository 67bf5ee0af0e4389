// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClearDesk Contributors

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleardesk-hq/cleardesk/internal/evaluate"
)

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval <dataset.yaml>",
		Short: "Evaluate retrieval quality against a ground-truth dataset",
		Long:  "Run every dataset query against the index and report Recall@k, Precision@k, and MRR.",
		Args:  cobra.ExactArgs(1),
		RunE:  runEval,
	}

	cmd.Flags().IntP("k", "k", 0, "metric cutoff; 0 uses the dataset or configured value")
	cmd.Flags().Bool("json", false, "print the full result as JSON")

	return cmd
}

func runEval(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	ds, err := evaluate.LoadDataset(args[0])
	if err != nil {
		return err
	}

	rt, err := buildRuntime(ctx, cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	k, _ := cmd.Flags().GetInt("k")
	if k <= 0 {
		k = rt.cfg.Evaluation.K
	}

	result, err := evaluate.NewEvaluator(rt.retriever, k, rt.logger).Run(ctx, ds)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if ds.K > 0 {
		k = ds.K
	}
	fmt.Fprintf(out, "Dataset: %s (%d queries)\n", ds.Name, result.TotalQueries)
	fmt.Fprintf(out, "Recall@%d:    %.3f\n", k, result.MeanRecall)
	fmt.Fprintf(out, "Precision@%d: %.3f\n", k, result.MeanPrecision)
	fmt.Fprintf(out, "MRR:         %.3f\n", result.MRR)
	return nil
}
