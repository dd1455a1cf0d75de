package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/HyperbeeAI/hyperbee-go/core"
)

func (a *App) newPipelineCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Ask a question against a document namespace",
		Long: `Query the pipeline (RAG) backend. The answer is built from the
documents stored under the namespace.

Example:
  hyperbee pipeline --namespace handbook --query "How many leave days do I get?"`,
		RunE: a.runPipeline,
	}

	cmd.Flags().StringVar(&a.pipelineNamespace, "namespace", "", "Document namespace (default: default_namespace from config)")
	cmd.Flags().StringVar(&a.pipelineQuery, "query", "", "Question (required)")
	cmd.Flags().IntVar(&a.pipelineTopK, "top-k", 0, "Number of sources to retrieve (0 = use default)")
	_ = cmd.MarkFlagRequired("query")

	return cmd
}

func (a *App) runPipeline(cmd *cobra.Command, args []string) error {
	client, err := a.client()
	if err != nil {
		return err
	}

	namespace := a.pipelineNamespace
	if namespace == "" {
		namespace = a.cfg.DefaultNamespace
	}
	params := core.PipelineParams{
		Namespace: namespace,
		Query:     a.pipelineQuery,
		Model:     core.ModelID(a.model),
	}
	if a.pipelineTopK > 0 {
		params.TopK = &a.pipelineTopK
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	resp, err := client.Pipeline.Create(ctx, params)
	if err != nil {
		return fail(err)
	}

	if a.jsonOutput {
		return a.outputJSON(resp)
	}
	fmt.Fprintln(a.stdout, resp.Answer)
	if len(resp.Sources) > 0 {
		fmt.Fprintln(a.stdout, "\nSources:")
		for _, s := range resp.Sources {
			fmt.Fprintf(a.stdout, "  - %s (%.2f)\n", s.DocumentID, s.Score)
		}
	}
	a.logUsage(resp.Usage)
	return nil
}
