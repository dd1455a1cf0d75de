package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/HyperbeeAI/hyperbee-go/core"
)

func (a *App) newModelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "models [id]",
		Short: "List models, or show one model",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			if len(args) == 1 {
				model, err := client.Models.Retrieve(ctx, core.ModelID(args[0]))
				if err != nil {
					return fail(err)
				}
				if a.jsonOutput {
					return a.outputJSON(model)
				}
				fmt.Fprintf(a.stdout, "%s\n", model.ID)
				if model.OwnedBy != "" {
					fmt.Fprintf(a.stdout, "  owned by: %s\n", model.OwnedBy)
				}
				return nil
			}

			list, err := client.Models.List(ctx)
			if err != nil {
				return fail(err)
			}
			if a.jsonOutput {
				return a.outputJSON(list)
			}
			if len(list.Data) == 0 {
				fmt.Fprintln(a.stdout, "No models available.")
				return nil
			}
			for _, m := range list.Data {
				fmt.Fprintln(a.stdout, m.ID)
			}
			return nil
		},
	}
}
