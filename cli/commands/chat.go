package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/HyperbeeAI/hyperbee-go/core"
)

func (a *App) newChatCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Send a chat completion request",
		Long: `Send a chat completion request.

Without --namespace the request goes to the chat backend; with it, the
pipeline backend answers from the documents in that namespace.

Examples:
  hyperbee chat --model hive --prompt "Hello"
  hyperbee chat --prompt "What is our leave policy?" --namespace handbook
  hyperbee chat --prompt "Hello" --stream
  hyperbee chat --prompt "Hello" --json`,
		RunE: a.runChat,
	}

	cmd.Flags().StringVar(&a.chatPrompt, "prompt", "", "User message (required)")
	cmd.Flags().StringVar(&a.chatSystem, "system", "", "System message")
	cmd.Flags().StringVar(&a.chatNamespace, "namespace", "", "Document namespace; routes to the pipeline backend")
	cmd.Flags().Float64Var(&a.chatTemperature, "temperature", 0, "Temperature (0 = use default)")
	cmd.Flags().IntVar(&a.chatMaxTokens, "max-tokens", 0, "Max tokens (0 = use default)")
	cmd.Flags().BoolVar(&a.chatStream, "stream", false, "Enable streaming output")
	_ = cmd.MarkFlagRequired("prompt")

	return cmd
}

func (a *App) runChat(cmd *cobra.Command, args []string) error {
	model, err := a.requireModel()
	if err != nil {
		return err
	}
	client, err := a.client()
	if err != nil {
		return err
	}

	params := core.ChatCompletionParams{
		Model:     model,
		Namespace: a.chatNamespace,
	}
	if a.chatSystem != "" {
		params.Messages = append(params.Messages, core.Message{Role: core.RoleSystem, Content: a.chatSystem})
	}
	params.Messages = append(params.Messages, core.Message{Role: core.RoleUser, Content: a.chatPrompt})
	if a.chatTemperature > 0 {
		params.Temperature = &a.chatTemperature
	}
	if a.chatMaxTokens > 0 {
		params.MaxTokens = &a.chatMaxTokens
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if !a.chatStream {
		resp, err := client.Chat.Completions.Create(ctx, params)
		if err != nil {
			return fail(err)
		}
		if a.jsonOutput {
			return a.outputJSON(resp)
		}
		fmt.Fprintf(a.stdout, "> %s\n", a.chatPrompt)
		fmt.Fprintln(a.stdout, resp.Text())
		a.logUsage(resp.Usage)
		return nil
	}

	stream, err := client.Chat.Completions.CreateStream(ctx, params)
	if err != nil {
		return fail(err)
	}
	defer stream.Close()

	if a.jsonOutput {
		// Accumulate for JSON output
		resp, err := core.DrainChat(ctx, stream)
		if err != nil {
			return fail(err)
		}
		return a.outputJSON(resp)
	}

	fmt.Fprintf(a.stdout, "> %s\n", a.chatPrompt)
	var usage *core.Usage
	for chunk := range stream.Ch {
		for _, choice := range chunk.Choices {
			if choice.Index == 0 {
				fmt.Fprint(a.stdout, choice.Delta.Content)
			}
		}
		if chunk.Usage != nil {
			usage = chunk.Usage
		}
	}
	fmt.Fprintln(a.stdout)

	if err := <-stream.Err; err != nil {
		return fail(err)
	}
	a.logUsage(usage)
	return nil
}

func (a *App) newCompleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "complete",
		Short: "Send a text completion request",
		Long: `Send a text completion request to the chat backend.

Example:
  hyperbee complete --model hive --prompt "Once upon a time"`,
		RunE: a.runComplete,
	}

	cmd.Flags().StringVar(&a.completePrompt, "prompt", "", "Prompt (required)")
	cmd.Flags().IntVar(&a.completeMaxTokens, "max-tokens", 0, "Max tokens (0 = use default)")
	cmd.Flags().BoolVar(&a.completeStream, "stream", false, "Enable streaming output")
	_ = cmd.MarkFlagRequired("prompt")

	return cmd
}

func (a *App) runComplete(cmd *cobra.Command, args []string) error {
	model, err := a.requireModel()
	if err != nil {
		return err
	}
	client, err := a.client()
	if err != nil {
		return err
	}

	params := core.CompletionParams{Model: model, Prompt: a.completePrompt}
	if a.completeMaxTokens > 0 {
		params.MaxTokens = &a.completeMaxTokens
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var resp *core.Completion
	if a.completeStream {
		stream, err := client.Completions.CreateStream(ctx, params)
		if err != nil {
			return fail(err)
		}
		defer stream.Close()
		resp, err = core.DrainCompletion(ctx, stream)
		if err != nil {
			return fail(err)
		}
	} else {
		resp, err = client.Completions.Create(ctx, params)
		if err != nil {
			return fail(err)
		}
	}

	if a.jsonOutput {
		return a.outputJSON(resp)
	}
	fmt.Fprintln(a.stdout, resp.Text())
	a.logUsage(resp.Usage)
	return nil
}

func (a *App) logUsage(usage *core.Usage) {
	if !a.verbose || usage == nil {
		return
	}
	fmt.Fprintf(a.stderr, "Usage: %d prompt + %d completion = %d total tokens\n",
		usage.PromptTokens, usage.CompletionTokens, usage.TotalTokens)
}

func (a *App) outputJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return exitWithCode(ExitValidation, errors.New("failed to encode output: "+err.Error()))
	}
	return nil
}
