package hyperbee

import (
	"context"
	"net/http"

	"github.com/HyperbeeAI/hyperbee-go/core"
	"github.com/HyperbeeAI/hyperbee-go/internal/validate"
)

const chatCompletionsPath = "chat/completions"

// ChatService groups the chat endpoints.
type ChatService struct {
	Completions *ChatCompletionsService
}

// ChatCompletionsService calls the chat completions endpoint. Requests
// with a Namespace are answered by the pipeline backend.
type ChatCompletionsService struct {
	cc *clientCore
}

func chatOperation(params core.ChatCompletionParams, stream bool) (operation, error) {
	if err := params.Validate(); err != nil {
		return operation{}, err
	}
	params.Stream = stream
	return operation{
		method:    http.MethodPost,
		path:      chatCompletionsPath,
		namespace: params.Namespace,
		body:      params,
		schema:    validate.ChatCompletion,
	}, nil
}

// Create requests a chat completion and waits for the full response.
func (s *ChatCompletionsService) Create(ctx context.Context, params core.ChatCompletionParams) (*core.ChatCompletion, error) {
	op, err := chatOperation(params, false)
	if err != nil {
		return nil, err
	}
	return doDecoded[core.ChatCompletion](ctx, s.cc, op)
}

// CreateStream requests a chat completion as server-sent events.
//
//	stream, err := client.Chat.Completions.CreateStream(ctx, params)
//	if err != nil {
//	    return err
//	}
//	defer stream.Close()
//	for chunk := range stream.Ch {
//	    for _, c := range chunk.Choices {
//	        fmt.Print(c.Delta.Content)
//	    }
//	}
//	if err := <-stream.Err; err != nil {
//	    return err
//	}
func (s *ChatCompletionsService) CreateStream(ctx context.Context, params core.ChatCompletionParams) (*core.Stream[core.ChatCompletionChunk], error) {
	op, err := chatOperation(params, true)
	if err != nil {
		return nil, err
	}
	return doSSE[core.ChatCompletionChunk](ctx, s.cc, op)
}
