package hyperbee

import (
	"context"
	"net/http"

	"github.com/HyperbeeAI/hyperbee-go/core"
	"github.com/HyperbeeAI/hyperbee-go/internal/validate"
)

const completionsPath = "completions"

// CompletionsService calls the text completions endpoint.
type CompletionsService struct {
	cc *clientCore
}

func completionsOperation(params core.CompletionParams, stream bool) (operation, error) {
	if err := params.Validate(); err != nil {
		return operation{}, err
	}
	params.Stream = stream
	return operation{
		method:    http.MethodPost,
		path:      completionsPath,
		namespace: params.Namespace,
		body:      params,
		schema:    validate.Completion,
	}, nil
}

// Create requests a completion and waits for the full response.
func (s *CompletionsService) Create(ctx context.Context, params core.CompletionParams) (*core.Completion, error) {
	op, err := completionsOperation(params, false)
	if err != nil {
		return nil, err
	}
	return doDecoded[core.Completion](ctx, s.cc, op)
}

// CreateStream requests a completion as server-sent events.
func (s *CompletionsService) CreateStream(ctx context.Context, params core.CompletionParams) (*core.Stream[core.Completion], error) {
	op, err := completionsOperation(params, true)
	if err != nil {
		return nil, err
	}
	return doSSE[core.Completion](ctx, s.cc, op)
}
