package hyperbee

import (
	"context"

	"github.com/HyperbeeAI/hyperbee-go/core"
)

// RawResources mirrors the resource handles but returns RawResponse.
type RawResources struct {
	Completions *RawCompletionsService
	Chat        *RawChatService
	Models      *RawModelsService
}

// RawCompletionsService is CompletionsService returning raw responses.
type RawCompletionsService struct{ cc *clientCore }

// RawChatService groups the raw chat endpoints.
type RawChatService struct {
	Completions *RawChatCompletionsService
}

// RawChatCompletionsService is ChatCompletionsService returning raw responses.
type RawChatCompletionsService struct{ cc *clientCore }

// RawModelsService is ModelsService returning raw responses.
type RawModelsService struct{ cc *clientCore }

func newRawResources(cc *clientCore) *RawResources {
	return &RawResources{
		Completions: &RawCompletionsService{cc: cc},
		Chat:        &RawChatService{Completions: &RawChatCompletionsService{cc: cc}},
		Models:      &RawModelsService{cc: cc},
	}
}

// Create requests a completion.
func (s *RawCompletionsService) Create(ctx context.Context, params core.CompletionParams) (*RawResponse, error) {
	op, err := completionsOperation(params, false)
	if err != nil {
		return nil, err
	}
	return doRaw(ctx, s.cc, op)
}

// Create requests a chat completion.
func (s *RawChatCompletionsService) Create(ctx context.Context, params core.ChatCompletionParams) (*RawResponse, error) {
	op, err := chatOperation(params, false)
	if err != nil {
		return nil, err
	}
	return doRaw(ctx, s.cc, op)
}

// List lists the models.
func (s *RawModelsService) List(ctx context.Context) (*RawResponse, error) {
	return doRaw(ctx, s.cc, listModelsOperation())
}

// Retrieve fetches one model.
func (s *RawModelsService) Retrieve(ctx context.Context, id core.ModelID) (*RawResponse, error) {
	op, err := retrieveModelOperation(id)
	if err != nil {
		return nil, err
	}
	return doRaw(ctx, s.cc, op)
}

// StreamingResources mirrors the resource handles but returns
// StreamedResponse with the body unread.
type StreamingResources struct {
	Completions *StreamingCompletionsService
	Chat        *StreamingChatService
	Models      *StreamingModelsService
}

// StreamingCompletionsService is CompletionsService returning unread bodies.
// With params.Stream set the body carries server-sent events.
type StreamingCompletionsService struct{ cc *clientCore }

// StreamingChatService groups the streaming chat endpoints.
type StreamingChatService struct {
	Completions *StreamingChatCompletionsService
}

// StreamingChatCompletionsService is ChatCompletionsService returning unread bodies.
type StreamingChatCompletionsService struct{ cc *clientCore }

// StreamingModelsService is ModelsService returning unread bodies.
type StreamingModelsService struct{ cc *clientCore }

func newStreamingResources(cc *clientCore) *StreamingResources {
	return &StreamingResources{
		Completions: &StreamingCompletionsService{cc: cc},
		Chat:        &StreamingChatService{Completions: &StreamingChatCompletionsService{cc: cc}},
		Models:      &StreamingModelsService{cc: cc},
	}
}

// Create requests a completion.
func (s *StreamingCompletionsService) Create(ctx context.Context, params core.CompletionParams) (*StreamedResponse, error) {
	op, err := completionsOperation(params, params.Stream)
	if err != nil {
		return nil, err
	}
	return doStreaming(ctx, s.cc, op)
}

// Create requests a chat completion.
func (s *StreamingChatCompletionsService) Create(ctx context.Context, params core.ChatCompletionParams) (*StreamedResponse, error) {
	op, err := chatOperation(params, params.Stream)
	if err != nil {
		return nil, err
	}
	return doStreaming(ctx, s.cc, op)
}

// List lists the models.
func (s *StreamingModelsService) List(ctx context.Context) (*StreamedResponse, error) {
	return doStreaming(ctx, s.cc, listModelsOperation())
}

// Retrieve fetches one model.
func (s *StreamingModelsService) Retrieve(ctx context.Context, id core.ModelID) (*StreamedResponse, error) {
	op, err := retrieveModelOperation(id)
	if err != nil {
		return nil, err
	}
	return doStreaming(ctx, s.cc, op)
}
