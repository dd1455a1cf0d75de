package hyperbee

import (
	"context"

	"github.com/HyperbeeAI/hyperbee-go/core"
)

// Future is the pending result of an async call.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// goFuture runs fn on its own goroutine.
func goFuture[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.value, f.err = fn(ctx)
	}()
	return f
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the call finishes or ctx ends. Cancelling ctx only
// stops the wait; cancel the context passed to the call to abort it.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// AsyncClient is the asynchronous HyperBee client: each call starts on
// its own goroutine and returns a Future. It shares the request core with
// Client but marks requests as async and uses its own pipeline default.
type AsyncClient struct {
	*clientCore

	Completions *AsyncCompletionsService
	Chat        *AsyncChatService
	Models      *AsyncModelsService
	Pipeline    *AsyncPipelineService

	WithRawResponse       *AsyncRawResources
	WithStreamingResponse *AsyncStreamingResources
}

// NewAsync creates an async client. Configuration resolution is the same
// as New.
func NewAsync(opts ...Option) (*AsyncClient, error) {
	cc, err := build(variantAsync, newOptions(variantAsync), opts)
	if err != nil {
		return nil, err
	}
	return newAsyncClient(cc), nil
}

func newAsyncClient(cc *clientCore) *AsyncClient {
	sc := newClient(cc)
	return &AsyncClient{
		clientCore:  cc,
		Completions: &AsyncCompletionsService{s: sc.Completions},
		Chat:        &AsyncChatService{Completions: &AsyncChatCompletionsService{s: sc.Chat.Completions}},
		Models:      &AsyncModelsService{s: sc.Models},
		Pipeline:    &AsyncPipelineService{s: sc.Pipeline},
		WithRawResponse: &AsyncRawResources{
			Completions: &AsyncRawCompletionsService{s: sc.WithRawResponse.Completions},
			Chat:        &AsyncRawChatService{Completions: &AsyncRawChatCompletionsService{s: sc.WithRawResponse.Chat.Completions}},
			Models:      &AsyncRawModelsService{s: sc.WithRawResponse.Models},
		},
		WithStreamingResponse: &AsyncStreamingResources{
			Completions: &AsyncStreamingCompletionsService{s: sc.WithStreamingResponse.Completions},
			Chat:        &AsyncStreamingChatService{Completions: &AsyncStreamingChatCompletionsService{s: sc.WithStreamingResponse.Chat.Completions}},
			Models:      &AsyncStreamingModelsService{s: sc.WithStreamingResponse.Models},
		},
	}
}

// WithOptions returns a new async client built from this client's
// configuration plus opts. c is not modified.
func (c *AsyncClient) WithOptions(opts ...Option) (*AsyncClient, error) {
	cc, err := build(variantAsync, optionsFrom(c.clientCore), opts)
	if err != nil {
		return nil, err
	}
	return newAsyncClient(cc), nil
}

// Copy is an alias for WithOptions.
func (c *AsyncClient) Copy(opts ...Option) (*AsyncClient, error) {
	return c.WithOptions(opts...)
}

// AsyncCompletionsService is the async form of CompletionsService.
type AsyncCompletionsService struct{ s *CompletionsService }

// Create starts a completion request.
func (a *AsyncCompletionsService) Create(ctx context.Context, params core.CompletionParams) *Future[*core.Completion] {
	return goFuture(ctx, func(ctx context.Context) (*core.Completion, error) {
		return a.s.Create(ctx, params)
	})
}

// CreateStream starts a streamed completion request. The future resolves
// once the response headers arrive.
func (a *AsyncCompletionsService) CreateStream(ctx context.Context, params core.CompletionParams) *Future[*core.Stream[core.Completion]] {
	return goFuture(ctx, func(ctx context.Context) (*core.Stream[core.Completion], error) {
		return a.s.CreateStream(ctx, params)
	})
}

// AsyncChatService groups the async chat endpoints.
type AsyncChatService struct {
	Completions *AsyncChatCompletionsService
}

// AsyncChatCompletionsService is the async form of ChatCompletionsService.
type AsyncChatCompletionsService struct{ s *ChatCompletionsService }

// Create starts a chat completion request.
func (a *AsyncChatCompletionsService) Create(ctx context.Context, params core.ChatCompletionParams) *Future[*core.ChatCompletion] {
	return goFuture(ctx, func(ctx context.Context) (*core.ChatCompletion, error) {
		return a.s.Create(ctx, params)
	})
}

// CreateStream starts a streamed chat completion request.
func (a *AsyncChatCompletionsService) CreateStream(ctx context.Context, params core.ChatCompletionParams) *Future[*core.Stream[core.ChatCompletionChunk]] {
	return goFuture(ctx, func(ctx context.Context) (*core.Stream[core.ChatCompletionChunk], error) {
		return a.s.CreateStream(ctx, params)
	})
}

// AsyncModelsService is the async form of ModelsService.
type AsyncModelsService struct{ s *ModelsService }

// List starts listing the models.
func (a *AsyncModelsService) List(ctx context.Context) *Future[*core.ModelList] {
	return goFuture(ctx, a.s.List)
}

// Retrieve starts fetching one model.
func (a *AsyncModelsService) Retrieve(ctx context.Context, id core.ModelID) *Future[*core.Model] {
	return goFuture(ctx, func(ctx context.Context) (*core.Model, error) {
		return a.s.Retrieve(ctx, id)
	})
}

// AsyncPipelineService is the async form of PipelineService.
type AsyncPipelineService struct{ s *PipelineService }

// Create starts a pipeline query.
func (a *AsyncPipelineService) Create(ctx context.Context, params core.PipelineParams) *Future[*core.PipelineResponse] {
	return goFuture(ctx, func(ctx context.Context) (*core.PipelineResponse, error) {
		return a.s.Create(ctx, params)
	})
}

// AsyncRawResources is the async form of RawResources.
type AsyncRawResources struct {
	Completions *AsyncRawCompletionsService
	Chat        *AsyncRawChatService
	Models      *AsyncRawModelsService
}

// AsyncRawCompletionsService returns raw completions responses as futures.
type AsyncRawCompletionsService struct{ s *RawCompletionsService }

// Create starts RawCompletionsService.Create on its own goroutine.
func (a *AsyncRawCompletionsService) Create(ctx context.Context, params core.CompletionParams) *Future[*RawResponse] {
	return goFuture(ctx, func(ctx context.Context) (*RawResponse, error) {
		return a.s.Create(ctx, params)
	})
}

// AsyncRawChatService groups the raw async chat resources.
type AsyncRawChatService struct {
	Completions *AsyncRawChatCompletionsService
}

// AsyncRawChatCompletionsService returns raw chat completion responses as futures.
type AsyncRawChatCompletionsService struct{ s *RawChatCompletionsService }

// Create starts RawChatCompletionsService.Create on its own goroutine.
func (a *AsyncRawChatCompletionsService) Create(ctx context.Context, params core.ChatCompletionParams) *Future[*RawResponse] {
	return goFuture(ctx, func(ctx context.Context) (*RawResponse, error) {
		return a.s.Create(ctx, params)
	})
}

// AsyncRawModelsService returns raw models responses as futures.
type AsyncRawModelsService struct{ s *RawModelsService }

// List starts RawModelsService.List on its own goroutine.
func (a *AsyncRawModelsService) List(ctx context.Context) *Future[*RawResponse] {
	return goFuture(ctx, a.s.List)
}

// Retrieve starts RawModelsService.Retrieve on its own goroutine.
func (a *AsyncRawModelsService) Retrieve(ctx context.Context, id core.ModelID) *Future[*RawResponse] {
	return goFuture(ctx, func(ctx context.Context) (*RawResponse, error) {
		return a.s.Retrieve(ctx, id)
	})
}

// AsyncStreamingResources is the async form of StreamingResources.
type AsyncStreamingResources struct {
	Completions *AsyncStreamingCompletionsService
	Chat        *AsyncStreamingChatService
	Models      *AsyncStreamingModelsService
}

// AsyncStreamingCompletionsService resolves to completions responses with the body unread.
type AsyncStreamingCompletionsService struct{ s *StreamingCompletionsService }

// Create starts StreamingCompletionsService.Create on its own goroutine.
func (a *AsyncStreamingCompletionsService) Create(ctx context.Context, params core.CompletionParams) *Future[*StreamedResponse] {
	return goFuture(ctx, func(ctx context.Context) (*StreamedResponse, error) {
		return a.s.Create(ctx, params)
	})
}

// AsyncStreamingChatService groups the streaming async chat resources.
type AsyncStreamingChatService struct {
	Completions *AsyncStreamingChatCompletionsService
}

// AsyncStreamingChatCompletionsService resolves to chat completion responses with the body unread.
type AsyncStreamingChatCompletionsService struct{ s *StreamingChatCompletionsService }

// Create starts StreamingChatCompletionsService.Create on its own goroutine.
func (a *AsyncStreamingChatCompletionsService) Create(ctx context.Context, params core.ChatCompletionParams) *Future[*StreamedResponse] {
	return goFuture(ctx, func(ctx context.Context) (*StreamedResponse, error) {
		return a.s.Create(ctx, params)
	})
}

// AsyncStreamingModelsService resolves to models responses with the body unread.
type AsyncStreamingModelsService struct{ s *StreamingModelsService }

// List starts StreamingModelsService.List on its own goroutine.
func (a *AsyncStreamingModelsService) List(ctx context.Context) *Future[*StreamedResponse] {
	return goFuture(ctx, a.s.List)
}

// Retrieve starts StreamingModelsService.Retrieve on its own goroutine.
func (a *AsyncStreamingModelsService) Retrieve(ctx context.Context, id core.ModelID) *Future[*StreamedResponse] {
	return goFuture(ctx, func(ctx context.Context) (*StreamedResponse, error) {
		return a.s.Retrieve(ctx, id)
	})
}
