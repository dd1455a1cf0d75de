package hyperbee

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/HyperbeeAI/hyperbee-go/core"
)

// DefaultBatchConcurrency bounds in-flight requests of a batch.
const DefaultBatchConcurrency = 4

// BatchParams lists chat completions to run together. Each request is
// routed on its own Namespace.
type BatchParams struct {
	Requests    []core.ChatCompletionParams
	Concurrency int
}

// BatchItem is the outcome of one request, at the same index as in
// BatchParams.Requests.
type BatchItem struct {
	Index      int
	Completion *core.ChatCompletion
	Err        error
}

// BatchResult holds one item per request, in input order.
type BatchResult struct {
	Items []BatchItem
}

// Failed returns the items that returned an error.
func (r *BatchResult) Failed() []BatchItem {
	var failed []BatchItem
	for _, item := range r.Items {
		if item.Err != nil {
			failed = append(failed, item)
		}
	}
	return failed
}

// BatchRequestService runs many chat completions concurrently.
type BatchRequestService struct {
	chat *ChatCompletionsService
}

// Create runs every request with bounded concurrency. A failing request
// does not stop the others; its error is recorded on its item. Create
// itself fails only on empty input or when ctx ends.
func (s *BatchRequestService) Create(ctx context.Context, params BatchParams) (*BatchResult, error) {
	if len(params.Requests) == 0 {
		return nil, core.ConfigurationError("batch must contain at least one request")
	}
	limit := params.Concurrency
	if limit <= 0 {
		limit = DefaultBatchConcurrency
	}

	result := &BatchResult{Items: make([]BatchItem, len(params.Requests))}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, req := range params.Requests {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				result.Items[i] = BatchItem{Index: i, Err: err}
				return nil
			}
			completion, err := s.chat.Create(gctx, req)
			result.Items[i] = BatchItem{Index: i, Completion: completion, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}
