package hyperbee

import (
	"context"
	"net/http"

	"github.com/HyperbeeAI/hyperbee-go/core"
	"github.com/HyperbeeAI/hyperbee-go/internal/validate"
)

const pipelinePath = "pipeline"

// PipelineService queries documents stored under a namespace on the
// pipeline (RAG) backend.
type PipelineService struct {
	cc *clientCore
}

// Create runs a pipeline query. params.Namespace is required.
func (s *PipelineService) Create(ctx context.Context, params core.PipelineParams) (*core.PipelineResponse, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return doDecoded[core.PipelineResponse](ctx, s.cc, operation{
		method:    http.MethodPost,
		path:      pipelinePath,
		namespace: params.Namespace,
		body:      params,
		schema:    validate.PipelineResponse,
	})
}
