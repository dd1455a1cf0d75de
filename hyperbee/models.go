package hyperbee

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/HyperbeeAI/hyperbee-go/core"
	"github.com/HyperbeeAI/hyperbee-go/internal/validate"
)

const modelsPath = "models"

// ModelsService lists the models of the chat backend.
type ModelsService struct {
	cc *clientCore
}

func listModelsOperation() operation {
	return operation{
		method: http.MethodGet,
		path:   modelsPath,
		schema: validate.ModelList,
	}
}

func retrieveModelOperation(id core.ModelID) (operation, error) {
	if strings.TrimSpace(string(id)) == "" {
		return operation{}, core.ConfigurationError("model id must be non-empty")
	}
	return operation{
		method: http.MethodGet,
		path:   modelsPath + "/" + url.PathEscape(string(id)),
		schema: validate.Model,
	}, nil
}

// List returns the available models.
func (s *ModelsService) List(ctx context.Context) (*core.ModelList, error) {
	return doDecoded[core.ModelList](ctx, s.cc, listModelsOperation())
}

// Retrieve returns one model.
func (s *ModelsService) Retrieve(ctx context.Context, id core.ModelID) (*core.Model, error) {
	op, err := retrieveModelOperation(id)
	if err != nil {
		return nil, err
	}
	return doDecoded[core.Model](ctx, s.cc, op)
}
