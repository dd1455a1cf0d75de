// Package validate checks response bodies against the embedded JSON Schemas
// used by strict response validation.
package validate

import (
	"embed"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Schema names a response shape.
type Schema string

const (
	ChatCompletion   Schema = "chat_completion"
	Completion       Schema = "completion"
	Model            Schema = "model"
	ModelList        Schema = "model_list"
	PipelineResponse Schema = "pipeline_response"
)

//go:embed schemas/*.json
var schemaFS embed.FS

type compiled struct {
	once   sync.Once
	schema *gojsonschema.Schema
	err    error
}

var (
	cacheMu sync.Mutex
	cache   = map[Schema]*compiled{}
)

func getSchema(name Schema) (*gojsonschema.Schema, error) {
	cacheMu.Lock()
	c, ok := cache[name]
	if !ok {
		c = &compiled{}
		cache[name] = c
	}
	cacheMu.Unlock()

	c.once.Do(func() {
		raw, err := schemaFS.ReadFile("schemas/" + string(name) + ".json")
		if err != nil {
			c.err = fmt.Errorf("unknown schema %q: %w", name, err)
			return
		}
		c.schema, c.err = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	})
	return c.schema, c.err
}

// Validate validates raw JSON bytes against the named schema. It returns
// the validation problems, and an error if the schema cannot be compiled
// or data is not JSON.
func Validate(name Schema, data []byte) ([]string, error) {
	schema, err := getSchema(name)
	if err != nil {
		return nil, fmt.Errorf("compiling %s schema: %w", name, err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("validating %s: %w", name, err)
	}

	if result.Valid() {
		return nil, nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, e.String())
	}
	return problems, nil
}
