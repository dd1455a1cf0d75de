package core

import (
	"fmt"
	"strings"
)

// ModelID is a string identifier for a model, e.g. "hive".
type ModelID string

// Role represents a message participant role.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message represents a single message in a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	Name    string `json:"name,omitempty"`
}

// Usage tracks token consumption for a request.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatCompletionParams is the body of POST chat/completions.
//
// A non-empty Namespace routes the request to the pipeline (RAG) backend,
// which answers from the documents stored under that namespace.
type ChatCompletionParams struct {
	Model       ModelID   `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
	TopP        *float64  `json:"top_p,omitempty"`
	MaxTokens   *int      `json:"max_tokens,omitempty"`
	N           *int      `json:"n,omitempty"`
	Stop        []string  `json:"stop,omitempty"`
	Seed        *int      `json:"seed,omitempty"`
	User        string    `json:"user,omitempty"`
	Stream      bool      `json:"stream,omitempty"`
	Namespace   string    `json:"namespace,omitempty"`
}

// Validate checks the fields the server cannot default.
func (p *ChatCompletionParams) Validate() error {
	if strings.TrimSpace(string(p.Model)) == "" {
		return invalidParams(ErrModelRequired)
	}
	if len(p.Messages) == 0 {
		return invalidParams(ErrNoMessages)
	}
	return nil
}

// ChatCompletion is a decoded chat completion.
type ChatCompletion struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   ModelID      `json:"model"`
	Choices []ChatChoice `json:"choices"`
	Usage   *Usage       `json:"usage,omitempty"`
}

// ChatChoice is one candidate answer.
type ChatChoice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// Text returns the content of the first choice, or "".
func (c *ChatCompletion) Text() string {
	if c == nil || len(c.Choices) == 0 {
		return ""
	}
	return c.Choices[0].Message.Content
}

// ChatCompletionChunk is one server-sent event of a streamed chat completion.
type ChatCompletionChunk struct {
	ID      string            `json:"id"`
	Object  string            `json:"object"`
	Created int64             `json:"created"`
	Model   ModelID           `json:"model"`
	Choices []ChatChunkChoice `json:"choices"`
	Usage   *Usage            `json:"usage,omitempty"`
}

// ChatChunkChoice carries the delta for one choice index.
type ChatChunkChoice struct {
	Index        int       `json:"index"`
	Delta        ChatDelta `json:"delta"`
	FinishReason *string   `json:"finish_reason"`
}

// ChatDelta is the incremental part of a streamed message.
type ChatDelta struct {
	Role    Role   `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}

// CompletionParams is the body of POST completions.
type CompletionParams struct {
	Model       ModelID  `json:"model"`
	Prompt      string   `json:"prompt"`
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	N           *int     `json:"n,omitempty"`
	Stop        []string `json:"stop,omitempty"`
	Echo        bool     `json:"echo,omitempty"`
	Stream      bool     `json:"stream,omitempty"`
	Namespace   string   `json:"namespace,omitempty"`
}

// Validate checks the fields the server cannot default.
func (p *CompletionParams) Validate() error {
	if strings.TrimSpace(string(p.Model)) == "" {
		return invalidParams(ErrModelRequired)
	}
	if p.Prompt == "" {
		return invalidParams(ErrPromptRequired)
	}
	return nil
}

// Completion is a decoded text completion. Streamed completions use the
// same shape for every event.
type Completion struct {
	ID      string             `json:"id"`
	Object  string             `json:"object"`
	Created int64              `json:"created"`
	Model   ModelID            `json:"model"`
	Choices []CompletionChoice `json:"choices"`
	Usage   *Usage             `json:"usage,omitempty"`
}

// CompletionChoice is one candidate continuation.
type CompletionChoice struct {
	Index        int    `json:"index"`
	Text         string `json:"text"`
	FinishReason string `json:"finish_reason"`
}

// Text returns the text of the first choice, or "".
func (c *Completion) Text() string {
	if c == nil || len(c.Choices) == 0 {
		return ""
	}
	return c.Choices[0].Text
}

// Model describes a model served by the chat backend.
type Model struct {
	ID      ModelID `json:"id"`
	Object  string  `json:"object"`
	Created int64   `json:"created"`
	OwnedBy string  `json:"owned_by"`
}

// ModelList is the response of GET models.
type ModelList struct {
	Object string  `json:"object"`
	Data   []Model `json:"data"`
}

// PipelineParams is the body of POST pipeline. Namespace is required:
// pipeline requests always go to the RAG backend.
type PipelineParams struct {
	Namespace string    `json:"namespace"`
	Query     string    `json:"query"`
	Model     ModelID   `json:"model,omitempty"`
	Messages  []Message `json:"messages,omitempty"`
	TopK      *int      `json:"top_k,omitempty"`
}

// Validate checks the fields the server cannot default.
func (p *PipelineParams) Validate() error {
	if strings.TrimSpace(p.Namespace) == "" {
		return invalidParams(ErrNamespaceRequired)
	}
	if strings.TrimSpace(p.Query) == "" {
		return invalidParams(ErrQueryRequired)
	}
	return nil
}

// PipelineResponse is the answer of the RAG pipeline together with the
// document chunks it was grounded on.
type PipelineResponse struct {
	ID        string           `json:"id"`
	Namespace string           `json:"namespace"`
	Answer    string           `json:"answer"`
	Sources   []PipelineSource `json:"sources,omitempty"`
	Usage     *Usage           `json:"usage,omitempty"`
}

// PipelineSource is one retrieved document chunk.
type PipelineSource struct {
	DocumentID string  `json:"document_id"`
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
}

func invalidParams(err error) error {
	return fmt.Errorf("%w: %w", ErrConfiguration, err)
}
