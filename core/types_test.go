package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestChatCompletionParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		params  ChatCompletionParams
		wantErr error
	}{
		{
			name:    "missing model",
			params:  ChatCompletionParams{Messages: []Message{{Role: RoleUser, Content: "hi"}}},
			wantErr: ErrModelRequired,
		},
		{
			name:    "blank model",
			params:  ChatCompletionParams{Model: "  ", Messages: []Message{{Role: RoleUser, Content: "hi"}}},
			wantErr: ErrModelRequired,
		},
		{
			name:    "no messages",
			params:  ChatCompletionParams{Model: "hive"},
			wantErr: ErrNoMessages,
		},
		{
			name:   "valid",
			params: ChatCompletionParams{Model: "hive", Messages: []Message{{Role: RoleUser, Content: "hi"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrConfiguration) {
				t.Errorf("Validate() error = %v, want ErrConfiguration", err)
			}
		})
	}
}

func TestCompletionParamsValidate(t *testing.T) {
	if err := (&CompletionParams{Prompt: "x"}).Validate(); !errors.Is(err, ErrModelRequired) {
		t.Errorf("Validate() error = %v, want ErrModelRequired", err)
	}
	if err := (&CompletionParams{Model: "hive"}).Validate(); !errors.Is(err, ErrPromptRequired) {
		t.Errorf("Validate() error = %v, want ErrPromptRequired", err)
	}
	if err := (&CompletionParams{Model: "hive", Prompt: "x"}).Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestPipelineParamsValidate(t *testing.T) {
	if err := (&PipelineParams{Query: "q"}).Validate(); !errors.Is(err, ErrNamespaceRequired) {
		t.Errorf("Validate() error = %v, want ErrNamespaceRequired", err)
	}
	if err := (&PipelineParams{Namespace: "docs"}).Validate(); !errors.Is(err, ErrQueryRequired) {
		t.Errorf("Validate() error = %v, want ErrQueryRequired", err)
	}
	if err := (&PipelineParams{Namespace: "docs", Query: "q"}).Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestChatCompletionParamsJSONOmitsUnset(t *testing.T) {
	params := ChatCompletionParams{
		Model:    "hive",
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	}

	data, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	for _, key := range []string{"namespace", "temperature", "max_tokens", "stream", "stop"} {
		if strings.Contains(string(data), `"`+key+`"`) {
			t.Errorf("json.Marshal() = %s, should omit %q", data, key)
		}
	}

	params.Namespace = "docs"
	data, _ = json.Marshal(params)
	if !strings.Contains(string(data), `"namespace":"docs"`) {
		t.Errorf("json.Marshal() = %s, want namespace", data)
	}
}

func TestChatCompletionText(t *testing.T) {
	var nilCompletion *ChatCompletion
	if got := nilCompletion.Text(); got != "" {
		t.Errorf("nil Text() = %q", got)
	}

	raw := `{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"model": "hive",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": "Hello"}, "finish_reason": "stop"}],
		"usage": {"prompt_tokens": 3, "completion_tokens": 1, "total_tokens": 4}
	}`
	var c ChatCompletion
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if c.Text() != "Hello" {
		t.Errorf("Text() = %q, want Hello", c.Text())
	}
	if c.Usage == nil || c.Usage.TotalTokens != 4 {
		t.Errorf("Usage = %+v, want total 4", c.Usage)
	}
}

func TestCompletionText(t *testing.T) {
	c := &Completion{Choices: []CompletionChoice{{Text: "world"}}}
	if c.Text() != "world" {
		t.Errorf("Text() = %q, want world", c.Text())
	}
	if (&Completion{}).Text() != "" {
		t.Error("Text() of empty completion should be empty")
	}
}
