package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/HyperbeeAI/hyperbee-go/cli/config"
	"github.com/HyperbeeAI/hyperbee-go/cli/keystore"
	"github.com/HyperbeeAI/hyperbee-go/core"
	"github.com/HyperbeeAI/hyperbee-go/hyperbee"
)

// memKeystore is an in-memory keystore.
type memKeystore struct {
	mu   sync.Mutex
	keys map[string]string
}

func newMemKeystore(entries map[string]string) *memKeystore {
	ks := &memKeystore{keys: make(map[string]string)}
	for k, v := range entries {
		ks.keys[k] = v
	}
	return ks
}

func (m *memKeystore) Set(name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[name] = value
	return nil
}

func (m *memKeystore) Get(name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.keys[name]
	if !ok {
		return "", &keystore.ErrKeyNotFound{Name: name}
	}
	return v, nil
}

func (m *memKeystore) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.keys[name]; !ok {
		return &keystore.ErrKeyNotFound{Name: name}
	}
	delete(m.keys, name)
	return nil
}

func (m *memKeystore) List() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.keys))
	for k := range m.keys {
		names = append(names, k)
	}
	sort.Strings(names)
	return names, nil
}

// seenRequest is one request captured by a fake backend.
type seenRequest struct {
	Path   string
	Auth   string
	Accept string
	Body   map[string]any
}

type fakeBackend struct {
	*httptest.Server
	mu   sync.Mutex
	seen []seenRequest
}

func newFakeBackend(t *testing.T, status int, body string) *fakeBackend {
	t.Helper()
	b := &fakeBackend{}
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := seenRequest{
			Path:   r.URL.Path,
			Auth:   r.Header.Get("Authorization"),
			Accept: r.Header.Get("Accept"),
		}
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &req.Body)
		b.mu.Lock()
		b.seen = append(b.seen, req)
		b.mu.Unlock()

		if req.Accept == "text/event-stream" {
			w.Header().Set("Content-Type", "text/event-stream")
		} else {
			w.Header().Set("Content-Type", "application/json")
		}
		w.Header().Set("X-Request-Id", "req_cli")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(b.Close)
	return b
}

func (b *fakeBackend) requests() []seenRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]seenRequest(nil), b.seen...)
}

func (b *fakeBackend) last(t *testing.T) seenRequest {
	t.Helper()
	reqs := b.requests()
	if len(reqs) == 0 {
		t.Fatal("backend received no request")
	}
	return reqs[len(reqs)-1]
}

type harness struct {
	cfg    *config.Config
	ks     *memKeystore
	stdin  io.Reader
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func newHarness(t *testing.T, chatURL, pipelineURL string) *harness {
	t.Helper()
	for _, key := range []string{hyperbee.EnvAPIKey, hyperbee.EnvOrgID, hyperbee.EnvBaseURL} {
		t.Setenv(key, "")
	}
	retries := 0
	return &harness{
		cfg: &config.Config{
			DefaultModel:    "hive",
			BaseURL:         chatURL + "/v1",
			ChatBaseURL:     chatURL + "/v1",
			PipelineBaseURL: pipelineURL + "/v1",
			MaxRetries:      &retries,
		},
		ks:    newMemKeystore(map[string]string{keystore.DefaultKeyName: "hb-stored"}),
		stdin: strings.NewReader(""),
	}
}

func (h *harness) run(args ...string) error {
	h.stdout.Reset()
	h.stderr.Reset()
	app := NewApp(
		WithConfigLoader(func(string) (*config.Config, error) { return h.cfg, nil }),
		WithKeystoreFactory(func() (keystore.Keystore, error) { return h.ks, nil }),
		WithIO(h.stdin, &h.stdout, &h.stderr),
	)
	app.SetArgs(args)
	return app.Execute()
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return ExitSuccess
	}
	var ee *exitError
	if !errors.As(err, &ee) {
		t.Fatalf("error %v (%T) carries no exit code", err, err)
	}
	return ee.ExitCode()
}

const chatBody = `{"id":"chatcmpl-1","object":"chat.completion","model":"hive",
"choices":[{"index":0,"message":{"role":"assistant","content":"Hello!"},"finish_reason":"stop"}],
"usage":{"prompt_tokens":3,"completion_tokens":2,"total_tokens":5}}`

func TestChatCommand(t *testing.T) {
	chat := newFakeBackend(t, 200, chatBody)
	rag := newFakeBackend(t, 200, chatBody)
	h := newHarness(t, chat.URL, rag.URL)

	if err := h.run("chat", "--prompt", "Hi", "--system", "Be brief"); err != nil {
		t.Fatalf("chat error = %v, stderr = %s", err, h.stderr.String())
	}

	if !strings.Contains(h.stdout.String(), "Hello!") {
		t.Errorf("stdout = %q, want the completion text", h.stdout.String())
	}
	req := chat.last(t)
	if req.Path != "/v1/chat/completions" {
		t.Errorf("path = %q", req.Path)
	}
	if req.Auth != "Bearer hb-stored" {
		t.Errorf("Authorization = %q, want the keystore key", req.Auth)
	}
	messages, _ := req.Body["messages"].([]any)
	if len(messages) != 2 {
		t.Errorf("messages = %v, want system + user", req.Body["messages"])
	}
	if len(rag.requests()) != 0 {
		t.Error("chat without namespace reached the pipeline backend")
	}
}

func TestChatCommandNamespaceRoutesToPipeline(t *testing.T) {
	chat := newFakeBackend(t, 200, chatBody)
	rag := newFakeBackend(t, 200, chatBody)
	h := newHarness(t, chat.URL, rag.URL)

	if err := h.run("chat", "--prompt", "Leave policy?", "--namespace", "handbook"); err != nil {
		t.Fatalf("chat error = %v", err)
	}
	if len(chat.requests()) != 0 {
		t.Error("namespaced chat reached the chat backend")
	}
	if got := rag.last(t).Body["namespace"]; got != "handbook" {
		t.Errorf("namespace = %v, want handbook", got)
	}
}

func TestChatCommandJSON(t *testing.T) {
	chat := newFakeBackend(t, 200, chatBody)
	h := newHarness(t, chat.URL, chat.URL)

	if err := h.run("chat", "--prompt", "Hi", "--json"); err != nil {
		t.Fatalf("chat error = %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(h.stdout.Bytes(), &out); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, h.stdout.String())
	}
	if out["id"] != "chatcmpl-1" {
		t.Errorf("id = %v", out["id"])
	}
}

func TestChatCommandStream(t *testing.T) {
	events := "data: {\"id\":\"c1\",\"choices\":[{\"index\":0,\"delta\":{\"content\":\"Hel\"}}]}\n\n" +
		"data: {\"id\":\"c1\",\"choices\":[{\"index\":0,\"delta\":{\"content\":\"lo\"}}]}\n\n" +
		"data: [DONE]\n\n"
	chat := newFakeBackend(t, 200, events)
	h := newHarness(t, chat.URL, chat.URL)

	if err := h.run("chat", "--prompt", "Hi", "--stream"); err != nil {
		t.Fatalf("chat error = %v", err)
	}
	if !strings.Contains(h.stdout.String(), "Hello\n") {
		t.Errorf("stdout = %q, want streamed Hello", h.stdout.String())
	}
	if req := chat.last(t); req.Body["stream"] != true {
		t.Errorf("stream = %v, want true", req.Body["stream"])
	}
}

func TestChatCommandExitCodes(t *testing.T) {
	t.Run("missing prompt", func(t *testing.T) {
		h := newHarness(t, "http://chat.invalid", "http://rag.invalid")
		if code := exitCode(t, h.run("chat")); code != ExitValidation {
			t.Errorf("exit = %d, want %d", code, ExitValidation)
		}
	})

	t.Run("missing model", func(t *testing.T) {
		h := newHarness(t, "http://chat.invalid", "http://rag.invalid")
		h.cfg.DefaultModel = ""
		if code := exitCode(t, h.run("chat", "--prompt", "Hi")); code != ExitValidation {
			t.Errorf("exit = %d, want %d", code, ExitValidation)
		}
	})

	t.Run("missing api key", func(t *testing.T) {
		h := newHarness(t, "http://chat.invalid", "http://rag.invalid")
		h.ks = newMemKeystore(nil)
		err := h.run("chat", "--prompt", "Hi")
		if code := exitCode(t, err); code != ExitValidation {
			t.Errorf("exit = %d, want %d", code, ExitValidation)
		}
		if !strings.Contains(h.stderr.String(), "HYPERBEE_API_KEY") {
			t.Errorf("stderr = %q, want a hint about HYPERBEE_API_KEY", h.stderr.String())
		}
	})

	t.Run("api status error", func(t *testing.T) {
		chat := newFakeBackend(t, 401, `{"error":{"message":"bad key"}}`)
		h := newHarness(t, chat.URL, chat.URL)
		if code := exitCode(t, h.run("chat", "--prompt", "Hi")); code != ExitAPI {
			t.Errorf("exit = %d, want %d", code, ExitAPI)
		}
		if !strings.Contains(h.stderr.String(), "Error: bad key") ||
			!strings.Contains(h.stderr.String(), "req_cli") {
			t.Errorf("stderr = %q", h.stderr.String())
		}
	})

	t.Run("network error", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		h := newHarness(t, url, url)
		if code := exitCode(t, h.run("chat", "--prompt", "Hi")); code != ExitNetwork {
			t.Errorf("exit = %d, want %d", code, ExitNetwork)
		}
	})
}

func TestErrorJSONOutput(t *testing.T) {
	chat := newFakeBackend(t, 429, `{"error":{"message":"slow down"}}`)
	h := newHarness(t, chat.URL, chat.URL)

	err := h.run("chat", "--prompt", "Hi", "--json")
	if code := exitCode(t, err); code != ExitAPI {
		t.Fatalf("exit = %d, want %d", code, ExitAPI)
	}

	var out struct {
		Error struct {
			Type      string `json:"type"`
			Message   string `json:"message"`
			Status    int    `json:"status"`
			RequestID string `json:"request_id"`
		} `json:"error"`
	}
	if err := json.Unmarshal(h.stderr.Bytes(), &out); err != nil {
		t.Fatalf("stderr is not JSON: %v\n%s", err, h.stderr.String())
	}
	if out.Error.Type != "rate_limit" || out.Error.Status != 429 || out.Error.Message != "slow down" {
		t.Errorf("error = %+v", out.Error)
	}
	if out.Error.RequestID != "req_cli" {
		t.Errorf("request_id = %q", out.Error.RequestID)
	}
}

func TestRequestLogsOnlyWhenVerbose(t *testing.T) {
	chat := newFakeBackend(t, 500, `{"error":{"message":"boom"}}`)

	h := newHarness(t, chat.URL, chat.URL)
	exitCode(t, h.run("chat", "--prompt", "Hi"))
	if strings.Contains(h.stderr.String(), "hyperbee request failed") {
		t.Errorf("request log leaked to stderr without --verbose:\n%s", h.stderr.String())
	}
	if !strings.HasPrefix(h.stderr.String(), "Error: boom") {
		t.Errorf("stderr = %q, want the error report only", h.stderr.String())
	}

	h = newHarness(t, chat.URL, chat.URL)
	exitCode(t, h.run("chat", "--prompt", "Hi", "--verbose"))
	if !strings.Contains(h.stderr.String(), "hyperbee request failed") {
		t.Errorf("--verbose did not log the failed request:\n%s", h.stderr.String())
	}
}

func TestAPIKeyFlagWins(t *testing.T) {
	chat := newFakeBackend(t, 200, chatBody)
	h := newHarness(t, chat.URL, chat.URL)

	if err := h.run("chat", "--prompt", "Hi", "--api-key", "hb-flag"); err != nil {
		t.Fatalf("chat error = %v", err)
	}
	if got := chat.last(t).Auth; got != "Bearer hb-flag" {
		t.Errorf("Authorization = %q, want the flag key", got)
	}
}

func TestAPIKeyFromEnvironment(t *testing.T) {
	chat := newFakeBackend(t, 200, chatBody)
	h := newHarness(t, chat.URL, chat.URL)
	h.ks = newMemKeystore(nil)
	t.Setenv(hyperbee.EnvAPIKey, "hb-env")

	if err := h.run("chat", "--prompt", "Hi"); err != nil {
		t.Fatalf("chat error = %v", err)
	}
	if got := chat.last(t).Auth; got != "Bearer hb-env" {
		t.Errorf("Authorization = %q, want the env key", got)
	}
}

func TestCompleteCommand(t *testing.T) {
	chat := newFakeBackend(t, 200, `{"id":"cmpl-1","choices":[{"index":0,"text":"upon a time"}]}`)
	h := newHarness(t, chat.URL, chat.URL)

	if err := h.run("complete", "--prompt", "Once", "--max-tokens", "8"); err != nil {
		t.Fatalf("complete error = %v", err)
	}
	if strings.TrimSpace(h.stdout.String()) != "upon a time" {
		t.Errorf("stdout = %q", h.stdout.String())
	}
	req := chat.last(t)
	if req.Path != "/v1/completions" || req.Body["max_tokens"] != float64(8) {
		t.Errorf("request = %+v", req)
	}
}

func TestModelsCommand(t *testing.T) {
	chat := newFakeBackend(t, 200, `{"object":"list","data":[{"id":"hive"},{"id":"hive-mini"}]}`)
	h := newHarness(t, chat.URL, chat.URL)

	if err := h.run("models"); err != nil {
		t.Fatalf("models error = %v", err)
	}
	if h.stdout.String() != "hive\nhive-mini\n" {
		t.Errorf("stdout = %q", h.stdout.String())
	}
}

func TestModelsCommandRetrieve(t *testing.T) {
	chat := newFakeBackend(t, 200, `{"id":"hive","object":"model","owned_by":"hyperbee"}`)
	h := newHarness(t, chat.URL, chat.URL)

	if err := h.run("models", "hive"); err != nil {
		t.Fatalf("models error = %v", err)
	}
	if chat.last(t).Path != "/v1/models/hive" {
		t.Errorf("path = %q", chat.last(t).Path)
	}
	if !strings.Contains(h.stdout.String(), "owned by: hyperbee") {
		t.Errorf("stdout = %q", h.stdout.String())
	}
}

func TestPipelineCommand(t *testing.T) {
	chat := newFakeBackend(t, 200, `{}`)
	rag := newFakeBackend(t, 200, `{"id":"p1","namespace":"handbook","answer":"20 days",
		"sources":[{"document_id":"leave.pdf","text":"...","score":0.9}]}`)
	h := newHarness(t, chat.URL, rag.URL)
	h.cfg.DefaultNamespace = "handbook"

	if err := h.run("pipeline", "--query", "Leave days?", "--top-k", "3"); err != nil {
		t.Fatalf("pipeline error = %v", err)
	}
	out := h.stdout.String()
	if !strings.Contains(out, "20 days") || !strings.Contains(out, "leave.pdf (0.90)") {
		t.Errorf("stdout = %q", out)
	}
	req := rag.last(t)
	if req.Body["namespace"] != "handbook" || req.Body["top_k"] != float64(3) {
		t.Errorf("body = %v", req.Body)
	}
	if len(chat.requests()) != 0 {
		t.Error("pipeline reached the chat backend")
	}
}

func TestPipelineCommandRequiresNamespace(t *testing.T) {
	rag := newFakeBackend(t, 200, `{}`)
	h := newHarness(t, rag.URL, rag.URL)

	if code := exitCode(t, h.run("pipeline", "--query", "q")); code != ExitValidation {
		t.Errorf("exit = %d, want %d", code, ExitValidation)
	}
	if len(rag.requests()) != 0 {
		t.Error("invalid pipeline request was sent")
	}
}

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"configuration", core.ConfigurationError("bad option"), ExitValidation},
		{"connection", core.ConnectionError(errors.New("dial tcp: refused")), ExitNetwork},
		{"timeout", core.TimeoutError(errors.New("deadline")), ExitNetwork},
		{"canceled", context.Canceled, ExitNetwork},
		{"status", core.StatusToError(500, "boom", nil, nil), ExitAPI},
		{"decode", core.DecodeError(errors.New("bad json")), ExitAPI},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExitError(t *testing.T) {
	inner := errors.New("test error")
	err := exitWithCode(ExitValidation, inner)

	if err.Error() != "test error" {
		t.Errorf("Error() = %q, want 'test error'", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Error("exitError should unwrap to the wrapped error")
	}
	if code := err.(*exitError).ExitCode(); code != ExitValidation {
		t.Errorf("ExitCode() = %d, want %d", code, ExitValidation)
	}
}
