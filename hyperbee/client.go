package hyperbee

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"sync/atomic"

	"github.com/HyperbeeAI/hyperbee-go/core"
)

type variant int

const (
	variantSync variant = iota
	variantAsync
)

// marker is the value of the X-Stainless-Async header.
func (v variant) marker() string {
	if v == variantAsync {
		return "async:goroutine"
	}
	return "false"
}

func (v variant) defaultPipelineBaseURL() string {
	if v == variantAsync {
		return DefaultAsyncPipelineBaseURL
	}
	return DefaultPipelineBaseURL
}

// clientCore is the state shared by the sync and async clients: the
// resolved configuration, one endpoint per backend and the active slot.
type clientCore struct {
	cfg     Config
	variant variant

	chat     *Endpoint
	pipeline *Endpoint
	initial  *Endpoint

	active atomic.Pointer[Endpoint]

	logger    *slog.Logger
	telemetry core.TelemetryHook
	retry     core.RetryPolicy
}

// newOptions seeds construction from defaults.
func newOptions(v variant) *options {
	return &options{cfg: Config{
		ChatBaseURL:     DefaultChatBaseURL,
		PipelineBaseURL: v.defaultPipelineBaseURL(),
		Timeout:         DefaultTimeout,
		MaxRetries:      DefaultMaxRetries,
	}}
}

// optionsFrom seeds a copy from an existing client. Every scalar counts as
// explicitly given so the environment is not consulted again. The copy
// starts on the endpoint c has active now.
func optionsFrom(c *clientCore) *options {
	cfg := c.cfg.clone()
	cfg.BaseURL = c.ActiveEndpoint().BaseURL()
	return &options{
		cfg:        cfg,
		apiKeySet:  true,
		orgSet:     true,
		baseURLSet: true,
	}
}

// build resolves o into a ready clientCore. It is the single construction
// path for New, NewAsync and WithOptions.
func build(v variant, o *options, opts []Option) (*clientCore, error) {
	if err := o.apply(opts); err != nil {
		return nil, err
	}

	cfg := o.cfg
	if !o.apiKeySet {
		cfg.APIKey = core.NewSecret(os.Getenv(EnvAPIKey))
	}
	if cfg.APIKey.IsEmpty() {
		return nil, core.ConfigurationError(
			"api_key must be set either by passing WithAPIKey to the client or by setting the %s environment variable", EnvAPIKey)
	}
	if !o.orgSet {
		cfg.Organization = os.Getenv(EnvOrgID)
	}
	if !o.baseURLSet {
		cfg.BaseURL = os.Getenv(EnvBaseURL)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.MaxRetries < 0 {
		return nil, core.ConfigurationError("max_retries must be >= 0, got %d", cfg.MaxRetries)
	}
	if cfg.Timeout < 0 {
		return nil, core.ConfigurationError("timeout must be >= 0, got %s", cfg.Timeout)
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Telemetry == nil {
		cfg.Telemetry = core.NoopTelemetryHook{}
	}

	c := &clientCore{
		cfg:       cfg,
		variant:   v,
		logger:    cfg.Logger,
		telemetry: cfg.Telemetry,
		retry:     cfg.RetryPolicy,
	}
	if c.retry == nil {
		c.retry = core.NewRetryPolicy(core.RetryConfig{MaxRetries: cfg.MaxRetries})
	}

	var err error
	if c.chat, err = c.newEndpoint(TargetChat, cfg.ChatBaseURL); err != nil {
		return nil, err
	}
	if c.pipeline, err = c.newEndpoint(TargetPipeline, cfg.PipelineBaseURL); err != nil {
		return nil, err
	}

	base, err := parseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	switch {
	case sameURL(base, c.chat.baseURL):
		c.initial = c.chat
	case sameURL(base, c.pipeline.baseURL):
		c.initial = c.pipeline
	default:
		if c.initial, err = c.newEndpoint(TargetCustom, cfg.BaseURL); err != nil {
			return nil, err
		}
	}
	c.active.Store(c.initial)

	return c, nil
}

func (c *clientCore) newEndpoint(target Target, rawURL string) (*Endpoint, error) {
	u, err := parseBaseURL(rawURL)
	if err != nil {
		return nil, err
	}
	return &Endpoint{
		target:     target,
		baseURL:    u,
		headers:    buildHeaders(&c.cfg, c.variant),
		query:      encodeQuery(c.cfg.DefaultQuery),
		timeout:    c.cfg.Timeout,
		retry:      c.retry,
		httpClient: c.cfg.HTTPClient,
	}, nil
}

// SetBaseURLForRequest activates the endpoint serving namespace and
// returns it. Callers send on the returned endpoint, so a concurrent
// activation for another namespace cannot redirect their request.
// Activating the endpoint that is already active does nothing.
func (c *clientCore) SetBaseURLForRequest(namespace string) *Endpoint {
	ep := c.endpointFor(SelectTarget(namespace))
	if prev := c.active.Swap(ep); prev != ep {
		c.logger.Debug("hyperbee: activated endpoint",
			slog.String("target", string(ep.target)),
			slog.String("base_url", ep.BaseURL()))
	}
	return ep
}

func (c *clientCore) endpointFor(target Target) *Endpoint {
	if target == TargetPipeline {
		return c.pipeline
	}
	return c.chat
}

// ActiveEndpoint returns the most recently activated endpoint.
func (c *clientCore) ActiveEndpoint() *Endpoint {
	return c.active.Load()
}

// ChatEndpoint returns the endpoint serving requests without a namespace.
func (c *clientCore) ChatEndpoint() *Endpoint {
	return c.chat
}

// PipelineEndpoint returns the endpoint serving namespaced requests.
func (c *clientCore) PipelineEndpoint() *Endpoint {
	return c.pipeline
}

// Config returns a copy of the resolved configuration.
func (c *clientCore) Config() Config {
	return c.cfg.clone()
}

// AuthHeaders returns the Authorization header.
func (c *clientCore) AuthHeaders() http.Header {
	return authHeaders(&c.cfg)
}

// DefaultHeaders returns the headers sent with every request.
func (c *clientCore) DefaultHeaders() http.Header {
	return buildHeaders(&c.cfg, c.variant)
}

// StatusToError maps a non-2xx response to a typed error.
func (c *clientCore) StatusToError(status int, resp *http.Response, body any) *core.APIError {
	return core.StatusToError(status, errorMessage(body), resp, body)
}

// Close releases idle connections of the HTTP client.
func (c *clientCore) Close() {
	c.cfg.HTTPClient.CloseIdleConnections()
}

// Client is the synchronous HyperBee client. Calls block until the HTTP
// exchange completes. A Client is safe for concurrent use.
type Client struct {
	*clientCore

	Completions  *CompletionsService
	Chat         *ChatService
	Models       *ModelsService
	Pipeline     *PipelineService
	BatchRequest *BatchRequestService

	// WithRawResponse returns undecoded responses.
	WithRawResponse *RawResources
	// WithStreamingResponse returns responses with the body left unread.
	WithStreamingResponse *StreamingResources
}

// New creates a client. The API key, organization and base URL fall back to
// HYPERBEE_API_KEY, HYPERBEE_ORG_ID and HYPERBEE_BASE_URL. Construction fails
// with core.ErrConfiguration when no API key is available.
//
//	client, err := hyperbee.New(hyperbee.WithAPIKey("hb-..."))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	resp, err := client.Chat.Completions.Create(ctx, core.ChatCompletionParams{
//	    Model:    "hive",
//	    Messages: []core.Message{{Role: core.RoleUser, Content: "Hello"}},
//	})
func New(opts ...Option) (*Client, error) {
	cc, err := build(variantSync, newOptions(variantSync), opts)
	if err != nil {
		return nil, err
	}
	return newClient(cc), nil
}

func newClient(cc *clientCore) *Client {
	c := &Client{clientCore: cc}
	c.Completions = &CompletionsService{cc: cc}
	c.Chat = &ChatService{Completions: &ChatCompletionsService{cc: cc}}
	c.Models = &ModelsService{cc: cc}
	c.Pipeline = &PipelineService{cc: cc}
	c.BatchRequest = &BatchRequestService{chat: c.Chat.Completions}
	c.WithRawResponse = newRawResources(cc)
	c.WithStreamingResponse = newStreamingResources(cc)
	return c
}

// WithOptions returns a new client built from this client's configuration
// plus opts. Fields not overridden keep their current values, the active
// endpoint included, and the HTTP client is shared unless WithHTTPClient is
// given. c is not modified.
func (c *Client) WithOptions(opts ...Option) (*Client, error) {
	cc, err := build(variantSync, optionsFrom(c.clientCore), opts)
	if err != nil {
		return nil, err
	}
	return newClient(cc), nil
}

// Copy is an alias for WithOptions.
func (c *Client) Copy(opts ...Option) (*Client, error) {
	return c.WithOptions(opts...)
}

// Do sends a request to path on the active endpoint and decodes the JSON
// response into out, which may be nil. It is the escape hatch for
// endpoints without a resource handle.
func (c *clientCore) Do(ctx context.Context, method, path string, body, out any) error {
	ep := c.ActiveEndpoint()
	resp, err := c.send(ctx, ep, request{method: method, path: path, body: body})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return core.DecodeError(err)
	}
	return nil
}
