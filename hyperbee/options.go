package hyperbee

import (
	"log/slog"
	"maps"
	"net/http"
	"time"

	"github.com/HyperbeeAI/hyperbee-go/core"
)

// Default endpoints. The async client has its own pipeline default.
const (
	DefaultChatBaseURL          = "https://api.hyperbee.ai/v1/"
	DefaultPipelineBaseURL      = "https://api-rag.hyperbee.ai/v1/"
	DefaultAsyncPipelineBaseURL = "https://not-api-rag.hyperbee.ai/v1/"

	// DefaultBaseURL is used when neither WithBaseURL nor HYPERBEE_BASE_URL is set.
	DefaultBaseURL = DefaultChatBaseURL
)

// Environment variables read at construction.
const (
	EnvAPIKey  = "HYPERBEE_API_KEY"
	EnvOrgID   = "HYPERBEE_ORG_ID"
	EnvBaseURL = "HYPERBEE_BASE_URL"
)

// Transport defaults.
const (
	DefaultTimeout    = 10 * time.Minute
	DefaultMaxRetries = core.DefaultMaxRetries
)

// Config holds the resolved client configuration. A Config is never
// mutated after construction; WithOptions derives a new one.
type Config struct {
	// APIKey is the HyperBee API key (required).
	APIKey core.Secret

	// Organization is sent as HyperBee-Organization when non-empty.
	Organization string

	// BaseURL is the endpoint active right after construction.
	BaseURL string

	// ChatBaseURL serves requests without a namespace.
	ChatBaseURL string

	// PipelineBaseURL serves requests with a namespace.
	PipelineBaseURL string

	// Timeout bounds each attempt. Zero means no timeout.
	Timeout time.Duration

	// MaxRetries is the number of retries after a transport failure.
	MaxRetries int

	// DefaultHeaders are sent with every request and win over built-in headers.
	DefaultHeaders map[string]string

	// DefaultQuery is added to every request URL.
	DefaultQuery map[string]any

	// HTTPClient sends the requests. Defaults to http.DefaultClient.
	HTTPClient *http.Client

	// StrictResponseValidation checks response bodies against their schema.
	StrictResponseValidation bool

	// Logger receives debug logs. Defaults to a discard logger.
	Logger *slog.Logger

	// Telemetry receives request lifecycle events.
	Telemetry core.TelemetryHook

	// RetryPolicy overrides the policy derived from MaxRetries.
	RetryPolicy core.RetryPolicy
}

func (c Config) clone() Config {
	c.DefaultHeaders = maps.Clone(c.DefaultHeaders)
	c.DefaultQuery = maps.Clone(c.DefaultQuery)
	return c
}

// Option configures a client.
type Option func(*options)

// options records which fields were given explicitly, so construction
// knows what to resolve from the environment and which overrides conflict.
type options struct {
	cfg Config

	apiKeySet  bool
	orgSet     bool
	baseURLSet bool

	headersMerge map[string]string
	headersSet   map[string]string
	queryMerge   map[string]any
	querySet     map[string]any
}

// WithAPIKey sets the API key. An empty key falls back to HYPERBEE_API_KEY.
func WithAPIKey(key string) Option {
	return func(o *options) {
		if key == "" {
			return
		}
		o.cfg.APIKey = core.NewSecret(key)
		o.apiKeySet = true
	}
}

// WithOrganization sets the organization id. An empty id falls back to
// HYPERBEE_ORG_ID, or keeps the current organization on WithOptions.
func WithOrganization(org string) Option {
	return func(o *options) {
		if org == "" {
			return
		}
		o.cfg.Organization = org
		o.orgSet = true
	}
}

// WithBaseURL sets the endpoint active right after construction.
func WithBaseURL(url string) Option {
	return func(o *options) {
		if url == "" {
			return
		}
		o.cfg.BaseURL = url
		o.baseURLSet = true
	}
}

// WithChatBaseURL overrides the chat endpoint.
func WithChatBaseURL(url string) Option {
	return func(o *options) {
		o.cfg.ChatBaseURL = url
	}
}

// WithPipelineBaseURL overrides the pipeline (RAG) endpoint.
func WithPipelineBaseURL(url string) Option {
	return func(o *options) {
		o.cfg.PipelineBaseURL = url
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.cfg.Timeout = d
	}
}

// WithoutTimeout disables the per-attempt timeout.
func WithoutTimeout() Option {
	return func(o *options) {
		o.cfg.Timeout = 0
	}
}

// WithMaxRetries sets how many times a transport failure is retried.
func WithMaxRetries(n int) Option {
	return func(o *options) {
		o.cfg.MaxRetries = n
	}
}

// WithDefaultHeaders merges headers over the current custom headers.
// It cannot be combined with SetDefaultHeaders.
func WithDefaultHeaders(headers map[string]string) Option {
	return func(o *options) {
		if o.headersMerge == nil {
			o.headersMerge = make(map[string]string, len(headers))
		}
		maps.Copy(o.headersMerge, headers)
	}
}

// SetDefaultHeaders replaces the custom headers entirely.
// It cannot be combined with WithDefaultHeaders.
func SetDefaultHeaders(headers map[string]string) Option {
	return func(o *options) {
		o.headersSet = maps.Clone(headers)
		if o.headersSet == nil {
			o.headersSet = map[string]string{}
		}
	}
}

// WithDefaultQuery merges query parameters over the current ones.
// It cannot be combined with SetDefaultQuery.
func WithDefaultQuery(query map[string]any) Option {
	return func(o *options) {
		if o.queryMerge == nil {
			o.queryMerge = make(map[string]any, len(query))
		}
		maps.Copy(o.queryMerge, query)
	}
}

// SetDefaultQuery replaces the default query parameters entirely.
// It cannot be combined with WithDefaultQuery.
func SetDefaultQuery(query map[string]any) Option {
	return func(o *options) {
		o.querySet = maps.Clone(query)
		if o.querySet == nil {
			o.querySet = map[string]any{}
		}
	}
}

// WithHTTPClient sets the HTTP client used for every request.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.cfg.HTTPClient = client
	}
}

// WithStrictResponseValidation toggles schema validation of responses.
func WithStrictResponseValidation(strict bool) Option {
	return func(o *options) {
		o.cfg.StrictResponseValidation = strict
	}
}

// WithLogger sets the logger for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.cfg.Logger = logger
	}
}

// WithTelemetry sets the telemetry hook.
func WithTelemetry(hook core.TelemetryHook) Option {
	return func(o *options) {
		o.cfg.Telemetry = hook
	}
}

// WithRetryPolicy replaces the retry policy derived from MaxRetries.
func WithRetryPolicy(policy core.RetryPolicy) Option {
	return func(o *options) {
		o.cfg.RetryPolicy = policy
	}
}

// apply runs opts and folds header and query overrides into cfg.
func (o *options) apply(opts []Option) error {
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	if o.headersMerge != nil && o.headersSet != nil {
		return core.ConfigurationError("WithDefaultHeaders and SetDefaultHeaders are mutually exclusive")
	}
	if o.queryMerge != nil && o.querySet != nil {
		return core.ConfigurationError("WithDefaultQuery and SetDefaultQuery are mutually exclusive")
	}

	switch {
	case o.headersSet != nil:
		o.cfg.DefaultHeaders = o.headersSet
	case o.headersMerge != nil:
		if o.cfg.DefaultHeaders == nil {
			o.cfg.DefaultHeaders = make(map[string]string, len(o.headersMerge))
		}
		maps.Copy(o.cfg.DefaultHeaders, o.headersMerge)
	}

	switch {
	case o.querySet != nil:
		o.cfg.DefaultQuery = o.querySet
	case o.queryMerge != nil:
		if o.cfg.DefaultQuery == nil {
			o.cfg.DefaultQuery = make(map[string]any, len(o.queryMerge))
		}
		maps.Copy(o.cfg.DefaultQuery, o.queryMerge)
	}

	return nil
}
