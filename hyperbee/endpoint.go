package hyperbee

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/HyperbeeAI/hyperbee-go/core"
)

// Target names the backend an endpoint serves.
type Target string

const (
	TargetChat     Target = "chat"
	TargetPipeline Target = "pipeline"
	TargetCustom   Target = "custom"
)

// SelectTarget maps a request namespace to its backend: any namespace
// selects the pipeline, no namespace selects chat.
func SelectTarget(namespace string) Target {
	if namespace != "" {
		return TargetPipeline
	}
	return TargetChat
}

// Endpoint is the transport-facing state for one base URL: resolved
// headers, query defaults, timeout, retry policy and HTTP client.
// Endpoints are built once per client and never mutated.
type Endpoint struct {
	target     Target
	baseURL    *url.URL
	headers    http.Header
	query      url.Values
	timeout    time.Duration
	retry      core.RetryPolicy
	httpClient *http.Client
}

// Target reports which backend the endpoint serves.
func (e *Endpoint) Target() Target {
	return e.target
}

// BaseURL returns the endpoint's base URL, always with a trailing slash.
func (e *Endpoint) BaseURL() string {
	return e.baseURL.String()
}

// Headers returns a copy of the headers sent with every request.
func (e *Endpoint) Headers() http.Header {
	return e.headers.Clone()
}

// resolve joins path to the base URL and adds the default and extra query.
func (e *Endpoint) resolve(path string, extra url.Values) *url.URL {
	u := e.baseURL.JoinPath(strings.TrimPrefix(path, "/"))

	q := u.Query()
	for k, vs := range e.query {
		q[k] = append([]string(nil), vs...)
	}
	for k, vs := range extra {
		q[k] = append([]string(nil), vs...)
	}
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}
	return u
}

// parseBaseURL validates raw and enforces a trailing slash so relative
// paths join below it.
func parseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, core.ConfigurationError("invalid base URL %q: %v", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, core.ConfigurationError("invalid base URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return nil, core.ConfigurationError("invalid base URL %q: missing host", raw)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawPath = ""
	return u, nil
}

func sameURL(a, b *url.URL) bool {
	return a.String() == b.String()
}
