package hyperbee

import (
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"sort"
	"strings"
)

// Version is the client version reported in User-Agent.
const Version = "0.1.0"

// Header names.
const (
	headerAuthorization  = "Authorization"
	headerOrganization   = "HyperBee-Organization"
	headerAsync          = "X-Stainless-Async"
	headerRetryCount     = "X-Stainless-Retry-Count"
	headerIdempotencyKey = "Idempotency-Key"
)

// authHeaders returns the Authorization header for cfg.
func authHeaders(cfg *Config) http.Header {
	h := make(http.Header, 1)
	h.Set(headerAuthorization, "Bearer "+cfg.APIKey.Expose())
	return h
}

// buildHeaders merges, in increasing priority: transport defaults, the
// async marker, auth, the organization (only when set), custom headers.
func buildHeaders(cfg *Config, v variant) http.Header {
	headers := make(http.Header)

	headers.Set("Accept", "application/json")
	headers.Set("Content-Type", "application/json")
	headers.Set("User-Agent", "hyperbee-go/"+Version)
	headers.Set(headerAsync, v.marker())

	for key, values := range authHeaders(cfg) {
		headers[key] = values
	}

	if cfg.Organization != "" {
		headers.Set(headerOrganization, cfg.Organization)
	}

	for key, value := range cfg.DefaultHeaders {
		headers.Set(key, value)
	}

	return headers
}

// encodeQuery serializes query defaults. Arrays are comma-joined and
// nested maps use bracket keys (a[b]=c).
func encodeQuery(query map[string]any) url.Values {
	values := make(url.Values, len(query))
	for key, value := range query {
		addQueryValue(values, key, value)
	}
	return values
}

func addQueryValue(values url.Values, key string, value any) {
	switch v := value.(type) {
	case nil:
		return
	case string:
		values.Set(key, v)
	case bool:
		values.Set(key, fmt.Sprint(v))
	case []string:
		values.Set(key, strings.Join(v, ","))
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			addQueryValue(values, key+"["+k+"]", v[k])
		}
	default:
		rv := reflect.ValueOf(value)
		if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			parts := make([]string, 0, rv.Len())
			for i := 0; i < rv.Len(); i++ {
				parts = append(parts, fmt.Sprint(rv.Index(i).Interface()))
			}
			values.Set(key, strings.Join(parts, ","))
			return
		}
		values.Set(key, fmt.Sprint(value))
	}
}
