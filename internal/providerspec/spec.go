package providerspec

import (
	"net/http"
	"strings"
)

// ID is a compile-time provider identifier. The set of IDs is closed:
// every supported provider has an entry in builtinSpecs.
type ID string

const (
	OpenAI     ID = "openai"
	Anthropic  ID = "anthropic"
	OpenRouter ID = "openrouter"
)

// HeaderBuilder constructs the auth headers for a raw API key.
type HeaderBuilder func(key string) http.Header

// BodyBuilder constructs a minimal probe body for a target model.
type BodyBuilder func(model string) []byte

// StrictProbe is one candidate shape of a minimal real invocation.
// Providers whose API surface varies by account or tier carry more than
// one; they are attempted in declaration order.
type StrictProbe struct {
	Path string
	Body BodyBuilder
}

// Spec describes one provider: where its catalog lives, how to
// authenticate, which probe shapes strict mode walks, and which response
// headers hint at quota visibility.
type Spec struct {
	Key          ID
	BaseURL      string
	CatalogPath  string
	Headers      HeaderBuilder
	Probes       []StrictProbe
	QuotaHeaders []string
}

// CatalogURL returns the full models-listing endpoint.
func (s Spec) CatalogURL() string {
	return strings.TrimRight(s.BaseURL, "/") + s.CatalogPath
}

// ProbeURL returns the full endpoint for one strict probe.
func (s Spec) ProbeURL(p StrictProbe) string {
	return strings.TrimRight(s.BaseURL, "/") + p.Path
}

// WithBaseURL returns a copy of the spec pointed at a different base URL.
// Used for self-hosted gateways and for tests.
func (s Spec) WithBaseURL(base string) Spec {
	out := cloneSpec(s)
	if b := strings.TrimRight(strings.TrimSpace(base), "/"); b != "" {
		out.BaseURL = b
	}
	return out
}

// CanonicalKey normalizes a provider name to its registry key. The second
// return is false when the name is not a known provider.
func CanonicalKey(in string) (ID, bool) {
	key := ID(strings.ToLower(strings.TrimSpace(in)))
	if _, ok := builtinSpecs[key]; !ok {
		return "", false
	}
	return key, true
}

// HasQuotaHint reports whether any of the spec's quota-hint headers is
// present in the response. Hint header names are API-version-specific and
// may silently go stale if a provider renames them.
func (s Spec) HasQuotaHint(h http.Header) bool {
	for _, name := range s.QuotaHeaders {
		if h.Get(name) != "" {
			return true
		}
	}
	return false
}
