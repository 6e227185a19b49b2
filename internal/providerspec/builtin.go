package providerspec

import (
	"encoding/json"
	"net/http"
)

func bearerHeaders(key string) http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+key)
	return h
}

func anthropicHeaders(key string) http.Header {
	h := http.Header{}
	h.Set("x-api-key", key)
	h.Set("anthropic-version", "2023-06-01")
	return h
}

func chatCompletionBody(model string) []byte {
	b, _ := json.Marshal(map[string]any{
		"model":      model,
		"max_tokens": 1,
		"messages": []map[string]any{
			{"role": "user", "content": "ping"},
		},
	})
	return b
}

func responsesBody(model string) []byte {
	// The Responses API rejects max_output_tokens below 16.
	b, _ := json.Marshal(map[string]any{
		"model":             model,
		"input":             "ping",
		"max_output_tokens": 16,
	})
	return b
}

func messagesBody(model string) []byte {
	b, _ := json.Marshal(map[string]any{
		"model":      model,
		"max_tokens": 1,
		"messages": []map[string]any{
			{"role": "user", "content": "ping"},
		},
	})
	return b
}

var builtinSpecs = map[ID]Spec{
	OpenAI: {
		Key:         OpenAI,
		BaseURL:     "https://api.openai.com",
		CatalogPath: "/v1/models",
		Headers:     bearerHeaders,
		// Some accounts only expose one of the two invocation surfaces,
		// so strict mode tries chat completions first, then responses.
		Probes: []StrictProbe{
			{Path: "/v1/chat/completions", Body: chatCompletionBody},
			{Path: "/v1/responses", Body: responsesBody},
		},
		QuotaHeaders: []string{
			"x-ratelimit-limit-requests",
			"x-ratelimit-remaining-requests",
		},
	},
	Anthropic: {
		Key:         Anthropic,
		BaseURL:     "https://api.anthropic.com",
		CatalogPath: "/v1/models",
		Headers:     anthropicHeaders,
		Probes: []StrictProbe{
			{Path: "/v1/messages", Body: messagesBody},
		},
		QuotaHeaders: []string{
			"anthropic-ratelimit-requests-limit",
			"anthropic-ratelimit-tokens-limit",
		},
	},
	OpenRouter: {
		Key:         OpenRouter,
		BaseURL:     "https://openrouter.ai",
		CatalogPath: "/api/v1/models",
		Headers:     bearerHeaders,
		Probes: []StrictProbe{
			{Path: "/api/v1/chat/completions", Body: chatCompletionBody},
		},
		QuotaHeaders: []string{
			"x-ratelimit-limit-requests",
			"x-ratelimit-remaining-requests",
		},
	},
}

// Builtin returns the spec for one provider.
func Builtin(key ID) (Spec, bool) {
	s, ok := builtinSpecs[key]
	if !ok {
		return Spec{}, false
	}
	return cloneSpec(s), true
}

// Builtins returns a copy of the full registry.
func Builtins() map[ID]Spec {
	out := make(map[ID]Spec, len(builtinSpecs))
	for key, spec := range builtinSpecs {
		out[key] = cloneSpec(spec)
	}
	return out
}

func cloneSpec(in Spec) Spec {
	out := in
	out.Probes = append([]StrictProbe{}, in.Probes...)
	out.QuotaHeaders = append([]string{}, in.QuotaHeaders...)
	return out
}
