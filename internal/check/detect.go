package check

import (
	"strings"

	"github.com/probelab/keycheck/internal/providerspec"
)

// prefixRule maps a key prefix to candidate providers. Rules are evaluated
// in order; the first match wins. More specific prefixes must precede the
// bare "sk-" rule.
type prefixRule struct {
	prefixes   []string
	candidates []providerspec.ID
}

var prefixRules = []prefixRule{
	{[]string{"sk-ant-"}, []providerspec.ID{providerspec.Anthropic}},
	{[]string{"sk-or-v1-", "sk-or-"}, []providerspec.ID{providerspec.OpenRouter}},
	{[]string{"sk-proj-", "sk-live-"}, []providerspec.ID{providerspec.OpenAI}},
	// A bare sk- key is most often OpenRouter in practice, so it is tried
	// before OpenAI.
	{[]string{"sk-"}, []providerspec.ID{providerspec.OpenRouter, providerspec.OpenAI}},
}

// DetectCandidates maps a raw key to the ordered list of plausible
// providers. An empty result means the key shape is unrecognized.
func DetectCandidates(rawKey string) []providerspec.ID {
	key := strings.TrimSpace(rawKey)
	for _, rule := range prefixRules {
		for _, p := range rule.prefixes {
			if strings.HasPrefix(key, p) {
				return append([]providerspec.ID{}, rule.candidates...)
			}
		}
	}
	return nil
}
