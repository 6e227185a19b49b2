package check

import "fmt"

// maxNextActions caps the suggestion list.
const maxNextActions = 5

// HealthScore derives a 0-100 confidence score from a run result. It is a
// pure function: the same result always scores the same.
func HealthScore(res ProviderRunResult) int {
	score := 0
	if res.Availability == Available {
		score += 50
	}
	if len(res.Models) > 0 {
		score += 30
	}
	switch res.QuotaStatus {
	case QuotaAvailable:
		score += 20
	case QuotaUnknown:
		score += 8
	}

	// Auth failures must never read as healthy, whatever else happened.
	if res.HasErrorCategory(CategoryAuth) && score > 20 {
		score = 20
	}
	if res.HasErrorCode(CodeProviderTimeout) {
		score -= 10
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// NextActions builds a short, deduplicated list of next-step suggestions.
func NextActions(res ProviderRunResult) []string {
	var actions []string
	if res.Availability == Available && len(res.Models) > 0 {
		actions = append(actions, fmt.Sprintf("try a request against %q", res.Models[0]))
	}
	if res.QuotaStatus != QuotaAvailable {
		actions = append(actions, "look up usage limits in the provider dashboard")
	}
	for _, e := range res.Errors {
		if e.RetryAdvice != "" {
			actions = append(actions, e.RetryAdvice)
			break
		}
	}
	if len(actions) == 0 {
		actions = append(actions, "key verified; ready to use")
	}
	return dedupeActions(actions)
}

func dedupeActions(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, a := range in {
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
		if len(out) == maxNextActions {
			break
		}
	}
	return out
}
