package check

import (
	"context"
	"strings"
	"time"

	"github.com/probelab/keycheck/internal/providerspec"
)

// ProviderAuto asks the checker to infer candidates from the key shape.
const ProviderAuto = "auto"

// Checker drives candidate iteration and probing. Safe for concurrent use:
// it holds no per-run state.
type Checker struct {
	specs     map[providerspec.ID]providerspec.Spec
	transport *transport
}

// Option configures a Checker.
type Option func(*Checker)

// WithTimeout overrides the per-call probe deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Checker) { c.transport = newTransport(d) }
}

// WithBaseURL points one provider at a different base URL.
func WithBaseURL(id providerspec.ID, base string) Option {
	return func(c *Checker) {
		if s, ok := c.specs[id]; ok {
			c.specs[id] = s.WithBaseURL(base)
		}
	}
}

// New builds a Checker over the builtin provider registry.
func New(opts ...Option) *Checker {
	c := &Checker{
		specs:     providerspec.Builtins(),
		transport: newTransport(DefaultProbeTimeout),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run verifies a key. provider is ProviderAuto or an explicit provider
// name; strict mode requires targetModel. Run never returns an error:
// every failure mode is folded into the result.
func (c *Checker) Run(ctx context.Context, provider, key string, strict bool, targetModel string) ProviderRunResult {
	mode := ModeCatalog
	if strict {
		mode = ModeStrictTarget
	}
	targetModel = strings.TrimSpace(targetModel)

	if strict && targetModel == "" {
		return ProviderRunResult{
			Provider:     providerName(provider),
			Availability: Unavailable,
			QuotaStatus:  QuotaUnknown,
			Mode:         mode,
			Errors:       []CheckError{errMissingTargetModel()},
		}
	}

	candidates := c.candidates(provider, key)
	if len(candidates) == 0 {
		return ProviderRunResult{
			Provider:     ProviderUnknown,
			Availability: Unavailable,
			QuotaStatus:  QuotaUnknown,
			Mode:         mode,
			TargetModel:  targetModel,
			Errors:       []CheckError{errProviderNotDetected()},
		}
	}

	// Candidates run strictly in order; the precedence logic below depends
	// on ordered evidence, so there is no concurrency here.
	var retainedAuth *ProviderRunResult
	var retainedStrictUnavailable *ProviderRunResult
	var firstFailure *ProviderRunResult

	for _, id := range candidates {
		spec := c.specs[id]
		var res ProviderRunResult
		if strict {
			res = c.probeStrict(ctx, spec, key, targetModel)
		} else {
			res = c.probeCatalog(ctx, spec, key)
		}

		if res.Availability == Available {
			return res
		}
		if firstFailure == nil {
			r := res
			firstFailure = &r
		}

		switch {
		case res.HasErrorCode(CodeAuthFailed):
			// A key recognized as one provider's shape but rejected there
			// may still belong to the next candidate (shared sk- prefix).
			if retainedAuth == nil {
				r := res
				retainedAuth = &r
			}
		case strict && res.HasErrorCode(CodeTargetModelUnavailable):
			if retainedStrictUnavailable == nil {
				r := res
				retainedStrictUnavailable = &r
			}
		default:
			// Network/provider failures say nothing about which provider
			// owns the key; trying more candidates only costs latency.
			return res
		}
	}

	// Precedence reflects decreasing specificity of evidence about
	// provider identity: auth > strict-unavailable > first failure.
	if retainedAuth != nil {
		return *retainedAuth
	}
	if retainedStrictUnavailable != nil {
		return *retainedStrictUnavailable
	}
	return *firstFailure
}

// candidates resolves the ordered provider list for a run.
func (c *Checker) candidates(provider, key string) []providerspec.ID {
	if provider == "" || strings.EqualFold(strings.TrimSpace(provider), ProviderAuto) {
		return DetectCandidates(key)
	}
	id, ok := providerspec.CanonicalKey(provider)
	if !ok {
		return nil
	}
	return []providerspec.ID{id}
}

func providerName(provider string) string {
	if id, ok := providerspec.CanonicalKey(provider); ok {
		return string(id)
	}
	return ProviderUnknown
}
