package check

import (
	"context"
	"fmt"
	"net/http"

	"github.com/probelab/keycheck/internal/providerspec"
)

// probeStrict performs the high-confidence check: attempt a minimal real
// invocation of the target model, walking the provider's probe shapes in
// registry order until one is conclusive.
func (c *Checker) probeStrict(ctx context.Context, spec providerspec.Spec, key, targetModel string) ProviderRunResult {
	res := ProviderRunResult{
		Provider:    string(spec.Key),
		Mode:        ModeStrictTarget,
		TargetModel: targetModel,
		QuotaStatus: QuotaUnknown,
	}

	lastInconclusive := 0
	for _, probe := range spec.Probes {
		resp, err := c.transport.do(ctx, http.MethodPost, spec.ProbeURL(probe), spec.Headers(key), probe.Body(targetModel))
		if err != nil {
			res.Availability = Unavailable
			res.Errors = append(res.Errors, classifyTransport(err))
			return res
		}

		switch {
		case resp.Status >= 200 && resp.Status < 300:
			res.Availability = Available
			res.Models = []string{targetModel}
			res.QuotaStatus, res.Errors = resolveQuota(spec, resp.Header, res.Errors)
			return res

		case resp.Status == 401 || resp.Status == 403:
			// A rejected key is a key problem, not a probe-shape problem.
			res.Availability = Unavailable
			res.Errors = append(res.Errors, classifyStatus(resp.Status))
			return res

		case resp.Status == 429 || resp.Status >= 500:
			// Outage or throttling; a different probe shape would not help.
			ce := classifyStatus(resp.Status)
			if resp.Status == 429 {
				ce = ce.WithAdvice("wait for the rate-limit window to pass before probing this model again")
			}
			res.Availability = Unavailable
			res.Errors = append(res.Errors, ce)
			return res

		case resp.Status == 400 || resp.Status == 404 || resp.Status == 422:
			// This shape may simply not match the account's API surface.
			lastInconclusive = resp.Status
			continue

		default:
			res.Availability = Unavailable
			res.Errors = append(res.Errors, CheckError{
				Code:           CodeStrictProbeFailed,
				Category:       CategoryProvider,
				Message:        fmt.Sprintf("strict probe returned an unexpected status (HTTP %d)", resp.Status),
				RetryAdvice:    "inspect the provider status page before retrying",
				ProviderStatus: fmt.Sprintf("http_%d", resp.Status),
			})
			return res
		}
	}

	// Every probe shape was rejected as malformed/unknown: the key works at
	// the transport level but this model/account combination is not
	// entitled. Distinct from AUTH_FAILED so callers can tell "bad key"
	// from "bad model".
	providerStatus := "target_model_unavailable"
	if lastInconclusive != 0 {
		providerStatus = fmt.Sprintf("http_%d", lastInconclusive)
	}
	res.Availability = Unavailable
	res.Errors = append(res.Errors, CheckError{
		Code:           CodeTargetModelUnavailable,
		Category:       CategoryProvider,
		Message:        fmt.Sprintf("model %q was not accepted by any %s invocation surface", targetModel, spec.Key),
		RetryAdvice:    "confirm the model id and that the account is entitled to it",
		ProviderStatus: providerStatus,
	})
	return res
}
