package check

import (
	"context"
	"net/http"

	"github.com/probelab/keycheck/internal/providerspec"
)

// probeCatalog performs the low-privilege check: list the models the key
// can enumerate and infer quota visibility from response headers.
func (c *Checker) probeCatalog(ctx context.Context, spec providerspec.Spec, key string) ProviderRunResult {
	res := ProviderRunResult{
		Provider:    string(spec.Key),
		Mode:        ModeCatalog,
		QuotaStatus: QuotaUnknown,
	}

	resp, err := c.transport.do(ctx, http.MethodGet, spec.CatalogURL(), spec.Headers(key), nil)
	if err != nil {
		res.Availability = Unavailable
		res.Errors = append(res.Errors, classifyTransport(err))
		return res
	}
	if resp.Status < 200 || resp.Status >= 300 {
		res.Availability = Unavailable
		res.Errors = append(res.Errors, classifyStatus(resp.Status))
		return res
	}

	res.Availability = Available
	res.Models = catalogModelIDs(resp.JSON())
	res.QuotaStatus, res.Errors = resolveQuota(spec, resp.Header, res.Errors)
	return res
}

// catalogModelIDs extracts up to maxCatalogModels string ids from a
// {"data":[{"id":...}]} body, preserving response order. A body without a
// data array is an empty catalog, not a failure.
func catalogModelIDs(body map[string]any) []string {
	data, _ := body["data"].([]any)
	var ids []string
	for _, entry := range data {
		if len(ids) >= maxCatalogModels {
			break
		}
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		if id, ok := m["id"].(string); ok && id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// resolveQuota inspects response headers for the provider's rate-limit
// hints. Missing hints are advisory only: availability is untouched.
func resolveQuota(spec providerspec.Spec, h http.Header, errs []CheckError) (QuotaStatus, []CheckError) {
	if spec.HasQuotaHint(h) {
		return QuotaAvailable, errs
	}
	return QuotaUnknown, append(errs, errQuotaUnavailable())
}
