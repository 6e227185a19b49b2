package check

// Availability is the outcome of a verification run.
type Availability string

const (
	Available   Availability = "available"
	Unavailable Availability = "unavailable"
)

// QuotaStatus is a best-effort signal of whether the provider exposed
// usage/rate-limit information. It is never authoritative.
type QuotaStatus string

const (
	QuotaAvailable   QuotaStatus = "available"
	QuotaUnavailable QuotaStatus = "unavailable"
	QuotaUnknown     QuotaStatus = "unknown"
)

// Mode selects the verification strategy.
type Mode string

const (
	// ModeCatalog lists models the key can enumerate, not necessarily invoke.
	ModeCatalog Mode = "catalog"
	// ModeStrictTarget attempts a minimal real invocation of one named model.
	ModeStrictTarget Mode = "strict_target"
)

// ProviderUnknown is the provider value when no candidate matched the key.
const ProviderUnknown = "unknown"

// maxCatalogModels caps how many model ids a catalog probe reports.
const maxCatalogModels = 50

// ProviderRunResult is the outcome of one verification run. Produced fresh
// per request and never persisted.
type ProviderRunResult struct {
	Provider     string       `json:"provider"`
	Availability Availability `json:"availability"`
	Models       []string     `json:"models"`
	QuotaStatus  QuotaStatus  `json:"quota_status"`
	Errors       []CheckError `json:"errors"`
	Mode         Mode         `json:"mode"`
	TargetModel  string       `json:"target_model,omitempty"`
}

// HasErrorCategory reports whether any recorded error has the category.
func (r ProviderRunResult) HasErrorCategory(c Category) bool {
	for _, e := range r.Errors {
		if e.Category == c {
			return true
		}
	}
	return false
}

// HasErrorCode reports whether any recorded error has the code.
func (r ProviderRunResult) HasErrorCode(code string) bool {
	for _, e := range r.Errors {
		if e.Code == code {
			return true
		}
	}
	return false
}
