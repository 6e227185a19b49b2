package server

import "github.com/probelab/keycheck/internal/check"

// CheckRequest is the POST /v1/checks request body. It is validated
// against the embedded JSON Schema before anything else runs.
type CheckRequest struct {
	// APIKey is the credential to verify, 8-256 characters.
	APIKey string `json:"api_key"`

	// Provider is "auto" or an explicit provider name.
	Provider string `json:"provider"`

	// StrictMode selects the target-model probe instead of the catalog probe.
	StrictMode bool `json:"strict_mode"`

	// TargetModel is required when StrictMode is set.
	TargetModel string `json:"target_model,omitempty"`
}

// Meta describes one handled request.
type Meta struct {
	RequestID   string `json:"request_id"`
	Timestamp   string `json:"timestamp"`
	ElapsedMS   int64  `json:"elapsed_ms"`
	StrictMode  bool   `json:"strict_mode"`
	TargetModel string `json:"target_model,omitempty"`
}

// CheckResponse is the POST /v1/checks response body.
type CheckResponse struct {
	Result      check.ProviderRunResult `json:"result"`
	HealthScore int                     `json:"health_score"`
	NextActions []string                `json:"next_actions"`
	Meta        Meta                    `json:"meta"`
}

// ErrorResponse is a standard error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}
