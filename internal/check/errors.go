package check

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Category groups error codes by remedy.
type Category string

const (
	CategoryValidation Category = "validation"
	CategoryAuth       Category = "auth"
	CategoryNetwork    Category = "network"
	CategoryProvider   Category = "provider"
	CategoryQuota      Category = "quota"
	CategoryUnknown    Category = "unknown"
)

// Error codes. The taxonomy is closed; every failure a run can surface
// carries exactly one of these.
const (
	CodeProviderNotDetected    = "PROVIDER_NOT_DETECTED"
	CodeMissingTargetModel     = "MISSING_TARGET_MODEL"
	CodeAuthFailed             = "AUTH_FAILED"
	CodeRateLimited            = "RATE_LIMITED"
	CodeProviderUnavailable    = "PROVIDER_UNAVAILABLE"
	CodeProviderError          = "PROVIDER_ERROR"
	CodeProviderTimeout        = "PROVIDER_TIMEOUT"
	CodeNetworkError           = "NETWORK_ERROR"
	CodeStrictProbeFailed      = "STRICT_PROBE_FAILED"
	CodeTargetModelUnavailable = "TARGET_MODEL_UNAVAILABLE"
	CodeQuotaUnavailable       = "QUOTA_UNAVAILABLE"
)

// CheckError is an immutable value describing one failure or advisory.
// It travels inside ProviderRunResult rather than escaping as a Go error.
type CheckError struct {
	Code           string   `json:"code"`
	Category       Category `json:"category"`
	Message        string   `json:"message"`
	RetryAdvice    string   `json:"retry_advice,omitempty"`
	ProviderStatus string   `json:"provider_status,omitempty"`
}

// WithAdvice returns a copy with context-specific retry wording.
func (e CheckError) WithAdvice(advice string) CheckError {
	out := e
	if advice != "" {
		out.RetryAdvice = advice
	}
	return out
}

func errProviderNotDetected() CheckError {
	return CheckError{
		Code:        CodeProviderNotDetected,
		Category:    CategoryValidation,
		Message:     "could not infer a provider from the key shape",
		RetryAdvice: "pass the provider explicitly instead of auto-detection",
	}
}

func errMissingTargetModel() CheckError {
	return CheckError{
		Code:        CodeMissingTargetModel,
		Category:    CategoryValidation,
		Message:     "strict mode requires a target model",
		RetryAdvice: "set target_model or switch to catalog mode",
	}
}

func errQuotaUnavailable() CheckError {
	return CheckError{
		Code:        CodeQuotaUnavailable,
		Category:    CategoryQuota,
		Message:     "provider did not expose rate-limit headers; quota visibility unknown",
		RetryAdvice: "check usage limits in the provider dashboard",
	}
}

// classifyStatus maps a non-2xx HTTP status to a CheckError.
func classifyStatus(status int) CheckError {
	httpStatus := fmt.Sprintf("http_%d", status)
	switch {
	case status == 401 || status == 403:
		return CheckError{
			Code:           CodeAuthFailed,
			Category:       CategoryAuth,
			Message:        fmt.Sprintf("provider rejected the key (HTTP %d)", status),
			RetryAdvice:    "verify the key is active and has the required scope",
			ProviderStatus: httpStatus,
		}
	case status == 429:
		return CheckError{
			Code:           CodeRateLimited,
			Category:       CategoryProvider,
			Message:        "provider throttled the request (HTTP 429)",
			RetryAdvice:    "wait for the rate-limit window to pass, then retry",
			ProviderStatus: httpStatus,
		}
	case status >= 500:
		return CheckError{
			Code:           CodeProviderUnavailable,
			Category:       CategoryProvider,
			Message:        fmt.Sprintf("provider is degraded (HTTP %d)", status),
			RetryAdvice:    "retry once the provider recovers",
			ProviderStatus: "degraded",
		}
	default:
		return CheckError{
			Code:           CodeProviderError,
			Category:       CategoryProvider,
			Message:        fmt.Sprintf("provider returned an unexpected status (HTTP %d)", status),
			RetryAdvice:    "inspect the provider status page before retrying",
			ProviderStatus: httpStatus,
		}
	}
}

// classifyTransport maps a transport failure to a CheckError. Anything not
// recognizable as a deadline becomes NETWORK_ERROR so the caller always
// gets a result instead of a propagated exception.
func classifyTransport(err error) CheckError {
	if isDeadline(err) {
		return CheckError{
			Code:           CodeProviderTimeout,
			Category:       CategoryNetwork,
			Message:        "request deadline elapsed before the provider responded",
			RetryAdvice:    "retry; the provider may be slow right now",
			ProviderStatus: "timeout",
		}
	}
	return CheckError{
		Code:           CodeNetworkError,
		Category:       CategoryNetwork,
		Message:        fmt.Sprintf("request failed before a response arrived: %v", err),
		RetryAdvice:    "check connectivity and retry",
		ProviderStatus: "network_error",
	}
}

func isDeadline(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
