package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/probelab/keycheck/internal/check"
)

// maxRequestBytes bounds the POST /v1/checks body.
const maxRequestBytes = 64 << 10

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow(r.RemoteAddr) {
		writeErrorCode(w, http.StatusTooManyRequests, check.CodeRateLimited,
			"request budget exhausted; retry after the window resets")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("read request body: %v", err))
		return
	}

	// Validate the raw document before binding so unknown fields and type
	// mismatches surface as schema errors, not decode errors.
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}
	if err := validateCheckRequest(doc); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}

	var req CheckRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	if req.StrictMode && req.TargetModel != "" && !s.config.ModelAllowed(req.TargetModel) {
		writeErrorCode(w, http.StatusBadRequest, "TARGET_MODEL_NOT_ALLOWED",
			fmt.Sprintf("model %q is not permitted by allowed_model_globs", req.TargetModel))
		return
	}

	requestID := ulid.Make().String()
	started := time.Now()

	result := s.checker.Run(r.Context(), req.Provider, req.APIKey, req.StrictMode, req.TargetModel)

	elapsed := time.Since(started)
	s.logger.Printf("check request_id=%s key=%s provider=%s mode=%s availability=%s elapsed=%s",
		requestID, check.KeyFingerprint(req.APIKey), result.Provider, result.Mode,
		result.Availability, elapsed.Round(time.Millisecond))

	writeJSON(w, http.StatusOK, CheckResponse{
		Result:      result,
		HealthScore: check.HealthScore(result),
		NextActions: check.NextActions(result),
		Meta: Meta{
			RequestID:   requestID,
			Timestamp:   started.UTC().Format(time.RFC3339),
			ElapsedMS:   elapsed.Milliseconds(),
			StrictMode:  req.StrictMode,
			TargetModel: req.TargetModel,
		},
	})
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func writeErrorCode(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Code: code})
}
