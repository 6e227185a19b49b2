package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/probelab/keycheck/internal/check"
	"github.com/probelab/keycheck/internal/config"
)

// testServer builds a Server whose anthropic provider points at a fixture.
func testServer(t *testing.T, provider http.HandlerFunc, mutate func(*config.Config)) *Server {
	t.Helper()
	fixture := httptest.NewServer(provider)
	t.Cleanup(fixture.Close)

	cfg := config.Default()
	cfg.Server.RateLimit.Requests = 1000
	cfg.Providers = map[string]config.ProviderOverride{
		"anthropic": {BaseURL: fixture.URL},
	}
	if mutate != nil {
		mutate(cfg)
	}
	return New(cfg)
}

func doCheck(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/checks", strings.NewReader(body))
	req.RemoteAddr = "192.0.2.10:51000"
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestCheckEndpointCatalogSuccess(t *testing.T) {
	s := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("anthropic-ratelimit-requests-limit", "50")
		fmt.Fprint(w, `{"data":[{"id":"claude-sonnet-4-5"}]}`)
	}, nil)

	rec := doCheck(t, s, `{"api_key":"sk-ant-api03-xyz","provider":"anthropic"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}

	var resp CheckResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Result.Availability != check.Available {
		t.Fatalf("availability = %s", resp.Result.Availability)
	}
	if resp.HealthScore != 100 {
		t.Fatalf("health score = %d", resp.HealthScore)
	}
	if len(resp.NextActions) == 0 || len(resp.NextActions) > 5 {
		t.Fatalf("next actions = %v", resp.NextActions)
	}
	if resp.Meta.RequestID == "" || resp.Meta.Timestamp == "" {
		t.Fatalf("meta incomplete: %+v", resp.Meta)
	}
	if resp.Meta.StrictMode {
		t.Fatal("strict_mode echoed wrong")
	}
}

func TestCheckEndpointStrictSuccess(t *testing.T) {
	s := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("path = %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"id":"msg_1"}`)
	}, nil)

	rec := doCheck(t, s, `{"api_key":"sk-ant-api03-xyz","provider":"anthropic","strict_mode":true,"target_model":"claude-sonnet-4-5"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}

	var resp CheckResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Result.Mode != check.ModeStrictTarget {
		t.Fatalf("mode = %s", resp.Result.Mode)
	}
	if len(resp.Result.Models) != 1 || resp.Result.Models[0] != "claude-sonnet-4-5" {
		t.Fatalf("models = %v", resp.Result.Models)
	}
	if resp.Meta.TargetModel != "claude-sonnet-4-5" || !resp.Meta.StrictMode {
		t.Fatalf("meta = %+v", resp.Meta)
	}
}

func TestCheckEndpointAuthFailureStillHTTP200(t *testing.T) {
	s := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no", http.StatusUnauthorized)
	}, nil)

	rec := doCheck(t, s, `{"api_key":"sk-ant-api03-xyz","provider":"anthropic"}`)
	// Verification outcomes are payload, not transport errors.
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp CheckResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Result.Availability != check.Unavailable {
		t.Fatalf("availability = %s", resp.Result.Availability)
	}
	if resp.HealthScore > 20 {
		t.Fatalf("auth failure scored %d", resp.HealthScore)
	}
}

func TestCheckEndpointSchemaValidation(t *testing.T) {
	s := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("provider should not be reached on validation failure")
	}, nil)

	cases := []struct {
		name string
		body string
	}{
		{"key too short", `{"api_key":"sk-1","provider":"auto"}`},
		{"key too long", fmt.Sprintf(`{"api_key":%q,"provider":"auto"}`, strings.Repeat("k", 300))},
		{"bad provider", `{"api_key":"sk-validlength","provider":"mistral"}`},
		{"missing provider", `{"api_key":"sk-validlength"}`},
		{"unknown field", `{"api_key":"sk-validlength","provider":"auto","extra":1}`},
		{"wrong type", `{"api_key":12345678,"provider":"auto"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doCheck(t, s, tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
			}
			var er ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &er); err != nil {
				t.Fatal(err)
			}
			if er.Code != "VALIDATION_FAILED" {
				t.Fatalf("code = %s (%s)", er.Code, er.Error)
			}
		})
	}
}

func TestCheckEndpointMalformedJSON(t *testing.T) {
	s := testServer(t, func(w http.ResponseWriter, r *http.Request) {}, nil)
	rec := doCheck(t, s, `{"api_key":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestCheckEndpointModelGlobRestriction(t *testing.T) {
	s := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("provider should not be reached for a disallowed model")
	}, func(cfg *config.Config) {
		cfg.AllowedModelGlobs = []string{"claude-*"}
	})

	rec := doCheck(t, s, `{"api_key":"sk-ant-api03-xyz","provider":"anthropic","strict_mode":true,"target_model":"gpt-4o"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	var er ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &er); err != nil {
		t.Fatal(err)
	}
	if er.Code != "TARGET_MODEL_NOT_ALLOWED" {
		t.Fatalf("code = %s", er.Code)
	}
}

func TestCheckEndpointRateLimited(t *testing.T) {
	s := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[]}`)
	}, func(cfg *config.Config) {
		cfg.Server.RateLimit.Requests = 2
		cfg.Server.RateLimit.WindowMS = 60_000
	})

	body := `{"api_key":"sk-ant-api03-xyz","provider":"anthropic"}`
	for i := 0; i < 2; i++ {
		if rec := doCheck(t, s, body); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, rec.Code)
		}
	}
	rec := doCheck(t, s, body)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	var er ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &er); err != nil {
		t.Fatal(err)
	}
	if er.Code != check.CodeRateLimited {
		t.Fatalf("code = %s", er.Code)
	}
}

func TestCheckEndpointCrossOriginBlocked(t *testing.T) {
	s := testServer(t, func(w http.ResponseWriter, r *http.Request) {}, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/checks",
		strings.NewReader(`{"api_key":"sk-ant-api03-xyz","provider":"anthropic"}`))
	req.RemoteAddr = "192.0.2.10:51000"
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := testServer(t, func(w http.ResponseWriter, r *http.Request) {}, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}
