package check

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"
)

// DefaultProbeTimeout bounds every outbound probe call.
const DefaultProbeTimeout = 8 * time.Second

// maxResponseBytes caps how much of a probe response body is read.
const maxResponseBytes = 1 << 20

// probeResponse is the transport-level view of one provider response.
type probeResponse struct {
	Status int
	Header http.Header
	Body   []byte
}

// JSON decodes the body as a JSON object. A non-object or malformed body
// yields nil; probers treat that the same as an empty object.
func (r *probeResponse) JSON() map[string]any {
	var out map[string]any
	if err := json.Unmarshal(r.Body, &out); err != nil {
		return nil
	}
	return out
}

// transport performs one HTTP call under a per-call deadline. The client
// carries no timeout of its own; the context deadline is the single bound,
// and cancel/close run on every exit path.
type transport struct {
	client  *http.Client
	timeout time.Duration
}

func newTransport(timeout time.Duration) *transport {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &transport{
		client:  &http.Client{Timeout: 0},
		timeout: timeout,
	}
}

func (t *transport) do(ctx context.Context, method, url string, header http.Header, body []byte) (*probeResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	for name, values := range header {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}
	return &probeResponse{Status: resp.StatusCode, Header: resp.Header, Body: b}, nil
}
