package datasource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// maxResponseSize is the maximum allowed response size from a backend (10MB)
const maxResponseSize = 10 * 1024 * 1024

// TransportRequest is one concrete HTTP request as handed to the transport,
// after profile resolution and substitution.
type TransportRequest struct {
	Method  string
	URL     string
	Body    interface{}
	Headers map[string]string
	Query   map[string]string
}

// TransportResponse is the uniform response shape the invoker consumes.
type TransportResponse struct {
	Status  int
	Data    interface{}
	Headers map[string]string
}

// Transport performs a single HTTP(S)-style request. It does not retry; the
// invoker wraps it with the profile's retry/backoff discipline. The
// per-attempt timeout arrives via the context deadline.
type Transport interface {
	Do(ctx context.Context, req TransportRequest) (*TransportResponse, error)
}

// HTTPTransport implements Transport on net/http
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport creates an HTTP transport. The client carries no global
// timeout; each attempt is bounded by its context deadline.
func NewHTTPTransport() *HTTPTransport {
	return &HTTPTransport{
		client: &http.Client{},
	}
}

// NewHTTPTransportWithClient creates a transport with an existing client
// (useful for testing)
func NewHTTPTransportWithClient(client *http.Client) *HTTPTransport {
	return &HTTPTransport{client: client}
}

// Do performs the request and returns the uniform response. Response bodies
// that parse as JSON are returned structured; anything else is returned as a
// raw string.
func (t *HTTPTransport) Do(ctx context.Context, req TransportRequest) (*TransportResponse, error) {
	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	if len(req.Query) > 0 {
		values := httpReq.URL.Query()
		for key, value := range req.Query {
			values.Set(key, value)
		}
		httpReq.URL.RawQuery = values.Encode()
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &TransportResponse{
		Status:  resp.StatusCode,
		Data:    decodeBody(payload),
		Headers: flattenHeaders(resp.Header),
	}, nil
}

// encodeBody renders the request body: strings are sent raw, nil sends no
// body, everything else is JSON-encoded.
func encodeBody(body interface{}) (io.Reader, string, error) {
	switch v := body.(type) {
	case nil:
		return nil, "", nil
	case string:
		return strings.NewReader(v), "", nil
	default:
		payload, err := json.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(payload), "application/json", nil
	}
}

// decodeBody parses a response payload as JSON where possible, else returns
// the raw text
func decodeBody(payload []byte) interface{} {
	if len(payload) == 0 {
		return nil
	}
	var data interface{}
	if err := json.Unmarshal(payload, &data); err != nil {
		return string(payload)
	}
	return data
}

// flattenHeaders keeps the first value of each response header
func flattenHeaders(header http.Header) map[string]string {
	flat := make(map[string]string, len(header))
	for key, values := range header {
		if len(values) > 0 {
			flat[key] = values[0]
		}
	}
	return flat
}

// JoinURL joins a profile base address and a call path
func JoinURL(base, path string) string {
	if path == "" {
		return base
	}
	if u, err := url.Parse(path); err == nil && u.IsAbs() {
		return path
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
}

// Ensure HTTPTransport implements Transport
var _ Transport = (*HTTPTransport)(nil)
