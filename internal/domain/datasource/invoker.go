package datasource

import "context"

// CallRequest is one HTTP-style call issued against a resolved profile.
type CallRequest struct {
	Method  string            `json:"method"`
	Path    string            `json:"path"`
	Body    interface{}       `json:"body,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
	Query   map[string]string `json:"query,omitempty"`
}

// CallResult is a definitive successful call outcome. A call either succeeds
// with a result or fails terminally with *UnavailableError once the retry
// budget is exhausted; there is no partial state.
type CallResult struct {
	Status  int               `json:"status"`
	Data    interface{}       `json:"data"`
	Headers map[string]string `json:"headers,omitempty"`
}

// Invoker performs one logical call against a profile, applying the profile's
// per-attempt timeout and retry budget with exponential backoff.
type Invoker interface {
	Invoke(ctx context.Context, profile Profile, req CallRequest) (*CallResult, error)
}
