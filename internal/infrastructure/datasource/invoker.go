package datasource

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/resolvd/backend/internal/domain/datasource"
)

// backoffBase is the sleep before the second attempt; it doubles after every
// further failure (100, 200, 400, ... ms), with no jitter and no cap.
const backoffBase = 100 * time.Millisecond

// Sleeper is a cancellable sleep. Abstracted so tests can observe the backoff
// schedule without waiting, and so caller deadlines could interrupt the
// inter-attempt sleep without changing the Invoker interface.
type Sleeper func(ctx context.Context, d time.Duration) error

// sleepWithContext sleeps for d or until the context is done
func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Invoker issues calls against resolved profiles, applying the profile's
// per-attempt timeout and retry budget with exponential backoff.
type Invoker struct {
	transport Transport
	sleep     Sleeper
	logger    *zap.Logger
}

// InvokerOption is a functional option for configuring the invoker
type InvokerOption func(*Invoker)

// WithSleeper overrides the backoff sleep (used by tests)
func WithSleeper(sleep Sleeper) InvokerOption {
	return func(i *Invoker) {
		i.sleep = sleep
	}
}

// WithLogger sets the invoker's logger
func WithLogger(logger *zap.Logger) InvokerOption {
	return func(i *Invoker) {
		i.logger = logger
	}
}

// NewInvoker creates an invoker over the given transport
func NewInvoker(transport Transport, opts ...InvokerOption) *Invoker {
	inv := &Invoker{
		transport: transport,
		sleep:     sleepWithContext,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// Invoke attempts the call up to profile.RetryBudget times. Any transport
// error or non-2xx status counts as an attempt failure; the sleep between
// attempt k and k+1 is backoffBase·2^(k-1). Success on any attempt returns
// immediately; exhaustion returns *datasource.UnavailableError carrying the
// last error and the attempt count.
func (i *Invoker) Invoke(ctx context.Context, profile datasource.Profile, req datasource.CallRequest) (*datasource.CallResult, error) {
	treq := TransportRequest{
		Method:  req.Method,
		URL:     JoinURL(profile.BaseAddress, req.Path),
		Body:    req.Body,
		Headers: mergeHeaders(profile.DefaultHeaders, req.Headers),
		Query:   req.Query,
	}

	var lastErr error
	for attempt := 1; attempt <= profile.RetryBudget; attempt++ {
		result, err := i.attempt(ctx, profile.Timeout(), treq)
		if err == nil {
			return result, nil
		}
		lastErr = err

		i.logger.Warn("datasource call attempt failed",
			zap.String("datasource", profile.Name),
			zap.Int("attempt", attempt),
			zap.Int("retry_budget", profile.RetryBudget),
			zap.Error(err),
		)

		if attempt < profile.RetryBudget {
			backoff := backoffBase << (attempt - 1)
			if err := i.sleep(ctx, backoff); err != nil {
				return nil, &datasource.UnavailableError{Datasource: profile.Name, Attempts: attempt, Err: err}
			}
		}
	}

	return nil, &datasource.UnavailableError{Datasource: profile.Name, Attempts: profile.RetryBudget, Err: lastErr}
}

// attempt performs one bounded call. Each attempt either completes or times
// out as one unit; the timeout itself is not retried within.
func (i *Invoker) attempt(ctx context.Context, timeout time.Duration, req TransportRequest) (*datasource.CallResult, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := i.transport.Do(attemptCtx, req)
	if err != nil {
		return nil, err
	}
	if resp.Status < 200 || resp.Status > 299 {
		return nil, fmt.Errorf("datasource returned status %d", resp.Status)
	}

	return &datasource.CallResult{
		Status:  resp.Status,
		Data:    resp.Data,
		Headers: resp.Headers,
	}, nil
}

// mergeHeaders overlays request headers on the profile defaults; the request
// wins on conflict
func mergeHeaders(defaults, headers map[string]string) map[string]string {
	if len(defaults) == 0 {
		return headers
	}
	merged := make(map[string]string, len(defaults)+len(headers))
	for key, value := range defaults {
		merged[key] = value
	}
	for key, value := range headers {
		merged[key] = value
	}
	return merged
}

// Ensure Invoker implements the domain interface
var _ datasource.Invoker = (*Invoker)(nil)
