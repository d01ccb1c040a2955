package resolver

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/resolvd/backend/internal/domain/datasource"
	"github.com/resolvd/backend/internal/domain/resolver"
	"github.com/resolvd/backend/internal/domain/shared"
)

const defaultCacheTTL = 5 * time.Minute

// Executor runs resolver definitions against registered datasources. It is
// safe for concurrent use: all per-run state lives in an ExecutionContext
// created and discarded inside Execute.
type Executor struct {
	registry datasource.Registry
	invoker  datasource.Invoker
	cache    shared.CacheStore
	cacheTTL time.Duration
	logger   *zap.Logger
}

// ExecutorOption configures an Executor
type ExecutorOption func(*Executor)

// WithCache attaches a best-effort result cache
func WithCache(cache shared.CacheStore) ExecutorOption {
	return func(e *Executor) {
		e.cache = cache
	}
}

// WithCacheTTL overrides the TTL used for cached resolver results
func WithCacheTTL(ttl time.Duration) ExecutorOption {
	return func(e *Executor) {
		if ttl > 0 {
			e.cacheTTL = ttl
		}
	}
}

// WithExecutorLogger sets the logger
func WithExecutorLogger(logger *zap.Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = logger
	}
}

// NewExecutor creates a resolver executor
func NewExecutor(registry datasource.Registry, invoker datasource.Invoker, opts ...ExecutorOption) *Executor {
	e := &Executor{
		registry: registry,
		invoker:  invoker,
		cacheTTL: defaultCacheTTL,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute dispatches on the definition type. Configuration problems and
// unknown definition types return an error; datasource failures during a run
// never do, they are reported inside the Result.
func (e *Executor) Execute(ctx context.Context, def resolver.Definition, input map[string]interface{}) (*resolver.Result, error) {
	switch def.Kind {
	case resolver.KindUnit:
		if err := def.Unit.Validate(); err != nil {
			return nil, err
		}
		return e.executeUnit(ctx, def.Unit), nil
	case resolver.KindPipeline:
		if err := def.Pipeline.Validate(); err != nil {
			return nil, err
		}
		return e.executePipeline(ctx, def.Pipeline, input), nil
	default:
		return nil, resolver.ErrUnsupportedResolverType
	}
}

// executeUnit performs the single call of a unit resolver. Failures are
// reported in the result, never returned as errors.
func (e *Executor) executeUnit(ctx context.Context, unit *resolver.Unit) *resolver.Result {
	if unit.IsCached {
		if data, ok := e.cacheGet(ctx, unit.CacheKey); ok {
			return &resolver.Result{OK: true, Data: data, Datasource: unit.Datasource, FromCache: true}
		}
	}

	profile, err := e.registry.Resolve(unit.Datasource)
	if err != nil {
		return &resolver.Result{OK: false, Error: err.Error(), Datasource: unit.Datasource}
	}

	result, err := e.invoker.Invoke(ctx, profile, datasource.CallRequest{
		Method:  unit.Method,
		Path:    unit.Path,
		Body:    unit.Body,
		Headers: textMap(unit.Headers),
		Query:   textMap(unit.Params),
	})
	if err != nil {
		return &resolver.Result{OK: false, Error: err.Error(), Datasource: unit.Datasource}
	}

	cached := false
	if unit.IsCached {
		cached = e.cacheSet(ctx, unit.CacheKey, result.Data)
	}
	return &resolver.Result{OK: true, Data: result.Data, Datasource: unit.Datasource, Cached: cached}
}

// executePipeline runs the steps in declaration order over one shared
// execution context.
func (e *Executor) executePipeline(ctx context.Context, pipeline *resolver.Pipeline, input map[string]interface{}) *resolver.Result {
	if pipeline.IsCached {
		if data, ok := e.cacheGet(ctx, pipeline.CacheKey); ok {
			return &resolver.Result{OK: true, Data: data, Steps: []resolver.StepOutcome{}, FromCache: true}
		}
	}

	execCtx := resolver.NewExecutionContext(input)
	outcomes := make([]resolver.StepOutcome, 0, len(pipeline.Steps))

	for i := range pipeline.Steps {
		step := &pipeline.Steps[i]
		outcome := e.executeStep(ctx, step, execCtx)
		outcomes = append(outcomes, outcome)

		if !outcome.OK && pipeline.Mode() == resolver.ErrorModeFailFast {
			return &resolver.Result{
				OK:    false,
				Error: fmt.Sprintf("Pipeline failed at step '%s': %s", step.Name, outcome.Error),
				Steps: outcomes,
			}
		}
	}

	// The overall output is the last successfully produced step output, which
	// under the continue policy is not necessarily the last step in the list.
	final, _ := execCtx.Previous()

	cached := false
	if pipeline.IsCached && final != nil {
		cached = e.cacheSet(ctx, pipeline.CacheKey, final)
	}
	return &resolver.Result{OK: true, Data: final, Steps: outcomes, Cached: cached}
}

// executeStep substitutes, calls, and records one pipeline step. A successful
// step's output becomes the context's previous output; a failed step leaves
// the context untouched.
func (e *Executor) executeStep(ctx context.Context, step *resolver.Step, execCtx *resolver.ExecutionContext) resolver.StepOutcome {
	path := resolver.AsText(resolver.Substitute(step.Path, execCtx))
	body := resolver.Substitute(step.Body, execCtx)
	headers := substituteTextMap(step.Headers, execCtx)
	params := substituteTextMap(step.Params, execCtx)

	if step.IsCached {
		if data, ok := e.cacheGet(ctx, step.CacheKey); ok {
			execCtx.RecordStep(step.Name, data)
			return resolver.StepOutcome{Name: step.Name, OK: true, Data: data, Datasource: step.Datasource, FromCache: true}
		}
	}

	profile, err := e.registry.Resolve(step.Datasource)
	if err != nil {
		return resolver.StepOutcome{Name: step.Name, OK: false, Error: err.Error(), Datasource: step.Datasource}
	}

	result, err := e.invoker.Invoke(ctx, profile, datasource.CallRequest{
		Method:  step.Method,
		Path:    path,
		Body:    body,
		Headers: headers,
		Query:   params,
	})
	if err != nil {
		return resolver.StepOutcome{Name: step.Name, OK: false, Error: err.Error(), Datasource: step.Datasource}
	}

	cached := false
	if step.IsCached {
		cached = e.cacheSet(ctx, step.CacheKey, result.Data)
	}
	execCtx.RecordStep(step.Name, result.Data)
	return resolver.StepOutcome{Name: step.Name, OK: true, Data: result.Data, Datasource: step.Datasource, Cached: cached}
}

// cacheGet reads the cache if one is configured. Absence of a cache is a miss.
func (e *Executor) cacheGet(ctx context.Context, key string) (interface{}, bool) {
	if e.cache == nil || key == "" {
		return nil, false
	}
	return e.cache.Get(ctx, key)
}

// cacheSet writes the cache if one is configured and reports whether an entry
// was written. Write failures are already logged by the store.
func (e *Executor) cacheSet(ctx context.Context, key string, value interface{}) bool {
	if e.cache == nil || key == "" {
		return false
	}
	if !e.cache.Set(ctx, key, value, e.cacheTTL) {
		e.logger.Warn("resolver cache write failed", zap.String("cache_key", key))
		return false
	}
	return true
}

// textMap renders a loosely typed header or query map into the string form the
// transport expects.
func textMap(in map[string]interface{}) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = resolver.AsText(value)
	}
	return out
}

// substituteTextMap substitutes a header or query map against the execution
// context before rendering it to strings.
func substituteTextMap(in map[string]interface{}, execCtx *resolver.ExecutionContext) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = resolver.AsText(resolver.Substitute(value, execCtx))
	}
	return out
}
