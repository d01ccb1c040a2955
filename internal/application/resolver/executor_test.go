package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resolvd/backend/internal/domain/datasource"
	"github.com/resolvd/backend/internal/domain/resolver"
)

// stubRegistry resolves every name to a fixed profile
type stubRegistry struct {
	profiles map[string]datasource.Profile
}

func newStubRegistry(names ...string) *stubRegistry {
	r := &stubRegistry{profiles: make(map[string]datasource.Profile)}
	for _, name := range names {
		r.profiles[name] = datasource.Profile{
			Name:        name,
			Kind:        "http",
			BaseAddress: "http://" + name + ".test",
			TimeoutMs:   1000,
			RetryBudget: 1,
		}
	}
	return r
}

func (r *stubRegistry) Resolve(name string) (datasource.Profile, error) {
	profile, ok := r.profiles[name]
	if !ok {
		return datasource.Profile{}, &datasource.NotFoundError{Name: name}
	}
	return profile, nil
}

func (r *stubRegistry) Register(profile datasource.Profile) { r.profiles[profile.Name] = profile }
func (r *stubRegistry) Unregister(name string) bool         { delete(r.profiles, name); return true }
func (r *stubRegistry) List() []datasource.Profile          { return nil }

// call records one invocation seen by the stub invoker
type call struct {
	datasource string
	req        datasource.CallRequest
}

// stubInvoker replays scripted responses keyed by step order
type stubInvoker struct {
	calls     []call
	responses []func(req datasource.CallRequest) (*datasource.CallResult, error)
}

func (s *stubInvoker) Invoke(_ context.Context, profile datasource.Profile, req datasource.CallRequest) (*datasource.CallResult, error) {
	s.calls = append(s.calls, call{datasource: profile.Name, req: req})
	idx := len(s.calls) - 1
	if idx < len(s.responses) {
		return s.responses[idx](req)
	}
	return &datasource.CallResult{Status: 200, Data: map[string]interface{}{"default": true}}, nil
}

func respond(data interface{}) func(datasource.CallRequest) (*datasource.CallResult, error) {
	return func(datasource.CallRequest) (*datasource.CallResult, error) {
		return &datasource.CallResult{Status: 200, Data: data}, nil
	}
}

func fail(message string) func(datasource.CallRequest) (*datasource.CallResult, error) {
	return func(datasource.CallRequest) (*datasource.CallResult, error) {
		return nil, errors.New(message)
	}
}

// mapCache is a CacheStore over a plain map, with optional write rejection
type mapCache struct {
	entries     map[string]interface{}
	rejectWrite bool
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]interface{})}
}

func (c *mapCache) Get(_ context.Context, key string) (interface{}, bool) {
	value, ok := c.entries[key]
	return value, ok
}

func (c *mapCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) bool {
	if c.rejectWrite {
		return false
	}
	c.entries[key] = value
	return true
}

func (c *mapCache) Close() error { return nil }

func unitDef(unit resolver.Unit) resolver.Definition {
	return resolver.Definition{Kind: resolver.KindUnit, Unit: &unit}
}

func pipelineDef(pipeline resolver.Pipeline) resolver.Definition {
	return resolver.Definition{Kind: resolver.KindPipeline, Pipeline: &pipeline}
}

func TestExecutorUnitSuccess(t *testing.T) {
	invoker := &stubInvoker{responses: []func(datasource.CallRequest) (*datasource.CallResult, error){
		respond(map[string]interface{}{"id": float64(1)}),
	}}
	executor := NewExecutor(newStubRegistry("jsonplaceholder"), invoker)

	result, err := executor.Execute(context.Background(), unitDef(resolver.Unit{
		Datasource: "jsonplaceholder",
		Method:     "GET",
		Path:       "/users/1",
	}), nil)

	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, map[string]interface{}{"id": float64(1)}, result.Data)
	assert.Equal(t, "jsonplaceholder", result.Datasource)
	assert.False(t, result.FromCache)
	assert.Nil(t, result.Steps)
}

func TestExecutorUnitFailureIsReportedNotReturned(t *testing.T) {
	invoker := &stubInvoker{responses: []func(datasource.CallRequest) (*datasource.CallResult, error){
		fail("connection refused"),
	}}
	executor := NewExecutor(newStubRegistry("jsonplaceholder"), invoker)

	result, err := executor.Execute(context.Background(), unitDef(resolver.Unit{
		Datasource: "jsonplaceholder",
		Method:     "GET",
		Path:       "/users/1",
	}), nil)

	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.Equal(t, "connection refused", result.Error)
	assert.Equal(t, "jsonplaceholder", result.Datasource)
}

func TestExecutorUnitUnknownDatasource(t *testing.T) {
	executor := NewExecutor(newStubRegistry(), &stubInvoker{})

	result, err := executor.Execute(context.Background(), unitDef(resolver.Unit{
		Datasource: "missing",
		Method:     "GET",
		Path:       "/",
	}), nil)

	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.Contains(t, result.Error, `datasource "missing" not found`)
}

func TestExecutorUnitCacheHitSkipsDatasource(t *testing.T) {
	invoker := &stubInvoker{}
	cache := newMapCache()
	cache.entries["user:1"] = map[string]interface{}{"id": float64(1)}
	executor := NewExecutor(newStubRegistry("jsonplaceholder"), invoker, WithCache(cache))

	result, err := executor.Execute(context.Background(), unitDef(resolver.Unit{
		Datasource: "jsonplaceholder",
		Method:     "GET",
		Path:       "/users/1",
		IsCached:   true,
		CacheKey:   "user:1",
	}), nil)

	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.True(t, result.FromCache)
	assert.Equal(t, map[string]interface{}{"id": float64(1)}, result.Data)
	assert.Empty(t, invoker.calls, "cache hit must not invoke the datasource")
}

func TestExecutorUnitCacheMissWritesEntry(t *testing.T) {
	invoker := &stubInvoker{responses: []func(datasource.CallRequest) (*datasource.CallResult, error){
		respond("payload"),
	}}
	cache := newMapCache()
	executor := NewExecutor(newStubRegistry("jsonplaceholder"), invoker, WithCache(cache))

	result, err := executor.Execute(context.Background(), unitDef(resolver.Unit{
		Datasource: "jsonplaceholder",
		Method:     "GET",
		Path:       "/users/1",
		IsCached:   true,
		CacheKey:   "user:1",
	}), nil)

	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.True(t, result.Cached)
	assert.Equal(t, "payload", cache.entries["user:1"])
}

func TestExecutorUnitCacheWriteFailureDoesNotFailCall(t *testing.T) {
	invoker := &stubInvoker{responses: []func(datasource.CallRequest) (*datasource.CallResult, error){
		respond("payload"),
	}}
	cache := newMapCache()
	cache.rejectWrite = true
	executor := NewExecutor(newStubRegistry("jsonplaceholder"), invoker, WithCache(cache))

	result, err := executor.Execute(context.Background(), unitDef(resolver.Unit{
		Datasource: "jsonplaceholder",
		Method:     "GET",
		Path:       "/users/1",
		IsCached:   true,
		CacheKey:   "user:1",
	}), nil)

	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.False(t, result.Cached)
	assert.Equal(t, "payload", result.Data)
}

func TestExecutorUnitMissingBodyIsConfigurationError(t *testing.T) {
	executor := NewExecutor(newStubRegistry("jsonplaceholder"), &stubInvoker{})

	_, err := executor.Execute(context.Background(), unitDef(resolver.Unit{
		Datasource: "jsonplaceholder",
		Method:     "POST",
		Path:       "/users",
	}), nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires a request body")
}

func TestExecutorUnsupportedType(t *testing.T) {
	executor := NewExecutor(newStubRegistry(), &stubInvoker{})

	_, err := executor.Execute(context.Background(), resolver.Definition{Kind: "graphql"}, nil)
	assert.ErrorIs(t, err, resolver.ErrUnsupportedResolverType)
}

func TestExecutorPipelinePrevSubstitution(t *testing.T) {
	invoker := &stubInvoker{responses: []func(datasource.CallRequest) (*datasource.CallResult, error){
		respond(map[string]interface{}{"id": float64(7)}),
		respond([]interface{}{}),
	}}
	executor := NewExecutor(newStubRegistry("jsonplaceholder"), invoker)

	result, err := executor.Execute(context.Background(), pipelineDef(resolver.Pipeline{
		Steps: []resolver.Step{
			{Name: "getUser", Datasource: "jsonplaceholder", Method: "GET", Path: "/users/7"},
			{Name: "getPosts", Datasource: "jsonplaceholder", Method: "GET", Path: "/posts?userId=$prev.id"},
		},
	}), nil)

	require.NoError(t, err)
	assert.True(t, result.OK)
	require.Len(t, invoker.calls, 2)
	// The whole serialized previous output replaces the marker, accessor
	// chain included.
	assert.Equal(t, `/posts?userId={"id":7}`, invoker.calls[1].req.Path)
}

func TestExecutorPipelineNamedStepAndInputSubstitution(t *testing.T) {
	invoker := &stubInvoker{responses: []func(datasource.CallRequest) (*datasource.CallResult, error){
		respond(map[string]interface{}{"token": "abc"}),
		respond("done"),
	}}
	executor := NewExecutor(newStubRegistry("auth", "api"), invoker)

	result, err := executor.Execute(context.Background(), pipelineDef(resolver.Pipeline{
		Steps: []resolver.Step{
			{Name: "login", Datasource: "auth", Method: "POST", Path: "/login", Body: map[string]interface{}{"user": "$input.username"}},
			{
				Name: "fetch", Datasource: "api", Method: "GET", Path: "/data",
				Headers: map[string]interface{}{"X-Session": "$steps.login"},
				Params:  map[string]interface{}{"q": "$input.query"},
			},
		},
	}), map[string]interface{}{"username": "alice", "query": "recent"})

	require.NoError(t, err)
	assert.True(t, result.OK)
	require.Len(t, invoker.calls, 2)
	assert.Equal(t, map[string]interface{}{"user": "alice"}, invoker.calls[0].req.Body)
	assert.Equal(t, `{"token":"abc"}`, invoker.calls[1].req.Headers["X-Session"])
	assert.Equal(t, "recent", invoker.calls[1].req.Query["q"])
}

func TestExecutorPipelineFailFast(t *testing.T) {
	invoker := &stubInvoker{responses: []func(datasource.CallRequest) (*datasource.CallResult, error){
		respond("first"),
		fail("boom"),
		respond("third"),
	}}
	cache := newMapCache()
	executor := NewExecutor(newStubRegistry("api"), invoker, WithCache(cache))

	result, err := executor.Execute(context.Background(), pipelineDef(resolver.Pipeline{
		Steps: []resolver.Step{
			{Name: "a", Datasource: "api", Method: "GET", Path: "/a"},
			{Name: "b", Datasource: "api", Method: "GET", Path: "/b"},
			{Name: "c", Datasource: "api", Method: "GET", Path: "/c"},
		},
		OnError:  resolver.ErrorModeFailFast,
		IsCached: true,
		CacheKey: "pipe:1",
	}), nil)

	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.Equal(t, "Pipeline failed at step 'b': boom", result.Error)
	require.Len(t, result.Steps, 2)
	assert.True(t, result.Steps[0].OK)
	assert.False(t, result.Steps[1].OK)
	assert.Nil(t, result.Data)
	assert.Len(t, invoker.calls, 2, "no step runs after a fail-fast abort")
	assert.Empty(t, cache.entries, "a failed pipeline must not write its cache entry")
}

func TestExecutorPipelineContinueSkipsFailedStepOutput(t *testing.T) {
	invoker := &stubInvoker{responses: []func(datasource.CallRequest) (*datasource.CallResult, error){
		respond("first"),
		fail("boom"),
		fail("boom again"),
	}}
	executor := NewExecutor(newStubRegistry("api"), invoker)

	result, err := executor.Execute(context.Background(), pipelineDef(resolver.Pipeline{
		Steps: []resolver.Step{
			{Name: "a", Datasource: "api", Method: "GET", Path: "/a"},
			{Name: "b", Datasource: "api", Method: "GET", Path: "/b"},
			{Name: "c", Datasource: "api", Method: "GET", Path: "/c"},
		},
		OnError: resolver.ErrorModeContinue,
	}), nil)

	require.NoError(t, err)
	assert.True(t, result.OK)
	require.Len(t, result.Steps, 3)
	assert.Equal(t, "first", result.Data, "output is the last successful step, not the last step")
}

func TestExecutorPipelineContinueLaterStepSeesEarlierContext(t *testing.T) {
	invoker := &stubInvoker{responses: []func(datasource.CallRequest) (*datasource.CallResult, error){
		respond(map[string]interface{}{"id": float64(1)}),
		fail("boom"),
		respond("third"),
	}}
	executor := NewExecutor(newStubRegistry("api"), invoker)

	result, err := executor.Execute(context.Background(), pipelineDef(resolver.Pipeline{
		Steps: []resolver.Step{
			{Name: "a", Datasource: "api", Method: "GET", Path: "/a"},
			{Name: "b", Datasource: "api", Method: "GET", Path: "/b"},
			{Name: "c", Datasource: "api", Method: "GET", Path: "/c/$prev"},
		},
		OnError: resolver.ErrorModeContinue,
	}), nil)

	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, "third", result.Data)
	require.Len(t, invoker.calls, 3)
	// Step b failed, so step c substitutes against step a's output.
	assert.Equal(t, `/c/{"id":1}`, invoker.calls[2].req.Path)
}

func TestExecutorPipelineCacheHitShortCircuits(t *testing.T) {
	invoker := &stubInvoker{}
	cache := newMapCache()
	cache.entries["pipe:1"] = "cached result"
	executor := NewExecutor(newStubRegistry("api"), invoker, WithCache(cache))

	result, err := executor.Execute(context.Background(), pipelineDef(resolver.Pipeline{
		Steps: []resolver.Step{
			{Name: "a", Datasource: "api", Method: "GET", Path: "/a"},
		},
		IsCached: true,
		CacheKey: "pipe:1",
	}), nil)

	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.True(t, result.FromCache)
	assert.Equal(t, "cached result", result.Data)
	assert.NotNil(t, result.Steps)
	assert.Empty(t, result.Steps)
	assert.Empty(t, invoker.calls)
}

func TestExecutorPipelineStepCache(t *testing.T) {
	invoker := &stubInvoker{responses: []func(datasource.CallRequest) (*datasource.CallResult, error){
		respond("fresh"),
	}}
	cache := newMapCache()
	cache.entries["step:a"] = map[string]interface{}{"id": float64(9)}
	executor := NewExecutor(newStubRegistry("api"), invoker, WithCache(cache))

	result, err := executor.Execute(context.Background(), pipelineDef(resolver.Pipeline{
		Steps: []resolver.Step{
			{Name: "a", Datasource: "api", Method: "GET", Path: "/a", IsCached: true, CacheKey: "step:a"},
			{Name: "b", Datasource: "api", Method: "GET", Path: "/b?id=$prev"},
		},
	}), nil)

	require.NoError(t, err)
	assert.True(t, result.OK)
	require.Len(t, result.Steps, 2)
	assert.True(t, result.Steps[0].FromCache)
	require.Len(t, invoker.calls, 1, "only the uncached step hits the datasource")
	// The cached step output still feeds substitution for later steps.
	assert.Equal(t, `/b?id={"id":9}`, invoker.calls[0].req.Path)
}

func TestExecutorPipelineWritesFinalCacheEntry(t *testing.T) {
	invoker := &stubInvoker{responses: []func(datasource.CallRequest) (*datasource.CallResult, error){
		respond("final"),
	}}
	cache := newMapCache()
	executor := NewExecutor(newStubRegistry("api"), invoker, WithCache(cache))

	result, err := executor.Execute(context.Background(), pipelineDef(resolver.Pipeline{
		Steps: []resolver.Step{
			{Name: "a", Datasource: "api", Method: "GET", Path: "/a"},
		},
		IsCached: true,
		CacheKey: "pipe:1",
	}), nil)

	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.True(t, result.Cached)
	assert.Equal(t, "final", cache.entries["pipe:1"])
}
