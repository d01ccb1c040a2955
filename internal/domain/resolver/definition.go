package resolver

import (
	"encoding/json"
	"fmt"
)

// Kind discriminates the two resolver definition variants.
type Kind string

const (
	KindUnit     Kind = "unit"
	KindPipeline Kind = "pipeline"
)

// ErrorMode controls pipeline behavior when a step fails.
type ErrorMode string

const (
	// ErrorModeFailFast aborts the pipeline on the first step failure.
	ErrorModeFailFast ErrorMode = "failFast"
	// ErrorModeContinue records the failure and keeps executing; a failed
	// step contributes no context data.
	ErrorModeContinue ErrorMode = "continue"
)

// allowedMethods is the set of HTTP methods a call definition may use.
var allowedMethods = map[string]bool{
	"GET":    true,
	"POST":   true,
	"PUT":    true,
	"PATCH":  true,
	"DELETE": true,
}

// bodyRequiredMethods are the methods for which a unit resolver must declare
// a body.
var bodyRequiredMethods = map[string]bool{
	"POST":  true,
	"PUT":   true,
	"PATCH": true,
}

// Unit is a resolver definition consisting of exactly one datasource call.
type Unit struct {
	Datasource string                 `json:"datasource"`
	Method     string                 `json:"method"`
	Path       string                 `json:"path"`
	Body       interface{}            `json:"body,omitempty"`
	Headers    map[string]interface{} `json:"headers,omitempty"`
	Params     map[string]interface{} `json:"params,omitempty"`
	IsCached   bool                   `json:"isCached"`
	CacheKey   string                 `json:"cacheKey,omitempty"`
}

// Validate checks the unit definition before execution.
func (u *Unit) Validate() error {
	if u.Datasource == "" {
		return NewConfigurationError("unit resolver requires a datasource")
	}
	if !allowedMethods[u.Method] {
		return NewConfigurationError("unsupported HTTP method %q", u.Method)
	}
	if bodyRequiredMethods[u.Method] && u.Body == nil {
		return NewConfigurationError("method %s requires a request body", u.Method)
	}
	if u.IsCached && u.CacheKey == "" {
		return NewConfigurationError("cached resolver requires a cache key")
	}
	return nil
}

// Step is one pipeline step. Its name is the substitution handle later steps
// use to reference its output. Unlike a unit resolver, a step body may be any
// substitutable value, including a raw marker string.
type Step struct {
	Name       string                 `json:"name"`
	Datasource string                 `json:"datasource"`
	Method     string                 `json:"method"`
	Path       string                 `json:"path"`
	Body       interface{}            `json:"body,omitempty"`
	Headers    map[string]interface{} `json:"headers,omitempty"`
	Params     map[string]interface{} `json:"params,omitempty"`
	IsCached   bool                   `json:"isCached"`
	CacheKey   string                 `json:"cacheKey,omitempty"`
}

// Validate checks a single step definition.
func (s *Step) Validate() error {
	if s.Name == "" {
		return NewConfigurationError("pipeline step requires a name")
	}
	if s.Datasource == "" {
		return NewConfigurationError("step %q requires a datasource", s.Name)
	}
	if !allowedMethods[s.Method] {
		return NewConfigurationError("step %q: unsupported HTTP method %q", s.Name, s.Method)
	}
	if s.IsCached && s.CacheKey == "" {
		return NewConfigurationError("step %q is cached but has no cache key", s.Name)
	}
	return nil
}

// Pipeline is a resolver definition consisting of an ordered sequence of
// steps sharing one execution context.
type Pipeline struct {
	Steps    []Step    `json:"steps"`
	OnError  ErrorMode `json:"onError,omitempty"`
	IsCached bool      `json:"isCached"`
	CacheKey string    `json:"cacheKey,omitempty"`
}

// Validate checks the pipeline definition before execution.
func (p *Pipeline) Validate() error {
	if len(p.Steps) == 0 {
		return NewConfigurationError("pipeline resolver requires at least one step")
	}
	switch p.OnError {
	case "", ErrorModeFailFast, ErrorModeContinue:
	default:
		return NewConfigurationError("unknown onError mode %q", p.OnError)
	}
	if p.IsCached && p.CacheKey == "" {
		return NewConfigurationError("cached pipeline requires a cache key")
	}
	seen := make(map[string]bool, len(p.Steps))
	for i := range p.Steps {
		if err := p.Steps[i].Validate(); err != nil {
			return err
		}
		if seen[p.Steps[i].Name] {
			return NewConfigurationError("duplicate step name %q", p.Steps[i].Name)
		}
		seen[p.Steps[i].Name] = true
	}
	return nil
}

// Mode returns the effective error mode, defaulting to failFast.
func (p *Pipeline) Mode() ErrorMode {
	if p.OnError == "" {
		return ErrorModeFailFast
	}
	return p.OnError
}

// Definition is a tagged variant over the two resolver shapes. Exactly one of
// Unit or Pipeline is set when Kind is recognized; an unrecognized type keeps
// the raw discriminator so the dispatch point can report it.
type Definition struct {
	Kind     Kind
	Unit     *Unit
	Pipeline *Pipeline
}

// unitDefinition mirrors the flat wire shape of a unit definition.
type unitDefinition struct {
	Type string `json:"type"`
	Unit
}

// pipelineDefinition mirrors the flat wire shape of a pipeline definition.
type pipelineDefinition struct {
	Type string `json:"type"`
	Pipeline
}

// UnmarshalJSON decodes the flat wire shape into the tagged variant.
func (d *Definition) UnmarshalJSON(data []byte) error {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("invalid resolver definition: %w", err)
	}

	switch Kind(probe.Type) {
	case KindUnit:
		var wire unitDefinition
		if err := json.Unmarshal(data, &wire); err != nil {
			return fmt.Errorf("invalid unit definition: %w", err)
		}
		d.Kind = KindUnit
		d.Unit = &wire.Unit
		d.Pipeline = nil
	case KindPipeline:
		var wire pipelineDefinition
		if err := json.Unmarshal(data, &wire); err != nil {
			return fmt.Errorf("invalid pipeline definition: %w", err)
		}
		d.Kind = KindPipeline
		d.Pipeline = &wire.Pipeline
		d.Unit = nil
	default:
		// Kept for the dispatch point to reject with UnsupportedResolverType.
		d.Kind = Kind(probe.Type)
		d.Unit = nil
		d.Pipeline = nil
	}
	return nil
}

// MarshalJSON encodes the tagged variant back into the flat wire shape.
func (d Definition) MarshalJSON() ([]byte, error) {
	switch d.Kind {
	case KindUnit:
		return json.Marshal(unitDefinition{Type: string(KindUnit), Unit: *d.Unit})
	case KindPipeline:
		return json.Marshal(pipelineDefinition{Type: string(KindPipeline), Pipeline: *d.Pipeline})
	default:
		return nil, fmt.Errorf("cannot encode resolver definition of type %q", d.Kind)
	}
}

// Validate checks the definition against its variant's configuration rules.
func (d *Definition) Validate() error {
	switch d.Kind {
	case KindUnit:
		return d.Unit.Validate()
	case KindPipeline:
		return d.Pipeline.Validate()
	default:
		return ErrUnsupportedResolverType
	}
}
