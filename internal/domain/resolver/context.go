package resolver

// ExecutionContext is the per-pipeline-run state holding the original input
// and prior step outputs. It is owned exclusively by one executor invocation
// and discarded when the pipeline returns; it is never shared across
// concurrent executions, so it needs no locking.
type ExecutionContext struct {
	input       map[string]interface{}
	previous    interface{}
	hasPrevious bool
	byName      map[string]interface{}
	order       []string
}

// NewExecutionContext creates a context seeded with the original input.
func NewExecutionContext(input map[string]interface{}) *ExecutionContext {
	return &ExecutionContext{
		input:  input,
		byName: make(map[string]interface{}),
	}
}

// Input returns the original request input.
func (c *ExecutionContext) Input() map[string]interface{} {
	return c.input
}

// Previous returns the most recent successful step output, if any.
func (c *ExecutionContext) Previous() (interface{}, bool) {
	return c.previous, c.hasPrevious
}

// RecordStep stores a step's output under its name and makes it the previous
// output. Failed steps are never recorded: they contribute no context data.
func (c *ExecutionContext) RecordStep(name string, output interface{}) {
	if _, exists := c.byName[name]; !exists {
		c.order = append(c.order, name)
	}
	c.byName[name] = output
	c.previous = output
	c.hasPrevious = true
}

// StepOutput returns the recorded output of a named step.
func (c *ExecutionContext) StepOutput(name string) (interface{}, bool) {
	out, ok := c.byName[name]
	return out, ok
}

// StepNames returns the recorded step names in completion order.
func (c *ExecutionContext) StepNames() []string {
	return c.order
}
