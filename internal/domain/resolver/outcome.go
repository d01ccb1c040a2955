package resolver

// StepOutcome records what happened to one pipeline step, success or failure.
// Outcomes form the execution's audit trail and are reported regardless of
// the pipeline's error mode.
type StepOutcome struct {
	Name       string      `json:"name"`
	OK         bool        `json:"ok"`
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	Datasource string      `json:"datasource"`
	FromCache  bool        `json:"fromCache"`
	Cached     bool        `json:"cached"`
}

// Result is the aggregate outcome of one resolver execution. For unit
// resolvers Steps is nil; for pipelines it holds one outcome per executed
// step (empty on a whole-pipeline cache hit). Cached reports whether this
// execution wrote a cache entry for the overall result.
type Result struct {
	OK         bool          `json:"ok"`
	Data       interface{}   `json:"data,omitempty"`
	Error      string        `json:"error,omitempty"`
	Datasource string        `json:"datasource,omitempty"`
	Steps      []StepOutcome `json:"steps,omitempty"`
	FromCache  bool          `json:"fromCache"`
	Cached     bool          `json:"cached"`
}
