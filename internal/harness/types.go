package harness

// TraceEvent records one executed step.
type TraceEvent struct {
	Seq  int64  `json:"seq"`
	Step string `json:"step"`

	// Args is the step input with paths relative to the workspace.
	Args map[string]any `json:"args,omitempty"`

	// Output is the per-path outcome of a note or the rows of a list.
	Output []any `json:"output,omitempty"`
}

// StoredPath is one database row with its path relative to the workspace.
type StoredPath struct {
	Path               string `json:"path"`
	NotedCount         int64  `json:"noted_count"`
	LastNotedTimestamp int64  `json:"last_noted_timestamp"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every list expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace contains every step in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// State is the final database contents in storage order.
	State []StoredPath `json:"state"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		State:  []StoredPath{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step to the trace with the next sequence number.
func (r *Result) AddTrace(step string, args map[string]any, output []any) {
	r.Trace = append(r.Trace, TraceEvent{
		Seq:    int64(len(r.Trace) + 1),
		Step:   step,
		Args:   args,
		Output: output,
	})
}
