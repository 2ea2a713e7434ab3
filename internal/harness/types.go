package harness

import (
	"github.com/roach88/pyrs/internal/ir"
	"github.com/roach88/pyrs/internal/transpile"
)

// Cache outcomes recorded on trace events.
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

// TraceEvent records the outcome of one step.
type TraceEvent struct {
	Seq        int64                 `json:"seq"`
	Step       int                   `json:"step"`
	Cache      string                `json:"cache,omitempty"`
	Output     *string               `json:"output,omitempty"`
	Program    []ir.Node             `json:"program,omitempty"`
	Diagnostic *transpile.Diagnostic `json:"diagnostic,omitempty"`
}

// Failed reports whether the step ended in a diagnostic.
func (e TraceEvent) Failed() bool {
	return e.Diagnostic != nil
}

// State holds totals over the transpilation cache after a run.
type State struct {
	Records    int   `json:"records"`
	Hits       int64 `json:"hits"`
	Statements int   `json:"statements"`
}

func (s State) value(key string) int64 {
	switch key {
	case "records":
		return int64(s.Records)
	case "hits":
		return s.Hits
	case "statements":
		return int64(s.Statements)
	}
	return -1
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	Pass bool `json:"pass"`

	// Trace contains one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// State is the final cache state.
	State State `json:"state"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddOutputTrace adds a successful step to the trace.
func (r *Result) AddOutputTrace(step int, seq int64, cache, output string, program []ir.Node) {
	r.Trace = append(r.Trace, TraceEvent{
		Seq:     seq,
		Step:    step,
		Cache:   cache,
		Output:  &output,
		Program: program,
	})
}

// AddDiagnosticTrace adds a failed step to the trace.
func (r *Result) AddDiagnosticTrace(step int, seq int64, d transpile.Diagnostic) {
	r.Trace = append(r.Trace, TraceEvent{
		Seq:        seq,
		Step:       step,
		Diagnostic: &d,
	})
}
