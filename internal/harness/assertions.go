package harness

import (
	"fmt"
	"sort"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		switch {
		case event.Failed():
			fmt.Fprintf(&buf, "  [%d] error %s\n", event.Seq, event.Diagnostic.Message)
		case event.Output != nil:
			fmt.Fprintf(&buf, "  [%d] %s %q\n", event.Seq, event.Cache, *event.Output)
		}
	}
	return buf.String()
}

// traceKinds returns the kinds of all statements in trace order.
func traceKinds(trace []TraceEvent) []string {
	var kinds []string
	for _, event := range trace {
		for _, n := range event.Program {
			kinds = append(kinds, n.Kind)
		}
	}
	return kinds
}

// assertTraceContains checks that some step produced output containing the text.
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	for _, event := range trace {
		if event.Output != nil && strings.Contains(*event.Output, assertion.Output) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("output containing %q", assertion.Output),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that statement kinds appear in the specified order.
// Kinds don't need to be consecutive (intervening statements are allowed).
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	kinds := traceKinds(trace)

	next := 0
	for _, k := range kinds {
		if next < len(assertion.Kinds) && k == assertion.Kinds[next] {
			next++
		}
	}
	if next == len(assertion.Kinds) {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceOrder,
		Expected: fmt.Sprintf("statement kinds in order: %v", assertion.Kinds),
		Actual:   fmt.Sprintf("%v (matched %d of %d)", kinds, next, len(assertion.Kinds)),
		Trace:    trace,
	}
}

// assertTraceCount checks that a statement kind or cache outcome occurs
// exactly the specified number of times.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	what := assertion.Kind
	if assertion.Cache != "" {
		what = "cache " + assertion.Cache
		for _, event := range trace {
			if event.Cache == assertion.Cache {
				count++
			}
		}
	} else {
		for _, k := range traceKinds(trace) {
			if k == assertion.Kind {
				count++
			}
		}
	}

	if count == assertion.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceCount,
		Expected: fmt.Sprintf("%s exactly %d times", what, assertion.Count),
		Actual:   fmt.Sprintf("found %d times", count),
		Trace:    trace,
	}
}

// assertFinalState checks cache totals. Keys are compared in sorted order
// so failure messages are deterministic.
func assertFinalState(result *Result, assertion Assertion) error {
	keys := make([]string, 0, len(assertion.Expect))
	for k := range assertion.Expect {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var mismatches []string
	for _, k := range keys {
		want := int64(assertion.Expect[k])
		if got := result.State.value(k); got != want {
			mismatches = append(mismatches, fmt.Sprintf("%s=%d (want %d)", k, got, want))
		}
	}
	if len(mismatches) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertFinalState,
		Expected: fmt.Sprintf("%v", assertion.Expect),
		Actual:   strings.Join(mismatches, ", "),
		Trace:    result.Trace,
	}
}

// EvaluateAssertions runs all assertions and returns failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, assertion := range assertions {
		var err error
		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertFinalState:
			err = assertFinalState(result, assertion)
		default:
			err = fmt.Errorf("unknown assertion type %q", assertion.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d: %v", i, err))
		}
	}
	return errs
}
