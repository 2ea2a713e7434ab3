package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/pyrs/internal/idiom"
	"github.com/roach88/pyrs/internal/ir"
	"github.com/roach88/pyrs/internal/store"
	"github.com/roach88/pyrs/internal/transpile"
)

// Harness is the test execution engine.
// It runs scenario steps through a cached transpiler with a logical clock.
type Harness struct {
	store      *store.Store
	transpiler *transpile.Transpiler
	clock      *Clock
	logger     *slog.Logger
}

// Run executes a test scenario with logging discarded.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// RunWithLogger executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory cache for isolation.
// Execution flow:
//  1. Build the idiom table from the built-in table plus overlays
//  2. Transpile each step through the cache, recording a trace event
//  3. Check each step against its expect clause
//  4. Evaluate assertions against the trace and final cache state
//
// The returned error reports harness failures (bad overlays, cache I/O);
// scenario mismatches are recorded in Result.Errors.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	table, err := idiom.Default()
	if err != nil {
		return nil, fmt.Errorf("failed to load built-in idioms: %w", err)
	}
	table, err = idiom.Extend(table, scenario.Idioms...)
	if err != nil {
		return nil, fmt.Errorf("failed to load idiom overlays: %w", err)
	}

	tr, err := transpile.New(transpile.WithTable(table), transpile.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:      st,
		transpiler: tr,
		clock:      &Clock{},
		logger:     logger,
	}

	ctx := context.Background()
	result := NewResult()
	if err := h.executeSteps(ctx, scenario.Steps, result); err != nil {
		return nil, err
	}

	records, err := st.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read final state: %w", err)
	}
	for _, rec := range records {
		result.State.Records++
		result.State.Hits += rec.Hits
		result.State.Statements += rec.Statements
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// executeSteps transpiles every step in order.
func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) error {
	for i, step := range steps {
		seq := h.clock.Next()

		rec, hit, err := h.store.Transpile(ctx, h.transpiler, step.Source)
		if err != nil {
			d := transpile.Classify(err)[0]
			if d.Kind == transpile.KindInternal {
				return fmt.Errorf("step %d: %w", i, err)
			}
			result.AddDiagnosticTrace(i, seq, d)
			checkFailure(i, step.Expect, d, result)

			h.logger.Info("step failed",
				"step", i,
				"kind", d.Kind,
				"code", d.Code,
			)
			continue
		}

		stmts, err := h.transpiler.Lower(step.Source)
		if err != nil {
			return fmt.Errorf("step %d: cached source no longer lowers: %w", i, err)
		}

		cache := CacheMiss
		if hit {
			cache = CacheHit
		}
		result.AddOutputTrace(i, seq, cache, rec.Output, ir.DumpAll(stmts))
		checkOutput(i, step.Expect, rec.Output, result)

		h.logger.Info("step completed",
			"step", i,
			"cache", cache,
			"statements", rec.Statements,
		)
	}
	return nil
}

func checkOutput(step int, expect *ExpectClause, output string, result *Result) {
	if expect == nil {
		return
	}
	if expect.Error != "" {
		result.AddError(fmt.Sprintf("step %d: expected %s error, got output %q", step, expect.Error, output))
		return
	}
	if *expect.Output != output {
		result.AddError(fmt.Sprintf("step %d: output mismatch\n  Expected: %q\n  Actual: %q", step, *expect.Output, output))
	}
}

func checkFailure(step int, expect *ExpectClause, d transpile.Diagnostic, result *Result) {
	if expect == nil || expect.Output != nil {
		result.AddError(fmt.Sprintf("step %d: unexpected failure: %s", step, d.Message))
		return
	}
	if expect.Error != d.Kind {
		result.AddError(fmt.Sprintf("step %d: expected %s error, got %s: %s", step, expect.Error, d.Kind, d.Message))
		return
	}
	if expect.Code != "" && expect.Code != d.Code {
		result.AddError(fmt.Sprintf("step %d: expected code %s, got %s", step, expect.Code, d.Code))
	}
	if expect.Line != 0 && (expect.Line != d.Line || expect.Column != d.Column) {
		result.AddError(fmt.Sprintf("step %d: expected error at %d:%d, got %d:%d",
			step, expect.Line, expect.Column, d.Line, d.Column))
	}
}
