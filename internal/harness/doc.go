// Package harness runs conformance scenarios against the transpiler.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	idioms:
//	  - overlay.yaml
//	steps:
//	  - source: |
//	      print("hello")
//	    expect:
//	      output: 'println!("hello")'
//	  - source: 'foo("x")'
//	    expect:
//	      error: unsupported_identifier
//	      code: E212
//	      line: 1
//	      column: 1
//	assertions:
//	  - type: trace_contains
//	    output: println!
//	  - type: final_state
//	    expect: { records: 1 }
//
// Idiom overlay paths are resolved relative to the scenario file.
//
// # Assertion Types
//
//   - trace_contains: some step produced output containing the text
//   - trace_order: IR statement kinds appear in the given order
//   - trace_count: a statement kind, or a cache outcome, occurs exactly N times
//   - final_state: totals over the transpilation cache match
//
// # Deterministic Testing
//
// Every scenario runs against a fresh in-memory cache with a logical clock,
// so traces are identical across runs and can be compared with golden files.
// Repeated sources within one scenario are served from the cache.
package harness
