package harness

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// SuiteResult summarizes a run over many scenario files.
type SuiteResult struct {
	TotalScenarios int              `json:"total_scenarios" yaml:"total_scenarios"`
	Passed         int              `json:"passed" yaml:"passed"`
	Failed         int              `json:"failed" yaml:"failed"`
	Scenarios      []ScenarioResult `json:"scenarios" yaml:"scenarios"`
}

// ScenarioResult is the outcome of one scenario file.
type ScenarioResult struct {
	Scenario string   `json:"scenario" yaml:"scenario"`
	Path     string   `json:"path" yaml:"path"`
	Pass     bool     `json:"pass" yaml:"pass"`
	Errors   []string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// Failures returns the failed scenarios in run order.
func (r *SuiteResult) Failures() []ScenarioResult {
	var out []ScenarioResult
	for _, s := range r.Scenarios {
		if !s.Pass {
			out = append(out, s)
		}
	}
	return out
}

// DiscoverScenarios returns the scenario files under path, sorted.
// A file path is returned as is; a directory is searched recursively
// for .yaml and .yml files.
func DiscoverScenarios(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch filepath.Ext(p) {
		case ".yaml", ".yml":
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", path, err)
	}
	sort.Strings(files)
	return files, nil
}

// RunSuite loads and runs every scenario file in paths.
// A file that fails to load or run counts as a failed scenario; the suite
// keeps going.
func RunSuite(paths []string, logger *slog.Logger) *SuiteResult {
	res := &SuiteResult{Scenarios: make([]ScenarioResult, 0, len(paths))}
	for _, path := range paths {
		res.TotalScenarios++

		scenario, err := LoadScenario(path)
		if err != nil {
			res.fail("", path, []string{err.Error()})
			continue
		}

		result, err := RunWithLogger(scenario, logger.With("scenario", scenario.Name))
		if err != nil {
			res.fail(scenario.Name, path, []string{err.Error()})
			continue
		}
		if !result.Pass {
			res.fail(scenario.Name, path, result.Errors)
			continue
		}
		res.Passed++
		res.Scenarios = append(res.Scenarios, ScenarioResult{Scenario: scenario.Name, Path: path, Pass: true})
	}
	return res
}

func (r *SuiteResult) fail(name, path string, errs []string) {
	r.Failed++
	r.Scenarios = append(r.Scenarios, ScenarioResult{
		Scenario: name,
		Path:     path,
		Errors:   errs,
	})
}
