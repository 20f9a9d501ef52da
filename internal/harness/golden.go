package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/projector/internal/todo"
)

// Snapshot captures what a scenario produced, for golden comparison.
type Snapshot struct {
	ScenarioName string         `json:"scenario_name"`
	Session      string         `json:"session"`
	Trace        []TraceEvent   `json:"trace"`
	State        todo.State     `json:"state"`
	RowEmissions map[string]int `json:"row_emissions"`
}

// NewSnapshot builds the snapshot of a result.
func NewSnapshot(s *Scenario, result *Result) Snapshot {
	session := s.Session
	if session == "" {
		session = DefaultSession
	}
	return Snapshot{
		ScenarioName: s.Name,
		Session:      session,
		Trace:        result.Trace,
		State:        result.State,
		RowEmissions: result.RowEmissions,
	}
}

// MarshalSnapshot renders a snapshot as indented JSON with a trailing
// newline. Map keys are sorted, so the output is deterministic.
func MarshalSnapshot(snap Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against the scenario's golden
// file without re-running it.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(NewSnapshot(scenario, result))
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)

	return nil
}
