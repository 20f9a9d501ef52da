package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/projector/internal/todo"
)

// Scenario defines a binding-layer test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are named after it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Title and Items form the initial list.
	Title string      `yaml:"title,omitempty"`
	Items []todo.Item `yaml:"items,omitempty"`

	// Steps run in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state, journal and row notifications.
	Assertions []Assertion `yaml:"assertions"`

	// Session is an optional fixed session token.
	// Defaults to DefaultSession for deterministic golden comparison.
	Session string `yaml:"session,omitempty"`
}

// DefaultSession is the session token used when a scenario names none.
const DefaultSession = "test-session-default"

// Step is one UI interaction. Exactly one of Dispatch, Row, Draft or Pop is set.
type Step struct {
	// Dispatch sends an action through the root view-model.
	Dispatch *todo.Action `yaml:"dispatch,omitempty"`

	// Row sends a row action through the row view-model of an item.
	Row *RowStep `yaml:"row,omitempty"`

	// Draft writes text into the draft binding.
	Draft *string `yaml:"draft,omitempty"`

	// Pop writes nil into the detail link binding, as a platform back
	// gesture would.
	Pop bool `yaml:"pop,omitempty"`

	// Info annotates the step's provenance.
	Info string `yaml:"info,omitempty"`
}

// RowStep addresses a row action to the row of item ID.
type RowStep struct {
	ID   string `yaml:"id"`
	Kind string `yaml:"kind"`
	Text string `yaml:"text,omitempty"`
}

// Assertion validates the outcome of a scenario.
type Assertion struct {
	// Type selects the check; see the package documentation.
	Type string `yaml:"type"`

	// Items is the expected list (final_items).
	Items []todo.Item `yaml:"items,omitempty"`

	// Text is the expected draft (final_draft).
	Text string `yaml:"text,omitempty"`

	// ID names an item (final_selected, row_emissions).
	ID string `yaml:"id,omitempty"`

	// Count is the expected number (dispatch_count, row_emissions).
	Count int `yaml:"count,omitempty"`

	// Kinds are the expected action kinds (journal_kinds).
	Kinds []string `yaml:"kinds,omitempty"`

	// Info are the expected provenance annotations (journal_info).
	Info []string `yaml:"info,omitempty"`
}

// Assertion type constants.
const (
	AssertFinalItems    = "final_items"
	AssertFinalDraft    = "final_draft"
	AssertFinalSelected = "final_selected"
	AssertDispatchCount = "dispatch_count"
	AssertRowEmissions  = "row_emissions"
	AssertJournalKinds  = "journal_kinds"
	AssertJournalInfo   = "journal_info"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	seen := make(map[string]bool, len(s.Items))
	for i, it := range s.Items {
		if it.ID == "" {
			return fmt.Errorf("items[%d]: id is required", i)
		}
		if seen[it.ID] {
			return fmt.Errorf("items[%d]: duplicate id %q", i, it.ID)
		}
		seen[it.ID] = true
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, s *Step) error {
	set := 0
	if s.Dispatch != nil {
		set++
		if err := s.Dispatch.Validate(); err != nil {
			return fmt.Errorf("steps[%d].dispatch: %w", index, err)
		}
	}
	if s.Row != nil {
		set++
		if s.Row.ID == "" {
			return fmt.Errorf("steps[%d].row: id is required", index)
		}
		if s.Row.Kind == "" {
			return fmt.Errorf("steps[%d].row: kind is required", index)
		}
	}
	if s.Draft != nil {
		set++
	}
	if s.Pop {
		set++
	}
	if set != 1 {
		return fmt.Errorf("steps[%d]: exactly one of dispatch, row, draft or pop is required", index)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertFinalItems, AssertFinalDraft, AssertFinalSelected:
		// Empty expectations are meaningful: empty list, empty draft, no selection.
	case AssertDispatchCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for dispatch_count", index)
		}
	case AssertRowEmissions:
		if a.ID == "" {
			return fmt.Errorf("assertions[%d]: id is required for row_emissions", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for row_emissions", index)
		}
	case AssertJournalKinds:
		if a.Kinds == nil {
			return fmt.Errorf("assertions[%d]: kinds list is required for journal_kinds", index)
		}
	case AssertJournalInfo:
		if a.Info == nil {
			return fmt.Errorf("assertions[%d]: info list is required for journal_info", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
