package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/eqgen/internal/model"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Model is the path to a directory or .cue file holding the model
	// declarations. Relative paths resolve against the scenario file.
	Model string `yaml:"model,omitempty"`

	// Source holds inline CUE model declarations, used when Model is empty.
	Source string `yaml:"source,omitempty"`

	// Flow contains the statements to append, in order.
	Flow []Step `yaml:"flow"`

	// Assertions validate the final statement log.
	Assertions []Assertion `yaml:"assertions"`

	// SessionID is an optional fixed session ID. Defaults to the scenario name.
	SessionID string `yaml:"session_id,omitempty"`

	// Config is an optional YAML or TOML configuration file whose codegen
	// settings the session uses. Relative paths resolve against the
	// scenario file.
	Config string `yaml:"config,omitempty"`
}

// Step is one flow entry. Exactly one field is set.
type Step struct {
	// Raw appends verbatim statement text.
	Raw string `yaml:"raw,omitempty"`

	// Declare appends the declaration of an already registered entity.
	Declare string `yaml:"declare,omitempty"`

	// Assign appends lhs = rhs;
	Assign *AssignStep `yaml:"assign,omitempty"`

	// Define appends an equation definition.
	Define *DefineStep `yaml:"define,omitempty"`
}

// AssignStep is an assignment statement.
type AssignStep struct {
	LHS Term `yaml:"lhs"`
	RHS Term `yaml:"rhs"`
}

// DefineStep is an equation definition: equation .. lhs relation rhs.
type DefineStep struct {
	Equation string `yaml:"equation"`
	Relation string `yaml:"relation"` // eq, leq, geq or nonbinding
	LHS      Term   `yaml:"lhs"`
	RHS      Term   `yaml:"rhs"`
}

// Assertion validates the statement log.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Text is the substring to find (contains).
	Text string `yaml:"text,omitempty"`

	// Texts are substrings whose first occurrences must be ordered (order).
	Texts []string `yaml:"texts,omitempty"`

	// Kind is the statement kind to count (kind_count).
	Kind string `yaml:"kind,omitempty"`

	// Count is the expected number of statements (statement_count, kind_count).
	Count int `yaml:"count,omitempty"`

	// Symbols must each have a declaration (declared).
	Symbols []string `yaml:"symbols,omitempty"`
}

// Assertion type constants.
const (
	AssertContains       = "contains"
	AssertOrder          = "order"
	AssertStatementCount = "statement_count"
	AssertKindCount      = "kind_count"
	AssertDeclared       = "declared"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	// Resolve the model path relative to the scenario BEFORE validation
	if scenario.Model != "" && !filepath.IsAbs(scenario.Model) {
		scenario.Model = filepath.Join(filepath.Dir(path), scenario.Model)
	}
	if scenario.Model != "" {
		if _, err := os.Stat(scenario.Model); os.IsNotExist(err) {
			return nil, fmt.Errorf("invalid scenario: model not found: %s", scenario.Model)
		}
	}
	if scenario.Config != "" && !filepath.IsAbs(scenario.Config) {
		scenario.Config = filepath.Join(filepath.Dir(path), scenario.Config)
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML without touching the filesystem.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
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

	if s.Model == "" && s.Source == "" {
		return fmt.Errorf("model or source is required")
	}
	if s.Model != "" && s.Source != "" {
		return fmt.Errorf("model and source are mutually exclusive")
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Flow {
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

func validateStep(index int, step *Step) error {
	set := 0
	if step.Raw != "" {
		set++
	}
	if step.Declare != "" {
		set++
	}
	if step.Assign != nil {
		set++
	}
	if step.Define != nil {
		set++
	}
	if set != 1 {
		return fmt.Errorf("flow[%d]: exactly one of raw, declare, assign or define is required", index)
	}

	if step.Define != nil {
		if step.Define.Equation == "" {
			return fmt.Errorf("flow[%d].define: equation is required", index)
		}
		if _, ok := relations[step.Define.Relation]; !ok {
			return fmt.Errorf("flow[%d].define: unknown relation %q", index, step.Define.Relation)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertContains:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for contains", index)
		}
	case AssertOrder:
		if len(a.Texts) < 2 {
			return fmt.Errorf("assertions[%d]: at least two texts are required for order", index)
		}
	case AssertStatementCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for statement_count", index)
		}
	case AssertKindCount:
		if !model.ValidStatementKinds[model.StatementKind(a.Kind)] {
			return fmt.Errorf("assertions[%d]: unknown statement kind %q for kind_count", index, a.Kind)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for kind_count", index)
		}
	case AssertDeclared:
		if len(a.Symbols) == 0 {
			return fmt.Errorf("assertions[%d]: symbols list is required for declared", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
