package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/eqgen/internal/model"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type       string            // Assertion type for categorization
	Expected   string            // Human-readable expected outcome
	Actual     string            // Human-readable actual outcome
	Statements []model.Statement // Full log for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nStatement log:\n")
	for _, st := range e.Statements {
		fmt.Fprintf(&buf, "  [%d] %s\n", st.Seq, st.Text)
	}

	return buf.String()
}

// EvaluateAssertions runs every assertion against the result and returns
// the failure messages. All assertions run; none short-circuits.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(result.Statements, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d: %v", i, err))
		}
	}
	return errs
}

func evaluate(stmts []model.Statement, a Assertion) error {
	switch a.Type {
	case AssertContains:
		return assertContains(stmts, a)
	case AssertOrder:
		return assertOrder(stmts, a)
	case AssertStatementCount:
		return assertStatementCount(stmts, a)
	case AssertKindCount:
		return assertKindCount(stmts, a)
	case AssertDeclared:
		return assertDeclared(stmts, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// firstContaining returns the 1-indexed position of the first statement
// whose text contains text, or 0.
func firstContaining(stmts []model.Statement, text string) int {
	for i, st := range stmts {
		if strings.Contains(st.Text, text) {
			return i + 1
		}
	}
	return 0
}

func assertContains(stmts []model.Statement, a Assertion) error {
	if firstContaining(stmts, a.Text) > 0 {
		return nil
	}
	return &AssertionError{
		Type:       AssertContains,
		Expected:   fmt.Sprintf("a statement containing %q", a.Text),
		Actual:     "not found in log",
		Statements: stmts,
	}
}

// assertOrder checks that the first statements containing each text appear
// in the given order. They need not be consecutive.
func assertOrder(stmts []model.Statement, a Assertion) error {
	positions := make([]int, len(a.Texts))
	for i, text := range a.Texts {
		positions[i] = firstContaining(stmts, text)
		if positions[i] == 0 {
			return &AssertionError{
				Type:       AssertOrder,
				Expected:   fmt.Sprintf("all texts present: %q", a.Texts),
				Actual:     fmt.Sprintf("missing text: %q", text),
				Statements: stmts,
			}
		}
	}

	for i := 1; i < len(a.Texts); i++ {
		if positions[i-1] >= positions[i] {
			return &AssertionError{
				Type:     AssertOrder,
				Expected: fmt.Sprintf("texts in order: %q", a.Texts),
				Actual: fmt.Sprintf("%q (pos %d) should be before %q (pos %d)",
					a.Texts[i-1], positions[i-1], a.Texts[i], positions[i]),
				Statements: stmts,
			}
		}
	}
	return nil
}

func assertStatementCount(stmts []model.Statement, a Assertion) error {
	if len(stmts) == a.Count {
		return nil
	}
	return &AssertionError{
		Type:       AssertStatementCount,
		Expected:   fmt.Sprintf("%d statements", a.Count),
		Actual:     fmt.Sprintf("%d statements", len(stmts)),
		Statements: stmts,
	}
}

func assertKindCount(stmts []model.Statement, a Assertion) error {
	count := 0
	for _, st := range stmts {
		if st.Kind == model.StatementKind(a.Kind) {
			count++
		}
	}
	if count == a.Count {
		return nil
	}
	return &AssertionError{
		Type:       AssertKindCount,
		Expected:   fmt.Sprintf("%d %s statements", a.Count, a.Kind),
		Actual:     fmt.Sprintf("%d %s statements", count, a.Kind),
		Statements: stmts,
	}
}

// assertDeclared checks that each symbol has a declaration statement.
// Declarations record the declared name as their first symbol.
func assertDeclared(stmts []model.Statement, a Assertion) error {
	declared := make(map[string]bool)
	for _, st := range stmts {
		if st.Kind == model.KindDeclaration && len(st.Symbols) > 0 {
			declared[st.Symbols[0]] = true
		}
	}

	var missing []string
	for _, name := range a.Symbols {
		if !declared[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	slices.Sort(missing)
	return &AssertionError{
		Type:       AssertDeclared,
		Expected:   fmt.Sprintf("declarations for %v", a.Symbols),
		Actual:     fmt.Sprintf("undeclared: %v", missing),
		Statements: stmts,
	}
}
