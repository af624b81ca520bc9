package compiler

import (
	"fmt"

	"cuelang.org/go/cue/token"

	"github.com/roach88/eqgen/internal/symbol"
)

// Validation error codes (E100-E199)
const (
	ErrDuplicateName    = "E101" // name declared twice, in any section
	ErrInvalidType      = "E102" // unknown variable or equation type
	ErrUnknownDomain    = "E103" // domain entry names no declared set or alias
	ErrNotIndexable     = "E104" // domain entry or alias target is not a set or alias
	ErrInvalidAlias     = "E105" // alias without a target
	ErrUnexpectedField  = "E106" // records on a non-set, type on a set
	ErrEmptyName        = "E107" // blank entity name
	ErrUniverseAsTarget = "E108" // alias of the universe
)

// ValidationError represents a model validation error.
type ValidationError struct {
	Field   string    `json:"field"`
	Message string    `json:"message"`
	Code    string    `json:"code"`
	Line    int       `json:"line,omitempty"`
	Pos     token.Pos `json:"-"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

func (e ValidationError) compileError() *CompileError {
	return &CompileError{
		Field:   e.Field,
		Message: fmt.Sprintf("[%s] %s", e.Code, e.Message),
		Pos:     e.Pos,
	}
}

// Validate checks declarations against each other.
// Returns all errors found (does not fail-fast).
func Validate(sets, aliases []Decl, m *Model) []ValidationError {
	var errs []ValidationError

	kinds := make(map[string]symbol.Kind)
	all := make([]Decl, 0, len(sets)+len(aliases))
	all = append(all, sets...)
	all = append(all, aliases...)
	if m != nil {
		all = append(all, m.Parameters...)
		all = append(all, m.Variables...)
		all = append(all, m.Equations...)
	}

	for _, d := range all {
		if d.Name == "" {
			errs = append(errs, newValidationError(d, "name", "name must be non-empty", ErrEmptyName))
			continue
		}
		if prev, ok := kinds[d.Name]; ok {
			errs = append(errs, newValidationError(d, "name",
				fmt.Sprintf("%q already declared as a %s", d.Name, prev), ErrDuplicateName))
			continue
		}
		kinds[d.Name] = d.Kind
	}

	for _, d := range all {
		errs = append(errs, validateDecl(d, kinds)...)
	}
	return errs
}

func validateDecl(d Decl, kinds map[string]symbol.Kind) []ValidationError {
	var errs []ValidationError

	switch d.Kind {
	case symbol.KindVariable:
		if d.Type != "" && !symbol.ValidVariableTypes[symbol.VariableType(d.Type)] {
			errs = append(errs, newValidationError(d, "type",
				fmt.Sprintf("invalid variable type %q", d.Type), ErrInvalidType))
		}
	case symbol.KindEquation:
		if d.Type != "" && !symbol.ValidEquationTypes[symbol.EquationType(d.Type)] {
			errs = append(errs, newValidationError(d, "type",
				fmt.Sprintf("invalid equation type %q", d.Type), ErrInvalidType))
		}
	case symbol.KindSet, symbol.KindParameter:
		if d.Type != "" {
			errs = append(errs, newValidationError(d, "type",
				fmt.Sprintf("a %s has no type", d.Kind), ErrUnexpectedField))
		}
	case symbol.KindAlias:
		switch {
		case d.Of == "":
			errs = append(errs, newValidationError(d, "of", "alias target is required", ErrInvalidAlias))
		case d.Of == symbol.Universe.Name():
			errs = append(errs, newValidationError(d, "of", "cannot alias the universe", ErrUniverseAsTarget))
		default:
			errs = append(errs, checkIndexable(d, "of", d.Of, kinds)...)
		}
	}

	if d.Kind != symbol.KindSet && len(d.Records) > 0 {
		errs = append(errs, newValidationError(d, "records",
			fmt.Sprintf("a %s has no records", d.Kind), ErrUnexpectedField))
	}

	for n, dim := range d.Domain {
		if dim == symbol.Universe.Name() {
			continue
		}
		errs = append(errs, checkIndexable(d, fmt.Sprintf("domain[%d]", n), dim, kinds)...)
	}
	return errs
}

func checkIndexable(d Decl, field, ref string, kinds map[string]symbol.Kind) []ValidationError {
	kind, ok := kinds[ref]
	if !ok {
		return []ValidationError{newValidationError(d, field,
			fmt.Sprintf("undeclared set %q", ref), ErrUnknownDomain)}
	}
	if !kind.IsIndexable() {
		return []ValidationError{newValidationError(d, field,
			fmt.Sprintf("%q is a %s, not a set or alias", ref, kind), ErrNotIndexable)}
	}
	return nil
}

func newValidationError(d Decl, field, msg, code string) ValidationError {
	e := ValidationError{
		Field:   fmt.Sprintf("%s.%s.%s", d.Kind, d.Name, field),
		Message: msg,
		Code:    code,
		Pos:     d.Pos,
	}
	if d.Pos.IsValid() {
		e.Line = d.Pos.Line()
	}
	return e
}
