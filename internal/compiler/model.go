package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/eqgen/internal/symbol"
)

// Decl is one entity declared in a model file.
type Decl struct {
	Name        string
	Kind        symbol.Kind
	Domain      []string // dimension names; "*" is the universe
	Records     []string // sets only
	Of          string   // aliases only
	Type        string   // variable or equation type
	Description string
	Pos         token.Pos
}

// Model is a compiled model declaration file.
//
// Indexables holds sets and aliases in dependency order: every set or
// alias appears after the sets its domain or target refers to. The other
// lists keep source order.
type Model struct {
	Indexables []Decl
	Parameters []Decl
	Variables  []Decl
	Equations  []Decl
}

// Decls returns every declaration in registration order.
func (m *Model) Decls() []Decl {
	out := make([]Decl, 0, len(m.Indexables)+len(m.Parameters)+len(m.Variables)+len(m.Equations))
	out = append(out, m.Indexables...)
	out = append(out, m.Parameters...)
	out = append(out, m.Variables...)
	return append(out, m.Equations...)
}

// CompileModel parses a CUE value into a Model.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The value holds up to five sections, each a struct keyed by entity name:
//
//	set: i: {records: ["seattle", "san-diego"], description: "plants"}
//	set: k: ["k1", "k2"]          // shorthand for records
//	alias: ip: "i"
//	parameter: c: {domain: ["i", "j"]}
//	variable: x: {type: "positive", domain: ["i", "j"]}
//	equation: supply: {domain: ["i"]}
//
// The result is validated; validation failures are returned as a
// *CompileError carrying the first problem found.
func CompileModel(v cue.Value) (*Model, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	sets, err := parseSection(v, "set", symbol.KindSet, parseSet)
	if err != nil {
		return nil, err
	}
	aliases, err := parseSection(v, "alias", symbol.KindAlias, parseAlias)
	if err != nil {
		return nil, err
	}

	m := &Model{}
	if m.Parameters, err = parseSection(v, "parameter", symbol.KindParameter, parseSymbol); err != nil {
		return nil, err
	}
	if m.Variables, err = parseSection(v, "variable", symbol.KindVariable, parseSymbol); err != nil {
		return nil, err
	}
	if m.Equations, err = parseSection(v, "equation", symbol.KindEquation, parseSymbol); err != nil {
		return nil, err
	}
	if len(sets)+len(aliases)+len(m.Parameters)+len(m.Variables)+len(m.Equations) == 0 {
		return nil, &CompileError{
			Field:   "model",
			Message: "at least one set, alias, parameter, variable or equation is required",
			Pos:     v.Pos(),
		}
	}

	if errs := Validate(sets, aliases, m); len(errs) > 0 {
		return nil, errs[0].compileError()
	}

	m.Indexables, err = orderIndexables(append(sets, aliases...))
	if err != nil {
		return nil, err
	}
	return m, nil
}

type parseFunc func(d *Decl, v cue.Value) error

// parseSection parses every field of the named top-level struct.
// A missing section yields no declarations.
func parseSection(v cue.Value, section string, kind symbol.Kind, parse parseFunc) ([]Decl, error) {
	sectionVal := v.LookupPath(cue.ParsePath(section))
	if !sectionVal.Exists() {
		return nil, nil
	}

	iter, err := sectionVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var decls []Decl
	for iter.Next() {
		d := Decl{
			Name: iter.Selector().Unquoted(),
			Kind: kind,
			Pos:  iter.Value().Pos(),
		}
		if err := parse(&d, iter.Value()); err != nil {
			return nil, err
		}
		decls = append(decls, d)
	}
	return decls, nil
}

// parseSet accepts a record list or a struct with optional records,
// domain and description.
func parseSet(d *Decl, v cue.Value) error {
	if v.IncompleteKind() == cue.ListKind {
		records, err := stringList(v, "set."+d.Name)
		if err != nil {
			return err
		}
		d.Records = records
		return nil
	}
	if err := parseSymbol(d, v); err != nil {
		return err
	}
	recordsVal := v.LookupPath(cue.ParsePath("records"))
	if recordsVal.Exists() {
		records, err := stringList(recordsVal, fmt.Sprintf("set.%s.records", d.Name))
		if err != nil {
			return err
		}
		d.Records = records
	}
	return nil
}

// parseAlias accepts the target name, or a struct with an "of" field.
func parseAlias(d *Decl, v cue.Value) error {
	if of, err := v.String(); err == nil {
		d.Of = of
		return nil
	}
	ofVal := v.LookupPath(cue.ParsePath("of"))
	if !ofVal.Exists() {
		return &CompileError{
			Field:   fmt.Sprintf("alias.%s", d.Name),
			Message: "alias must be a set name or a struct with an of field",
			Pos:     v.Pos(),
		}
	}
	of, err := ofVal.String()
	if err != nil {
		return formatCUEError(err)
	}
	d.Of = of
	return optionalString(v, "description", &d.Description)
}

// parseSymbol reads the domain, type and description fields shared by
// every entity kind.
func parseSymbol(d *Decl, v cue.Value) error {
	if v.IncompleteKind() != cue.StructKind {
		return &CompileError{
			Field:   fmt.Sprintf("%s.%s", d.Kind, d.Name),
			Message: fmt.Sprintf("must be a struct, got %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}

	domainVal := v.LookupPath(cue.ParsePath("domain"))
	if domainVal.Exists() {
		domain, err := stringList(domainVal, fmt.Sprintf("%s.%s.domain", d.Kind, d.Name))
		if err != nil {
			return err
		}
		d.Domain = domain
	}
	if err := optionalString(v, "type", &d.Type); err != nil {
		return err
	}
	return optionalString(v, "description", &d.Description)
}

func optionalString(v cue.Value, field string, dst *string) error {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return nil
	}
	s, err := fv.String()
	if err != nil {
		return formatCUEError(err)
	}
	*dst = s
	return nil
}

func stringList(v cue.Value, field string) ([]string, error) {
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{
			Field:   field,
			Message: "must be a list of strings",
			Pos:     v.Pos(),
		}
	}
	out := []string{}
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
