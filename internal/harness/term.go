package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/eqgen/internal/algebra"
	"github.com/roach88/eqgen/internal/symbol"
)

// Term is a YAML-authored expression. Exactly one field is set.
type Term struct {
	Ref    string     `yaml:"ref,omitempty"`
	Number *float64   `yaml:"number,omitempty"`
	Add    []Term     `yaml:"add,omitempty"`
	Sub    []Term     `yaml:"sub,omitempty"`
	Mul    []Term     `yaml:"mul,omitempty"`
	Div    []Term     `yaml:"div,omitempty"`
	Gt     []Term     `yaml:"gt,omitempty"`
	Lt     []Term     `yaml:"lt,omitempty"`
	Neg    *Term      `yaml:"neg,omitempty"`
	Sum    *Reduction `yaml:"sum,omitempty"`
	Prod   *Reduction `yaml:"prod,omitempty"`
	Smin   *Reduction `yaml:"smin,omitempty"`
	Smax   *Reduction `yaml:"smax,omitempty"`
	MatMul []Term     `yaml:"matmul,omitempty"`
	Where  *Condition `yaml:"where,omitempty"`
}

// Reduction is a reduction of Of over the named sets, optionally filtered
// by Where: {sum: {over: [i], where: {ref: c}, of: ...}} is
// sum(i $ (c(i,j)),...).
type Reduction struct {
	Over  []string `yaml:"over"`
	Where *Term    `yaml:"where,omitempty"`
	Of    Term     `yaml:"of"`
}

// Condition is Of restricted to where Cond holds: of $ (cond).
type Condition struct {
	Of   Term `yaml:"of"`
	Cond Term `yaml:"cond"`
}

var relations = map[string]func(l, r algebra.Operand) *algebra.Expression{
	"eq":         algebra.Eq,
	"leq":        algebra.Le,
	"geq":        algebra.Ge,
	"nonbinding": algebra.Nonbinding,
}

var binaries = []struct {
	name  string
	terms func(*Term) []Term
	op    func(l, r algebra.Operand) *algebra.Expression
}{
	{"add", func(t *Term) []Term { return t.Add }, algebra.Add},
	{"sub", func(t *Term) []Term { return t.Sub }, algebra.Sub},
	{"mul", func(t *Term) []Term { return t.Mul }, algebra.Mul},
	{"div", func(t *Term) []Term { return t.Div }, algebra.Div},
	{"gt", func(t *Term) []Term { return t.Gt }, algebra.Gt},
	{"lt", func(t *Term) []Term { return t.Lt }, algebra.Lt},
}

var reductions = []struct {
	name  string
	red   func(*Term) *Reduction
	build func(over, body algebra.Operand) (*algebra.Operation, error)
}{
	{"sum", func(t *Term) *Reduction { return t.Sum }, algebra.Sum},
	{"prod", func(t *Term) *Reduction { return t.Prod }, algebra.Product},
	{"smin", func(t *Term) *Reduction { return t.Smin }, algebra.Smin},
	{"smax", func(t *Term) *Reduction { return t.Smax }, algebra.Smax},
}

// builder turns terms into algebra operands against one session's symbols.
type builder struct {
	reg *symbol.Registry
	gen *symbol.AliasGenerator
}

func (b *builder) build(t Term) (algebra.Operand, error) {
	var (
		out   algebra.Operand
		err   error
		found int
	)

	if t.Ref != "" {
		found++
		out, err = b.ref(t.Ref)
	}
	if t.Number != nil {
		found++
		out = algebra.Number(*t.Number)
	}
	for _, bin := range binaries {
		terms := bin.terms(&t)
		if terms == nil {
			continue
		}
		found++
		out, err = b.fold(bin.name, terms, bin.op)
	}
	if t.Neg != nil {
		found++
		var x algebra.Operand
		if x, err = b.build(*t.Neg); err == nil {
			out = algebra.Neg(x)
		}
	}
	for _, red := range reductions {
		r := red.red(&t)
		if r == nil {
			continue
		}
		found++
		out, err = b.reduce(r, red.build)
	}
	if t.MatMul != nil {
		found++
		out, err = b.matmul(t.MatMul)
	}
	if t.Where != nil {
		found++
		out, err = b.where(t.Where)
	}

	switch {
	case found == 0:
		return nil, fmt.Errorf("empty term")
	case found > 1:
		return nil, fmt.Errorf("term sets %d fields, want exactly one", found)
	}
	return out, err
}

func (b *builder) fold(name string, terms []Term, op func(l, r algebra.Operand) *algebra.Expression) (algebra.Operand, error) {
	if len(terms) < 2 {
		return nil, fmt.Errorf("%s needs at least two terms, got %d", name, len(terms))
	}
	acc, err := b.build(terms[0])
	if err != nil {
		return nil, err
	}
	for _, t := range terms[1:] {
		next, err := b.build(t)
		if err != nil {
			return nil, err
		}
		acc = op(acc, next)
	}
	return acc, nil
}

func (b *builder) reduce(r *Reduction, build func(over, body algebra.Operand) (*algebra.Operation, error)) (algebra.Operand, error) {
	if len(r.Over) == 0 {
		return nil, fmt.Errorf("reduction needs at least one set in over")
	}
	idx, err := b.indices(r.Over)
	if err != nil {
		return nil, err
	}
	var over algebra.Operand = algebra.SetRef(idx[0])
	if len(idx) > 1 {
		if over, err = algebra.NewDomain(idx...); err != nil {
			return nil, err
		}
	}
	if r.Where != nil {
		cond, err := b.build(*r.Where)
		if err != nil {
			return nil, fmt.Errorf("reduction filter: %w", err)
		}
		over = algebra.Where(over, cond)
	}
	body, err := b.build(r.Of)
	if err != nil {
		return nil, err
	}
	return build(over, body)
}

func (b *builder) where(c *Condition) (algebra.Operand, error) {
	of, err := b.build(c.Of)
	if err != nil {
		return nil, err
	}
	cond, err := b.build(c.Cond)
	if err != nil {
		return nil, fmt.Errorf("condition: %w", err)
	}
	return algebra.Where(of, cond), nil
}

func (b *builder) matmul(terms []Term) (algebra.Operand, error) {
	if len(terms) != 2 {
		return nil, fmt.Errorf("matmul needs exactly two terms, got %d", len(terms))
	}
	left, err := b.build(terms[0])
	if err != nil {
		return nil, err
	}
	right, err := b.build(terms[1])
	if err != nil {
		return nil, err
	}
	return algebra.MatMul(b.gen, left, right)
}

// ref parses "name" or "name(i,j,'label')".
func (b *builder) ref(text string) (*algebra.SymbolRef, error) {
	name, args, err := splitRef(text)
	if err != nil {
		return nil, err
	}
	e, err := b.reg.Resolve(name)
	if err != nil {
		return nil, err
	}
	if args == nil {
		return algebra.Sym(e)
	}
	idx, err := b.indices(args)
	if err != nil {
		return nil, err
	}
	return algebra.Sym(e, idx...)
}

func (b *builder) indices(names []string) ([]symbol.Index, error) {
	out := make([]symbol.Index, len(names))
	for n, name := range names {
		switch {
		case name == "*":
			out[n] = symbol.Universe
		case isQuoted(name):
			out[n] = symbol.Label(name[1 : len(name)-1])
		default:
			x, err := b.reg.Index(name)
			if err != nil {
				return nil, err
			}
			out[n] = x
		}
	}
	return out, nil
}

// splitRef splits "c(i, j)" into "c" and ["i", "j"]. A reference without
// parentheses returns nil args.
func splitRef(text string) (string, []string, error) {
	text = strings.TrimSpace(text)
	open := strings.IndexByte(text, '(')
	if open < 0 {
		return text, nil, nil
	}
	if !strings.HasSuffix(text, ")") {
		return "", nil, fmt.Errorf("malformed reference %q", text)
	}
	name := strings.TrimSpace(text[:open])
	inner := strings.TrimSpace(text[open+1 : len(text)-1])
	if name == "" || inner == "" {
		return "", nil, fmt.Errorf("malformed reference %q", text)
	}
	parts := strings.Split(inner, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return name, parts, nil
}

func isQuoted(s string) bool {
	return len(s) >= 2 &&
		((s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\''))
}
