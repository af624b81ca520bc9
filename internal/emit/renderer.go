package emit

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/roach88/eqgen/internal/algebra"
	"github.com/roach88/eqgen/internal/config"
	"github.com/roach88/eqgen/internal/symbol"
)

// Renderer serializes algebra trees into statement text.
//
// Every composite sub-expression is parenthesized so that evaluation order
// never depends on the destination's precedence rules. The exceptions are
// the places where the destination rejects extra parentheses: a relation
// at the top of an equation definition, the target of an assignment or
// definition, and a condition written in a reduction domain.
type Renderer struct {
	threshold int
}

// NewRenderer creates a renderer using the codegen line-length settings.
func NewRenderer(cfg config.CodegenConfig) *Renderer {
	return &Renderer{threshold: cfg.SplitThreshold()}
}

// mode is the syntactic position a node is rendered in.
type mode int

const (
	// modeNested is any operand position: parenthesized, comparison spelling.
	modeNested mode = iota
	// modeEquation is the root of a tree or the relation of a definition:
	// relations use =l=, =g=, =e= and drop their parentheses.
	modeEquation
	// modeTarget is the left side of an assignment or definition, or a
	// reduction domain: conditions drop their outer parentheses.
	modeTarget
)

// Render returns the text of x. Relations at the root use equation
// spelling; assignments and definitions end with a semicolon.
func (r *Renderer) Render(x algebra.Operand) (string, error) {
	if x == nil {
		return "", fmt.Errorf("cannot render nil operand")
	}
	return r.render(x, modeEquation)
}

func (r *Renderer) render(x algebra.Operand, m mode) (string, error) {
	switch v := x.(type) {
	case algebra.Number:
		return FormatNumber(float64(v)), nil
	case algebra.Str:
		return string(v), nil
	case algebra.Bool:
		return formatBool(bool(v)), nil
	case *algebra.SymbolRef:
		return renderRef(v), nil
	case *algebra.Domain:
		return renderIndexTuple(v.Indices()), nil
	case *algebra.Expression:
		return r.renderExpression(v, m)
	case *algebra.Operation:
		return r.renderOperation(v)
	case *algebra.Call:
		return r.renderCall(v)
	case nil:
		return "", fmt.Errorf("missing operand")
	default:
		return "", fmt.Errorf("unsupported operand type: %T", x)
	}
}

// operand renders a child of a binary node. Negative numeric literals are
// parenthesized so that "x * -1" is never produced.
func (r *Renderer) operand(x algebra.Operand, m mode) (string, error) {
	if n, ok := x.(algebra.Number); ok && (n < 0 || math.IsInf(float64(n), -1)) {
		return "(" + FormatNumber(float64(n)) + ")", nil
	}
	return r.render(x, m)
}

func (r *Renderer) renderExpression(e *algebra.Expression, m mode) (string, error) {
	if e.Op.IsUnary() {
		right, err := r.operand(e.Right, modeNested)
		if err != nil {
			return "", fmt.Errorf("render %s operand: %w", e.Op.Spelling(false), err)
		}
		if e.Op == algebra.OpNeg {
			return "(-" + right + ")", nil
		}
		return "(" + e.Op.Spelling(false) + " " + right + ")", nil
	}

	switch {
	case e.Op.IsStatement():
		return r.renderStatement(e)
	case e.Op == algebra.OpWhere:
		return r.renderCondition(e, m)
	}

	equation := m == modeEquation && e.Op.IsRelation()
	left, err := r.operand(e.Left, modeNested)
	if err != nil {
		return "", fmt.Errorf("render left of %s: %w", e.Op, err)
	}
	right, err := r.operand(e.Right, modeNested)
	if err != nil {
		return "", fmt.Errorf("render right of %s: %w", e.Op, err)
	}

	out := r.join(left, e.Op.Spelling(equation), right)
	if equation {
		return out, nil
	}
	return "(" + out + ")", nil
}

// renderStatement renders "target = value;" and "eq .. relation;".
func (r *Renderer) renderStatement(e *algebra.Expression) (string, error) {
	left, err := r.render(e.Left, modeTarget)
	if err != nil {
		return "", fmt.Errorf("render target: %w", err)
	}

	rightMode := modeNested
	if e.Op == algebra.OpDefine {
		rightMode = modeEquation
	}
	right, err := r.operand(e.Right, rightMode)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", statementName(e.Op), err)
	}

	return r.join(left, e.Op.Spelling(false), right) + ";", nil
}

// renderCondition renders "x $ (cond)". The condition is always
// parenthesized; the whole node is parenthesized only in operand position
// and only when its left side is not already a bare domain.
func (r *Renderer) renderCondition(e *algebra.Expression, m mode) (string, error) {
	left, err := r.operand(e.Left, modeNested)
	if err != nil {
		return "", fmt.Errorf("render conditioned operand: %w", err)
	}
	cond, err := r.operand(e.Right, modeNested)
	if err != nil {
		return "", fmt.Errorf("render condition: %w", err)
	}
	if !selfWrapped(e.Right) {
		cond = "(" + cond + ")"
	}

	out := r.join(left, "$", cond)
	if m == modeTarget || isBareDomain(e.Left) {
		return out, nil
	}
	return "(" + out + ")", nil
}

// renderOperation renders "sum(i,body)" or "sum((i,j),body)".
func (r *Renderer) renderOperation(o *algebra.Operation) (string, error) {
	var over string
	switch d := o.Over.(type) {
	case *algebra.Domain:
		over = renderIndexTuple(d.Indices())
	default:
		s, err := r.render(o.Over, modeTarget)
		if err != nil {
			return "", fmt.Errorf("render %s domain: %w", o.Kind, err)
		}
		over = s
	}

	body, err := r.render(o.Body, modeNested)
	if err != nil {
		return "", fmt.Errorf("render %s body: %w", o.Kind, err)
	}
	return string(o.Kind) + "(" + over + "," + body + ")", nil
}

func (r *Renderer) renderCall(c *algebra.Call) (string, error) {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		s, err := r.render(a, modeNested)
		if err != nil {
			return "", fmt.Errorf("render argument %d of %s: %w", i, c.Name, err)
		}
		args[i] = s
	}
	return c.Name + "(" + strings.Join(args, ",") + ")", nil
}

// join concatenates a binary node, breaking the line before the operator
// when the pieces reach the split threshold.
func (r *Renderer) join(left, op, right string) string {
	if len(left)+len(op)+len(right) >= r.threshold {
		return left + "\n " + op + " " + right
	}
	return left + " " + op + " " + right
}

func renderRef(ref *algebra.SymbolRef) string {
	var b strings.Builder
	b.WriteString(ref.Name)
	if ref.Attr != "" {
		b.WriteByte('.')
		b.WriteString(ref.Attr)
	}
	if ref.IsSet() || len(ref.Indices) == 0 {
		return b.String()
	}
	b.WriteByte('(')
	b.WriteString(strings.Join(symbol.Names(ref.StorageIndices()), ","))
	b.WriteByte(')')
	return b.String()
}

// renderIndexTuple renders one index bare and several as "(i,j)".
func renderIndexTuple(list []symbol.Index) string {
	if len(list) == 1 {
		return list[0].String()
	}
	return "(" + strings.Join(symbol.Names(list), ",") + ")"
}

// selfWrapped reports whether x renders in nested mode with parentheses
// enclosing the whole text. Only expressions do, except a condition on a
// bare domain such as "i $ (ord(i) > 1)".
func selfWrapped(x algebra.Operand) bool {
	e, ok := x.(*algebra.Expression)
	if !ok || e.Op.IsStatement() {
		return false
	}
	return e.Op != algebra.OpWhere || !isBareDomain(e.Left)
}

func isBareDomain(x algebra.Operand) bool {
	switch v := x.(type) {
	case *algebra.Domain:
		return true
	case *algebra.SymbolRef:
		return v.IsSet() && v.Attr == ""
	default:
		return false
	}
}

func statementName(op algebra.Op) string {
	if op == algebra.OpDefine {
		return "definition"
	}
	return "assignment"
}

// FormatNumber renders a numeric literal. Integral values print without a
// decimal point; infinities and NaN print as inf, -inf and na.
func FormatNumber(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	case math.IsNaN(v):
		return "na"
	case v == 0:
		return "0"
	case v == math.Trunc(v) && math.Abs(v) < 1e15:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
}

func formatBool(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
