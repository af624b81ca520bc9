package algebra

import (
	"fmt"

	"github.com/roach88/eqgen/internal/symbol"
)

// Reduction names an aggregate operator.
type Reduction string

const (
	ReduceSum  Reduction = "sum"
	ReduceProd Reduction = "prod"
	ReduceMin  Reduction = "smin"
	ReduceMax  Reduction = "smax"
)

// Binding records that the body's free index at BodyPos is the reduction
// index at ReducedPos.
type Binding struct {
	BodyPos    int
	ReducedPos int
}

// Operation is a reduction binding one or more indices of its body.
//
// Over is the reduction domain as written: a bare set reference, a
// *Domain, or a condition over one of those.
type Operation struct {
	Kind Reduction
	Over Operand
	Body Operand

	reduced    []symbol.Index
	bindings   []Binding
	free       []symbol.Index
	controlled []symbol.Index
}

// NewOperation builds a reduction of body over the indices of over.
func NewOperation(kind Reduction, over, body Operand) (*Operation, error) {
	if over == nil {
		return nil, newValidationError(ErrCodeCardinality, "Operation requires at least one index")
	}
	if body == nil {
		return nil, newValidationError(ErrCodeUsage, "%s requires a body", kind)
	}
	reduced, err := ToIndexList(over)
	if err != nil {
		return nil, err
	}

	op := &Operation{
		Kind:    kind,
		Over:    over,
		Body:    body,
		reduced: reduced,
	}
	for pos, x := range FreeDomain(body) {
		if r := indexOf(reduced, x); r >= 0 {
			op.bindings = append(op.bindings, Binding{BodyPos: pos, ReducedPos: r})
			continue
		}
		if !symbol.Contains(op.free, x) {
			op.free = append(op.free, x)
		}
	}
	// Indices only the domain filter mentions stay free: sum(i $ c(i,j), a(i))
	// still varies with j.
	for _, x := range conditionDomain(over) {
		if !symbol.Contains(reduced, x) && !symbol.Contains(op.free, x) {
			op.free = append(op.free, x)
		}
	}
	op.controlled = union(reduced, ControlledDomain(body))
	return op, nil
}

// conditionDomain returns the free indices of the conditions filtering a
// reduction domain, outermost condition last.
func conditionDomain(over Operand) []symbol.Index {
	e, ok := over.(*Expression)
	if !ok || e.Op != OpWhere {
		return nil
	}
	return union(conditionDomain(e.Left), FreeDomain(e.Right))
}

// Sum returns sum(over, body).
func Sum(over, body Operand) (*Operation, error) { return NewOperation(ReduceSum, over, body) }

// Product returns prod(over, body).
func Product(over, body Operand) (*Operation, error) { return NewOperation(ReduceProd, over, body) }

// Smin returns smin(over, body).
func Smin(over, body Operand) (*Operation, error) { return NewOperation(ReduceMin, over, body) }

// Smax returns smax(over, body).
func Smax(over, body Operand) (*Operation, error) { return NewOperation(ReduceMax, over, body) }

// Reduced returns the reduction indices in domain order.
func (o *Operation) Reduced() []symbol.Index {
	return append([]symbol.Index(nil), o.reduced...)
}

// Bindings returns the positions of the body's free domain that the
// reduction binds.
func (o *Operation) Bindings() []Binding {
	return append([]Binding(nil), o.bindings...)
}

// Reindex returns a new operation whose free indices are idx.
//
// The body's free-domain list is rebuilt position by position: slots
// recorded in Bindings keep their reduction index, the remaining slots take
// idx in order. A new index that equals a reduction index would be captured
// by the reduction and is rejected.
func (o *Operation) Reindex(idx []symbol.Index) (*Operation, error) {
	if len(idx) != len(o.free) {
		return nil, &ValidationError{
			Code:    ErrCodeCardinality,
			Message: fmt.Sprintf("%s over %s has free domain %s, indexed with %s", o.Kind, shape(o.reduced), shape(o.free), shape(idx)),
		}
	}
	for k, x := range idx {
		if x != o.free[k] && symbol.Contains(o.reduced, x) {
			return nil, newValidationError(ErrCodeUsage,
				"index %s would be captured by %s over %s", x, o.Kind, shape(o.reduced))
		}
	}

	subst := make(map[symbol.Index]symbol.Index, len(idx))
	for k, x := range o.free {
		subst[x] = idx[k]
	}

	bodyFree := FreeDomain(o.Body)
	full := make([]symbol.Index, len(bodyFree))
	bound := make(map[int]int, len(o.bindings))
	for _, b := range o.bindings {
		bound[b.BodyPos] = b.ReducedPos
	}
	for pos, x := range bodyFree {
		if r, ok := bound[pos]; ok {
			full[pos] = o.reduced[r]
			continue
		}
		full[pos] = subst[x]
	}

	body, err := Reindex(o.Body, full)
	if err != nil {
		return nil, err
	}
	over, err := substitute(o.Over, subst)
	if err != nil {
		return nil, err
	}
	return NewOperation(o.Kind, over, body)
}
