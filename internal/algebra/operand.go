package algebra

import (
	"fmt"

	"github.com/roach88/eqgen/internal/symbol"
)

// Operand is a node of an expression tree.
//
// This is a sealed interface - only types in this package implement it.
//
// Operand types:
//   - Number, Str, Bool: literals
//   - *SymbolRef: entity reference
//   - *Domain: index tuple
//   - *Expression: operator node
//   - *Operation: reduction
//   - *Call: function call
type Operand interface {
	operand() // Marker method - seals interface to this package
}

// Number is a numeric literal. Infinities and NaN render as the
// destination's special values.
type Number float64

// Str is literal text emitted verbatim.
type Str string

// Bool is a truth literal; it renders as yes or no.
type Bool bool

func (Number) operand()      {}
func (Str) operand()         {}
func (Bool) operand()        {}
func (*SymbolRef) operand()  {}
func (*Domain) operand()     {}
func (*Expression) operand() {}
func (*Operation) operand()  {}
func (*Call) operand()       {}

// SymbolRef references a registered entity at a list of indices.
//
// Indices are in view order. A permuted reference (see Permute) keeps the
// storage order in perm so that rendering emits the entity's declared
// dimension order.
type SymbolRef struct {
	ID      symbol.ID
	Kind    symbol.Kind
	Name    string
	Attr    string // attribute suffix such as "l" or "ord"; empty for none
	Indices []symbol.Index

	perm []int // view position k shows storage position perm[k]
	self bool  // bare set reference; renders as its own name
}

// SetRef returns a bare reference to a set or alias, usable as a
// reduction domain or as a leaf (it renders as the set name).
func SetRef(x symbol.Index) *SymbolRef {
	return &SymbolRef{
		ID:      x.ID(),
		Kind:    symbol.KindSet,
		Name:    x.Name(),
		Indices: []symbol.Index{x},
		self:    true,
	}
}

// Sym returns a reference to e. With no indices the entity's declared
// domain is used; sets and aliases referenced without indices become bare
// set references.
func Sym(e symbol.Entity, idx ...symbol.Index) (*SymbolRef, error) {
	if e.ID == symbol.NoID {
		return nil, newValidationError(ErrCodeUsage, "reference to unregistered symbol %q", e.Name)
	}
	if len(idx) == 0 {
		if e.Kind.IsIndexable() {
			return SetRef(e.Index()), nil
		}
		idx = e.Domain
	}
	if len(idx) != e.Dim() {
		return nil, &ValidationError{
			Code:    ErrCodeCardinality,
			Message: fmt.Sprintf("%s %q has %d dimensions, indexed with %s", e.Kind, e.Name, e.Dim(), shape(idx)),
			Details: map[string]string{"symbol": e.Name},
		}
	}
	for i, x := range idx {
		if x.IsZero() {
			return nil, newValidationError(ErrCodeUsage, "index %d of %q is empty", i, e.Name)
		}
	}
	return &SymbolRef{
		ID:      e.ID,
		Kind:    e.Kind,
		Name:    e.Name,
		Indices: append([]symbol.Index(nil), idx...),
	}, nil
}

// MustSym is like Sym but panics on error. Intended for tests and fixtures.
func MustSym(e symbol.Entity, idx ...symbol.Index) *SymbolRef {
	ref, err := Sym(e, idx...)
	if err != nil {
		panic(err)
	}
	return ref
}

// IsSet reports whether r is a bare set or alias reference.
func (r *SymbolRef) IsSet() bool { return r.self }

// Attribute returns a copy of r carrying the given attribute suffix, e.g.
// Attribute("l") for a variable level or Attribute("ord") for a set.
func (r *SymbolRef) Attribute(attr string) *SymbolRef {
	out := r.clone()
	out.Attr = attr
	return out
}

// StorageIndices returns the indices in declared dimension order.
func (r *SymbolRef) StorageIndices() []symbol.Index {
	if r.perm == nil {
		return append([]symbol.Index(nil), r.Indices...)
	}
	out := make([]symbol.Index, len(r.Indices))
	for k, p := range r.perm {
		out[p] = r.Indices[k]
	}
	return out
}

func (r *SymbolRef) clone() *SymbolRef {
	out := *r
	out.Indices = append([]symbol.Index(nil), r.Indices...)
	if r.perm != nil {
		out.perm = append([]int(nil), r.perm...)
	}
	return &out
}

// withIndices returns a copy of r at new view indices. A bare set
// reference becomes a reference to the new set.
func (r *SymbolRef) withIndices(idx []symbol.Index) *SymbolRef {
	if r.self {
		out := SetRef(idx[0])
		out.Attr = r.Attr
		return out
	}
	out := r.clone()
	copy(out.Indices, idx)
	return out
}

// Domain is an explicit ordered tuple of indices.
type Domain struct {
	indices []symbol.Index
}

// NewDomain builds a domain. At least one index is required.
func NewDomain(idx ...symbol.Index) (*Domain, error) {
	if len(idx) == 0 {
		return nil, &DomainError{Message: "domain requires at least one index"}
	}
	for i, x := range idx {
		if x.IsZero() {
			return nil, &DomainError{Message: fmt.Sprintf("index %d of domain is empty", i)}
		}
	}
	return &Domain{indices: append([]symbol.Index(nil), idx...)}, nil
}

// Indices returns a copy of the domain's indices.
func (d *Domain) Indices() []symbol.Index {
	return append([]symbol.Index(nil), d.indices...)
}

// Len returns the number of indices.
func (d *Domain) Len() int { return len(d.indices) }

// Call is an intrinsic function applied to its arguments.
type Call struct {
	Name string
	Args []Operand

	scalar bool // result carries no domain, e.g. card(i)
}

// IsScalar reports whether the call yields a value without a domain.
func (c *Call) IsScalar() bool { return c.scalar }
