package algebra

import (
	"fmt"

	"github.com/roach88/eqgen/internal/symbol"
)

// ToIndexList flattens a domain-like operand into its ordered indices.
//
// Accepted forms are a bare set reference, a set indexed by its own domain
// such as tt(t), an explicit *Domain, and a condition whose left side is
// one of those. Anything else, or a form that yields no index, is a
// DomainError.
func ToIndexList(x Operand) ([]symbol.Index, error) {
	var out []symbol.Index
	switch v := x.(type) {
	case *Domain:
		out = v.Indices()
	case *SymbolRef:
		if v.Kind != symbol.KindSet && v.Kind != symbol.KindAlias {
			return nil, &DomainError{Message: fmt.Sprintf("%s %q cannot be used as a domain", v.Kind, v.Name)}
		}
		if v.Attr != "" {
			return nil, &DomainError{Message: fmt.Sprintf("attribute %s.%s cannot be used as a domain", v.Name, v.Attr)}
		}
		out = setIndices(v.Indices)
	case *Expression:
		if v.Op != OpWhere {
			return nil, &DomainError{Message: fmt.Sprintf("%s cannot be used as a domain", kindOf(v))}
		}
		return ToIndexList(v.Left)
	default:
		return nil, &DomainError{Message: fmt.Sprintf("%s cannot be used as a domain", kindOf(x))}
	}
	if len(out) == 0 {
		return nil, &DomainError{Message: "domain resolves to no index"}
	}
	return out, nil
}

// FreeDomain returns the indices of x that are not bound by a reduction,
// in order of first appearance. Labels are never free.
//
// Symbol references keep repeated indices, so A(i,i) has free domain
// [i i]; composite nodes report each index once.
func FreeDomain(x Operand) []symbol.Index {
	switch v := x.(type) {
	case *SymbolRef:
		return setIndices(v.Indices)
	case *Domain:
		return setIndices(v.indices)
	case *Expression:
		if v.Op == OpWhere || v.Op.IsStatement() {
			return unique(FreeDomain(v.Left))
		}
		return union(FreeDomain(v.Left), FreeDomain(v.Right))
	case *Operation:
		return append([]symbol.Index(nil), v.free...)
	case *Call:
		if v.scalar {
			return nil
		}
		var out []symbol.Index
		for _, a := range v.Args {
			out = union(out, FreeDomain(a))
		}
		return out
	default:
		return nil
	}
}

// ControlledDomain returns the indices bound by reductions anywhere in x.
func ControlledDomain(x Operand) []symbol.Index {
	switch v := x.(type) {
	case *Expression:
		return union(ControlledDomain(v.Left), ControlledDomain(v.Right))
	case *Operation:
		return append([]symbol.Index(nil), v.controlled...)
	case *Call:
		var out []symbol.Index
		for _, a := range v.Args {
			out = union(out, ControlledDomain(a))
		}
		return out
	default:
		return nil
	}
}

// setIndices drops labels.
func setIndices(list []symbol.Index) []symbol.Index {
	out := make([]symbol.Index, 0, len(list))
	for _, x := range list {
		if !x.IsLabel() {
			out = append(out, x)
		}
	}
	return out
}

// union appends the elements of b missing from a, by identity, keeping
// first-appearance order.
func union(a, b []symbol.Index) []symbol.Index {
	out := unique(a)
	for _, x := range b {
		if !symbol.Contains(out, x) {
			out = append(out, x)
		}
	}
	return out
}

func unique(list []symbol.Index) []symbol.Index {
	var out []symbol.Index
	for _, x := range list {
		if !symbol.Contains(out, x) {
			out = append(out, x)
		}
	}
	return out
}

func indexOf(list []symbol.Index, x symbol.Index) int {
	for i, y := range list {
		if y == x {
			return i
		}
	}
	return -1
}
