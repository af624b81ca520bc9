package algebra

import (
	"fmt"

	"github.com/roach88/eqgen/internal/symbol"
)

// Reindex returns a copy of x whose free domain is idx.
//
// Free indices are replaced positionally: FreeDomain(x)[k] becomes idx[k]
// everywhere it occurs outside a reduction that binds it. Symbol
// references are rebound slot by slot, so A(i,i) can be reindexed to
// A(i,j). The input is never modified.
func Reindex(x Operand, idx []symbol.Index) (Operand, error) {
	for k, y := range idx {
		if y.IsZero() {
			return nil, newValidationError(ErrCodeUsage, "index %d of %s is empty", k, shape(idx))
		}
	}

	switch v := x.(type) {
	case *SymbolRef:
		slots, err := rebind(v.Indices, idx, v.Name)
		if err != nil {
			return nil, err
		}
		return v.withIndices(slots), nil
	case *Domain:
		slots, err := rebind(v.indices, idx, "domain")
		if err != nil {
			return nil, err
		}
		return &Domain{indices: slots}, nil
	case *Operation:
		return v.Reindex(idx)
	}

	free := FreeDomain(x)
	if len(free) != len(idx) {
		return nil, &ValidationError{
			Code:    ErrCodeCardinality,
			Message: fmt.Sprintf("%s has free domain %s, indexed with %s", kindOf(x), shape(free), shape(idx)),
		}
	}
	subst := make(map[symbol.Index]symbol.Index, len(free))
	for k, old := range free {
		subst[old] = idx[k]
	}
	return substitute(x, subst)
}

// rebind replaces the non-label slots of list with idx in order.
func rebind(list, idx []symbol.Index, what string) ([]symbol.Index, error) {
	out := append([]symbol.Index(nil), list...)
	k := 0
	for pos, x := range out {
		if x.IsLabel() {
			continue
		}
		if k == len(idx) {
			break
		}
		out[pos] = idx[k]
		k++
	}
	if k != len(idx) || k != len(setIndices(list)) {
		return nil, &ValidationError{
			Code:    ErrCodeCardinality,
			Message: fmt.Sprintf("%s has free domain %s, indexed with %s", what, shape(setIndices(list)), shape(idx)),
		}
	}
	return out, nil
}

// substitute replaces free occurrences of the keys of m.
func substitute(x Operand, m map[symbol.Index]symbol.Index) (Operand, error) {
	switch v := x.(type) {
	case nil:
		return nil, nil
	case Number, Str, Bool:
		return v, nil
	case *SymbolRef:
		return v.withIndices(mapIndices(v.Indices, m)), nil
	case *Domain:
		return &Domain{indices: mapIndices(v.indices, m)}, nil
	case *Expression:
		l, err := substitute(v.Left, m)
		if err != nil {
			return nil, err
		}
		r, err := substitute(v.Right, m)
		if err != nil {
			return nil, err
		}
		return &Expression{Left: l, Op: v.Op, Right: r}, nil
	case *Call:
		args := make([]Operand, len(v.Args))
		for i, a := range v.Args {
			s, err := substitute(a, m)
			if err != nil {
				return nil, err
			}
			args[i] = s
		}
		return &Call{Name: v.Name, Args: args, scalar: v.scalar}, nil
	case *Operation:
		// Only the free indices pass through; reduced ones are shadowed.
		return v.Reindex(mapIndices(v.free, m))
	default:
		return nil, fmt.Errorf("algebra: unsupported operand type: %T", x)
	}
}

func mapIndices(list []symbol.Index, m map[symbol.Index]symbol.Index) []symbol.Index {
	out := make([]symbol.Index, len(list))
	for i, x := range list {
		if y, ok := m[x]; ok {
			out[i] = y
		} else {
			out[i] = x
		}
	}
	return out
}
