package algebra

import (
	"math"

	"github.com/roach88/eqgen/internal/symbol"
)

// MatMul contracts left and right over one shared dimension, producing
// sum(k, left(..,k) * right(k,..)). Index lists come from Resolve.
func MatMul(gen *symbol.AliasGenerator, left, right Operand) (*Operation, error) {
	c, err := Resolve(gen, left, right)
	if err != nil {
		return nil, err
	}
	l, err := Reindex(left, c.Left)
	if err != nil {
		return nil, err
	}
	r, err := Reindex(right, c.Right)
	if err != nil {
		return nil, err
	}
	return Sum(SetRef(c.Sum), Mul(l, r))
}

// Trace sums x over the diagonal formed by two of its dimensions.
func Trace(x *SymbolRef, axis1, axis2 int) (*Operation, error) {
	dims := setIndices(x.Indices)
	if len(dims) < 2 {
		return nil, newValidationError(ErrCodeCardinality,
			"Trace requires at least 2 dimensions, %s has %s", x.Name, shape(dims))
	}
	if axis1 < 0 || axis1 >= len(dims) || axis2 < 0 || axis2 >= len(dims) || axis1 == axis2 {
		return nil, newValidationError(ErrCodeUsage,
			"Trace axes %d and %d are invalid for %s%s", axis1, axis2, x.Name, shape(dims))
	}
	if !symbol.SameBase(dims[axis1], dims[axis2]) {
		return nil, newShapeError("Matrix dimensions are not equal", dims[axis1:axis1+1], dims[axis2:axis2+1])
	}

	diag := append([]symbol.Index(nil), dims...)
	diag[axis1] = diag[axis2]
	body, err := Reindex(x, diag)
	if err != nil {
		return nil, err
	}
	return Sum(SetRef(diag[axis2]), body)
}

// Permute returns a view of x whose k-th index is x's dims[k]-th index.
// The view renders in the entity's declared order, so permuting twice
// composes.
func Permute(x *SymbolRef, dims []int) (*SymbolRef, error) {
	if x.self {
		return nil, newValidationError(ErrCodeUsage, "cannot permute set %s", x.Name)
	}
	n := len(x.Indices)
	if len(dims) != n {
		return nil, newValidationError(ErrCodeCardinality,
			"Permute of %s%s needs %d dimensions, got %d", x.Name, shape(x.Indices), n, len(dims))
	}
	seen := make([]bool, n)
	for _, d := range dims {
		if d < 0 || d >= n {
			return nil, newValidationError(ErrCodeUsage, "Permute requires the order of indices from 0 to %d", n-1)
		}
		if seen[d] {
			return nil, newValidationError(ErrCodeUsage, "Permute dimensions must be unique")
		}
		seen[d] = true
	}

	out := x.clone()
	out.perm = make([]int, n)
	for k, d := range dims {
		out.Indices[k] = x.Indices[d]
		if x.perm == nil {
			out.perm[k] = d
		} else {
			out.perm[k] = x.perm[d]
		}
	}
	return out, nil
}

// VectorNorm returns the ord-norm of x over the given dimensions of its
// free domain, or over all of them when dims is empty.
//
// ord 2 is sqrt(sum(sqr(x))), ord 1 is sum(abs(x)); other orders use
// power and rPower. Zero and infinite orders are rejected.
func VectorNorm(x Operand, ord float64, dims ...int) (Operand, error) {
	switch {
	case math.IsInf(ord, 0):
		return nil, newValidationError(ErrCodeNotImplemented, "Infinity norms are not supported")
	case math.IsNaN(ord):
		return nil, newValidationError(ErrCodeUsage, "norm order is not a number")
	case ord == 0:
		return nil, newValidationError(ErrCodeNotImplemented, "0 norm is not supported")
	}

	domain := FreeDomain(x)
	if len(domain) == 0 {
		return nil, newValidationError(ErrCodeCardinality, "vector norm of %s requires at least 1 domain", kindOf(x))
	}
	over := domain
	if len(dims) > 0 {
		over = make([]symbol.Index, 0, len(dims))
		for _, d := range dims {
			if d < 0 || d >= len(domain) {
				return nil, newValidationError(ErrCodeUsage, "dimension %d out of range for %s", d, shape(domain))
			}
			over = append(over, domain[d])
		}
	}
	d, err := NewDomain(over...)
	if err != nil {
		return nil, err
	}

	integral := ord == math.Trunc(ord)
	even := integral && math.Mod(ord, 2) == 0
	switch {
	case ord == 2:
		s, err := Sum(d, Sqr(x))
		if err != nil {
			return nil, err
		}
		return Sqrt(s), nil
	case ord == 1:
		return Sum(d, Abs(x))
	case even:
		s, err := Sum(d, Power(x, int(ord)))
		if err != nil {
			return nil, err
		}
		return RPower(s, Number(1/ord)), nil
	default:
		var term Operand
		if integral {
			term = Power(Abs(x), int(ord))
		} else {
			term = RPower(Abs(x), Number(ord))
		}
		s, err := Sum(d, term)
		if err != nil {
			return nil, err
		}
		return RPower(s, Number(1/ord)), nil
	}
}
