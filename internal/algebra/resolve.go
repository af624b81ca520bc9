package algebra

import (
	"github.com/roach88/eqgen/internal/symbol"
)

// Contraction is the index assignment for a tensor contraction.
//
// Left and Right are the complete index lists the operands are re-indexed
// with; Sum is the shared index reduced by the contraction and appears in
// both lists.
type Contraction struct {
	Left  []symbol.Index
	Right []symbol.Index
	Sum   symbol.Index
}

// LeftFree returns the left indices that survive the contraction.
func (c Contraction) LeftFree() []symbol.Index { return without(c.Left, c.Sum) }

// RightFree returns the right indices that survive the contraction.
func (c Contraction) RightFree() []symbol.Index { return without(c.Right, c.Sum) }

// Resolve classifies the contraction of left and right by their free
// dimension counts and picks the index lists for both sides.
//
// Supported shapes are dot (1,1), matrix-matrix (2,2), vector-matrix
// (1,2), matrix-vector (2,1), vector with batched tensor (1,>2) and
// (>2,1), and batched matrix products (>=2,>=2). Whenever the natural
// index for a slot collides with another output slot, a batch dimension,
// or an index already bound inside either operand, gen supplies the next
// alias in that index's family.
func Resolve(gen *symbol.AliasGenerator, left, right Operand) (Contraction, error) {
	l := FreeDomain(left)
	r := FreeDomain(right)
	controlled := union(ControlledDomain(left), ControlledDomain(right))
	res := resolver{gen: gen, controlled: controlled}

	if len(l) == 0 {
		return Contraction{}, newValidationError(ErrCodeShapeMismatch,
			"Matrix multiplication requires at least 1 domain, left side is a scalar")
	}
	if len(r) == 0 {
		return Contraction{}, newValidationError(ErrCodeShapeMismatch,
			"Matrix multiplication requires at least 1 domain, right side is a scalar")
	}

	switch {
	case len(l) == 1 && len(r) == 1:
		return res.dot(l, r)
	case len(l) == 2 && len(r) == 2:
		return res.batched(l, r)
	case len(l) == 1 && len(r) == 2:
		return res.vectorMatrix(l, r)
	case len(l) == 2 && len(r) == 1:
		return res.matrixVector(l, r)
	case len(l) == 1 && len(r) > 2:
		return res.vectorBatched(l, r)
	case len(l) > 2 && len(r) == 1:
		return res.batchedVector(l, r)
	default:
		return res.batched(l, r)
	}
}

type resolver struct {
	gen        *symbol.AliasGenerator
	controlled []symbol.Index
}

// advance steps x through its alias family until it is not in any of the
// avoid lists nor controlled.
func (res resolver) advance(x symbol.Index, avoid ...[]symbol.Index) (symbol.Index, error) {
	for res.collides(x, avoid) {
		next, err := res.gen.Next(x)
		if err != nil {
			return symbol.Index{}, err
		}
		x = next
	}
	return x, nil
}

func (res resolver) collides(x symbol.Index, avoid [][]symbol.Index) bool {
	if symbol.Contains(res.controlled, x) {
		return true
	}
	for _, list := range avoid {
		if symbol.Contains(list, x) {
			return true
		}
	}
	return false
}

func (res resolver) dot(l, r []symbol.Index) (Contraction, error) {
	if !symbol.SameBase(l[0], r[0]) {
		return Contraction{}, newShapeError("Dot product requires same domain", l, r)
	}
	sum, err := res.advance(l[0])
	if err != nil {
		return Contraction{}, err
	}
	return Contraction{Left: []symbol.Index{sum}, Right: []symbol.Index{sum}, Sum: sum}, nil
}

func (res resolver) vectorMatrix(l, r []symbol.Index) (Contraction, error) {
	if !symbol.SameBase(l[0], r[0]) {
		return Contraction{}, newShapeError("Matrix multiplication dimensions do not match", l, r)
	}
	sum, out := r[0], r[1]
	if symbol.SameBase(r[0], r[1]) {
		sum, out = r[1], r[0]
	}
	out, err := res.advance(out)
	if err != nil {
		return Contraction{}, err
	}
	sum, err = res.advance(sum, []symbol.Index{out, r[1]})
	if err != nil {
		return Contraction{}, err
	}
	return Contraction{
		Left:  []symbol.Index{sum},
		Right: []symbol.Index{sum, out},
		Sum:   sum,
	}, nil
}

func (res resolver) matrixVector(l, r []symbol.Index) (Contraction, error) {
	if !symbol.SameBase(l[1], r[0]) {
		return Contraction{}, newShapeError("Matrix multiplication dimensions do not match", l, r)
	}
	out, err := res.advance(l[0])
	if err != nil {
		return Contraction{}, err
	}
	sum, err := res.advance(l[1], []symbol.Index{out})
	if err != nil {
		return Contraction{}, err
	}
	return Contraction{
		Left:  []symbol.Index{out, sum},
		Right: []symbol.Index{sum},
		Sum:   sum,
	}, nil
}

func (res resolver) vectorBatched(l, r []symbol.Index) (Contraction, error) {
	n := len(r)
	if !symbol.SameBase(l[0], r[n-2]) {
		return Contraction{}, newShapeError("Matrix multiplication dimensions do not match", l, r)
	}
	batch := r[:n-2]
	sum, err := res.advance(l[0], batch, []symbol.Index{r[n-1]})
	if err != nil {
		return Contraction{}, err
	}
	right := append(append([]symbol.Index(nil), batch...), sum, r[n-1])
	return Contraction{Left: []symbol.Index{sum}, Right: right, Sum: sum}, nil
}

func (res resolver) batchedVector(l, r []symbol.Index) (Contraction, error) {
	n := len(l)
	if !symbol.SameBase(l[n-1], r[0]) {
		return Contraction{}, newShapeError("Matrix multiplication dimensions do not match", l, r)
	}
	sum, err := res.advance(l[n-1], l[:n-1])
	if err != nil {
		return Contraction{}, err
	}
	left := append(append([]symbol.Index(nil), l[:n-1]...), sum)
	return Contraction{Left: left, Right: []symbol.Index{sum}, Sum: sum}, nil
}

// batched handles (2,2) and the general case with leading batch
// dimensions on either side.
func (res resolver) batched(l, r []symbol.Index) (Contraction, error) {
	nl, nr := len(l), len(r)
	if !symbol.SameBase(l[nl-1], r[nr-2]) {
		return Contraction{}, newShapeError("Matrix multiplication dimensions do not match", l, r)
	}

	lb, rb := l[:nl-2], r[:nr-2]
	if len(lb) > 0 && len(rb) > 0 {
		if len(lb) != len(rb) {
			e := newShapeError("Batch dimensions do not match", l, r)
			e.Code = ErrCodeCardinality
			return Contraction{}, e
		}
		for k := range lb {
			if lb[k] != rb[k] {
				e := newShapeError("Batch dimensions do not match", l, r)
				e.Code = ErrCodeCardinality
				return Contraction{}, e
			}
		}
	}

	rowOut, err := res.advance(l[nl-2], []symbol.Index{r[nr-1]}, rb)
	if err != nil {
		return Contraction{}, err
	}
	colOut, err := res.advance(r[nr-1], []symbol.Index{rowOut}, lb)
	if err != nil {
		return Contraction{}, err
	}

	sum, err := res.advance(l[nl-1], l[:nl-1], rb, []symbol.Index{rowOut, colOut})
	if err != nil {
		return Contraction{}, err
	}

	left := append(append([]symbol.Index(nil), lb...), rowOut, sum)
	right := append(append([]symbol.Index(nil), rb...), sum, colOut)
	return Contraction{Left: left, Right: right, Sum: sum}, nil
}

func without(list []symbol.Index, x symbol.Index) []symbol.Index {
	out := make([]symbol.Index, 0, len(list))
	for _, y := range list {
		if y != x {
			out = append(out, y)
		}
	}
	return out
}
