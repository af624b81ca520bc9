package algebra

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/eqgen/internal/symbol"
	"github.com/roach88/eqgen/internal/testutil"
)

func TestTrace(t *testing.T) {
	f := testutil.NewTransport(t)
	ip, err := f.Gen.Next(f.I)
	require.NoError(t, err)
	p := f.Parameter(t, "p", f.I, ip)

	op, err := Trace(MustSym(p), 0, 1)
	require.NoError(t, err)

	assert.Equal(t, idx(ip), op.Reduced())
	assert.Equal(t, idx(ip, ip), op.Body.(*SymbolRef).Indices)
	assert.Empty(t, FreeDomain(op))

	g := f.Parameter(t, "g", f.K, f.I, f.I)
	op, err = Trace(MustSym(g), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, idx(f.K), FreeDomain(op))
}

func TestTrace_Errors(t *testing.T) {
	f := testutil.NewTransport(t)

	_, err := Trace(MustSym(f.A), 0, 1)
	assert.True(t, IsValidationError(err, ErrCodeCardinality))

	_, err = Trace(MustSym(f.C), 0, 1)
	require.Error(t, err)
	assert.True(t, IsValidationError(err, ErrCodeShapeMismatch))
	assert.Contains(t, err.Error(), "Matrix dimensions are not equal")

	_, err = Trace(MustSym(f.C), 0, 0)
	assert.True(t, IsValidationError(err, ErrCodeUsage))

	_, err = Trace(MustSym(f.C), 0, 2)
	assert.True(t, IsValidationError(err, ErrCodeUsage))
}

func TestPermute(t *testing.T) {
	f := testutil.NewTransport(t)
	g := f.Parameter(t, "g", f.K, f.I, f.J)

	c := MustSym(f.C)
	swapped, err := Permute(c, []int{1, 0})
	require.NoError(t, err)
	assert.Equal(t, idx(f.J, f.I), swapped.Indices)
	assert.Equal(t, idx(f.I, f.J), swapped.StorageIndices())
	assert.Equal(t, idx(f.I, f.J), c.Indices, "input is not modified")

	back, err := Permute(swapped, []int{1, 0})
	require.NoError(t, err)
	assert.Equal(t, idx(f.I, f.J), back.Indices)
	assert.Equal(t, idx(f.I, f.J), back.StorageIndices())

	rot, err := Permute(MustSym(g), []int{2, 0, 1})
	require.NoError(t, err)
	assert.Equal(t, idx(f.J, f.K, f.I), rot.Indices)
	assert.Equal(t, idx(f.K, f.I, f.J), rot.StorageIndices())

	twice, err := Permute(rot, []int{2, 0, 1})
	require.NoError(t, err)
	assert.Equal(t, idx(f.I, f.J, f.K), twice.Indices)
	assert.Equal(t, idx(f.K, f.I, f.J), twice.StorageIndices())
}

func TestPermute_ThenReindex(t *testing.T) {
	f := testutil.NewTransport(t)

	view, err := Permute(MustSym(f.C), []int{1, 0})
	require.NoError(t, err)

	got, err := Reindex(view, idx(f.K, f.I))
	require.NoError(t, err)
	ref := got.(*SymbolRef)
	assert.Equal(t, idx(f.K, f.I), ref.Indices)
	assert.Equal(t, idx(f.I, f.K), ref.StorageIndices())
}

func TestPermute_Errors(t *testing.T) {
	f := testutil.NewTransport(t)
	c := MustSym(f.C)

	tests := []struct {
		name string
		x    *SymbolRef
		dims []int
		code ValidationErrorCode
	}{
		{"set", SetRef(f.I), []int{0}, ErrCodeUsage},
		{"too few", c, []int{0}, ErrCodeCardinality},
		{"duplicate", c, []int{1, 1}, ErrCodeUsage},
		{"out of range", c, []int{0, 2}, ErrCodeUsage},
		{"negative", c, []int{-1, 0}, ErrCodeUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Permute(tt.x, tt.dims)
			assert.True(t, IsValidationError(err, tt.code), "got %v", err)
		})
	}
}

func TestVectorNorm(t *testing.T) {
	f := testutil.NewTransport(t)
	a := MustSym(f.A)

	t.Run("euclidean", func(t *testing.T) {
		got, err := VectorNorm(a, 2)
		require.NoError(t, err)
		call := got.(*Call)
		assert.Equal(t, "sqrt", call.Name)
		sum := call.Args[0].(*Operation)
		assert.Equal(t, ReduceSum, sum.Kind)
		assert.Equal(t, "sqr", sum.Body.(*Call).Name)
		assert.Empty(t, FreeDomain(got))
	})

	t.Run("manhattan", func(t *testing.T) {
		got, err := VectorNorm(a, 1)
		require.NoError(t, err)
		assert.Equal(t, "abs", got.(*Operation).Body.(*Call).Name)
	})

	t.Run("even order skips abs", func(t *testing.T) {
		got, err := VectorNorm(a, 4)
		require.NoError(t, err)
		call := got.(*Call)
		assert.Equal(t, "rPower", call.Name)
		assert.Equal(t, Number(0.25), call.Args[1])
		power := call.Args[0].(*Operation).Body.(*Call)
		assert.Equal(t, "power", power.Name)
		assert.Equal(t, a, power.Args[0])
		assert.Equal(t, Number(4), power.Args[1])
	})

	t.Run("odd order uses abs", func(t *testing.T) {
		got, err := VectorNorm(a, 3)
		require.NoError(t, err)
		power := got.(*Call).Args[0].(*Operation).Body.(*Call)
		assert.Equal(t, "power", power.Name)
		assert.Equal(t, "abs", power.Args[0].(*Call).Name)
	})

	t.Run("fractional order", func(t *testing.T) {
		got, err := VectorNorm(a, 1.5)
		require.NoError(t, err)
		term := got.(*Call).Args[0].(*Operation).Body.(*Call)
		assert.Equal(t, "rPower", term.Name)
		assert.Equal(t, Number(1.5), term.Args[1])
	})

	t.Run("selected dimensions", func(t *testing.T) {
		got, err := VectorNorm(MustSym(f.C), 2, 1)
		require.NoError(t, err)
		assert.Equal(t, idx(f.I), FreeDomain(got))
	})
}

func TestVectorNorm_Errors(t *testing.T) {
	f := testutil.NewTransport(t)
	a := MustSym(f.A)

	tests := []struct {
		name string
		x    Operand
		ord  float64
		dims []int
		code ValidationErrorCode
	}{
		{"infinity", a, math.Inf(1), nil, ErrCodeNotImplemented},
		{"negative infinity", a, math.Inf(-1), nil, ErrCodeNotImplemented},
		{"zero", a, 0, nil, ErrCodeNotImplemented},
		{"nan", a, math.NaN(), nil, ErrCodeUsage},
		{"scalar", MustSym(f.Z), 2, nil, ErrCodeCardinality},
		{"dimension out of range", a, 2, []int{1}, ErrCodeUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := VectorNorm(tt.x, tt.ord, tt.dims...)
			assert.True(t, IsValidationError(err, tt.code), "got %v", err)
		})
	}
}

func TestValidationError(t *testing.T) {
	err := newShapeError("Dot product requires same domain", nil, nil)
	assert.Equal(t, "SHAPE_MISMATCH: Dot product requires same domain: left (), right ()", err.Error())
	assert.True(t, IsValidationError(err, ""))
	assert.False(t, IsValidationError(err, ErrCodeUsage))
	assert.False(t, IsDomainError(err))

	var de error = &DomainError{Message: "empty"}
	assert.Equal(t, "domain: empty", de.Error())
	assert.True(t, IsDomainError(de))
	assert.False(t, IsValidationError(de, ""))
}

func TestShapeNamesIndices(t *testing.T) {
	f := testutil.NewTransport(t)
	assert.Equal(t, `(i,"seattle")`, shape([]symbol.Index{f.I, symbol.Label("seattle")}))
}
