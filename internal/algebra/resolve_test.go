package algebra

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/eqgen/internal/symbol"
	"github.com/roach88/eqgen/internal/testutil"
)

func names(list []symbol.Index) []string { return symbol.Names(list) }

func TestResolve_Scenarios(t *testing.T) {
	t.Run("dot product of shared index creates no alias", func(t *testing.T) {
		f := testutil.NewTransport(t)
		aa := f.Parameter(t, "aa", f.I)
		before := f.Reg.Len()

		c, err := Resolve(f.Gen, MustSym(f.A), MustSym(aa))
		require.NoError(t, err)

		assert.Equal(t, idx(f.I), c.Left)
		assert.Equal(t, idx(f.I), c.Right)
		assert.Equal(t, f.I, c.Sum)
		assert.Equal(t, before, f.Reg.Len())
	})

	t.Run("matrix product without collision", func(t *testing.T) {
		f := testutil.NewTransport(t)
		before := f.Reg.Len()

		c, err := Resolve(f.Gen, MustSym(f.E), MustSym(f.F))
		require.NoError(t, err)

		assert.Equal(t, idx(f.I), c.LeftFree())
		assert.Equal(t, idx(f.J), c.RightFree())
		assert.Equal(t, f.K, c.Sum)
		assert.Equal(t, idx(f.I, f.K), c.Left)
		assert.Equal(t, idx(f.K, f.J), c.Right)
		assert.Equal(t, before, f.Reg.Len())
	})

	t.Run("matrix product with colliding outputs aliases one slot", func(t *testing.T) {
		f := testutil.NewTransport(t)

		c, err := Resolve(f.Gen, MustSym(f.C), MustSym(f.D))
		require.NoError(t, err)

		assert.Equal(t, []string{"AliasOfi_2"}, names(c.LeftFree()))
		assert.Equal(t, idx(f.I), c.RightFree())
		assert.Equal(t, f.J, c.Sum)
		assert.NotEqual(t, c.LeftFree()[0], c.RightFree()[0])
		assert.True(t, symbol.SameBase(c.LeftFree()[0], f.I))
	})
}

func TestResolve_CollidingOutputsAlwaysAlias(t *testing.T) {
	t.Run("generated name taken by a parameter", func(t *testing.T) {
		f := testutil.NewTransport(t)
		f.Parameter(t, "AliasOfi_2")

		c, err := Resolve(f.Gen, MustSym(f.C), MustSym(f.D))
		require.NoError(t, err)

		assert.Equal(t, []string{"AliasOfi_3"}, names(c.LeftFree()))
		assert.True(t, symbol.SameBase(c.LeftFree()[0], f.I))
	})

	t.Run("set name at the length limit", func(t *testing.T) {
		f := testutil.NewTransport(t)
		s := f.Set(t, "s"+strings.Repeat("x", 55))
		pp := f.Parameter(t, "pp", s, s)
		qq := f.Parameter(t, "qq", s, s)

		c, err := Resolve(f.Gen, MustSym(pp), MustSym(qq))
		require.NoError(t, err)

		for _, x := range append(c.Left, c.Right...) {
			assert.True(t, symbol.SameBase(x, s))
			assert.LessOrEqual(t, len(x.Name()), 63)
		}
		assert.NotEqual(t, c.LeftFree()[0], c.RightFree()[0])
	})
}

func TestResolve_Shapes(t *testing.T) {
	f := testutil.NewTransport(t)
	g := f.Parameter(t, "g", f.K, f.I, f.J)
	h := f.Parameter(t, "h", f.K, f.J, f.I)
	p := f.Parameter(t, "p", f.I, f.I)

	tests := []struct {
		name  string
		left  Operand
		right Operand
		wantL []string
		wantR []string
		sum   string
	}{
		{"vector matrix", MustSym(f.A), MustSym(f.C), []string{"i"}, []string{"i", "j"}, "i"},
		{"matrix vector", MustSym(f.C), MustSym(f.B), []string{"i", "j"}, []string{"j"}, "j"},
		{"vector batched", MustSym(f.B), MustSym(h), []string{"j"}, []string{"k", "j", "i"}, "j"},
		{"batched vector", MustSym(g), MustSym(f.B), []string{"k", "i", "j"}, []string{"j"}, "j"},
		{"batched matrices", MustSym(g), MustSym(h), []string{"k", "AliasOfi_2", "j"}, []string{"k", "j", "i"}, "j"},
		{"matrix with batched right", MustSym(f.D), MustSym(g), []string{"AliasOfj_2", "i"}, []string{"k", "i", "j"}, "i"},
		{"square matrices", MustSym(p), MustSym(p), []string{"AliasOfi_2", "AliasOfi_3"}, []string{"AliasOfi_3", "i"}, "AliasOfi_3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Resolve(f.Gen, tt.left, tt.right)
			require.NoError(t, err)
			assert.Equal(t, tt.wantL, names(c.Left))
			assert.Equal(t, tt.wantR, names(c.Right))
			assert.Equal(t, tt.sum, c.Sum.Name())
		})
	}
}

func TestResolve_SquareMatrixAfterVector(t *testing.T) {
	f := testutil.NewTransport(t)
	p := f.Parameter(t, "p", f.I, f.I)

	c, err := Resolve(f.Gen, MustSym(f.A), MustSym(p))
	require.NoError(t, err)

	assert.Equal(t, []string{"AliasOfi_2"}, names(c.Left))
	assert.Equal(t, []string{"AliasOfi_2", "i"}, names(c.Right))
	assert.Equal(t, idx(f.I), c.RightFree())
}

func TestResolve_AvoidsControlledIndices(t *testing.T) {
	f := testutil.NewTransport(t)

	inner, err := Sum(SetRef(f.I), MustSym(f.A))
	require.NoError(t, err)
	left := Mul(MustSym(f.A), inner)

	c, err := Resolve(f.Gen, left, MustSym(f.A))
	require.NoError(t, err)
	assert.Equal(t, "AliasOfi_2", c.Sum.Name())
	assert.NotContains(t, ControlledDomain(left), c.Sum)
}

func TestResolve_NoCollision(t *testing.T) {
	f := testutil.NewTransport(t)
	p := f.Parameter(t, "p", f.I, f.I)
	sumJ, err := Sum(SetRef(f.J), MustSym(f.C))
	require.NoError(t, err)
	nested := Mul(MustSym(f.C), sumJ)

	pairs := []struct {
		name        string
		left, right Operand
	}{
		{"dot", MustSym(f.A), MustSym(f.A)},
		{"dot over controlled", Mul(MustSym(f.A), sumJ), MustSym(f.A)},
		{"matrix", MustSym(f.C), MustSym(f.D)},
		{"square", MustSym(p), MustSym(p)},
		{"vector square", MustSym(f.A), MustSym(p)},
		{"square vector", MustSym(p), MustSym(f.A)},
		{"nested left", nested, MustSym(f.D)},
	}

	for _, tt := range pairs {
		t.Run(tt.name, func(t *testing.T) {
			controlled := union(ControlledDomain(tt.left), ControlledDomain(tt.right))
			c, err := Resolve(f.Gen, tt.left, tt.right)
			require.NoError(t, err)

			slots := append(append(c.LeftFree(), c.RightFree()...), c.Sum)
			for a := range slots {
				for b := a + 1; b < len(slots); b++ {
					assert.NotEqual(t, slots[a], slots[b], "slots %v", names(slots))
				}
				assert.NotContains(t, controlled, slots[a])
			}
			assert.Contains(t, c.Left, c.Sum)
			assert.Contains(t, c.Right, c.Sum)
		})
	}
}

func TestResolve_Deterministic(t *testing.T) {
	build := func() []string {
		f := testutil.NewTransport(t)
		var out []string
		for _, pair := range [][2]Operand{
			{MustSym(f.C), MustSym(f.D)},
			{MustSym(f.C), MustSym(f.D)},
			{MustSym(f.D), MustSym(f.C)},
		} {
			op, err := MatMul(f.Gen, pair[0], pair[1])
			require.NoError(t, err)
			out = append(out, names(FreeDomain(op))...)
			out = append(out, names(op.Reduced())...)
		}
		return out
	}

	first := build()
	assert.Equal(t, first, build())
	assert.Equal(t, []string{"AliasOfi_2", "i", "j", "AliasOfi_2", "i", "j", "AliasOfj_2", "j", "i"}, first)
}

func TestResolve_Errors(t *testing.T) {
	f := testutil.NewTransport(t)
	g := f.Parameter(t, "g", f.K, f.I, f.J)
	q := f.Parameter(t, "q", f.I, f.J, f.I)
	r := f.Parameter(t, "r", f.K, f.K, f.J, f.I)

	tests := []struct {
		name        string
		left, right Operand
		code        ValidationErrorCode
		msg         string
	}{
		{"left scalar", MustSym(f.Z), MustSym(f.A), ErrCodeShapeMismatch, "left side is a scalar"},
		{"right scalar", MustSym(f.A), Number(2), ErrCodeShapeMismatch, "right side is a scalar"},
		{"dot of different sets", MustSym(f.A), MustSym(f.B), ErrCodeShapeMismatch, "Dot product requires same domain"},
		{"matrix inner mismatch", MustSym(f.C), MustSym(f.C), ErrCodeShapeMismatch, "dimensions do not match"},
		{"vector matrix mismatch", MustSym(f.B), MustSym(f.C), ErrCodeShapeMismatch, "dimensions do not match"},
		{"matrix vector mismatch", MustSym(f.C), MustSym(f.A), ErrCodeShapeMismatch, "dimensions do not match"},
		{"batch identity mismatch", MustSym(g), MustSym(q), ErrCodeCardinality, "Batch dimensions do not match"},
		{"batch count mismatch", MustSym(r), MustSym(g), ErrCodeCardinality, "Batch dimensions do not match"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(f.Gen, tt.left, tt.right)
			require.Error(t, err)
			assert.True(t, IsValidationError(err, tt.code), "got %v", err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestMatMul(t *testing.T) {
	f := testutil.NewTransport(t)

	op, err := MatMul(f.Gen, MustSym(f.E), MustSym(f.F))
	require.NoError(t, err)

	assert.Equal(t, ReduceSum, op.Kind)
	assert.Equal(t, idx(f.K), op.Reduced())
	assert.Equal(t, idx(f.I, f.J), FreeDomain(op))

	_, err = MatMul(f.Gen, MustSym(f.A), MustSym(f.B))
	assert.True(t, IsValidationError(err, ErrCodeShapeMismatch))
}
