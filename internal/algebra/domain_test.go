package algebra

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/eqgen/internal/symbol"
	"github.com/roach88/eqgen/internal/testutil"
)

func idx(list ...symbol.Index) []symbol.Index { return list }

func TestToIndexList(t *testing.T) {
	f := testutil.NewTransport(t)
	tp := f.Set(t, "t", "t1", "t2")
	tt, err := f.Reg.AddSet("tt", []symbol.Index{tp}, []string{"t1"})
	require.NoError(t, err)
	ttEntity, _ := f.Reg.Get(tt.ID())
	dij, err := NewDomain(f.I, f.J)
	require.NoError(t, err)

	tests := []struct {
		name string
		in   Operand
		want []symbol.Index
	}{
		{"bare set", SetRef(f.I), idx(f.I)},
		{"subset over its domain", MustSym(ttEntity, tp), idx(tp)},
		{"explicit domain", dij, idx(f.I, f.J)},
		{"conditioned set", Where(SetRef(f.J), Gt(MustSym(f.B), Number(0))), idx(f.J)},
		{"conditioned domain", Where(dij, MustSym(f.C)), idx(f.I, f.J)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToIndexList(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToIndexList_Errors(t *testing.T) {
	f := testutil.NewTransport(t)
	tp := f.Set(t, "t", "t1")
	tt, err := f.Reg.AddSet("tt", []symbol.Index{tp}, nil)
	require.NoError(t, err)
	ttEntity, _ := f.Reg.Get(tt.ID())

	tests := []struct {
		name string
		in   Operand
	}{
		{"parameter", MustSym(f.A)},
		{"set attribute", SetRef(f.I).Attribute("ord")},
		{"arithmetic", Add(SetRef(f.I), Number(1))},
		{"literal", Number(3)},
		{"only labels", MustSym(ttEntity, symbol.Label("t1"))},
		{"nil", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToIndexList(tt.in)
			require.Error(t, err)
			assert.True(t, IsDomainError(err), "got %v", err)
		})
	}
}

func TestNewDomain(t *testing.T) {
	f := testutil.NewTransport(t)

	d, err := NewDomain(f.J, f.I)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Len())
	assert.Equal(t, idx(f.J, f.I), d.Indices(), "order is kept")

	got := d.Indices()
	got[0] = f.K
	assert.Equal(t, idx(f.J, f.I), d.Indices(), "Indices returns a copy")

	_, err = NewDomain()
	assert.True(t, IsDomainError(err))

	_, err = NewDomain(f.I, symbol.Index{})
	assert.True(t, IsDomainError(err))
}

func TestFreeDomain(t *testing.T) {
	f := testutil.NewTransport(t)
	p := f.Parameter(t, "p", f.I, f.I)

	sumJ, err := Sum(SetRef(f.J), MustSym(f.C))
	require.NoError(t, err)

	tests := []struct {
		name string
		in   Operand
		want []symbol.Index
	}{
		{"reference", MustSym(f.C), idx(f.I, f.J)},
		{"labels are not free", MustSym(f.C, symbol.Label("seattle"), f.J), idx(f.J)},
		{"repeated index kept on reference", MustSym(p), idx(f.I, f.I)},
		{"binary union in order", Add(MustSym(f.B), MustSym(f.C)), idx(f.J, f.I)},
		{"binary dedups repeats", Mul(MustSym(p), MustSym(f.A)), idx(f.I)},
		{"condition keeps left domain", Where(MustSym(f.A), Gt(MustSym(f.B), Number(0))), idx(f.I)},
		{"reduction drops bound index", sumJ, idx(f.I)},
		{"call unions arguments", Max(MustSym(f.A), MustSym(f.B)), idx(f.I, f.J)},
		{"card is scalar", Card(f.J), nil},
		{"ord is indexed", Ord(f.I), idx(f.I)},
		{"literal", Number(1), nil},
		{"scalar variable", MustSym(f.Z), idx()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FreeDomain(tt.in)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFreeDomain_Statement(t *testing.T) {
	f := testutil.NewTransport(t)
	sumJ, err := Sum(SetRef(f.J), MustSym(f.X))
	require.NoError(t, err)
	def, err := Define(MustSym(f.Supply), Le(sumJ, MustSym(f.A)))
	require.NoError(t, err)

	assert.Equal(t, idx(f.I), FreeDomain(def))
}

func TestControlledDomain(t *testing.T) {
	f := testutil.NewTransport(t)

	sumI, err := Sum(SetRef(f.I), MustSym(f.A))
	require.NoError(t, err)
	sumJ, err := Sum(SetRef(f.J), MustSym(f.B))
	require.NoError(t, err)
	inner, err := Sum(SetRef(f.J), MustSym(f.C))
	require.NoError(t, err)
	outer, err := Sum(SetRef(f.I), inner)
	require.NoError(t, err)

	assert.Equal(t, idx(f.I, f.J), ControlledDomain(Add(sumI, sumJ)))
	assert.Equal(t, idx(f.I, f.J), ControlledDomain(outer))
	assert.Equal(t, idx(f.J), ControlledDomain(Sqrt(inner)))
	assert.Empty(t, ControlledDomain(MustSym(f.C)))
}

func TestSym(t *testing.T) {
	f := testutil.NewTransport(t)

	ref, err := Sym(f.C, f.J, f.I)
	require.NoError(t, err)
	assert.Equal(t, idx(f.J, f.I), ref.Indices)
	assert.False(t, ref.IsSet())

	set, err := Sym(f.Reg.Entities()[0])
	require.NoError(t, err)
	assert.True(t, set.IsSet())
	assert.Equal(t, idx(f.I), set.Indices)

	_, err = Sym(f.C, f.I)
	assert.True(t, IsValidationError(err, ErrCodeCardinality))

	_, err = Sym(f.C, f.I, symbol.Index{})
	assert.True(t, IsValidationError(err, ErrCodeUsage))

	_, err = Sym(symbol.Entity{Name: "ghost"})
	assert.True(t, IsValidationError(err, ErrCodeUsage))

	assert.Panics(t, func() { MustSym(f.A, f.I, f.J) })
}

func TestSymbolRef_CopiesDomain(t *testing.T) {
	f := testutil.NewTransport(t)
	list := idx(f.I, f.J)

	ref := MustSym(f.C, list...)
	list[0] = f.K
	assert.Equal(t, idx(f.I, f.J), ref.Indices)

	level := ref.Attribute("l")
	level.Indices[0] = f.K
	assert.Equal(t, idx(f.I, f.J), ref.Indices)
	assert.Empty(t, ref.Attr)
}
