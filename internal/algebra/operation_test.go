package algebra

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/eqgen/internal/symbol"
	"github.com/roach88/eqgen/internal/testutil"
)

func TestNewOperation_Bindings(t *testing.T) {
	f := testutil.NewTransport(t)

	t.Run("single index", func(t *testing.T) {
		op, err := Sum(SetRef(f.I), MustSym(f.X))
		require.NoError(t, err)

		assert.Equal(t, idx(f.I), op.Reduced())
		assert.Equal(t, []Binding{{BodyPos: 0, ReducedPos: 0}}, op.Bindings())
		assert.Equal(t, idx(f.J), FreeDomain(op))
		assert.Equal(t, idx(f.I), ControlledDomain(op))
	})

	t.Run("domain order differs from body order", func(t *testing.T) {
		dji, err := NewDomain(f.J, f.I)
		require.NoError(t, err)
		op, err := Product(dji, MustSym(f.X))
		require.NoError(t, err)

		assert.Equal(t, []Binding{{BodyPos: 0, ReducedPos: 1}, {BodyPos: 1, ReducedPos: 0}}, op.Bindings())
		assert.Empty(t, FreeDomain(op))
	})

	t.Run("repeated body index binds every slot", func(t *testing.T) {
		p := f.Parameter(t, "p", f.I, f.I)
		op, err := Smax(SetRef(f.I), MustSym(p))
		require.NoError(t, err)

		assert.Equal(t, []Binding{{BodyPos: 0, ReducedPos: 0}, {BodyPos: 1, ReducedPos: 0}}, op.Bindings())
		assert.Empty(t, FreeDomain(op))
	})

	t.Run("index absent from body", func(t *testing.T) {
		op, err := Smin(SetRef(f.K), MustSym(f.A))
		require.NoError(t, err)

		assert.Empty(t, op.Bindings())
		assert.Equal(t, idx(f.I), FreeDomain(op))
		assert.Equal(t, idx(f.K), ControlledDomain(op))
	})

	t.Run("nested reductions propagate control", func(t *testing.T) {
		inner, err := Sum(SetRef(f.J), MustSym(f.C))
		require.NoError(t, err)
		outer, err := Sum(SetRef(f.I), Mul(inner, MustSym(f.A)))
		require.NoError(t, err)

		assert.Empty(t, FreeDomain(outer))
		assert.Equal(t, idx(f.I, f.J), ControlledDomain(outer))
	})

	t.Run("conditioned domain", func(t *testing.T) {
		op, err := Sum(Where(SetRef(f.J), Gt(MustSym(f.B), Number(0))), MustSym(f.X))
		require.NoError(t, err)

		assert.Equal(t, idx(f.J), op.Reduced())
		assert.Equal(t, idx(f.I), FreeDomain(op))
	})
}

func TestNewOperation_ConditionIndicesStayFree(t *testing.T) {
	f := testutil.NewTransport(t)

	op, err := Sum(Where(SetRef(f.I), MustSym(f.C)), MustSym(f.A))
	require.NoError(t, err)
	assert.Equal(t, idx(f.J), FreeDomain(op), "j only appears in the filter")
	assert.Equal(t, idx(f.I), ControlledDomain(op))

	nested, err := Sum(Where(Where(SetRef(f.I), MustSym(f.C)), MustSym(f.E)), MustSym(f.A))
	require.NoError(t, err)
	assert.Equal(t, idx(f.J, f.K), FreeDomain(nested))

	covered, err := Sum(Where(SetRef(f.I), MustSym(f.C)), MustSym(f.X))
	require.NoError(t, err)
	assert.Equal(t, idx(f.J), FreeDomain(covered), "indices are reported once")

	got, err := op.Reindex(idx(f.K))
	require.NoError(t, err)
	assert.Equal(t, idx(f.K), FreeDomain(got))
	cond := got.Over.(*Expression).Right.(*SymbolRef)
	assert.Equal(t, idx(f.I, f.K), cond.Indices)
	assert.Equal(t, idx(f.I), got.Body.(*SymbolRef).Indices)
}

func TestNewOperation_Errors(t *testing.T) {
	f := testutil.NewTransport(t)

	_, err := NewOperation(ReduceSum, nil, MustSym(f.A))
	require.Error(t, err)
	assert.True(t, IsValidationError(err, ErrCodeCardinality))
	assert.Contains(t, err.Error(), "Operation requires at least one index")

	_, err = Sum(SetRef(f.I), nil)
	assert.True(t, IsValidationError(err, ErrCodeUsage))

	_, err = Sum(MustSym(f.A), MustSym(f.A))
	assert.True(t, IsDomainError(err))

	_, err = Sum(SetRef(f.I).Attribute("ord"), MustSym(f.A))
	assert.True(t, IsDomainError(err))
}

func TestOperation_ReindexRoundTrip(t *testing.T) {
	f := testutil.NewTransport(t)

	op, err := Sum(SetRef(f.I), MustSym(f.X))
	require.NoError(t, err)

	got, err := op.Reindex(idx(f.K))
	require.NoError(t, err)

	assert.Equal(t, idx(f.K), FreeDomain(got))
	assert.Equal(t, idx(f.I), got.Reduced())
	assert.Equal(t, op.Bindings(), got.Bindings())

	body, ok := got.Body.(*SymbolRef)
	require.True(t, ok)
	assert.Equal(t, idx(f.I, f.K), body.Indices, "reduction index stays in its slot")

	orig := op.Body.(*SymbolRef)
	assert.Equal(t, idx(f.I, f.J), orig.Indices, "original is not modified")
	assert.Equal(t, idx(f.J), FreeDomain(op))
}

func TestOperation_ReindexReinsertsMiddleSlot(t *testing.T) {
	f := testutil.NewTransport(t)
	g := f.Parameter(t, "g", f.K, f.I, f.J)

	op, err := Sum(SetRef(f.I), MustSym(g))
	require.NoError(t, err)
	assert.Equal(t, idx(f.K, f.J), FreeDomain(op))

	kp, err := f.Gen.Next(f.K)
	require.NoError(t, err)
	got, err := op.Reindex(idx(kp, f.K))
	require.NoError(t, err)

	body := got.Body.(*SymbolRef)
	assert.Equal(t, idx(kp, f.I, f.K), body.Indices)
}

func TestOperation_ReindexConditionedDomain(t *testing.T) {
	f := testutil.NewTransport(t)

	over := Where(SetRef(f.I), Gt(MustSym(f.C), Number(0)))
	op, err := Sum(over, MustSym(f.X))
	require.NoError(t, err)

	got, err := op.Reindex(idx(f.K))
	require.NoError(t, err)

	cond := got.Over.(*Expression).Right.(*Expression)
	assert.Equal(t, idx(f.I, f.K), cond.Left.(*SymbolRef).Indices)
	assert.Equal(t, idx(f.I, f.K), got.Body.(*SymbolRef).Indices)
}

func TestOperation_ReindexErrors(t *testing.T) {
	f := testutil.NewTransport(t)

	op, err := Sum(SetRef(f.I), MustSym(f.X))
	require.NoError(t, err)

	_, err = op.Reindex(idx(f.I))
	require.Error(t, err)
	assert.True(t, IsValidationError(err, ErrCodeUsage))
	assert.Contains(t, err.Error(), "captured")

	_, err = op.Reindex(idx(f.J, f.K))
	assert.True(t, IsValidationError(err, ErrCodeCardinality))

	_, err = op.Reindex(idx(f.J))
	assert.NoError(t, err, "identity reindex is allowed")
}

func TestReindex(t *testing.T) {
	f := testutil.NewTransport(t)
	p := f.Parameter(t, "p", f.I, f.I)

	t.Run("labels keep their slot", func(t *testing.T) {
		got, err := Reindex(MustSym(f.C, symbol.Label("seattle"), f.J), idx(f.K))
		require.NoError(t, err)
		assert.Equal(t, idx(symbol.Label("seattle"), f.K), got.(*SymbolRef).Indices)
	})

	t.Run("repeated index rebinds slot by slot", func(t *testing.T) {
		got, err := Reindex(MustSym(p), idx(f.I, f.J))
		require.NoError(t, err)
		assert.Equal(t, idx(f.I, f.J), got.(*SymbolRef).Indices)
	})

	t.Run("expression substitutes simultaneously", func(t *testing.T) {
		got, err := Reindex(Add(MustSym(f.A), MustSym(f.B)), idx(f.J, f.I))
		require.NoError(t, err)
		e := got.(*Expression)
		assert.Equal(t, idx(f.J), e.Left.(*SymbolRef).Indices)
		assert.Equal(t, idx(f.I), e.Right.(*SymbolRef).Indices)
	})

	t.Run("bare set becomes new set", func(t *testing.T) {
		got, err := Reindex(SetRef(f.I), idx(f.K))
		require.NoError(t, err)
		ref := got.(*SymbolRef)
		assert.True(t, ref.IsSet())
		assert.Equal(t, "k", ref.Name)
	})

	t.Run("bound index inside nested reduction is shadowed", func(t *testing.T) {
		inner, err := Sum(SetRef(f.I), MustSym(f.A))
		require.NoError(t, err)
		got, err := Reindex(Mul(MustSym(f.A), inner), idx(f.K))
		require.NoError(t, err)

		e := got.(*Expression)
		assert.Equal(t, idx(f.K), e.Left.(*SymbolRef).Indices)
		assert.Equal(t, idx(f.I), e.Right.(*Operation).Body.(*SymbolRef).Indices)
	})

	t.Run("call", func(t *testing.T) {
		got, err := Reindex(Sqr(MustSym(f.B)), idx(f.K))
		require.NoError(t, err)
		assert.Equal(t, idx(f.K), FreeDomain(got))
	})
}

func TestReindex_Errors(t *testing.T) {
	f := testutil.NewTransport(t)

	_, err := Reindex(MustSym(f.C), idx(f.I))
	assert.True(t, IsValidationError(err, ErrCodeCardinality))

	_, err = Reindex(Add(MustSym(f.A), MustSym(f.B)), idx(f.I))
	assert.True(t, IsValidationError(err, ErrCodeCardinality))

	_, err = Reindex(MustSym(f.A), idx(symbol.Index{}))
	assert.True(t, IsValidationError(err, ErrCodeUsage))
}
