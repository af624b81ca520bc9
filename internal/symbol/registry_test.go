package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_AddSet(t *testing.T) {
	reg := NewRegistry()

	i, err := reg.AddSet("i", nil, []string{"seattle", "san-diego"})
	require.NoError(t, err)

	assert.Equal(t, "i", i.Name())
	assert.False(t, i.IsLabel())
	assert.Equal(t, i.ID(), i.Base(), "a set is its own base")

	e, ok := reg.Get(i.ID())
	require.True(t, ok)
	assert.Equal(t, KindSet, e.Kind)
	assert.Equal(t, []Index{Universe}, e.Domain, "nil domain is the universe")
	assert.Equal(t, []string{"seattle", "san-diego"}, e.Records)
}

func TestRegistry_ZeroIDNeverResolves(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.AddSet("i", nil, nil)
	require.NoError(t, err)

	_, ok := reg.Get(NoID)
	assert.False(t, ok)
	_, ok = reg.Get(ID(99))
	assert.False(t, ok)
}

func TestRegistry_AliasSharesBase(t *testing.T) {
	reg := NewRegistry()
	i, err := reg.AddSet("i", nil, []string{"a", "b"})
	require.NoError(t, err)

	ip, err := reg.AddAlias("ip", i)
	require.NoError(t, err)
	ipp, err := reg.AddAlias("ipp", ip)
	require.NoError(t, err)

	assert.NotEqual(t, i, ip, "alias has its own identity")
	assert.Equal(t, i.Base(), ip.Base())
	assert.Equal(t, i.Base(), ipp.Base(), "alias of alias resolves to the root set")
	assert.True(t, SameBase(i, ipp))

	e, ok := reg.Get(ip.ID())
	require.True(t, ok)
	assert.Equal(t, KindAlias, e.Kind)
	assert.Equal(t, []string{"a", "b"}, e.Records, "alias shares the element domain")
}

func TestRegistry_DuplicateNames(t *testing.T) {
	reg := NewRegistry()
	i, err := reg.AddSet("i", nil, nil)
	require.NoError(t, err)
	j, err := reg.AddSet("j", nil, nil)
	require.NoError(t, err)

	t.Run("same alias twice returns existing", func(t *testing.T) {
		a1, err := reg.AddAlias("ip", i)
		require.NoError(t, err)
		a2, err := reg.AddAlias("ip", i)
		require.NoError(t, err)
		assert.Equal(t, a1, a2)
	})

	t.Run("alias of another base conflicts", func(t *testing.T) {
		_, err := reg.AddAlias("ip", j)
		assert.ErrorIs(t, err, ErrDuplicateName)
	})

	t.Run("set over existing name", func(t *testing.T) {
		_, err := reg.AddSet("i", nil, nil)
		assert.ErrorIs(t, err, ErrDuplicateName)
	})

	t.Run("parameter over alias name", func(t *testing.T) {
		_, err := reg.AddParameter("ip", []Index{i})
		assert.ErrorIs(t, err, ErrDuplicateName)
	})
}

func TestRegistry_InvalidNames(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"leading digit", "1x"},
		{"space", "a b"},
		{"dash", "a-b"},
		{"too long", "a234567890123456789012345678901234567890123456789012345678901234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			_, err := reg.AddSet(tt.input, nil, nil)
			assert.ErrorIs(t, err, ErrInvalidName)
		})
	}
}

func TestRegistry_DomainMustBeIndexable(t *testing.T) {
	reg := NewRegistry()
	i, err := reg.AddSet("i", nil, nil)
	require.NoError(t, err)
	p, err := reg.AddParameter("p", []Index{i})
	require.NoError(t, err)

	bogus := Index{id: p.ID, base: p.ID, text: p.Name}
	_, err = reg.AddParameter("q", []Index{bogus})
	assert.ErrorIs(t, err, ErrNotIndexable)

	_, err = reg.AddAlias("pa", bogus)
	assert.ErrorIs(t, err, ErrNotIndexable)

	_, err = reg.AddAlias("la", Label("x"))
	assert.ErrorIs(t, err, ErrNotIndexable)
}

func TestRegistry_VariableAndEquationTypes(t *testing.T) {
	reg := NewRegistry()
	i, err := reg.AddSet("i", nil, nil)
	require.NoError(t, err)

	x, err := reg.AddVariable("x", "", []Index{i})
	require.NoError(t, err)
	assert.Equal(t, string(VariableFree), x.Type, "empty type defaults to free")

	_, err = reg.AddVariable("y", "fuzzy", nil)
	assert.ErrorIs(t, err, ErrInvalidType)

	eq, err := reg.AddEquation("bal", EquationGeq, []Index{i})
	require.NoError(t, err)
	assert.Equal(t, "geq", eq.Type)
	assert.Equal(t, 1, eq.Dim())

	_, err = reg.AddEquation("bad", "lt", nil)
	assert.ErrorIs(t, err, ErrInvalidType)
}

func TestRegistry_LookupAndResolve(t *testing.T) {
	reg := NewRegistry()
	i, err := reg.AddSet("i", nil, nil)
	require.NoError(t, err)
	_, err = reg.AddParameter("p", []Index{i})
	require.NoError(t, err)

	got, err := reg.Index("i")
	require.NoError(t, err)
	assert.Equal(t, i, got)

	_, err = reg.Index("p")
	assert.ErrorIs(t, err, ErrNotIndexable)

	_, err = reg.Resolve("missing")
	assert.ErrorIs(t, err, ErrUnknownSymbol)

	assert.Equal(t, 2, reg.Len())
	names := []string{}
	for _, e := range reg.Entities() {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"i", "p"}, names)
}

func TestRegistry_ReturnedEntitiesAreCopies(t *testing.T) {
	reg := NewRegistry()
	i, err := reg.AddSet("i", nil, []string{"a"})
	require.NoError(t, err)

	e, _ := reg.Get(i.ID())
	e.Records[0] = "mutated"
	e.Domain[0] = Label("z")

	again, _ := reg.Get(i.ID())
	assert.Equal(t, []string{"a"}, again.Records)
	assert.Equal(t, []Index{Universe}, again.Domain)
}

func TestRegistry_NFCNormalization(t *testing.T) {
	reg := NewRegistry()

	// "é" composed vs "e" + combining acute accent.
	composed := "caf\u00e9"
	decomposed := "cafe\u0301"

	x, err := reg.AddSet("s", nil, []string{decomposed})
	require.NoError(t, err)
	e, _ := reg.Get(x.ID())
	assert.Equal(t, []string{composed}, e.Records)

	assert.Equal(t, Label(composed), Label(decomposed))
}

func TestRegistry_Describe(t *testing.T) {
	reg := NewRegistry()
	i, err := reg.AddSet("i", nil, nil)
	require.NoError(t, err)

	require.NoError(t, reg.Describe(i.ID(), "canning plants"))
	e, _ := reg.Get(i.ID())
	assert.Equal(t, "canning plants", e.Description)

	assert.ErrorIs(t, reg.Describe(ID(42), "x"), ErrUnknownSymbol)
}

func TestIndex_String(t *testing.T) {
	reg := NewRegistry()
	i, err := reg.AddSet("i", nil, nil)
	require.NoError(t, err)

	tests := []struct {
		name string
		idx  Index
		want string
	}{
		{"set", i, "i"},
		{"universe", Universe, "*"},
		{"label", Label("seattle"), `"seattle"`},
		{"label with double quote", Label(`a"b`), `'a"b'`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.idx.String())
		})
	}
}

func TestSameBase(t *testing.T) {
	reg := NewRegistry()
	i, _ := reg.AddSet("i", nil, nil)
	j, _ := reg.AddSet("j", nil, nil)
	ip, _ := reg.AddAlias("ip", i)

	assert.True(t, SameBase(i, i))
	assert.True(t, SameBase(i, ip))
	assert.False(t, SameBase(i, j))
	assert.True(t, SameBase(Label("a"), Label("a")))
	assert.False(t, SameBase(Label("a"), Label("b")))
	assert.False(t, SameBase(i, Label("i")), "label never matches a set")
}
