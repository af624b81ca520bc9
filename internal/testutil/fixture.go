package testutil

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/eqgen/internal/symbol"
)

// Transport is a registry populated with the classic transportation model:
// plants i, markets j, and an auxiliary set k.
type Transport struct {
	Reg *symbol.Registry
	Gen *symbol.AliasGenerator

	I, J, K symbol.Index

	A symbol.Entity // capacity a(i)
	B symbol.Entity // demand b(j)
	C symbol.Entity // cost c(i,j)
	D symbol.Entity // d(j,i)
	E symbol.Entity // e(i,k)
	F symbol.Entity // f(k,j)

	X symbol.Entity // positive variable x(i,j)
	Y symbol.Entity // free variable y(j)
	Z symbol.Entity // free scalar variable z

	Supply symbol.Entity // equation supply(i)
	Demand symbol.Entity // equation demand(j)
	Cost   symbol.Entity // scalar equation cost
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewTransport builds a fresh Transport fixture with its own alias
// generator, so alias names start over for every test.
func NewTransport(t testing.TB) *Transport {
	t.Helper()

	reg := symbol.NewRegistry()
	f := &Transport{
		Reg: reg,
		Gen: symbol.NewAliasGenerator(reg, symbol.WithLogger(DiscardLogger())),
	}

	var err error
	f.I, err = reg.AddSet("i", nil, []string{"seattle", "san-diego"})
	require.NoError(t, err)
	f.J, err = reg.AddSet("j", nil, []string{"new-york", "chicago", "topeka"})
	require.NoError(t, err)
	f.K, err = reg.AddSet("k", nil, []string{"k1", "k2"})
	require.NoError(t, err)

	param := func(name string, domain ...symbol.Index) symbol.Entity {
		e, err := reg.AddParameter(name, domain)
		require.NoError(t, err)
		return e
	}
	f.A = param("a", f.I)
	f.B = param("b", f.J)
	f.C = param("c", f.I, f.J)
	f.D = param("d", f.J, f.I)
	f.E = param("e", f.I, f.K)
	f.F = param("f", f.K, f.J)

	f.X, err = reg.AddVariable("x", symbol.VariablePositive, []symbol.Index{f.I, f.J})
	require.NoError(t, err)
	f.Y, err = reg.AddVariable("y", symbol.VariableFree, []symbol.Index{f.J})
	require.NoError(t, err)
	f.Z, err = reg.AddVariable("z", "", nil)
	require.NoError(t, err)

	f.Supply, err = reg.AddEquation("supply", "", []symbol.Index{f.I})
	require.NoError(t, err)
	f.Demand, err = reg.AddEquation("demand", "", []symbol.Index{f.J})
	require.NoError(t, err)
	f.Cost, err = reg.AddEquation("cost", "", nil)
	require.NoError(t, err)

	return f
}

// Set registers an extra set and returns its index.
func (f *Transport) Set(t testing.TB, name string, records ...string) symbol.Index {
	t.Helper()
	x, err := f.Reg.AddSet(name, nil, records)
	require.NoError(t, err)
	return x
}

// Parameter registers an extra parameter over domain.
func (f *Transport) Parameter(t testing.TB, name string, domain ...symbol.Index) symbol.Entity {
	t.Helper()
	e, err := f.Reg.AddParameter(name, domain)
	require.NoError(t, err)
	return e
}
