package compiler

import (
	"context"
	"fmt"

	"github.com/roach88/eqgen/internal/model"
	"github.com/roach88/eqgen/internal/symbol"
)

// Declare registers every declaration of m in the session's registry and
// appends its declaration statement. Entities come back in the order they
// were declared.
//
// Sets and aliases are declared first, dependencies before dependents.
// Descriptions are attached before the declaration is emitted so they
// appear in the statement text.
func (m *Model) Declare(ctx context.Context, sess *model.Session) ([]symbol.Entity, error) {
	reg := sess.Registry()
	out := make([]symbol.Entity, 0, len(m.Indexables)+len(m.Parameters)+len(m.Variables)+len(m.Equations))

	for _, d := range m.Decls() {
		id, err := register(reg, d)
		if err != nil {
			return out, fmt.Errorf("%s %s: %w", d.Kind, d.Name, err)
		}
		if d.Description != "" {
			if err := reg.Describe(id, d.Description); err != nil {
				return out, err
			}
		}
		if err := sess.Declare(ctx, id); err != nil {
			return out, fmt.Errorf("%s %s: %w", d.Kind, d.Name, err)
		}
		e, _ := reg.Get(id)
		out = append(out, e)
	}
	return out, nil
}

func register(reg *symbol.Registry, d Decl) (symbol.ID, error) {
	domain, err := resolveDomain(reg, d.Domain)
	if err != nil {
		return symbol.NoID, err
	}

	switch d.Kind {
	case symbol.KindSet:
		x, err := reg.AddSet(d.Name, domain, d.Records)
		return x.ID(), err
	case symbol.KindAlias:
		of, err := reg.Index(d.Of)
		if err != nil {
			return symbol.NoID, err
		}
		x, err := reg.AddAlias(d.Name, of)
		return x.ID(), err
	case symbol.KindParameter:
		e, err := reg.AddParameter(d.Name, domain)
		return e.ID, err
	case symbol.KindVariable:
		e, err := reg.AddVariable(d.Name, symbol.VariableType(d.Type), domain)
		return e.ID, err
	case symbol.KindEquation:
		e, err := reg.AddEquation(d.Name, symbol.EquationType(d.Type), domain)
		return e.ID, err
	default:
		return symbol.NoID, fmt.Errorf("unknown kind %v", d.Kind)
	}
}

func resolveDomain(reg *symbol.Registry, names []string) ([]symbol.Index, error) {
	if len(names) == 0 {
		return nil, nil
	}
	out := make([]symbol.Index, len(names))
	for n, name := range names {
		if name == symbol.Universe.Name() {
			out[n] = symbol.Universe
			continue
		}
		x, err := reg.Index(name)
		if err != nil {
			return nil, err
		}
		out[n] = x
	}
	return out, nil
}
