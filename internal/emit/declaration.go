package emit

import (
	"fmt"
	"strings"

	"github.com/roach88/eqgen/internal/symbol"
)

// Declaration renders the declaration statement of a registered entity.
//
//	Set i(*) "plants" / "seattle", "san-diego" /;
//	Alias(i,AliasOfi_2);
//	Parameter c(i,j);
//	Positive Variable x(i,j);
//	Equation supply(i);
//
// Aliases need their target's name, which lookup resolves.
func Declaration(e symbol.Entity, lookup func(symbol.ID) (symbol.Entity, bool)) (string, error) {
	switch e.Kind {
	case symbol.KindSet:
		var b strings.Builder
		b.WriteString("Set ")
		b.WriteString(e.Name)
		b.WriteString(domainSuffix(e.Domain))
		writeDescription(&b, e.Description)
		if len(e.Records) > 0 {
			quoted := make([]string, len(e.Records))
			for i, rec := range e.Records {
				quoted[i] = symbol.Quote(rec)
			}
			b.WriteString(" / ")
			b.WriteString(strings.Join(quoted, ", "))
			b.WriteString(" /")
		}
		b.WriteByte(';')
		return b.String(), nil

	case symbol.KindAlias:
		target, ok := lookup(e.AliasOf)
		if !ok {
			return "", fmt.Errorf("alias %q: %w", e.Name, symbol.ErrUnknownSymbol)
		}
		return "Alias(" + target.Name + "," + e.Name + ");", nil

	case symbol.KindParameter:
		return declare("Parameter", e), nil

	case symbol.KindVariable:
		keyword := "Variable"
		if prefix := variablePrefix(symbol.VariableType(e.Type)); prefix != "" {
			keyword = prefix + " Variable"
		}
		return declare(keyword, e), nil

	case symbol.KindEquation:
		return declare("Equation", e), nil

	default:
		return "", fmt.Errorf("cannot declare %s %q", e.Kind, e.Name)
	}
}

func declare(keyword string, e symbol.Entity) string {
	var b strings.Builder
	b.WriteString(keyword)
	b.WriteByte(' ')
	b.WriteString(e.Name)
	b.WriteString(domainSuffix(e.Domain))
	writeDescription(&b, e.Description)
	b.WriteByte(';')
	return b.String()
}

func domainSuffix(domain []symbol.Index) string {
	if len(domain) == 0 {
		return ""
	}
	return "(" + strings.Join(symbol.Names(domain), ",") + ")"
}

func writeDescription(b *strings.Builder, text string) {
	if text == "" {
		return
	}
	b.WriteByte(' ')
	b.WriteString(symbol.Quote(text))
}

func variablePrefix(t symbol.VariableType) string {
	switch t {
	case symbol.VariablePositive:
		return "Positive"
	case symbol.VariableNegative:
		return "Negative"
	case symbol.VariableBinary:
		return "Binary"
	case symbol.VariableInteger:
		return "Integer"
	case symbol.VariableSOS1:
		return "SOS1"
	case symbol.VariableSOS2:
		return "SOS2"
	case symbol.VariableSemiCont:
		return "SemiCont"
	case symbol.VariableSemiInt:
		return "SemiInt"
	default:
		return ""
	}
}
