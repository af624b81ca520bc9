package algebra

import (
	"sort"

	"github.com/roach88/eqgen/internal/symbol"
)

// Walk visits x and its descendants depth-first, left operands before
// right ones. A reduction's domain is visited before its body. Returning
// false from fn skips the children of the current node.
func Walk(x Operand, fn func(Operand) bool) {
	if x == nil || !fn(x) {
		return
	}
	switch v := x.(type) {
	case *Expression:
		Walk(v.Left, fn)
		Walk(v.Right, fn)
	case *Operation:
		Walk(v.Over, fn)
		Walk(v.Body, fn)
	case *Call:
		for _, a := range v.Args {
			Walk(a, fn)
		}
	}
}

// Variables returns the sorted, de-duplicated names of the variables
// referenced anywhere in x.
func Variables(x Operand) []string {
	seen := make(map[string]bool)
	Walk(x, func(n Operand) bool {
		if ref, ok := n.(*SymbolRef); ok && ref.Kind == symbol.KindVariable {
			seen[ref.Name] = true
		}
		return true
	})

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Symbols returns the IDs of every entity referenced in x, in order of
// first appearance. Set references include the sets used as indices.
func Symbols(x Operand) []symbol.ID {
	var out []symbol.ID
	seen := make(map[symbol.ID]bool)
	add := func(id symbol.ID) {
		if id != symbol.NoID && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	Walk(x, func(n Operand) bool {
		switch v := n.(type) {
		case *SymbolRef:
			add(v.ID)
			for _, i := range v.Indices {
				add(i.ID())
			}
		case *Domain:
			for _, i := range v.indices {
				add(i.ID())
			}
		}
		return true
	})
	return out
}
