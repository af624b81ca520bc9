package symbol

import "strings"

// ID is the interned identity of a registered entity.
// The zero value NoID never refers to an entity.
type ID int32

// NoID is the ID of literal labels and unregistered references.
const NoID ID = 0

// Kind classifies registered entities.
type Kind int

const (
	KindSet Kind = iota + 1
	KindAlias
	KindParameter
	KindVariable
	KindEquation
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindSet:
		return "set"
	case KindAlias:
		return "alias"
	case KindParameter:
		return "parameter"
	case KindVariable:
		return "variable"
	case KindEquation:
		return "equation"
	default:
		return "unknown"
	}
}

// IsIndexable reports whether entities of this kind can be used as a
// dimension of a domain.
func (k Kind) IsIndexable() bool {
	return k == KindSet || k == KindAlias
}

// VariableType is the declared type of a variable.
type VariableType string

const (
	VariableFree     VariableType = "free"
	VariablePositive VariableType = "positive"
	VariableNegative VariableType = "negative"
	VariableBinary   VariableType = "binary"
	VariableInteger  VariableType = "integer"
	VariableSOS1     VariableType = "sos1"
	VariableSOS2     VariableType = "sos2"
	VariableSemiCont VariableType = "semicont"
	VariableSemiInt  VariableType = "semiint"
)

// ValidVariableTypes defines allowed variable types.
var ValidVariableTypes = map[VariableType]bool{
	VariableFree:     true,
	VariablePositive: true,
	VariableNegative: true,
	VariableBinary:   true,
	VariableInteger:  true,
	VariableSOS1:     true,
	VariableSOS2:     true,
	VariableSemiCont: true,
	VariableSemiInt:  true,
}

// EquationType is the declared relation type of an equation.
type EquationType string

const (
	EquationEq         EquationType = "eq"
	EquationLeq        EquationType = "leq"
	EquationGeq        EquationType = "geq"
	EquationNonbinding EquationType = "nonbinding"
)

// ValidEquationTypes defines allowed equation types.
var ValidEquationTypes = map[EquationType]bool{
	EquationEq:         true,
	EquationLeq:        true,
	EquationGeq:        true,
	EquationNonbinding: true,
}

// Entity is a registered symbol. Entities returned by the registry are
// copies; mutating them has no effect on the registry.
type Entity struct {
	ID          ID
	Name        string
	Kind        Kind
	AliasOf     ID      // aliased entity, aliases only
	Base        ID      // root set of an alias chain; ID itself for sets
	Domain      []Index // declared dimensions
	Records     []string
	Type        string // VariableType or EquationType
	Description string
}

// Dim returns the number of declared dimensions.
func (e Entity) Dim() int {
	return len(e.Domain)
}

// Index returns the Index referring to this entity.
// Only meaningful for sets and aliases.
func (e Entity) Index() Index {
	return Index{id: e.ID, base: e.Base, text: e.Name}
}

// Index identifies one dimension: a set, an alias, or a literal label.
//
// Index is comparable; == is identity (same set or alias, or same label).
// Use SameBase to compare modulo aliasing.
type Index struct {
	id   ID
	base ID
	text string
}

// Label returns a literal-label Index. The universe label "*" renders
// unquoted, all other labels render quoted.
func Label(s string) Index {
	return Index{text: normalize(s)}
}

// Universe is the "*" label used for sets declared over all elements.
var Universe = Label("*")

// ID returns the referenced entity, or NoID for labels.
func (x Index) ID() ID { return x.id }

// Base returns the base set of the referenced entity, or NoID for labels.
func (x Index) Base() ID { return x.base }

// Name returns the set name or the raw label text.
func (x Index) Name() string { return x.text }

// IsLabel reports whether x is a literal label.
func (x Index) IsLabel() bool { return x.id == NoID }

// IsZero reports whether x is the zero Index.
func (x Index) IsZero() bool { return x.id == NoID && x.text == "" }

// String renders x the way it appears inside a domain list.
func (x Index) String() string {
	if !x.IsLabel() || x.text == "*" {
		return x.text
	}
	return Quote(x.text)
}

// Quote wraps s in double quotes, or in single quotes when s itself
// contains a double quote. The destination format has no escapes.
func Quote(s string) string {
	if strings.Contains(s, `"`) {
		return "'" + s + "'"
	}
	return `"` + s + `"`
}

// SameBase reports whether a and b denote the same underlying set,
// ignoring alias wrapping. Labels are same-base only when identical.
func SameBase(a, b Index) bool {
	if a.IsLabel() || b.IsLabel() {
		return a == b
	}
	return a.base == b.base
}

// Contains reports whether list holds x by identity.
func Contains(list []Index, x Index) bool {
	for _, y := range list {
		if y == x {
			return true
		}
	}
	return false
}

// Names returns the rendered form of each index, for error messages.
func Names(list []Index) []string {
	out := make([]string, len(list))
	for i, x := range list {
		out[i] = x.String()
	}
	return out
}
