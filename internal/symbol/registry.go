package symbol

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/text/unicode/norm"
)

// Sentinel errors. Every message is prefixed with "symbol:"; callers match
// with errors.Is.
var (
	// ErrInvalidName is returned for empty names or names that are not
	// identifiers (letter first, then letters, digits or underscores).
	ErrInvalidName = errors.New("symbol: invalid name")

	// ErrDuplicateName is returned when a name is already registered with an
	// incompatible definition.
	ErrDuplicateName = errors.New("symbol: name already registered")

	// ErrUnknownSymbol is returned when a name or ID is not registered.
	ErrUnknownSymbol = errors.New("symbol: unknown symbol")

	// ErrNotIndexable is returned when a non-set entity is used where a set
	// or alias is required.
	ErrNotIndexable = errors.New("symbol: not a set or alias")

	// ErrInvalidType is returned for unknown variable or equation types.
	ErrInvalidType = errors.New("symbol: invalid type")
)

// maxNameLength is the longest identifier the destination language accepts.
const maxNameLength = 63

// Registry owns every named entity of a modeling session.
//
// Entities live in an arena indexed by ID; index 0 is unused so that the
// zero ID never resolves. Registry is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	entities []Entity
	byName   map[string]ID
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entities: make([]Entity, 1),
		byName:   make(map[string]ID),
	}
}

// AddSet registers a set. A nil domain declares a one-dimensional set over
// the universe.
func (r *Registry) AddSet(name string, domain []Index, records []string) (Index, error) {
	if len(domain) == 0 {
		domain = []Index{Universe}
	}
	e, err := r.declare(Entity{
		Name:    name,
		Kind:    KindSet,
		Domain:  domain,
		Records: normalizeAll(records),
	})
	if err != nil {
		return Index{}, err
	}
	return e.Index(), nil
}

// AddAlias registers name as an alias of the set or alias at of.
// Registering the same alias twice returns the existing alias.
func (r *Registry) AddAlias(name string, of Index) (Index, error) {
	if of.IsLabel() {
		return Index{}, fmt.Errorf("%w: alias %q of label %s", ErrNotIndexable, name, of)
	}
	e, err := r.declare(Entity{
		Name:    name,
		Kind:    KindAlias,
		AliasOf: of.ID(),
	})
	if err != nil {
		return Index{}, err
	}
	return e.Index(), nil
}

// AddParameter registers a parameter over domain.
func (r *Registry) AddParameter(name string, domain []Index) (Entity, error) {
	return r.declare(Entity{Name: name, Kind: KindParameter, Domain: domain})
}

// AddVariable registers a variable of the given type over domain.
// An empty type declares a free variable.
func (r *Registry) AddVariable(name string, typ VariableType, domain []Index) (Entity, error) {
	if typ == "" {
		typ = VariableFree
	}
	if !ValidVariableTypes[typ] {
		return Entity{}, fmt.Errorf("%w: variable %q has type %q", ErrInvalidType, name, typ)
	}
	return r.declare(Entity{Name: name, Kind: KindVariable, Domain: domain, Type: string(typ)})
}

// AddEquation registers an equation over domain. An empty type declares an
// equation whose relation is given by its definition.
func (r *Registry) AddEquation(name string, typ EquationType, domain []Index) (Entity, error) {
	if typ != "" && !ValidEquationTypes[typ] {
		return Entity{}, fmt.Errorf("%w: equation %q has type %q", ErrInvalidType, name, typ)
	}
	return r.declare(Entity{Name: name, Kind: KindEquation, Domain: domain, Type: string(typ)})
}

// Describe sets the human-readable description of a registered entity.
func (r *Registry) Describe(id ID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.validID(id) {
		return fmt.Errorf("%w: id %d", ErrUnknownSymbol, id)
	}
	r.entities[id].Description = text
	return nil
}

// declare validates and stores e, filling ID, Base and alias domains.
func (r *Registry) declare(e Entity) (Entity, error) {
	e.Name = normalize(e.Name)
	if err := validateName(e.Name); err != nil {
		return Entity{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if e.Kind == KindAlias {
		if !r.validID(e.AliasOf) {
			return Entity{}, fmt.Errorf("%w: alias %q targets id %d", ErrUnknownSymbol, e.Name, e.AliasOf)
		}
		target := r.entities[e.AliasOf]
		if !target.Kind.IsIndexable() {
			return Entity{}, fmt.Errorf("%w: alias %q targets %s %q", ErrNotIndexable, e.Name, target.Kind, target.Name)
		}
		e.Base = target.Base
		e.Domain = cloneIndices(target.Domain)
		e.Records = append([]string(nil), target.Records...)
	}

	if existing, ok := r.byName[e.Name]; ok {
		prev := r.entities[existing]
		if prev.Kind == KindAlias && e.Kind == KindAlias && prev.Base == e.Base {
			return cloneEntity(prev), nil
		}
		return Entity{}, fmt.Errorf("%w: %q is already a %s", ErrDuplicateName, e.Name, prev.Kind)
	}

	for _, x := range e.Domain {
		if x.IsLabel() {
			continue
		}
		if !r.validID(x.ID()) || !r.entities[x.ID()].Kind.IsIndexable() {
			return Entity{}, fmt.Errorf("%w: %q in domain of %q", ErrNotIndexable, x.Name(), e.Name)
		}
	}

	e.ID = ID(len(r.entities))
	if e.Kind == KindSet {
		e.Base = e.ID
	}
	e.Domain = cloneIndices(e.Domain)
	r.entities = append(r.entities, e)
	r.byName[e.Name] = e.ID

	return cloneEntity(e), nil
}

// Get returns the entity with the given ID.
func (r *Registry) Get(id ID) (Entity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.validID(id) {
		return Entity{}, false
	}
	return cloneEntity(r.entities[id]), true
}

// Lookup returns the entity registered under name.
func (r *Registry) Lookup(name string) (Entity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[normalize(name)]
	if !ok {
		return Entity{}, false
	}
	return cloneEntity(r.entities[id]), true
}

// Resolve returns the entity registered under name or ErrUnknownSymbol.
func (r *Registry) Resolve(name string) (Entity, error) {
	e, ok := r.Lookup(name)
	if !ok {
		return Entity{}, fmt.Errorf("%w: %q", ErrUnknownSymbol, name)
	}
	return e, nil
}

// Index returns the Index of the set or alias registered under name.
func (r *Registry) Index(name string) (Index, error) {
	e, err := r.Resolve(name)
	if err != nil {
		return Index{}, err
	}
	if !e.Kind.IsIndexable() {
		return Index{}, fmt.Errorf("%w: %q is a %s", ErrNotIndexable, e.Name, e.Kind)
	}
	return e.Index(), nil
}

// Entities returns all entities in registration order.
func (r *Registry) Entities() []Entity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entity, 0, len(r.entities)-1)
	for _, e := range r.entities[1:] {
		out = append(out, cloneEntity(e))
	}
	return out
}

// Len returns the number of registered entities.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entities) - 1
}

func (r *Registry) validID(id ID) bool {
	return id > NoID && int(id) < len(r.entities)
}

func validateName(name string) error {
	if name == "" || len(name) > maxNameLength {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	for i, c := range name {
		letter := c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		digit := c >= '0' && c <= '9'
		if i == 0 && !letter {
			return fmt.Errorf("%w: %q must start with a letter", ErrInvalidName, name)
		}
		if !letter && !digit {
			return fmt.Errorf("%w: %q contains %q", ErrInvalidName, name, c)
		}
	}
	return nil
}

func normalize(s string) string {
	return norm.NFC.String(s)
}

func normalizeAll(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = normalize(s)
	}
	return out
}

func cloneIndices(in []Index) []Index {
	if in == nil {
		return nil
	}
	return append([]Index(nil), in...)
}

func cloneEntity(e Entity) Entity {
	e.Domain = cloneIndices(e.Domain)
	e.Records = append([]string(nil), e.Records...)
	return e
}
