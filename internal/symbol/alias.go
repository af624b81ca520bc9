package symbol

import (
	"fmt"
	"hash/fnv"
	"log/slog"
	"strconv"
	"strings"
	"sync"
)

// Name prefixes of generated families.
const (
	AliasPrefix = "AliasOf"
	DensePrefix = "DenseDim"
)

// AliasGenerator allocates fresh aliases in a registry.
//
// Allocation for a family is a single critical section: the lookup of the
// candidate name and its registration happen under one lock, so concurrent
// tree construction observes the same sequence of names as serial
// construction.
type AliasGenerator struct {
	mu       sync.Mutex
	reg      *Registry
	logger   *slog.Logger
	onCreate func(Entity)
	issued   map[string]int // family prefix -> highest generation handed out
}

// GeneratorOption configures an AliasGenerator.
type GeneratorOption func(*AliasGenerator)

// WithLogger sets the logger used for debug records.
func WithLogger(l *slog.Logger) GeneratorOption {
	return func(g *AliasGenerator) { g.logger = l }
}

// WithOnCreate registers a hook called after a set or alias is created by
// the generator. The hook runs while the generator lock is held and must
// not call back into the generator.
func WithOnCreate(fn func(Entity)) GeneratorOption {
	return func(g *AliasGenerator) { g.onCreate = fn }
}

// NewAliasGenerator creates a generator writing into reg.
func NewAliasGenerator(reg *Registry, opts ...GeneratorOption) *AliasGenerator {
	g := &AliasGenerator{
		reg:    reg,
		logger: slog.Default(),
		issued: make(map[string]int),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Registry returns the registry the generator writes into.
func (g *AliasGenerator) Registry() *Registry {
	return g.reg
}

// Next returns the alias following x in its family.
//
// For a plain set i the family is AliasOfi and the first alias is
// AliasOfi_2 (i itself counts as generation 1). For a generated name
// P_n the result is P_(n+1). A candidate already registered as an alias of
// the same base set is returned unchanged. A candidate taken by anything
// else is skipped and the next generation tried, so Next only fails for
// labels. Families whose names would exceed the identifier length limit
// use a shortened prefix (see familyPrefix).
func (g *AliasGenerator) Next(x Index) (Index, error) {
	if x.IsLabel() {
		return Index{}, fmt.Errorf("%w: cannot alias label %s", ErrNotIndexable, x)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	prefix, gen := family(x.Name())
	prefix = familyPrefix(prefix)

	for n := gen + 1; ; n++ {
		name := prefix + "_" + strconv.Itoa(n)

		if e, ok := g.reg.Lookup(name); ok {
			if e.Kind.IsIndexable() && e.Base == x.Base() {
				g.record(prefix, n)
				return e.Index(), nil
			}
			g.logger.Debug("alias name taken",
				"name", name,
				"kind", e.Kind.String(),
			)
			continue
		}

		alias, err := g.reg.AddAlias(name, x)
		if err != nil {
			return Index{}, err
		}
		g.record(prefix, n)

		g.logger.Debug("alias created",
			"name", name,
			"of", x.Name(),
			"generation", n,
		)
		if g.onCreate != nil {
			if e, ok := g.reg.Get(alias.ID()); ok {
				g.onCreate(e)
			}
		}
		return alias, nil
	}
}

// Generation returns the highest generation handed out for a family
// prefix, e.g. Generation("AliasOfi"). Zero means none.
func (g *AliasGenerator) Generation(prefix string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.issued[prefix]
}

// Dense returns one index per requested size, each ranging over
// 0..n-1. Sizes that repeat get successive aliases of the same dense set,
// so Dense(3, 3) yields DenseDim3_1 and DenseDim3_2.
func (g *AliasGenerator) Dense(sizes ...int) ([]Index, error) {
	out := make([]Index, 0, len(sizes))
	for _, n := range sizes {
		if n <= 0 {
			return nil, fmt.Errorf("symbol: dense dimension size must be positive, got %d", n)
		}

		x, err := g.denseSet(n)
		if err != nil {
			return nil, err
		}
		for Contains(out, x) {
			if x, err = g.Next(x); err != nil {
				return nil, err
			}
		}
		out = append(out, x)
	}
	return out, nil
}

// denseSet returns DenseDim<n>_1, creating it on first use.
func (g *AliasGenerator) denseSet(n int) (Index, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	name := fmt.Sprintf("%s%d_1", DensePrefix, n)
	if e, ok := g.reg.Lookup(name); ok {
		if !e.Kind.IsIndexable() {
			return Index{}, fmt.Errorf("%w: %q is a %s", ErrDuplicateName, name, e.Kind)
		}
		return e.Index(), nil
	}

	records := make([]string, n)
	for i := range records {
		records[i] = strconv.Itoa(i)
	}
	x, err := g.reg.AddSet(name, nil, records)
	if err != nil {
		return Index{}, err
	}
	g.record(DensePrefix+strconv.Itoa(n), 1)

	if g.onCreate != nil {
		if e, ok := g.reg.Get(x.ID()); ok {
			g.onCreate(e)
		}
	}
	return x, nil
}

func (g *AliasGenerator) record(prefix string, gen int) {
	if gen > g.issued[prefix] {
		g.issued[prefix] = gen
	}
}

// maxGenerationDigits is the room familyPrefix leaves for "_<n>".
const maxGenerationDigits = 6

// familyPrefix returns prefix unchanged when every generation name up to
// maxGenerationDigits digits fits in an identifier. Longer prefixes are cut
// and tagged with a hash of the full prefix, e.g.
// AliasOfvery_long..._h1f3a9c2e. The result has the fixed length
// maxNameLength-1-maxGenerationDigits, so family(familyPrefix(p)+"_n")
// gives back the same prefix.
func familyPrefix(prefix string) string {
	limit := maxNameLength - 1 - maxGenerationDigits
	if len(prefix) <= limit {
		return prefix
	}
	h := fnv.New32a()
	h.Write([]byte(prefix))
	tag := fmt.Sprintf("_h%08x", h.Sum32())
	return prefix[:limit-len(tag)] + tag
}

// family splits a name into its generated-family prefix and generation.
// Names outside the generated families start a new AliasOf<name> family
// at generation 1.
func family(name string) (string, int) {
	if strings.HasPrefix(name, DensePrefix) || strings.HasPrefix(name, AliasPrefix) {
		if cut := strings.LastIndexByte(name, '_'); cut > 0 {
			if n, err := strconv.Atoi(name[cut+1:]); err == nil && n > 0 {
				return name[:cut], n
			}
		}
	}
	return AliasPrefix + name, 1
}
