package model

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/roach88/eqgen/internal/algebra"
	"github.com/roach88/eqgen/internal/config"
	"github.com/roach88/eqgen/internal/emit"
	"github.com/roach88/eqgen/internal/symbol"
)

// IDGenerator generates session IDs.
// Implemented by UUIDv7Generator (production) and
// testutil.FixedSessionGenerator (tests).
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 session IDs.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
// Panics if UUID generation fails.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Session is one modeling session: a registry, its alias generator, a
// renderer and the ordered statement log.
//
// Thread-safety: all methods are safe for concurrent use. Appends are
// serialized, so seq order and log order always agree.
type Session struct {
	id       string
	cfg      config.Config
	reg      *symbol.Registry
	gen      *symbol.AliasGenerator
	renderer *emit.Renderer
	sink     Sink
	clock    Clock
	logger   *slog.Logger

	mu       sync.Mutex
	log      []Statement
	declared map[symbol.ID]bool

	// pending holds entities the generator created since the last append.
	// It has its own lock because the generator calls back while holding
	// its mutex, possibly from inside an append.
	pendingMu sync.Mutex
	pending   []symbol.ID
}

// Option configures a Session.
type Option func(*sessionOptions)

type sessionOptions struct {
	cfg    config.Config
	sink   Sink
	logger *slog.Logger
	idGen  IDGenerator
	clock  Clock
}

// WithConfig sets the codegen configuration. Default: config.Default().
func WithConfig(cfg config.Config) Option {
	return func(o *sessionOptions) { o.cfg = cfg }
}

// WithSink mirrors every appended statement to sink.
func WithSink(sink Sink) Option {
	return func(o *sessionOptions) { o.sink = sink }
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *sessionOptions) { o.logger = l }
}

// WithIDGenerator sets the session ID generator. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(o *sessionOptions) { o.idGen = g }
}

// WithClock sets the sequence clock. Use NewClockAt to continue a log
// that already holds statements.
func WithClock(c Clock) Option {
	return func(o *sessionOptions) { o.clock = c }
}

// NewSession creates an empty session.
func NewSession(opts ...Option) *Session {
	o := sessionOptions{
		cfg:    config.Default(),
		logger: slog.Default(),
		idGen:  UUIDv7Generator{},
		clock:  NewClock(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Session{
		id:       o.idGen.Generate(),
		cfg:      o.cfg,
		reg:      symbol.NewRegistry(),
		renderer: emit.NewRenderer(o.cfg.Codegen),
		sink:     o.sink,
		clock:    o.clock,
		logger:   o.logger,
		declared: make(map[symbol.ID]bool),
	}
	s.gen = symbol.NewAliasGenerator(s.reg,
		symbol.WithLogger(o.logger),
		symbol.WithOnCreate(s.enqueue),
	)
	return s
}

// ID returns the session ID.
func (s *Session) ID() string { return s.id }

// Registry returns the session's symbol registry.
func (s *Session) Registry() *symbol.Registry { return s.reg }

// Generator returns the session's alias generator. Aliases it creates are
// declared in the log before the next statement.
func (s *Session) Generator() *symbol.AliasGenerator { return s.gen }

// Renderer returns the session's renderer.
func (s *Session) Renderer() *emit.Renderer { return s.renderer }

// Config returns the session configuration.
func (s *Session) Config() config.Config { return s.cfg }

func (s *Session) enqueue(e symbol.Entity) {
	s.pendingMu.Lock()
	s.pending = append(s.pending, e.ID)
	s.pendingMu.Unlock()
}

func (s *Session) takePending() []symbol.ID {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	out := s.pending
	s.pending = nil
	return out
}

// Set registers and declares a set. records may be empty.
func (s *Session) Set(ctx context.Context, name string, domain []symbol.Index, records ...string) (symbol.Index, error) {
	x, err := s.reg.AddSet(name, domain, records)
	if err != nil {
		return symbol.Index{}, err
	}
	if err := s.Declare(ctx, x.ID()); err != nil {
		return symbol.Index{}, err
	}
	return x, nil
}

// Alias registers and declares an alias of of.
func (s *Session) Alias(ctx context.Context, name string, of symbol.Index) (symbol.Index, error) {
	x, err := s.reg.AddAlias(name, of)
	if err != nil {
		return symbol.Index{}, err
	}
	if err := s.Declare(ctx, x.ID()); err != nil {
		return symbol.Index{}, err
	}
	return x, nil
}

// Parameter registers and declares a parameter.
func (s *Session) Parameter(ctx context.Context, name string, domain ...symbol.Index) (symbol.Entity, error) {
	e, err := s.reg.AddParameter(name, domain)
	if err != nil {
		return symbol.Entity{}, err
	}
	return e, s.Declare(ctx, e.ID)
}

// Variable registers and declares a variable.
func (s *Session) Variable(ctx context.Context, name string, typ symbol.VariableType, domain ...symbol.Index) (symbol.Entity, error) {
	e, err := s.reg.AddVariable(name, typ, domain)
	if err != nil {
		return symbol.Entity{}, err
	}
	return e, s.Declare(ctx, e.ID)
}

// Equation registers and declares an equation.
func (s *Session) Equation(ctx context.Context, name string, typ symbol.EquationType, domain ...symbol.Index) (symbol.Entity, error) {
	e, err := s.reg.AddEquation(name, typ, domain)
	if err != nil {
		return symbol.Entity{}, err
	}
	return e, s.Declare(ctx, e.ID)
}

// Declare appends the declaration of a registered entity, after the
// declarations of the sets it depends on. Entities already declared are
// skipped.
func (s *Session) Declare(ctx context.Context, id symbol.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.flushLocked(ctx); err != nil {
		return err
	}
	return s.declareLocked(ctx, id)
}

// Assign appends "lhs = rhs;".
func (s *Session) Assign(ctx context.Context, lhs, rhs algebra.Operand) (Statement, error) {
	stmt, err := algebra.Assign(lhs, rhs)
	if err != nil {
		return Statement{}, err
	}
	return s.Append(ctx, stmt)
}

// Define appends the definition "eq .. rel;".
func (s *Session) Define(ctx context.Context, eq, rel algebra.Operand) (Statement, error) {
	stmt, err := algebra.Define(eq, rel)
	if err != nil {
		return Statement{}, err
	}
	return s.Append(ctx, stmt)
}

// Append renders an assignment or definition built with algebra.Assign or
// algebra.Define and appends it. Referenced entities that have not been
// declared yet are declared first.
func (s *Session) Append(ctx context.Context, stmt *algebra.Expression) (Statement, error) {
	var kind StatementKind
	switch {
	case stmt == nil:
		return Statement{}, fmt.Errorf("append: nil statement")
	case stmt.Op == algebra.OpAssign:
		kind = KindAssignment
	case stmt.Op == algebra.OpDefine:
		kind = KindDefinition
	default:
		return Statement{}, fmt.Errorf("append: %s is not a statement", stmt.Op)
	}

	text, err := s.renderer.Render(stmt)
	if err != nil {
		return Statement{}, fmt.Errorf("append %s: %w", kind, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.flushLocked(ctx); err != nil {
		return Statement{}, err
	}

	ids := algebra.Symbols(stmt)
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if err := s.declareLocked(ctx, id); err != nil {
			return Statement{}, err
		}
		if e, ok := s.reg.Get(id); ok {
			names = append(names, e.Name)
		}
	}
	return s.appendLocked(ctx, kind, text, names)
}

// AddStatement appends raw statement text verbatim. A terminating
// semicolon is added when missing.
func (s *Session) AddStatement(ctx context.Context, text string) (Statement, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Statement{}, fmt.Errorf("add statement: empty text")
	}
	if !strings.HasSuffix(text, ";") {
		text += ";"
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.flushLocked(ctx); err != nil {
		return Statement{}, err
	}
	return s.appendLocked(ctx, KindRaw, text, nil)
}

// Statements returns a copy of the log in seq order.
func (s *Session) Statements() []Statement {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Statement, len(s.log))
	copy(out, s.log)
	return out
}

// Program returns the log as program text, one statement per line.
func (s *Session) Program() string {
	return Program(s.Statements())
}

// Program joins statement texts into program text, one statement per
// line with a trailing newline. An empty log yields "".
func Program(stmts []Statement) string {
	if len(stmts) == 0 {
		return ""
	}
	var b strings.Builder
	for _, st := range stmts {
		b.WriteString(st.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

// flushLocked declares every entity the generator created since the last
// append, in creation order.
func (s *Session) flushLocked(ctx context.Context) error {
	for _, id := range s.takePending() {
		if err := s.declareLocked(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) declareLocked(ctx context.Context, id symbol.ID) error {
	if s.declared[id] {
		return nil
	}
	e, ok := s.reg.Get(id)
	if !ok {
		return fmt.Errorf("declare: %w: id %d", symbol.ErrUnknownSymbol, id)
	}

	if e.Kind == symbol.KindAlias {
		if err := s.declareLocked(ctx, e.AliasOf); err != nil {
			return err
		}
	} else {
		for _, x := range e.Domain {
			if x.IsLabel() || x.ID() == id {
				continue
			}
			if err := s.declareLocked(ctx, x.ID()); err != nil {
				return err
			}
		}
	}

	text, err := emit.Declaration(e, s.reg.Get)
	if err != nil {
		return fmt.Errorf("declare %q: %w", e.Name, err)
	}
	if _, err := s.appendLocked(ctx, KindDeclaration, text, []string{e.Name}); err != nil {
		return err
	}
	s.declared[id] = true
	return nil
}

// appendLocked assigns seq and ID, writes to the sink, then to the log.
// A sink failure leaves the log and the clock unchanged, so seq has no gaps.
func (s *Session) appendLocked(ctx context.Context, kind StatementKind, text string, symbols []string) (Statement, error) {
	seq := s.clock.Current() + 1
	id, err := StatementID(s.id, seq, kind, text)
	if err != nil {
		return Statement{}, err
	}
	if symbols == nil {
		symbols = []string{}
	}
	st := Statement{
		ID:        id,
		SessionID: s.id,
		Seq:       seq,
		Kind:      kind,
		Text:      text,
		Symbols:   symbols,
	}

	if s.sink != nil {
		if err := s.sink.AppendStatement(ctx, st); err != nil {
			return Statement{}, fmt.Errorf("sink: %w", err)
		}
	}
	s.clock.Next()
	s.log = append(s.log, st)

	s.logger.Debug("statement appended",
		"session", s.id,
		"seq", seq,
		"kind", string(kind),
	)
	return st, nil
}
