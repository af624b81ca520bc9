package harness

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/roach88/eqgen/internal/algebra"
	"github.com/roach88/eqgen/internal/compiler"
	"github.com/roach88/eqgen/internal/config"
	"github.com/roach88/eqgen/internal/model"
	"github.com/roach88/eqgen/internal/store"
	"github.com/roach88/eqgen/internal/testutil"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Statements is the log as read back from the store.
	Statements []model.Statement `json:"statements"`

	// Program is the replayed program text.
	Program string `json:"program"`

	// Errors contains assertion failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:       true,
		Statements: []model.Statement{},
		Errors:     []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Harness executes one scenario against a session backed by a store.
type Harness struct {
	store   *store.Store
	session *model.Session
	build   *builder
	logger  *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Deterministic helpers ensure reproducible results.
//
// Execution flow:
// 1. Create fresh in-memory database and load the optional config
// 2. Compile the CUE model and declare it into a new session
// 3. Append flow steps through the session, persisting to the store
// 4. Replay and verify the stored log, then evaluate assertions
//
// A returned error means the scenario could not be executed; failed
// assertions are reported in the Result.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	return RunWithLogger(ctx, scenario, testutil.DiscardLogger())
}

// RunWithLogger is Run with an explicit logger for the session and harness.
func RunWithLogger(ctx context.Context, scenario *Scenario, logger *slog.Logger) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	cfg := config.Default()
	if scenario.Config != "" {
		if cfg, err = config.Load(scenario.Config); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	m, err := compileModel(scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to compile model: %w", err)
	}

	sessionID := scenario.SessionID
	if sessionID == "" {
		sessionID = scenario.Name
	}
	sess := model.NewSession(
		model.WithConfig(cfg),
		model.WithSink(st),
		model.WithLogger(logger),
		model.WithIDGenerator(testutil.NewFixedSessionGenerator(sessionID)),
		model.WithClock(testutil.NewDeterministicClock()),
	)

	h := &Harness{
		store:   st,
		session: sess,
		build:   &builder{reg: sess.Registry(), gen: sess.Generator()},
		logger:  logger,
	}

	if _, err := m.Declare(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to declare model: %w", err)
	}

	if err := h.executeFlow(ctx, scenario.Flow); err != nil {
		return nil, fmt.Errorf("failed to execute flow: %w", err)
	}

	result := NewResult()
	if result.Statements, err = st.ReadSession(ctx, sess.ID()); err != nil {
		return nil, fmt.Errorf("failed to read statement log: %w", err)
	}
	if result.Program, err = st.ReplaySession(ctx, sess.ID()); err != nil {
		return nil, fmt.Errorf("failed to replay session: %w", err)
	}
	if err := st.VerifySession(ctx, sess.ID()); err != nil {
		result.AddError(err.Error())
	}
	if result.Program != sess.Program() {
		result.AddError("stored program differs from the session's in-memory program")
	}

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}
	return result, nil
}

func compileModel(s *Scenario) (*compiler.Model, error) {
	if s.Model == "" {
		return compiler.CompileString(s.Name+".cue", s.Source)
	}

	info, err := os.Stat(s.Model)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		res, err := compiler.LoadDir(s.Model)
		if err != nil {
			return nil, err
		}
		return res.Model, nil
	}

	src, err := os.ReadFile(s.Model)
	if err != nil {
		return nil, err
	}
	return compiler.CompileString(filepath.Base(s.Model), string(src))
}

// executeFlow appends each step in order. The first failing step stops
// the flow.
func (h *Harness) executeFlow(ctx context.Context, flow []Step) error {
	for i, step := range flow {
		st, err := h.executeStep(ctx, step)
		if err != nil {
			return fmt.Errorf("flow step %d: %w", i, err)
		}
		h.logger.Debug("flow step completed",
			"step", i,
			"seq", st.Seq,
			"kind", st.Kind,
		)
	}
	return nil
}

func (h *Harness) executeStep(ctx context.Context, step Step) (model.Statement, error) {
	switch {
	case step.Raw != "":
		return h.session.AddStatement(ctx, step.Raw)

	case step.Declare != "":
		e, err := h.session.Registry().Resolve(step.Declare)
		if err != nil {
			return model.Statement{}, err
		}
		if err := h.session.Declare(ctx, e.ID); err != nil {
			return model.Statement{}, err
		}
		return h.last(), nil

	case step.Assign != nil:
		rhs, err := h.build.build(step.Assign.RHS)
		if err != nil {
			return model.Statement{}, fmt.Errorf("rhs: %w", err)
		}
		lhs, err := h.assignTarget(step.Assign.LHS, rhs)
		if err != nil {
			return model.Statement{}, fmt.Errorf("lhs: %w", err)
		}
		return h.session.Assign(ctx, lhs, rhs)

	case step.Define != nil:
		d := step.Define
		eq, err := h.build.ref(d.Equation)
		if err != nil {
			return model.Statement{}, fmt.Errorf("equation: %w", err)
		}
		lhs, err := h.build.build(d.LHS)
		if err != nil {
			return model.Statement{}, fmt.Errorf("lhs: %w", err)
		}
		rhs, err := h.build.build(d.RHS)
		if err != nil {
			return model.Statement{}, fmt.Errorf("rhs: %w", err)
		}
		return h.session.Define(ctx, eq, relations[d.Relation](lhs, rhs))

	default:
		return model.Statement{}, fmt.Errorf("empty step")
	}
}

// assignTarget builds the left-hand side. A bare reference to a
// multi-dimensional symbol is indexed by the right-hand side's free
// indices when their count matches.
func (h *Harness) assignTarget(t Term, rhs algebra.Operand) (algebra.Operand, error) {
	if t.Ref == "" {
		return h.build.build(t)
	}
	name, args, err := splitRef(t.Ref)
	if err != nil {
		return nil, err
	}
	if args != nil {
		return h.build.ref(t.Ref)
	}
	e, err := h.session.Registry().Resolve(name)
	if err != nil {
		return nil, err
	}
	free := algebra.FreeDomain(rhs)
	if e.Dim() > 0 && len(free) == e.Dim() && !e.Kind.IsIndexable() {
		return algebra.Sym(e, free...)
	}
	return algebra.Sym(e)
}

func (h *Harness) last() model.Statement {
	stmts := h.session.Statements()
	if len(stmts) == 0 {
		return model.Statement{}
	}
	return stmts[len(stmts)-1]
}
