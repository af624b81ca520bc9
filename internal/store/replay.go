package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/eqgen/internal/model"
)

// SessionState summarizes a stored session for resumption.
type SessionState struct {
	SessionID  string
	Statements []model.Statement
	LastSeq    int64
	Counts     map[model.StatementKind]int
}

// GetSessionState reads a session and tallies its statements by kind.
func (s *Store) GetSessionState(ctx context.Context, sessionID string) (SessionState, error) {
	state := SessionState{
		SessionID: sessionID,
		Counts:    make(map[model.StatementKind]int),
	}

	stmts, err := s.ReadSession(ctx, sessionID)
	if err != nil {
		return state, fmt.Errorf("get session state: %w", err)
	}
	state.Statements = stmts

	for _, st := range stmts {
		state.Counts[st.Kind]++
		if st.Seq > state.LastSeq {
			state.LastSeq = st.Seq
		}
	}
	return state, nil
}

// ReplaySession returns the program text of a stored session: statement
// texts in seq order, one per line.
func (s *Store) ReplaySession(ctx context.Context, sessionID string) (string, error) {
	stmts, err := s.ReadSession(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("replay session: %w", err)
	}
	return model.Program(stmts), nil
}

// VerifySession recomputes the content-addressed ID of every statement in
// a session and reports rows whose stored ID no longer matches their
// session, seq, kind and text.
func (s *Store) VerifySession(ctx context.Context, sessionID string) error {
	stmts, err := s.ReadSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("verify session: %w", err)
	}

	var mismatched []string
	for _, st := range stmts {
		want, err := model.StatementID(st.SessionID, st.Seq, st.Kind, st.Text)
		if err != nil {
			return fmt.Errorf("verify session: seq %d: %w", st.Seq, err)
		}
		if want != st.ID {
			mismatched = append(mismatched, fmt.Sprintf("seq %d", st.Seq))
		}
	}
	if len(mismatched) > 0 {
		return fmt.Errorf("verify session %s: statement IDs do not match content at %s",
			sessionID, strings.Join(mismatched, ", "))
	}
	return nil
}

// ResumeClock returns a clock that continues after the last seq stored for
// a session, for appending to it with model.WithClock.
func (s *Store) ResumeClock(ctx context.Context, sessionID string) (*model.LogicalClock, error) {
	last, err := s.GetLastSeqForSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return model.NewClockAt(last), nil
}

// GetLastSeq returns the highest seq number used in the store.
func (s *Store) GetLastSeq(ctx context.Context) (int64, error) {
	var maxSeq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) FROM statements
	`).Scan(&maxSeq)
	if err != nil {
		return 0, fmt.Errorf("get last seq: %w", err)
	}
	return maxSeq, nil
}

// GetLastSeqForSession returns the highest seq number used in a session.
// Returns 0 for an unknown session.
func (s *Store) GetLastSeqForSession(ctx context.Context, sessionID string) (int64, error) {
	var maxSeq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) FROM statements WHERE session_id = ?
	`, sessionID).Scan(&maxSeq)
	if err != nil {
		return 0, fmt.Errorf("get last seq for session: %w", err)
	}
	return maxSeq, nil
}

// ListSessions returns all session IDs in the database.
// Results ordered by ID.
func (s *Store) ListSessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM sessions
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	if ids == nil {
		ids = []string{}
	}

	return ids, nil
}
