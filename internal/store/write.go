package store

import (
	"context"
	"fmt"

	"github.com/roach88/eqgen/internal/model"
)

// AppendStatement writes a statement and its session row in one
// transaction. Implements model.Sink.
//
// Uses ON CONFLICT(id) DO NOTHING for idempotency: writing the same
// statement twice is a no-op. A different statement at an occupied
// (session_id, seq) violates the UNIQUE constraint and returns an error.
func (s *Store) AppendStatement(ctx context.Context, st model.Statement) error {
	if st.ID == "" || st.SessionID == "" {
		return fmt.Errorf("write statement: id and session_id are required")
	}
	if !model.ValidStatementKinds[st.Kind] {
		return fmt.Errorf("write statement: invalid kind %q", st.Kind)
	}

	symbolsJSON, err := marshalSymbols(st.Symbols)
	if err != nil {
		return fmt.Errorf("write statement: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write statement: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (id) VALUES (?)
		ON CONFLICT(id) DO NOTHING
	`, st.SessionID)
	if err != nil {
		return fmt.Errorf("write statement: session: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO statements
		(id, session_id, seq, kind, text, symbols)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		st.ID,
		st.SessionID,
		st.Seq,
		string(st.Kind),
		st.Text,
		symbolsJSON,
	)
	if err != nil {
		return fmt.Errorf("write statement: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write statement: commit: %w", err)
	}
	return nil
}

// AppendStatements writes a batch of statements in order, stopping at the
// first error.
func (s *Store) AppendStatements(ctx context.Context, stmts []model.Statement) error {
	for _, st := range stmts {
		if err := s.AppendStatement(ctx, st); err != nil {
			return err
		}
	}
	return nil
}
