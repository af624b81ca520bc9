package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/eqgen/internal/model"
)

const statementColumns = `id, session_id, seq, kind, text, symbols`

// ReadSession returns every statement of a session.
// Results are ordered deterministically: ORDER BY seq ASC, id COLLATE BINARY ASC.
//
// Returns an empty slice (not nil) if the session has no statements.
func (s *Store) ReadSession(ctx context.Context, sessionID string) ([]model.Statement, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+statementColumns+`
		FROM statements
		WHERE session_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query statements: %w", err)
	}
	return collectStatements(rows)
}

// ReadSessionKind returns the statements of one kind in a session, in seq
// order.
func (s *Store) ReadSessionKind(ctx context.Context, sessionID string, kind model.StatementKind) ([]model.Statement, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+statementColumns+`
		FROM statements
		WHERE session_id = ? AND kind = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, sessionID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("query %s statements: %w", kind, err)
	}
	return collectStatements(rows)
}

// ReadStatement retrieves a single statement by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadStatement(ctx context.Context, id string) (model.Statement, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+statementColumns+`
		FROM statements
		WHERE id = ?
	`, id)
	return scanStatement(row)
}

// ReadAllStatements returns every stored statement across sessions,
// ordered by session, then seq ASC, id ASC.
func (s *Store) ReadAllStatements(ctx context.Context) ([]model.Statement, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+statementColumns+`
		FROM statements
		ORDER BY session_id COLLATE BINARY ASC, seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query all statements: %w", err)
	}
	return collectStatements(rows)
}

// collectStatements drains and closes rows.
func collectStatements(rows *sql.Rows) ([]model.Statement, error) {
	defer rows.Close()

	stmts := []model.Statement{}
	for rows.Next() {
		st, err := scanStatement(rows)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate statements: %w", err)
	}
	return stmts, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanStatement(row scanner) (model.Statement, error) {
	var (
		st          model.Statement
		kind        string
		symbolsJSON string
	)
	if err := row.Scan(&st.ID, &st.SessionID, &st.Seq, &kind, &st.Text, &symbolsJSON); err != nil {
		if err == sql.ErrNoRows {
			return model.Statement{}, err
		}
		return model.Statement{}, fmt.Errorf("scan statement: %w", err)
	}
	st.Kind = model.StatementKind(kind)

	symbols, err := unmarshalSymbols(symbolsJSON)
	if err != nil {
		return model.Statement{}, err
	}
	st.Symbols = symbols
	return st, nil
}
