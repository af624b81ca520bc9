package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/eqgen/internal/model"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestStatement builds a statement whose ID matches its content.
func createTestStatement(t *testing.T, sessionID string, seq int64, kind model.StatementKind, text string, symbols ...string) model.Statement {
	t.Helper()
	id, err := model.StatementID(sessionID, seq, kind, text)
	require.NoError(t, err)
	if symbols == nil {
		symbols = []string{}
	}
	return model.Statement{
		ID:        id,
		SessionID: sessionID,
		Seq:       seq,
		Kind:      kind,
		Text:      text,
		Symbols:   symbols,
	}
}
