package model

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainStatement is the hash domain for statement IDs. The version suffix
// allows the payload layout to change without colliding with old IDs.
const DomainStatement = "eqgen/statement/v1"

// StatementKind classifies log entries.
type StatementKind string

const (
	KindDeclaration StatementKind = "declaration"
	KindAssignment  StatementKind = "assignment"
	KindDefinition  StatementKind = "definition"
	KindRaw         StatementKind = "raw"
)

// ValidStatementKinds defines allowed statement kinds.
var ValidStatementKinds = map[StatementKind]bool{
	KindDeclaration: true,
	KindAssignment:  true,
	KindDefinition:  true,
	KindRaw:         true,
}

// Statement is one rendered entry of a session's log.
type Statement struct {
	ID        string        // content-addressed, see StatementID
	SessionID string        // owning session
	Seq       int64         // logical position within the session
	Kind      StatementKind // declaration, assignment, definition or raw
	Text      string        // rendered text, terminated by ';'
	Symbols   []string      // names of the entities the statement references
}

// Sink receives every statement a session appends, in seq order.
type Sink interface {
	AppendStatement(ctx context.Context, st Statement) error
}

// StatementID computes the content-addressed ID of a statement.
//
// The ID covers the session, position, kind and text. Symbols are derived
// from the text's tree and are not part of the identity.
func StatementID(sessionID string, seq int64, kind StatementKind, text string) (string, error) {
	payload := map[string]any{
		"session_id": sessionID,
		"seq":        seq,
		"kind":       string(kind),
		"text":       text,
	}
	canonical, err := marshalCanonical(payload)
	if err != nil {
		return "", fmt.Errorf("StatementID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainStatement, canonical), nil
}

// hashWithDomain computes SHA256(domain + 0x00 + data). The separator
// keeps the domain and data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
