package testutil

// FixedSessionGenerator returns the same session ID every time.
//
// Sessions built with it log byte-identical statements across runs, which
// is what golden comparisons need.
type FixedSessionGenerator struct {
	id string
}

// NewFixedSessionGenerator creates a fixed session ID generator.
// If id is empty, Generate returns "test-session-default".
func NewFixedSessionGenerator(id string) *FixedSessionGenerator {
	if id == "" {
		id = "test-session-default"
	}
	return &FixedSessionGenerator{id: id}
}

// Generate returns the fixed session ID.
//
// Implements model.IDGenerator.
func (g *FixedSessionGenerator) Generate() string {
	return g.id
}
