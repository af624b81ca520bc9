package store

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// marshalSymbols converts a symbol name list to JSON TEXT for storage.
// HTML escaping is disabled so names are stored as written.
func marshalSymbols(names []string) (string, error) {
	if names == nil {
		names = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(names); err != nil {
		return "", fmt.Errorf("marshal symbols: %w", err)
	}
	return string(bytes.TrimSpace(buf.Bytes())), nil
}

// unmarshalSymbols parses JSON TEXT into a symbol name list.
// Returns an empty slice (not nil) for empty input.
func unmarshalSymbols(data string) ([]string, error) {
	if data == "" || data == "[]" {
		return []string{}, nil
	}
	var names []string
	if err := json.Unmarshal([]byte(data), &names); err != nil {
		return nil, fmt.Errorf("unmarshal symbols: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}
