package store

import (
	"reflect"
	"testing"
)

func TestMarshalSymbols(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want string
	}{
		{"nil", nil, "[]"},
		{"empty", []string{}, "[]"},
		{"names", []string{"x", "AliasOfi_2"}, `["x","AliasOfi_2"]`},
		{"no html escaping", []string{"a<b"}, `["a<b"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := marshalSymbols(tt.in)
			if err != nil {
				t.Fatalf("marshalSymbols() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("marshalSymbols() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnmarshalSymbols(t *testing.T) {
	for _, in := range []string{"", "[]", "null"} {
		got, err := unmarshalSymbols(in)
		if err != nil {
			t.Fatalf("unmarshalSymbols(%q) failed: %v", in, err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("unmarshalSymbols(%q) = %v, want empty slice", in, got)
		}
	}

	got, err := unmarshalSymbols(`["x","y"]`)
	if err != nil {
		t.Fatalf("unmarshalSymbols() failed: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"x", "y"}) {
		t.Errorf("unmarshalSymbols() = %v", got)
	}

	if _, err := unmarshalSymbols(`{"x":1}`); err == nil {
		t.Error("expected error for non-array JSON")
	}
}
