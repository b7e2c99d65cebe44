package model

import (
	"fmt"
	"strings"
)

// Kind is the element type tag of a vector or matrix.
type Kind uint8

const (
	// Real elements are float64.
	Real Kind = iota
	// Integer elements are int64.
	Integer
)

// ElemSize is the storage size in bytes of a single element of either kind.
const ElemSize = 8

// String returns the Matrix Market field name of the kind.
func (k Kind) String() string {
	switch k {
	case Real:
		return "real"
	case Integer:
		return "integer"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == Real || k == Integer
}

// ParseKind parses "real" or "integer" (case-insensitive).
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "real":
		return Real, true
	case "integer":
		return Integer, true
	default:
		return Real, false
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid kind %d", uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	v, ok := ParseKind(string(text))
	if !ok {
		return fmt.Errorf("invalid kind %q", text)
	}
	*k = v
	return nil
}

// Number is the constraint satisfied by the element types of both kinds.
type Number interface {
	~float64 | ~int64
}
