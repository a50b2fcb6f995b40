package idgen

import "github.com/google/uuid"

// NewFunc generates a random (version 4) UUID in its canonical 36 character
// form. Override in tests for determinism.
var NewFunc = func() string { return uuid.NewString() }

// New returns a new opaque identifier.
func New() string { return NewFunc() }

// Valid reports whether s parses as a canonical UUID string.
func Valid(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
