package pack

import "errors"

// Format errors mean the stored bytes do not conform to the expected schema.
// Structural errors mean the bytes parsed but the container's invariants do
// not hold. Neither class is ever auto-repaired; callers surface them to the
// user as a damaged package.
var (
	ErrMalformed          = errors.New("malformed package data")
	ErrUnsupportedVersion = errors.New("unsupported package format version")
	ErrUnknownVariant     = errors.New("unknown annotation variant")
	ErrStructural         = errors.New("package structure invariant violated")
)
