package schema

import "errors"

var (
	// ErrUnknownRef is returned when a named reference has no lookup entry.
	ErrUnknownRef = errors.New("schema: unknown reference")
	// ErrRefCycle is returned when a chain of references never reaches a
	// concrete node.
	ErrRefCycle = errors.New("schema: reference chain too long or cyclic")
	// ErrUnknownFunction is returned when a registry has no function by name.
	ErrUnknownFunction = errors.New("schema: unknown function")
	// ErrUnknownKind is returned when decoding a node with an unsupported type.
	ErrUnknownKind = errors.New("schema: unknown node type")
	// ErrInvalid marks structural problems reported by Validate.
	ErrInvalid = errors.New("schema: invalid descriptor")
)
