package form

import "errors"

var (
	// ErrMaxDepth signals schema nesting beyond the configured depth, which in
	// practice means a self-referencing type.
	ErrMaxDepth = errors.New("form: maximum nesting depth exceeded")
	// ErrNoOptions is returned for dropdowns without alternatives.
	ErrNoOptions = errors.New("form: dropdown has no options")
	// ErrNoElement is returned for lists without an element schema.
	ErrNoElement = errors.New("form: list has no element schema")
	// ErrNotUnion is returned when Select targets something other than a
	// rendered dropdown.
	ErrNotUnion = errors.New("form: element is not a dropdown")
	// ErrNotList is returned when Add targets something other than a rendered
	// list.
	ErrNotList = errors.New("form: element is not a list")
	// ErrUnknownOption is returned when Select names a missing alternative.
	ErrUnknownOption = errors.New("form: unknown dropdown option")
	// ErrUnknownField is returned when a field path does not exist.
	ErrUnknownField = errors.New("form: unknown field")
)
