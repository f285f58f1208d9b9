// Package schema defines the parameter type description of a backend
// function: a closed set of node variants (Primitive, Record, Union, List and
// Ref), the immutable Lookup that named references resolve through, and the
// Registry of callable functions.
//
// Registries travel as JSON (or YAML) arrays of [name, params, lookup]
// tuples, where every node carries a "type" discriminator: "fieldset",
// "dropdown", "list", "namedref", or an HTML input type for primitives
// ("text", "number", "float", "char", "checkbox", "hidden", ...). Callers
// dispatch over nodes with a type switch:
//
//	switch n := node.(type) {
//	case schema.Record:
//	case schema.Union:
//	case schema.List:
//	case schema.Ref:
//	case schema.Primitive:
//	}
package schema
