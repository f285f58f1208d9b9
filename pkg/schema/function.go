package schema

import (
	"errors"
	"fmt"
	"sort"
)

// maxRefHops bounds chains of references that point at other references.
const maxRefHops = 16

// Lookup maps reference names to shared sub-schemas. It is immutable once
// constructed.
type Lookup struct {
	entries map[string]Node
}

// NewLookup copies entries into an immutable Lookup.
func NewLookup(entries map[string]Node) Lookup {
	if len(entries) == 0 {
		return Lookup{}
	}
	clone := make(map[string]Node, len(entries))
	for name, node := range entries {
		clone[name] = node
	}
	return Lookup{entries: clone}
}

// Get returns the raw entry registered under name.
func (l Lookup) Get(name string) (Node, bool) {
	node, ok := l.entries[name]
	return node, ok
}

// Len reports the number of entries.
func (l Lookup) Len() int {
	return len(l.entries)
}

// Names returns the entry names in sorted order.
func (l Lookup) Names() []string {
	names := make([]string, 0, len(l.entries))
	for name := range l.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Entries returns a copy of the underlying mapping.
func (l Lookup) Entries() map[string]Node {
	out := make(map[string]Node, len(l.entries))
	for name, node := range l.entries {
		out[name] = node
	}
	return out
}

// Resolve follows ref through the lookup and returns the target renamed to
// the reference's field name. The stored entry is left untouched.
func (l Lookup) Resolve(ref Ref) (Node, error) {
	target := ref.Ref
	for hop := 0; hop < maxRefHops; hop++ {
		node, ok := l.entries[target]
		if !ok {
			return nil, fmt.Errorf("%w %q (field %q)", ErrUnknownRef, target, ref.Name)
		}
		next, isRef := node.(Ref)
		if !isRef {
			return node.Named(ref.Name), nil
		}
		target = next.Ref
	}
	return nil, fmt.Errorf("%w: %q exceeds %d hops (field %q)", ErrRefCycle, ref.Ref, maxRefHops, ref.Name)
}

// Function describes a callable backend function and its parameter schema.
type Function struct {
	Name   string
	Params []Node
	Lookup Lookup
}

// Validate reports structural problems: unions without options, lists
// without an element schema, and references that do not resolve.
func (f Function) Validate() error {
	var issues []error
	var check func(path string, node Node)
	check = func(path string, node Node) {
		if node == nil {
			issues = append(issues, fmt.Errorf("%s: missing node", path))
			return
		}
		here := joinPath(path, node.FieldName())
		switch n := node.(type) {
		case Record:
			for _, child := range n.Elements {
				check(here, child)
			}
		case Union:
			if len(n.Options) == 0 {
				issues = append(issues, fmt.Errorf("%s: dropdown has no options", here))
			}
			for _, opt := range n.Options {
				for _, child := range opt.Elements {
					check(joinPath(here, opt.Name), child)
				}
			}
		case List:
			if n.Element == nil {
				issues = append(issues, fmt.Errorf("%s: list has no element schema", here))
				return
			}
			check(here, n.Element)
		case Ref:
			if _, err := f.Lookup.Resolve(n); err != nil {
				issues = append(issues, fmt.Errorf("%s: %w", here, err))
			}
		case Primitive:
		}
	}

	for _, param := range f.Params {
		check(f.Name, param)
	}
	for _, name := range f.Lookup.Names() {
		node, _ := f.Lookup.Get(name)
		if _, isRef := node.(Ref); isRef {
			continue
		}
		check(f.Name+"#"+name, node)
	}

	if len(issues) == 0 {
		return nil
	}
	return fmt.Errorf("%w %q: %w", ErrInvalid, f.Name, errors.Join(issues...))
}

// Registry is an ordered collection of function descriptors.
type Registry struct {
	functions []Function
	index     map[string]int
}

// NewRegistry builds a registry. Later duplicates replace earlier entries in
// place.
func NewRegistry(functions ...Function) *Registry {
	r := &Registry{index: make(map[string]int, len(functions))}
	for _, fn := range functions {
		if idx, ok := r.index[fn.Name]; ok {
			r.functions[idx] = fn
			continue
		}
		r.index[fn.Name] = len(r.functions)
		r.functions = append(r.functions, fn)
	}
	return r
}

// Function looks up a descriptor by name.
func (r *Registry) Function(name string) (Function, error) {
	if r == nil {
		return Function{}, fmt.Errorf("%w %q", ErrUnknownFunction, name)
	}
	idx, ok := r.index[name]
	if !ok {
		return Function{}, fmt.Errorf("%w %q", ErrUnknownFunction, name)
	}
	return r.functions[idx], nil
}

// Functions returns the descriptors in registration order.
func (r *Registry) Functions() []Function {
	if r == nil {
		return nil
	}
	return append([]Function(nil), r.functions...)
}

// Names returns function names in registration order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.functions))
	for _, fn := range r.functions {
		names = append(names, fn.Name)
	}
	return names
}

// Len reports the number of registered functions.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.functions)
}

// Validate runs Function.Validate for every descriptor.
func (r *Registry) Validate() error {
	var errs []error
	for _, fn := range r.Functions() {
		if err := fn.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func joinPath(parent, child string) string {
	if parent == "" {
		return child
	}
	if child == "" {
		return parent
	}
	return parent + "." + child
}
