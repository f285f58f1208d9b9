package schema

// Kind identifies a schema node variant.
type Kind string

const (
	KindPrimitive Kind = "primitive"
	KindRecord    Kind = "fieldset"
	KindUnion     Kind = "dropdown"
	KindList      Kind = "list"
	KindRef       Kind = "namedref"
)

// Primitive input types with dedicated rendering rules. Any other value is
// passed through to the rendered input's type attribute.
const (
	TypeText     = "text"
	TypeNumber   = "number"
	TypeFloat    = "float"
	TypeChar     = "char"
	TypeCheckbox = "checkbox"
	TypeHidden   = "hidden"
)

// Node is one unit of a parameter type description. The set of variants is
// closed: Primitive, Record, Union, List and Ref.
type Node interface {
	Kind() Kind
	FieldName() string
	// Named returns a copy of the node carrying the provided field name.
	Named(name string) Node
	sealed()
}

// Primitive is a typed leaf value.
type Primitive struct {
	Name     string
	Type     string
	Nullable bool
	// Value optionally pre-populates the rendered input.
	Value string
}

func (p Primitive) Kind() Kind        { return KindPrimitive }
func (p Primitive) FieldName() string { return p.Name }
func (p Primitive) Named(name string) Node {
	p.Name = name
	return p
}
func (Primitive) sealed() {}

// Record groups named children.
type Record struct {
	Name     string
	Elements []Node
}

func (r Record) Kind() Kind        { return KindRecord }
func (r Record) FieldName() string { return r.Name }
func (r Record) Named(name string) Node {
	r.Name = name
	return r
}
func (Record) sealed() {}

// Option is one alternative of a Union.
type Option struct {
	Name     string
	Elements []Node
}

// Union offers a choice between named alternatives.
type Union struct {
	Name    string
	Options []Option
}

func (u Union) Kind() Kind        { return KindUnion }
func (u Union) FieldName() string { return u.Name }
func (u Union) Named(name string) Node {
	u.Name = name
	return u
}
func (Union) sealed() {}

// Option looks up an alternative by name.
func (u Union) Option(name string) (Option, bool) {
	for _, opt := range u.Options {
		if opt.Name == name {
			return opt, true
		}
	}
	return Option{}, false
}

// OptionNames lists alternatives in declaration order.
func (u Union) OptionNames() []string {
	names := make([]string, 0, len(u.Options))
	for _, opt := range u.Options {
		names = append(names, opt.Name)
	}
	return names
}

// List repeats a single element schema.
type List struct {
	Name    string
	Element Node
}

func (l List) Kind() Kind        { return KindList }
func (l List) FieldName() string { return l.Name }
func (l List) Named(name string) Node {
	l.Name = name
	return l
}
func (List) sealed() {}

// Ref points into the lookup table of the owning function. The resolved node
// takes the Ref's field name.
type Ref struct {
	Name string
	Ref  string
}

func (r Ref) Kind() Kind        { return KindRef }
func (r Ref) FieldName() string { return r.Name }
func (r Ref) Named(name string) Node {
	r.Name = name
	return r
}
func (Ref) sealed() {}
