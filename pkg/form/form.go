package form

import (
	"fmt"

	"github.com/goliatone/go-funcform/pkg/dom"
	"github.com/goliatone/go-funcform/pkg/schema"
)

// Form is the rendered tree of one function's parameters together with the
// bindings that make its dropdowns and lists interactive. A Form is owned by
// a single caller; it is not safe for concurrent use.
type Form struct {
	fn      schema.Function
	builder *Builder
	root    *dom.Element
}

// New renders fn into a fresh form element.
func New(fn schema.Function, options ...Option) (*Form, error) {
	builder := NewBuilder(fn.Lookup, options...)
	f := &Form{
		fn:      fn,
		builder: builder,
		root:    dom.New("form").SetAttr("id", builder.cfg.formID),
	}
	if err := f.Reset(); err != nil {
		return nil, err
	}
	return f, nil
}

// Reset discards the current tree contents and renders the function again
// from scratch.
func (f *Form) Reset() error {
	f.root.Clear()
	f.builder.reset()
	f.root.SetAttr(AttrFunction, f.fn.Name)

	f.root.Append(dom.NewText("h1", f.fn.Name))
	for _, param := range f.fn.Params {
		if err := f.builder.Render(f.root, param, nil); err != nil {
			return fmt.Errorf("form: render %s: %w", f.fn.Name, err)
		}
	}
	f.root.Append(dom.New("input").SetAttr("type", "submit").SetAttr("value", "Submit"))
	return nil
}

// Root returns the form element.
func (f *Form) Root() *dom.Element {
	return f.root
}

// Function returns the descriptor the form was rendered from.
func (f *Form) Function() schema.Function {
	return f.fn
}

// Name returns the function name.
func (f *Form) Name() string {
	return f.fn.Name
}

// Select switches a dropdown to option, replacing its sub-form. el may be the
// dropdown fieldset or its select element. Values entered for the previous
// option are discarded, including when option is already selected.
func (f *Form) Select(el *dom.Element, option string) error {
	binding, _, ok := f.union(el)
	if !ok {
		return ErrNotUnion
	}
	return f.builder.selectOption(binding, option)
}

// Selected reports the active option of a dropdown.
func (f *Form) Selected(el *dom.Element) (string, error) {
	binding, _, ok := f.union(el)
	if !ok {
		return "", ErrNotUnion
	}
	return binding.selector.Value(), nil
}

// Options lists the alternatives of a dropdown.
func (f *Form) Options(el *dom.Element) ([]string, error) {
	binding, _, ok := f.union(el)
	if !ok {
		return nil, ErrNotUnion
	}
	return binding.node.OptionNames(), nil
}

// Add appends one more element instance to a list, right before its add
// control. Existing items are left untouched.
func (f *Form) Add(list *dom.Element) error {
	binding, ok := f.builder.lists[list]
	if !ok {
		return ErrNotList
	}
	return f.builder.addItem(binding, list)
}

// IsUnion reports whether el is a rendered dropdown fieldset.
func (f *Form) IsUnion(el *dom.Element) bool {
	_, ok := f.builder.unions[el]
	return ok
}

// IsList reports whether el is a rendered list fieldset.
func (f *Form) IsList(el *dom.Element) bool {
	_, ok := f.builder.lists[el]
	return ok
}

// Unions returns the dropdown fieldsets in document order.
func (f *Form) Unions() []*dom.Element {
	return f.root.Find(f.IsUnion)
}

// Lists returns the list fieldsets in document order.
func (f *Form) Lists() []*dom.Element {
	return f.root.Find(f.IsList)
}

// Inputs returns every input element except the submit control.
func (f *Form) Inputs() []*dom.Element {
	return f.root.Find(isValueInput)
}

func (f *Form) union(el *dom.Element) (*unionBinding, *dom.Element, bool) {
	if el == nil {
		return nil, nil, false
	}
	if binding, ok := f.builder.unions[el]; ok {
		return binding, el, true
	}
	if parent := el.Parent(); parent != nil && el.Is("select") {
		if binding, ok := f.builder.unions[parent]; ok && binding.selector == el {
			return binding, parent, true
		}
	}
	return nil, nil, false
}

func isValueInput(el *dom.Element) bool {
	return el.Is("input") && el.Type() != "submit"
}
