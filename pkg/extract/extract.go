package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-funcform/pkg/dom"
	"github.com/goliatone/go-funcform/pkg/form"
)

var (
	// ErrDuplicateName is returned in strict mode when two siblings of an
	// object container share a name.
	ErrDuplicateName = errors.New("extract: duplicate field name")
	// ErrRequired is returned by Validate when required inputs are empty.
	ErrRequired = errors.New("extract: required field is empty")
)

// Option configures an Extractor.
type Option func(*Extractor)

// WithStrictNames reports repeated sibling names instead of letting the last
// value win.
func WithStrictNames() Option {
	return func(e *Extractor) {
		e.strict = true
	}
}

// Extractor turns a rendered form tree back into a JSON-compatible value.
type Extractor struct {
	strict bool
}

// New constructs an Extractor.
func New(options ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	return e
}

// Extract walks a form element. Only its direct input and fieldset children
// contribute to the payload.
func Extract(root *dom.Element) (map[string]any, error) {
	return New().Extract(root)
}

// Extract walks a form element. Only its direct input and fieldset children
// contribute to the payload.
func (e *Extractor) Extract(root *dom.Element) (map[string]any, error) {
	if root == nil {
		return nil, errors.New("extract: root element is nil")
	}
	out := make(map[string]any)
	for _, child := range root.Children() {
		if !isDataInput(child) && !child.Is("fieldset") {
			continue
		}
		name, value, ok, err := e.value(child)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if e.strict {
			if _, exists := out[name]; exists {
				return nil, fmt.Errorf("%w %q at top level", ErrDuplicateName, name)
			}
		}
		out[name] = value
	}
	return out, nil
}

// Value extracts a single element: list fieldsets become arrays, other
// fieldsets objects, inputs and selects scalars. ok is false for elements
// that carry no value (legends, labels, line breaks, add controls).
func (e *Extractor) Value(el *dom.Element) (name string, value any, ok bool, err error) {
	return e.value(el)
}

func (e *Extractor) value(el *dom.Element) (string, any, bool, error) {
	switch {
	case el.Is("fieldset") && el.GetAttr(form.AttrFieldType) == form.FieldTypeList:
		items := make([]any, 0, el.Len())
		for _, child := range el.Children() {
			_, value, ok, err := e.value(child)
			if err != nil {
				return "", nil, false, err
			}
			if ok {
				items = append(items, value)
			}
		}
		return el.Name(), items, true, nil

	case el.Is("fieldset"):
		obj := make(map[string]any)
		for _, child := range el.Children() {
			name, value, ok, err := e.value(child)
			if err != nil {
				return "", nil, false, err
			}
			if !ok {
				continue
			}
			if e.strict {
				if _, exists := obj[name]; exists {
					return "", nil, false, fmt.Errorf("%w %q in %q", ErrDuplicateName, name, el.Name())
				}
			}
			obj[name] = value
		}
		return el.Name(), obj, true, nil

	case isDataInput(el):
		if el.Type() == "checkbox" {
			return el.Name(), el.Checked(), true, nil
		}
		value := el.Value()
		if value == "" && isNullable(el) {
			return el.Name(), nil, true, nil
		}
		return el.Name(), value, true, nil

	case el.Is("select"):
		return el.Name(), el.Value(), true, nil

	default:
		return "", nil, false, nil
	}
}

// Missing lists required inputs that are empty or unchecked, in document
// order, mirroring the browser's constraint validation. Hidden inputs are
// never reported since the user cannot fill them.
func Missing(root *dom.Element) []*dom.Element {
	return root.Find(func(el *dom.Element) bool {
		if !isDataInput(el) || el.Type() == "hidden" || !el.HasAttr("required") || hiddenByAncestor(el) {
			return false
		}
		if el.Type() == "checkbox" {
			return !el.Checked()
		}
		return el.Value() == ""
	})
}

// Validate returns ErrRequired naming every missing required input.
func Validate(root *dom.Element) error {
	missing := Missing(root)
	if len(missing) == 0 {
		return nil
	}
	names := make([]string, 0, len(missing))
	for _, el := range missing {
		names = append(names, el.Name())
	}
	return fmt.Errorf("%w: %s", ErrRequired, strings.Join(names, ", "))
}

func isDataInput(el *dom.Element) bool {
	return el.Is("input") && el.Type() != "submit"
}

// isNullable treats any non-empty nullable marker other than "false" as set.
func isNullable(el *dom.Element) bool {
	val, ok := el.Attr(form.AttrNullable)
	return ok && val != "" && val != "false"
}

func hiddenByAncestor(el *dom.Element) bool {
	for p := el.Parent(); p != nil; p = p.Parent() {
		if p.HasAttr("hidden") {
			return true
		}
	}
	return false
}
