package form

import (
	"strconv"

	"github.com/goliatone/go-funcform/pkg/dom"
)

// FieldKind classifies a named element of the rendered tree.
type FieldKind string

const (
	FieldInput  FieldKind = "input"
	FieldSelect FieldKind = "select"
	FieldRecord FieldKind = "record"
	FieldUnion  FieldKind = "union"
	FieldList   FieldKind = "list"
)

// Field is a named element addressed by its dotted path. Path segments are
// element names, except inside lists where they are item indexes:
// "items.0.sku", "shipping.name", "shipping.value.address".
type Field struct {
	Path    string
	Kind    FieldKind
	Element *dom.Element
}

// Fields lists the named elements of the form in document order.
func (f *Form) Fields() []Field {
	var out []Field
	f.collect(f.root, "", false, &out)
	return out
}

// Field finds an element by path.
func (f *Form) Field(path string) (Field, error) {
	for _, field := range f.Fields() {
		if field.Path == path {
			return field, nil
		}
	}
	return Field{}, ErrUnknownField
}

// PathOf returns the path of el, or false when el is not a named field.
func (f *Form) PathOf(el *dom.Element) (string, bool) {
	for _, field := range f.Fields() {
		if field.Element == el {
			return field.Path, true
		}
	}
	return "", false
}

func (f *Form) collect(container *dom.Element, prefix string, inList bool, out *[]Field) {
	index := 0
	for _, child := range container.Children() {
		kind, ok := f.kindOf(child)
		if !ok {
			continue
		}
		segment := child.Name()
		if inList {
			segment = strconv.Itoa(index)
			index++
		}
		path := segment
		if prefix != "" {
			path = prefix + "." + segment
		}
		*out = append(*out, Field{Path: path, Kind: kind, Element: child})
		if child.Is("fieldset") {
			f.collect(child, path, kind == FieldList, out)
		}
	}
}

func (f *Form) kindOf(el *dom.Element) (FieldKind, bool) {
	switch {
	case isValueInput(el):
		return FieldInput, true
	case el.Is("select"):
		return FieldSelect, true
	case el.Is("fieldset"):
		if f.IsList(el) || el.GetAttr(AttrFieldType) == FieldTypeList {
			return FieldList, true
		}
		if f.IsUnion(el) {
			return FieldUnion, true
		}
		return FieldRecord, true
	default:
		return "", false
	}
}
