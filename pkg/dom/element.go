package dom

import (
	"errors"
	"strings"
)

// ErrNotChild is returned when a reference element does not belong to the
// container being edited.
var ErrNotChild = errors.New("dom: reference element is not a child")

// Attr is a single name/value attribute.
type Attr struct {
	Key string
	Val string
}

// Element is a node of the form tree. Attributes keep insertion order so
// serialized output stays deterministic. An element owns its children; every
// child points back at its parent.
type Element struct {
	Tag  string
	Text string

	attrs    []Attr
	children []*Element
	parent   *Element
}

// New creates a detached element.
func New(tag string) *Element {
	return &Element{Tag: strings.ToLower(tag)}
}

// NewText creates a detached element carrying text content.
func NewText(tag, text string) *Element {
	el := New(tag)
	el.Text = text
	return el
}

// Is reports whether the element has the given tag.
func (e *Element) Is(tag string) bool {
	return e != nil && e.Tag == tag
}

// Attr returns the attribute value and whether it is present.
func (e *Element) Attr(key string) (string, bool) {
	for _, attr := range e.attrs {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

// GetAttr returns the attribute value or an empty string.
func (e *Element) GetAttr(key string) string {
	val, _ := e.Attr(key)
	return val
}

// HasAttr reports whether the attribute is present.
func (e *Element) HasAttr(key string) bool {
	_, ok := e.Attr(key)
	return ok
}

// SetAttr sets or replaces an attribute and returns the element for chaining.
func (e *Element) SetAttr(key, val string) *Element {
	for i := range e.attrs {
		if e.attrs[i].Key == key {
			e.attrs[i].Val = val
			return e
		}
	}
	e.attrs = append(e.attrs, Attr{Key: key, Val: val})
	return e
}

// RemoveAttr drops an attribute if present.
func (e *Element) RemoveAttr(key string) {
	for i := range e.attrs {
		if e.attrs[i].Key == key {
			e.attrs = append(e.attrs[:i], e.attrs[i+1:]...)
			return
		}
	}
}

// Attrs returns a copy of the attributes in insertion order.
func (e *Element) Attrs() []Attr {
	return append([]Attr(nil), e.attrs...)
}

// Name returns the name attribute.
func (e *Element) Name() string {
	return e.GetAttr("name")
}

// Type returns the lower-cased type attribute.
func (e *Element) Type() string {
	return strings.ToLower(e.GetAttr("type"))
}

// Parent returns the owning element, nil when detached.
func (e *Element) Parent() *Element {
	return e.parent
}

// Children returns a copy of the child list.
func (e *Element) Children() []*Element {
	return append([]*Element(nil), e.children...)
}

// Len reports the number of children.
func (e *Element) Len() int {
	return len(e.children)
}

// Child returns the child at index i or nil when out of range.
func (e *Element) Child(i int) *Element {
	if i < 0 || i >= len(e.children) {
		return nil
	}
	return e.children[i]
}

// Index returns the position of child, or -1.
func (e *Element) Index(child *Element) int {
	for i, c := range e.children {
		if c == child {
			return i
		}
	}
	return -1
}

// Append adds children at the end, detaching them from any previous parent.
func (e *Element) Append(children ...*Element) *Element {
	for _, child := range children {
		if child == nil {
			continue
		}
		child.Detach()
		child.parent = e
		e.children = append(e.children, child)
	}
	return e
}

// InsertBefore inserts child ahead of ref. A nil ref appends.
func (e *Element) InsertBefore(child, ref *Element) error {
	if child == nil {
		return nil
	}
	if ref == nil {
		e.Append(child)
		return nil
	}
	if ref.parent != e {
		return ErrNotChild
	}
	child.Detach()
	idx := e.Index(ref)
	e.children = append(e.children, nil)
	copy(e.children[idx+1:], e.children[idx:])
	e.children[idx] = child
	child.parent = e
	return nil
}

// Remove detaches child and reports whether it was found.
func (e *Element) Remove(child *Element) bool {
	idx := e.Index(child)
	if idx < 0 {
		return false
	}
	e.children = append(e.children[:idx], e.children[idx+1:]...)
	child.parent = nil
	return true
}

// Detach removes the element from its parent.
func (e *Element) Detach() {
	if e.parent != nil {
		e.parent.Remove(e)
	}
}

// Clear drops every child.
func (e *Element) Clear() {
	for _, child := range e.children {
		child.parent = nil
	}
	e.children = nil
}

// Clone deep-copies the element and its subtree. The copy is detached.
func (e *Element) Clone() *Element {
	if e == nil {
		return nil
	}
	out := &Element{
		Tag:   e.Tag,
		Text:  e.Text,
		attrs: append([]Attr(nil), e.attrs...),
	}
	for _, child := range e.children {
		c := child.Clone()
		c.parent = out
		out.children = append(out.children, c)
	}
	return out
}

// Walk visits the subtree in document order. Returning false from fn skips
// the element's descendants.
func (e *Element) Walk(fn func(*Element) bool) {
	if e == nil {
		return
	}
	if !fn(e) {
		return
	}
	for _, child := range e.Children() {
		child.Walk(fn)
	}
}

// Find collects every element of the subtree (self included) matching pred.
func (e *Element) Find(pred func(*Element) bool) []*Element {
	var out []*Element
	e.Walk(func(el *Element) bool {
		if pred(el) {
			out = append(out, el)
		}
		return true
	})
	return out
}

// FindFirst returns the first element matching pred in document order.
func (e *Element) FindFirst(pred func(*Element) bool) *Element {
	var found *Element
	e.Walk(func(el *Element) bool {
		if found != nil {
			return false
		}
		if pred(el) {
			found = el
			return false
		}
		return true
	})
	return found
}

// ByTag is a Find predicate matching a tag name.
func ByTag(tag string) func(*Element) bool {
	return func(el *Element) bool { return el.Tag == tag }
}

// Value returns the current control value. For select elements this is the
// value of the selected option, falling back to the first option.
func (e *Element) Value() string {
	if e.Tag != "select" {
		return e.GetAttr("value")
	}
	var first *Element
	for _, opt := range e.children {
		if opt.Tag != "option" {
			continue
		}
		if first == nil {
			first = opt
		}
		if opt.HasAttr("selected") {
			return optionValue(opt)
		}
	}
	if first == nil {
		return ""
	}
	return optionValue(first)
}

// SetValue updates the control value. Select elements move their selected
// marker and report false when no option carries the value.
func (e *Element) SetValue(value string) bool {
	if e.Tag != "select" {
		e.SetAttr("value", value)
		return true
	}
	var target *Element
	for _, opt := range e.children {
		if opt.Tag == "option" && optionValue(opt) == value {
			target = opt
			break
		}
	}
	if target == nil {
		return false
	}
	for _, opt := range e.children {
		opt.RemoveAttr("selected")
	}
	target.SetAttr("selected", "")
	return true
}

// Checked reports the checked state of a checkbox.
func (e *Element) Checked() bool {
	return e.HasAttr("checked")
}

// SetChecked toggles the checked state.
func (e *Element) SetChecked(checked bool) {
	if checked {
		e.SetAttr("checked", "")
		return
	}
	e.RemoveAttr("checked")
}

func optionValue(opt *Element) string {
	if val, ok := opt.Attr("value"); ok {
		return val
	}
	return opt.Text
}
