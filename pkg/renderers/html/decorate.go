package html

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-funcform/pkg/dom"
	"github.com/goliatone/go-funcform/pkg/form"
	"github.com/goliatone/go-funcform/pkg/render"
)

const (
	// ActionField carries the button pressed: "add:<path>", "select:<path>"
	// or the submit control's value.
	ActionField = "_action"
	// CountSuffix names the hidden input holding a list's item count.
	CountSuffix = "#count"
	// ServedSuffix names the hidden input holding the option a dropdown had
	// when the page was served.
	ServedSuffix = "#served"
	// FieldAttr keeps a control's schema name after it is renamed to its path.
	FieldAttr = "data-field"
)

// Decoration is per-request state added on top of the form tree.
type Decoration struct {
	Action string
	Errors map[string][]string
	Hidden []render.HiddenField
}

// Decorate returns a copy of the form tree ready to be served as a plain
// HTML form that round-trips through Restore:
//
//   - controls are renamed to their dotted path, the schema name moves to
//     data-field;
//   - each list gains a hidden item count and its add control becomes an
//     "add:<path>" submit button;
//   - each dropdown records its served option and gains an "Apply" button
//     posting "select:<path>";
//   - the submit input posts under ActionField.
//
// The form's own tree is left untouched.
func Decorate(f *form.Form, d Decoration) *dom.Element {
	clone := f.Root().Clone()
	clone.SetAttr("method", "post")
	if d.Action != "" {
		clone.SetAttr("action", d.Action)
	}

	pairs := make(map[*dom.Element]*dom.Element)
	pair(f.Root(), clone, pairs)

	for _, field := range f.Fields() {
		orig := field.Element
		el := pairs[orig]
		if el == nil {
			continue
		}
		switch field.Kind {
		case form.FieldInput, form.FieldSelect:
			renameControl(el, field.Path)
		case form.FieldUnion:
			if selector := directChild(el, "select"); selector != nil {
				insertAfter(selector, actionButton("select:"+field.Path, "Apply", ""))
				insertAfter(selector, input("hidden", field.Path+ServedSuffix, selector.Value()))
			}
		case form.FieldList:
			decorateList(orig, el, field.Path)
		}
		if messages := d.Errors[field.Path]; len(messages) > 0 {
			el.SetAttr("aria-invalid", "true")
			insertAfter(el, dom.NewText("span", strings.Join(messages, "; ")).SetAttr("class", "field-error"))
		}
	}

	if submit := lastSubmit(clone); submit != nil {
		submit.SetAttr("name", ActionField)
	}

	hidden := render.SortedHiddenFields(d.Hidden...)
	var anchor *dom.Element
	if clone.Len() > 1 {
		anchor = clone.Child(1)
	}
	for _, h := range hidden {
		input := dom.New("input").SetAttr("type", "hidden").SetAttr("name", h.Name).SetAttr("value", h.Value)
		_ = clone.InsertBefore(input, anchor)
	}
	return clone
}

func pair(orig, clone *dom.Element, out map[*dom.Element]*dom.Element) {
	out[orig] = clone
	for i := 0; i < orig.Len(); i++ {
		pair(orig.Child(i), clone.Child(i), out)
	}
}

func renameControl(el *dom.Element, path string) {
	name := el.Name()
	el.SetAttr(FieldAttr, name)
	el.SetAttr("name", path)
	if el.HasAttr("id") {
		el.SetAttr("id", path)
	}
	if parent := el.Parent(); parent != nil {
		if idx := parent.Index(el); idx > 0 {
			if label := parent.Child(idx - 1); label.Is("label") && label.GetAttr("for") == name {
				label.SetAttr("for", path)
			}
		}
	}
}

func decorateList(orig, el *dom.Element, path string) {
	count := input("hidden", path+CountSuffix, strconv.Itoa(itemCount(orig)))
	button := el.FindFirst(func(c *dom.Element) bool {
		return c.Parent() == el && c.Is("a") && c.GetAttr("class") == form.AddButtonClass
	})
	replacement := actionButton("add:"+path, "+", form.AddButtonClass)
	if button == nil {
		el.Append(count, replacement)
		return
	}
	_ = el.InsertBefore(count, button)
	_ = el.InsertBefore(replacement, button)
	el.Remove(button)
}

// itemCount counts list items: every item renders as an input or a fieldset.
func itemCount(list *dom.Element) int {
	n := 0
	for _, child := range list.Children() {
		if child.Is("fieldset") || (child.Is("input") && child.Type() != "submit") {
			n++
		}
	}
	return n
}

func actionButton(value, text, class string) *dom.Element {
	button := dom.NewText("button", text).
		SetAttr("type", "submit").
		SetAttr("name", ActionField).
		SetAttr("value", value).
		SetAttr("formnovalidate", "")
	if class != "" {
		button.SetAttr("class", class)
	}
	return button
}

func input(kind, name, value string) *dom.Element {
	return dom.New("input").SetAttr("type", kind).SetAttr("name", name).SetAttr("value", value)
}

func directChild(el *dom.Element, tag string) *dom.Element {
	for _, child := range el.Children() {
		if child.Is(tag) {
			return child
		}
	}
	return nil
}

func insertAfter(el, sibling *dom.Element) {
	parent := el.Parent()
	if parent == nil {
		return
	}
	_ = parent.InsertBefore(sibling, parent.Child(parent.Index(el)+1))
}

func lastSubmit(root *dom.Element) *dom.Element {
	for i := root.Len() - 1; i >= 0; i-- {
		if child := root.Child(i); child.Is("input") && child.Type() == "submit" {
			return child
		}
	}
	return nil
}
