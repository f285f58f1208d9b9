package form

import (
	"fmt"

	"github.com/goliatone/go-funcform/pkg/dom"
	"github.com/goliatone/go-funcform/pkg/schema"
)

// Markers shared with the extractor. Containers tagged with AttrFieldType =
// FieldTypeList extract as arrays; inputs carrying AttrNullable extract empty
// values as null.
const (
	AttrFieldType   = "ftype"
	FieldTypeList   = "list"
	AttrNullable    = "nullable"
	AttrFunction    = "data-function"
	AddButtonClass  = "add-button"
	UnionSelectName = "name"
	UnionValueName  = "value"
)

type unionBinding struct {
	node     schema.Union
	selector *dom.Element
	value    *dom.Element
	depth    int
}

type listBinding struct {
	node   schema.List
	button *dom.Element
	depth  int
}

// Builder renders schema nodes into dom elements. It remembers which
// containers are dropdowns and lists so they can be re-rendered or extended
// after the initial pass.
type Builder struct {
	cfg    config
	lookup schema.Lookup
	unions map[*dom.Element]*unionBinding
	lists  map[*dom.Element]*listBinding
}

// NewBuilder constructs a Builder resolving references through lookup.
func NewBuilder(lookup schema.Lookup, options ...Option) *Builder {
	return &Builder{
		cfg:    newConfig(options...),
		lookup: lookup,
		unions: make(map[*dom.Element]*unionBinding),
		lists:  make(map[*dom.Element]*listBinding),
	}
}

// Render appends the subtree for node to container, ahead of before when it
// is non-nil.
func (b *Builder) Render(container *dom.Element, node schema.Node, before *dom.Element) error {
	return b.render(container, node, before, 0)
}

func (b *Builder) render(container *dom.Element, node schema.Node, before *dom.Element, depth int) error {
	if depth > b.cfg.maxDepth {
		return fmt.Errorf("%w (%d) at %q", ErrMaxDepth, b.cfg.maxDepth, node.FieldName())
	}

	switch n := node.(type) {
	case schema.Record:
		return b.renderRecord(container, n, before, depth)
	case schema.Union:
		return b.renderUnion(container, n, before, depth)
	case schema.List:
		return b.renderList(container, n, before, depth)
	case schema.Ref:
		resolved, err := b.lookup.Resolve(n)
		if err != nil {
			return fmt.Errorf("form: %w", err)
		}
		return b.render(container, resolved, before, depth+1)
	case schema.Primitive:
		return b.renderPrimitive(container, n, before)
	case nil:
		return fmt.Errorf("form: nil schema node in %q", container.Name())
	default:
		return fmt.Errorf("form: unsupported schema node %T", node)
	}
}

func (b *Builder) renderRecord(container *dom.Element, n schema.Record, before *dom.Element, depth int) error {
	fieldset := dom.New("fieldset").SetAttr("name", n.Name)
	fieldset.Append(dom.NewText("legend", n.Name))
	for _, child := range n.Elements {
		if err := b.render(fieldset, child, nil, depth+1); err != nil {
			return err
		}
	}
	return insertAll(container, before, fieldset, dom.New("br"))
}

func (b *Builder) renderUnion(container *dom.Element, n schema.Union, before *dom.Element, depth int) error {
	if len(n.Options) == 0 {
		return fmt.Errorf("%w: %q", ErrNoOptions, n.Name)
	}

	fieldset := dom.New("fieldset").SetAttr("name", n.Name)
	fieldset.Append(dom.NewText("legend", n.Name))

	selector := dom.New("select").SetAttr("name", UnionSelectName)
	for _, opt := range n.Options {
		selector.Append(dom.NewText("option", opt.Name).SetAttr("value", opt.Name))
	}
	value := dom.New("fieldset").SetAttr("name", UnionValueName)
	fieldset.Append(selector, dom.New("br"), value)

	binding := &unionBinding{node: n, selector: selector, value: value, depth: depth}
	b.unions[fieldset] = binding
	if err := b.selectOption(binding, n.Options[0].Name); err != nil {
		return err
	}
	return insertAll(container, before, fieldset, dom.New("br"))
}

func (b *Builder) selectOption(binding *unionBinding, name string) error {
	opt, ok := binding.node.Option(name)
	if !ok {
		return fmt.Errorf("%w %q in %q", ErrUnknownOption, name, binding.node.Name)
	}

	for _, child := range binding.value.Children() {
		b.forget(child)
	}
	binding.value.Clear()
	binding.selector.SetValue(name)

	if len(opt.Elements) == 0 {
		binding.value.SetAttr("hidden", "")
		return nil
	}
	binding.value.RemoveAttr("hidden")
	for _, child := range opt.Elements {
		if err := b.render(binding.value, child, nil, binding.depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) renderList(container *dom.Element, n schema.List, before *dom.Element, depth int) error {
	if n.Element == nil {
		return fmt.Errorf("%w: %q", ErrNoElement, n.Name)
	}

	fieldset := dom.New("fieldset").SetAttr("name", n.Name).SetAttr(AttrFieldType, FieldTypeList)
	fieldset.Append(dom.NewText("legend", n.Name))
	if err := b.render(fieldset, n.Element, nil, depth+1); err != nil {
		return err
	}
	if err := insertAll(container, before, fieldset, dom.New("br")); err != nil {
		return err
	}

	button := dom.NewText("a", "+").SetAttr("href", "#").SetAttr("class", AddButtonClass)
	fieldset.Append(button)
	b.lists[fieldset] = &listBinding{node: n, button: button, depth: depth}
	return insertAll(container, before, dom.New("br"))
}

func (b *Builder) addItem(binding *listBinding, list *dom.Element) error {
	return b.render(list, binding.node.Element, binding.button, binding.depth+1)
}

func (b *Builder) renderPrimitive(container *dom.Element, n schema.Primitive, before *dom.Element) error {
	if n.Type != schema.TypeHidden {
		label := dom.NewText("label", n.Name+": ").SetAttr("for", n.Name)
		if err := container.InsertBefore(label, before); err != nil {
			return fmt.Errorf("form: insert label %q: %w", n.Name, err)
		}
	}

	input := dom.New("input")
	switch n.Type {
	case schema.TypeFloat:
		input.SetAttr("type", "number").SetAttr("step", "any")
	case schema.TypeChar:
		input.SetAttr("type", "text").SetAttr("maxlength", "1")
	default:
		input.SetAttr("type", n.Type)
	}
	input.SetAttr("name", n.Name)
	if n.Value != "" && n.Type != schema.TypeFloat && n.Type != schema.TypeChar {
		input.SetAttr("value", n.Value)
	}
	input.SetAttr("id", n.Name).SetAttr("placeholder", n.Name)
	if n.Nullable {
		input.SetAttr(AttrNullable, "true")
	}
	if b.cfg.requireNonNullable && !n.Nullable && n.Type != schema.TypeHidden {
		input.SetAttr("required", "")
	}
	return insertAll(container, before, input, dom.New("br"))
}

// forget drops bindings for a subtree that is being discarded.
func (b *Builder) forget(el *dom.Element) {
	el.Walk(func(node *dom.Element) bool {
		delete(b.unions, node)
		delete(b.lists, node)
		return true
	})
}

func (b *Builder) reset() {
	b.unions = make(map[*dom.Element]*unionBinding)
	b.lists = make(map[*dom.Element]*listBinding)
}

func insertAll(container, before *dom.Element, elements ...*dom.Element) error {
	for _, el := range elements {
		if err := container.InsertBefore(el, before); err != nil {
			return fmt.Errorf("form: insert %s into %q: %w", el.Tag, container.Name(), err)
		}
	}
	return nil
}
