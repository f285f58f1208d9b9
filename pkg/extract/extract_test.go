package extract_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-funcform/pkg/dom"
	"github.com/goliatone/go-funcform/pkg/extract"
	"github.com/goliatone/go-funcform/pkg/form"
	"github.com/goliatone/go-funcform/pkg/schema"
	"github.com/goliatone/go-funcform/pkg/testsupport"
)

func TestExtract_FreshForm(t *testing.T) {
	f, err := form.New(testsupport.SampleFunction(t, "createOrder"))
	if err != nil {
		t.Fatalf("new form: %v", err)
	}

	got, err := extract.Extract(f.Root())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	want := map[string]any{
		"customer": map[string]any{"name": "", "email": nil},
		"items":    []any{map[string]any{"sku": "", "qty": ""}},
		"shipping": map[string]any{"name": "Pickup", "value": map[string]any{}},
		"discount": nil,
		"token":    "abc",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_FilledForm(t *testing.T) {
	f, err := form.New(testsupport.SampleFunction(t, "createOrder"))
	if err != nil {
		t.Fatalf("new form: %v", err)
	}
	if err := f.Add(f.Lists()[0]); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if err := f.Select(f.Unions()[0], "Courier"); err != nil {
		t.Fatalf("select courier: %v", err)
	}

	set := func(path, value string) {
		t.Helper()
		field, err := f.Field(path)
		if err != nil {
			t.Fatalf("field %q: %v", path, err)
		}
		field.Element.SetValue(value)
	}
	set("customer.name", "Ada")
	set("customer.email", "ada@example.com")
	set("items.0.sku", "A-1")
	set("items.0.qty", "2")
	set("items.1.sku", "B-7")
	set("shipping.value.address", "Main St")
	set("shipping.value.priority", "x")
	set("discount", "0.5")

	got, err := extract.Extract(f.Root())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	want := map[string]any{
		"customer": map[string]any{"name": "Ada", "email": "ada@example.com"},
		"items": []any{
			map[string]any{"sku": "A-1", "qty": "2"},
			map[string]any{"sku": "B-7", "qty": ""},
		},
		"shipping": map[string]any{
			"name":  "Courier",
			"value": map[string]any{"address": "Main St", "priority": "x"},
		},
		"discount": "0.5",
		"token":    "abc",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}

	if _, err := json.Marshal(got); err != nil {
		t.Fatalf("payload not JSON encodable: %v", err)
	}
}

func TestExtract_CheckboxAndPrimitiveList(t *testing.T) {
	greet, err := form.New(testsupport.SampleFunction(t, "greet"))
	if err != nil {
		t.Fatalf("new form: %v", err)
	}
	polite, err := greet.Field("polite")
	if err != nil {
		t.Fatalf("field: %v", err)
	}
	polite.Element.SetChecked(true)

	got, err := extract.Extract(greet.Root())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"name": "", "age": nil, "polite": true}, got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}

	sum, err := form.New(testsupport.SampleFunction(t, "sum"))
	if err != nil {
		t.Fatalf("new form: %v", err)
	}
	if err := sum.Add(sum.Lists()[0]); err != nil {
		t.Fatalf("add: %v", err)
	}
	first, _ := sum.Field("numbers.0")
	first.Element.SetValue("1.5")

	got, err = extract.Extract(sum.Root())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"numbers": []any{"1.5", ""}}, got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_IgnoresNonDataChildren(t *testing.T) {
	root := dom.New("form").Append(
		dom.NewText("h1", "fn"),
		dom.NewText("label", "x: "),
		dom.New("input").SetAttr("type", "text").SetAttr("name", "x").SetAttr("value", "1"),
		dom.New("select").SetAttr("name", "top"),
		dom.New("input").SetAttr("type", "submit").SetAttr("value", "Submit"),
	)

	got, err := extract.Extract(root)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"x": "1"}, got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_DuplicateNames(t *testing.T) {
	build := func() *dom.Element {
		return dom.New("form").Append(
			dom.New("fieldset").SetAttr("name", "pair").Append(
				dom.New("input").SetAttr("type", "text").SetAttr("name", "v").SetAttr("value", "first"),
				dom.New("input").SetAttr("type", "text").SetAttr("name", "v").SetAttr("value", "second"),
			),
		)
	}

	got, err := extract.Extract(build())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"pair": map[string]any{"v": "second"}}, got); diff != "" {
		t.Fatalf("expected last value to win (-want +got):\n%s", diff)
	}

	_, err = extract.New(extract.WithStrictNames()).Extract(build())
	if !errors.Is(err, extract.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
}

func TestValidate_RequiredInputs(t *testing.T) {
	f, err := form.New(testsupport.SampleFunction(t, "greet"), form.WithRequireNonNullableInputs(true))
	if err != nil {
		t.Fatalf("new form: %v", err)
	}

	missing := extract.Missing(f.Root())
	var names []string
	for _, el := range missing {
		names = append(names, el.Name())
	}
	if diff := cmp.Diff([]string{"name", "polite"}, names); diff != "" {
		t.Fatalf("missing mismatch (-want +got):\n%s", diff)
	}
	if err := extract.Validate(f.Root()); !errors.Is(err, extract.ErrRequired) {
		t.Fatalf("expected ErrRequired, got %v", err)
	}

	name, _ := f.Field("name")
	name.Element.SetValue("Ada")
	polite, _ := f.Field("polite")
	polite.Element.SetChecked(true)
	if err := extract.Validate(f.Root()); err != nil {
		t.Fatalf("expected form to validate, got %v", err)
	}
}

func TestValidate_SkipsHiddenInputs(t *testing.T) {
	fn := schema.Function{
		Name: "resume",
		Params: []schema.Node{
			schema.Primitive{Name: "session", Type: schema.TypeHidden},
			schema.Primitive{Name: "note", Type: schema.TypeText},
		},
	}
	f, err := form.New(fn, form.WithRequireNonNullableInputs(true))
	if err != nil {
		t.Fatalf("new form: %v", err)
	}

	session, err := f.Field("session")
	if err != nil {
		t.Fatalf("field session: %v", err)
	}
	if session.Element.HasAttr("required") {
		t.Fatalf("hidden input should not carry required: %s", session.Element.String())
	}

	// a required attribute set by hand is ignored as well
	session.Element.SetAttr("required", "")
	note, _ := f.Field("note")
	note.Element.SetValue("hi")
	if err := extract.Validate(f.Root()); err != nil {
		t.Fatalf("expected hidden input to be skipped, got %v", err)
	}
	if missing := extract.Missing(f.Root()); len(missing) != 0 {
		t.Fatalf("expected no missing inputs, got %d", len(missing))
	}
}
