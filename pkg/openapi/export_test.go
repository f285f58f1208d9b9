package openapi_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-funcform/pkg/openapi"
	"github.com/goliatone/go-funcform/pkg/schema"
	"github.com/goliatone/go-funcform/pkg/testsupport"
)

func TestExport_ValidDocument(t *testing.T) {
	doc, err := openapi.Export(testsupport.SampleRegistry(t), openapi.WithTitle("orders"), openapi.WithServer("http://localhost:9000"))
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if err := openapi.Validate(testsupport.Context(), doc); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if doc.Info.Title != "orders" || len(doc.Servers) != 1 {
		t.Fatalf("options not applied: %+v %+v", doc.Info, doc.Servers)
	}

	op := doc.Paths.Find("/createOrder").Post
	if op == nil || op.OperationID != "createOrder" {
		t.Fatalf("expected POST /createOrder, got %+v", op)
	}
	body := op.RequestBody.Value.Content.Get("application/json").Schema.Value
	customer := body.Properties["customer"]
	if customer.Ref != "#/components/schemas/createOrder.Person" || customer.Value == nil {
		t.Fatalf("expected resolved component ref, got %q", customer.Ref)
	}
	if diff := cmp.Diff([]string{"customer", "discount", "items", "shipping", "token"}, body.Required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}
	if !body.Properties["discount"].Value.Nullable {
		t.Fatalf("expected nullable discount")
	}
	if got := len(body.Properties["shipping"].Value.OneOf); got != 2 {
		t.Fatalf("expected two shipping variants, got %d", got)
	}
	if resp := op.Responses.Status(200); resp == nil || resp.Value.Content.Get("text/plain") == nil {
		t.Fatalf("expected text/plain 200 response")
	}
}

func TestExport_RoundTripsThroughLoader(t *testing.T) {
	tree := schema.Function{
		Name:   "tree",
		Params: []schema.Node{schema.Ref{Name: "root", Ref: "Node"}},
		Lookup: schema.NewLookup(map[string]schema.Node{
			"Node": schema.Record{Name: "Node", Elements: []schema.Node{
				schema.Primitive{Name: "label", Type: schema.TypeText},
				schema.List{Name: "children", Element: schema.Ref{Name: "child", Ref: "Node"}},
			}},
			"Alias": schema.Ref{Name: "Alias", Ref: "Node"},
		}),
	}
	reg := schema.NewRegistry(testsupport.SampleFunction(t, "greet"), tree)

	doc, err := openapi.Export(reg)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	ops, err := openapi.Operations(testsupport.Context(), raw)
	if err != nil {
		t.Fatalf("operations: %v", err)
	}
	if diff := cmp.Diff(map[string]string{"/greet": "greet", "/tree": "tree"}, ops); diff != "" {
		t.Fatalf("operations mismatch (-want +got):\n%s", diff)
	}
}

func TestOperations_RejectsEmpty(t *testing.T) {
	if _, err := openapi.Operations(testsupport.Context(), nil); err == nil {
		t.Fatalf("expected error for empty payload")
	}
}
