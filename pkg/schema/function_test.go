package schema_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-funcform/pkg/schema"
)

func TestLookupResolve_RenamesWithoutMutatingEntry(t *testing.T) {
	person := schema.Record{Name: "Person", Elements: []schema.Node{
		schema.Primitive{Name: "name", Type: schema.TypeText},
	}}
	lookup := schema.NewLookup(map[string]schema.Node{"Person": person})

	first, err := lookup.Resolve(schema.Ref{Name: "buyer", Ref: "Person"})
	if err != nil {
		t.Fatalf("resolve buyer: %v", err)
	}
	second, err := lookup.Resolve(schema.Ref{Name: "seller", Ref: "Person"})
	if err != nil {
		t.Fatalf("resolve seller: %v", err)
	}

	if first.FieldName() != "buyer" || second.FieldName() != "seller" {
		t.Fatalf("unexpected names %q, %q", first.FieldName(), second.FieldName())
	}
	stored, _ := lookup.Get("Person")
	if diff := cmp.Diff(person, stored); diff != "" {
		t.Fatalf("lookup entry mutated (-want +got):\n%s", diff)
	}
}

func TestLookupResolve_FollowsChains(t *testing.T) {
	lookup := schema.NewLookup(map[string]schema.Node{
		"Alias": schema.Ref{Name: "Alias", Ref: "Real"},
		"Real":  schema.Primitive{Name: "Real", Type: schema.TypeCheckbox},
	})

	node, err := lookup.Resolve(schema.Ref{Name: "flag", Ref: "Alias"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if diff := cmp.Diff(schema.Primitive{Name: "flag", Type: schema.TypeCheckbox}, node); diff != "" {
		t.Fatalf("resolved mismatch (-want +got):\n%s", diff)
	}
}

func TestLookupResolve_Errors(t *testing.T) {
	lookup := schema.NewLookup(map[string]schema.Node{
		"Loop": schema.Ref{Name: "Loop", Ref: "Loop"},
	})

	if _, err := lookup.Resolve(schema.Ref{Name: "x", Ref: "Missing"}); !errors.Is(err, schema.ErrUnknownRef) {
		t.Fatalf("expected ErrUnknownRef for missing entry, got %v", err)
	}
	_, err := lookup.Resolve(schema.Ref{Name: "x", Ref: "Loop"})
	if !errors.Is(err, schema.ErrRefCycle) {
		t.Fatalf("expected ErrRefCycle for cyclic chain, got %v", err)
	}
	if errors.Is(err, schema.ErrUnknownRef) {
		t.Fatalf("cyclic chain should not report an unknown reference: %v", err)
	}
}

func TestFunctionValidate(t *testing.T) {
	fn := schema.Function{
		Name: "broken",
		Params: []schema.Node{
			schema.Union{Name: "choice"},
			schema.List{Name: "rows"},
			schema.Record{Name: "nested", Elements: []schema.Node{
				schema.Ref{Name: "who", Ref: "Nobody"},
			}},
		},
	}

	err := fn.Validate()
	if !errors.Is(err, schema.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if !errors.Is(err, schema.ErrUnknownRef) {
		t.Fatalf("expected wrapped ErrUnknownRef, got %v", err)
	}
	for _, fragment := range []string{"broken.choice", "broken.rows", "broken.nested.who"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("expected %q in error, got %v", fragment, err)
		}
	}
}

func TestRegistry_DuplicatesReplaceInPlace(t *testing.T) {
	registry := schema.NewRegistry(
		schema.Function{Name: "a"},
		schema.Function{Name: "b"},
		schema.Function{Name: "a", Params: []schema.Node{schema.Primitive{Name: "x", Type: "text"}}},
	)

	if diff := cmp.Diff([]string{"a", "b"}, registry.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	fn, err := registry.Function("a")
	if err != nil {
		t.Fatalf("function: %v", err)
	}
	if len(fn.Params) != 1 {
		t.Fatalf("expected replacement to win, got %d params", len(fn.Params))
	}
	if _, err := registry.Function("zzz"); !errors.Is(err, schema.ErrUnknownFunction) {
		t.Fatalf("expected ErrUnknownFunction, got %v", err)
	}
}
