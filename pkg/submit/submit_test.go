package submit_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/goliatone/go-funcform/pkg/submit"
)

func TestSubmit_PostsJSONToFunctionPath(t *testing.T) {
	var (
		gotPath, gotType, gotID string
		gotBody                 map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		gotID = r.Header.Get(submit.HeaderRequestID)
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_, _ = io.WriteString(w, "hello Ada")
	}))
	defer srv.Close()

	client, err := submit.New(srv.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	result, err := client.Submit(context.Background(), "greet", map[string]any{"name": "Ada", "age": nil})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if gotPath != "/greet" {
		t.Fatalf("expected /greet, got %q", gotPath)
	}
	if gotType != "application/json" {
		t.Fatalf("unexpected content type %q", gotType)
	}
	if _, err := uuid.Parse(gotID); err != nil || gotID != result.RequestID {
		t.Fatalf("expected request id %q to be a uuid echoed in the result (%q)", gotID, result.RequestID)
	}
	if diff := cmp.Diff(map[string]any{"name": "Ada", "age": nil}, gotBody); diff != "" {
		t.Fatalf("body mismatch (-want +got):\n%s", diff)
	}
	if result.Status != http.StatusOK || result.Body != "hello Ada" || !result.OK() {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestSubmit_NonSuccessIsAResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such function", http.StatusNotFound)
	}))
	defer srv.Close()

	client, err := submit.New(srv.URL + "/api/")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	result, err := client.Submit(context.Background(), "missing", map[string]any{})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.OK() || result.Status != http.StatusNotFound || result.Body != "no such function\n" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestSubmit_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client, err := submit.New(url)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Submit(context.Background(), "greet", map[string]any{}); err == nil {
		t.Fatalf("expected transport error")
	}
	if _, err := client.Submit(context.Background(), "", nil); !errors.Is(err, submit.ErrNoFunction) {
		t.Fatalf("expected ErrNoFunction, got %v", err)
	}
}

func TestEndpoint(t *testing.T) {
	tests := []struct {
		base string
		fn   string
		want string
	}{
		{base: "http://localhost:8080", fn: "greet", want: "http://localhost:8080/greet"},
		{base: "http://localhost:8080/", fn: "greet", want: "http://localhost:8080/greet"},
		{base: "http://backend/api/", fn: "create order", want: "http://backend/api/create%20order"},
	}
	for _, tt := range tests {
		client, err := submit.New(tt.base)
		if err != nil {
			t.Fatalf("new client %q: %v", tt.base, err)
		}
		if got := client.Endpoint(tt.fn); got != tt.want {
			t.Fatalf("Endpoint(%q) from %q = %q, want %q", tt.fn, tt.base, got, tt.want)
		}
	}

	if _, err := submit.New("localhost"); err == nil {
		t.Fatalf("expected relative base to be rejected")
	}
}
