package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-funcform/pkg/form"
	"github.com/goliatone/go-funcform/pkg/render"
	"github.com/goliatone/go-funcform/pkg/testsupport"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	confirm      []bool
	passwords    []string
	infoMessages []string
	messages     []string
	helps        []string
	inputPos     int
	selectPos    int
	confirmPos   int
	passPos      int
	err          error
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted for " + cfg.Message)
	}
	s.messages = append(s.messages, cfg.Message)
	s.helps = append(s.helps, cfg.Help)
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Password(_ context.Context, _ InputConfig) (string, error) {
	if s.passPos >= len(s.passwords) {
		return "", errors.New("no password scripted")
	}
	val := s.passwords[s.passPos]
	s.passPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted for " + cfg.Message)
	}
	s.messages = append(s.messages, cfg.Message)
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	s.messages = append(s.messages, cfg.Message)
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func TestRender_PrimitivesWithValidation(t *testing.T) {
	driver := &stubDriver{
		inputs:  []string{"Ada", "x", "42"},
		confirm: []bool{true},
	}
	r, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	out, err := r.Render(context.Background(), newForm(t, "greet"), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if diff := cmp.Diff(`{
  "age": "42",
  "name": "Ada",
  "polite": true
}`, string(out)); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
	want := []string{"greet", "! age: not a valid number"}
	if diff := cmp.Diff(want, driver.infoMessages); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
}

func TestFill_ListsAndDropdowns(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Ada", "", "A-1", "2", "B-2", "3", "Main St", "ab", "x", "0.5"},
		confirm:   []bool{true, false},
		selectIdx: []int{1},
	}
	r, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	got, err := r.Fill(context.Background(), newForm(t, "createOrder"), render.RenderOptions{
		Errors: map[string][]string{"items.0.qty": {"must be positive"}},
	})
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	want := map[string]any{
		"customer": map[string]any{"name": "Ada", "email": nil},
		"items": []any{
			map[string]any{"sku": "A-1", "qty": "2"},
			map[string]any{"sku": "B-2", "qty": "3"},
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

	wantPrompts := []string{
		"customer.name", "customer.email",
		"items.0.sku", "items.0.qty", "Add another items item?",
		"items.1.sku", "items.1.qty", "Add another items item?",
		"shipping",
		"shipping.value.address", "shipping.value.priority", "shipping.value.priority",
		"discount",
	}
	if diff := cmp.Diff(wantPrompts, driver.messages); diff != "" {
		t.Fatalf("prompt order mismatch (-want +got):\n%s", diff)
	}
	if driver.helps[3] != "must be positive" {
		t.Fatalf("expected error as help on items.0.qty, got %q", driver.helps[3])
	}
}

func TestRender_YAMLAndMaxItems(t *testing.T) {
	driver := &stubDriver{inputs: []string{"1.5", "2"}, confirm: []bool{true}}
	r, err := New(WithPromptDriver(driver), WithOutputFormat(OutputFormatYAML), WithMaxItems(2))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := r.Render(context.Background(), newForm(t, "sum"), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(string(out), `- "1.5"`) || !strings.Contains(string(out), `- "2"`) {
		t.Fatalf("unexpected yaml:\n%s", out)
	}
	if driver.confirmPos != 1 {
		t.Fatalf("expected the cap to stop asking, got %d confirms", driver.confirmPos)
	}
	if r.ContentType() != "application/yaml" {
		t.Fatalf("unexpected content type %q", r.ContentType())
	}
}

func TestRender_Errors(t *testing.T) {
	r, err := New(WithPromptDriver(&stubDriver{err: ErrAborted}))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if _, err := r.Render(context.Background(), newForm(t, "greet"), render.RenderOptions{}); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
	if _, err := r.Render(context.Background(), nil, render.RenderOptions{}); !errors.Is(err, ErrNoForm) {
		t.Fatalf("expected ErrNoForm, got %v", err)
	}

	driver := &stubDriver{inputs: []string{"", "", "", ""}, confirm: []bool{false}, selectIdx: []int{7}}
	bad, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if _, err := bad.Render(context.Background(), newForm(t, "createOrder"), render.RenderOptions{}); !errors.Is(err, ErrInvalidChoice) {
		t.Fatalf("expected ErrInvalidChoice, got %v", err)
	}

	if _, err := New(WithOutputFormat("xml")); err == nil {
		t.Fatalf("expected unsupported format error")
	}
}

func newForm(t *testing.T, name string) *form.Form {
	t.Helper()
	f, err := form.New(testsupport.SampleFunction(t, name))
	if err != nil {
		t.Fatalf("new form %s: %v", name, err)
	}
	return f
}
