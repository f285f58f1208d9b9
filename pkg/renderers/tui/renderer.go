package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-funcform/pkg/dom"
	"github.com/goliatone/go-funcform/pkg/extract"
	"github.com/goliatone/go-funcform/pkg/form"
	"github.com/goliatone/go-funcform/pkg/render"
	"github.com/goliatone/go-funcform/pkg/validation"
)

// Name identifies the renderer in a render.Registry.
const Name = "tui"

var (
	numberPattern = regexp.MustCompile(validation.NumberPattern)
	floatPattern  = regexp.MustCompile(validation.FloatPattern)
)

// Renderer fills a form by prompting in the terminal, then serializes the
// extracted payload. Unlike page renderers it mutates the form: dropdown
// choices and list growth are applied to the tree as the user answers.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
	extractor    *extract.Extractor
	maxItems     int
	theme        Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		maxItems:     DefaultMaxItems,
		theme:        Theme{ErrorPrefix: "! "},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	if r.extractor == nil {
		r.extractor = extract.New()
	}
	switch r.outputFormat {
	case OutputFormatJSON, OutputFormatYAML:
	default:
		return nil, fmt.Errorf("tui: unsupported output format %q", r.outputFormat)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return Name
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	if r.outputFormat == OutputFormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

// Render walks the form in document order, prompting for every visible
// control, and returns the serialized payload. Messages in options.Errors are
// shown as prompt help on the fields they name.
func (r *Renderer) Render(ctx context.Context, f *form.Form, options render.RenderOptions) ([]byte, error) {
	payload, err := r.Fill(ctx, f, options)
	if err != nil {
		return nil, err
	}
	return r.serialize(payload)
}

// Fill prompts through f and returns the extracted payload.
func (r *Renderer) Fill(ctx context.Context, f *form.Form, options render.RenderOptions) (map[string]any, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f == nil {
		return nil, ErrNoForm
	}

	s := &session{
		Renderer: r,
		form:     f,
		errors:   render.MapErrors(f, options.Errors).Fields,
	}
	if err := s.info(ctx, f.Name()); err != nil {
		return nil, err
	}
	if err := s.fill(ctx, f.Root(), "", false); err != nil {
		return nil, err
	}

	payload, err := r.extractor.Extract(f.Root())
	if err != nil {
		return nil, fmt.Errorf("tui: extract: %w", err)
	}
	return payload, nil
}

type session struct {
	*Renderer
	form   *form.Form
	errors map[string][]string
}

func (s *session) fill(ctx context.Context, container *dom.Element, prefix string, inList bool) error {
	index := 0
	for i := 0; i < container.Len(); i++ {
		child := container.Child(i)

		if inList && child.Is("a") && child.GetAttr("class") == form.AddButtonClass {
			more, err := s.askMore(ctx, prefix, index)
			if err != nil {
				return err
			}
			if !more {
				continue
			}
			if err := s.form.Add(container); err != nil {
				return fmt.Errorf("tui: add %q: %w", prefix, err)
			}
			// the new item sits where the button was; revisit this slot
			i--
			continue
		}

		if !isField(child) {
			continue
		}
		segment := child.Name()
		if inList {
			segment = strconv.Itoa(index)
			index++
		}
		path := join(prefix, segment)

		var err error
		switch {
		case child.Is("fieldset") && s.form.IsUnion(child):
			err = s.fillUnion(ctx, child, path)
		case child.Is("fieldset"):
			err = s.fill(ctx, child, path, s.form.IsList(child))
		case child.Is("input"):
			err = s.fillInput(ctx, child, path)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *session) fillUnion(ctx context.Context, el *dom.Element, path string) error {
	options, err := s.form.Options(el)
	if err != nil {
		return err
	}
	current, err := s.form.Selected(el)
	if err != nil {
		return err
	}
	choice, err := s.driver.Select(ctx, SelectConfig{
		Message:      path,
		Options:      options,
		DefaultIndex: indexOf(options, current),
		Help:         s.help(path + "." + form.UnionSelectName),
	})
	if err != nil {
		return err
	}
	if choice < 0 || choice >= len(options) {
		return fmt.Errorf("%w %d for %q", ErrInvalidChoice, choice, path)
	}
	if options[choice] != current {
		if err := s.form.Select(el, options[choice]); err != nil {
			return fmt.Errorf("tui: select %q: %w", path, err)
		}
	}
	for _, child := range el.Children() {
		if child.Is("fieldset") && child.Name() == form.UnionValueName {
			return s.fill(ctx, child, join(path, form.UnionValueName), false)
		}
	}
	return nil
}

func (s *session) fillInput(ctx context.Context, el *dom.Element, path string) error {
	switch el.Type() {
	case "submit", "hidden":
		return nil
	case "checkbox":
		checked, err := s.driver.Confirm(ctx, ConfirmConfig{
			Message: path,
			Default: el.Checked(),
			Help:    s.help(path),
		})
		if err != nil {
			return err
		}
		el.SetChecked(checked)
		return nil
	}

	cfg := InputConfig{Message: path, Default: el.Value(), Help: s.help(path)}
	for {
		var (
			value string
			err   error
		)
		if el.Type() == "password" {
			value, err = s.driver.Password(ctx, cfg)
		} else {
			value, err = s.driver.Input(ctx, cfg)
		}
		if err != nil {
			return err
		}
		problem := checkInput(el, value)
		if problem == "" {
			el.SetValue(value)
			return nil
		}
		if err := s.info(ctx, s.theme.ErrorPrefix+path+": "+problem); err != nil {
			return err
		}
	}
}

func (s *session) askMore(ctx context.Context, path string, count int) (bool, error) {
	if count >= s.maxItems {
		return false, nil
	}
	return s.driver.Confirm(ctx, ConfirmConfig{
		Message: fmt.Sprintf("Add another %s item?", path),
		Help:    s.help(path),
	})
}

func (s *session) help(path string) string {
	return strings.Join(s.errors[path], "; ")
}

func (s *session) info(ctx context.Context, msg string) error {
	return s.driver.Info(ctx, s.theme.InfoPrefix+msg)
}

// checkInput mirrors the constraints a browser enforces on the control and
// returns a message for the first one violated.
func checkInput(el *dom.Element, value string) string {
	if value == "" {
		if el.HasAttr("required") {
			return "a value is required"
		}
		return ""
	}
	if el.Type() == "number" {
		pattern := numberPattern
		if el.GetAttr("step") == "any" {
			pattern = floatPattern
		}
		if !pattern.MatchString(value) {
			return "not a valid number"
		}
	}
	if raw := el.GetAttr("maxlength"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && utf8.RuneCountInString(value) > limit {
			return fmt.Sprintf("at most %d character(s)", limit)
		}
	}
	return ""
}

func (r *Renderer) serialize(payload map[string]any) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatYAML:
		out, err := yaml.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("tui: encode yaml: %w", err)
		}
		return out, nil
	default:
		out, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("tui: encode json: %w", err)
		}
		return out, nil
	}
}

func isField(el *dom.Element) bool {
	return el.Is("fieldset") || (el.Is("input") && el.Type() != "submit")
}

func join(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return prefix + "." + segment
}
