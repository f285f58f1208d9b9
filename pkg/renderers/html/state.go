package html

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-funcform/pkg/form"
)

// DefaultMaxItems caps how many list items a single Restore call may add,
// summed over every list in the form.
const DefaultMaxItems = 256

var (
	// ErrUnknownAction is returned for unparseable ActionField values.
	ErrUnknownAction = errors.New("html: unknown action")
	// ErrTooManyItems is returned when a posted list count exceeds the cap.
	ErrTooManyItems = errors.New("html: too many list items")
)

// ActionKind enumerates what a posted form asks for.
type ActionKind string

const (
	ActionSubmit ActionKind = "submit"
	ActionAdd    ActionKind = "add"
	ActionSelect ActionKind = "select"
)

// Action is a parsed ActionField value.
type Action struct {
	Kind ActionKind
	Path string
}

// ParseAction decodes an ActionField value. An empty value or the submit
// control's label means submit.
func ParseAction(raw string) (Action, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, string(ActionSubmit)) {
		return Action{Kind: ActionSubmit}, nil
	}
	kind, path, ok := strings.Cut(raw, ":")
	if !ok || path == "" {
		return Action{}, fmt.Errorf("%w %q", ErrUnknownAction, raw)
	}
	switch ActionKind(kind) {
	case ActionAdd, ActionSelect:
		return Action{Kind: ActionKind(kind), Path: path}, nil
	default:
		return Action{}, fmt.Errorf("%w %q", ErrUnknownAction, raw)
	}
}

// Apply performs an add or select action on a restored form. Selections are
// already applied by Restore, so select only checks the target. Submit is a
// no-op here.
func Apply(f *form.Form, action Action) error {
	switch action.Kind {
	case ActionSubmit:
		return nil
	case ActionAdd:
		field, err := f.Field(action.Path)
		if err != nil {
			return fmt.Errorf("html: add %q: %w", action.Path, err)
		}
		return f.Add(field.Element)
	case ActionSelect:
		field, err := f.Field(action.Path)
		if err != nil {
			return fmt.Errorf("html: select %q: %w", action.Path, err)
		}
		if !f.IsUnion(field.Element) {
			return fmt.Errorf("html: select %q: %w", action.Path, form.ErrNotUnion)
		}
		return nil
	default:
		return fmt.Errorf("%w %q", ErrUnknownAction, action.Kind)
	}
}

// Restore rebuilds the state of a decorated form from its posted values:
// dropdown selections first, then list lengths, then control values.
// Restore expects a freshly rendered form. When a dropdown's posted option
// differs from the one it was served with, values posted under it are
// dropped, as switching options clears the sub-form.
func Restore(f *form.Form, values url.Values) error {
	return RestoreWithLimit(f, values, DefaultMaxItems)
}

// RestoreWithLimit is Restore with an explicit item budget. maxItems bounds
// the total number of items added across all lists, nested ones included.
func RestoreWithLimit(f *form.Form, values url.Values, maxItems int) error {
	st := &restoreState{
		switched: make(map[string]bool),
		settled:  make(map[string]bool),
		budget:   maxItems,
	}

	// each pass settles at most one container, then rescans in document
	// order so outer containers settle before their descendants
	for {
		mutated, err := st.step(f, values)
		if err != nil {
			return err
		}
		if !mutated {
			break
		}
	}

	for _, field := range f.Fields() {
		if field.Kind != form.FieldInput || underSwitched(field.Path, st.switched) {
			continue
		}
		el := field.Element
		if el.Type() == "checkbox" {
			el.SetChecked(values.Has(field.Path))
			continue
		}
		if posted, ok := values[field.Path]; ok && len(posted) > 0 {
			el.SetValue(posted[0])
		}
	}
	return nil
}

type restoreState struct {
	switched map[string]bool
	settled  map[string]bool
	budget   int
	added    int
}

func (st *restoreState) step(f *form.Form, values url.Values) (bool, error) {
	switched, settled := st.switched, st.settled
	for _, field := range f.Fields() {
		if settled[field.Path] {
			continue
		}
		switch field.Kind {
		case form.FieldUnion:
			settled[field.Path] = true
			if underSwitched(field.Path, switched) {
				continue
			}
			want := values.Get(field.Path + "." + form.UnionSelectName)
			current, err := f.Selected(field.Element)
			if err != nil {
				return false, err
			}
			if want == "" {
				continue
			}
			if served := values.Get(field.Path + ServedSuffix); served != "" && served != want {
				switched[field.Path] = true
			}
			if want == current {
				continue
			}
			if err := f.Select(field.Element, want); err != nil {
				return false, fmt.Errorf("html: restore %q: %w", field.Path, err)
			}
			return true, nil

		case form.FieldList:
			raw := values.Get(field.Path + CountSuffix)
			if raw == "" || underSwitched(field.Path, switched) {
				settled[field.Path] = true
				continue
			}
			want, err := strconv.Atoi(raw)
			if err != nil || want < 0 {
				return false, fmt.Errorf("html: restore %q: invalid count %q", field.Path, raw)
			}
			have := itemCount(field.Element)
			settled[field.Path] = true
			if have >= want {
				continue
			}
			if want-have > st.budget-st.added {
				return false, fmt.Errorf("%w: %q wants %d more (%d of %d used)", ErrTooManyItems, field.Path, want-have, st.added, st.budget)
			}
			for ; have < want; have++ {
				if err := f.Add(field.Element); err != nil {
					return false, fmt.Errorf("html: restore %q: %w", field.Path, err)
				}
				st.added++
			}
			return true, nil
		}
	}
	return false, nil
}

func underSwitched(path string, switched map[string]bool) bool {
	for union := range switched {
		if strings.HasPrefix(path, union+"."+form.UnionValueName+".") {
			return true
		}
	}
	return false
}
