package container

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/braude/garage/pkg/types"
)

// Form is the create/edit workflow over one container. It keeps a draft
// entity that is edited field by field and submitted as a create or update.
type Form[E any, ID comparable] struct {
	c     *Container[E, ID]
	draft E
	isNew bool
}

// OpenForm starts a form. With a nil id the container is Reset and the draft
// is empty; otherwise the entity is loaded with Get and becomes the draft.
func OpenForm[E any, ID comparable](ctx context.Context, c *Container[E, ID], id *ID) (*Form[E, ID], error) {
	f := &Form[E, ID]{c: c}
	if id == nil {
		c.Reset()
		f.isNew = true
		return f, nil
	}
	e, err := c.Get(ctx, *id)
	if err != nil {
		return nil, err
	}
	f.draft = e
	return f, nil
}

// IsNew reports whether Submit will create rather than update.
func (f *Form[E, ID]) IsNew() bool { return f.isNew }

// Draft returns the entity being edited.
func (f *Form[E, ID]) Draft() E { return f.draft }

// Set assigns one field, named by its JSON key, from user text. The text is
// taken as a JSON value when it decodes into the field, and as a string
// otherwise. A field that currently holds a string takes the text literally
// first, so "null" stays a string there. An empty value clears the field.
func (f *Form[E, ID]) Set(field, raw string) error {
	field = strings.TrimSpace(field)
	if field == "" {
		return fmt.Errorf("set field: empty name: %w", types.ErrUnknownField)
	}
	if field == "id" {
		return fmt.Errorf("set field id: read-only: %w", types.ErrInvalidData)
	}

	candidates := []json.RawMessage{json.RawMessage("null")}
	if raw != "" {
		quoted, _ := json.Marshal(raw)
		candidates = []json.RawMessage{quoted}
		if json.Valid([]byte(raw)) {
			candidates = []json.RawMessage{json.RawMessage(raw), quoted}
			if f.holdsString(field) {
				candidates = []json.RawMessage{quoted, json.RawMessage(raw)}
			}
		}
	}

	var lastErr error
	for _, v := range candidates {
		next, err := f.assign(field, v)
		if err == nil {
			f.draft = next
			return nil
		}
		if errors.Is(err, types.ErrUnknownField) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("set field %s: %v: %w", field, lastErr, types.ErrInvalidData)
}

// holdsString reports whether the draft's current JSON value for field is a
// string.
func (f *Form[E, ID]) holdsString(field string) bool {
	fields, err := f.fields()
	if err != nil {
		return false
	}
	v := bytes.TrimSpace(fields[field])
	return len(v) > 0 && v[0] == '"'
}

func (f *Form[E, ID]) fields() (map[string]json.RawMessage, error) {
	raw, err := json.Marshal(f.draft)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// assign returns a copy of the draft with field replaced by v.
func (f *Form[E, ID]) assign(field string, v json.RawMessage) (E, error) {
	var next E
	fields, err := f.fields()
	if err != nil {
		return next, err
	}
	fields[field] = v
	raw, err := json.Marshal(fields)
	if err != nil {
		return next, err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&next); err != nil {
		if strings.HasPrefix(err.Error(), "json: unknown field") {
			return next, fmt.Errorf("set field %s: %w", field, types.ErrUnknownField)
		}
		return next, err
	}
	return next, nil
}

// Submit creates or updates the draft. It returns the stored entity and
// whether the container reported success, consuming the success flag.
func (f *Form[E, ID]) Submit(ctx context.Context) (E, bool, error) {
	var (
		saved E
		err   error
	)
	if f.isNew {
		saved, err = f.c.Create(ctx, f.draft)
	} else {
		saved, err = f.c.Update(ctx, f.draft)
	}
	if err != nil {
		return saved, false, err
	}
	ok := f.c.ConsumeUpdateSuccess()
	f.draft = saved
	f.isNew = false
	return saved, ok, nil
}
