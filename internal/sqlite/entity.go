package sqlite

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/braude/garage/pkg/types"
)

// fieldKind controls how a column is bound, compared and decoded.
type fieldKind int

const (
	kindText fieldKind = iota
	kindInt
	kindDate  // ISO date stored as TEXT; compares lexically.
	kindMoney // Decimal stored as TEXT; compared as REAL.
)

// field maps one JSON field of an entity to its column.
type field struct {
	json   string
	column string
	kind   fieldKind
}

// childRef is a nullable reference held by another table.
type childRef struct {
	resource string
	column   string
}

// entityDef describes how one entity type is stored. fields[0] is the id.
type entityDef struct {
	resource  string
	table     string
	file      string
	fields    []field
	search    []string          // Columns matched by free-text search.
	parents   map[string]string // Reference column to parent resource.
	children  []childRef        // Cleared when a row of this table is deleted.
	newEntity func() any        // Returns a pointer to a zero entity.
	accepts   func(any) bool    // Reports whether data is this entity's pointer type.
}

func (d *entityDef) columnList() string {
	cols := make([]string, len(d.fields))
	for i, f := range d.fields {
		cols[i] = f.column
	}
	return strings.Join(cols, ", ")
}

func (d *entityDef) fieldByJSON(name string) (field, bool) {
	for _, f := range d.fields {
		if f.json == name {
			return f, true
		}
	}
	return field{}, false
}

// fieldNames returns the JSON names of every field, for criteria validation.
func (d *entityDef) fieldNames() []string {
	names := make([]string, len(d.fields))
	for i, f := range d.fields {
		names[i] = f.json
	}
	return names
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scan reads one row into a new entity. Column values are assembled into a
// JSON object and decoded through the entity's own JSON mapping.
func (d *entityDef) scan(row rowScanner) (any, error) {
	vals := make([]any, len(d.fields))
	ptrs := make([]any, len(d.fields))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := row.Scan(ptrs...); err != nil {
		return nil, err
	}

	obj := make(map[string]any, len(d.fields))
	for i, f := range d.fields {
		switch v := vals[i].(type) {
		case nil:
		case []byte:
			obj[f.json] = string(v)
		default:
			obj[f.json] = v
		}
	}
	raw, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("encode %s row: %w", d.resource, err)
	}
	e := d.newEntity()
	if err := json.Unmarshal(raw, e); err != nil {
		return nil, fmt.Errorf("decode %s row: %w", d.resource, err)
	}
	return e, nil
}

// values returns the column values of data in field order, id first. A nil
// id is returned as nil.
func (d *entityDef) values(data any) ([]any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", d.resource, err)
	}
	return d.valuesFromJSON(raw)
}

func (d *entityDef) valuesFromJSON(raw []byte) ([]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("decode %s: %w", d.resource, types.ErrInvalidData)
	}

	out := make([]any, len(d.fields))
	for i, f := range d.fields {
		v, ok := obj[f.json]
		if !ok || v == nil {
			if f.kind == kindText {
				out[i] = ""
			}
			continue
		}
		bound, err := bindValue(f, v)
		if err != nil {
			return nil, err
		}
		out[i] = bound
	}
	return out, nil
}

// bindValue converts a decoded JSON value to the column's storage type.
func bindValue(f field, v any) (any, error) {
	switch f.kind {
	case kindInt:
		n, ok := v.(json.Number)
		if !ok {
			return nil, fmt.Errorf("field %s: expected integer: %w", f.json, types.ErrInvalidData)
		}
		i, err := n.Int64()
		if err != nil {
			return nil, fmt.Errorf("field %s: expected integer: %w", f.json, types.ErrInvalidData)
		}
		return i, nil
	case kindMoney:
		switch m := v.(type) {
		case json.Number:
			return m.String(), nil
		case string:
			if _, err := types.NewMoney(m); err != nil {
				return nil, fmt.Errorf("field %s: %v: %w", f.json, err, types.ErrInvalidData)
			}
			return m, nil
		}
		return nil, fmt.Errorf("field %s: expected number: %w", f.json, types.ErrInvalidData)
	case kindDate:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("field %s: expected date: %w", f.json, types.ErrInvalidData)
		}
		if _, err := types.ParseDate(s); err != nil {
			return nil, fmt.Errorf("field %s: %v: %w", f.json, err, types.ErrInvalidData)
		}
		return s, nil
	default:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("field %s: expected string: %w", f.json, types.ErrInvalidData)
		}
		return s, nil
	}
}

// defs lists the entity definitions in load order: parents before children.
var defs = []*entityDef{clientsDef, carsDef, carServicesDef}

func defByResource(name string) (*entityDef, bool) {
	for _, d := range defs {
		if d.resource == name {
			return d, true
		}
	}
	return nil, false
}
