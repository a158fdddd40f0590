package types

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// Operator is a criteria comparison applied to one field.
type Operator string

// Supported criteria operators.
const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "notEquals"
	OpContains    Operator = "contains"
	OpSpecified   Operator = "specified"
	OpGreaterThan Operator = "greaterThan"
	OpLessThan    Operator = "lessThan"
)

var validOperators = map[Operator]bool{
	OpEquals:      true,
	OpNotEquals:   true,
	OpContains:    true,
	OpSpecified:   true,
	OpGreaterThan: true,
	OpLessThan:    true,
}

// reservedParams are query parameters that never denote criteria.
var reservedParams = map[string]bool{
	"page":        true,
	"size":        true,
	"sort":        true,
	"query":       true,
	"cacheBuster": true,
}

// Criterion filters a collection on one field, encoded on the wire as
// "<field>.<op>=<value>".
type Criterion struct {
	Field string
	Op    Operator
	Value string
}

// Criteria is a conjunction of criterions.
type Criteria []Criterion

// Values encodes c as query parameters.
func (c Criteria) Values() url.Values {
	v := url.Values{}
	for _, cr := range c {
		v.Add(cr.Field+"."+string(cr.Op), cr.Value)
	}
	return v
}

// ParseCriterion parses the "field.op=value" form used on the command line.
func ParseCriterion(s string) (Criterion, error) {
	key, value, ok := strings.Cut(s, "=")
	if !ok {
		return Criterion{}, fmt.Errorf("criterion %q: expected field.op=value: %w", s, ErrInvalidFilter)
	}
	return parseCriterionKey(key, value)
}

// ParseCriteria extracts criteria from query parameters, ignoring the
// pagination, search and cache-buster parameters. Fields outside allowed are
// rejected with ErrInvalidFilter.
func ParseCriteria(q url.Values, allowed []string) (Criteria, error) {
	keys := make([]string, 0, len(q))
	for k := range q {
		if !reservedParams[k] {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	var out Criteria
	for _, k := range keys {
		for _, value := range q[k] {
			cr, err := parseCriterionKey(k, value)
			if err != nil {
				return nil, err
			}
			if !slices.Contains(allowed, cr.Field) {
				return nil, fmt.Errorf("unknown field %q: %w", cr.Field, ErrInvalidFilter)
			}
			out = append(out, cr)
		}
	}
	return out, nil
}

func parseCriterionKey(key, value string) (Criterion, error) {
	field, op, ok := strings.Cut(key, ".")
	if !ok || field == "" {
		return Criterion{}, fmt.Errorf("criterion %q: expected field.op: %w", key, ErrInvalidFilter)
	}
	if !validOperators[Operator(op)] {
		return Criterion{}, fmt.Errorf("criterion %q: unknown operator %q: %w", key, op, ErrInvalidFilter)
	}
	if Operator(op) == OpSpecified && value != "true" && value != "false" {
		return Criterion{}, fmt.Errorf("criterion %q: specified takes true or false: %w", key, ErrInvalidFilter)
	}
	return Criterion{Field: field, Op: Operator(op), Value: value}, nil
}
