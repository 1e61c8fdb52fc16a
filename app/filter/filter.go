// Package filter parses "filters" and "sorts" query strings against a
// declared property schema and applies the result to a gorm query.
//
// Filters are comma separated terms of the form <Property><operator><value>,
// for example "Price>=10,IsAvailable==true". Sorts are comma separated
// property names, a leading "-" meaning descending: "-Price,Name".
package filter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type Operator string

const (
	OpEqual          Operator = "=="
	OpNotEqual       Operator = "!="
	OpGreater        Operator = ">"
	OpLess           Operator = "<"
	OpGreaterOrEqual Operator = ">="
	OpLessOrEqual    Operator = "<="
	OpContains       Operator = "@="
	OpStartsWith     Operator = "_="
)

// Longest first, so ">=" wins over ">" at the same position.
var operators = []Operator{
	OpEqual, OpNotEqual, OpGreaterOrEqual, OpLessOrEqual, OpContains, OpStartsWith, OpGreater, OpLess,
}

type ValueKind int

const (
	KindString ValueKind = iota
	KindNumber
	KindBool
	KindTime
	KindUUID
)

type Property struct {
	Name      string
	Column    string
	Kind      ValueKind
	CanFilter bool
	CanSort   bool
}

type Condition struct {
	Column   string
	Operator Operator
	Value    any
}

type Order struct {
	Column string
	Desc   bool
}

type Query struct {
	Conditions []Condition
	Orders     []Order
	Page       int
	PageSize   int
}

// ErrInvalidQuery is returned for unknown properties, operations a property
// does not allow and values that cannot be parsed.
var ErrInvalidQuery = errors.New("invalid filter query")

type Schema struct {
	properties map[string]Property
}

func NewSchema(properties ...Property) *Schema {
	s := &Schema{properties: make(map[string]Property, len(properties))}
	for _, p := range properties {
		s.properties[strings.ToLower(p.Name)] = p
	}
	return s
}

func (s *Schema) Parse(filters, sorts string, page, pageSize int) (*Query, error) {
	if page < 0 || pageSize < 0 {
		return nil, errors.Wrap(ErrInvalidQuery, "page and pageSize must not be negative")
	}

	q := &Query{Page: page, PageSize: pageSize}

	for _, term := range splitTerms(filters) {
		cond, err := s.parseCondition(term)
		if err != nil {
			return nil, err
		}
		q.Conditions = append(q.Conditions, cond)
	}

	for _, term := range splitTerms(sorts) {
		order, err := s.parseOrder(term)
		if err != nil {
			return nil, err
		}
		q.Orders = append(q.Orders, order)
	}

	return q, nil
}

func splitTerms(raw string) []string {
	var terms []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			terms = append(terms, part)
		}
	}
	return terms
}

func (s *Schema) parseCondition(term string) (Condition, error) {
	idx, op := findOperator(term)
	if idx <= 0 {
		return Condition{}, errors.Wrapf(ErrInvalidQuery, "malformed filter %q", term)
	}

	name := strings.TrimSpace(term[:idx])
	raw := strings.TrimSpace(term[idx+len(op):])

	prop, ok := s.properties[strings.ToLower(name)]
	if !ok || !prop.CanFilter {
		return Condition{}, errors.Wrapf(ErrInvalidQuery, "property %q cannot be filtered", name)
	}
	if !allowed(prop.Kind, op) {
		return Condition{}, errors.Wrapf(ErrInvalidQuery, "operator %s is not supported for %s", op, prop.Name)
	}

	value, err := parseValue(prop.Kind, raw)
	if err != nil {
		return Condition{}, errors.Wrapf(ErrInvalidQuery, "invalid value %q for %s", raw, prop.Name)
	}

	return Condition{Column: prop.Column, Operator: op, Value: value}, nil
}

func (s *Schema) parseOrder(term string) (Order, error) {
	desc := strings.HasPrefix(term, "-")
	name := strings.TrimPrefix(term, "-")

	prop, ok := s.properties[strings.ToLower(name)]
	if !ok || !prop.CanSort {
		return Order{}, errors.Wrapf(ErrInvalidQuery, "property %q cannot be sorted", name)
	}

	return Order{Column: prop.Column, Desc: desc}, nil
}

// findOperator returns the position of the left-most operator in term.
func findOperator(term string) (int, Operator) {
	best := -1
	var found Operator
	for _, op := range operators {
		idx := strings.Index(term, string(op))
		if idx < 0 {
			continue
		}
		if best == -1 || idx < best {
			best, found = idx, op
		}
	}
	return best, found
}

func allowed(kind ValueKind, op Operator) bool {
	switch op {
	case OpEqual, OpNotEqual:
		return true
	case OpContains, OpStartsWith:
		return kind == KindString
	default:
		return kind == KindNumber || kind == KindTime || kind == KindString
	}
}

func parseValue(kind ValueKind, raw string) (any, error) {
	switch kind {
	case KindNumber:
		return strconv.ParseFloat(raw, 64)
	case KindBool:
		return strconv.ParseBool(raw)
	case KindTime:
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, raw); err == nil {
				return t, nil
			}
		}
		return nil, fmt.Errorf("unsupported time format")
	case KindUUID:
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, err
		}
		return id.String(), nil
	default:
		return raw, nil
	}
}
