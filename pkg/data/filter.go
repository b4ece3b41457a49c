package data

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-dcgeneral/pkg/model"
)

// Operation is a filter operator.
type Operation string

const (
	OpEqual    Operation = "="
	OpNotEqual Operation = "<>"
	OpLess     Operation = "<"
	OpGreater  Operation = ">"
	OpLike     Operation = "LIKE"
	OpIn       Operation = "IN"
	OpAnd      Operation = "AND"
	OpOr       Operation = "OR"
)

// Filter is a single predicate or a group of predicates.
type Filter struct {
	Operation Operation `json:"operation" yaml:"operation"`
	Property  string    `json:"property,omitempty" yaml:"property,omitempty"`
	Value     any       `json:"value,omitempty" yaml:"value,omitempty"`
	Values    []any     `json:"values,omitempty" yaml:"values,omitempty"`
	Children  []Filter  `json:"children,omitempty" yaml:"children,omitempty"`
}

// Equal builds a property = value filter.
func Equal(property string, value any) Filter {
	return Filter{Operation: OpEqual, Property: property, Value: value}
}

// Like builds a wildcard filter; `*` matches any run, `?` a single rune.
func Like(property, pattern string) Filter {
	return Filter{Operation: OpLike, Property: property, Value: pattern}
}

// In builds a membership filter.
func In(property string, values ...any) Filter {
	return Filter{Operation: OpIn, Property: property, Values: values}
}

// And groups filters with AND.
func And(children ...Filter) Filter {
	return Filter{Operation: OpAnd, Children: children}
}

// Or groups filters with OR.
func Or(children ...Filter) Filter {
	return Filter{Operation: OpOr, Children: children}
}

// MatchAll reports whether m satisfies every filter.
func MatchAll(filters []Filter, m *model.Model) (bool, error) {
	for _, f := range filters {
		ok, err := f.Match(m)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// Match evaluates the filter against a model in memory. The id is reachable
// through the "id" property.
func (f Filter) Match(m *model.Model) (bool, error) {
	switch Operation(strings.ToUpper(string(f.Operation))) {
	case OpAnd:
		return MatchAll(f.Children, m)
	case OpOr:
		for _, child := range f.Children {
			ok, err := child.Match(m)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return len(f.Children) == 0, nil
	case OpEqual:
		return CompareValues(propertyValue(m, f.Property), f.Value) == 0, nil
	case OpNotEqual:
		return CompareValues(propertyValue(m, f.Property), f.Value) != 0, nil
	case OpLess:
		return CompareValues(propertyValue(m, f.Property), f.Value) < 0, nil
	case OpGreater:
		return CompareValues(propertyValue(m, f.Property), f.Value) > 0, nil
	case OpIn:
		actual := propertyValue(m, f.Property)
		for _, candidate := range f.Values {
			if CompareValues(actual, candidate) == 0 {
				return true, nil
			}
		}
		return false, nil
	case OpLike:
		pattern, err := likePattern(ToString(f.Value))
		if err != nil {
			return false, err
		}
		return pattern.MatchString(ToString(propertyValue(m, f.Property))), nil
	default:
		return false, fmt.Errorf("data: unsupported filter operation %q", f.Operation)
	}
}

func propertyValue(m *model.Model, property string) any {
	if property == "id" && !m.HasProperty("id") {
		return m.ID()
	}
	return m.Property(property)
}

func likePattern(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("(?is)^")
	for _, r := range pattern {
		switch r {
		case '*', '%':
			b.WriteString(".*")
		case '?', '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("data: compile like pattern %q: %w", pattern, err)
	}
	return re, nil
}

// CompareValues orders two loosely typed values. Numbers compare
// numerically when both sides parse as numbers, times chronologically, and
// everything else as strings. nil sorts first.
func CompareValues(a, b any) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		if ToString(b) == "" {
			return 0
		}
		return -1
	}
	if b == nil {
		if ToString(a) == "" {
			return 0
		}
		return 1
	}

	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}

	fa, okA := toFloat(a)
	fb, okB := toFloat(b)
	if okA && okB {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}

	return strings.Compare(ToString(a), ToString(b))
}

// ToString renders a loosely typed value as a string.
func ToString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case bool:
		if v {
			return "1"
		}
		return ""
	case time.Time:
		return v.Format(time.RFC3339)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	case []byte:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func cloneFilters(in []Filter) []Filter {
	if in == nil {
		return nil
	}
	out := make([]Filter, len(in))
	for i, f := range in {
		f.Values = append([]any(nil), f.Values...)
		f.Children = cloneFilters(f.Children)
		out[i] = f
	}
	return out
}
