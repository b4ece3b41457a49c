package data

import "strings"

// Direction is a sort direction.
type Direction string

const (
	Ascending  Direction = "ASC"
	Descending Direction = "DESC"
)

// SortField orders results by a single property.
type SortField struct {
	Property  string    `json:"property" yaml:"property"`
	Direction Direction `json:"direction,omitempty" yaml:"direction,omitempty"`
}

// Normalize upper-cases the direction and defaults it to ascending.
func (s SortField) Normalize() SortField {
	switch Direction(strings.ToUpper(strings.TrimSpace(string(s.Direction)))) {
	case Descending:
		s.Direction = Descending
	default:
		s.Direction = Ascending
	}
	s.Property = strings.TrimSpace(s.Property)
	return s
}

// Config describes a query against a provider.
type Config struct {
	ID      string
	Sorting []SortField
	Filter  []Filter
	Fields  []string
	Start   int
	Amount  int

	sortingSet bool
}

// SetID restricts the query to a single id.
func (c *Config) SetID(id string) *Config {
	c.ID = id
	return c
}

// SetSorting replaces the sort order. Passing no fields marks the sort as
// explicitly empty, which is different from never having set one.
func (c *Config) SetSorting(fields ...SortField) *Config {
	c.Sorting = make([]SortField, 0, len(fields))
	for _, field := range fields {
		if strings.TrimSpace(field.Property) == "" {
			continue
		}
		c.Sorting = append(c.Sorting, field.Normalize())
	}
	c.sortingSet = true
	return c
}

// HasSorting reports whether a sort order has been set explicitly.
func (c *Config) HasSorting() bool {
	return c.sortingSet || len(c.Sorting) > 0
}

// AddFilter appends filters; they are combined with AND.
func (c *Config) AddFilter(filters ...Filter) *Config {
	c.Filter = append(c.Filter, filters...)
	return c
}

// SetFilter replaces the filter list.
func (c *Config) SetFilter(filters ...Filter) *Config {
	c.Filter = append([]Filter(nil), filters...)
	return c
}

// SetLimit configures paging. A zero amount disables the limit.
func (c *Config) SetLimit(start, amount int) *Config {
	if start < 0 {
		start = 0
	}
	if amount < 0 {
		amount = 0
	}
	c.Start = start
	c.Amount = amount
	return c
}

// Clone returns a copy safe to mutate independently.
func (c Config) Clone() Config {
	out := c
	out.Sorting = append([]SortField(nil), c.Sorting...)
	out.Filter = cloneFilters(c.Filter)
	out.Fields = append([]string(nil), c.Fields...)
	return out
}
