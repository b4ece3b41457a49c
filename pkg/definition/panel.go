package definition

// PanelElementType names a panel element kind.
type PanelElementType string

const (
	PanelFilter PanelElementType = "filter"
	PanelSearch PanelElementType = "search"
	PanelSort   PanelElementType = "sort"
	PanelLimit  PanelElementType = "limit"
)

// PanelElement configures one element of the listing panel.
type PanelElement struct {
	Type       PanelElementType `json:"type" yaml:"type"`
	Property   string           `json:"property,omitempty" yaml:"property,omitempty"`
	Properties []string         `json:"properties,omitempty" yaml:"properties,omitempty"`
	Amount     int              `json:"amount,omitempty" yaml:"amount,omitempty"`
}

// PanelLayout is the ordered panel rows.
type PanelLayout struct {
	Rows [][]PanelElement `json:"rows,omitempty" yaml:"rows,omitempty"`
}

// Elements returns every element of the layout in row order.
func (p PanelLayout) Elements() []PanelElement {
	var out []PanelElement
	for _, row := range p.Rows {
		out = append(out, row...)
	}
	return out
}

// Empty reports whether the layout has no elements.
func (p PanelLayout) Empty() bool {
	for _, row := range p.Rows {
		if len(row) > 0 {
			return false
		}
	}
	return true
}

// SearchElementInformation lists the properties a search panel element may
// search in.
type SearchElementInformation struct {
	properties []string
}

// NewSearchElementInformation returns information seeded with names.
func NewSearchElementInformation(names ...string) *SearchElementInformation {
	info := &SearchElementInformation{}
	for _, name := range names {
		info.AddProperty(name)
	}
	return info
}

// Name is always "search".
func (s *SearchElementInformation) Name() string {
	return string(PanelSearch)
}

// AddProperty appends a property name. Duplicates are kept.
func (s *SearchElementInformation) AddProperty(name string) {
	s.properties = append(s.properties, name)
}

// PropertyNames returns the names in insertion order.
func (s *SearchElementInformation) PropertyNames() []string {
	return append([]string(nil), s.properties...)
}
