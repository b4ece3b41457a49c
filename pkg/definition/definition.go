package definition

import (
	"strings"

	"github.com/goliatone/go-dcgeneral/pkg/data"
)

// Mode selects the view used for a container.
type Mode string

const (
	ModeFlat         Mode = "flat"
	ModeParentedList Mode = "parented-list"
	ModeHierarchical Mode = "hierarchical"
)

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeFlat, ModeParentedList, ModeHierarchical:
		return true
	default:
		return false
	}
}

// GroupingMode controls how rows are grouped under headers.
type GroupingMode string

const (
	GroupNone  GroupingMode = "none"
	GroupChar  GroupingMode = "char"
	GroupDay   GroupingMode = "day"
	GroupMonth GroupingMode = "month"
	GroupYear  GroupingMode = "year"
	GroupValue GroupingMode = "value"
)

// Definition describes one data container.
type Definition struct {
	Name          string        `json:"name" yaml:"name"`
	Basic         BasicSection  `json:"basic" yaml:"basic"`
	Listing       ListingConfig `json:"listing" yaml:"listing"`
	Properties    Properties    `json:"properties" yaml:"properties"`
	Relationships Relationships `json:"relationships,omitempty" yaml:"relationships,omitempty"`
	Panel         PanelLayout   `json:"panel,omitempty" yaml:"panel,omitempty"`
	Source        string        `json:"-" yaml:"-"`
}

// BasicSection holds the view mode and provider wiring.
type BasicSection struct {
	Mode               Mode   `json:"mode" yaml:"mode"`
	DataProvider       string `json:"dataProvider,omitempty" yaml:"dataProvider,omitempty"`
	ParentDataProvider string `json:"parentDataProvider,omitempty" yaml:"parentDataProvider,omitempty"`
	RootDataProvider   string `json:"rootDataProvider,omitempty" yaml:"rootDataProvider,omitempty"`
	Creatable          bool   `json:"creatable" yaml:"creatable"`
	Editable           bool   `json:"editable" yaml:"editable"`
	Deletable          bool   `json:"deletable" yaml:"deletable"`
	Closed             bool   `json:"closed" yaml:"closed"`
}

// ListingConfig controls how collections are listed.
type ListingConfig struct {
	DefaultSorting   []data.SortField `json:"defaultSorting,omitempty" yaml:"defaultSorting,omitempty"`
	SortingFields    []string         `json:"sortingFields,omitempty" yaml:"sortingFields,omitempty"`
	HeaderProperties []string         `json:"headerProperties,omitempty" yaml:"headerProperties,omitempty"`
	ItemCSSClass     string           `json:"itemCssClass,omitempty" yaml:"itemCssClass,omitempty"`
	ShowColumns      bool             `json:"showColumns,omitempty" yaml:"showColumns,omitempty"`
	Label            LabelConfig      `json:"label,omitempty" yaml:"label,omitempty"`
	Grouping         GroupingConfig   `json:"grouping,omitempty" yaml:"grouping,omitempty"`
}

// LabelConfig describes how a row label is assembled. Format uses %s
// placeholders, one per property.
type LabelConfig struct {
	Properties []string `json:"properties,omitempty" yaml:"properties,omitempty"`
	Format     string   `json:"format,omitempty" yaml:"format,omitempty"`
	MaxLength  int      `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
}

// GroupingConfig configures row group headers.
type GroupingConfig struct {
	Property string       `json:"property,omitempty" yaml:"property,omitempty"`
	Mode     GroupingMode `json:"mode,omitempty" yaml:"mode,omitempty"`
	Length   int          `json:"length,omitempty" yaml:"length,omitempty"`
}

// Enabled reports whether grouping should produce headers at all.
func (g GroupingConfig) Enabled() bool {
	return strings.TrimSpace(g.Property) != "" && g.Mode != "" && g.Mode != GroupNone
}

// ProviderName returns the provider backing the container, defaulting to
// the container name.
func (d *Definition) ProviderName() string {
	if d == nil {
		return ""
	}
	if d.Basic.DataProvider != "" {
		return d.Basic.DataProvider
	}
	return d.Name
}

// IsSortable reports whether rows are ordered by a manual sorting property.
func (d *Definition) IsSortable() bool {
	if d == nil {
		return false
	}
	for _, field := range d.Listing.DefaultSorting {
		if field.Property == "sorting" {
			return true
		}
	}
	return false
}

func (d *Definition) normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Basic.Mode = Mode(strings.ToLower(strings.TrimSpace(string(d.Basic.Mode))))
	if d.Basic.DataProvider == "" {
		d.Basic.DataProvider = d.Name
	}
	for i, field := range d.Listing.DefaultSorting {
		d.Listing.DefaultSorting[i] = field.Normalize()
	}
	if d.Listing.Grouping.Mode == "" {
		d.Listing.Grouping.Mode = GroupNone
	}
	for i := range d.Relationships.Children {
		if d.Relationships.Children[i].Destination == "" {
			d.Relationships.Children[i].Destination = d.Basic.DataProvider
		}
	}
	d.Properties = d.Properties.normalize()
}
