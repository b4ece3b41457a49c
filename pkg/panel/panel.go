// Package panel implements the filter, search, sort and limit panel shown
// above listings. Panel state merges request parameters over the state
// persisted for the container and is applied to a data.Config.
package panel

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/goliatone/go-dcgeneral/pkg/data"
	"github.com/goliatone/go-dcgeneral/pkg/definition"
	"github.com/goliatone/go-dcgeneral/pkg/input"
)

// Request parameter names.
const (
	ParamFilterPrefix   = "filter_"
	ParamSearchProperty = "search_property"
	ParamSearchTerm     = "search_term"
	ParamSort           = "sort"
	ParamLimit          = "limit"
	ParamReset          = "panel_reset"
)

// DefaultAmount is used by limit elements without a configured amount.
const DefaultAmount = 30

// Panel is the per-request panel of one container.
type Panel struct {
	container  string
	definition *definition.Definition
	store      StateStore
	state      State
}

// New returns a panel for def. A nil store keeps state per request only.
func New(def *definition.Definition, store StateStore) *Panel {
	name := ""
	if def != nil {
		name = def.Name
	}
	return &Panel{container: name, definition: def, store: store, state: newState()}
}

// State returns a copy of the current state.
func (p *Panel) State() State {
	return p.state.clone()
}

// Initialize merges request input over the persisted state, persists the
// result and applies it to cfg.
func (p *Panel) Initialize(ctx context.Context, in *input.Provider, cfg *data.Config) error {
	if p == nil || p.definition == nil || p.definition.Panel.Empty() {
		return nil
	}
	if p.store != nil {
		state, err := p.store.Load(ctx, p.container)
		if err != nil {
			return fmt.Errorf("panel: load state: %w", err)
		}
		p.state = state.clone()
	}
	if in.Parameter(ParamReset) != "" {
		p.state = newState()
	}

	for _, element := range p.definition.Panel.Elements() {
		p.merge(element, in)
	}

	if p.store != nil {
		if err := p.store.Save(ctx, p.container, p.state.clone()); err != nil {
			return fmt.Errorf("panel: save state: %w", err)
		}
	}

	if cfg != nil {
		for _, element := range p.definition.Panel.Elements() {
			p.apply(element, cfg)
		}
	}
	return nil
}

func (p *Panel) merge(element definition.PanelElement, in *input.Provider) {
	switch element.Type {
	case definition.PanelFilter:
		if element.Property == "" {
			return
		}
		if value, ok := in.LookupParameter(ParamFilterPrefix + element.Property); ok {
			if value == "" {
				delete(p.state.Filters, element.Property)
			} else {
				p.state.Filters[element.Property] = value
			}
		}
	case definition.PanelSearch:
		if value, ok := in.LookupParameter(ParamSearchProperty); ok {
			p.state.SearchProperty = value
		}
		if value, ok := in.LookupParameter(ParamSearchTerm); ok {
			p.state.SearchTerm = strings.TrimSpace(value)
		}
	case definition.PanelSort:
		if value, ok := in.LookupParameter(ParamSort); ok {
			p.state.Sort = strings.TrimSpace(value)
		}
	case definition.PanelLimit:
		if value, ok := in.LookupParameter(ParamLimit); ok {
			start, amount, valid := parseLimit(value)
			if valid {
				p.state.Start, p.state.Amount = start, amount
			}
		}
	}
}

func (p *Panel) apply(element definition.PanelElement, cfg *data.Config) {
	switch element.Type {
	case definition.PanelFilter:
		if value := p.state.Filters[element.Property]; value != "" {
			cfg.AddFilter(data.Equal(element.Property, value))
		}
	case definition.PanelSearch:
		info := SearchInformation(element)
		if p.state.SearchTerm == "" || !slices.Contains(info.PropertyNames(), p.state.SearchProperty) {
			return
		}
		cfg.AddFilter(data.Like(p.state.SearchProperty, "*"+p.state.SearchTerm+"*"))
	case definition.PanelSort:
		if field, ok := p.sortField(); ok {
			cfg.SetSorting(field)
		}
	case definition.PanelLimit:
		amount := p.state.Amount
		if amount <= 0 {
			amount = element.Amount
		}
		if amount <= 0 {
			amount = DefaultAmount
		}
		cfg.SetLimit(p.state.Start, amount)
	}
}

func (p *Panel) sortField() (data.SortField, bool) {
	if p.state.Sort == "" {
		return data.SortField{}, false
	}
	parts := strings.Fields(p.state.Sort)
	field := data.SortField{Property: parts[0]}
	if len(parts) > 1 {
		field.Direction = data.Direction(parts[1])
	}
	if !slices.Contains(p.sortFields(), field.Property) {
		return data.SortField{}, false
	}
	return field.Normalize(), true
}

func (p *Panel) sortFields() []string {
	if len(p.definition.Listing.SortingFields) > 0 {
		return p.definition.Listing.SortingFields
	}
	return p.definition.Properties.Names()
}

// SearchInformation builds the search element information of element.
func SearchInformation(element definition.PanelElement) *definition.SearchElementInformation {
	info := definition.NewSearchElementInformation(element.Properties...)
	if element.Property != "" && len(element.Properties) == 0 {
		info.AddProperty(element.Property)
	}
	return info
}

func parseLimit(raw string) (int, int, bool) {
	parts := strings.Split(strings.TrimSpace(raw), ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || start < 0 {
		return 0, 0, false
	}
	amount, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || amount <= 0 {
		return 0, 0, false
	}
	return start, amount, true
}
