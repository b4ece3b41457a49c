package panel

import (
	"strconv"

	"github.com/goliatone/go-dcgeneral/pkg/definition"
)

// ElementContext is the template view of one panel element.
type ElementContext struct {
	Type       string          `json:"type"`
	Name       string          `json:"name"`
	Property   string          `json:"property,omitempty"`
	Value      string          `json:"value,omitempty"`
	Options    []OptionContext `json:"options,omitempty"`
	Properties []OptionContext `json:"properties,omitempty"`
}

// OptionContext is a selectable value.
type OptionContext struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// Context is the template view of the whole panel.
type Context struct {
	Rows [][]ElementContext `json:"rows"`
}

// Render returns the panel template context. A panel without elements
// renders no rows.
func (p *Panel) Render() Context {
	out := Context{}
	if p == nil || p.definition == nil {
		return out
	}
	for _, row := range p.definition.Panel.Rows {
		var elements []ElementContext
		for _, element := range row {
			elements = append(elements, p.renderElement(element))
		}
		if len(elements) > 0 {
			out.Rows = append(out.Rows, elements)
		}
	}
	return out
}

func (p *Panel) renderElement(element definition.PanelElement) ElementContext {
	ctx := ElementContext{Type: string(element.Type)}
	switch element.Type {
	case definition.PanelFilter:
		ctx.Name = ParamFilterPrefix + element.Property
		ctx.Property = element.Property
		ctx.Value = p.state.Filters[element.Property]
		if prop, ok := p.definition.Properties.Get(element.Property); ok {
			for _, opt := range prop.Options {
				label := opt.Label
				if label == "" {
					label = opt.Value
				}
				ctx.Options = append(ctx.Options, OptionContext{Value: opt.Value, Label: label, Selected: opt.Value == ctx.Value})
			}
		}
	case definition.PanelSearch:
		info := SearchInformation(element)
		ctx.Name = info.Name()
		ctx.Property = p.state.SearchProperty
		ctx.Value = p.state.SearchTerm
		for _, name := range info.PropertyNames() {
			ctx.Properties = append(ctx.Properties, OptionContext{Value: name, Label: p.label(name), Selected: name == p.state.SearchProperty})
		}
	case definition.PanelSort:
		ctx.Name = ParamSort
		field, _ := p.sortField()
		ctx.Value = field.Property
		for _, name := range p.sortFields() {
			ctx.Options = append(ctx.Options, OptionContext{Value: name, Label: p.label(name), Selected: name == field.Property})
		}
	case definition.PanelLimit:
		ctx.Name = ParamLimit
		amount := element.Amount
		if amount <= 0 {
			amount = DefaultAmount
		}
		if p.state.Amount > 0 {
			ctx.Value = strconv.Itoa(p.state.Start) + "," + strconv.Itoa(p.state.Amount)
		}
		for _, size := range []int{amount, amount * 2, amount * 4} {
			value := "0," + strconv.Itoa(size)
			ctx.Options = append(ctx.Options, OptionContext{Value: value, Label: strconv.Itoa(size), Selected: value == ctx.Value})
		}
	}
	return ctx
}

func (p *Panel) label(name string) string {
	if prop, ok := p.definition.Properties.Get(name); ok && prop.Label != "" {
		return prop.Label
	}
	return name
}
