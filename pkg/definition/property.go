package definition

import "strings"

// RegExp names the evaluation rule a property value follows.
type RegExp string

const (
	RegExpDate     RegExp = "date"
	RegExpTime     RegExp = "time"
	RegExpDateTime RegExp = "datim"
)

// Option is one selectable value of a property.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// Evaluation carries widget evaluation flags.
type Evaluation struct {
	RegExp        RegExp `json:"rgxp,omitempty" yaml:"rgxp,omitempty"`
	Multiple      bool   `json:"multiple,omitempty" yaml:"multiple,omitempty"`
	IsAssociative bool   `json:"isAssociative,omitempty" yaml:"isAssociative,omitempty"`
	Mandatory     bool   `json:"mandatory,omitempty" yaml:"mandatory,omitempty"`
	MaxLength     int    `json:"maxlength,omitempty" yaml:"maxlength,omitempty"`
	Format        string `json:"format,omitempty" yaml:"format,omitempty"`
	CSSClass      string `json:"cssClass,omitempty" yaml:"cssClass,omitempty"`
}

// Property describes a single container property.
type Property struct {
	Name        string     `json:"name" yaml:"name"`
	Label       string     `json:"label,omitempty" yaml:"label,omitempty"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	WidgetType  string     `json:"widgetType,omitempty" yaml:"widgetType,omitempty"`
	Options     []Option   `json:"options,omitempty" yaml:"options,omitempty"`
	Extra       Evaluation `json:"extra,omitempty" yaml:"extra,omitempty"`
	// Formatter forces a formatter variant (see package format).
	Formatter string `json:"formatter,omitempty" yaml:"formatter,omitempty"`
}

// HasAssociativeOptions reports whether option values map to distinct labels.
func (p Property) HasAssociativeOptions() bool {
	if p.Extra.IsAssociative {
		return true
	}
	for _, opt := range p.Options {
		if opt.Label != "" && opt.Label != opt.Value {
			return true
		}
	}
	return false
}

// OptionLabel returns the label of the option with the given value.
func (p Property) OptionLabel(value string) (string, bool) {
	for _, opt := range p.Options {
		if opt.Value == value {
			if opt.Label == "" {
				return opt.Value, true
			}
			return opt.Label, true
		}
	}
	return "", false
}

// Properties is an ordered property list.
type Properties []Property

// Get returns the property with the given name.
func (p Properties) Get(name string) (Property, bool) {
	for _, prop := range p {
		if prop.Name == name {
			return prop, true
		}
	}
	return Property{}, false
}

// Has reports whether a property with the given name exists.
func (p Properties) Has(name string) bool {
	_, ok := p.Get(name)
	return ok
}

// Names returns the property names in order.
func (p Properties) Names() []string {
	names := make([]string, 0, len(p))
	for _, prop := range p {
		names = append(names, prop.Name)
	}
	return names
}

func (p Properties) normalize() Properties {
	out := make(Properties, 0, len(p))
	for _, prop := range p {
		prop.Name = strings.TrimSpace(prop.Name)
		if prop.Name == "" {
			continue
		}
		prop.WidgetType = strings.ToLower(strings.TrimSpace(prop.WidgetType))
		prop.Extra.RegExp = RegExp(strings.ToLower(strings.TrimSpace(string(prop.Extra.RegExp))))
		out = append(out, prop)
	}
	return out
}
