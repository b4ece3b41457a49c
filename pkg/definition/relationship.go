package definition

import (
	"strings"

	"github.com/goliatone/go-dcgeneral/pkg/data"
	"github.com/goliatone/go-dcgeneral/pkg/model"
)

// ConditionRule compares a parent property (Local) against a child property
// (Remote). RemoteValue replaces the parent lookup with a constant.
type ConditionRule struct {
	Local       string         `json:"local,omitempty" yaml:"local,omitempty"`
	Remote      string         `json:"remote" yaml:"remote"`
	RemoteValue any            `json:"remoteValue,omitempty" yaml:"remoteValue,omitempty"`
	Operation   data.Operation `json:"operation,omitempty" yaml:"operation,omitempty"`
}

// ConditionSetter copies FromField of the parent (or Value) into ToField of
// the child.
type ConditionSetter struct {
	ToField   string `json:"toField" yaml:"toField"`
	FromField string `json:"fromField,omitempty" yaml:"fromField,omitempty"`
	Value     any    `json:"value,omitempty" yaml:"value,omitempty"`
}

// ChildCondition links records of Source (parent) to Destination (child).
type ChildCondition struct {
	Source      string            `json:"source" yaml:"source"`
	Destination string            `json:"destination,omitempty" yaml:"destination,omitempty"`
	Filter      []ConditionRule   `json:"filter,omitempty" yaml:"filter,omitempty"`
	Setters     []ConditionSetter `json:"setters,omitempty" yaml:"setters,omitempty"`
}

// FilterFor returns the child filters selecting children of parent.
func (c *ChildCondition) FilterFor(parent *model.Model) []data.Filter {
	if c == nil {
		return nil
	}
	filters := make([]data.Filter, 0, len(c.Filter))
	for _, rule := range c.Filter {
		value := rule.RemoteValue
		if value == nil {
			value = modelValue(parent, rule.Local)
		}
		filters = append(filters, data.Filter{
			Operation: ruleOperation(rule.Operation),
			Property:  rule.Remote,
			Value:     value,
		})
	}
	return filters
}

// ApplyTo runs the setters on child using values from parent.
func (c *ChildCondition) ApplyTo(parent, child *model.Model) {
	if c == nil || child == nil {
		return
	}
	for _, setter := range c.Setters {
		if setter.ToField == "" {
			continue
		}
		if setter.FromField != "" {
			child.SetProperty(setter.ToField, modelValue(parent, setter.FromField))
			continue
		}
		child.SetProperty(setter.ToField, setter.Value)
	}
}

// Matches reports whether child belongs to parent.
func (c *ChildCondition) Matches(parent, child *model.Model) bool {
	if c == nil || child == nil {
		return false
	}
	ok, err := data.MatchAll(c.FilterFor(parent), child)
	return err == nil && ok
}

// RootCondition selects the root records of a hierarchical container.
type RootCondition struct {
	Filter  []data.Filter     `json:"filter,omitempty" yaml:"filter,omitempty"`
	Setters []ConditionSetter `json:"setters,omitempty" yaml:"setters,omitempty"`
}

// Matches reports whether m is a root record.
func (r *RootCondition) Matches(m *model.Model) bool {
	if r == nil || m == nil {
		return false
	}
	ok, err := data.MatchAll(r.Filter, m)
	return err == nil && ok
}

// ApplyTo turns m into a root record.
func (r *RootCondition) ApplyTo(m *model.Model) {
	if r == nil || m == nil {
		return
	}
	for _, setter := range r.Setters {
		if setter.ToField != "" {
			m.SetProperty(setter.ToField, setter.Value)
		}
	}
}

// Relationships groups the conditions of a container.
type Relationships struct {
	Root     *RootCondition   `json:"root,omitempty" yaml:"root,omitempty"`
	Children []ChildCondition `json:"children,omitempty" yaml:"children,omitempty"`
}

// ChildCondition returns the condition from src to dst, or nil.
func (r Relationships) ChildCondition(src, dst string) *ChildCondition {
	for i := range r.Children {
		if r.Children[i].Source == src && r.Children[i].Destination == dst {
			return &r.Children[i]
		}
	}
	return nil
}

// RootCondition returns the root condition, or nil.
func (r Relationships) RootCondition() *RootCondition {
	return r.Root
}

func ruleOperation(op data.Operation) data.Operation {
	trimmed := data.Operation(strings.ToUpper(strings.TrimSpace(string(op))))
	if trimmed == "" || trimmed == "==" {
		return data.OpEqual
	}
	return trimmed
}

func modelValue(m *model.Model, name string) any {
	if m == nil || name == "" {
		return nil
	}
	if name == "id" && !m.HasProperty("id") {
		return m.ID()
	}
	return m.Property(name)
}
