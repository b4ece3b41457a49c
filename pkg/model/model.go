package model

import (
	"maps"
	"sort"
)

// Model is a single record of a data provider.
type Model struct {
	providerName string
	id           string
	properties   map[string]any
}

// New constructs an empty model bound to the supplied provider name.
func New(providerName string) *Model {
	return &Model{
		providerName: providerName,
		properties:   make(map[string]any),
	}
}

// NewWithProperties constructs a model seeded with a copy of props.
func NewWithProperties(providerName, id string, props map[string]any) *Model {
	m := New(providerName)
	m.id = id
	for key, value := range props {
		m.properties[key] = value
	}
	return m
}

// ID returns the record id in its string form. Empty means "not persisted".
func (m *Model) ID() string {
	if m == nil {
		return ""
	}
	return m.id
}

// SetID updates the record id.
func (m *Model) SetID(id string) *Model {
	m.id = id
	return m
}

// ProviderName returns the name of the provider the model belongs to.
func (m *Model) ProviderName() string {
	if m == nil {
		return ""
	}
	return m.providerName
}

// ModelID returns the (provider, id) pair identifying this record.
func (m *Model) ModelID() ModelID {
	return ModelID{ProviderName: m.ProviderName(), ID: m.ID()}
}

// Property returns the raw value stored under name, or nil.
func (m *Model) Property(name string) any {
	if m == nil || m.properties == nil {
		return nil
	}
	return m.properties[name]
}

// HasProperty reports whether a value (possibly nil) is stored under name.
func (m *Model) HasProperty(name string) bool {
	if m == nil || m.properties == nil {
		return false
	}
	_, ok := m.properties[name]
	return ok
}

// SetProperty stores value under name.
func (m *Model) SetProperty(name string, value any) *Model {
	if m.properties == nil {
		m.properties = make(map[string]any)
	}
	m.properties[name] = value
	return m
}

// SetProperties stores every entry of values.
func (m *Model) SetProperties(values map[string]any) *Model {
	for key, value := range values {
		m.SetProperty(key, value)
	}
	return m
}

// Properties returns a shallow copy of the property map.
func (m *Model) Properties() map[string]any {
	if m == nil || len(m.properties) == 0 {
		return map[string]any{}
	}
	return maps.Clone(m.properties)
}

// PropertyNames returns the stored property names sorted alphabetically.
func (m *Model) PropertyNames() []string {
	if m == nil {
		return nil
	}
	names := make([]string, 0, len(m.properties))
	for name := range m.properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy of the model. Nested maps and slices produced by
// JSON decoding are copied as well so the clone can be mutated freely.
func (m *Model) Clone() *Model {
	if m == nil {
		return nil
	}
	out := New(m.providerName)
	out.id = m.id
	for key, value := range m.properties {
		out.properties[key] = cloneValue(value)
	}
	return out
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), v...)
	default:
		return v
	}
}
