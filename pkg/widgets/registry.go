// Package widgets resolves the edit-form widget of a container property.
package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-dcgeneral/pkg/definition"
)

// Built-in widget identifiers. Each maps to widgets/<name>.tmpl.
const (
	WidgetText     = "text"
	WidgetTextarea = "textarea"
	WidgetCheckbox = "checkbox"
	WidgetSelect   = "select"
	WidgetDate     = "date"
)

// LongTextThreshold is the maxlength above which text becomes a textarea.
const LongTextThreshold = 255

// Matcher decides whether a widget should handle the property.
type Matcher func(prop definition.Property) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Registry picks widgets by explicit WidgetType or registered matchers.
// Higher priority wins; ties fall back to registration order. Properties no
// matcher claims get WidgetText.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

// NewRegistry returns a registry with the built-in matchers.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds a matcher. Empty names and nil matchers are ignored.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Resolve returns the widget for prop.
func (r *Registry) Resolve(prop definition.Property) string {
	if explicit := strings.TrimSpace(prop.WidgetType); explicit != "" {
		return explicit
	}
	if r == nil {
		return WidgetText
	}
	r.mu.RLock()
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()

	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(prop) {
			return entry.name
		}
	}
	return WidgetText
}

func (r *Registry) registerBuiltins() {
	r.Register(WidgetCheckbox, 90, func(prop definition.Property) bool {
		if strings.EqualFold(prop.Formatter, "checkbox") {
			return true
		}
		return prop.Extra.Multiple && len(prop.Options) > 0
	})

	r.Register(WidgetSelect, 70, func(prop definition.Property) bool {
		return len(prop.Options) > 0
	})

	r.Register(WidgetDate, 60, func(prop definition.Property) bool {
		switch prop.Extra.RegExp {
		case definition.RegExpDate, definition.RegExpTime, definition.RegExpDateTime:
			return true
		default:
			return false
		}
	})

	r.Register(WidgetTextarea, 50, func(prop definition.Property) bool {
		return prop.Extra.MaxLength > LongTextThreshold
	})
}
