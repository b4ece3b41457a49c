package widgets

import (
	"testing"

	"github.com/goliatone/go-dcgeneral/pkg/definition"
)

func TestResolveExplicitWidgetWins(t *testing.T) {
	reg := NewRegistry()
	prop := definition.Property{
		WidgetType: "pageTree",
		Options:    []definition.Option{{Value: "a"}},
	}
	if got := reg.Resolve(prop); got != "pageTree" {
		t.Fatalf("expected explicit widget, got %q", got)
	}
}

func TestResolveBuiltins(t *testing.T) {
	reg := NewRegistry()

	cases := []struct {
		name   string
		prop   definition.Property
		expect string
	}{
		{
			name:   "boolean formatter",
			prop:   definition.Property{Formatter: "checkbox"},
			expect: WidgetCheckbox,
		},
		{
			name: "multiple options",
			prop: definition.Property{
				Options: []definition.Option{{Value: "a"}, {Value: "b"}},
				Extra:   definition.Evaluation{Multiple: true},
			},
			expect: WidgetCheckbox,
		},
		{
			name:   "single options",
			prop:   definition.Property{Options: []definition.Option{{Value: "a"}}},
			expect: WidgetSelect,
		},
		{
			name:   "datim",
			prop:   definition.Property{Extra: definition.Evaluation{RegExp: definition.RegExpDateTime}},
			expect: WidgetDate,
		},
		{
			name:   "long text",
			prop:   definition.Property{Extra: definition.Evaluation{MaxLength: 2000}},
			expect: WidgetTextarea,
		},
		{
			name:   "default text",
			prop:   definition.Property{Name: "headline"},
			expect: WidgetText,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := reg.Resolve(tc.prop); got != tc.expect {
				t.Fatalf("Resolve() = %q, want %q", got, tc.expect)
			}
		})
	}
}

func TestRegisterCustomMatcherPriority(t *testing.T) {
	reg := NewRegistry()
	reg.Register("rte", 100, func(prop definition.Property) bool {
		return prop.Extra.MaxLength > 1000
	})

	long := definition.Property{Extra: definition.Evaluation{MaxLength: 5000}}
	if got := reg.Resolve(long); got != "rte" {
		t.Fatalf("expected custom matcher to win, got %q", got)
	}
	short := definition.Property{Extra: definition.Evaluation{MaxLength: 500}}
	if got := reg.Resolve(short); got != WidgetTextarea {
		t.Fatalf("expected textarea, got %q", got)
	}

	var nilRegistry *Registry
	if got := nilRegistry.Resolve(definition.Property{}); got != WidgetText {
		t.Fatalf("nil registry should fall back to text, got %q", got)
	}
}
