package format

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-dcgeneral/pkg/data"
	"github.com/goliatone/go-dcgeneral/pkg/definition"
)

// Kind is the closed set of formatter variants.
type Kind string

const (
	KindPlain       Kind = "plain"
	KindDate        Kind = "date"
	KindTime        Kind = "time"
	KindDateTime    Kind = "datetime"
	KindCheckbox    Kind = "checkbox"
	KindOptions     Kind = "options"
	KindAssociative Kind = "associative"
)

// Valid reports whether k is a known variant.
func (k Kind) Valid() bool {
	switch k {
	case KindPlain, KindDate, KindTime, KindDateTime, KindCheckbox, KindOptions, KindAssociative:
		return true
	default:
		return false
	}
}

type matcher struct {
	kind     Kind
	priority int
	match    func(definition.Property) bool
}

// Higher priority wins. An explicit `formatter:` tag short-circuits the list.
var matchers = []matcher{
	{KindDate, 100, func(p definition.Property) bool { return p.Extra.RegExp == definition.RegExpDate }},
	{KindTime, 100, func(p definition.Property) bool { return p.Extra.RegExp == definition.RegExpTime }},
	{KindDateTime, 100, func(p definition.Property) bool { return p.Extra.RegExp == definition.RegExpDateTime }},
	{KindCheckbox, 80, func(p definition.Property) bool { return p.WidgetType == "checkbox" && !p.Extra.Multiple }},
	{KindAssociative, 60, func(p definition.Property) bool { return len(p.Options) > 0 && p.HasAssociativeOptions() }},
	{KindOptions, 50, func(p definition.Property) bool { return len(p.Options) > 0 }},
}

func init() {
	sort.SliceStable(matchers, func(i, j int) bool {
		return matchers[i].priority > matchers[j].priority
	})
}

// Formatter renders values of a single property.
type Formatter struct {
	kind     Kind
	property definition.Property
	settings Settings
}

// Resolve picks the formatter variant for prop.
func Resolve(prop definition.Property, settings Settings) Formatter {
	return Formatter{kind: resolveKind(prop), property: prop, settings: settings.WithDefaults()}
}

// ForKind builds a formatter of a fixed variant, used for properties without
// metadata such as tstamp.
func ForKind(kind Kind, settings Settings) Formatter {
	if !kind.Valid() {
		kind = KindPlain
	}
	return Formatter{kind: kind, settings: settings.WithDefaults()}
}

func resolveKind(prop definition.Property) Kind {
	if explicit := Kind(strings.ToLower(strings.TrimSpace(prop.Formatter))); explicit.Valid() {
		return explicit
	}
	for _, m := range matchers {
		if m.match(prop) {
			return m.kind
		}
	}
	return KindPlain
}

// Kind returns the resolved variant.
func (f Formatter) Kind() Kind {
	if f.kind == "" {
		return KindPlain
	}
	return f.kind
}

// Format renders value. Empty and zero values render as "".
func (f Formatter) Format(value any) string {
	switch f.Kind() {
	case KindDate:
		return f.formatTime(value, f.settings.DateFormat)
	case KindTime:
		return f.formatTime(value, f.settings.TimeFormat)
	case KindDateTime:
		return f.formatTime(value, f.settings.DatimFormat)
	case KindCheckbox:
		if isBlank(value) {
			return f.settings.No
		}
		return f.settings.Yes
	case KindAssociative:
		return joinValues(Deserialize(value), func(item any) string {
			raw := data.ToString(item)
			if label, ok := f.property.OptionLabel(raw); ok {
				return label
			}
			return raw
		})
	default:
		return joinValues(Deserialize(value), data.ToString)
	}
}

func (f Formatter) formatTime(value any, layout string) string {
	t, ok := ToTime(value)
	if !ok {
		return data.ToString(value)
	}
	if t.IsZero() {
		return ""
	}
	loc := f.settings.Location
	if loc == nil {
		loc = time.UTC
	}
	return PHPDate(layout, t.In(loc))
}

// ToTime interprets unix timestamps, time.Time values and RFC3339 or
// Y-m-d strings. Zero and empty values yield the zero time.
func ToTime(value any) (time.Time, bool) {
	switch v := value.(type) {
	case nil:
		return time.Time{}, true
	case time.Time:
		return v, true
	case *time.Time:
		if v == nil {
			return time.Time{}, true
		}
		return *v, true
	case int:
		return unix(int64(v)), true
	case int32:
		return unix(int64(v)), true
	case int64:
		return unix(v), true
	case uint:
		return unix(int64(v)), true
	case uint32:
		return unix(int64(v)), true
	case uint64:
		if v > math.MaxInt64 {
			return time.Time{}, false
		}
		return unix(int64(v)), true
	case float64:
		return unix(int64(v)), true
	case []byte:
		return ToTime(string(v))
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return time.Time{}, true
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return unix(n), true
		}
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

func unix(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

// Deserialize decodes JSON arrays and objects stored as strings. Other
// values are returned unchanged.
func Deserialize(value any) any {
	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return value
	}
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) < 2 || (trimmed[0] != '[' && trimmed[0] != '{') {
		return value
	}
	var decoded any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		return value
	}
	return decoded
}

func joinValues(value any, render func(any) string) string {
	switch v := value.(type) {
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if text := render(item); text != "" {
				parts = append(parts, text)
			}
		}
		return strings.Join(parts, ", ")
	case []string:
		items := make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
		return joinValues(items, render)
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		items := make([]any, 0, len(keys))
		for _, key := range keys {
			items = append(items, v[key])
		}
		return joinValues(items, render)
	default:
		return render(value)
	}
}

// isBlank reports whether value has no textual content. "0" is content.
func isBlank(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case bool:
		return !v
	case string:
		return v == ""
	default:
		return fmt.Sprint(v) == ""
	}
}
