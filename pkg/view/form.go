package view

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goliatone/go-dcgeneral/pkg/data"
	"github.com/goliatone/go-dcgeneral/pkg/definition"
	"github.com/goliatone/go-dcgeneral/pkg/environment"
	"github.com/goliatone/go-dcgeneral/pkg/format"
	"github.com/goliatone/go-dcgeneral/pkg/input"
	"github.com/goliatone/go-dcgeneral/pkg/model"
	"github.com/goliatone/go-dcgeneral/pkg/translate"
	"github.com/goliatone/go-dcgeneral/pkg/widgets"
)

var (
	// ErrNotCreatable is returned when a closed or read only container is
	// asked for a new record.
	ErrNotCreatable = errors.New("view: container does not allow new records")
	// ErrNotEditable is returned when editing a read only container.
	ErrNotEditable = errors.New("view: container is not editable")
)

// Input layouts of the date widget, keyed by evaluation rule.
var dateLayouts = map[definition.RegExp]struct {
	layout    string
	inputType string
}{
	definition.RegExpDate:     {"2006-01-02", "date"},
	definition.RegExpTime:     {"15:04", "time"},
	definition.RegExpDateTime: {"2006-01-02T15:04", "datetime-local"},
}

// Field is one input of the edit form.
type Field struct {
	Name        string        `json:"name"`
	Label       string        `json:"label"`
	Description string        `json:"description,omitempty"`
	Widget      string        `json:"widget"`
	InputType   string        `json:"inputType,omitempty"`
	Value       string        `json:"value"`
	Values      []string      `json:"values,omitempty"`
	Options     []FieldOption `json:"options,omitempty"`
	Multiple    bool          `json:"multiple,omitempty"`
	Mandatory   bool          `json:"mandatory,omitempty"`
	MaxLength   int           `json:"maxLength,omitempty"`
	CSSClass    string        `json:"cssClass,omitempty"`
	Error       string        `json:"error,omitempty"`
	HTML        string        `json:"html,omitempty"`
}

// FieldOption is a selectable option of a field.
type FieldOption struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// ShowField is one line of the read only record view.
type ShowField struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Create renders an empty edit form.
func (b *Base) Create(ctx context.Context) (string, error) {
	def, err := b.definition()
	if err != nil {
		return "", err
	}
	if !def.Basic.Creatable || def.Basic.Closed {
		return "", fmt.Errorf("%w: %s", ErrNotCreatable, def.Name)
	}
	p, err := b.provider(def)
	if err != nil {
		return "", err
	}
	return b.RenderForm(ctx, p.EmptyModel(), nil)
}

// Edit renders the form of the record named by the id parameter.
func (b *Base) Edit(ctx context.Context) (string, error) {
	def, err := b.definition()
	if err != nil {
		return "", err
	}
	if !def.Basic.Editable {
		return "", fmt.Errorf("%w: %s", ErrNotEditable, def.Name)
	}
	m, err := b.fetchByToken(ctx, def, "id")
	if err != nil {
		return "", err
	}
	return b.RenderForm(ctx, m, nil)
}

// Show renders the record named by the id parameter read only.
func (b *Base) Show(ctx context.Context) (string, error) {
	def, err := b.definition()
	if err != nil {
		return "", err
	}
	m, err := b.fetchByToken(ctx, def, "id")
	if err != nil {
		return "", err
	}

	settings := b.env.FormatSettings()
	fields := make([]ShowField, 0, len(def.Properties))
	for _, prop := range def.Properties {
		fields = append(fields, ShowField{
			Name:  prop.Name,
			Label: b.propertyLabel(def, prop.Name),
			Value: format.Resolve(prop, settings).Format(m.Property(prop.Name)),
		})
	}
	if m.HasProperty("tstamp") && !def.Properties.Has("tstamp") {
		fields = append(fields, ShowField{
			Name:  "tstamp",
			Label: b.label("tstamp.0", def.Name, translate.DomainMSC),
			Value: format.ForKind(format.KindDateTime, settings).Format(m.Property("tstamp")),
		})
	}

	return b.render("show", map[string]any{
		"definition": def.Name,
		"record_id":  m.ModelID().Serialize(),
		"title":      b.message("showRecord", "Details of record %s", m.ID()),
		"fields":     fields,
		"back":       b.url("act=&id="),
	})
}

// RenderForm renders the edit form of m. errs maps property names to
// validation messages.
func (b *Base) RenderForm(_ context.Context, m *model.Model, errs map[string]string) (string, error) {
	def, err := b.definition()
	if err != nil {
		return "", err
	}

	fields := make([]Field, 0, len(def.Properties))
	for _, prop := range def.Properties {
		field := b.field(def, prop, m.Property(prop.Name))
		field.Error = errs[prop.Name]
		html, err := b.renderWidget(field)
		if err != nil {
			return "", err
		}
		field.HTML = html
		fields = append(fields, field)
	}

	query := "act=save"
	title := b.buttonLabel(def, "new.1")
	if m.ID() != "" {
		query += "&id=" + url.QueryEscape(m.ModelID().Serialize())
		title = b.message("editRecord", "Edit record %s", m.ID())
	}

	return b.render("edit", map[string]any{
		"definition": def.Name,
		"record_id":  m.ID(),
		"title":      title,
		"action":     b.url(query),
		"back":       b.url("act=&id="),
		"fields":     fields,
		"has_errors": len(errs) > 0,
		"save_label": b.buttonLabel(def, "save"),
	})
}

func (b *Base) renderWidget(field Field) (string, error) {
	out, err := b.render("widgets/"+field.Widget, map[string]any{"field": field})
	if err == nil || field.Widget == widgets.WidgetText {
		return out, err
	}
	b.env.Logger().Debug("widget template missing, falling back to text")
	return b.render("widgets/"+widgets.WidgetText, map[string]any{"field": field})
}

func (b *Base) field(def *definition.Definition, prop definition.Property, value any) Field {
	field := Field{
		Name:        prop.Name,
		Label:       b.propertyLabel(def, prop.Name),
		Description: b.label(prop.Name+".1", def.Name),
		Widget:      b.widgets.Resolve(prop),
		Multiple:    prop.Extra.Multiple,
		Mandatory:   prop.Extra.Mandatory,
		MaxLength:   prop.Extra.MaxLength,
		CSSClass:    prop.Extra.CSSClass,
	}
	if field.Description == prop.Name+".1" {
		field.Description = prop.Description
	}

	switch field.Widget {
	case widgets.WidgetDate:
		field.InputType, field.Value = dateInput(prop, value, b.env.FormatSettings())
	case widgets.WidgetCheckbox, widgets.WidgetSelect:
		field.Values = selectedValues(value)
		if len(field.Values) > 0 {
			field.Value = field.Values[0]
		}
		for _, opt := range prop.Options {
			label := opt.Label
			if label == "" {
				label = opt.Value
			}
			field.Options = append(field.Options, FieldOption{
				Value:    opt.Value,
				Label:    label,
				Selected: slices.Contains(field.Values, opt.Value),
			})
		}
	default:
		field.Value = data.ToString(value)
	}
	return field
}

func dateInput(prop definition.Property, value any, settings format.Settings) (string, string) {
	dateFmt, ok := dateLayouts[prop.Extra.RegExp]
	if !ok {
		dateFmt = dateLayouts[definition.RegExpDate]
	}
	t, ok := format.ToTime(value)
	if !ok || t.IsZero() {
		return dateFmt.inputType, ""
	}
	if loc := settings.WithDefaults().Location; loc != nil {
		t = t.In(loc)
	}
	return dateFmt.inputType, t.Format(dateFmt.layout)
}

func selectedValues(value any) []string {
	switch v := format.Deserialize(value).(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, data.ToString(item))
		}
		return out
	case []string:
		return append([]string(nil), v...)
	default:
		if s := data.ToString(v); s != "" {
			return []string{s}
		}
		return nil
	}
}

// DecodeForm copies the submitted values of in onto m and returns the
// validation messages keyed by property name. Dates are stored as unix
// seconds and multiple values as a JSON list.
func DecodeForm(env *environment.Environment, reg *widgets.Registry, m *model.Model) map[string]string {
	def := env.Definition()
	in := env.InputProvider()
	if def == nil || in == nil || m == nil {
		return nil
	}
	if reg == nil {
		reg = widgets.NewRegistry()
	}
	b := newBase(env, WithWidgetRegistry(reg))
	settings := env.FormatSettings().WithDefaults()

	errs := make(map[string]string)
	for _, prop := range def.Properties {
		widget := reg.Resolve(prop)
		if widget != widgets.WidgetCheckbox && !in.HasValue(prop.Name) {
			continue
		}
		label := b.propertyLabel(def, prop.Name)
		if msg, ok := decodeProperty(&b, prop, widget, label, in, m, settings); !ok {
			errs[prop.Name] = msg
			continue
		}
		if prop.Extra.Mandatory && isBlank(m.Property(prop.Name)) {
			errs[prop.Name] = b.message("mandatory", "Please fill in field %q.", label)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func decodeProperty(b *Base, prop definition.Property, widget, label string, in *input.Provider, m *model.Model, settings format.Settings) (string, bool) {
	switch {
	case prop.Extra.Multiple && (widget == widgets.WidgetCheckbox || widget == widgets.WidgetSelect):
		values := nonEmpty(in.Values(prop.Name))
		for _, v := range values {
			if _, ok := prop.OptionLabel(v); !ok && len(prop.Options) > 0 {
				return b.message("invalidOption", "Invalid option %q.", v), false
			}
		}
		if len(values) == 0 {
			m.SetProperty(prop.Name, "")
			return "", true
		}
		raw, err := json.Marshal(values)
		if err != nil {
			return err.Error(), false
		}
		m.SetProperty(prop.Name, string(raw))
	case widget == widgets.WidgetCheckbox:
		if strings.TrimSpace(in.Value(prop.Name)) != "" {
			m.SetProperty(prop.Name, "1")
		} else {
			m.SetProperty(prop.Name, "")
		}
	case widget == widgets.WidgetSelect:
		value := strings.TrimSpace(in.Value(prop.Name))
		if _, ok := prop.OptionLabel(value); value != "" && !ok && len(prop.Options) > 0 {
			return b.message("invalidOption", "Invalid option %q.", value), false
		}
		m.SetProperty(prop.Name, value)
	case widget == widgets.WidgetDate:
		raw := strings.TrimSpace(in.Value(prop.Name))
		if raw == "" {
			m.SetProperty(prop.Name, "")
			return "", true
		}
		dateFmt, ok := dateLayouts[prop.Extra.RegExp]
		if !ok {
			dateFmt = dateLayouts[definition.RegExpDate]
		}
		t, err := time.ParseInLocation(dateFmt.layout, raw, settings.Location)
		if err != nil {
			return b.message("invalidDate", "Invalid date %q.", raw), false
		}
		m.SetProperty(prop.Name, t.Unix())
	default:
		value := in.Value(prop.Name)
		if limit := prop.Extra.MaxLength; limit > 0 && utf8.RuneCountInString(value) > limit {
			return b.message("maxlength", "Field %q may not exceed %d characters.", label, limit), false
		}
		m.SetProperty(prop.Name, value)
	}
	return "", true
}

// message translates key from the MSC domain, falling back to the given
// format when the catalogue has no entry.
func (b *Base) message(key, fallback string, args ...any) string {
	if t := b.env.Translator(); t != nil {
		if _, ok := t.Lookup(key, translate.DomainMSC); ok {
			return t.Translate(key, translate.DomainMSC, args...)
		}
	}
	return fmt.Sprintf(fallback, args...)
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

func isBlank(value any) bool {
	return strings.TrimSpace(data.ToString(value)) == ""
}
