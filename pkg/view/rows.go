package view

import (
	"context"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-dcgeneral/pkg/data"
	"github.com/goliatone/go-dcgeneral/pkg/definition"
	"github.com/goliatone/go-dcgeneral/pkg/event"
	"github.com/goliatone/go-dcgeneral/pkg/format"
	"github.com/goliatone/go-dcgeneral/pkg/model"
)

// Group header classes: the first header of a listing differs from the rest.
const (
	firstGroupClass = "tl_folder_tlist"
	groupClass      = "tl_folder_list"
)

// RowContext is the render-time annotation of one listed model. It lives
// next to the model instead of inside it.
type RowContext struct {
	Model       *model.Model `json:"-"`
	ID          string       `json:"id"`
	GroupHeader *GroupHeader `json:"groupHeader,omitempty"`
	CSSClass    string       `json:"cssClass,omitempty"`
	EvenOdd     string       `json:"evenOdd"`
	Label       []LabelCell  `json:"label"`
	Buttons     []Button     `json:"buttons,omitempty"`
	Depth       int          `json:"depth,omitempty"`
	HasChildren bool         `json:"hasChildren,omitempty"`
	Open        bool         `json:"open,omitempty"`
	Toggle      string       `json:"toggle,omitempty"`
}

// GroupHeader is rendered above the first row of each group.
type GroupHeader struct {
	Class string `json:"class"`
	Value string `json:"value"`
}

// LabelCell is one cell of a row label. Content is HTML.
type LabelCell struct {
	Colspan int    `json:"colspan"`
	Class   string `json:"class"`
	Content string `json:"content"`
}

// GroupValue returns the group header text of m under cfg.
func GroupValue(def *definition.Definition, m *model.Model, cfg definition.GroupingConfig, settings format.Settings) string {
	prop, _ := def.Properties.Get(cfg.Property)
	value := m.Property(cfg.Property)
	if cfg.Property == "id" && value == nil {
		value = m.ID()
	}

	var out string
	switch cfg.Mode {
	case definition.GroupChar:
		length := cfg.Length
		if length <= 0 {
			length = 1
		}
		text := format.Resolve(prop, settings).Format(value)
		if utf8.RuneCountInString(text) > length {
			text = string([]rune(text)[:length])
		}
		out = strings.ToUpper(text)
	case definition.GroupDay:
		out = groupTime(value, settings.WithDefaults().DateFormat, settings)
	case definition.GroupMonth:
		out = groupTime(value, "F Y", settings)
	case definition.GroupYear:
		out = groupTime(value, "Y", settings)
	default:
		out = format.Resolve(prop, settings).Format(value)
	}
	if strings.TrimSpace(out) == "" {
		return "-"
	}
	return out
}

func groupTime(value any, layout string, settings format.Settings) string {
	t, ok := format.ToTime(value)
	if !ok {
		return data.ToString(value)
	}
	if t.IsZero() {
		return ""
	}
	if loc := settings.WithDefaults().Location; loc != nil {
		t = t.In(loc)
	}
	return format.PHPDate(layout, t)
}

// FormatModel builds the label cells of m from the listing label config.
// Property values are formatted and HTML escaped; the format string is
// trusted markup.
func FormatModel(def *definition.Definition, m *model.Model, settings format.Settings) []LabelCell {
	label := def.Listing.Label
	names := label.Properties
	if len(names) == 0 {
		return []LabelCell{{Colspan: 1, Class: "tl_file_list", Content: html.EscapeString(m.ID())}}
	}

	values := make([]string, len(names))
	for i, name := range names {
		values[i] = html.EscapeString(truncate(formatValue(def, name, m.Property(name), settings), label.MaxLength))
	}

	if def.Listing.ShowColumns {
		cells := make([]LabelCell, len(values))
		for i, value := range values {
			cells[i] = LabelCell{Colspan: 1, Class: "tl_file_list col_" + names[i], Content: value}
		}
		return cells
	}

	layout := label.Format
	if layout == "" {
		layout = strings.TrimSpace(strings.Repeat("%s ", len(values)))
	}
	args := make([]any, 0, len(values))
	for _, value := range values {
		args = append(args, value)
	}
	if placeholders := strings.Count(layout, "%s"); placeholders > len(args) {
		for len(args) < placeholders {
			args = append(args, "")
		}
	} else if placeholders < len(args) {
		args = args[:placeholders]
	}
	return []LabelCell{{Colspan: 1, Class: "tl_file_list", Content: fmt.Sprintf(layout, args...)}}
}

func formatValue(def *definition.Definition, name string, value any, settings format.Settings) string {
	if name == "tstamp" {
		return format.ForKind(format.KindDateTime, settings).Format(value)
	}
	prop, ok := def.Properties.Get(name)
	if !ok {
		return format.ForKind(format.KindPlain, settings).Format(value)
	}
	return format.Resolve(prop, settings).Format(value)
}

func truncate(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	return strings.TrimSpace(string([]rune(text)[:limit])) + "…"
}

// rowPass annotates a collection in a single pass: group headers, even/odd
// classes, buttons and labels.
type rowPass struct {
	base       *Base
	def        *definition.Definition
	settings   format.Settings
	selectMode bool

	evenOdd    int
	hasPrev    bool
	prevGroup  string
	groupClass string
}

func (b *Base) newRowPass(def *definition.Definition) *rowPass {
	return &rowPass{
		base:       b,
		def:        def,
		settings:   b.env.FormatSettings(),
		selectMode: b.IsSelectMode(),
		evenOdd:    -1,
		groupClass: firstGroupClass,
	}
}

// row annotates m. prev and next are its siblings in display order and may
// be nil.
func (p *rowPass) row(ctx context.Context, m, prev, next *model.Model) (RowContext, error) {
	row := RowContext{
		Model:    m,
		ID:       m.ModelID().Serialize(),
		CSSClass: p.def.Listing.ItemCSSClass,
	}

	grouping := p.def.Listing.Grouping
	if grouping.Enabled() && !p.def.Listing.ShowColumns {
		value := GroupValue(p.def, m, grouping, p.settings)
		if !p.hasPrev || value != p.prevGroup {
			row.GroupHeader = &GroupHeader{Class: p.groupClass, Value: value}
			p.groupClass = groupClass
			p.evenOdd = -1
		}
		p.prevGroup = value
	}
	p.hasPrev = true

	p.evenOdd++
	if p.evenOdd%2 == 0 {
		row.EvenOdd = "even"
	} else {
		row.EvenOdd = "odd"
	}

	if !p.selectMode {
		row.Buttons = p.base.rowButtons(p.def, m, prev, next)
	}

	rendered, ok, err := p.base.env.Hooks().RenderRow(ctx, event.ChildRecordEvent{
		DefinitionName: p.def.Name,
		Model:          m,
	})
	if err != nil {
		return RowContext{}, fmt.Errorf("view: render row %s: %w", row.ID, err)
	}
	if ok {
		row.Label = []LabelCell{{Colspan: 1, Class: "tl_file_list", Content: rendered}}
	} else {
		row.Label = FormatModel(p.def, m, p.settings)
	}
	return row, nil
}

// rows annotates a whole collection.
func (b *Base) rows(ctx context.Context, def *definition.Definition, collection *model.Collection) ([]RowContext, error) {
	pass := b.newRowPass(def)
	out := make([]RowContext, 0, collection.Len())
	for i := 0; i < collection.Len(); i++ {
		row, err := pass.row(ctx, collection.Get(i), collection.Get(i-1), collection.Get(i+1))
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}
