package view

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dcgeneral/pkg/chrome"
	"github.com/goliatone/go-dcgeneral/pkg/clipboard"
	"github.com/goliatone/go-dcgeneral/pkg/data"
	"github.com/goliatone/go-dcgeneral/pkg/data/memory"
	"github.com/goliatone/go-dcgeneral/pkg/definition"
	"github.com/goliatone/go-dcgeneral/pkg/environment"
	"github.com/goliatone/go-dcgeneral/pkg/event"
	"github.com/goliatone/go-dcgeneral/pkg/format"
	"github.com/goliatone/go-dcgeneral/pkg/input"
	"github.com/goliatone/go-dcgeneral/pkg/model"
	"github.com/goliatone/go-dcgeneral/pkg/panel"
	"github.com/goliatone/go-dcgeneral/pkg/testsupport"
)

const newsDefinitions = `
containers:
  - name: tl_news_archive
    basic:
      mode: flat
      creatable: true
      editable: true
    properties:
      - name: title
  - name: tl_news
    basic:
      mode: parented-list
      parentDataProvider: tl_news_archive
      creatable: true
      editable: true
      deletable: true
    listing:
      defaultSorting:
        - property: date
          direction: desc
      headerProperties: [title, tstamp, missing]
      label:
        properties: [headline]
      grouping:
        property: date
        mode: month
    properties:
      - name: headline
      - name: date
        extra:
          rgxp: datim
    relationships:
      children:
        - source: tl_news_archive
          filter:
            - local: id
              remote: pid
          setters:
            - toField: pid
              fromField: id
`

type countingProvider struct {
	data.Provider
	calls int
}

func (c *countingProvider) Fetch(ctx context.Context, cfg data.Config) (*model.Model, error) {
	c.calls++
	return c.Provider.Fetch(ctx, cfg)
}

func (c *countingProvider) FetchAll(ctx context.Context, cfg data.Config) (*model.Collection, error) {
	c.calls++
	return c.Provider.FetchAll(ctx, cfg)
}

func (c *countingProvider) Count(ctx context.Context, cfg data.Config) (int, error) {
	c.calls++
	return c.Provider.Count(ctx, cfg)
}

type newsFixture struct {
	env      *environment.Environment
	archives *countingProvider
	news     *countingProvider
}

func newNewsFixture(t *testing.T, query url.Values) newsFixture {
	t.Helper()
	defs := testsupport.MustParseDefinitions(t, newsDefinitions)

	archives := &countingProvider{Provider: memory.New("tl_news_archive", memory.WithModels(
		model.NewWithProperties("tl_news_archive", "1", map[string]any{"title": "Press", "tstamp": int64(1700000000)}),
	))}
	news := &countingProvider{Provider: memory.New("tl_news", memory.WithModels(
		model.NewWithProperties("tl_news", "10", map[string]any{"pid": "1", "headline": "First", "date": int64(1700000000)}),
		model.NewWithProperties("tl_news", "11", map[string]any{"pid": "1", "headline": "Second", "date": int64(1702000000)}),
		model.NewWithProperties("tl_news", "12", map[string]any{"pid": "2", "headline": "Elsewhere", "date": int64(1702000000)}),
	))}

	env := environment.New().
		SetInputProvider(input.FromValues("/contao", query)).
		SetDefinition(defs["tl_news"]).
		SetParentDefinition(defs["tl_news_archive"]).
		SetClipboard(clipboard.New()).
		SetRedirector(chrome.NewRedirector()).
		SetDataProvider("tl_news", news).
		SetDataProvider("tl_news_archive", archives)

	return newsFixture{env: env, archives: archives, news: news}
}

func TestRows_GroupHeadersResetEvenOdd(t *testing.T) {
	defs := testsupport.MustParseDefinitions(t, `
name: tl_member
basic:
  mode: flat
listing:
  label:
    properties: [lastname]
  grouping:
    property: lastname
    mode: char
properties:
  - name: lastname
`)
	def := defs["tl_member"]
	env := environment.New().SetDefinition(def)
	base := newBase(env)

	collection := model.NewCollection(
		model.NewWithProperties("tl_member", "1", map[string]any{"lastname": "adams"}),
		model.NewWithProperties("tl_member", "2", map[string]any{"lastname": "atkins"}),
		model.NewWithProperties("tl_member", "3", map[string]any{"lastname": "baker"}),
	)
	rows, err := base.rows(context.Background(), def, collection)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}

	type summary struct {
		Header  *GroupHeader
		EvenOdd string
	}
	got := make([]summary, len(rows))
	for i, row := range rows {
		got[i] = summary{Header: row.GroupHeader, EvenOdd: row.EvenOdd}
	}
	want := []summary{
		{Header: &GroupHeader{Class: "tl_folder_tlist", Value: "A"}, EvenOdd: "even"},
		{EvenOdd: "odd"},
		{Header: &GroupHeader{Class: "tl_folder_list", Value: "B"}, EvenOdd: "even"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestRows_NoGroupHeadersWhenShowingColumns(t *testing.T) {
	defs := testsupport.MustParseDefinitions(t, `
name: tl_member
basic:
  mode: flat
listing:
  showColumns: true
  label:
    properties: [lastname]
  grouping:
    property: lastname
    mode: char
properties:
  - name: lastname
`)
	def := defs["tl_member"]
	base := newBase(environment.New().SetDefinition(def))

	rows, err := base.rows(context.Background(), def, model.NewCollection(
		model.NewWithProperties("tl_member", "1", map[string]any{"lastname": "adams"}),
		model.NewWithProperties("tl_member", "2", map[string]any{"lastname": "baker"}),
	))
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	var evenOdd []string
	for i, row := range rows {
		if row.GroupHeader != nil {
			t.Fatalf("row %d has group header %+v", i, *row.GroupHeader)
		}
		evenOdd = append(evenOdd, row.EvenOdd)
	}
	if diff := cmp.Diff([]string{"even", "odd"}, evenOdd); diff != "" {
		t.Fatalf("even/odd mismatch (-want +got):\n%s", diff)
	}
}

func TestRows_HookReplacesLabel(t *testing.T) {
	defs := testsupport.MustParseDefinitions(t, newsDefinitions)
	def := defs["tl_news"]
	hooks := event.NewHooks().OnRowRender(event.RowRendererFunc(func(_ context.Context, evt event.ChildRecordEvent) (string, bool, error) {
		if evt.Model.ID() == "10" {
			return "<b>custom</b>", true, nil
		}
		return "", false, nil
	}))
	env := environment.New().SetDefinition(def).SetHooks(hooks)
	base := newBase(env)

	rows, err := base.rows(context.Background(), def, model.NewCollection(
		model.NewWithProperties("tl_news", "10", map[string]any{"headline": "First"}),
		model.NewWithProperties("tl_news", "11", map[string]any{"headline": "<i>Second</i>"}),
	))
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if got := rows[0].Label[0].Content; got != "<b>custom</b>" {
		t.Fatalf("hooked label = %q", got)
	}
	if got := rows[1].Label[0].Content; got != "&lt;i&gt;Second&lt;/i&gt;" {
		t.Fatalf("default label = %q, want escaped headline", got)
	}
}

func TestFormatModel_PadsAndTruncatesArguments(t *testing.T) {
	def := &definition.Definition{
		Name: "tl_test",
		Listing: definition.ListingConfig{Label: definition.LabelConfig{
			Properties: []string{"a", "b"},
			Format:     "%s [%s] (%s)",
		}},
	}
	m := model.NewWithProperties("tl_test", "1", map[string]any{"a": "x", "b": "y"})
	cells := FormatModel(def, m, format.DefaultSettings())
	if got := cells[0].Content; got != "x [y] ()" {
		t.Fatalf("padded label = %q", got)
	}

	def.Listing.Label.Format = "%s"
	cells = FormatModel(def, m, format.DefaultSettings())
	if got := cells[0].Content; got != "x" {
		t.Fatalf("truncated label = %q", got)
	}

	def.Listing.ShowColumns = true
	cells = FormatModel(def, m, format.DefaultSettings())
	if len(cells) != 2 || cells[1].Class != "tl_file_list col_b" {
		t.Fatalf("column cells = %+v", cells)
	}
}

func TestGroupValue_EmptyIsDash(t *testing.T) {
	def := &definition.Definition{Properties: definition.Properties{{Name: "title"}}}
	cfg := definition.GroupingConfig{Property: "title", Mode: definition.GroupValue}
	got := GroupValue(def, model.New("x"), cfg, format.DefaultSettings())
	if got != "-" {
		t.Fatalf("GroupValue = %q, want -", got)
	}
}

func TestParentView_MissingPidFailsBeforeProviderAccess(t *testing.T) {
	fx := newNewsFixture(t, url.Values{"do": {"news"}})
	v := NewParentView(fx.env)

	_, err := v.ShowAll(context.Background())
	if !errors.Is(err, ErrMissingParentID) {
		t.Fatalf("ShowAll error = %v, want ErrMissingParentID", err)
	}
	if fx.archives.calls != 0 || fx.news.calls != 0 {
		t.Fatalf("providers touched: archives=%d news=%d", fx.archives.calls, fx.news.calls)
	}
}

func TestParentView_MissingParentProvider(t *testing.T) {
	fx := newNewsFixture(t, url.Values{"pid": {"1"}})
	fx.env.Definition().Basic.ParentDataProvider = "tl_unknown"

	_, err := NewParentView(fx.env).ShowAll(context.Background())
	if !errors.Is(err, ErrMissingParentProvider) {
		t.Fatalf("ShowAll error = %v, want ErrMissingParentProvider", err)
	}
}

func TestParentView_ShowAllRendersHeaderAndChildren(t *testing.T) {
	fx := newNewsFixture(t, url.Values{"do": {"news"}, "table": {"tl_news"}, "pid": {"tl_news_archive::1"}})

	out, err := NewParentView(fx.env).ShowAll(context.Background())
	if err != nil {
		t.Fatalf("ShowAll: %v", err)
	}
	for _, want := range []string{"Press", "2023-11-14 22:13", "December 2023", "November 2023", "First", "Second"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Elsewhere") {
		t.Fatalf("output lists a record of another parent:\n%s", out)
	}
	if strings.Index(out, "Second") > strings.Index(out, "First") {
		t.Fatalf("children not sorted by date desc:\n%s", out)
	}
}

func TestParentView_PlaceholderParentHasNoHeaderFields(t *testing.T) {
	fx := newNewsFixture(t, url.Values{"pid": {"99"}})
	v := NewParentView(fx.env)
	def := fx.env.Definition()

	parent, err := v.loadParent(context.Background(), def)
	if err != nil {
		t.Fatalf("loadParent: %v", err)
	}
	if parent.ID() != "99" || len(parent.Properties()) != 0 {
		t.Fatalf("placeholder = %s %v", parent.ID(), parent.Properties())
	}
	fields, err := v.headerFields(context.Background(), def, parent)
	if err != nil {
		t.Fatalf("headerFields: %v", err)
	}
	if len(fields) != 0 {
		t.Fatalf("header fields = %+v, want none", fields)
	}
}

func TestParentView_HeaderFieldsMergeHooks(t *testing.T) {
	fx := newNewsFixture(t, url.Values{"pid": {"1"}})
	fx.env.SetHooks(event.NewHooks().OnHeaderFields(event.HeaderFieldsFunc(func(_ context.Context, evt event.ParentHeaderEvent) (*event.HeaderFields, error) {
		return event.NewHeaderFields().Set("Items", "2"), nil
	})))
	v := NewParentView(fx.env)

	parent, err := v.loadParent(context.Background(), fx.env.Definition())
	if err != nil {
		t.Fatalf("loadParent: %v", err)
	}
	fields, err := v.headerFields(context.Background(), fx.env.Definition(), parent)
	if err != nil {
		t.Fatalf("headerFields: %v", err)
	}
	want := []HeaderField{
		{Label: "title", Value: "Press"},
		{Label: "tstamp", Value: "2023-11-14 22:13"},
		{Label: "Items", Value: "2"},
	}
	if diff := cmp.Diff(want, fields); diff != "" {
		t.Fatalf("header fields mismatch (-want +got):\n%s", diff)
	}
}

func hasButton(buttons []Button, name string) (Button, bool) {
	for _, btn := range buttons {
		if btn.Name == name {
			return btn, true
		}
	}
	return Button{}, false
}

func TestParentView_PasteNewButton(t *testing.T) {
	cases := []struct {
		name      string
		sorting   []data.SortField
		closed    bool
		creatable bool
		want      bool
	}{
		{name: "manual sort", sorting: []data.SortField{{Property: "sorting"}}, creatable: true, want: true},
		{name: "date sort", sorting: []data.SortField{{Property: "date"}}, creatable: true, want: true},
		{name: "unsorted", creatable: true},
		{name: "closed", sorting: []data.SortField{{Property: "sorting"}}, closed: true, creatable: true},
		{name: "not creatable", sorting: []data.SortField{{Property: "sorting"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fx := newNewsFixture(t, url.Values{"pid": {"1"}})
			def := fx.env.Definition()
			def.Listing.DefaultSorting = tc.sorting
			def.Basic.Closed = tc.closed
			def.Basic.Creatable = tc.creatable

			v := NewParentView(fx.env)
			cfg, err := v.childConfig(context.Background(), def)
			if err != nil {
				t.Fatalf("childConfig: %v", err)
			}
			btn, got := hasButton(v.headerButtons(def, model.New("tl_news_archive").SetID("1"), cfg), "pastenew")
			if got != tc.want {
				t.Fatalf("pastenew present = %v, want %v", got, tc.want)
			}
			if got && (!strings.Contains(btn.Href, "act=create") || !strings.Contains(btn.Href, "pid=tl_news_archive%3A%3A1")) {
				t.Fatalf("pastenew href = %q", btn.Href)
			}
		})
	}
}

func TestParentView_PasteNewFollowsPanelSort(t *testing.T) {
	fx := newNewsFixture(t, url.Values{"pid": {"1"}, "sort": {"headline"}})
	def := fx.env.Definition()
	def.Listing.DefaultSorting = nil
	def.Panel = definition.PanelLayout{Rows: [][]definition.PanelElement{{{Type: definition.PanelSort}}}}
	fx.env.SetPanel(panel.New(def, nil))

	out, err := NewParentView(fx.env).ShowAll(context.Background())
	if err != nil {
		t.Fatalf("ShowAll: %v", err)
	}
	if !strings.Contains(out, "header_new") {
		t.Fatalf("paste-new missing for panel sorted listing:\n%s", out)
	}

	fx = newNewsFixture(t, url.Values{"pid": {"1"}})
	def = fx.env.Definition()
	def.Listing.DefaultSorting = nil
	def.Panel = definition.PanelLayout{Rows: [][]definition.PanelElement{{{Type: definition.PanelSort}}}}
	fx.env.SetPanel(panel.New(def, nil))

	out, err = NewParentView(fx.env).ShowAll(context.Background())
	if err != nil {
		t.Fatalf("ShowAll: %v", err)
	}
	if strings.Contains(out, "header_new") {
		t.Fatalf("paste-new offered without any sort:\n%s", out)
	}
}

func TestParentView_SelectModeOnlyOffersSelectAll(t *testing.T) {
	fx := newNewsFixture(t, url.Values{"pid": {"1"}, "act": {"select"}})
	buttons := NewParentView(fx.env).headerButtons(fx.env.Definition(), model.New("tl_news_archive").SetID("1"), data.Config{})
	if len(buttons) != 1 || buttons[0].Name != "selectAll" {
		t.Fatalf("buttons = %+v", buttons)
	}
}

func TestParentView_NilParentRedirectsToErrorPage(t *testing.T) {
	fx := newNewsFixture(t, url.Values{"pid": {"1"}})

	out, err := NewParentView(fx.env).RenderParent(context.Background(), nil, model.NewCollection())
	if err != nil {
		t.Fatalf("RenderParent: %v", err)
	}
	if out != "" {
		t.Fatalf("output = %q, want empty", out)
	}
	if got := fx.env.Redirector().Target(); got != chrome.ErrorPage {
		t.Fatalf("redirect target = %q, want %q", got, chrome.ErrorPage)
	}
}

func TestParentView_EnforceModelRelationship(t *testing.T) {
	fx := newNewsFixture(t, url.Values{"pid": {"tl_news_archive::1"}})
	m := model.New("tl_news")

	if err := NewParentView(fx.env).EnforceModelRelationship(context.Background(), m); err != nil {
		t.Fatalf("EnforceModelRelationship: %v", err)
	}
	if got := data.ToString(m.Property("pid")); got != "1" {
		t.Fatalf("pid = %q, want 1", got)
	}
}
