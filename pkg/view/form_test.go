package view

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dcgeneral/pkg/clipboard"
	"github.com/goliatone/go-dcgeneral/pkg/data/memory"
	"github.com/goliatone/go-dcgeneral/pkg/environment"
	"github.com/goliatone/go-dcgeneral/pkg/input"
	"github.com/goliatone/go-dcgeneral/pkg/model"
	"github.com/goliatone/go-dcgeneral/pkg/testsupport"
)

const articleDefinition = `
name: tl_article
basic:
  mode: flat
  creatable: true
  editable: true
  deletable: true
listing:
  defaultSorting:
    - property: headline
  label:
    properties: [headline]
properties:
  - name: headline
    extra:
      mandatory: true
      maxlength: 8
  - name: date
    extra:
      rgxp: date
  - name: tags
    options:
      - value: a
        label: Alpha
      - value: b
        label: Beta
    extra:
      multiple: true
  - name: published
    widgetType: checkbox
  - name: teaser
    extra:
      maxlength: 1000
`

func newArticleEnv(t *testing.T, query url.Values, articles ...*model.Model) *environment.Environment {
	t.Helper()
	defs := testsupport.MustParseDefinitions(t, articleDefinition)
	return environment.New().
		SetInputProvider(input.FromValues("/contao", query)).
		SetDefinition(defs["tl_article"]).
		SetClipboard(clipboard.New()).
		SetDataProvider("tl_article", memory.New("tl_article", memory.WithModels(articles...)))
}

func TestDecodeForm_StoresTypedValues(t *testing.T) {
	env := newArticleEnv(t, url.Values{"act": {"save"}})
	env.InputProvider().
		SetMethod("POST").
		SetValue("headline", "Launch").
		SetValue("date", "2024-01-31").
		SetValue("tags", "a", "b").
		SetValue("teaser", "Short")

	m := model.New("tl_article")
	if errs := DecodeForm(env, nil, m); errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	want := map[string]any{
		"headline":  "Launch",
		"date":      int64(1706659200),
		"tags":      `["a","b"]`,
		"published": "",
		"teaser":    "Short",
	}
	if diff := cmp.Diff(want, m.Properties()); diff != "" {
		t.Fatalf("properties mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeForm_ReportsValidationErrors(t *testing.T) {
	env := newArticleEnv(t, nil)
	env.InputProvider().
		SetValue("headline", "").
		SetValue("date", "31/01/2024").
		SetValue("tags", "z")

	errs := DecodeForm(env, nil, model.New("tl_article"))
	want := map[string]string{
		"headline": `Please fill in field "headline".`,
		"date":     `Invalid date "31/01/2024".`,
		"tags":     `Invalid option "z".`,
	}
	if diff := cmp.Diff(want, errs); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeForm_MaxLength(t *testing.T) {
	env := newArticleEnv(t, nil)
	env.InputProvider().SetValue("headline", "Far too long")

	errs := DecodeForm(env, nil, model.New("tl_article"))
	if got := errs["headline"]; got != `Field "headline" may not exceed 8 characters.` {
		t.Fatalf("headline error = %q", got)
	}
}

func TestEdit_RendersStoredValues(t *testing.T) {
	env := newArticleEnv(t, url.Values{"do": {"article"}, "act": {"edit"}, "id": {"tl_article::7"}},
		model.NewWithProperties("tl_article", "7", map[string]any{
			"headline":  "Launch",
			"date":      int64(1706659200),
			"tags":      `["b"]`,
			"published": "1",
		}),
	)

	out, err := NewListView(env).Edit(context.Background())
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	for _, want := range []string{
		`value="Launch"`,
		`type="date"`,
		`value="2024-01-31"`,
		`value="b" checked`,
		`name="published" id="ctrl_published" class="tl_checkbox" value="1" checked`,
		`<textarea name="teaser"`,
		"act=save",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("form missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, `value="a" checked`) {
		t.Fatalf("unselected option rendered as checked:\n%s", out)
	}
}

func TestRenderForm_ShowsFieldErrors(t *testing.T) {
	env := newArticleEnv(t, nil)
	out, err := NewListView(env).RenderForm(context.Background(), model.New("tl_article"), map[string]string{"headline": "Required"})
	if err != nil {
		t.Fatalf("RenderForm: %v", err)
	}
	if !strings.Contains(out, `<p class="tl_error">Required</p>`) {
		t.Fatalf("field error not rendered:\n%s", out)
	}
}

func TestEdit_MissingRecord(t *testing.T) {
	env := newArticleEnv(t, url.Values{"id": {"tl_article::404"}})
	_, err := NewListView(env).Edit(context.Background())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Edit error = %v, want ErrNotFound", err)
	}
}

func TestCreate_ClosedContainer(t *testing.T) {
	env := newArticleEnv(t, nil)
	env.Definition().Basic.Closed = true
	_, err := NewListView(env).Create(context.Background())
	if !errors.Is(err, ErrNotCreatable) {
		t.Fatalf("Create error = %v, want ErrNotCreatable", err)
	}
}

func TestShow_FormatsValues(t *testing.T) {
	env := newArticleEnv(t, url.Values{"id": {"7"}},
		model.NewWithProperties("tl_article", "7", map[string]any{
			"headline": "Launch",
			"date":     int64(1706659200),
			"tags":     `["a","b"]`,
		}),
	)
	out, err := NewListView(env).Show(context.Background())
	if err != nil {
		t.Fatalf("Show: %v", err)
	}
	for _, want := range []string{"Launch", "2024-01-31", "Alpha, Beta"} {
		if !strings.Contains(out, want) {
			t.Fatalf("show output missing %q:\n%s", want, out)
		}
	}
}

func TestListView_HeaderButtons(t *testing.T) {
	env := newArticleEnv(t, nil)
	v := NewListView(env)
	def := env.Definition()

	names := func(buttons []Button) []string {
		var out []string
		for _, b := range buttons {
			out = append(out, b.Name)
		}
		return out
	}
	if diff := cmp.Diff([]string{"new"}, names(v.headerButtons(def))); diff != "" {
		t.Fatalf("buttons mismatch (-want +got):\n%s", diff)
	}

	env.Clipboard().Copy(model.NewModelID("tl_article", "1"))
	if diff := cmp.Diff([]string{"new", "pasteafter"}, names(v.headerButtons(def))); diff != "" {
		t.Fatalf("buttons mismatch (-want +got):\n%s", diff)
	}
}

func TestListView_ShowAllRendersRows(t *testing.T) {
	env := newArticleEnv(t, url.Values{"do": {"article"}},
		model.NewWithProperties("tl_article", "1", map[string]any{"headline": "Beta"}),
		model.NewWithProperties("tl_article", "2", map[string]any{"headline": "Alpha"}),
	)
	out, err := NewListView(env).ShowAll(context.Background())
	if err != nil {
		t.Fatalf("ShowAll: %v", err)
	}
	if a, b := strings.Index(out, "Alpha"), strings.Index(out, "Beta"); a < 0 || b < 0 || a > b {
		t.Fatalf("rows missing or unsorted:\n%s", out)
	}
	if !strings.Contains(out, "act=delete") {
		t.Fatalf("delete button missing:\n%s", out)
	}
}

func TestWithTemplatesFS_OverridesSingleTemplate(t *testing.T) {
	env := newArticleEnv(t, nil,
		model.NewWithProperties("tl_article", "1", map[string]any{"headline": "Beta"}),
	)
	overrides := fstest.MapFS{
		"list_view.tmpl": {Data: []byte(`<section class="custom">{% include "rows.tmpl" %}</section>`)},
	}
	out, err := NewListView(env, WithTemplatesFS(overrides)).ShowAll(context.Background())
	if err != nil {
		t.Fatalf("ShowAll: %v", err)
	}
	if !strings.Contains(out, `<section class="custom">`) || !strings.Contains(out, "Beta") {
		t.Fatalf("override not applied:\n%s", out)
	}
}
