package view

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dcgeneral/pkg/clipboard"
	"github.com/goliatone/go-dcgeneral/pkg/data/memory"
	"github.com/goliatone/go-dcgeneral/pkg/environment"
	"github.com/goliatone/go-dcgeneral/pkg/input"
	"github.com/goliatone/go-dcgeneral/pkg/model"
	"github.com/goliatone/go-dcgeneral/pkg/testsupport"
)

const pageDefinition = `
name: tl_page
basic:
  mode: hierarchical
  creatable: true
  editable: true
listing:
  defaultSorting:
    - property: sorting
  label:
    properties: [title]
properties:
  - name: title
relationships:
  root:
    filter:
      - operation: "="
        property: pid
        value: 0
    setters:
      - toField: pid
        value: 0
  children:
    - source: tl_page
      filter:
        - local: id
          remote: pid
      setters:
        - toField: pid
          fromField: id
`

func page(id string, pid int, sorting int, title string) *model.Model {
	return model.NewWithProperties("tl_page", id, map[string]any{"pid": pid, "sorting": sorting, "title": title})
}

func newTreeEnv(t *testing.T, raw string, query url.Values, pages ...*model.Model) *environment.Environment {
	t.Helper()
	defs := testsupport.MustParseDefinitions(t, raw)
	return environment.New().
		SetInputProvider(input.FromValues("/contao", query)).
		SetDefinition(defs["tl_page"]).
		SetClipboard(clipboard.New()).
		SetDataProvider("tl_page", memory.New("tl_page", memory.WithModels(pages...)))
}

type treeRow struct {
	ID          string
	Depth       int
	HasChildren bool
	Open        bool
}

func summarize(rows []RowContext) []treeRow {
	out := make([]treeRow, len(rows))
	for i, row := range rows {
		out[i] = treeRow{ID: row.ID, Depth: row.Depth, HasChildren: row.HasChildren, Open: row.Open}
	}
	return out
}

func samplePages() []*model.Model {
	return []*model.Model{
		page("1", 0, 1, "Home"),
		page("2", 1, 1, "About"),
		page("3", 2, 1, "Team"),
		page("4", 0, 2, "Imprint"),
	}
}

func TestTreeView_ToggleState(t *testing.T) {
	cases := []struct {
		name   string
		toggle string
		want   []treeRow
	}{
		{
			name: "collapsed",
			want: []treeRow{
				{ID: "tl_page::1", HasChildren: true},
				{ID: "tl_page::4"},
			},
		},
		{
			name:   "one open",
			toggle: "tl_page::1",
			want: []treeRow{
				{ID: "tl_page::1", HasChildren: true, Open: true},
				{ID: "tl_page::2", Depth: 1, HasChildren: true},
				{ID: "tl_page::4"},
			},
		},
		{
			name:   "all",
			toggle: "all",
			want: []treeRow{
				{ID: "tl_page::1", HasChildren: true, Open: true},
				{ID: "tl_page::2", Depth: 1, HasChildren: true, Open: true},
				{ID: "tl_page::3", Depth: 2},
				{ID: "tl_page::4"},
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTreeEnv(t, pageDefinition, url.Values{ParamToggle: {tc.toggle}}, samplePages()...)
			v := NewTreeView(env)
			rows, err := v.treeRows(context.Background(), env.Definition())
			if err != nil {
				t.Fatalf("treeRows: %v", err)
			}
			if diff := cmp.Diff(tc.want, summarize(rows)); diff != "" {
				t.Fatalf("rows mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTreeView_ToggleLinkFlipsNode(t *testing.T) {
	env := newTreeEnv(t, pageDefinition, url.Values{"do": {"page"}}, samplePages()...)
	rows, err := NewTreeView(env).treeRows(context.Background(), env.Definition())
	if err != nil {
		t.Fatalf("treeRows: %v", err)
	}
	if !strings.Contains(rows[0].Toggle, "ptg=tl_page%3A%3A1") {
		t.Fatalf("toggle = %q", rows[0].Toggle)
	}
	if rows[1].Toggle != "" {
		t.Fatalf("leaf toggle = %q, want empty", rows[1].Toggle)
	}
}

func TestTreeView_CyclesAreListedOnce(t *testing.T) {
	raw := strings.Replace(pageDefinition, `  root:
    filter:
      - operation: "="
        property: pid
        value: 0
    setters:
      - toField: pid
        value: 0
`, "", 1)
	env := newTreeEnv(t, raw, url.Values{ParamToggle: {"all"}},
		page("5", 6, 1, "Loop A"),
		page("6", 5, 1, "Loop B"),
	)
	env.SetRootIDs([]string{"5"})

	rows, err := NewTreeView(env).treeRows(context.Background(), env.Definition())
	if err != nil {
		t.Fatalf("treeRows: %v", err)
	}
	want := []treeRow{
		{ID: "tl_page::5", HasChildren: true, Open: true},
		{ID: "tl_page::6", Depth: 1, HasChildren: true, Open: true},
	}
	if diff := cmp.Diff(want, summarize(rows)); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestTreeView_PasteIntoSkipsCutSource(t *testing.T) {
	env := newTreeEnv(t, pageDefinition, nil, samplePages()...)
	env.Clipboard().Cut(model.NewModelID("tl_page", "1"))
	v := NewTreeView(env)

	rows, err := v.treeRows(context.Background(), env.Definition())
	if err != nil {
		t.Fatalf("treeRows: %v", err)
	}
	for _, row := range rows {
		has := false
		for _, btn := range row.Buttons {
			if btn.Name == "pasteinto" {
				has = true
				if !strings.Contains(btn.Href, "act=cut") || !strings.Contains(btn.Href, "mode=2") {
					t.Fatalf("pasteinto href = %q", btn.Href)
				}
			}
		}
		if want := row.ID != "tl_page::1"; has != want {
			t.Fatalf("row %s pasteinto = %v, want %v", row.ID, has, want)
		}
	}
}

func TestTreeView_EnforceModelRelationship(t *testing.T) {
	env := newTreeEnv(t, pageDefinition, url.Values{"pid": {"tl_page::2"}}, samplePages()...)
	m := model.New("tl_page")
	if err := NewTreeView(env).EnforceModelRelationship(context.Background(), m); err != nil {
		t.Fatalf("EnforceModelRelationship: %v", err)
	}
	if got := m.Property("pid"); got != "2" {
		t.Fatalf("child pid = %v, want 2", got)
	}

	env.InputProvider().UnsetParameter("pid")
	root := model.New("tl_page")
	if err := NewTreeView(env).EnforceModelRelationship(context.Background(), root); err != nil {
		t.Fatalf("EnforceModelRelationship: %v", err)
	}
	if got := root.Property("pid"); got != 0 {
		t.Fatalf("root pid = %v, want 0", got)
	}
}

func TestTreeView_ShowAllRenders(t *testing.T) {
	env := newTreeEnv(t, pageDefinition, url.Values{ParamToggle: {"all"}}, samplePages()...)
	out, err := NewTreeView(env).ShowAll(context.Background())
	if err != nil {
		t.Fatalf("ShowAll: %v", err)
	}
	for _, want := range []string{"Home", "About", "Team", "Imprint", `data-depth="2"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}
