package view

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/goliatone/go-dcgeneral/pkg/clipboard"
	"github.com/goliatone/go-dcgeneral/pkg/data"
	"github.com/goliatone/go-dcgeneral/pkg/definition"
	"github.com/goliatone/go-dcgeneral/pkg/environment"
	"github.com/goliatone/go-dcgeneral/pkg/model"
)

// ParamToggle carries the comma separated open node tokens of a tree, or
// "all" to expand every node.
const ParamToggle = "ptg"

// TreeView renders a hierarchical container.
type TreeView struct {
	Base
}

var _ environment.View = (*TreeView)(nil)

// NewTreeView returns a tree view over env.
func NewTreeView(env *environment.Environment, opts ...Option) *TreeView {
	return &TreeView{Base: newBase(env, opts...)}
}

type treeState struct {
	all  bool
	open []string
}

func (s treeState) isOpen(token string) bool {
	return s.all || slices.Contains(s.open, token)
}

// toggled returns the ptg value that flips token.
func (s treeState) toggled(token string) string {
	if s.all {
		return ""
	}
	if i := slices.Index(s.open, token); i >= 0 {
		next := slices.Delete(slices.Clone(s.open), i, i+1)
		return strings.Join(next, ",")
	}
	return strings.Join(append(slices.Clone(s.open), token), ",")
}

func (v *TreeView) state() treeState {
	raw := strings.TrimSpace(v.input().Parameter(ParamToggle))
	if raw == "all" {
		return treeState{all: true}
	}
	var open []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			open = append(open, part)
		}
	}
	return treeState{open: open}
}

// ShowAll renders the roots and every open subtree.
func (v *TreeView) ShowAll(ctx context.Context) (string, error) {
	def, err := v.definition()
	if err != nil {
		return "", err
	}
	rows, err := v.treeRows(ctx, def)
	if err != nil {
		return "", err
	}

	return v.render("tree_view", map[string]any{
		"definition":     def.Name,
		"header_buttons": v.headerButtons(def),
		"rows":           rows,
		"select_mode":    v.IsSelectMode(),
		"clipboard":      !v.env.Clipboard().IsEmpty(),
		"expand_all":     v.url(ParamToggle + "=all"),
		"empty_label":    v.buttonLabel(def, "noResult"),
	})
}

// treeRows flattens the visible part of the tree in display order. A
// record reachable twice is listed once.
func (v *TreeView) treeRows(ctx context.Context, def *definition.Definition) ([]RowContext, error) {
	p, err := v.provider(def)
	if err != nil {
		return nil, err
	}
	roots, err := v.roots(ctx, def, p)
	if err != nil {
		return nil, err
	}

	walker := &treeWalker{
		view:    v,
		def:     def,
		p:       p,
		cond:    def.Relationships.ChildCondition(def.ProviderName(), def.ProviderName()),
		state:   v.state(),
		pass:    v.newRowPass(def),
		visited: make(map[string]bool),
	}
	if err := walker.walk(ctx, roots, 0); err != nil {
		return nil, err
	}
	return walker.rows, nil
}

// Paste renders the tree with paste-into buttons.
func (v *TreeView) Paste(ctx context.Context) (string, error) {
	return v.ShowAll(ctx)
}

// roots uses the root condition, then the environment root ids, then every
// record no other record claims as child.
func (v *TreeView) roots(ctx context.Context, def *definition.Definition, p data.Provider) (*model.Collection, error) {
	cfg := p.EmptyConfig()
	if len(def.Listing.DefaultSorting) > 0 {
		cfg.SetSorting(def.Listing.DefaultSorting...)
	}

	if root := def.Relationships.RootCondition(); root != nil && len(root.Filter) > 0 {
		cfg.AddFilter(root.Filter...)
		out, err := p.FetchAll(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("view: fetch roots: %w", err)
		}
		return out, nil
	}

	if ids := v.env.RootIDs(); len(ids) > 0 {
		values := make([]any, len(ids))
		for i, id := range ids {
			values[i] = id
		}
		cfg.AddFilter(data.In("id", values...))
		out, err := p.FetchAll(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("view: fetch roots: %w", err)
		}
		return out, nil
	}

	all, err := p.FetchAll(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("view: fetch roots: %w", err)
	}
	cond := def.Relationships.ChildCondition(def.ProviderName(), def.ProviderName())
	if cond == nil {
		return all, nil
	}
	roots := model.NewCollection()
	for _, candidate := range all.Models() {
		claimed := false
		for _, other := range all.Models() {
			if other.ID() != candidate.ID() && cond.Matches(other, candidate) {
				claimed = true
				break
			}
		}
		if !claimed {
			roots.Add(candidate)
		}
	}
	return roots, nil
}

type treeWalker struct {
	view    *TreeView
	def     *definition.Definition
	p       data.Provider
	cond    *definition.ChildCondition
	state   treeState
	pass    *rowPass
	visited map[string]bool
	rows    []RowContext
}

func (w *treeWalker) children(ctx context.Context, parent *model.Model) (*model.Collection, error) {
	if w.cond == nil {
		return model.NewCollection(), nil
	}
	cfg := w.p.EmptyConfig()
	cfg.AddFilter(w.cond.FilterFor(parent)...)
	if len(w.def.Listing.DefaultSorting) > 0 {
		cfg.SetSorting(w.def.Listing.DefaultSorting...)
	}
	out, err := w.p.FetchAll(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("view: fetch children of %s: %w", parent.ID(), err)
	}
	return out, nil
}

func (w *treeWalker) walk(ctx context.Context, level *model.Collection, depth int) error {
	for i := 0; i < level.Len(); i++ {
		m := level.Get(i)
		if w.visited[m.ID()] {
			continue
		}
		w.visited[m.ID()] = true

		row, err := w.pass.row(ctx, m, level.Get(i-1), level.Get(i+1))
		if err != nil {
			return err
		}
		row.Depth = depth

		kids, err := w.children(ctx, m)
		if err != nil {
			return err
		}
		row.HasChildren = kids.Len() > 0
		row.Open = row.HasChildren && w.state.isOpen(row.ID)
		if row.HasChildren {
			row.Toggle = w.view.url(ParamToggle + "=" + url.QueryEscape(w.state.toggled(row.ID)))
		}
		if btn, ok := w.view.pasteIntoButton(w.def, row.ID); ok && !w.pass.selectMode {
			row.Buttons = append(row.Buttons, btn)
		}
		w.rows = append(w.rows, row)

		if row.Open {
			if err := w.walk(ctx, kids, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

func (v *TreeView) pasteIntoButton(def *definition.Definition, token string) (Button, bool) {
	clip := v.env.Clipboard()
	if clip.IsEmpty() {
		return Button{}, false
	}
	// A record cannot be cut into itself.
	if clip.Mode() == clipboard.ModeCut && clip.Source().Serialize() == token {
		return Button{}, false
	}
	btn := v.button(def, "pasteinto", "act="+string(clip.Mode())+"&mode=2&pid="+url.QueryEscape(token), "pasteinto")
	return btn, true
}

func (v *TreeView) headerButtons(def *definition.Definition) []Button {
	if v.IsSelectMode() {
		return []Button{v.selectAllButton(def)}
	}
	var out []Button
	if def.Basic.Creatable && !def.Basic.Closed {
		btn := v.button(def, "new", "act=create", "new")
		btn.Class = "header_new"
		out = append(out, btn)
	}
	if btn, ok := v.pasteAfterButton(def, ""); ok {
		out = append(out, btn)
	}
	return out
}

// EnforceModelRelationship attaches m below the pid record, or makes it a
// root record when no pid is given.
func (v *TreeView) EnforceModelRelationship(ctx context.Context, m *model.Model) error {
	def, err := v.definition()
	if err != nil {
		return err
	}
	pid := v.input().Parameter("pid")
	if pid == "" {
		def.Relationships.RootCondition().ApplyTo(m)
		return nil
	}
	cond := def.Relationships.ChildCondition(def.ProviderName(), def.ProviderName())
	if cond == nil {
		return nil
	}
	id, err := model.ResolveID(pid)
	if err != nil {
		return fmt.Errorf("view: parent id: %w", err)
	}
	p, err := v.provider(def)
	if err != nil {
		return err
	}
	cfg := p.EmptyConfig()
	cfg.SetID(id)
	parent, err := p.Fetch(ctx, cfg)
	if err != nil {
		return fmt.Errorf("view: fetch parent %s: %w", pid, err)
	}
	if parent == nil {
		parent = model.New(def.ProviderName()).SetID(id)
	}
	cond.ApplyTo(parent, m)
	return nil
}
