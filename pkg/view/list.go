package view

import (
	"context"
	"fmt"

	"github.com/goliatone/go-dcgeneral/pkg/data"
	"github.com/goliatone/go-dcgeneral/pkg/definition"
	"github.com/goliatone/go-dcgeneral/pkg/environment"
	"github.com/goliatone/go-dcgeneral/pkg/model"
)

// ListView lists the records of a flat container.
type ListView struct {
	Base
}

var _ environment.View = (*ListView)(nil)

// NewListView returns a list view over env.
func NewListView(env *environment.Environment, opts ...Option) *ListView {
	return &ListView{Base: newBase(env, opts...)}
}

// ShowAll renders the panel and every matching record.
func (v *ListView) ShowAll(ctx context.Context) (string, error) {
	def, err := v.definition()
	if err != nil {
		return "", err
	}
	cfg, err := v.listConfig(ctx, def)
	if err != nil {
		return "", err
	}
	p, err := v.provider(def)
	if err != nil {
		return "", err
	}
	collection, err := p.FetchAll(ctx, cfg)
	if err != nil {
		return "", fmt.Errorf("view: fetch records: %w", err)
	}

	rows, err := v.rows(ctx, def, collection)
	if err != nil {
		return "", err
	}

	return v.render("list_view", map[string]any{
		"definition":     def.Name,
		"header_buttons": v.headerButtons(def),
		"rows":           rows,
		"select_mode":    v.IsSelectMode(),
		"clipboard":      !v.env.Clipboard().IsEmpty(),
		"panel":          v.env.Panel().Render(),
		"empty_label":    v.buttonLabel(def, "noResult"),
	})
}

// Paste renders the listing with the paste button of the pending clipboard.
func (v *ListView) Paste(ctx context.Context) (string, error) {
	return v.ShowAll(ctx)
}

func (v *ListView) listConfig(ctx context.Context, def *definition.Definition) (data.Config, error) {
	var cfg data.Config
	if c := v.env.Controller(); c != nil {
		base, err := c.BaseConfig(ctx)
		if err != nil {
			return data.Config{}, err
		}
		cfg = base
	} else {
		p, err := v.provider(def)
		if err != nil {
			return data.Config{}, err
		}
		cfg = p.EmptyConfig()
	}
	if pnl := v.env.Panel(); pnl != nil {
		if err := pnl.Initialize(ctx, v.input(), &cfg); err != nil {
			return data.Config{}, err
		}
	}
	if !cfg.HasSorting() && len(def.Listing.DefaultSorting) > 0 {
		cfg.SetSorting(def.Listing.DefaultSorting...)
	}
	return cfg, nil
}

func (v *ListView) headerButtons(def *definition.Definition) []Button {
	if v.IsSelectMode() {
		return []Button{v.selectAllButton(def)}
	}
	var out []Button
	if def.Basic.Creatable && !def.Basic.Closed {
		btn := v.button(def, "new", "act=create", "new")
		btn.Class = "header_new"
		out = append(out, btn)
	}
	if v.env.Clipboard().IsNotEmpty() {
		btn := v.button(def, "pasteafter", "act=paste", "pasteafter")
		btn.Class = "header_paste"
		out = append(out, btn)
	}
	return out
}

// EnforceModelRelationship is a no-op for flat containers.
func (v *ListView) EnforceModelRelationship(context.Context, *model.Model) error {
	return nil
}
