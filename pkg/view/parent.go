package view

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/goliatone/go-dcgeneral/pkg/chrome"
	"github.com/goliatone/go-dcgeneral/pkg/data"
	"github.com/goliatone/go-dcgeneral/pkg/definition"
	"github.com/goliatone/go-dcgeneral/pkg/environment"
	"github.com/goliatone/go-dcgeneral/pkg/event"
	"github.com/goliatone/go-dcgeneral/pkg/format"
	"github.com/goliatone/go-dcgeneral/pkg/model"
)

// ParentView lists the children of one parent record below a header
// describing that parent.
type ParentView struct {
	Base
}

var _ environment.View = (*ParentView)(nil)

// NewParentView returns a parent view over env.
func NewParentView(env *environment.Environment, opts ...Option) *ParentView {
	return &ParentView{Base: newBase(env, opts...)}
}

// HeaderField is a formatted parent property shown in the header.
type HeaderField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ShowAll renders the parent header and its children.
func (v *ParentView) ShowAll(ctx context.Context) (string, error) {
	def, err := v.definition()
	if err != nil {
		return "", err
	}

	parent, err := v.loadParent(ctx, def)
	if err != nil {
		return "", err
	}

	cfg, err := v.childConfig(ctx, def)
	if err != nil {
		return "", err
	}

	p, err := v.provider(def)
	if err != nil {
		return "", err
	}
	children, err := p.FetchAll(ctx, cfg)
	if err != nil {
		return "", fmt.Errorf("view: fetch children: %w", err)
	}

	return v.renderParent(ctx, def, parent, children, cfg)
}

// Paste renders the listing with paste targets for the pending clipboard.
func (v *ParentView) Paste(ctx context.Context) (string, error) {
	return v.ShowAll(ctx)
}

// loadParent resolves the pid parameter against the parent provider. A
// missing record yields a placeholder carrying only the id.
func (v *ParentView) loadParent(ctx context.Context, def *definition.Definition) (*model.Model, error) {
	pid := v.input().Parameter("pid")
	if pid == "" {
		return nil, ErrMissingParentID
	}
	name := def.Basic.ParentDataProvider
	if name == "" {
		return nil, fmt.Errorf("%w: container %q has no parent provider configured", ErrMissingParentProvider, def.Name)
	}
	parents := v.env.DataProvider(name)
	if parents == nil {
		return nil, fmt.Errorf("%w: %q is not registered", ErrMissingParentProvider, name)
	}

	id, err := model.ResolveID(pid)
	if err != nil {
		return nil, fmt.Errorf("view: parent id: %w", err)
	}
	cfg := parents.EmptyConfig()
	cfg.SetID(id)
	parent, err := parents.Fetch(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("view: fetch parent %s: %w", pid, err)
	}
	if parent == nil {
		v.env.Logger().Debug("parent record not found, using placeholder",
			zap.String("provider", name),
			zap.String("id", id),
		)
		parent = model.New(name).SetID(id)
	}
	return parent, nil
}

func (v *ParentView) childConfig(ctx context.Context, def *definition.Definition) (data.Config, error) {
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

// RenderParent renders an already loaded parent and its children. A nil
// parent is logged and redirects to the error page with empty output.
func (v *ParentView) RenderParent(ctx context.Context, parent *model.Model, children *model.Collection) (string, error) {
	def, err := v.definition()
	if err != nil {
		return "", err
	}
	if parent == nil {
		return v.renderParent(ctx, def, nil, children, data.Config{})
	}
	cfg, err := v.childConfig(ctx, def)
	if err != nil {
		return "", err
	}
	return v.renderParent(ctx, def, parent, children, cfg)
}

// renderParent renders the listing; cfg is the finalized child config the
// children were fetched with.
func (v *ParentView) renderParent(ctx context.Context, def *definition.Definition, parent *model.Model, children *model.Collection, cfg data.Config) (string, error) {
	if parent == nil {
		v.env.Logger().Error("parent record missing for parent view",
			zap.String("container", def.Name),
			zap.String("pid", v.input().Parameter("pid")),
		)
		if r := v.env.Redirector(); r != nil {
			r.Redirect(chrome.ErrorPage)
		}
		return "", nil
	}

	rows, err := v.rows(ctx, def, children)
	if err != nil {
		return "", err
	}

	fields, err := v.headerFields(ctx, def, parent)
	if err != nil {
		return "", err
	}

	return v.render("parent_view", map[string]any{
		"definition":     def.Name,
		"parent_id":      parent.ModelID().Serialize(),
		"header_fields":  fields,
		"header_buttons": v.headerButtons(def, parent, cfg),
		"rows":           rows,
		"select_mode":    v.IsSelectMode(),
		"clipboard":      !v.env.Clipboard().IsEmpty(),
		"panel":          v.env.Panel().Render(),
		"empty_label":    v.buttonLabel(def, "noResult"),
	})
}

func (v *ParentView) headerFields(ctx context.Context, def *definition.Definition, parent *model.Model) ([]HeaderField, error) {
	parentDef := v.env.ParentDefinition()
	if parentDef == nil {
		parentDef = &definition.Definition{Name: def.Basic.ParentDataProvider}
	}
	settings := v.env.FormatSettings()

	fields := event.NewHeaderFields()
	for _, name := range def.Listing.HeaderProperties {
		if !parent.HasProperty(name) {
			continue
		}
		var formatted string
		if name == "tstamp" {
			formatted = format.ForKind(format.KindDateTime, settings).Format(parent.Property(name))
		} else {
			prop, _ := parentDef.Properties.Get(name)
			formatted = format.Resolve(prop, settings).Format(parent.Property(name))
		}
		if formatted == "" {
			continue
		}
		fields.Set(v.headerLabel(parentDef, name), formatted)
	}

	merged, err := v.env.Hooks().HeaderFields(ctx, event.ParentHeaderEvent{
		DefinitionName: def.Name,
		Parent:         parent,
		Fields:         fields,
	})
	if err != nil {
		return nil, fmt.Errorf("view: header fields: %w", err)
	}

	out := make([]HeaderField, 0, merged.Len())
	for _, entry := range merged.Entries() {
		out = append(out, HeaderField{Label: entry.Key, Value: entry.Value})
	}
	return out, nil
}

// headerLabel is "<prop>.0" in the parent domain, else the raw name.
func (v *ParentView) headerLabel(parentDef *definition.Definition, name string) string {
	if msg := v.label(name+".0", parentDef.Name); msg != name+".0" {
		return msg
	}
	return name
}

// headerButtons are select-all in select mode; otherwise paste-new (sorted
// child config, open and creatable), edit-header (editable parent) and
// paste-after (pending clipboard).
func (v *ParentView) headerButtons(def *definition.Definition, parent *model.Model, cfg data.Config) []Button {
	if v.IsSelectMode() {
		return []Button{v.selectAllButton(def)}
	}

	token := parent.ModelID().Serialize()
	var out []Button
	if cfg.HasSorting() && !def.Basic.Closed && def.Basic.Creatable {
		btn := v.button(def, "pastenew", "act=create&mode=2&pid="+url.QueryEscape(token), "new")
		btn.Class = "header_new"
		out = append(out, btn)
	}
	if parentDef := v.env.ParentDefinition(); parentDef != nil && parentDef.Basic.Editable {
		btn := v.button(def, "editheader", "act=edit&id="+url.QueryEscape(token), "header")
		btn.Href = chrome.ReplaceTable(btn.Href, parentDef.Name)
		btn.Class = "header_edit"
		out = append(out, btn)
	}
	if btn, ok := v.pasteAfterButton(def, token); ok {
		out = append(out, btn)
	}
	return out
}

// EnforceModelRelationship applies the parent/child condition setters of
// the pid parent to m. Without a condition it does nothing.
func (v *ParentView) EnforceModelRelationship(ctx context.Context, m *model.Model) error {
	def, err := v.definition()
	if err != nil {
		return err
	}
	cond := def.Relationships.ChildCondition(def.Basic.ParentDataProvider, def.ProviderName())
	if cond == nil {
		return nil
	}
	parent, err := v.loadParent(ctx, def)
	if err != nil {
		return err
	}
	cond.ApplyTo(parent, m)
	return nil
}
