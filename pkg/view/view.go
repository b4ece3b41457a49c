package view

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-dcgeneral/pkg/chrome"
	"github.com/goliatone/go-dcgeneral/pkg/data"
	"github.com/goliatone/go-dcgeneral/pkg/definition"
	"github.com/goliatone/go-dcgeneral/pkg/environment"
	"github.com/goliatone/go-dcgeneral/pkg/input"
	"github.com/goliatone/go-dcgeneral/pkg/model"
	"github.com/goliatone/go-dcgeneral/pkg/render/template"
	"github.com/goliatone/go-dcgeneral/pkg/translate"
	"github.com/goliatone/go-dcgeneral/pkg/widgets"
)

var (
	// ErrMissingParentID is returned when a parented view has no pid.
	ErrMissingParentID = errors.New("view: missing parent id")
	// ErrMissingParentProvider is returned when the parent provider is not
	// configured or not registered.
	ErrMissingParentProvider = errors.New("view: missing parent data provider")
	// ErrMissingDefinition is returned when the environment has no definition.
	ErrMissingDefinition = errors.New("view: missing definition")
	// ErrMissingProvider is returned when the container provider is absent.
	ErrMissingProvider = errors.New("view: missing data provider")
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("view: record not found")
)

// Option configures a view.
type Option func(*Base)

// WithWidgetRegistry overrides the registry used by the edit form.
func WithWidgetRegistry(reg *widgets.Registry) Option {
	return func(b *Base) {
		if reg != nil {
			b.widgets = reg
		}
	}
}

// WithTemplateRenderer overrides the renderer from the environment.
func WithTemplateRenderer(r template.TemplateRenderer) Option {
	return func(b *Base) {
		b.renderer = r
	}
}

// Base carries what all views share.
type Base struct {
	env         *environment.Environment
	widgets     *widgets.Registry
	renderer    template.TemplateRenderer
	rendererErr error
}

func newBase(env *environment.Environment, opts ...Option) Base {
	b := Base{env: env, widgets: widgets.NewRegistry()}
	for _, opt := range opts {
		if opt != nil {
			opt(&b)
		}
	}
	return b
}

// Environment returns the environment the view reads from.
func (b *Base) Environment() *environment.Environment {
	return b.env
}

func (b *Base) definition() (*definition.Definition, error) {
	def := b.env.Definition()
	if def == nil {
		return nil, ErrMissingDefinition
	}
	return def, nil
}

func (b *Base) provider(def *definition.Definition) (data.Provider, error) {
	p := b.env.DataProvider("")
	if p == nil {
		return nil, fmt.Errorf("%w: %q", ErrMissingProvider, def.ProviderName())
	}
	return p, nil
}

func (b *Base) input() *input.Provider {
	if in := b.env.InputProvider(); in != nil {
		return in
	}
	return input.New("")
}

// IsSelectMode reports whether the request asks for row selection.
func (b *Base) IsSelectMode() bool {
	return b.input().Parameter("act") == "select"
}

func (b *Base) url(query string) string {
	builder := b.env.URLBuilder()
	if builder == nil {
		in := b.input()
		builder = chrome.NewURLBuilder(in.Path(), in.Query())
	}
	return builder.AddToURL(query)
}

func (b *Base) icon(src, alt string) string {
	icons := b.env.Icons()
	if icons == nil {
		icons = chrome.NewIcons()
	}
	return icons.HTML(src, alt, "")
}

func (b *Base) templates() (template.TemplateRenderer, error) {
	if b.rendererErr != nil {
		return nil, b.rendererErr
	}
	if b.renderer != nil {
		return b.renderer, nil
	}
	if r := b.env.Templates(); r != nil {
		return r, nil
	}
	return DefaultRenderer()
}

func (b *Base) render(name string, ctx map[string]any) (string, error) {
	r, err := b.templates()
	if err != nil {
		return "", err
	}
	ctx["translate"] = func(key, domain string) string {
		return b.env.Translate(key, domain)
	}
	out, err := r.RenderTemplate(name, ctx)
	if err != nil {
		return "", fmt.Errorf("view: render %s: %w", name, err)
	}
	return out, nil
}

// label returns the first translation of key found in domains, else the
// raw key.
func (b *Base) label(key string, domains ...string) string {
	t := b.env.Translator()
	if t != nil {
		for _, domain := range domains {
			if domain == "" {
				continue
			}
			if msg, ok := t.Lookup(key, domain); ok && msg != "" {
				return msg
			}
		}
	}
	return key
}

// propertyLabel resolves "<prop>.0" in the container domain, then the
// definition label, then the raw name.
func (b *Base) propertyLabel(def *definition.Definition, name string) string {
	if def != nil {
		if msg := b.label(name+".0", def.Name); msg != name+".0" {
			return msg
		}
		if prop, ok := def.Properties.Get(name); ok && prop.Label != "" {
			return prop.Label
		}
	}
	return name
}

func (b *Base) buttonLabel(def *definition.Definition, key string) string {
	domain := ""
	if def != nil {
		domain = def.Name
	}
	return b.label(key, domain, translate.DomainMSC)
}

// fetchByToken loads the record named by the given request parameter.
func (b *Base) fetchByToken(ctx context.Context, def *definition.Definition, param string) (*model.Model, error) {
	raw := b.input().Parameter(param)
	if raw == "" {
		return nil, fmt.Errorf("%w: parameter %q is empty", ErrNotFound, param)
	}
	id, err := model.ResolveID(raw)
	if err != nil {
		return nil, err
	}
	p, err := b.provider(def)
	if err != nil {
		return nil, err
	}
	cfg := p.EmptyConfig()
	cfg.SetID(id)
	m, err := p.Fetch(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("view: fetch %s: %w", raw, err)
	}
	if m == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, raw)
	}
	return m, nil
}
