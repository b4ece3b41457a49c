// Package environment is the request-scoped container that wires a data
// container's definition, providers and collaborators together. The View and
// Controller contracts are declared here so views and controllers can depend
// on the environment without importing each other.
package environment

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-dcgeneral/pkg/chrome"
	"github.com/goliatone/go-dcgeneral/pkg/clipboard"
	"github.com/goliatone/go-dcgeneral/pkg/data"
	"github.com/goliatone/go-dcgeneral/pkg/definition"
	"github.com/goliatone/go-dcgeneral/pkg/event"
	"github.com/goliatone/go-dcgeneral/pkg/format"
	"github.com/goliatone/go-dcgeneral/pkg/input"
	"github.com/goliatone/go-dcgeneral/pkg/model"
	"github.com/goliatone/go-dcgeneral/pkg/panel"
	"github.com/goliatone/go-dcgeneral/pkg/render/template"
	"github.com/goliatone/go-dcgeneral/pkg/translate"
)

// View renders a container.
type View interface {
	ShowAll(ctx context.Context) (string, error)
	Create(ctx context.Context) (string, error)
	Edit(ctx context.Context) (string, error)
	Paste(ctx context.Context) (string, error)
	EnforceModelRelationship(ctx context.Context, m *model.Model) error
}

// DetailView is implemented by views that render a single record read only.
type DetailView interface {
	Show(ctx context.Context) (string, error)
}

// FormView is implemented by views that can re-render the edit form of a
// model with validation messages keyed by property name.
type FormView interface {
	RenderForm(ctx context.Context, m *model.Model, errs map[string]string) (string, error)
}

// Controller dispatches the requested action.
type Controller interface {
	Dispatch(ctx context.Context) (string, error)
	BaseConfig(ctx context.Context) (data.Config, error)
}

// Environment holds everything a single request needs. It is not shared
// across requests; the mutex only guards the provider map.
type Environment struct {
	input            *input.Provider
	clipboard        *clipboard.Clipboard
	translator       translate.Translator
	view             View
	controller       Controller
	definition       *definition.Definition
	parentDefinition *definition.Definition
	hooks            *event.Hooks
	urlBuilder       *chrome.URLBuilder
	icons            *chrome.Icons
	redirector       *chrome.Redirector
	panel            *panel.Panel
	logger           *zap.Logger
	templates        template.TemplateRenderer
	formatSettings   format.Settings
	rootIDs          []string

	mu        sync.RWMutex
	providers map[string]data.Provider
}

// New returns an empty environment with a no-op logger.
func New() *Environment {
	return &Environment{
		logger:         zap.NewNop(),
		formatSettings: format.DefaultSettings(),
		providers:      make(map[string]data.Provider),
	}
}

func (e *Environment) InputProvider() *input.Provider { return e.input }

func (e *Environment) SetInputProvider(in *input.Provider) *Environment {
	e.input = in
	return e
}

func (e *Environment) Clipboard() *clipboard.Clipboard { return e.clipboard }

func (e *Environment) SetClipboard(clip *clipboard.Clipboard) *Environment {
	e.clipboard = clip
	return e
}

func (e *Environment) Translator() translate.Translator { return e.translator }

func (e *Environment) SetTranslator(t translate.Translator) *Environment {
	e.translator = t
	return e
}

func (e *Environment) View() View { return e.view }

func (e *Environment) SetView(v View) *Environment {
	e.view = v
	return e
}

func (e *Environment) Controller() Controller { return e.controller }

func (e *Environment) SetController(c Controller) *Environment {
	e.controller = c
	return e
}

func (e *Environment) Definition() *definition.Definition { return e.definition }

func (e *Environment) SetDefinition(def *definition.Definition) *Environment {
	e.definition = def
	return e
}

func (e *Environment) ParentDefinition() *definition.Definition { return e.parentDefinition }

func (e *Environment) SetParentDefinition(def *definition.Definition) *Environment {
	e.parentDefinition = def
	return e
}

func (e *Environment) Hooks() *event.Hooks { return e.hooks }

func (e *Environment) SetHooks(h *event.Hooks) *Environment {
	e.hooks = h
	return e
}

func (e *Environment) URLBuilder() *chrome.URLBuilder { return e.urlBuilder }

func (e *Environment) SetURLBuilder(b *chrome.URLBuilder) *Environment {
	e.urlBuilder = b
	return e
}

func (e *Environment) Icons() *chrome.Icons { return e.icons }

func (e *Environment) SetIcons(i *chrome.Icons) *Environment {
	e.icons = i
	return e
}

func (e *Environment) Redirector() *chrome.Redirector { return e.redirector }

func (e *Environment) SetRedirector(r *chrome.Redirector) *Environment {
	e.redirector = r
	return e
}

func (e *Environment) Panel() *panel.Panel { return e.panel }

func (e *Environment) SetPanel(p *panel.Panel) *Environment {
	e.panel = p
	return e
}

// Logger never returns nil.
func (e *Environment) Logger() *zap.Logger {
	if e.logger == nil {
		return zap.NewNop()
	}
	return e.logger
}

func (e *Environment) SetLogger(l *zap.Logger) *Environment {
	e.logger = l
	return e
}

func (e *Environment) Templates() template.TemplateRenderer { return e.templates }

func (e *Environment) SetTemplates(r template.TemplateRenderer) *Environment {
	e.templates = r
	return e
}

func (e *Environment) FormatSettings() format.Settings { return e.formatSettings }

func (e *Environment) SetFormatSettings(s format.Settings) *Environment {
	e.formatSettings = s.WithDefaults()
	return e
}

// RootIDs lists the ids tree views start from when no root condition
// applies.
func (e *Environment) RootIDs() []string { return append([]string(nil), e.rootIDs...) }

func (e *Environment) SetRootIDs(ids []string) *Environment {
	e.rootIDs = append([]string(nil), ids...)
	return e
}

// DataProvider returns the provider registered under name. An empty name
// selects the provider of the current definition.
func (e *Environment) DataProvider(name string) data.Provider {
	if name == "" {
		name = e.definition.ProviderName()
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.providers[name]
}

// SetDataProvider registers p under name. An empty name uses the current
// definition's provider name.
func (e *Environment) SetDataProvider(name string, p data.Provider) *Environment {
	if name == "" {
		name = e.definition.ProviderName()
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.providers[name] = p
	return e
}

// Translate is a nil-safe shortcut to the translator.
func (e *Environment) Translate(key, domain string, args ...any) string {
	if e.translator == nil {
		return key
	}
	return e.translator.Translate(key, domain, args...)
}
