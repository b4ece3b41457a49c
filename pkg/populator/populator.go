// Package populator fills an environment with default collaborators. Values
// already present are never replaced, so populating twice is harmless.
package populator

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-dcgeneral/pkg/chrome"
	"github.com/goliatone/go-dcgeneral/pkg/clipboard"
	"github.com/goliatone/go-dcgeneral/pkg/controller"
	"github.com/goliatone/go-dcgeneral/pkg/definition"
	"github.com/goliatone/go-dcgeneral/pkg/environment"
	"github.com/goliatone/go-dcgeneral/pkg/event"
	"github.com/goliatone/go-dcgeneral/pkg/input"
	"github.com/goliatone/go-dcgeneral/pkg/panel"
	"github.com/goliatone/go-dcgeneral/pkg/translate"
	"github.com/goliatone/go-dcgeneral/pkg/view"
)

var (
	// ErrInvalidArgument is returned when the environment cannot be
	// populated from its definition.
	ErrInvalidArgument = errors.New("populator: invalid argument")
	// ErrUnknownViewMode is wrapped by ErrInvalidArgument for definitions
	// whose mode has no view.
	ErrUnknownViewMode = errors.New("populator: unknown view mode")
)

// Option configures a Populator.
type Option func(*Populator)

// WithTranslator sets the translator used when the environment has none.
func WithTranslator(t translate.Translator) Option {
	return func(p *Populator) {
		p.translator = t
	}
}

// WithPanelStore persists panel state across requests.
func WithPanelStore(store panel.StateStore) Option {
	return func(p *Populator) {
		p.panelStore = store
	}
}

// WithIconOptions configures the icon resolver.
func WithIconOptions(opts ...chrome.IconOption) Option {
	return func(p *Populator) {
		p.iconOptions = append(p.iconOptions, opts...)
	}
}

// WithViewOptions are passed to every view the populator creates.
func WithViewOptions(opts ...view.Option) Option {
	return func(p *Populator) {
		p.viewOptions = append(p.viewOptions, opts...)
	}
}

// WithControllerOptions are passed to the default controller.
func WithControllerOptions(opts ...controller.Option) Option {
	return func(p *Populator) {
		p.controllerOptions = append(p.controllerOptions, opts...)
	}
}

// Populator creates the default collaborators.
type Populator struct {
	translator        translate.Translator
	panelStore        panel.StateStore
	iconOptions       []chrome.IconOption
	viewOptions       []view.Option
	controllerOptions []controller.Option
}

// New returns a populator.
func New(opts ...Option) *Populator {
	p := &Populator{}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Populate fills env with the default populator.
func Populate(env *environment.Environment) error {
	return New().Populate(env)
}

// Populate fills every empty slot of env. Without a definition the view
// slot stays empty.
func (p *Populator) Populate(env *environment.Environment) error {
	if env == nil {
		return fmt.Errorf("%w: nil environment", ErrInvalidArgument)
	}

	in := env.InputProvider()
	if in == nil {
		in = input.New("")
		env.SetInputProvider(in)
	}
	if env.Clipboard() == nil {
		env.SetClipboard(clipboard.New())
	}
	if env.Translator() == nil {
		t := p.translator
		if t == nil {
			t = translate.New()
		}
		env.SetTranslator(t)
	}
	if env.Hooks() == nil {
		env.SetHooks(event.NewHooks())
	}
	if env.URLBuilder() == nil {
		env.SetURLBuilder(chrome.NewURLBuilder(in.Path(), in.Query()))
	}
	if env.Icons() == nil {
		opts := append([]chrome.IconOption{chrome.WithIconLogger(env.Logger())}, p.iconOptions...)
		env.SetIcons(chrome.NewIcons(opts...))
	}
	if env.Redirector() == nil {
		env.SetRedirector(chrome.NewRedirector())
	}

	def := env.Definition()
	if def != nil && env.Panel() == nil {
		env.SetPanel(panel.New(def, p.panelStore))
	}

	if env.View() == nil && def != nil {
		v, err := p.newView(env, def)
		if err != nil {
			return err
		}
		env.SetView(v)
	}
	if env.Controller() == nil {
		env.SetController(controller.New(env, p.controllerOptions...))
	}

	env.Logger().Debug("environment populated", zap.Bool("has_definition", def != nil))
	return nil
}

func (p *Populator) newView(env *environment.Environment, def *definition.Definition) (environment.View, error) {
	switch def.Basic.Mode {
	case definition.ModeFlat:
		return view.NewListView(env, p.viewOptions...), nil
	case definition.ModeParentedList:
		return view.NewParentView(env, p.viewOptions...), nil
	case definition.ModeHierarchical:
		return view.NewTreeView(env, p.viewOptions...), nil
	default:
		return nil, fmt.Errorf("%w: %w %q in %s", ErrInvalidArgument, ErrUnknownViewMode, def.Basic.Mode, def.Name)
	}
}
