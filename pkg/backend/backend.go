// Package backend wires definitions, data providers and shared services into
// a per-request environment and dispatches the controller.
package backend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-dcgeneral/pkg/chrome"
	"github.com/goliatone/go-dcgeneral/pkg/clipboard"
	"github.com/goliatone/go-dcgeneral/pkg/data"
	"github.com/goliatone/go-dcgeneral/pkg/definition"
	"github.com/goliatone/go-dcgeneral/pkg/environment"
	"github.com/goliatone/go-dcgeneral/pkg/event"
	"github.com/goliatone/go-dcgeneral/pkg/format"
	"github.com/goliatone/go-dcgeneral/pkg/input"
	"github.com/goliatone/go-dcgeneral/pkg/panel"
	"github.com/goliatone/go-dcgeneral/pkg/populator"
	"github.com/goliatone/go-dcgeneral/pkg/render/template"
	"github.com/goliatone/go-dcgeneral/pkg/translate"
)

// ErrUnknownContainer is returned by Handle for unregistered containers.
var ErrUnknownContainer = errors.New("backend: unknown container")

// Option customises the backend.
type Option func(*Backend)

// WithDefinitions registers container definitions.
func WithDefinitions(defs ...*definition.Definition) Option {
	return func(b *Backend) {
		b.pendingDefs = append(b.pendingDefs, defs...)
	}
}

// WithDefinitionSet registers every definition of set.
func WithDefinitionSet(set *definition.Set) Option {
	return func(b *Backend) {
		if set == nil {
			return
		}
		for _, name := range set.Names() {
			def, _ := set.Get(name)
			b.pendingDefs = append(b.pendingDefs, def)
		}
	}
}

// WithDataProviders registers providers under their own names.
func WithDataProviders(providers ...data.Provider) Option {
	return func(b *Backend) {
		for _, p := range providers {
			if p != nil {
				b.providers[p.Name()] = p
			}
		}
	}
}

// WithTranslator shares a translator between requests.
func WithTranslator(t translate.Translator) Option {
	return func(b *Backend) {
		b.translator = t
	}
}

// WithHooks installs the extension points used by every request.
func WithHooks(h *event.Hooks) Option {
	return func(b *Backend) {
		b.hooks = h
	}
}

// WithTemplates overrides the embedded view templates.
func WithTemplates(r template.TemplateRenderer) Option {
	return func(b *Backend) {
		b.templates = r
	}
}

// WithFormatSettings sets the date formats and labels of formatted values.
func WithFormatSettings(s format.Settings) Option {
	return func(b *Backend) {
		b.settings = s.WithDefaults()
	}
}

// WithLogger sets the logger. Requests log with the container name attached.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Backend) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithClipboardStore persists clipboards between requests.
func WithClipboardStore(store clipboard.Store) Option {
	return func(b *Backend) {
		if store != nil {
			b.clipboards = store
		}
	}
}

// WithPanelStore persists panel state between requests.
func WithPanelStore(store panel.StateStore) Option {
	return func(b *Backend) {
		if store != nil {
			b.panels = store
		}
	}
}

// WithIconOptions configures the icon resolver of every request.
func WithIconOptions(opts ...chrome.IconOption) Option {
	return func(b *Backend) {
		b.iconOptions = append(b.iconOptions, opts...)
	}
}

// WithRootIDs restricts the roots of a tree container.
func WithRootIDs(container string, ids ...string) Option {
	return func(b *Backend) {
		b.rootIDs[container] = append([]string(nil), ids...)
	}
}

// WithPopulatorOptions passes extra options to the environment populator.
func WithPopulatorOptions(opts ...populator.Option) Option {
	return func(b *Backend) {
		b.populatorOptions = append(b.populatorOptions, opts...)
	}
}

// Result is the outcome of one request. Redirect is set when the action
// asks the client to navigate elsewhere; HTML is empty in that case.
type Result struct {
	HTML     string
	Redirect string
}

// Backend serves all registered containers.
type Backend struct {
	mu          sync.RWMutex
	defs        map[string]*definition.Definition
	pendingDefs []*definition.Definition
	providers   map[string]data.Provider

	translator       translate.Translator
	hooks            *event.Hooks
	templates        template.TemplateRenderer
	settings         format.Settings
	logger           *zap.Logger
	clipboards       clipboard.Store
	panels           panel.StateStore
	iconOptions      []chrome.IconOption
	rootIDs          map[string][]string
	populatorOptions []populator.Option
}

// New builds a backend. Duplicate container names are rejected.
func New(opts ...Option) (*Backend, error) {
	b := &Backend{
		defs:       make(map[string]*definition.Definition),
		providers:  make(map[string]data.Provider),
		settings:   format.DefaultSettings(),
		logger:     zap.NewNop(),
		clipboards: clipboard.NewMemoryStore(),
		panels:     panel.NewMemoryStateStore(),
		rootIDs:    make(map[string][]string),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	if b.translator == nil {
		b.translator = translate.New()
	}
	if b.hooks == nil {
		b.hooks = event.NewHooks()
	}
	for _, def := range b.pendingDefs {
		if err := b.Register(def); err != nil {
			return nil, err
		}
	}
	b.pendingDefs = nil
	return b, nil
}

// Register adds a definition.
func (b *Backend) Register(def *definition.Definition) error {
	if def == nil || def.Name == "" {
		return errors.New("backend: definition requires a name")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.defs[def.Name]; exists {
		return fmt.Errorf("backend: container %q already registered", def.Name)
	}
	b.defs[def.Name] = def
	return nil
}

// RegisterProvider adds or replaces a data provider.
func (b *Backend) RegisterProvider(p data.Provider) {
	if p == nil {
		return
	}
	b.mu.Lock()
	b.providers[p.Name()] = p
	b.mu.Unlock()
}

// Containers returns the registered container names in order.
func (b *Backend) Containers() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	names := make([]string, 0, len(b.defs))
	for name := range b.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definition returns a registered definition.
func (b *Backend) Definition(name string) (*definition.Definition, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	def, ok := b.defs[name]
	return def, ok
}

// DataProvider returns a registered provider.
func (b *Backend) DataProvider(name string) (data.Provider, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	p, ok := b.providers[name]
	return p, ok
}

// Translator returns the shared translator.
func (b *Backend) Translator() translate.Translator {
	return b.translator
}

// Environment builds and populates the environment of one request.
func (b *Backend) Environment(ctx context.Context, container string, in *input.Provider) (*environment.Environment, error) {
	def, ok := b.Definition(container)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownContainer, container)
	}
	if in == nil {
		in = input.New("")
	}

	env := environment.New().
		SetLogger(b.logger.With(zap.String("container", container))).
		SetInputProvider(in).
		SetDefinition(def).
		SetHooks(b.hooks).
		SetFormatSettings(b.settings)
	if b.templates != nil {
		env.SetTemplates(b.templates)
	}
	if parent := b.parentDefinition(def); parent != nil {
		env.SetParentDefinition(parent)
	}
	if ids := b.rootIDs[container]; len(ids) > 0 {
		env.SetRootIDs(ids)
	}

	b.mu.RLock()
	for name, p := range b.providers {
		env.SetDataProvider(name, p)
	}
	b.mu.RUnlock()

	clip, err := b.clipboards.Load(ctx, container)
	if err != nil {
		return nil, fmt.Errorf("backend: load clipboard: %w", err)
	}
	env.SetClipboard(clip)

	opts := append([]populator.Option{
		populator.WithTranslator(b.translator),
		populator.WithPanelStore(b.panels),
		populator.WithIconOptions(b.iconOptions...),
	}, b.populatorOptions...)
	if err := populator.New(opts...).Populate(env); err != nil {
		return nil, err
	}
	return env, nil
}

// Handle serves one request against container.
func (b *Backend) Handle(ctx context.Context, container string, in *input.Provider) (Result, error) {
	env, err := b.Environment(ctx, container, in)
	if err != nil {
		return Result{}, err
	}

	html, err := env.Controller().Dispatch(ctx)
	if err != nil {
		return Result{}, err
	}
	if err := b.clipboards.Save(ctx, container, env.Clipboard()); err != nil {
		return Result{}, fmt.Errorf("backend: save clipboard: %w", err)
	}

	if r := env.Redirector(); r.Redirected() {
		return Result{Redirect: r.Target()}, nil
	}
	return Result{HTML: html}, nil
}

// parentDefinition finds the definition serving the parent provider.
func (b *Backend) parentDefinition(def *definition.Definition) *definition.Definition {
	name := def.Basic.ParentDataProvider
	if name == "" {
		return nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if parent, ok := b.defs[name]; ok {
		return parent
	}
	for _, candidate := range b.defs {
		if candidate.ProviderName() == name {
			return candidate
		}
	}
	return nil
}
