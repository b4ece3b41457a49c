// Package controller dispatches backend actions for one container: listing,
// edit forms, clipboard operations, moves, deletes and saves.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-dcgeneral/pkg/chrome"
	"github.com/goliatone/go-dcgeneral/pkg/clipboard"
	"github.com/goliatone/go-dcgeneral/pkg/data"
	"github.com/goliatone/go-dcgeneral/pkg/definition"
	"github.com/goliatone/go-dcgeneral/pkg/environment"
	"github.com/goliatone/go-dcgeneral/pkg/input"
	"github.com/goliatone/go-dcgeneral/pkg/model"
	"github.com/goliatone/go-dcgeneral/pkg/view"
	"github.com/goliatone/go-dcgeneral/pkg/widgets"
)

// Actions understood by Dispatch.
const (
	ActShowAll = "showAll"
	ActSelect  = "select"
	ActCreate  = "create"
	ActEdit    = "edit"
	ActShow    = "show"
	ActCopy    = "copy"
	ActCut     = "cut"
	ActPaste   = "paste"
	ActMove    = "move"
	ActDelete  = "delete"
	ActSave    = "save"
)

// SortingProperty holds the manual sort order of sortable containers.
const SortingProperty = "sorting"

// sortingStep leaves room between neighbours.
const sortingStep = 128

var (
	// ErrUnknownAction is returned for an act parameter Dispatch does not know.
	ErrUnknownAction = errors.New("controller: unknown action")
	// ErrMissingView is returned when the environment has no view.
	ErrMissingView = errors.New("controller: environment has no view")
	// ErrMissingSource is returned when a clipboard action names no record.
	ErrMissingSource = errors.New("controller: missing source record")
	// ErrMethodNotAllowed is returned when saving without a POST request.
	ErrMethodNotAllowed = errors.New("controller: save requires a POST request")
	// ErrNotDeletable is returned when deleting from a read only container.
	ErrNotDeletable = errors.New("controller: container does not allow deletes")
	// ErrNotSortable is returned when moving records of a container without
	// manual sorting.
	ErrNotSortable = errors.New("controller: container is not manually sorted")
)

// Option configures the default controller.
type Option func(*Default)

// WithWidgetRegistry sets the registry used to decode submitted forms.
func WithWidgetRegistry(reg *widgets.Registry) Option {
	return func(c *Default) {
		if reg != nil {
			c.widgets = reg
		}
	}
}

// WithClock overrides the time source used for tstamp.
func WithClock(now func() time.Time) Option {
	return func(c *Default) {
		if now != nil {
			c.now = now
		}
	}
}

// Default is the built-in controller.
type Default struct {
	env     *environment.Environment
	widgets *widgets.Registry
	now     func() time.Time
}

var _ environment.Controller = (*Default)(nil)

// New returns the default controller bound to env.
func New(env *environment.Environment, opts ...Option) *Default {
	c := &Default{env: env, widgets: widgets.NewRegistry(), now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Dispatch runs the action named by the act parameter. Actions that change
// data end with a redirect and return empty output.
func (c *Default) Dispatch(ctx context.Context) (string, error) {
	v := c.env.View()
	if v == nil {
		return "", ErrMissingView
	}
	in := c.input()
	act := in.Parameter("act")
	c.env.Logger().Debug("dispatch",
		zap.String("container", c.containerName()),
		zap.String("act", act),
	)

	switch act {
	case "", ActShowAll, ActSelect:
		return v.ShowAll(ctx)
	case ActCreate:
		if mode := c.clipboard().Mode(); isPaste(in) && mode != clipboard.ModeNone && mode != clipboard.ModeCreate {
			return c.paste(ctx)
		}
		return v.Create(ctx)
	case ActEdit:
		return v.Edit(ctx)
	case ActShow:
		if dv, ok := v.(environment.DetailView); ok {
			return dv.Show(ctx)
		}
		return v.ShowAll(ctx)
	case ActCopy, ActCut:
		if isPaste(in) {
			return c.paste(ctx)
		}
		return c.toClipboard(clipboard.Mode(act))
	case ActPaste:
		return c.paste(ctx)
	case ActMove:
		return c.move(ctx)
	case ActDelete:
		return c.delete(ctx)
	case ActSave:
		return c.save(ctx)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, act)
	}
}

// BaseConfig returns the provider's empty config. Parented lists are
// restricted to the children of the pid parent.
func (c *Default) BaseConfig(ctx context.Context) (data.Config, error) {
	def := c.env.Definition()
	if def == nil {
		return data.Config{}, view.ErrMissingDefinition
	}
	p := c.env.DataProvider("")
	if p == nil {
		return data.Config{}, fmt.Errorf("%w: %q", view.ErrMissingProvider, def.ProviderName())
	}
	cfg := p.EmptyConfig()
	if def.Basic.Mode != definition.ModeParentedList {
		return cfg, nil
	}

	cond := def.Relationships.ChildCondition(def.Basic.ParentDataProvider, def.ProviderName())
	if cond == nil {
		return cfg, nil
	}
	parent, err := c.parent(ctx, def)
	if err != nil {
		return data.Config{}, err
	}
	cfg.AddFilter(cond.FilterFor(parent)...)
	return cfg, nil
}

// parent loads the pid record of a parented list, or a placeholder when the
// parent provider does not hold it.
func (c *Default) parent(ctx context.Context, def *definition.Definition) (*model.Model, error) {
	pid := c.input().Parameter("pid")
	if pid == "" {
		return nil, view.ErrMissingParentID
	}
	id, err := model.ResolveID(pid)
	if err != nil {
		return nil, fmt.Errorf("controller: parent id: %w", err)
	}
	name := def.Basic.ParentDataProvider
	placeholder := model.New(name).SetID(id)
	parents := c.env.DataProvider(name)
	if parents == nil {
		return placeholder, nil
	}
	cfg := parents.EmptyConfig()
	cfg.SetID(id)
	parent, err := parents.Fetch(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("controller: fetch parent %s: %w", pid, err)
	}
	if parent == nil {
		return placeholder, nil
	}
	return parent, nil
}

func (c *Default) toClipboard(mode clipboard.Mode) (string, error) {
	source, err := c.modelID("source")
	if err != nil {
		return "", err
	}
	clip := c.clipboard()
	switch mode {
	case clipboard.ModeCut:
		clip.Cut(source)
	default:
		clip.Copy(source)
	}
	c.env.Logger().Debug("clipboard set",
		zap.String("mode", string(mode)),
		zap.String("source", source.Serialize()),
	)
	return c.redirect("act=&source=")
}

// paste applies the clipboard below the pid target: a cut moves the source,
// a copy saves a clone with a fresh id. The clipboard is cleared afterwards.
func (c *Default) paste(ctx context.Context) (string, error) {
	clip := c.clipboard()
	if clip.IsEmpty() {
		return c.redirect(c.listingQuery())
	}
	if clip.Mode() == clipboard.ModeCreate {
		return c.env.View().Create(ctx)
	}

	def, p, err := c.target()
	if err != nil {
		return "", err
	}
	source := clip.Source()
	sourceProvider := p
	if source.ProviderName != "" && source.ProviderName != p.Name() {
		sourceProvider = c.env.DataProvider(source.ProviderName)
		if sourceProvider == nil {
			return "", fmt.Errorf("%w: %q", view.ErrMissingProvider, source.ProviderName)
		}
	}
	m, err := fetch(ctx, sourceProvider, source.ID)
	if err != nil {
		return "", err
	}

	if clip.Mode() == clipboard.ModeCopy {
		m = m.Clone()
		m.SetID("")
	}
	if err := c.env.View().EnforceModelRelationship(ctx, m); err != nil {
		return "", err
	}
	if def.IsSortable() {
		if err := c.appendSorting(ctx, p, m); err != nil {
			return "", err
		}
	}
	m.SetProperty("tstamp", c.now().Unix())
	if err := p.Save(ctx, m); err != nil {
		return "", fmt.Errorf("controller: paste %s: %w", source.Serialize(), err)
	}
	c.env.Logger().Info("record pasted",
		zap.String("mode", string(clip.Mode())),
		zap.String("source", source.Serialize()),
		zap.String("id", m.ID()),
	)
	clip.Clear()
	return c.redirect(c.listingQuery())
}

// appendSorting places m after the last sibling visible under BaseConfig.
func (c *Default) appendSorting(ctx context.Context, p data.Provider, m *model.Model) error {
	cfg, err := c.BaseConfig(ctx)
	if err != nil && !errors.Is(err, view.ErrMissingParentID) {
		return err
	}
	if err != nil {
		cfg = p.EmptyConfig()
	}
	siblings, err := p.FetchAll(ctx, cfg)
	if err != nil {
		return fmt.Errorf("controller: fetch siblings: %w", err)
	}
	var highest int64
	for _, sibling := range siblings.Models() {
		if sibling.ID() == m.ID() {
			continue
		}
		if n, ok := toInt64(sibling.Property(SortingProperty)); ok && n > highest {
			highest = n
		}
	}
	m.SetProperty(SortingProperty, highest+sortingStep)
	return nil
}

// move swaps the sort position of the id record with the sid sibling.
func (c *Default) move(ctx context.Context) (string, error) {
	def, p, err := c.target()
	if err != nil {
		return "", err
	}
	if !def.IsSortable() || !def.Basic.Editable {
		return "", fmt.Errorf("%w: %s", ErrNotSortable, def.Name)
	}
	subject, err := c.fetchParam(ctx, p, "id")
	if err != nil {
		return "", err
	}
	sibling, err := c.fetchParam(ctx, p, "sid")
	if err != nil {
		return "", err
	}

	a, b := subject.Property(SortingProperty), sibling.Property(SortingProperty)
	if data.CompareValues(a, b) == 0 {
		// Equal positions cannot be swapped; spread them first.
		b = int64(0)
		if n, ok := toInt64(a); ok {
			b = n + 1
		}
	}
	subject.SetProperty(SortingProperty, b)
	sibling.SetProperty(SortingProperty, a)
	for _, m := range []*model.Model{subject, sibling} {
		if err := p.Save(ctx, m); err != nil {
			return "", fmt.Errorf("controller: move %s: %w", m.ID(), err)
		}
	}
	return c.redirect("act=&id=&sid=")
}

func (c *Default) delete(ctx context.Context) (string, error) {
	def, p, err := c.target()
	if err != nil {
		return "", err
	}
	if !def.Basic.Deletable {
		return "", fmt.Errorf("%w: %s", ErrNotDeletable, def.Name)
	}
	m, err := c.fetchParam(ctx, p, "id")
	if err != nil {
		return "", err
	}
	if err := p.Delete(ctx, m); err != nil {
		return "", fmt.Errorf("controller: delete %s: %w", m.ID(), err)
	}
	if clip := c.clipboard(); clip.IsNotEmpty() && clip.Source().Equal(m.ModelID()) {
		clip.Clear()
	}
	c.env.Logger().Info("record deleted", zap.String("id", m.ModelID().Serialize()))
	return c.redirect("act=&id=")
}

// save stores the submitted form. Validation failures re-render the form.
func (c *Default) save(ctx context.Context) (string, error) {
	in := c.input()
	if !in.IsPost() {
		return "", ErrMethodNotAllowed
	}
	def, p, err := c.target()
	if err != nil {
		return "", err
	}

	var m *model.Model
	if in.Parameter("id") != "" {
		if !def.Basic.Editable {
			return "", fmt.Errorf("%w: %s", view.ErrNotEditable, def.Name)
		}
		if m, err = c.fetchParam(ctx, p, "id"); err != nil {
			return "", err
		}
	} else {
		if !def.Basic.Creatable || def.Basic.Closed {
			return "", fmt.Errorf("%w: %s", view.ErrNotCreatable, def.Name)
		}
		m = p.EmptyModel()
		if err := c.env.View().EnforceModelRelationship(ctx, m); err != nil {
			return "", err
		}
		if def.IsSortable() {
			if err := c.appendSorting(ctx, p, m); err != nil {
				return "", err
			}
		}
	}

	if errs := view.DecodeForm(c.env, c.widgets, m); len(errs) > 0 {
		if fv, ok := c.env.View().(environment.FormView); ok {
			return fv.RenderForm(ctx, m, errs)
		}
		return "", fmt.Errorf("controller: invalid input for %s", def.Name)
	}
	m.SetProperty("tstamp", c.now().Unix())
	if err := p.Save(ctx, m); err != nil {
		return "", fmt.Errorf("controller: save: %w", err)
	}
	c.clipboard().Clear()
	c.env.Logger().Info("record saved", zap.String("id", m.ModelID().Serialize()))
	return c.redirect(c.listingQuery() + "&id=")
}

func (c *Default) target() (*definition.Definition, data.Provider, error) {
	def := c.env.Definition()
	if def == nil {
		return nil, nil, view.ErrMissingDefinition
	}
	p := c.env.DataProvider("")
	if p == nil {
		return nil, nil, fmt.Errorf("%w: %q", view.ErrMissingProvider, def.ProviderName())
	}
	return def, p, nil
}

// modelID reads a record reference from param. Bare ids refer to the
// container's own provider.
func (c *Default) modelID(param string) (model.ModelID, error) {
	raw := strings.TrimSpace(c.input().Parameter(param))
	if raw == "" {
		return model.ModelID{}, fmt.Errorf("%w: parameter %q is empty", ErrMissingSource, param)
	}
	if strings.Contains(raw, model.Delimiter) {
		return model.ParseModelID(raw)
	}
	def := c.env.Definition()
	if def == nil {
		return model.ModelID{}, view.ErrMissingDefinition
	}
	return model.NewModelID(def.ProviderName(), raw), nil
}

func (c *Default) fetchParam(ctx context.Context, p data.Provider, param string) (*model.Model, error) {
	id, err := c.modelID(param)
	if err != nil {
		return nil, err
	}
	return fetch(ctx, p, id.ID)
}

func fetch(ctx context.Context, p data.Provider, id string) (*model.Model, error) {
	cfg := p.EmptyConfig()
	cfg.SetID(id)
	m, err := p.Fetch(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("controller: fetch %s: %w", id, err)
	}
	if m == nil {
		return nil, fmt.Errorf("%w: %s::%s", view.ErrNotFound, p.Name(), id)
	}
	return m, nil
}

// listingQuery drops the action parameters. Parented lists keep pid since
// it names the listed parent.
func (c *Default) listingQuery() string {
	query := "act=&mode=&source="
	if def := c.env.Definition(); def == nil || def.Basic.Mode != definition.ModeParentedList {
		query += "&pid="
	}
	return query
}

func (c *Default) redirect(query string) (string, error) {
	builder := c.env.URLBuilder()
	if builder == nil {
		in := c.input()
		builder = chrome.NewURLBuilder(in.Path(), in.Query())
	}
	target := builder.AddToURL(query)
	if r := c.env.Redirector(); r != nil {
		r.Redirect(target)
	}
	return "", nil
}

func (c *Default) input() *input.Provider {
	if in := c.env.InputProvider(); in != nil {
		return in
	}
	return input.New("")
}

func (c *Default) clipboard() *clipboard.Clipboard {
	clip := c.env.Clipboard()
	if clip == nil {
		clip = clipboard.New()
		c.env.SetClipboard(clip)
	}
	return clip
}

func (c *Default) containerName() string {
	if def := c.env.Definition(); def != nil {
		return def.Name
	}
	return ""
}

// isPaste reports a paste request: a target parent in mode 2 and no source.
func isPaste(in *input.Provider) bool {
	return in.Parameter("mode") == "2" && in.HasParameter("pid") && !in.HasParameter("source")
}

func toInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		n, err := strconv.ParseInt(strings.TrimSpace(data.ToString(v)), 10, 64)
		return n, err == nil
	}
}
