// Package memory provides an in-process data provider. It keeps cloned
// models keyed by id and evaluates Config filters, sorting and paging in
// memory.
package memory

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/goliatone/go-dcgeneral/pkg/data"
	"github.com/goliatone/go-dcgeneral/pkg/data/idgen"
	"github.com/goliatone/go-dcgeneral/pkg/model"
)

// Option configures a Provider.
type Option func(*Provider)

// WithIDGenerator assigns ids to inserted models. Without one the provider
// uses an auto increment counter.
func WithIDGenerator(gen idgen.Generator) Option {
	return func(p *Provider) {
		p.ids = gen
	}
}

// WithModels seeds the provider.
func WithModels(models ...*model.Model) Option {
	return func(p *Provider) {
		p.seed = append(p.seed, models...)
	}
}

// Provider is a thread-safe in-memory data provider.
type Provider struct {
	name string
	ids  idgen.Generator

	mu     sync.RWMutex
	order  []string
	models map[string]*model.Model
	nextID int
	seed   []*model.Model
}

var _ data.Provider = (*Provider)(nil)

// New constructs an empty provider.
func New(name string, options ...Option) *Provider {
	p := &Provider{
		name:   name,
		models: make(map[string]*model.Model),
		nextID: 1,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(p)
	}
	for _, m := range p.seed {
		clone := m.Clone()
		if clone.ID() == "" {
			clone.SetID(strconv.Itoa(p.nextID))
		}
		p.store(clone)
	}
	p.seed = nil
	return p
}

// Name implements data.Provider.
func (p *Provider) Name() string {
	return p.name
}

// EmptyConfig implements data.Provider.
func (p *Provider) EmptyConfig() data.Config {
	return data.Config{}
}

// EmptyModel implements data.Provider.
func (p *Provider) EmptyModel() *model.Model {
	return model.New(p.name)
}

// Fetch implements data.Provider.
func (p *Provider) Fetch(ctx context.Context, cfg data.Config) (*model.Model, error) {
	cfg.Start, cfg.Amount = 0, 1
	collection, err := p.FetchAll(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if collection.Len() == 0 {
		return nil, nil
	}
	return collection.Get(0), nil
}

// FetchAll implements data.Provider.
func (p *Provider) FetchAll(ctx context.Context, cfg data.Config) (*model.Collection, error) {
	matches, err := p.match(ctx, cfg)
	if err != nil {
		return nil, err
	}
	data.SortModels(matches, cfg.Sorting)
	matches = data.Page(matches, cfg.Start, cfg.Amount)
	return model.NewCollection(matches...), nil
}

// Count implements data.Provider.
func (p *Provider) Count(ctx context.Context, cfg data.Config) (int, error) {
	matches, err := p.match(ctx, cfg)
	if err != nil {
		return 0, err
	}
	return len(matches), nil
}

// Save implements data.Provider.
func (p *Provider) Save(ctx context.Context, m *model.Model) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m == nil {
		return fmt.Errorf("memory: cannot save nil model")
	}

	if m.ID() == "" {
		id, err := p.generateID(ctx)
		if err != nil {
			return err
		}
		m.SetID(id)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.store(m.Clone())
	return nil
}

// Delete implements data.Provider.
func (p *Provider) Delete(ctx context.Context, m *model.Model) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m == nil || m.ID() == "" {
		return fmt.Errorf("memory: cannot delete model without id")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.models[m.ID()]; !ok {
		return nil
	}
	delete(p.models, m.ID())
	for i, id := range p.order {
		if id == m.ID() {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	return nil
}

func (p *Provider) match(ctx context.Context, cfg data.Config) ([]*model.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	var out []*model.Model
	for _, id := range p.order {
		if cfg.ID != "" && id != cfg.ID {
			continue
		}
		stored := p.models[id]
		ok, err := data.MatchAll(cfg.Filter, stored)
		if err != nil {
			return nil, fmt.Errorf("memory: %w", err)
		}
		if ok {
			out = append(out, stored.Clone())
		}
	}
	return out, nil
}

func (p *Provider) generateID(ctx context.Context) (string, error) {
	if p.ids != nil {
		id, err := p.ids.Generate(ctx)
		if err != nil {
			return "", fmt.Errorf("memory: generate id: %w", err)
		}
		if id != "" {
			return id, nil
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for {
		id := strconv.Itoa(p.nextID)
		p.nextID++
		if _, taken := p.models[id]; !taken {
			return id, nil
		}
	}
}

// store must be called with the write lock held (or during construction).
func (p *Provider) store(m *model.Model) {
	if m.ProviderName() != p.name {
		m = model.NewWithProperties(p.name, m.ID(), m.Properties())
	}
	if _, exists := p.models[m.ID()]; !exists {
		p.order = append(p.order, m.ID())
	}
	p.models[m.ID()] = m
	if n, err := strconv.Atoi(m.ID()); err == nil && n >= p.nextID {
		p.nextID = n + 1
	}
}
