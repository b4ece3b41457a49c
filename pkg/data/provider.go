package data

import (
	"context"

	"github.com/goliatone/go-dcgeneral/pkg/model"
)

// Provider is a record source for one data container.
type Provider interface {
	// Name returns the provider name used in definitions and ModelIDs.
	Name() string
	// Fetch returns the first model matching cfg or nil when none matches.
	Fetch(ctx context.Context, cfg Config) (*model.Model, error)
	// FetchAll returns every model matching cfg in the requested order.
	FetchAll(ctx context.Context, cfg Config) (*model.Collection, error)
	// Count returns the number of models matching cfg, ignoring paging.
	Count(ctx context.Context, cfg Config) (int, error)
	// Save inserts models without id and updates the others.
	Save(ctx context.Context, m *model.Model) error
	// Delete removes the model with the same id.
	Delete(ctx context.Context, m *model.Model) error
	// EmptyConfig returns a fresh Config for this provider.
	EmptyConfig() Config
	// EmptyModel returns a fresh, unsaved model for this provider.
	EmptyModel() *model.Model
}
