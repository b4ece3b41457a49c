// Package clipboard holds the single pending cut, copy or create action of a
// backend user.
package clipboard

import (
	"context"
	"sync"

	"github.com/goliatone/go-dcgeneral/pkg/model"
)

// Mode is the pending action kind.
type Mode string

const (
	ModeNone   Mode = ""
	ModeCreate Mode = "create"
	ModeCut    Mode = "cut"
	ModeCopy   Mode = "copy"
)

// Clipboard holds at most one pending action.
type Clipboard struct {
	mode     Mode
	source   model.ModelID
	parentID model.ModelID
}

// New returns an empty clipboard.
func New() *Clipboard {
	return &Clipboard{}
}

// Copy records a copy of source.
func (c *Clipboard) Copy(source model.ModelID) *Clipboard {
	c.mode = ModeCopy
	c.source = source
	c.parentID = model.ModelID{}
	return c
}

// Cut records a move of source.
func (c *Clipboard) Cut(source model.ModelID) *Clipboard {
	c.mode = ModeCut
	c.source = source
	c.parentID = model.ModelID{}
	return c
}

// Create records a pending creation below parent (may be zero).
func (c *Clipboard) Create(parent model.ModelID) *Clipboard {
	c.mode = ModeCreate
	c.source = model.ModelID{}
	c.parentID = parent
	return c
}

// Clear drops the pending action.
func (c *Clipboard) Clear() *Clipboard {
	*c = Clipboard{}
	return c
}

// IsEmpty reports whether no action is pending.
func (c *Clipboard) IsEmpty() bool {
	return c == nil || c.mode == ModeNone
}

// IsNotEmpty reports whether an action is pending.
func (c *Clipboard) IsNotEmpty() bool {
	return !c.IsEmpty()
}

// Mode returns the pending action kind.
func (c *Clipboard) Mode() Mode {
	if c == nil {
		return ModeNone
	}
	return c.mode
}

// Source returns the id of the record being cut or copied.
func (c *Clipboard) Source() model.ModelID {
	if c == nil {
		return model.ModelID{}
	}
	return c.source
}

// ParentID returns the parent of a pending creation.
func (c *Clipboard) ParentID() model.ModelID {
	if c == nil {
		return model.ModelID{}
	}
	return c.parentID
}

// Store persists clipboards between requests, keyed by container name.
type Store interface {
	Load(ctx context.Context, container string) (*Clipboard, error)
	Save(ctx context.Context, container string, clip *Clipboard) error
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu    sync.RWMutex
	clips map[string]Clipboard
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{clips: make(map[string]Clipboard)}
}

// Load returns a copy of the stored clipboard, or an empty one.
func (s *MemoryStore) Load(_ context.Context, container string) (*Clipboard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clip := s.clips[container]
	return &clip, nil
}

// Save stores a copy of clip; a nil or empty clipboard removes the entry.
func (s *MemoryStore) Save(_ context.Context, container string, clip *Clipboard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if clip.IsEmpty() {
		delete(s.clips, container)
		return nil
	}
	s.clips[container] = *clip
	return nil
}
