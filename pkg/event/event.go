// Package event declares the extension points views invoke while rendering:
// row rendering overrides and parent header field adjustments. Handlers are
// registered on Hooks and run in registration order.
package event

import (
	"context"
	"sync"

	"github.com/goliatone/go-dcgeneral/pkg/model"
)

// ChildRecordEvent is raised for every listed row.
type ChildRecordEvent struct {
	DefinitionName string
	Model          *model.Model
}

// ParentHeaderEvent is raised once per parent view render.
type ParentHeaderEvent struct {
	DefinitionName string
	Parent         *model.Model
	Fields         *HeaderFields
}

// RowRenderer may replace the label markup of a row.
type RowRenderer interface {
	RenderRow(ctx context.Context, evt ChildRecordEvent) (html string, ok bool, err error)
}

// HeaderFieldsHandler may adjust the parent header fields.
type HeaderFieldsHandler interface {
	HeaderFields(ctx context.Context, evt ParentHeaderEvent) (*HeaderFields, error)
}

// RowRendererFunc adapts a function to RowRenderer.
type RowRendererFunc func(ctx context.Context, evt ChildRecordEvent) (string, bool, error)

// RenderRow calls f.
func (f RowRendererFunc) RenderRow(ctx context.Context, evt ChildRecordEvent) (string, bool, error) {
	return f(ctx, evt)
}

// HeaderFieldsFunc adapts a function to HeaderFieldsHandler.
type HeaderFieldsFunc func(ctx context.Context, evt ParentHeaderEvent) (*HeaderFields, error)

// HeaderFields calls f.
func (f HeaderFieldsFunc) HeaderFields(ctx context.Context, evt ParentHeaderEvent) (*HeaderFields, error) {
	return f(ctx, evt)
}

// Hooks collects extension point handlers.
type Hooks struct {
	mu           sync.RWMutex
	rowRenderers []RowRenderer
	headerFields []HeaderFieldsHandler
}

// NewHooks returns an empty registry.
func NewHooks() *Hooks {
	return &Hooks{}
}

// OnRowRender registers a row renderer.
func (h *Hooks) OnRowRender(r RowRenderer) *Hooks {
	if r == nil {
		return h
	}
	h.mu.Lock()
	h.rowRenderers = append(h.rowRenderers, r)
	h.mu.Unlock()
	return h
}

// OnHeaderFields registers a header fields handler.
func (h *Hooks) OnHeaderFields(handler HeaderFieldsHandler) *Hooks {
	if handler == nil {
		return h
	}
	h.mu.Lock()
	h.headerFields = append(h.headerFields, handler)
	h.mu.Unlock()
	return h
}

// RenderRow runs the row renderers until one reports ok.
func (h *Hooks) RenderRow(ctx context.Context, evt ChildRecordEvent) (string, bool, error) {
	if h == nil {
		return "", false, nil
	}
	h.mu.RLock()
	renderers := append([]RowRenderer(nil), h.rowRenderers...)
	h.mu.RUnlock()

	for _, r := range renderers {
		html, ok, err := r.RenderRow(ctx, evt)
		if err != nil {
			return "", false, err
		}
		if ok {
			return html, true, nil
		}
	}
	return "", false, nil
}

// HeaderFields passes fields through every handler. Keys returned by a
// handler override existing ones in place; new keys are appended. A handler
// returning nil leaves the fields untouched.
func (h *Hooks) HeaderFields(ctx context.Context, evt ParentHeaderEvent) (*HeaderFields, error) {
	fields := evt.Fields
	if fields == nil {
		fields = NewHeaderFields()
	}
	if h == nil {
		return fields, nil
	}
	h.mu.RLock()
	handlers := append([]HeaderFieldsHandler(nil), h.headerFields...)
	h.mu.RUnlock()

	for _, handler := range handlers {
		evt.Fields = fields.Clone()
		out, err := handler.HeaderFields(ctx, evt)
		if err != nil {
			return nil, err
		}
		if out != nil {
			fields.Merge(out)
		}
	}
	return fields, nil
}
