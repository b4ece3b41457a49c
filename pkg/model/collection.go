package model

// Collection is an ordered sequence of models.
type Collection struct {
	models []*Model
}

// NewCollection wraps the supplied models, skipping nil entries.
func NewCollection(models ...*Model) *Collection {
	c := &Collection{}
	for _, m := range models {
		c.Add(m)
	}
	return c
}

// Len returns the number of models in the collection.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.models)
}

// Get returns the model at index or nil when the index is out of range.
// Views rely on the nil result for previous/next sibling lookups.
func (c *Collection) Get(index int) *Model {
	if c == nil || index < 0 || index >= len(c.models) {
		return nil
	}
	return c.models[index]
}

// Add appends a model.
func (c *Collection) Add(m *Model) {
	if m == nil {
		return
	}
	c.models = append(c.models, m)
}

// Models returns the underlying models in order. The slice is a copy; the
// models are shared.
func (c *Collection) Models() []*Model {
	if c == nil {
		return nil
	}
	return append([]*Model(nil), c.models...)
}

// IDs returns the ids of all models in order.
func (c *Collection) IDs() []string {
	if c == nil {
		return nil
	}
	ids := make([]string, 0, len(c.models))
	for _, m := range c.models {
		ids = append(ids, m.ID())
	}
	return ids
}

// Find returns the first model with the given id.
func (c *Collection) Find(id string) *Model {
	if c == nil {
		return nil
	}
	for _, m := range c.models {
		if m.ID() == id {
			return m
		}
	}
	return nil
}
