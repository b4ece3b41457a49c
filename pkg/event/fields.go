package event

// HeaderField is a label/value pair shown above the child list.
type HeaderField struct {
	Key   string
	Value string
}

// HeaderFields is an insertion ordered label -> value list.
type HeaderFields struct {
	entries []HeaderField
}

// NewHeaderFields returns an empty list.
func NewHeaderFields() *HeaderFields {
	return &HeaderFields{}
}

// Set replaces the value of key in place or appends it.
func (f *HeaderFields) Set(key, value string) *HeaderFields {
	for i := range f.entries {
		if f.entries[i].Key == key {
			f.entries[i].Value = value
			return f
		}
	}
	f.entries = append(f.entries, HeaderField{Key: key, Value: value})
	return f
}

// Get returns the value of key.
func (f *HeaderFields) Get(key string) (string, bool) {
	if f == nil {
		return "", false
	}
	for _, entry := range f.entries {
		if entry.Key == key {
			return entry.Value, true
		}
	}
	return "", false
}

// Delete removes key.
func (f *HeaderFields) Delete(key string) *HeaderFields {
	for i := range f.entries {
		if f.entries[i].Key == key {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			break
		}
	}
	return f
}

// Keys returns the keys in order.
func (f *HeaderFields) Keys() []string {
	if f == nil {
		return nil
	}
	keys := make([]string, 0, len(f.entries))
	for _, entry := range f.entries {
		keys = append(keys, entry.Key)
	}
	return keys
}

// Entries returns a copy of the pairs in order.
func (f *HeaderFields) Entries() []HeaderField {
	if f == nil {
		return nil
	}
	return append([]HeaderField(nil), f.entries...)
}

// Len reports the number of fields.
func (f *HeaderFields) Len() int {
	if f == nil {
		return 0
	}
	return len(f.entries)
}

// Clone returns an independent copy.
func (f *HeaderFields) Clone() *HeaderFields {
	return &HeaderFields{entries: f.Entries()}
}

// Merge applies every entry of other through Set.
func (f *HeaderFields) Merge(other *HeaderFields) *HeaderFields {
	for _, entry := range other.Entries() {
		f.Set(entry.Key, entry.Value)
	}
	return f
}
