// Package input exposes request parameters (query string) and submitted
// values (form body) to controllers and views.
package input

import (
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// Provider is the request input. Parameters come from the query string,
// values from the submitted form.
type Provider struct {
	params map[string]string
	values url.Values
	path   string
	method string
}

// New returns an empty provider for path.
func New(path string) *Provider {
	return &Provider{
		params: make(map[string]string),
		values: make(url.Values),
		path:   path,
		method: http.MethodGet,
	}
}

// FromValues builds a GET provider from query parameters.
func FromValues(path string, query url.Values) *Provider {
	p := New(path)
	for key, vals := range query {
		if len(vals) > 0 {
			p.params[key] = vals[len(vals)-1]
		}
	}
	return p
}

// FromRequest reads query parameters and, for POST requests, form values.
func FromRequest(r *http.Request) (*Provider, error) {
	p := FromValues(r.URL.Path, r.URL.Query())
	p.method = r.Method
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		for key, vals := range r.PostForm {
			p.values[key] = append([]string(nil), vals...)
		}
	}
	return p, nil
}

// Parameter returns the named query parameter or "".
func (p *Provider) Parameter(name string) string {
	if p == nil {
		return ""
	}
	return p.params[name]
}

// LookupParameter returns the parameter and whether it was sent at all,
// including with an empty value.
func (p *Provider) LookupParameter(name string) (string, bool) {
	if p == nil {
		return "", false
	}
	value, ok := p.params[name]
	return value, ok
}

// HasParameter reports whether the parameter is present and non-empty.
func (p *Provider) HasParameter(name string) bool {
	return p.Parameter(name) != ""
}

// SetParameter sets a query parameter.
func (p *Provider) SetParameter(name, value string) *Provider {
	p.params[name] = value
	return p
}

// UnsetParameter removes a query parameter.
func (p *Provider) UnsetParameter(name string) *Provider {
	delete(p.params, name)
	return p
}

// Value returns the first submitted value for name.
func (p *Provider) Value(name string) string {
	if p == nil {
		return ""
	}
	return p.values.Get(name)
}

// Values returns every submitted value for name.
func (p *Provider) Values(name string) []string {
	if p == nil {
		return nil
	}
	return append([]string(nil), p.values[name]...)
}

// HasValue reports whether name was submitted.
func (p *Provider) HasValue(name string) bool {
	if p == nil {
		return false
	}
	_, ok := p.values[name]
	return ok
}

// SetValue replaces the submitted values for name.
func (p *Provider) SetValue(name string, values ...string) *Provider {
	p.values[name] = values
	return p
}

// ValueNames lists the submitted value names in sorted order.
func (p *Provider) ValueNames() []string {
	names := make([]string, 0, len(p.values))
	for name := range p.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Method returns the HTTP method of the request.
func (p *Provider) Method() string {
	return p.method
}

// SetMethod overrides the HTTP method, used by the CLI renderer.
func (p *Provider) SetMethod(method string) *Provider {
	p.method = strings.ToUpper(method)
	return p
}

// IsPost reports whether values were submitted.
func (p *Provider) IsPost() bool {
	return p.method == http.MethodPost
}

// Path returns the request path.
func (p *Provider) Path() string {
	return p.path
}

// Query encodes the parameters as a query string with sorted keys.
func (p *Provider) Query() url.Values {
	out := make(url.Values, len(p.params))
	for key, value := range p.params {
		out.Set(key, value)
	}
	return out
}

// RequestURI returns path plus the encoded parameters.
func (p *Provider) RequestURI() string {
	encoded := p.Query().Encode()
	if encoded == "" {
		return p.path
	}
	return p.path + "?" + encoded
}
