package chrome

import (
	"net/url"
	"sort"
	"strings"
)

// URLBuilder builds backend links relative to the current request.
type URLBuilder struct {
	path    string
	current url.Values
}

// NewURLBuilder returns a builder for the request at path with query params.
func NewURLBuilder(path string, current url.Values) *URLBuilder {
	cloned := make(url.Values, len(current))
	for key, vals := range current {
		cloned[key] = append([]string(nil), vals...)
	}
	return &URLBuilder{path: path, current: cloned}
}

// Path returns the backend path links are built against.
func (b *URLBuilder) Path() string {
	return b.path
}

// AddToURL merges query pairs ("a=b&c=d", "&amp;" separators accepted) over
// the current request parameters. Later pairs win; a pair with an empty value
// removes the parameter.
func (b *URLBuilder) AddToURL(query string) string {
	merged := make(url.Values, len(b.current))
	for key, vals := range b.current {
		if len(vals) > 0 {
			merged.Set(key, vals[len(vals)-1])
		}
	}
	for _, pair := range splitPairs(query) {
		key, value, _ := strings.Cut(pair, "=")
		key, _ = url.QueryUnescape(key)
		value, _ = url.QueryUnescape(value)
		if key == "" {
			continue
		}
		if value == "" {
			merged.Del(key)
			continue
		}
		merged.Set(key, value)
	}
	return b.path + encode(merged)
}

// ReplaceTable swaps the table parameter of rawURL.
func ReplaceTable(rawURL, table string) string {
	path, query, _ := strings.Cut(rawURL, "?")
	values, err := url.ParseQuery(strings.ReplaceAll(query, "&amp;", "&"))
	if err != nil {
		values = url.Values{}
	}
	values.Set("table", table)
	return path + encode(values)
}

func splitPairs(query string) []string {
	query = strings.TrimPrefix(strings.TrimSpace(query), "?")
	query = strings.ReplaceAll(query, "&amp;", "&")
	var out []string
	for _, pair := range strings.Split(query, "&") {
		if pair != "" {
			out = append(out, pair)
		}
	}
	return out
}

// encode keeps the do/table/act parameters first so links stay readable.
func encode(values url.Values) string {
	if len(values) == 0 {
		return ""
	}
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		pi, pj := keyRank(keys[i]), keyRank(keys[j])
		if pi != pj {
			return pi < pj
		}
		return keys[i] < keys[j]
	})
	var b strings.Builder
	for i, key := range keys {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(values.Get(key)))
	}
	return b.String()
}

func keyRank(key string) int {
	switch key {
	case "do":
		return 0
	case "table":
		return 1
	case "act":
		return 2
	default:
		return 3
	}
}
