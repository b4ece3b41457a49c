package translate

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	// DomainMSC holds strings shared by every container (yes, no, selectAll).
	DomainMSC = "MSC"
	// DomainDefault is used when no domain is given.
	DomainDefault = "default"
)

// Translator resolves keys within a domain.
type Translator interface {
	Translate(key, domain string, args ...any) string
	Lookup(key, domain string) (string, bool)
}

// MissingHandler produces the string returned for an unknown key.
type MissingHandler func(locale, domain, key string, args ...any) string

// Option configures a Manager.
type Option func(*Manager)

// WithLocale sets the active locale.
func WithLocale(locale string) Option {
	return func(m *Manager) {
		if trimmed := strings.TrimSpace(locale); trimmed != "" {
			m.locale = trimmed
		}
	}
}

// WithFallbackLocale sets the locale consulted when the active one misses.
func WithFallbackLocale(locale string) Option {
	return func(m *Manager) {
		m.fallback = strings.TrimSpace(locale)
	}
}

// WithOnMissing overrides the missing key behaviour.
func WithOnMissing(handler MissingHandler) Option {
	return func(m *Manager) {
		if handler != nil {
			m.onMissing = handler
		}
	}
}

type catalog map[string]map[string]string // domain -> key -> message

// Manager is an in-memory Translator backed by per-locale catalogs.
type Manager struct {
	mu        *sync.RWMutex
	locale    string
	fallback  string
	catalogs  map[string]catalog
	onMissing MissingHandler
}

var _ Translator = (*Manager)(nil)

// New constructs an empty manager. The default locale is "en".
func New(opts ...Option) *Manager {
	m := &Manager{
		mu:        &sync.RWMutex{},
		locale:    "en",
		catalogs:  make(map[string]catalog),
		onMissing: missingDefault,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

func missingDefault(_, _, key string, _ ...any) string {
	return key
}

// Locale returns the active locale.
func (m *Manager) Locale() string {
	return m.locale
}

// ForLocale returns a manager sharing the catalogs of m with a different
// active locale.
func (m *Manager) ForLocale(locale string) *Manager {
	clone := *m
	if trimmed := strings.TrimSpace(locale); trimmed != "" {
		clone.locale = trimmed
	}
	return &clone
}

// Add merges entries into the catalog of locale/domain.
func (m *Manager) Add(locale, domain string, entries map[string]string) {
	domain = normalizeDomain(domain)
	m.mu.Lock()
	defer m.mu.Unlock()

	cat, ok := m.catalogs[locale]
	if !ok {
		cat = make(catalog)
		m.catalogs[locale] = cat
	}
	if cat[domain] == nil {
		cat[domain] = make(map[string]string, len(entries))
	}
	for key, value := range entries {
		cat[domain][key] = value
	}
}

// Lookup returns the message for key in domain, trying the active locale
// and then the fallback locale.
func (m *Manager) Lookup(key, domain string) (string, bool) {
	if m == nil {
		return "", false
	}
	domain = normalizeDomain(domain)
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, locale := range []string{m.locale, m.fallback} {
		if locale == "" {
			continue
		}
		if msg, ok := m.catalogs[locale][domain][key]; ok {
			return msg, true
		}
	}
	return "", false
}

// Translate returns the message for key formatted with args, or the
// missing handler's result (the raw key by default).
func (m *Manager) Translate(key, domain string, args ...any) string {
	if m == nil {
		return key
	}
	msg, ok := m.Lookup(key, domain)
	if !ok || strings.TrimSpace(msg) == "" {
		return m.onMissing(m.locale, normalizeDomain(domain), key, args...)
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}

// Locales lists the loaded locales.
func (m *Manager) Locales() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.catalogs))
	for locale := range m.catalogs {
		out = append(out, locale)
	}
	sort.Strings(out)
	return out
}

// LoadFS reads catalogs laid out as <locale>/<domain>.yaml (or .yml).
// Nested maps flatten to dotted keys and lists to indexed keys, so
// `pastenew: [Paste, Paste new]` yields pastenew.0 and pastenew.1.
func (m *Manager) LoadFS(fsys fs.FS) error {
	if fsys == nil {
		return nil
	}
	return fs.WalkDir(fsys, ".", func(p string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			return nil
		}
		ext := strings.ToLower(path.Ext(p))
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		locale := path.Base(path.Dir(p))
		if locale == "." || locale == "" {
			return fmt.Errorf("translate: catalog %s must live in a locale directory", p)
		}
		domain := strings.TrimSuffix(path.Base(p), path.Ext(p))

		raw, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("translate: read %s: %w", p, err)
		}
		var doc map[string]any
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("translate: parse %s: %w", p, err)
		}
		entries := make(map[string]string)
		flatten("", doc, entries)
		m.Add(locale, domain, entries)
		return nil
	})
}

func flatten(prefix string, value any, out map[string]string) {
	switch v := value.(type) {
	case map[string]any:
		for key, child := range v {
			flatten(joinKey(prefix, key), child, out)
		}
	case []any:
		for i, child := range v {
			flatten(joinKey(prefix, fmt.Sprint(i)), child, out)
		}
	case nil:
		if prefix != "" {
			out[prefix] = ""
		}
	default:
		if prefix != "" {
			out[prefix] = fmt.Sprint(v)
		}
	}
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func normalizeDomain(domain string) string {
	if trimmed := strings.TrimSpace(domain); trimmed != "" {
		return trimmed
	}
	return DomainDefault
}

// TemplateFuncs exposes translation helpers to templates:
//
//	translate(key, domain, ...args) string
//	lookup(key, domain) string   (empty when missing)
func TemplateFuncs(t Translator) map[string]any {
	return map[string]any{
		"translate": func(key string, domain string, args ...any) string {
			if t == nil {
				return key
			}
			return t.Translate(key, domain, args...)
		},
		"lookup": func(key string, domain string) string {
			if t == nil {
				return ""
			}
			msg, _ := t.Lookup(key, domain)
			return msg
		},
	}
}
