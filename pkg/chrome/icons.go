package chrome

import (
	"html"
	"path"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

// IconOption configures Icons.
type IconOption func(*Icons)

// WithIconBasePath sets the directory plain icon names resolve against.
func WithIconBasePath(base string) IconOption {
	return func(i *Icons) {
		i.basePath = strings.TrimRight(base, "/")
	}
}

// WithThemeSelector resolves icons through the assets of a go-theme
// selection before falling back to the base path.
func WithThemeSelector(selector theme.ThemeSelector, name, variant string) IconOption {
	return func(i *Icons) {
		i.selector = selector
		i.themeName = name
		i.variant = variant
	}
}

// WithIconLogger sets the logger used for theme resolution failures.
func WithIconLogger(logger *zap.Logger) IconOption {
	return func(i *Icons) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// Icons renders icon markup.
type Icons struct {
	basePath  string
	selector  theme.ThemeSelector
	themeName string
	variant   string
	logger    *zap.Logger

	once      sync.Once
	selection *theme.Selection
}

// NewIcons returns an icon renderer. Without options icons resolve against
// "system/themes/default/icons".
func NewIcons(opts ...IconOption) *Icons {
	icons := &Icons{
		basePath: "system/themes/default/icons",
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(icons)
		}
	}
	return icons
}

// HTML returns an <img> tag for src. Inline <svg> markup is sanitized and
// returned as is.
func (i *Icons) HTML(src, alt, attrs string) string {
	trimmed := strings.TrimSpace(src)
	if strings.HasPrefix(trimmed, "<svg") {
		return sanitizeIconMarkup(trimmed)
	}
	if trimmed == "" {
		return ""
	}

	var b strings.Builder
	b.WriteString(`<img src="`)
	b.WriteString(html.EscapeString(i.URL(trimmed)))
	b.WriteString(`" alt="`)
	b.WriteString(html.EscapeString(alt))
	b.WriteString(`"`)
	if attrs = strings.TrimSpace(attrs); attrs != "" {
		b.WriteByte(' ')
		b.WriteString(attrs)
	}
	b.WriteString(">")
	return b.String()
}

// URL resolves src to an asset URL.
func (i *Icons) URL(src string) string {
	if strings.Contains(src, "/") {
		return src
	}
	if resolved, ok := i.themeAsset(src); ok {
		return resolved
	}
	if path.Ext(src) == "" {
		src += ".svg"
	}
	if i.basePath == "" {
		return src
	}
	return i.basePath + "/" + src
}

func (i *Icons) themeAsset(name string) (string, bool) {
	if i.selector == nil {
		return "", false
	}
	i.once.Do(func() {
		selection, err := i.selector.Select(i.themeName, i.variant)
		if err != nil {
			i.logger.Warn("icon theme selection failed",
				zap.String("theme", i.themeName),
				zap.String("variant", i.variant),
				zap.Error(err),
			)
			return
		}
		i.selection = selection
	})
	if i.selection == nil || i.selection.Manifest == nil {
		return "", false
	}

	manifest := i.selection.Manifest
	key := "icons." + strings.TrimSuffix(name, path.Ext(name))
	prefix := manifest.Assets.Prefix
	file := ""
	if variant, ok := manifest.Variants[i.selection.Variant]; ok {
		file = variant.Assets.Files[key]
		if variant.Assets.Prefix != "" && file != "" {
			prefix = variant.Assets.Prefix
		}
	}
	if file == "" {
		file = manifest.Assets.Files[key]
	}
	if file == "" {
		return "", false
	}
	if prefix == "" {
		return file, true
	}
	return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(file, "/"), true
}

var (
	iconPolicyOnce sync.Once
	iconPolicy     *bluemonday.Policy
)

func sanitizeIconMarkup(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(iconSanitizer().Sanitize(trimmed))
}

func iconSanitizer() *bluemonday.Policy {
	iconPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("svg", "g", "path", "circle", "rect", "line", "polyline", "polygon", "title", "use")

		policy.AllowAttrs(
			"xmlns", "viewBox", "width", "height", "fill", "stroke",
			"stroke-width", "aria-hidden", "role", "class",
		).OnElements("svg")
		policy.AllowAttrs("href", "xlink:href").OnElements("use")
		for _, el := range []string{"path", "circle", "rect", "line", "polyline", "polygon"} {
			policy.AllowAttrs(
				"d", "cx", "cy", "r", "x", "y", "x1", "y1", "x2", "y2",
				"points", "rx", "ry", "fill", "stroke", "stroke-width", "class",
			).OnElements(el)
		}
		policy.AllowAttrs("class").OnElements("g")

		iconPolicy = policy
	})
	return iconPolicy
}
