package view

import (
	"embed"
	"io/fs"
	"sync"

	"github.com/goliatone/go-dcgeneral/pkg/render/template"
	"github.com/goliatone/go-dcgeneral/pkg/render/template/gotemplate"
)

//go:embed templates
var embeddedTemplates embed.FS

// TemplatesFS returns the built-in view templates rooted at the template
// directory. Callers layer their own FS in front to override single files.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}

var (
	defaultRendererOnce sync.Once
	defaultRenderer     template.TemplateRenderer
	defaultRendererErr  error
)

// DefaultRenderer returns the shared renderer over TemplatesFS.
func DefaultRenderer() (template.TemplateRenderer, error) {
	defaultRendererOnce.Do(func() {
		engine, err := gotemplate.New(gotemplate.WithFS(TemplatesFS()))
		if err != nil {
			defaultRendererErr = err
			return
		}
		defaultRenderer = engine
	})
	return defaultRenderer, defaultRendererErr
}

// NewRenderer returns a renderer reading overrides first and the built-in
// templates for every file overrides lacks.
func NewRenderer(overrides fs.FS) (template.TemplateRenderer, error) {
	if overrides == nil {
		return DefaultRenderer()
	}
	return gotemplate.New(gotemplate.WithFS(overrides), gotemplate.WithFS(TemplatesFS()))
}

// WithTemplatesFS renders with files from fsys in front of the built-in
// templates.
func WithTemplatesFS(fsys fs.FS) Option {
	return func(b *Base) {
		b.renderer, b.rendererErr = NewRenderer(fsys)
	}
}
