// Package server exposes a Backend over net/http. Every container is served
// at <prefix>/<container>; the query string carries the action parameters.
package server

import (
	"embed"
	"errors"
	"io/fs"
	"net/http"
	"strings"
	"time"

	gotemplatepkg "github.com/goliatone/go-template"
	"go.uber.org/zap"

	"github.com/goliatone/go-dcgeneral/pkg/backend"
	"github.com/goliatone/go-dcgeneral/pkg/controller"
	"github.com/goliatone/go-dcgeneral/pkg/input"
	"github.com/goliatone/go-dcgeneral/pkg/model"
	"github.com/goliatone/go-dcgeneral/pkg/populator"
	"github.com/goliatone/go-dcgeneral/pkg/render/template"
	"github.com/goliatone/go-dcgeneral/pkg/render/template/gotemplate"
	"github.com/goliatone/go-dcgeneral/pkg/view"
)

//go:embed templates
var embeddedTemplates embed.FS

//go:embed assets
var embeddedAssets embed.FS

// AssetsFS exposes the stylesheet served below <prefix>/assets/.
func AssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		return embeddedAssets
	}
	return sub
}

const contentType = "text/html; charset=utf-8"

// Option customises the handler.
type Option func(*Handler)

// WithLogger sets the request logger.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithPathPrefix mounts the containers below prefix, for example "/contao".
func WithPathPrefix(prefix string) Option {
	return func(h *Handler) {
		h.prefix = "/" + strings.Trim(prefix, "/")
		if h.prefix == "/" {
			h.prefix = ""
		}
	}
}

// WithTitle sets the page title.
func WithTitle(title string) Option {
	return func(h *Handler) {
		if title != "" {
			h.title = title
		}
	}
}

// Handler serves the containers of a backend.
type Handler struct {
	backend *backend.Backend
	logger  *zap.Logger
	prefix  string
	title   string
	pages   template.TemplateRenderer
	mux     *http.ServeMux
}

// New builds the HTTP handler.
func New(b *backend.Backend, opts ...Option) (*Handler, error) {
	if b == nil {
		return nil, errors.New("server: backend is required")
	}
	h := &Handler{
		backend: b,
		logger:  zap.NewNop(),
		title:   "dcgeneral",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}

	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return nil, err
	}
	pages, err := gotemplate.New(gotemplate.WithFS(sub), gotemplate.WithPreHooks(h.pageDefaults))
	if err != nil {
		return nil, err
	}
	h.pages = pages

	h.mux = http.NewServeMux()
	h.mux.Handle("GET "+h.prefix+"/assets/", http.StripPrefix(h.prefix+"/assets/", http.FileServerFS(AssetsFS())))
	h.mux.HandleFunc("GET "+h.prefix+"/{$}", h.index)
	h.mux.HandleFunc(h.prefix+"/{container}", h.container)
	return h, nil
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	h.mux.ServeHTTP(rec, r)
	h.logger.Info("request",
		zap.String("method", r.Method),
		zap.String("uri", r.URL.RequestURI()),
		zap.Int("status", rec.status),
		zap.Duration("duration", time.Since(start)),
	)
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	type entry struct {
		Name string `json:"name"`
		Href string `json:"href"`
	}
	var containers []entry
	for _, name := range h.backend.Containers() {
		containers = append(containers, entry{Name: name, Href: h.prefix + "/" + name})
	}
	content, err := h.pages.RenderTemplate("index", map[string]any{
		"containers": containers,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.page(w, r, "", content)
}

func (h *Handler) container(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("container")
	in, err := input.FromRequest(r)
	if err != nil {
		h.fail(w, r, errors.Join(populator.ErrInvalidArgument, err))
		return
	}

	res, err := h.backend.Handle(r.Context(), name, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if res.Redirect != "" {
		http.Redirect(w, r, res.Redirect, http.StatusSeeOther)
		return
	}
	h.page(w, r, name, res.HTML)
}

func (h *Handler) page(w http.ResponseWriter, r *http.Request, container, content string) {
	out, err := h.pages.RenderTemplate("layout", map[string]any{
		"container": container,
		"content":   content,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out))
}

// pageDefaults fills the values every page shares.
func (h *Handler) pageDefaults(ctx *gotemplatepkg.HookContext) error {
	data, ok := ctx.Data.(map[string]any)
	if !ok {
		return nil
	}
	if _, ok := data["title"]; !ok {
		data["title"] = h.title
	}
	if _, ok := data["assets"]; !ok {
		data["assets"] = h.prefix + "/assets"
	}
	return nil
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("uri", r.URL.RequestURI()), zap.Error(err))
		http.Error(w, http.StatusText(status), status)
		return
	}
	h.logger.Warn("request rejected", zap.String("uri", r.URL.RequestURI()), zap.Error(err))
	http.Error(w, err.Error(), status)
}

// StatusFor maps backend errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, backend.ErrUnknownContainer),
		errors.Is(err, view.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, controller.ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed
	case errors.Is(err, view.ErrNotCreatable),
		errors.Is(err, view.ErrNotEditable),
		errors.Is(err, controller.ErrNotDeletable),
		errors.Is(err, controller.ErrNotSortable):
		return http.StatusForbidden
	case errors.Is(err, view.ErrMissingParentID),
		errors.Is(err, view.ErrMissingParentProvider),
		errors.Is(err, populator.ErrInvalidArgument),
		errors.Is(err, model.ErrInvalidToken),
		errors.Is(err, controller.ErrUnknownAction),
		errors.Is(err, controller.ErrMissingSource):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
