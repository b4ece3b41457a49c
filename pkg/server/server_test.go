package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/goliatone/go-dcgeneral/pkg/backend"
	"github.com/goliatone/go-dcgeneral/pkg/controller"
	"github.com/goliatone/go-dcgeneral/pkg/testsupport"
	"github.com/goliatone/go-dcgeneral/pkg/view"
)

const articles = `
name: tl_article
basic:
  mode: flat
  creatable: true
  editable: true
  deletable: true
listing:
  defaultSorting:
    - property: headline
  label:
    properties: [headline]
properties:
  - name: headline
    extra:
      mandatory: true
`

func newHandler(t *testing.T, opts ...Option) *Handler {
	t.Helper()
	b, err := backend.New(
		backend.WithDefinitions(testsupport.MustParseDefinitionList(t, articles)...),
		backend.WithDataProviders(testsupport.MemoryProvider("tl_article",
			testsupport.Record{"id": "1", "headline": "Hello"},
		)),
	)
	if err != nil {
		t.Fatalf("backend: %v", err)
	}
	h, err := New(b, append([]Option{WithPathPrefix("/contao")}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return h
}

func TestIndexListsContainers(t *testing.T) {
	h := newHandler(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/contao/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `href="/contao/tl_article"`) {
		t.Fatalf("index missing container link:\n%s", rec.Body.String())
	}
}

func TestPagesShareTitleAndAssets(t *testing.T) {
	h := newHandler(t, WithTitle("Newsroom"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/contao/", nil))

	body := rec.Body.String()
	if got := strings.Count(body, "Newsroom"); got < 2 {
		t.Fatalf("title rendered %d times, want page title and headline:\n%s", got, body)
	}
	if !strings.Contains(body, `href="/contao/assets/dcgeneral.css"`) {
		t.Fatalf("stylesheet link missing:\n%s", body)
	}
}

func TestServesStylesheet(t *testing.T) {
	h := newHandler(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/contao/assets/dcgeneral.css", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), ".tl_listing") {
		t.Fatalf("unexpected stylesheet body:\n%s", rec.Body.String())
	}
}

func TestContainerRendersList(t *testing.T) {
	h := newHandler(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/contao/tl_article", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != contentType {
		t.Fatalf("content type = %q", got)
	}
	if !strings.Contains(rec.Body.String(), `href="/contao/assets/dcgeneral.css"`) {
		t.Fatalf("layout missing stylesheet link:\n%s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Hello") {
		t.Fatalf("body missing record:\n%s", rec.Body.String())
	}
}

func TestSaveRedirectsWithSeeOther(t *testing.T) {
	h := newHandler(t)
	form := url.Values{"headline": {"Posted"}}
	req := httptest.NewRequest(http.MethodPost, "/contao/tl_article?act=save", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); !strings.HasPrefix(loc, "/contao/tl_article") {
		t.Fatalf("location = %q", loc)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/contao/tl_article", nil))
	if !strings.Contains(rec.Body.String(), "Posted") {
		t.Fatalf("saved record not listed:\n%s", rec.Body.String())
	}
}

func TestErrorStatus(t *testing.T) {
	h := newHandler(t)
	cases := []struct {
		target string
		want   int
	}{
		{"/contao/tl_missing", http.StatusNotFound},
		{"/contao/tl_article?act=explode", http.StatusBadRequest},
		{"/contao/tl_article?act=save", http.StatusMethodNotAllowed},
		{"/contao/tl_article?act=edit&id=tl_article::99", http.StatusNotFound},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.target, nil))
		if rec.Code != tc.want {
			t.Errorf("%s: status = %d, want %d", tc.target, rec.Code, tc.want)
		}
	}
}

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		nil: http.StatusOK,
		fmt.Errorf("x: %w", view.ErrMissingParentID): http.StatusBadRequest,
		view.ErrMissingParentProvider:                http.StatusBadRequest,
		controller.ErrNotDeletable:                   http.StatusForbidden,
		backend.ErrUnknownContainer:                  http.StatusNotFound,
		errors.New("boom"):                           http.StatusInternalServerError,
	}
	for err, want := range cases {
		if got := StatusFor(err); got != want {
			t.Errorf("StatusFor(%v) = %d, want %d", err, got, want)
		}
	}
}
