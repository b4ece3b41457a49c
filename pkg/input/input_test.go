package input

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFromValuesParameters(t *testing.T) {
	p := FromValues("/contao", url.Values{"do": {"news"}, "pid": {"1", "2"}})

	if got := p.Parameter("pid"); got != "2" {
		t.Fatalf("pid = %q, want last value", got)
	}
	if !p.HasParameter("do") || p.HasParameter("act") {
		t.Fatalf("HasParameter mismatch")
	}

	p.SetParameter("act", "select").UnsetParameter("do")
	if got := p.RequestURI(); got != "/contao?act=select&pid=2" {
		t.Fatalf("RequestURI = %q", got)
	}
	if p.IsPost() {
		t.Fatalf("GET provider reported POST")
	}
}

func TestFromRequestReadsPostForm(t *testing.T) {
	body := strings.NewReader("headline=Hello&tags=a&tags=b")
	req := httptest.NewRequest(http.MethodPost, "/tl_news?act=save&id=tl_news::1", body)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	p, err := FromRequest(req)
	if err != nil {
		t.Fatalf("FromRequest: %v", err)
	}
	if !p.IsPost() {
		t.Fatalf("expected POST")
	}
	if got := p.Parameter("id"); got != "tl_news::1" {
		t.Fatalf("id = %q", got)
	}
	if got := p.Value("headline"); got != "Hello" {
		t.Fatalf("headline = %q", got)
	}
	if diff := cmp.Diff([]string{"a", "b"}, p.Values("tags")); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"headline", "tags"}, p.ValueNames()); diff != "" {
		t.Fatalf("value names mismatch (-want +got):\n%s", diff)
	}
	if p.HasValue("act") {
		t.Fatalf("query parameters must not leak into values")
	}
}
