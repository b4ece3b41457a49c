package testsupport

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestMemoryProvider(t *testing.T) {
	p := MemoryProvider("tl_news", Record{"id": "3", "headline": "Hi"})
	m := MustFetch(t, p, "3")
	if m.Property("headline") != "Hi" || m.Property("id") != nil {
		t.Fatalf("properties = %v", m.Properties())
	}
}

func TestMustLoadDefinitions(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "page.yaml"), []byte("name: tl_page\nbasic:\n  mode: hierarchical\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	set := MustLoadDefinitions(t, dir)
	if _, ok := set.Get("tl_page"); !ok {
		t.Fatalf("tl_page not loaded: %v", set.Names())
	}
}

func TestCaptureTemplateOutput(t *testing.T) {
	out, written := CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		_, err := io.WriteString(w, "<p>x</p>")
		return "<p>x</p>", err
	})
	if out != written {
		t.Fatalf("out %q != written %q", out, written)
	}
}
