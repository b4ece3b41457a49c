package translate

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func loadManager(t *testing.T, opts ...Option) *Manager {
	t.Helper()
	m := New(opts...)
	if err := m.LoadFS(os.DirFS("testdata")); err != nil {
		t.Fatalf("LoadFS: %v", err)
	}
	return m
}

func TestManagerLoadsAndFlattensCatalogs(t *testing.T) {
	m := loadManager(t)

	if diff := cmp.Diff([]string{"de", "en"}, m.Locales()); diff != "" {
		t.Fatalf("locales mismatch (-want +got):\n%s", diff)
	}

	cases := map[string]string{
		"yes":        "Yes",
		"pastenew.0": "Paste",
		"pastenew.1": "Paste a new record",
		"tstamp.0":   "Revision date",
	}
	for key, want := range cases {
		if got := m.Translate(key, DomainMSC); got != want {
			t.Errorf("Translate(%q) = %q, want %q", key, got, want)
		}
	}
	if got := m.Translate("jumpTo.0", "tl_news_archive"); got != "Redirect page" {
		t.Fatalf("jumpTo.0 = %q", got)
	}
}

func TestManagerFallsBackToKey(t *testing.T) {
	m := loadManager(t)
	if got := m.Translate("unknown.0", "tl_news"); got != "unknown.0" {
		t.Fatalf("expected raw key, got %q", got)
	}
	if _, ok := m.Lookup("unknown.0", "tl_news"); ok {
		t.Fatalf("Lookup should report missing key")
	}
}

func TestManagerFallbackLocaleAndArgs(t *testing.T) {
	m := loadManager(t, WithLocale("de"), WithFallbackLocale("en"))

	if got := m.Translate("yes", DomainMSC); got != "Ja" {
		t.Fatalf("yes = %q, want Ja", got)
	}
	if got := m.Translate("selectAll", DomainMSC); got != "Select all" {
		t.Fatalf("fallback locale not consulted, got %q", got)
	}
	if got := m.Translate("pasteafter.1", DomainMSC, "7"); got != "Paste after record 7" {
		t.Fatalf("args not applied, got %q", got)
	}

	en := m.ForLocale("en")
	if got := en.Translate("yes", DomainMSC); got != "Yes" {
		t.Fatalf("ForLocale translate = %q", got)
	}
	if m.Locale() != "de" {
		t.Fatalf("ForLocale must not mutate the receiver")
	}
}

func TestManagerOnMissing(t *testing.T) {
	m := New(WithOnMissing(func(locale, domain, key string, _ ...any) string {
		return "[" + locale + ":" + domain + ":" + key + "]"
	}))
	if got := m.Translate("x", ""); got != "[en:default:x]" {
		t.Fatalf("missing handler output = %q", got)
	}
}

func TestTemplateFuncs(t *testing.T) {
	m := New()
	m.Add("en", DomainMSC, map[string]string{"no": "No"})
	funcs := TemplateFuncs(m)

	translate := funcs["translate"].(func(string, string, ...any) string)
	if got := translate("no", DomainMSC); got != "No" {
		t.Fatalf("translate helper = %q", got)
	}
	lookup := funcs["lookup"].(func(string, string) string)
	if got := lookup("missing", DomainMSC); got != "" {
		t.Fatalf("lookup helper = %q", got)
	}
}
