package model_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-dcgeneral/pkg/model"
)

func TestPackUnpack_RoundTrip(t *testing.T) {
	cases := []struct {
		name     string
		provider string
		id       string
	}{
		{name: "plain", provider: "tl_news", id: "42"},
		{name: "uuid", provider: "tl_page", id: "8c1f2d9e-0b0e-4c5e-9a59-0f3b2b8c1d10"},
		{name: "delimiter in provider", provider: "mm::attribute", id: "7"},
		{name: "delimiter in id", provider: "tl_files", id: "files::uploads"},
		{name: "percent signs", provider: "a%3Ab", id: "100%"},
		{name: "single colons", provider: "a:b", id: ":c:"},
		{name: "empty id", provider: "tl_news", id: ""},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			token := model.Pack(tc.provider, tc.id)
			got, err := model.Unpack(token)
			if err != nil {
				t.Fatalf("unpack %q: %v", token, err)
			}
			want := model.NewModelID(tc.provider, tc.id)
			if !got.Equal(want) {
				t.Fatalf("round trip mismatch: want %+v, got %+v (token %q)", want, got, token)
			}
		})
	}
}

func TestPack_IsCollisionFree(t *testing.T) {
	left := model.Pack("a::b", "c")
	right := model.Pack("a", "b::c")
	if left == right {
		t.Fatalf("expected distinct tokens, both were %q", left)
	}
}

func TestModelID_IsValid(t *testing.T) {
	cases := []struct {
		id    model.ModelID
		valid bool
	}{
		{id: model.NewModelID("tl_news", "1"), valid: true},
		{id: model.NewModelID("", "1"), valid: false},
		{id: model.NewModelID("tl_news", ""), valid: false},
		{id: model.ModelID{}, valid: false},
	}
	for _, tc := range cases {
		if got := tc.id.IsValid(); got != tc.valid {
			t.Fatalf("IsValid(%+v) = %v, want %v", tc.id, got, tc.valid)
		}
	}
}

func TestUnpack_EmptyTokenIsZero(t *testing.T) {
	got, err := model.Unpack("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.IsValid() {
		t.Fatalf("expected invalid zero id, got %+v", got)
	}
}

func TestUnpack_MalformedTokens(t *testing.T) {
	for _, token := range []string{"no-delimiter", "a::b::c", "a%ZZ::1", "a::1%2", "a::b:c"} {
		if _, err := model.Unpack(token); !errors.Is(err, model.ErrInvalidToken) {
			t.Fatalf("unpack %q: expected ErrInvalidToken, got %v", token, err)
		}
	}
}

func TestResolveID(t *testing.T) {
	cases := map[string]string{
		"42":              "42",
		"tl_news::42":     "42",
		"tl_a%3Ab::x%25y": "x%y",
		"":                "",
	}
	for raw, want := range cases {
		got, err := model.ResolveID(raw)
		if err != nil {
			t.Fatalf("ResolveID(%q): %v", raw, err)
		}
		if got != want {
			t.Fatalf("ResolveID(%q) = %q, want %q", raw, got, want)
		}
	}
	if _, err := model.ResolveID("a::b:c"); !errors.Is(err, model.ErrInvalidToken) {
		t.Fatalf("ResolveID malformed error = %v", err)
	}
}
