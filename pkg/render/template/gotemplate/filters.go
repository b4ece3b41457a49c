package gotemplate

import (
	"strings"
	"unicode/utf8"

	"github.com/flosch/pongo2/v6"
)

func registerBuiltinFilters() {
	if !pongo2.FilterExists("trim") {
		_ = pongo2.RegisterFilter("trim", filterTrim)
	}
	if !pongo2.FilterExists("ellipsis") {
		_ = pongo2.RegisterFilter("ellipsis", filterEllipsis)
	}
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}

// filterEllipsis shortens a label to param runes, appending "…" when cut.
// A missing or non-positive param leaves the value untouched.
func filterEllipsis(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	text := in.String()
	limit := 0
	if param != nil {
		limit = param.Integer()
	}
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return pongo2.AsValue(text), nil
	}
	runes := []rune(text)
	return pongo2.AsValue(strings.TrimSpace(string(runes[:limit])) + "…"), nil
}
