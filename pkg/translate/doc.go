// Package translate provides the translation manager the views use for
// labels, buttons and header field names. Catalogs are keyed by locale and
// domain; a missing key falls back to the key itself.
package translate
