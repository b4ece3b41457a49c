// Package template declares the template renderer contract the backend views
// render through. The pongo2 implementation lives in the gotemplate
// subpackage.
package template
