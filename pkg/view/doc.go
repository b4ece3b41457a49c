// Package view renders the backend views of a data container: the flat
// ListView, the ParentView (children of one parent record with a header) and
// the hierarchical TreeView, plus the edit form and the read-only record view
// they share. Views read everything from an environment.Environment and
// render through a template.TemplateRenderer; the embedded pongo2 templates
// are used when the environment carries none.
package view
