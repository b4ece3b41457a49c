// Package definition holds the declarative data container definitions the
// views and the populator read: the basic section (view mode, providers,
// creatable/editable/closed flags), the listing config, property metadata,
// parent/child relationship conditions and the panel layout. Definitions are
// loaded from YAML or JSON files and are read-only once loaded.
package definition
