package chrome

import (
	"fmt"
	"io/fs"

	theme "github.com/goliatone/go-theme"
)

// LoadThemeSelector reads the theme manifest in dir of fsys, registers it
// and returns a selector that falls back to it.
func LoadThemeSelector(fsys fs.FS, dir string) (theme.Selector, error) {
	manifest, err := theme.LoadDir(fsys, dir)
	if err != nil {
		return theme.Selector{}, fmt.Errorf("chrome: load theme: %w", err)
	}
	registry := theme.NewRegistry()
	if err := registry.Register(manifest); err != nil {
		return theme.Selector{}, fmt.Errorf("chrome: register theme %q: %w", manifest.Name, err)
	}
	return theme.Selector{Registry: registry, DefaultTheme: manifest.Name}, nil
}
