package definition

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Set is a read-only collection of definitions keyed by container name.
type Set struct {
	definitions map[string]*Definition
}

// NewSet builds a set from already constructed definitions.
func NewSet(defs ...*Definition) (*Set, error) {
	set := &Set{definitions: make(map[string]*Definition, len(defs))}
	for _, def := range defs {
		if err := set.add(def); err != nil {
			return nil, err
		}
	}
	return set, nil
}

// LoadFS walks fsys and parses every JSON/YAML definition file. Each file
// holds either a single definition or a `containers:` list.
func LoadFS(fsys fs.FS) (*Set, error) {
	set := &Set{definitions: make(map[string]*Definition)}
	if fsys == nil {
		return set, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDefinitionFile(path) {
			return nil
		}

		raw, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("definition: read %s: %w", path, err)
		}

		defs, err := Parse(raw, path)
		if err != nil {
			return err
		}
		for _, def := range defs {
			if err := set.add(def); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

type documentFile struct {
	Definition `yaml:",inline"`
	Containers []Definition `json:"containers" yaml:"containers"`
}

// Parse decodes one definition document. JSON is tried first, then YAML.
func Parse(raw []byte, source string) ([]*Definition, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, fmt.Errorf("definition: file %s is empty", source)
	}

	var doc documentFile
	if err := json.Unmarshal(raw, &doc); err != nil {
		doc = documentFile{}
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("definition: parse %s: invalid JSON or YAML", source)
		}
	}

	candidates := doc.Containers
	if strings.TrimSpace(doc.Name) != "" {
		candidates = append([]Definition{doc.Definition}, candidates...)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("definition: file %s defines no container", source)
	}

	out := make([]*Definition, 0, len(candidates))
	for i := range candidates {
		def := candidates[i]
		def.Source = source
		def.normalize()
		if def.Name == "" {
			return nil, fmt.Errorf("definition: file %s defines a container without a name", source)
		}
		out = append(out, &def)
	}
	return out, nil
}

func (s *Set) add(def *Definition) error {
	if def == nil {
		return nil
	}
	if def.Name == "" {
		return fmt.Errorf("definition: container without a name")
	}
	if existing, ok := s.definitions[def.Name]; ok {
		return fmt.Errorf("definition: duplicate container %q (%s, %s)", def.Name, existing.Source, def.Source)
	}
	s.definitions[def.Name] = def
	return nil
}

// Get returns the definition registered under name.
func (s *Set) Get(name string) (*Definition, bool) {
	if s == nil {
		return nil, false
	}
	def, ok := s.definitions[name]
	return def, ok
}

// Names lists the container names in sorted order.
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.definitions))
	for name := range s.definitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len reports the number of definitions.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.definitions)
}

func isDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
