// Package testsupport holds fixtures shared by package tests: inline
// definitions, seeded memory providers and golden file helpers.
package testsupport

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dcgeneral/pkg/data"
	"github.com/goliatone/go-dcgeneral/pkg/data/memory"
	"github.com/goliatone/go-dcgeneral/pkg/definition"
	"github.com/goliatone/go-dcgeneral/pkg/model"
)

// Record is a fixture row. The "id" entry becomes the model id.
type Record map[string]any

// MustParseDefinitions parses inline YAML/JSON definitions keyed by name.
func MustParseDefinitions(t *testing.T, raw string) map[string]*definition.Definition {
	t.Helper()

	defs, err := definition.Parse([]byte(raw), "inline.yaml")
	if err != nil {
		t.Fatalf("parse definitions: %v", err)
	}
	out := make(map[string]*definition.Definition, len(defs))
	for _, def := range defs {
		out[def.Name] = def
	}
	return out
}

// MustParseDefinitionList parses inline definitions in document order.
func MustParseDefinitionList(t *testing.T, raw string) []*definition.Definition {
	t.Helper()

	defs, err := definition.Parse([]byte(raw), "inline.yaml")
	if err != nil {
		t.Fatalf("parse definitions: %v", err)
	}
	return defs
}

// MustLoadDefinitions loads every definition file below dir.
func MustLoadDefinitions(t *testing.T, dir string) *definition.Set {
	t.Helper()

	set, err := definition.LoadFS(os.DirFS(dir))
	if err != nil {
		t.Fatalf("load definitions: %v", err)
	}
	return set
}

// MemoryProvider returns a memory provider seeded with records.
func MemoryProvider(name string, records ...Record) *memory.Provider {
	models := make([]*model.Model, 0, len(records))
	for _, rec := range records {
		props := make(map[string]any, len(rec))
		for key, value := range rec {
			if key != "id" {
				props[key] = value
			}
		}
		models = append(models, model.NewWithProperties(name, data.ToString(rec["id"]), props))
	}
	return memory.New(name, memory.WithModels(models...))
}

// MustFetch returns the record with id or fails the test.
func MustFetch(t *testing.T, p data.Provider, id string) *model.Model {
	t.Helper()

	cfg := p.EmptyConfig()
	cfg.SetID(id)
	m, err := p.Fetch(Context(), cfg)
	if err != nil {
		t.Fatalf("fetch %s::%s: %v", p.Name(), id, err)
	}
	if m == nil {
		t.Fatalf("record %s::%s not found", p.Name(), id)
	}
	return m
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return raw
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, content []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// CaptureTemplateOutput executes a render function that writes to an
// io.Writer and returns both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	return out, buf.String()
}
