package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-dcgeneral/internal/config"
	"github.com/goliatone/go-dcgeneral/pkg/backend"
	"github.com/goliatone/go-dcgeneral/pkg/chrome"
	"github.com/goliatone/go-dcgeneral/pkg/data"
	"github.com/goliatone/go-dcgeneral/pkg/data/idgen"
	"github.com/goliatone/go-dcgeneral/pkg/data/memory"
	"github.com/goliatone/go-dcgeneral/pkg/data/sqlprovider"
	"github.com/goliatone/go-dcgeneral/pkg/definition"
	"github.com/goliatone/go-dcgeneral/pkg/model"
	"github.com/goliatone/go-dcgeneral/pkg/translate"
	"github.com/goliatone/go-dcgeneral/pkg/view"
)

// app bundles the backend with the resources it holds open.
type app struct {
	backend *backend.Backend
	db      *sql.DB
}

func (a *app) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}

// buildApp loads definitions and translations, opens storage and wires the
// backend.
func buildApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	defs, err := definition.LoadFS(os.DirFS(cfg.Definitions))
	if err != nil {
		return nil, err
	}
	if defs.Len() == 0 {
		return nil, fmt.Errorf("no definitions found in %s", cfg.Definitions)
	}

	translator := translate.New(translate.WithLocale(cfg.Locale), translate.WithFallbackLocale("en"))
	if cfg.Translations != "" {
		if err := translator.LoadFS(os.DirFS(cfg.Translations)); err != nil {
			return nil, err
		}
	}

	a := &app{}
	providers, err := a.openProviders(ctx, cfg, defs)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	if cfg.Storage.Seed != "" {
		if err := seed(ctx, cfg.Storage.Seed, providers); err != nil {
			_ = a.Close()
			return nil, err
		}
	}

	iconOpts, err := iconOptions(cfg, logger)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	opts := []backend.Option{
		backend.WithDefinitionSet(defs),
		backend.WithDataProviders(providers...),
		backend.WithTranslator(translator),
		backend.WithFormatSettings(cfg.FormatSettings()),
		backend.WithLogger(logger),
		backend.WithIconOptions(iconOpts...),
	}
	if cfg.Templates != "" {
		r, err := view.NewRenderer(os.DirFS(cfg.Templates))
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		opts = append(opts, backend.WithTemplates(r))
	}
	for container, ids := range cfg.RootIDs {
		opts = append(opts, backend.WithRootIDs(container, ids...))
	}
	b, err := backend.New(opts...)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.backend = b
	logger.Info("backend ready",
		zap.Int("containers", defs.Len()),
		zap.String("storage", cfg.Storage.Driver),
	)
	return a, nil
}

// iconOptions resolves icons against the base path, or the configured theme
// manifest first when one is set.
func iconOptions(cfg *config.Config, logger *zap.Logger) ([]chrome.IconOption, error) {
	opts := []chrome.IconOption{
		chrome.WithIconBasePath(cfg.Icons.BasePath),
		chrome.WithIconLogger(logger),
	}
	if cfg.Icons.ThemeDir == "" {
		return opts, nil
	}
	selector, err := chrome.LoadThemeSelector(os.DirFS(cfg.Icons.ThemeDir), ".")
	if err != nil {
		return nil, err
	}
	return append(opts, chrome.WithThemeSelector(selector, cfg.Icons.Theme, cfg.Icons.Variant)), nil
}

// openProviders creates one provider per distinct provider name.
func (a *app) openProviders(ctx context.Context, cfg *config.Config, defs *definition.Set) ([]data.Provider, error) {
	names := providerNames(defs)

	if cfg.Storage.Driver == config.DriverMemory {
		gen, err := idGenerator(cfg, nil)
		if err != nil {
			return nil, err
		}
		out := make([]data.Provider, 0, len(names))
		for _, name := range names {
			out = append(out, memory.New(name, memory.WithIDGenerator(gen)))
		}
		return out, nil
	}

	if cfg.Storage.Driver == config.DriverSQLite && cfg.Storage.IDGenerator == "database" {
		if err := idgen.RegisterSQLiteUUID(); err != nil {
			return nil, err
		}
	}
	db, err := sqlprovider.Open(cfg.Storage.Driver, cfg.Storage.DSN)
	if err != nil {
		return nil, err
	}
	a.db = db

	if cfg.Storage.Migrations != "" {
		raw, err := os.ReadFile(cfg.Storage.Migrations)
		if err != nil {
			return nil, fmt.Errorf("read migrations: %w", err)
		}
		if err := sqlprovider.Migrate(ctx, db, strings.Split(string(raw), ";")...); err != nil {
			return nil, err
		}
	}

	gen, err := idGenerator(cfg, db)
	if err != nil {
		return nil, err
	}
	out := make([]data.Provider, 0, len(names))
	for _, name := range names {
		p, err := sqlprovider.New(db, name,
			sqlprovider.WithDialect(sqlprovider.Dialect(cfg.Storage.Driver)),
			sqlprovider.WithIDGenerator(gen),
		)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func providerNames(defs *definition.Set) []string {
	seen := make(map[string]bool)
	var names []string
	for _, container := range defs.Names() {
		def, _ := defs.Get(container)
		for _, name := range []string{def.ProviderName(), def.Basic.ParentDataProvider} {
			if name != "" && !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

func idGenerator(cfg *config.Config, db *sql.DB) (idgen.Generator, error) {
	switch cfg.Storage.IDGenerator {
	case "", "uuid":
		return idgen.UUID{}, nil
	case "auto":
		return idgen.AutoIncrement{}, nil
	case "database":
		if db == nil {
			return nil, errors.New("database id generator needs a sql storage driver")
		}
		return idgen.NewDatabase(db, ""), nil
	default:
		return nil, fmt.Errorf("unknown id generator %q", cfg.Storage.IDGenerator)
	}
}

// seed saves the records of a YAML document shaped as
// provider -> list of property maps. An "id" entry keeps its id.
func seed(ctx context.Context, path string, providers []data.Provider) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed: %w", err)
	}
	var doc map[string][]map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse seed %s: %w", path, err)
	}
	byName := make(map[string]data.Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	for name, records := range doc {
		p, ok := byName[name]
		if !ok {
			return fmt.Errorf("seed: unknown provider %q", name)
		}
		for _, props := range records {
			id := data.ToString(props["id"])
			delete(props, "id")
			m := model.NewWithProperties(name, id, props)
			if err := p.Save(ctx, m); err != nil {
				return fmt.Errorf("seed %s: %w", name, err)
			}
		}
	}
	return nil
}
