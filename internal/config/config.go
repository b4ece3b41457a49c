// Package config loads the dcgeneral application configuration from
// defaults, an optional TOML file and DCGENERAL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/goliatone/go-dcgeneral/pkg/format"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DCGENERAL_"

// Storage drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Config holds the application configuration.
type Config struct {
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Log         LogConfig     `toml:"log"`
	Definitions string        `toml:"definitions"`
	// Translations points at a directory of <locale>/<domain>.yaml files.
	Translations string              `toml:"translations"`
	Locale       string              `toml:"locale"`
	Format       FormatConfig        `toml:"format"`
	Icons        IconsConfig         `toml:"icons"`
	RootIDs      map[string][]string `toml:"root_ids"`
}

// ServerConfig holds HTTP settings.
type ServerConfig struct {
	Addr            string `toml:"addr"`
	PathPrefix      string `toml:"path_prefix"`
	Title           string `toml:"title"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
}

// StorageConfig selects the data providers.
type StorageConfig struct {
	Driver string `toml:"driver"` // "memory", "sqlite" or "mysql"
	DSN    string `toml:"dsn"`
	// IDGenerator is "uuid", "database" or "auto".
	IDGenerator string `toml:"id_generator"`
	Migrations  string `toml:"migrations"`
	// Seed is a YAML file of records keyed by provider name, loaded at start.
	Seed string `toml:"seed"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `toml:"level"`
	Dev   bool   `toml:"dev"`
}

// FormatConfig mirrors format.Settings plus a time zone name.
type FormatConfig struct {
	DateFormat  string `toml:"date_format"`
	TimeFormat  string `toml:"time_format"`
	DatimFormat string `toml:"datim_format"`
	TimeZone    string `toml:"time_zone"`
	Yes         string `toml:"yes"`
	No          string `toml:"no"`
}

// IconsConfig configures icon URLs. ThemeDir holds a go-theme manifest
// whose assets take precedence over BasePath.
type IconsConfig struct {
	BasePath string `toml:"base_path"`
	ThemeDir string `toml:"theme_dir"`
	Theme    string `toml:"theme"`
	Variant  string `toml:"variant"`
}

// Default returns the default configuration.
func Default() *Config {
	def := format.DefaultSettings()
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			PathPrefix:      "/contao",
			Title:           "dcgeneral",
			ShutdownTimeout: "5s",
		},
		Storage: StorageConfig{
			Driver:      DriverMemory,
			IDGenerator: "uuid",
		},
		Log: LogConfig{
			Level: "info",
		},
		Definitions: "definitions",
		Locale:      "en",
		Format: FormatConfig{
			DateFormat:  def.DateFormat,
			TimeFormat:  def.TimeFormat,
			DatimFormat: def.DatimFormat,
			TimeZone:    "UTC",
			Yes:         def.Yes,
			No:          def.No,
		},
		Icons: IconsConfig{
			BasePath: "system/themes/default/icons",
		},
	}
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "dcgeneral.toml"
	}
	return filepath.Join(home, ".config", "dcgeneral", "config.toml")
}

// Load reads the default path.
func Load() (*Config, error) {
	return LoadFrom(DefaultPath())
}

// LoadFrom starts with defaults, overlays the file at path when it exists,
// then applies environment overrides and validates the result.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, err
		}
	}
	applyEnvOverrides(cfg, os.Getenv)
	cfg.Definitions = expandPath(cfg.Definitions)
	cfg.Translations = expandPath(cfg.Translations)
	cfg.Templates = expandPath(cfg.Templates)
	cfg.Storage.Migrations = expandPath(cfg.Storage.Migrations)
	cfg.Storage.Seed = expandPath(cfg.Storage.Seed)
	cfg.Icons.ThemeDir = expandPath(cfg.Icons.ThemeDir)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid: %w", err)
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config, getenv func(string) string) {
	env := func(name string) string {
		return strings.TrimSpace(getenv(EnvPrefix + name))
	}
	if v := env("ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := env("PATH_PREFIX"); v != "" {
		cfg.Server.PathPrefix = v
	}
	if v := env("STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := env("STORAGE_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := env("ID_GENERATOR"); v != "" {
		cfg.Storage.IDGenerator = v
	}
	if v := env("DEFINITIONS"); v != "" {
		cfg.Definitions = v
	}
	if v := env("TRANSLATIONS"); v != "" {
		cfg.Translations = v
	}
	if v := env("LOCALE"); v != "" {
		cfg.Locale = v
	}
	if v := env("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := env("LOG_DEV"); v != "" {
		cfg.Log.Dev = v == "1" || strings.EqualFold(v, "true")
	}
	if v := env("THEME_VARIANT"); v != "" {
		cfg.Icons.Variant = v
	}
	if v := env("TIME_ZONE"); v != "" {
		cfg.Format.TimeZone = v
	}
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverSQLite, DriverMySQL:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage driver %q requires a dsn", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Storage.IDGenerator {
	case "", "uuid", "auto":
	case "database":
		if c.Storage.Driver == DriverMemory {
			return errors.New("id_generator \"database\" needs a sql storage driver")
		}
	default:
		return fmt.Errorf("unknown id_generator %q", c.Storage.IDGenerator)
	}
	if c.Definitions == "" {
		return errors.New("definitions directory is required")
	}
	if _, err := time.ParseDuration(c.Server.ShutdownTimeout); err != nil {
		return fmt.Errorf("shutdown_timeout: %w", err)
	}
	if _, err := time.LoadLocation(c.Format.TimeZone); err != nil {
		return fmt.Errorf("time_zone: %w", err)
	}
	if c.Icons.ThemeDir == "" && (c.Icons.Theme != "" || c.Icons.Variant != "") {
		return errors.New("icons: theme and variant need a theme_dir")
	}
	return nil
}

// Timeout returns the graceful shutdown timeout.
func (s ServerConfig) Timeout() time.Duration {
	d, err := time.ParseDuration(s.ShutdownTimeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// FormatSettings converts the format section into format.Settings.
func (c *Config) FormatSettings() format.Settings {
	loc, err := time.LoadLocation(c.Format.TimeZone)
	if err != nil {
		loc = time.UTC
	}
	return format.Settings{
		DateFormat:  c.Format.DateFormat,
		TimeFormat:  c.Format.TimeFormat,
		DatimFormat: c.Format.DatimFormat,
		Location:    loc,
		Yes:         c.Format.Yes,
		No:          c.Format.No,
	}.WithDefaults()
}
