package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFrom_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFrom_FileOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
definitions = "dca"

[server]
addr = ":9000"
shutdown_timeout = "10s"

[storage]
driver = "sqlite"
dsn = "file:test.db"

[format]
date_format = "d.m.Y"
time_zone = "Europe/Berlin"

[root_ids]
tl_page = ["1", "7"]
`)
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Server.Addr != ":9000" || cfg.Server.Timeout() != 10*time.Second {
		t.Fatalf("server = %+v", cfg.Server)
	}
	if cfg.Server.PathPrefix != "/contao" {
		t.Fatalf("path prefix default lost: %q", cfg.Server.PathPrefix)
	}
	if cfg.Storage.Driver != DriverSQLite || cfg.Definitions != "dca" {
		t.Fatalf("storage = %+v definitions = %q", cfg.Storage, cfg.Definitions)
	}
	if diff := cmp.Diff(map[string][]string{"tl_page": {"1", "7"}}, cfg.RootIDs); diff != "" {
		t.Fatalf("root ids mismatch (-want +got):\n%s", diff)
	}

	settings := cfg.FormatSettings()
	if settings.DateFormat != "d.m.Y" || settings.Location.String() != "Europe/Berlin" {
		t.Fatalf("settings = %+v", settings)
	}
}

func TestLoadFrom_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "[log]\nlevel = \"warn\"\n")
	t.Setenv("DCGENERAL_LOG_LEVEL", "debug")
	t.Setenv("DCGENERAL_LOG_DEV", "true")
	t.Setenv("DCGENERAL_ADDR", "127.0.0.1:1234")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	want := LogConfig{Level: "debug", Dev: true}
	if diff := cmp.Diff(want, cfg.Log); diff != "" {
		t.Fatalf("log mismatch (-want +got):\n%s", diff)
	}
	if cfg.Server.Addr != "127.0.0.1:1234" {
		t.Fatalf("addr = %q", cfg.Server.Addr)
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"unknown driver":      func(c *Config) { c.Storage.Driver = "oracle" },
		"sqlite without dsn":  func(c *Config) { c.Storage.Driver = DriverSQLite },
		"database id, memory": func(c *Config) { c.Storage.IDGenerator = "database" },
		"unknown generator":   func(c *Config) { c.Storage.IDGenerator = "snowflake" },
		"no definitions":      func(c *Config) { c.Definitions = "" },
		"bad timeout":         func(c *Config) { c.Server.ShutdownTimeout = "soon" },
		"bad time zone":       func(c *Config) { c.Format.TimeZone = "Mars/Olympus" },
		"theme without dir":   func(c *Config) { c.Icons.Theme = "acme" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadFrom_InvalidTOML(t *testing.T) {
	if _, err := LoadFrom(writeFile(t, "server = [")); err == nil {
		t.Fatalf("expected parse error")
	}
}
