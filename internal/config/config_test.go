package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dshills/richdoc/internal/config/loader"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default() is invalid: %v", err)
	}
	if !cfg.Markdown.Table || !cfg.HTML.Sanitize || !cfg.Table.HeaderRow {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Table.DefaultRows != 3 || cfg.Table.DefaultColumns != 3 {
		t.Errorf("table defaults = %+v", cfg.Table)
	}
}

func TestLoad_Layers(t *testing.T) {
	memfs := loader.NewMemFS()
	memfs.AddFile("/etc/richdoc.toml", `
[markdown]
task_list = false

[table]
default_rows = 5
`)
	memfs.AddFile("/home/richdoc.yaml", "table:\n  default_columns: 4\nplugins:\n  lua: [\"a.lua\"]\n")
	t.Setenv("RICHDOC_LOG_LEVEL", "debug")
	t.Setenv("RICHDOC_TABLE_DEFAULT_ROWS", "7")

	cfg, err := Load(
		WithFS(memfs),
		WithFile("/etc/richdoc.toml"),
		WithFile("/home/richdoc.yaml"),
		WithFile("/missing.toml"),
	)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Markdown.TaskList {
		t.Error("task_list should be false")
	}
	if !cfg.Markdown.Table {
		t.Error("table should keep its default")
	}
	if cfg.Table.DefaultRows != 7 {
		t.Errorf("default_rows = %d, want 7 from the environment", cfg.Table.DefaultRows)
	}
	if cfg.Table.DefaultColumns != 4 {
		t.Errorf("default_columns = %d, want 4", cfg.Table.DefaultColumns)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Log.Level)
	}
	if len(cfg.Plugins.Lua) != 1 || cfg.Plugins.Lua[0] != "a.lua" {
		t.Errorf("plugins = %v", cfg.Plugins.Lua)
	}
}

func TestLoad_EnvDisabled(t *testing.T) {
	t.Setenv("RICHDOC_LOG_LEVEL", "debug")
	cfg, err := Load(WithEnvPrefix(""))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level = %q, want info", cfg.Log.Level)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"rows", "[table]\ndefault_rows = 0\n"},
		{"level", "[log]\nlevel = \"loud\"\n"},
		{"format", "[log]\nformat = \"xml\"\n"},
		{"mime", "[clipboard]\nmime = \"\"\n"},
		{"lua budget", "[plugins]\nlua_budget_ms = -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			memfs := loader.NewMemFS()
			memfs.AddFile("/c.toml", tt.src)
			_, err := Load(WithFS(memfs), WithFile("/c.toml"), WithEnvPrefix(""))
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestLoad_ParseError(t *testing.T) {
	memfs := loader.NewMemFS()
	memfs.AddFile("/c.toml", "[table\n")
	_, err := Load(WithFS(memfs), WithFile("/c.toml"), WithEnvPrefix(""))
	var pe *loader.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestWatch_Reloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "richdoc.toml")
	if err := os.WriteFile(path, []byte("[table]\ndefault_rows = 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan *Config, 4)
	w, err := Watch(func(c *Config) { reloaded <- c }, nil, WithFile(path), WithEnvPrefix(""))
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("[table]\ndefault_rows = 6\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case cfg := <-reloaded:
		if cfg.Table.DefaultRows != 6 {
			t.Errorf("default_rows = %d, want 6", cfg.Table.DefaultRows)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}
