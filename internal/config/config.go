package config

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/richdoc/internal/config/loader"
)

// Config is the complete richdoc configuration.
type Config struct {
	Editor    EditorConfig    `toml:"editor"`
	Markdown  MarkdownConfig  `toml:"markdown"`
	HTML      HTMLConfig      `toml:"html"`
	Clipboard ClipboardConfig `toml:"clipboard"`
	Table     TableConfig     `toml:"table"`
	Log       LogConfig       `toml:"log"`
	Plugins   PluginsConfig   `toml:"plugins"`
}

// EditorConfig configures documents created by the editor.
type EditorConfig struct {
	// Namespace identifies native clipboard data. Empty picks a random one
	// per document.
	Namespace string `toml:"namespace"`
	ReadOnly  bool   `toml:"read_only"`
}

// MarkdownConfig toggles markdown syntax extensions.
type MarkdownConfig struct {
	Table         bool `toml:"table"`
	Strikethrough bool `toml:"strikethrough"`
	TaskList      bool `toml:"task_list"`
}

// HTMLConfig configures HTML import.
type HTMLConfig struct {
	Sanitize bool `toml:"sanitize"`
}

// ClipboardConfig configures the native clipboard format.
type ClipboardConfig struct {
	MIME string `toml:"mime"`
}

// TableConfig holds the defaults of inserted tables.
type TableConfig struct {
	DefaultRows    int  `toml:"default_rows"`
	DefaultColumns int  `toml:"default_columns"`
	HeaderRow      bool `toml:"header_row"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// PluginsConfig lists plugin scripts. Entries may be glob patterns.
type PluginsConfig struct {
	Lua []string `toml:"lua"`
	// LuaBudgetMS is the time budget of one script entry in milliseconds.
	LuaBudgetMS int `toml:"lua_budget_ms"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Markdown:  MarkdownConfig{Table: true, Strikethrough: true, TaskList: true},
		HTML:      HTMLConfig{Sanitize: true},
		Clipboard: ClipboardConfig{MIME: "application/x-richdoc-nodes"},
		Table:     TableConfig{DefaultRows: 3, DefaultColumns: 3, HeaderRow: true},
		Log:       LogConfig{Level: "info", Format: "console"},
		Plugins:   PluginsConfig{LuaBudgetMS: 2000},
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.Table.DefaultRows < 1:
		return fmt.Errorf("%w: table.default_rows must be at least 1", ErrInvalid)
	case c.Table.DefaultColumns < 1:
		return fmt.Errorf("%w: table.default_columns must be at least 1", ErrInvalid)
	case c.Clipboard.MIME == "":
		return fmt.Errorf("%w: clipboard.mime is empty", ErrInvalid)
	case c.Plugins.LuaBudgetMS < 0:
		return fmt.Errorf("%w: plugins.lua_budget_ms is negative", ErrInvalid)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level %q", ErrInvalid, c.Log.Level)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalid, c.Log.Format)
	}
	return nil
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	files     []string
	fs        loader.FileSystem
	envPrefix string
}

// WithFile adds a config file layer. Later files override earlier ones.
// Missing files are skipped.
func WithFile(path string) LoadOption {
	return func(o *loadOptions) { o.files = append(o.files, path) }
}

// WithFS reads config files from fsys.
func WithFS(fsys loader.FileSystem) LoadOption {
	return func(o *loadOptions) { o.fs = fsys }
}

// WithEnvPrefix sets the environment variable prefix. Empty disables the
// environment layer.
func WithEnvPrefix(prefix string) LoadOption {
	return func(o *loadOptions) { o.envPrefix = prefix }
}

// maxIncludeDepth bounds @include nesting.
const maxIncludeDepth = 8

// Load builds the configuration from defaults, files and the environment.
func Load(opts ...LoadOption) (*Config, error) {
	o := loadOptions{fs: loader.DefaultFS(), envPrefix: "RICHDOC_"}
	for _, opt := range opts {
		opt(&o)
	}

	merged := make(map[string]any)
	for _, path := range o.files {
		m, err := loader.NewFileLoaderWithFS(o.fs, path).LoadWithIncludes(path, maxIncludeDepth)
		if err != nil {
			return nil, err
		}
		merged = loader.DeepMerge(merged, m)
	}
	if o.envPrefix != "" {
		env, err := loader.NewEnvLoader(o.envPrefix).Load()
		if err != nil {
			return nil, err
		}
		merged = loader.DeepMerge(merged, env)
	}
	return FromMap(merged)
}

// FromMap applies a nested settings map over the defaults.
func FromMap(m map[string]any) (*Config, error) {
	cfg := Default()
	if len(m) > 0 {
		data, err := toml.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("config: encode settings: %w", err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: decode settings: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
