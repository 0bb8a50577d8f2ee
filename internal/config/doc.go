// Package config loads the richdoc configuration.
//
// Configuration is layered, higher layers overriding lower ones:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← RICHDOC_SECTION_KEY
//	├─────────────────────────────┤
//	│  2. Config Files            │  ← TOML or YAML, with @include
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │
//	└─────────────────────────────┘
//
// # Sub-packages
//
//   - loader: file (TOML, YAML) and environment sources, DeepMerge
//   - watcher: file watching for live reload
//
// # Basic Usage
//
//	cfg, err := config.Load(config.WithFile("richdoc.toml"))
//	if err != nil {
//		return err
//	}
//	ed, err := editor.New(editor.WithConfig(cfg))
package config
