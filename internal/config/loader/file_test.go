package loader

import (
	"errors"
	"strings"
	"testing"
)

func TestFileLoader_TOML(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/config.toml", `
[markdown]
table = false

[table]
default_rows = 4
`)
	config, err := NewFileLoaderWithFS(memfs, "/config.toml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	md, ok := config["markdown"].(map[string]any)
	if !ok {
		t.Fatal("expected markdown to be a map")
	}
	if md["table"] != false {
		t.Errorf("table = %v, want false", md["table"])
	}
	table := config["table"].(map[string]any)
	if table["default_rows"] != int64(4) {
		t.Errorf("default_rows = %v (%T), want 4", table["default_rows"], table["default_rows"])
	}
}

func TestFileLoader_YAML(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/config.yaml", "log:\n  level: debug\nplugins:\n  lua:\n    - a.lua\n")
	config, err := NewFileLoaderWithFS(memfs, "/config.yaml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	log := config["log"].(map[string]any)
	if log["level"] != "debug" {
		t.Errorf("level = %v, want debug", log["level"])
	}
	lua := config["plugins"].(map[string]any)["lua"].([]any)
	if len(lua) != 1 || lua[0] != "a.lua" {
		t.Errorf("lua = %v", lua)
	}
}

func TestFileLoader_EmptyYAML(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/empty.yml", "")
	config, err := NewFileLoaderWithFS(memfs, "/empty.yml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(config) != 0 {
		t.Errorf("config = %v, want empty", config)
	}
}

func TestFileLoader_Missing(t *testing.T) {
	config, err := NewFileLoaderWithFS(NewMemFS(), "/nope.toml").Load()
	if err != nil {
		t.Fatalf("missing file should not be an error: %v", err)
	}
	if config != nil {
		t.Errorf("config = %v, want nil", config)
	}
}

func TestFileLoader_ParseError(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/bad.toml", "[markdown\ntable = true\n")
	_, err := NewFileLoaderWithFS(memfs, "/bad.toml").Load()
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if pe.Path != "/bad.toml" || pe.Line < 1 {
		t.Errorf("ParseError = %+v", pe)
	}
	if !strings.Contains(pe.Error(), "/bad.toml at line") {
		t.Errorf("Error() = %q", pe.Error())
	}
}

func TestFileLoader_Includes(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/cfg/base.toml", "[table]\ndefault_rows = 2\ndefault_columns = 2\n")
	memfs.AddFile("/cfg/log.yaml", "log:\n  format: json\n")
	memfs.AddFile("/cfg/main.toml", `"@include" = ["base.toml", "log.yaml"]

[table]
default_rows = 9
`)
	config, err := NewFileLoaderWithFS(memfs, "/cfg/main.toml").LoadWithIncludes("/cfg/main.toml", 4)
	if err != nil {
		t.Fatalf("LoadWithIncludes failed: %v", err)
	}
	if _, ok := config["@include"]; ok {
		t.Error("@include should be removed")
	}
	table := config["table"].(map[string]any)
	if table["default_rows"] != int64(9) || table["default_columns"] != int64(2) {
		t.Errorf("table = %v", table)
	}
	if config["log"].(map[string]any)["format"] != "json" {
		t.Errorf("log = %v", config["log"])
	}
}

func TestFileLoader_IncludeCycle(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/a.toml", `"@include" = "b.toml"`)
	memfs.AddFile("/b.toml", `"@include" = "a.toml"`)
	_, err := NewFileLoaderWithFS(memfs, "/a.toml").LoadWithIncludes("/a.toml", 3)
	if !errors.Is(err, ErrIncludeDepth) {
		t.Fatalf("expected ErrIncludeDepth, got %v", err)
	}
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{"a": map[string]any{"x": 1, "y": 2}, "b": 1}
	src := map[string]any{"a": map[string]any{"y": 3}, "c": map[string]any{"z": 4}}
	got := DeepMerge(dst, src)
	a := got["a"].(map[string]any)
	if a["x"] != 1 || a["y"] != 3 {
		t.Errorf("a = %v", a)
	}
	src["c"].(map[string]any)["z"] = 5
	if got["c"].(map[string]any)["z"] != 4 {
		t.Error("merged maps should not alias src")
	}
}
