package loader

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
)

// MemFS is an in-memory file system for testing.
type MemFS struct {
	files map[string][]byte
}

func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string][]byte)}
}

func (m *MemFS) AddFile(path string, content string) {
	m.files[path] = []byte(content)
}

func (m *MemFS) Open(name string) (fs.File, error) {
	return nil, fs.ErrNotExist
}

func (m *MemFS) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func TestTOMLLoader_Load(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/config.toml", `
[logging]
level = "debug"

[lookup]
limit = 5
autoComplete = true

[[policies]]
prefix = "@"
pattern = "[a-z]+"
style = "mention"
`)

	config, err := NewTOMLLoaderWithFS(memfs, "/config.toml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	logging, ok := config["logging"].(map[string]any)
	if !ok || logging["level"] != "debug" {
		t.Errorf("logging = %v", config["logging"])
	}
	lookup, ok := config["lookup"].(map[string]any)
	if !ok || lookup["limit"] != int64(5) || lookup["autoComplete"] != true {
		t.Errorf("lookup = %v", config["lookup"])
	}
	policies, ok := config["policies"].([]any)
	if !ok || len(policies) != 1 {
		t.Fatalf("policies = %#v", config["policies"])
	}
	if p, _ := policies[0].(map[string]any); p["prefix"] != "@" {
		t.Errorf("policy = %v", policies[0])
	}
}

func TestTOMLLoader_FileNotFound(t *testing.T) {
	config, err := NewTOMLLoaderWithFS(NewMemFS(), "/missing.toml").Load()
	if err != nil {
		t.Errorf("Load should not error for missing file: %v", err)
	}
	if config != nil {
		t.Errorf("config = %v, want nil", config)
	}
}

func TestTOMLLoader_ParseError(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/bad.toml", "[logging]\nlevel = \n")

	_, err := NewTOMLLoaderWithFS(memfs, "/bad.toml").Load()
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want *ParseError", err)
	}
	if perr.Path != "/bad.toml" {
		t.Errorf("Path = %q", perr.Path)
	}
	if perr.Line != 2 {
		t.Errorf("Line = %d, want 2", perr.Line)
	}
	if !strings.Contains(perr.Error(), "/bad.toml") {
		t.Errorf("Error() = %q", perr.Error())
	}
}

func TestTOMLLoader_LoadFromReader(t *testing.T) {
	config, err := NewTOMLLoader("").LoadFromReader(strings.NewReader("[matching]\ntimeout = \"50ms\"\n"))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if m, _ := config["matching"].(map[string]any); m["timeout"] != "50ms" {
		t.Errorf("matching = %v", config["matching"])
	}
}

func TestForPath(t *testing.T) {
	tests := []struct {
		path string
		yaml bool
	}{
		{"taggable.toml", false},
		{"taggable.yaml", true},
		{"TAGGABLE.YML", true},
		{"noext", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, isYAML := ForPath(NewMemFS(), tt.path).(*YAMLLoader)
			if isYAML != tt.yaml {
				t.Errorf("ForPath(%q) yaml = %v, want %v", tt.path, isYAML, tt.yaml)
			}
		})
	}
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"logging": map[string]any{"level": "info", "prefix": "taggable"},
		"lookup":  map[string]any{"limit": 10},
	}
	src := map[string]any{
		"logging": map[string]any{"level": "debug"},
		"lookup":  "replaced",
		"extra":   true,
	}

	got := DeepMerge(dst, src)

	logging := got["logging"].(map[string]any)
	if logging["level"] != "debug" || logging["prefix"] != "taggable" {
		t.Errorf("logging = %v", logging)
	}
	if got["lookup"] != "replaced" {
		t.Errorf("lookup = %v", got["lookup"])
	}
	if got["extra"] != true {
		t.Errorf("extra = %v", got["extra"])
	}
	if DeepMerge(nil, nil) == nil {
		t.Error("DeepMerge(nil, nil) should return an empty map")
	}
}
