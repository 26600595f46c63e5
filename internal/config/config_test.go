package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, yaml string) string {
	t.Helper()
	projDir := filepath.Join(dir, ProjectDirName)
	if err := os.MkdirAll(projDir, 0755); err != nil {
		t.Fatalf("mkdir %s: %v", projDir, err)
	}
	path := filepath.Join(projDir, ConfigFileName)
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	root := t.TempDir()
	cfg, err := Load("", root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Workspace.Root != root {
		t.Errorf("Workspace.Root = %q, want %q", cfg.Workspace.Root, root)
	}
	if cfg.Cache.Capacity != 1000 {
		t.Errorf("Cache.Capacity = %d, want 1000", cfg.Cache.Capacity)
	}
	if !cfg.Watch.RespectGitignore {
		t.Error("Watch.RespectGitignore default should be true")
	}
	if len(cfg.Languages) != 5 {
		t.Errorf("Languages = %v, want 5 entries", cfg.Languages)
	}
	if cfg.Server.LogLevel != "info" {
		t.Errorf("Server.LogLevel = %q, want info", cfg.Server.LogLevel)
	}
}

func TestLoadFromDiscoveredFile(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, `
watch:
  exclude:
    - "**/testdata/**"
  respect_gitignore: false
languages:
  - go
  - rust
cache:
  capacity: 42
server:
  log_level: debug
`)

	cfg, err := Load("", root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Watch.Exclude) != 1 || cfg.Watch.Exclude[0] != "**/testdata/**" {
		t.Errorf("Watch.Exclude = %v", cfg.Watch.Exclude)
	}
	if cfg.Watch.RespectGitignore {
		t.Error("Watch.RespectGitignore should be overridden to false")
	}
	if cfg.Cache.Capacity != 42 {
		t.Errorf("Cache.Capacity = %d, want 42", cfg.Cache.Capacity)
	}
	if cfg.Server.LogLevel != "debug" {
		t.Errorf("Server.LogLevel = %q, want debug", cfg.Server.LogLevel)
	}
	want := []string{"go", "rust"}
	if len(cfg.Languages) != len(want) || cfg.Languages[0] != want[0] || cfg.Languages[1] != want[1] {
		t.Errorf("Languages = %v, want %v", cfg.Languages, want)
	}
}

func TestLoadExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "cache:\n  capacity: 7\n")

	root := t.TempDir()
	cfg, err := Load(path, root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Cache.Capacity != 7 {
		t.Errorf("Cache.Capacity = %d, want 7", cfg.Cache.Capacity)
	}
	if cfg.ConfigDir == "" {
		t.Error("ConfigDir should be set when explicit path sits in a ProjectDirName directory")
	}
}

func TestDiscoverProjectDirWalksUp(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(root, ProjectDirName), 0755); err != nil {
		t.Fatalf("mkdir project dir: %v", err)
	}

	got := DiscoverProjectDir(sub)
	want := filepath.Join(root, ProjectDirName)
	if got != want {
		t.Errorf("DiscoverProjectDir = %q, want %q", got, want)
	}
}

func TestDiscoverProjectDirNotFound(t *testing.T) {
	root := t.TempDir()
	if got := DiscoverProjectDir(root); got != "" {
		t.Errorf("DiscoverProjectDir = %q, want empty", got)
	}
}

func TestDefaultRenderYAMLRoundTrips(t *testing.T) {
	root := t.TempDir()
	rendered, err := Default(root).RenderYAML()
	if err != nil {
		t.Fatalf("RenderYAML: %v", err)
	}

	other := t.TempDir()
	writeConfig(t, other, string(rendered))
	cfg, err := Load("", other)
	if err != nil {
		t.Fatalf("Load rendered config: %v", err)
	}
	if cfg.Workspace.Root != root {
		t.Errorf("Workspace.Root = %q, want %q", cfg.Workspace.Root, root)
	}
	if cfg.Cache.Capacity != 1000 {
		t.Errorf("Cache.Capacity = %d, want 1000", cfg.Cache.Capacity)
	}
	if len(cfg.Languages) != 5 {
		t.Errorf("Languages = %v, want 5 entries", cfg.Languages)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"missing root", Config{Cache: CacheConfig{Capacity: 1}}, true},
		{"zero capacity", Config{Workspace: WorkspaceConfig{Root: "/tmp"}, Cache: CacheConfig{Capacity: 0}}, true},
		{"negative capacity", Config{Workspace: WorkspaceConfig{Root: "/tmp"}, Cache: CacheConfig{Capacity: -1}}, true},
		{"valid", Config{Workspace: WorkspaceConfig{Root: "/tmp"}, Cache: CacheConfig{Capacity: 1000}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadEnvFileSetsUnsetVariable(t *testing.T) {
	root := t.TempDir()
	projDir := filepath.Join(root, ProjectDirName)
	if err := os.MkdirAll(projDir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeConfig(t, root, "cache:\n  capacity: 5\n")

	envPath := filepath.Join(projDir, ".env")
	if err := os.WriteFile(envPath, []byte("COGRAPH_CACHE_CAPACITY=99\n# a comment\n\nMALFORMED\n"), 0644); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	os.Unsetenv("COGRAPH_CACHE_CAPACITY")

	cfg, err := Load("", root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Cache.Capacity != 99 {
		t.Errorf("Cache.Capacity = %d, want 99 (from .env)", cfg.Cache.Capacity)
	}
}
