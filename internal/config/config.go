// Package config handles configuration loading for the code graph server:
// the workspace root, watch excludes, enabled languages, and cache sizing,
// loaded from a YAML file plus environment overrides via viper.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	yamlv3 "go.yaml.in/yaml/v3"
)

const (
	// ProjectDirName is the per-workspace configuration directory name.
	ProjectDirName = ".codegraphls"
	// ConfigFileName is the config filename inside ProjectDirName.
	ConfigFileName = "config.yaml"
)

// Config holds all configuration for the code graph server.
type Config struct {
	// Workspace contains the root to index and watch.
	Workspace WorkspaceConfig `mapstructure:"workspace" yaml:"workspace"`
	// Watch contains file watching configuration.
	Watch WatchConfig `mapstructure:"watch" yaml:"watch"`
	// Languages lists the languages to parse; empty means all registered.
	Languages []string `mapstructure:"languages" yaml:"languages"`
	// Cache contains query cache sizing.
	Cache CacheConfig `mapstructure:"cache" yaml:"cache"`
	// Server contains the façade's own settings.
	Server ServerConfig `mapstructure:"server" yaml:"server"`
	// ConfigDir is the resolved .codegraphls directory path (not persisted).
	ConfigDir string `mapstructure:"-" yaml:"-"`
}

// WorkspaceConfig describes the workspace to index.
type WorkspaceConfig struct {
	// Root is the filesystem path to the workspace root.
	Root string `mapstructure:"root" yaml:"root"`
}

// WatchConfig holds file watching configuration.
type WatchConfig struct {
	// Exclude lists glob patterns to exclude from watching and indexing.
	Exclude []string `mapstructure:"exclude" yaml:"exclude"`
	// RespectGitignore enables honoring .gitignore patterns, as the watcher's
	// GitIgnoreMatcher does.
	RespectGitignore bool `mapstructure:"respect_gitignore" yaml:"respect_gitignore"`
}

// CacheConfig holds query cache sizing.
type CacheConfig struct {
	// Capacity is N in the query cache's LRU sub-caches.
	Capacity int `mapstructure:"capacity" yaml:"capacity"`
}

// ServerConfig holds the façade's own settings.
type ServerConfig struct {
	// LogLevel controls stderr log verbosity ("debug", "info", "warn", "error").
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// DiscoverProjectDir walks up from startDir looking for a .codegraphls/
// directory. Returns the full path if found, or empty string if not.
func DiscoverProjectDir(startDir string) string {
	dir := startDir
	for {
		candidate := filepath.Join(dir, ProjectDirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// Load loads configuration from a config file (if found), environment
// variables (COGRAPH_* prefix), and defaults. Search order:
//  1. explicit path, if non-empty
//  2. walk up from workspaceRoot for .codegraphls/config.yaml
func Load(explicitPath, workspaceRoot string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("COGRAPH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var configDir string

	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
		if filepath.Base(filepath.Dir(explicitPath)) == ProjectDirName {
			configDir = filepath.Dir(explicitPath)
		}
	} else if projDir := DiscoverProjectDir(workspaceRoot); projDir != "" {
		configDir = projDir
		v.SetConfigFile(filepath.Join(projDir, ConfigFileName))
	}

	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	if configDir != "" {
		loadEnvFile(filepath.Join(configDir, ".env"))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	cfg.ConfigDir = configDir
	if cfg.Workspace.Root == "" {
		cfg.Workspace.Root = workspaceRoot
	}

	return &cfg, nil
}

// Default returns the configuration Load would produce with no config file
// and no environment overrides, rooted at workspaceRoot. `codegraphls init`
// marshals this as the generated config.yaml.
func Default(workspaceRoot string) *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	cfg.Workspace.Root = workspaceRoot
	return &cfg
}

// RenderYAML serializes c in the config.yaml file shape.
func (c *Config) RenderYAML() ([]byte, error) {
	return yamlv3.Marshal(c)
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Workspace.Root == "" {
		return fmt.Errorf("workspace root is required")
	}
	if c.Cache.Capacity <= 0 {
		return fmt.Errorf("cache.capacity must be positive, got %d", c.Cache.Capacity)
	}
	return nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("watch.exclude", []string{
		"**/node_modules/**",
		"**/.git/**",
		"**/vendor/**",
		"**/__pycache__/**",
		"**/dist/**",
		"**/build/**",
	})
	v.SetDefault("watch.respect_gitignore", true)

	v.SetDefault("languages", []string{"go", "python", "typescript", "javascript", "rust"})

	v.SetDefault("cache.capacity", 1000)

	v.SetDefault("server.log_level", "info")
}

// loadEnvFile reads a .env file and sets environment variables from it.
// Lines starting with # and blank lines are skipped. Existing environment
// variables are never overridden.
func loadEnvFile(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
