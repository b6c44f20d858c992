// Package config handles loading tasktracker.toml configuration files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/amonks/tasktracker/internal/paths"
)

// ProjectFileName is the name of the per-directory config file.
const ProjectFileName = "tasktracker.toml"

// StoreEnvVar overrides the configured store path.
const StoreEnvVar = "TT_STORE"

// Config represents the tasktracker.toml configuration file.
type Config struct {
	Store   Store   `toml:"store"`
	History History `toml:"history"`
	Server  Server  `toml:"server"`
}

// Store contains file store configuration.
type Store struct {
	// Path is the task file. Relative paths resolve against the directory
	// holding the config file that set them.
	Path string `toml:"path"`
}

// History contains history configuration.
type History struct {
	// Limit caps the number of history entries. Zero means unlimited.
	Limit int `toml:"limit"`
}

// Server contains HTTP server configuration.
type Server struct {
	Port int `toml:"port"`
}

// Load loads configuration from dir and the global config file, then applies
// environment overrides. Returns an empty config if no config files exist.
func Load(dir string) (*Config, error) {
	globalDir, err := paths.DefaultConfigDir()
	if err != nil {
		return nil, err
	}

	globalCfg, globalMeta, err := loadConfigFile(filepath.Join(globalDir, "config.toml"))
	if err != nil {
		return nil, err
	}
	globalCfg.Store.Path = resolvePath(globalDir, globalCfg.Store.Path)

	projectCfg, projectMeta, err := loadConfigFile(filepath.Join(dir, ProjectFileName))
	if err != nil {
		return nil, err
	}
	projectCfg.Store.Path = resolvePath(dir, projectCfg.Store.Path)

	merged := mergeConfigs(globalCfg, projectCfg, globalMeta, projectMeta)
	if env := strings.TrimSpace(os.Getenv(StoreEnvVar)); env != "" {
		merged.Store.Path = env
	}
	if merged.History.Limit < 0 {
		return nil, fmt.Errorf("history limit must not be negative, got %d", merged.History.Limit)
	}
	return merged, nil
}

// StorePath returns the configured store path, falling back to the default
// location.
func (c *Config) StorePath() (string, error) {
	return paths.ResolveWithDefault(c.Store.Path, paths.DefaultStorePath)
}

func loadConfigFile(path string) (*Config, toml.MetaData, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, toml.MetaData{}, nil
	}
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cfg Config
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, toml.MetaData{}, fmt.Errorf("parse config file %s: unknown key %q", path, undecoded[0].String())
	}

	return &cfg, meta, nil
}

func resolvePath(base, value string) string {
	value = strings.TrimSpace(value)
	if value == "" || filepath.IsAbs(value) {
		return value
	}
	return filepath.Join(base, value)
}

func mergeConfigs(globalCfg, projectCfg *Config, globalMeta, projectMeta toml.MetaData) *Config {
	merged := *globalCfg
	if projectMeta.IsDefined("store", "path") {
		merged.Store.Path = projectCfg.Store.Path
	}
	if projectMeta.IsDefined("history", "limit") {
		merged.History.Limit = projectCfg.History.Limit
	}
	if projectMeta.IsDefined("server", "port") {
		merged.Server.Port = projectCfg.Server.Port
	}
	return &merged
}
