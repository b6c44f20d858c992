package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/amonks/tasktracker/internal/config"
	"github.com/amonks/tasktracker/internal/testsupport"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
}

func TestLoad_NotFound(t *testing.T) {
	home := testsupport.SetupTestHome(t)
	t.Setenv(config.StoreEnvVar, "")

	cfg, err := config.Load(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.History.Limit != 0 || cfg.Server.Port != 0 {
		t.Errorf("expected zero config, got %+v", cfg)
	}

	path, err := cfg.StorePath()
	if err != nil {
		t.Fatalf("store path: %v", err)
	}
	if want := filepath.Join(home, ".local", "share", "tasktracker", "tasks.csv"); path != want {
		t.Errorf("StorePath = %q, expected %q", path, want)
	}
}

func TestLoad_Full(t *testing.T) {
	testsupport.SetupTestHome(t)
	t.Setenv(config.StoreEnvVar, "")
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, config.ProjectFileName), `
[store]
path = "data/tasks.csv"

[history]
limit = 10

[server]
port = 9099
`)

	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if want := filepath.Join(dir, "data", "tasks.csv"); cfg.Store.Path != want {
		t.Errorf("Store.Path = %q, expected %q", cfg.Store.Path, want)
	}
	if cfg.History.Limit != 10 {
		t.Errorf("History.Limit = %d, expected 10", cfg.History.Limit)
	}
	if cfg.Server.Port != 9099 {
		t.Errorf("Server.Port = %d, expected 9099", cfg.Server.Port)
	}
}

func TestLoad_ProjectOverridesGlobal(t *testing.T) {
	home := testsupport.SetupTestHome(t)
	t.Setenv(config.StoreEnvVar, "")
	dir := t.TempDir()

	writeFile(t, filepath.Join(home, ".config", "tasktracker", "config.toml"), `
[store]
path = "/global/tasks.csv"

[history]
limit = 5

[server]
port = 9000
`)
	writeFile(t, filepath.Join(dir, config.ProjectFileName), `
[history]
limit = 0
`)

	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Store.Path != "/global/tasks.csv" {
		t.Errorf("Store.Path = %q, expected global value", cfg.Store.Path)
	}
	if cfg.History.Limit != 0 {
		t.Errorf("History.Limit = %d, expected project override 0", cfg.History.Limit)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, expected 9000", cfg.Server.Port)
	}
}

func TestLoad_EnvOverridesStorePath(t *testing.T) {
	testsupport.SetupTestHome(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, config.ProjectFileName), "[store]\npath = \"project.csv\"\n")
	t.Setenv(config.StoreEnvVar, "/env/tasks.csv")

	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Store.Path != "/env/tasks.csv" {
		t.Errorf("Store.Path = %q, expected env override", cfg.Store.Path)
	}
}

func TestLoad_Errors(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{name: "invalid toml", content: "[store\n", want: "parse config file"},
		{name: "unknown key", content: "[store]\nfile = \"x\"\n", want: "unknown key"},
		{name: "negative limit", content: "[history]\nlimit = -1\n", want: "must not be negative"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			testsupport.SetupTestHome(t)
			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, config.ProjectFileName), tc.content)

			_, err := config.Load(dir)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}
