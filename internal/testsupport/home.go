package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// homeSubdirs are the directories tt reads and writes under $HOME.
var homeSubdirs = [][]string{
	{".config", "tasktracker"},
	{".local", "share", "tasktracker"},
}

// EnsureHomeDirs creates the config and data directories under home.
func EnsureHomeDirs(home string) error {
	for _, parts := range homeSubdirs {
		dir := filepath.Join(append([]string{home}, parts...)...)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// SetupTestHome points HOME at a fresh directory and clears TT_STORE so the
// default store location is used.
func SetupTestHome(t testing.TB) string {
	t.Helper()

	home := t.TempDir()
	if err := EnsureHomeDirs(home); err != nil {
		t.Fatalf("setup home dir: %v", err)
	}
	t.Setenv("HOME", home)
	t.Setenv("TT_STORE", "")
	return home
}
