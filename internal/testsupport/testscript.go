package testsupport

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

// buildTT compiles ./cmd/tt into a temp dir the first time it is called.
var buildTT = sync.OnceValues(func() (string, error) {
	moduleRoot, err := findModuleRoot()
	if err != nil {
		return "", err
	}
	binDir, err := os.MkdirTemp("", "tt-bin-")
	if err != nil {
		return "", fmt.Errorf("create bin dir: %w", err)
	}

	path := filepath.Join(binDir, "tt")
	cmd := exec.Command("go", "build", "-o", path, "./cmd/tt")
	cmd.Dir = moduleRoot
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("build tt: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return path, nil
})

// BuildTT returns the path of a tt binary built from this module.
func BuildTT(t testing.TB) string {
	t.Helper()
	path, err := buildTT()
	if err != nil {
		t.Fatalf("%v", err)
	}
	return path
}

// SetupScriptEnv configures common environment variables for testscript.
func SetupScriptEnv(t testing.TB, env *testscript.Env) error {
	t.Helper()

	env.Setenv("TT", BuildTT(t))

	home := filepath.Join(env.WorkDir, "home")
	if err := EnsureHomeDirs(home); err != nil {
		return err
	}
	env.Setenv("HOME", home)
	env.Setenv("NO_COLOR", "1")
	env.Setenv("TZ", "UTC")
	env.Setenv("TT_STORE", "")
	return nil
}

// CmdEnvSet stores the trimmed contents of a file in an env var.
func CmdEnvSet(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("envset does not support negation")
	}
	if len(args) != 2 {
		ts.Fatalf("usage: envset VAR FILE")
	}

	value := strings.TrimSpace(ts.ReadFile(args[1]))
	ts.Setenv(args[0], value)
}

var createdPattern = regexp.MustCompile(`(?m)^Created (?:task|epic|subtask) (\d+)`)

// CmdCreatedID finds the id printed by a create command and stores it in an
// env var.
func CmdCreatedID(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("createdid does not support negation")
	}
	if len(args) != 2 {
		ts.Fatalf("usage: createdid FILE VAR")
	}

	match := createdPattern.FindStringSubmatch(ts.ReadFile(args[0]))
	if match == nil {
		ts.Fatalf("no created id in %s", args[0])
	}
	ts.Setenv(args[1], match[1])
}

func findModuleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find module root (go.mod)")
		}
		dir = parent
	}
}
