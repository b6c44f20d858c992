// Package main implements the tt CLI tool.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/amonks/tasktracker/filestore"
	"github.com/amonks/tasktracker/internal/config"
	"github.com/amonks/tasktracker/internal/paths"
	"github.com/amonks/tasktracker/server"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr interface{ ExitCode() int }
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "tt",
	Short:         "Track tasks, epics and subtasks",
	SilenceUsage:  true,
	SilenceErrors: false,
}

var (
	storePath  string
	remoteAddr string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "Task file (overrides config and $"+config.StoreEnvVar+")")
	rootCmd.PersistentFlags().StringVar(&remoteAddr, "remote", "", "Use the tt server at this address instead of a local file")
}

// loadConfig loads configuration for the current directory.
func loadConfig() (*config.Config, error) {
	cwd, err := paths.WorkingDir()
	if err != nil {
		return nil, err
	}
	return config.Load(cwd)
}

// openBackend returns a client for --remote, or the local task file.
func openBackend() (server.Backend, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if remoteAddr != "" {
		if storePath != "" {
			return nil, fmt.Errorf("--store and --remote cannot be combined")
		}
		addr, err := server.ResolveAddr(cfg.Server.Port, remoteAddr)
		if err != nil {
			return nil, err
		}
		return server.NewClient(addr, server.ClientOptions{}), nil
	}
	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	return server.NewLocal(store), nil
}

// storeLock is held until the process exits. Keeping the reference stops
// the lock file from being closed by a finalizer.
var storeLock *filestore.FileLock

func openStore(cfg *config.Config) (*filestore.Store, error) {
	path, err := paths.ResolveWithDefault(storePath, cfg.StorePath)
	if err != nil {
		return nil, err
	}
	lock, err := filestore.Lock(path)
	if errors.Is(err, filestore.ErrLocked) {
		return nil, fmt.Errorf("%w (use --remote to reach a running server)", err)
	}
	if err != nil {
		return nil, err
	}
	storeLock = lock
	return filestore.Open(path, filestore.OpenOptions{HistoryLimit: cfg.History.Limit})
}
