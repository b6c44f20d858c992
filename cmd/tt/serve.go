package main

import (
	"fmt"
	"log"
	"os"

	"github.com/amonks/tasktracker/server"
	"github.com/amonks/tasktracker/web"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the task file over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "port", "", "Port or host:port to listen on")
	setFlagAliases(serveCmd.Flags(), map[string]string{"addr": "port"})
}

func runServe(cmd *cobra.Command, args []string) error {
	if remoteAddr != "" {
		return fmt.Errorf("serve cannot be combined with --remote")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	addr, err := server.ResolveAddr(cfg.Server.Port, serveAddr)
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer storeLock.Unlock()

	backend := server.NewLocal(store)
	srv, err := server.New(server.Options{
		Backend: backend,
		Logger:  log.New(os.Stderr, "tt: ", log.LstdFlags),
		Web:     web.NewHandler(web.Options{Backend: backend}),
	})
	if err != nil {
		return err
	}
	fmt.Printf("Serving %s on %s (board at /web/)\n", store.Path(), addr)
	return srv.Serve(addr)
}
