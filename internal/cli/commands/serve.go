package commands

import (
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/leapstack-labs/leapsqlite/internal/server"
	"github.com/leapstack-labs/leapsqlite/pkg/core"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the database to remote clients",
		Long: `Serve the configured embedded database over the remote store protocol.

Each client session gets its own connection. When server.token is set
(or LEAPSQLITE_SERVER__TOKEN), clients must send it as a bearer token.
Clients select the database by name; the name defaults to the database
file name without its extension.`,
		Example: `  leapsqlite serve --database app.db
  leapsqlite serve --database app.db --addr 0.0.0.0:7433 --name app`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContextWithoutAdapter(cmd)
			cfg := cmdCtx.Cfg

			if cfg.Connection.IsRemote() {
				return errors.New("serve needs an embedded database; the configured driver is remote")
			}
			if cfg.Connection.Database == "" {
				return errors.New("no database configured\nHint: set connection.database in leapsqlite.yaml or pass --database")
			}
			if name == "" {
				name = databaseName(cfg.Connection.Database)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(server.Config{
				Addr:     cfg.Server.Addr,
				Database: cfg.Connection.Database,
				Name:     name,
				Mode:     core.OpenMode(cfg.Connection.Mode),
				Params:   cfg.Connection.Params,
				Token:    cfg.Server.Token,
				MaxConns: cfg.Server.MaxConns,
				Logger:   cmdCtx.Logger,
			})
			cmdCtx.Renderer.Success("Serving " + name + " on " + cfg.Server.Addr)
			return srv.Serve(ctx)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default from server.addr)")
	cmd.Flags().StringVar(&name, "name", "", "Database name clients request")
	cmd.Flags().Int("max-conns", 0, "Maximum concurrent client connections (0 for no limit)")
	return cmd
}

// databaseName derives the client-facing name of a database file.
func databaseName(path string) string {
	if path == ":memory:" {
		return path
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
