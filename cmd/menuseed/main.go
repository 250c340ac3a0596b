package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/johnwards/menuseed/internal/config"
	"github.com/johnwards/menuseed/internal/logging"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
}

// cli carries the loaded configuration and output streams to subcommands.
type cli struct {
	cfg    config.Config
	log    *slog.Logger
	out    io.Writer
	errOut io.Writer

	logLevel string
	dbDriver string
	dbDSN    string
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	c := &cli{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "menuseed",
		Short: "Reseed and serve the restaurant menu tables",
		Long: `menuseed wipes and repopulates the menu dataset (categories,
customizations, menu items and their links) in a row store, serves that
store over HTTP and queries the resulting menu.

Configuration comes from MENUSEED_* environment variables, optionally
loaded from a .env file in the working directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			c.cfg = config.Load()
			if c.logLevel != "" {
				c.cfg.LogLevel = c.logLevel
			}
			if c.dbDriver != "" {
				c.cfg.DBDriver = c.dbDriver
			}
			if c.dbDSN != "" {
				c.cfg.DBDSN = c.dbDSN
			}
			c.log = logging.New(c.cfg.LogLevel, c.cfg.LogFormat, c.errOut)
			slog.SetDefault(c.log)
			return nil
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level: debug|info|warn|error (overrides MENUSEED_LOG_LEVEL)")
	root.PersistentFlags().StringVar(&c.dbDriver, "db-driver", "", "row store: sqlite|postgres|memory|remote (overrides MENUSEED_DB_DRIVER)")
	root.PersistentFlags().StringVar(&c.dbDSN, "dsn", "", "database DSN (overrides MENUSEED_DB_DSN)")

	root.AddCommand(
		newServeCmd(c),
		newReseedCmd(c),
		newMigrateCmd(c),
		newMenuCmd(c),
		newCategoriesCmd(c),
	)
	return root
}
