package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/johnwards/menuseed/internal/app"
	"github.com/johnwards/menuseed/internal/config"
)

func newMigrateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations and install the menu table definitions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch c.cfg.DBDriver {
			case config.DriverSQLite, config.DriverPostgres:
			default:
				return fmt.Errorf("migrate needs a sqlite or postgres driver, got %q", c.cfg.DBDriver)
			}
			db, err := app.OpenDatabase(cmd.Context(), c.cfg)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			c.log.Info("database migrated", "driver", c.cfg.DBDriver)
			_, _ = fmt.Fprintln(c.out, "ok")
			return nil
		},
	}
}
