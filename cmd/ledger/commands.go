package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/nkiryanov/ledger/internal/db"
)

func newRootCommand(c *Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "ledger",
		Short:         "Ledger service: accounts, deposits, withdrawals and balances",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	c.BindFlags(root.PersistentFlags())

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run HTTP server (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), c)
		},
	}

	var down bool
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if c.DatabaseDSN == "" {
				return errors.New("database connection string is required to migrate")
			}
			if down {
				return db.MigrateDown(c.DatabaseDSN)
			}
			return db.Migrate(c.DatabaseDSN)
		},
	}
	migrateCmd.Flags().BoolVar(&down, "down", false, "Revert all migrations")

	root.AddCommand(serveCmd, migrateCmd)
	root.Args = cobra.NoArgs
	root.RunE = serveCmd.RunE

	return root
}

func serve(ctx context.Context, c *Config) error {
	app, err := NewServerApp(ctx, c)
	if err != nil {
		return fmt.Errorf("can't initialize app, sorry. Err: %w", err)
	}
	defer app.Close()

	err = app.Run(ctx)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
