package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the Postgres and ClickHouse schema migrations",
		Long:  "Applies the embedded migrations to every backend with a configured DSN.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			usePostgres := a.cfg.Postgres.DSN != ""
			useClickhouse := a.cfg.ClickHouse.DSN != ""
			if !usePostgres && !useClickhouse {
				return errors.New("no postgres or clickhouse DSN configured")
			}

			st, err := openStores(cmd.Context(), a, usePostgres, useClickhouse)
			if err != nil {
				return err
			}
			st.close()

			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
			return nil
		},
	}
}
