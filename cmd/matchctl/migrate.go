package main

import (
	"fmt"

	"github.com/spf13/cobra"

	pgrepo "github.com/Abinayanafaiq/BotDating/internal/repo/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending Postgres schema migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := pgrepo.Migrate(cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		fmt.Printf("schema at version %d\n", version)
		return nil
	},
}
