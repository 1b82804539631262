package main

import (
	"github.com/spf13/cobra"
	"github.com/yukikurage/crm-api/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Args:  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		return database.Migrate()
	},
}
