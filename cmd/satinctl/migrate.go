package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long:  `Open the database and apply any pending schema migrations. The editor and the other subcommands do this on startup too; this command only exists to prepare a database ahead of time.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()
		fmt.Printf("Database '%s' is up to date\n", databasePath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
