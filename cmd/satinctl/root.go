// satinctl is the headless companion to the annotation GUI: ingest,
// export, migrations and project stats without opening a window.
package main

import (
	"database/sql"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/ilbumi/satin/internal/project"
)

var rootCmd = &cobra.Command{
	Use:   "satinctl",
	Short: "Manage annotation projects from the command line",
	Long:  `Ingest images, export annotations and inspect projects without starting the editor.`,
}

var databasePath string

func init() {
	rootCmd.PersistentFlags().StringVarP(&databasePath, "database", "d", "satin.db", "SQLite database path")
}

// openDB opens the configured database and runs pending migrations.
func openDB() (*sql.DB, error) {
	return project.Open(databasePath)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}
