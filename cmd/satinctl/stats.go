package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ilbumi/satin/internal/project"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show project, task and annotation counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := project.GatherStats(cmd.Context(), db)
		if err != nil {
			return err
		}
		fmt.Printf("Projects:    %d\n", stats.Projects)
		fmt.Printf("Images:      %d\n", stats.Images)
		fmt.Printf("Tasks:       %d (%d done)\n", stats.Tasks, stats.DoneTasks)
		fmt.Printf("Annotations: %d\n", stats.Annotations)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
