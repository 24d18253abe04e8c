package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ilbumi/satin/internal/project"
	"github.com/ilbumi/satin/internal/service"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <project> <dir>...",
	Short: "Register image files as annotation tasks",
	Long: `Walk one or more directories and create an image record and a pending
task for every supported image file. Files already known by checksum are
skipped, so re-running an ingest is safe. The project is created when it
does not exist yet.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if err := cobra.MinimumNArgs(2)(cmd, args); err != nil {
			return err
		}
		for _, dir := range args[1:] {
			info, err := os.Stat(dir)
			if err != nil {
				return err
			}
			if !info.IsDir() {
				return fmt.Errorf("'%s' is not a directory", dir)
			}
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := cmd.Context()
		projects := project.NewProjectRepository(db)
		proj, err := projects.GetByName(ctx, args[0])
		if err != nil {
			return err
		}
		if proj == nil {
			proj, err = projects.Create(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Created project '%s'\n", proj.Name)
		}

		ingestor := service.NewIngestor(
			project.NewImageRepository(db),
			project.NewTaskRepository(db),
		)
		total := service.IngestResult{}
		for _, dir := range args[1:] {
			result, err := ingestor.IngestDir(ctx, proj.ID, dir)
			if result != nil {
				total.Added += result.Added
				total.Skipped += result.Skipped
				total.Failed += result.Failed
			}
			if err != nil {
				return err
			}
		}
		fmt.Printf("Added %d, skipped %d, failed %d\n", total.Added, total.Skipped, total.Failed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
