package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ilbumi/satin/internal/project"
)

var tasksStatus string

var tasksCmd = &cobra.Command{
	Use:   "tasks <project>",
	Short: "List a project's annotation tasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := cmd.Context()
		proj, err := project.NewProjectRepository(db).GetByName(ctx, args[0])
		if err != nil {
			return err
		}
		if proj == nil {
			return fmt.Errorf("project '%s' not found", args[0])
		}

		tasks := project.NewTaskRepository(db)
		var list []*project.Task
		if tasksStatus == "" {
			list, err = tasks.ListByProject(ctx, proj.ID)
		} else {
			list, err = tasks.ListByStatus(ctx, proj.ID, project.TaskStatus(tasksStatus))
		}
		if err != nil {
			return err
		}

		images := project.NewImageRepository(db)
		for _, task := range list {
			path := task.ImageID
			if img, err := images.Get(ctx, task.ImageID); err == nil && img != nil {
				path = img.Path
			}
			fmt.Printf("%s\t%-11s\t%s\n", task.ID, task.Status, path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tasksCmd)
	tasksCmd.Flags().StringVarP(&tasksStatus, "status", "s", "", "Filter by status: pending, in_progress or done")
}
