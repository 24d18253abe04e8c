package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ilbumi/satin/internal/annotation"
	"github.com/ilbumi/satin/internal/export"
	"github.com/ilbumi/satin/internal/imaging"
	"github.com/ilbumi/satin/internal/project"
	"github.com/ilbumi/satin/internal/service"
)

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export <task-id> <output-file>",
	Short: "Export a task's annotations as JSON or a PDF report",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := cmd.Context()
		task, err := project.NewTaskRepository(db).Get(ctx, args[0])
		if err != nil {
			return err
		}
		if task == nil {
			return fmt.Errorf("task '%s' not found", args[0])
		}
		img, err := project.NewImageRepository(db).Get(ctx, task.ImageID)
		if err != nil {
			return err
		}
		if img == nil {
			return fmt.Errorf("image '%s' not found", task.ImageID)
		}
		list, err := service.NewSQLiteAnnotations(db).Load(ctx, task.ID)
		if err != nil {
			return err
		}

		switch exportFormat {
		case "json":
			doc := export.TaskExport{
				TaskID:      task.ID,
				ImagePath:   img.Path,
				ImageWidth:  img.Width,
				ImageHeight: img.Height,
				ExportedAt:  time.Now().UTC(),
			}
			for _, a := range list {
				doc.Annotations = append(doc.Annotations, *a)
			}
			f, err := os.Create(args[1])
			if err != nil {
				return err
			}
			defer f.Close()
			return export.WriteJSON(f, doc)
		case "pdf":
			source, err := imaging.Load(img.Path)
			if err != nil {
				return err
			}
			flat := make([]annotation.Annotation, 0, len(list))
			for _, a := range list {
				flat = append(flat, *a)
			}
			title := fmt.Sprintf("Annotations - %s", img.Path)
			return export.WritePDF(args[1], title, source.Image, flat)
		default:
			return fmt.Errorf("unknown format '%s' (want json or pdf)", exportFormat)
		}
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Output format: json or pdf")
}
