// Package export writes completed annotation work out of the
// workspace, as machine-readable JSON or a printable PDF report.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/ilbumi/satin/internal/annotation"
	"github.com/ilbumi/satin/internal/render"
)

// TaskExport is the JSON interchange document for one annotated image.
type TaskExport struct {
	TaskID      string                  `json:"task_id"`
	ImagePath   string                  `json:"image_path"`
	ImageWidth  int                     `json:"image_width"`
	ImageHeight int                     `json:"image_height"`
	ExportedAt  time.Time               `json:"exported_at"`
	Annotations []annotation.Annotation `json:"annotations"`
}

// WriteJSON writes doc to w, indented for diff-friendliness.
func WriteJSON(w io.Writer, doc TaskExport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return nil
}

// ReadJSON parses a document previously written by WriteJSON.
func ReadJSON(r io.Reader) (*TaskExport, error) {
	var doc TaskExport
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode export: %w", err)
	}
	return &doc, nil
}

// WritePDF renders a one-page report to path: the image with its boxes
// burned in, followed by a table of labels and bounds.
func WritePDF(path, title string, img image.Image, list []annotation.Annotation) error {
	if img == nil {
		return fmt.Errorf("nil image")
	}

	annotated := render.RenderAnnotated(img, list, render.DefaultStyle())
	var buf bytes.Buffer
	if err := png.Encode(&buf, annotated); err != nil {
		return fmt.Errorf("failed to encode report image: %w", err)
	}

	p := gofpdf.New("P", "mm", "A4", "")
	p.AddPage()
	p.SetFont("Helvetica", "B", 14)
	p.Cell(0, 8, title)
	p.Ln(12)

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	p.RegisterImageOptionsReader("annotated", opts, &buf)

	// Fit the image to the content width, height following the aspect.
	const contentWidth = 190.0
	b := annotated.Bounds()
	imgH := contentWidth * float64(b.Dy()) / float64(b.Dx())
	p.ImageOptions("annotated", 10, 22, contentWidth, imgH, false, opts, 0, "")
	p.SetY(22 + imgH + 8)

	p.SetFont("Helvetica", "B", 10)
	p.CellFormat(10, 7, "#", "1", 0, "C", false, 0, "")
	p.CellFormat(70, 7, "Label", "1", 0, "L", false, 0, "")
	p.CellFormat(110, 7, "Bounds (x, y, w, h)", "1", 1, "L", false, 0, "")

	p.SetFont("Helvetica", "", 10)
	for i, a := range list {
		label := a.Label.Text
		if label == "" {
			label = "(unlabeled)"
		}
		bounds := fmt.Sprintf("%.3f, %.3f, %.3f, %.3f",
			a.Bounds.X, a.Bounds.Y, a.Bounds.Width, a.Bounds.Height)
		p.CellFormat(10, 6, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		p.CellFormat(70, 6, label, "1", 0, "L", false, 0, "")
		p.CellFormat(110, 6, bounds, "1", 1, "L", false, 0, "")
	}

	if err := p.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}
