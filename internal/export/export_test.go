package export

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ilbumi/satin/internal/annotation"
	"github.com/ilbumi/satin/pkg/geometry"
)

func sampleDoc() TaskExport {
	return TaskExport{
		TaskID:      "task-1",
		ImagePath:   "/data/one.png",
		ImageWidth:  800,
		ImageHeight: 600,
		ExportedAt:  time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Annotations: []annotation.Annotation{
			{
				ID:     "ann-1",
				Kind:   annotation.KindBBox,
				Bounds: geometry.NewRect(0.1, 0.2, 0.3, 0.4),
				Label:  annotation.Label{Text: "capacitor", Tags: []string{"smd"}},
			},
		},
	}
}

func TestJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleDoc()); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	if !strings.Contains(buf.String(), `"capacitor"`) {
		t.Error("label text missing from JSON output")
	}

	doc, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if doc.TaskID != "task-1" || len(doc.Annotations) != 1 {
		t.Fatalf("round-trip lost data: %+v", doc)
	}
	got := doc.Annotations[0]
	if got.Bounds != geometry.NewRect(0.1, 0.2, 0.3, 0.4) {
		t.Errorf("Bounds = %+v", got.Bounds)
	}
	if got.Label.Text != "capacitor" || len(got.Label.Tags) != 1 {
		t.Errorf("Label = %+v", got.Label)
	}
}

func TestReadJSONRejectsGarbage(t *testing.T) {
	if _, err := ReadJSON(strings.NewReader("{broken")); err == nil {
		t.Error("expected a decode error")
	}
}

func TestWritePDF(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			img.Set(x, y, color.RGBA{R: 90, G: 90, B: 90, A: 255})
		}
	}

	path := filepath.Join(t.TempDir(), "report.pdf")
	err := WritePDF(path, "boards / one.png", img, sampleDoc().Annotations)
	if err != nil {
		t.Fatalf("WritePDF: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("output is not a PDF")
	}
	if len(data) < 1000 {
		t.Errorf("report suspiciously small: %d bytes", len(data))
	}
}

func TestWritePDFNilImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.pdf")
	if err := WritePDF(path, "x", nil, nil); err == nil {
		t.Error("expected an error for a nil image")
	}
}
