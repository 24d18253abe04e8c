// Package editor provides the annotation editing window: the canvas,
// the label panel, and the save/load plumbing around one task.
package editor

import (
	"context"
	"fmt"
	"log"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ilbumi/satin/internal/annotation"
	"github.com/ilbumi/satin/internal/config"
	"github.com/ilbumi/satin/internal/export"
	"github.com/ilbumi/satin/internal/imaging"
	"github.com/ilbumi/satin/internal/ocr"
	"github.com/ilbumi/satin/internal/project"
	"github.com/ilbumi/satin/internal/render"
	"github.com/ilbumi/satin/internal/service"
	"github.com/ilbumi/satin/internal/suggest"
	"github.com/ilbumi/satin/internal/tool"
)

// Editor is the annotation window for a single task at a time.
type Editor struct {
	fyne.Window
	app fyne.App
	cfg *config.Config

	store  *annotation.Store
	tool   *tool.Tool
	canvas *AnnotationCanvas

	annotations service.Annotations
	tasks       project.TaskRepository
	images      project.ImageRepository
	ocrEngine   *ocr.Engine

	currentTask  *project.Task
	currentImage *project.Image
	source       *imaging.Source

	labelEntry *widget.Entry
	tagsEntry  *widget.Entry
	annList    *widget.List
	statusBar  *widget.Label
}

// Deps carries the storage the editor works against.
type Deps struct {
	Annotations service.Annotations
	Tasks       project.TaskRepository
	Images      project.ImageRepository
}

// New builds the editor window. The OCR engine is optional; label
// prefill is simply disabled when Tesseract is unavailable.
func New(fyneApp fyne.App, cfg *config.Config, deps Deps) *Editor {
	store := annotation.NewStore()
	toolCfg := tool.DefaultConfig()
	toolCfg.MinDragPixels = cfg.Editor.MinDragPixels
	toolCfg.HandleHitRadius = cfg.Editor.HandleHitRadius
	toolCfg.ZoomStep = cfg.Editor.ZoomStep
	tl := tool.New(store, toolCfg)

	e := &Editor{
		Window:      fyneApp.NewWindow("Satin"),
		app:         fyneApp,
		cfg:         cfg,
		store:       store,
		tool:        tl,
		canvas:      NewAnnotationCanvas(store, tl),
		annotations: deps.Annotations,
		tasks:       deps.Tasks,
		images:      deps.Images,
	}

	if cfg.OCR.Enabled {
		engine, err := ocr.NewEngine()
		if err != nil {
			log.Printf("editor: OCR unavailable: %v", err)
		} else {
			engine.SetWhitelist(cfg.OCR.Whitelist)
			e.ocrEngine = engine
		}
	}

	e.setupUI()
	e.setupEventHandlers()
	e.SetCloseIntercept(e.confirmClose)
	e.Resize(fyne.NewSize(1200, 800))
	return e
}

func (e *Editor) setupUI() {
	e.labelEntry = widget.NewEntry()
	e.labelEntry.SetPlaceHolder("Label")
	e.labelEntry.OnChanged = e.onLabelEdited

	e.tagsEntry = widget.NewEntry()
	e.tagsEntry.SetPlaceHolder("Tags (comma separated)")
	e.tagsEntry.OnChanged = e.onTagsEdited

	e.annList = widget.NewList(
		func() int { return len(e.store.Annotations()) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, obj fyne.CanvasObject) {
			list := e.store.Annotations()
			if i >= len(list) {
				return
			}
			text := list[i].Label.Text
			if text == "" {
				text = "(unlabeled)"
			}
			obj.(*widget.Label).SetText(fmt.Sprintf("%d. %s", i+1, text))
		},
	)
	e.annList.OnSelected = func(i widget.ListItemID) {
		list := e.store.Annotations()
		if i < len(list) {
			e.store.SelectAnnotation(list[i].ID)
		}
	}

	e.statusBar = widget.NewLabel("No task loaded")

	side := container.NewBorder(
		container.NewVBox(
			widget.NewLabel("Selection"),
			e.labelEntry,
			e.tagsEntry,
			e.presetButtons(),
			widget.NewSeparator(),
		),
		nil, nil, nil,
		e.annList,
	)

	canvasArea := container.NewBorder(
		e.createToolbar(), // top
		nil, nil, nil,
		e.canvas,
	)

	split := container.NewHSplit(side, canvasArea)
	split.SetOffset(0.22)

	e.SetContent(container.NewBorder(
		nil,
		container.NewPadded(e.statusBar), // bottom
		nil, nil,
		split,
	))
}

func (e *Editor) createToolbar() fyne.CanvasObject {
	selectBtn := widget.NewButton("Select", func() {
		e.store.SetActiveTool(annotation.ToolSelect)
	})
	boxBtn := widget.NewButton("Box", func() {
		e.store.SetActiveTool(annotation.ToolBBox)
	})
	saveBtn := widget.NewButton("Save", e.onSave)
	suggestBtn := widget.NewButton("Suggest", e.onSuggest)
	exportBtn := widget.NewButton("Export PDF", e.onExportPDF)
	doneBtn := widget.NewButton("Mark Done", e.onMarkDone)

	boxesHidden := false
	hideBtn := widget.NewButton("Hide Boxes", nil)
	hideBtn.OnTapped = func() {
		boxesHidden = !boxesHidden
		if boxesHidden {
			e.canvas.SetScene(render.NewImageRenderer(render.DefaultStyle()))
			hideBtn.SetText("Show Boxes")
		} else {
			e.canvas.SetScene(render.New(render.DefaultStyle()))
			hideBtn.SetText("Hide Boxes")
		}
	}

	items := []fyne.CanvasObject{selectBtn, boxBtn, hideBtn, widget.NewSeparator(), saveBtn, suggestBtn, exportBtn, doneBtn}
	if e.ocrEngine != nil {
		items = append(items, widget.NewButton("Read Label", e.onReadLabel))
	}
	return container.NewHBox(items...)
}

func (e *Editor) presetButtons() fyne.CanvasObject {
	if len(e.cfg.Labels) == 0 {
		return container.NewVBox()
	}
	box := container.NewVBox(widget.NewLabel("Presets"))
	for _, preset := range e.cfg.Labels {
		p := preset
		box.Add(widget.NewButton(p.Text, func() {
			e.applyPreset(p)
		}))
	}
	return box
}

func (e *Editor) setupEventHandlers() {
	e.store.On(annotation.EventSelectionChanged, func(interface{}) {
		e.refreshSelectionPanel()
	})
	e.store.On(annotation.EventAnnotationsChanged, func(interface{}) {
		e.annList.Refresh()
		e.refreshStatus()
	})
	e.store.On(annotation.EventDirtyChanged, func(interface{}) {
		e.refreshStatus()
	})
	e.store.On(annotation.EventToolChanged, func(interface{}) {
		e.refreshStatus()
	})
}

// OpenTask loads a task's image and stored annotations into the editor.
func (e *Editor) OpenTask(ctx context.Context, taskID string) error {
	task, err := e.tasks.Get(ctx, taskID)
	if err != nil {
		return err
	}
	if task == nil {
		return fmt.Errorf("task %s not found", taskID)
	}
	img, err := e.images.Get(ctx, task.ImageID)
	if err != nil {
		return err
	}
	if img == nil {
		return fmt.Errorf("image %s not found", task.ImageID)
	}

	source, err := imaging.Load(img.Path)
	if err != nil {
		return fmt.Errorf("failed to load task image: %w", err)
	}

	list, err := e.annotations.Load(ctx, task.ID)
	if err != nil {
		return err
	}

	e.currentTask = task
	e.currentImage = img
	e.source = source

	e.store.Initialize(task.ID, img.ID, float64(source.Width()), float64(source.Height()))
	e.store.LoadAnnotations(list)
	e.canvas.SetBackground(source.Image)

	if task.Status == project.TaskPending {
		if err := e.tasks.SetStatus(ctx, task.ID, project.TaskInProgress); err != nil {
			log.Printf("editor: failed to mark task in progress: %v", err)
		}
	}

	e.SetTitle(fmt.Sprintf("Satin - %s", img.Path))
	e.refreshStatus()
	return nil
}

func (e *Editor) onSave() {
	if e.currentTask == nil {
		return
	}
	ctx := context.Background()
	err := e.annotations.Save(ctx, e.currentTask.ID, e.currentImage.ID, e.store.Snapshot())
	if err != nil {
		dialog.ShowError(fmt.Errorf("save failed: %w", err), e.Window)
		return
	}
	e.store.MarkSaved()
	e.refreshStatus()
}

func (e *Editor) onMarkDone() {
	if e.currentTask == nil {
		return
	}
	if e.store.HasUnsavedChanges() {
		e.onSave()
		if e.store.HasUnsavedChanges() {
			return // save failed, error already shown
		}
	}
	if err := e.tasks.SetStatus(context.Background(), e.currentTask.ID, project.TaskDone); err != nil {
		dialog.ShowError(err, e.Window)
		return
	}
	e.currentTask.Status = project.TaskDone
	e.refreshStatus()
}

// onSuggest runs segmentation over the task image and adds the
// proposals as ordinary annotations the user can adjust or delete.
func (e *Editor) onSuggest() {
	if e.source == nil {
		return
	}
	proposals, err := suggest.Propose(e.source.Image, suggest.DefaultOptions())
	if err != nil {
		dialog.ShowError(err, e.Window)
		return
	}
	added := 0
	for _, p := range proposals {
		if _, ok := e.store.AddAnnotation(p.Bounds, annotation.Label{Tags: []string{"suggested"}}); ok {
			added++
		}
	}
	e.statusBar.SetText(fmt.Sprintf("Added %d suggested boxes", added))
}

// onReadLabel OCRs the selected region into the label field.
func (e *Editor) onReadLabel() {
	selected, ok := e.store.Selected()
	if !ok || e.source == nil || e.ocrEngine == nil {
		return
	}
	text, err := e.ocrEngine.RecognizeRegion(e.source.Image, selected.Bounds)
	if err != nil {
		dialog.ShowError(err, e.Window)
		return
	}
	if text == "" {
		e.statusBar.SetText("No text found in the selected box")
		return
	}
	e.labelEntry.SetText(text)
	e.store.UpdateAnnotation(selected.ID, annotation.Update{Text: &text})
}

func (e *Editor) onExportPDF() {
	if e.source == nil || e.currentImage == nil {
		return
	}
	fileDialog := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()
		title := fmt.Sprintf("Annotations - %s", e.currentImage.Path)
		if err := export.WritePDF(path, title, e.source.Image, e.store.Snapshot()); err != nil {
			dialog.ShowError(err, e.Window)
			return
		}
		e.statusBar.SetText(fmt.Sprintf("Report written to %s", path))
	}, e.Window)
	fileDialog.SetFileName("annotations.pdf")
	fileDialog.Show()
}

func (e *Editor) applyPreset(p config.LabelPreset) {
	selected, ok := e.store.Selected()
	if !ok {
		return
	}
	text := p.Text
	e.store.UpdateAnnotation(selected.ID, annotation.Update{Text: &text, Tags: p.Tags})
	e.refreshSelectionPanel()
}

func (e *Editor) onLabelEdited(text string) {
	selected, ok := e.store.Selected()
	if !ok || selected.Label.Text == text {
		return
	}
	e.store.UpdateAnnotation(selected.ID, annotation.Update{Text: &text})
	e.annList.Refresh()
}

func (e *Editor) onTagsEdited(raw string) {
	selected, ok := e.store.Selected()
	if !ok {
		return
	}
	var tags []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			tags = append(tags, part)
		}
	}
	if strings.Join(tags, ",") == strings.Join(selected.Label.Tags, ",") {
		return
	}
	e.store.UpdateAnnotation(selected.ID, annotation.Update{Tags: tags})
}

func (e *Editor) refreshSelectionPanel() {
	selected, ok := e.store.Selected()
	if !ok {
		e.labelEntry.SetText("")
		e.tagsEntry.SetText("")
		e.annList.UnselectAll()
		return
	}
	e.labelEntry.SetText(selected.Label.Text)
	e.tagsEntry.SetText(strings.Join(selected.Label.Tags, ", "))
}

func (e *Editor) refreshStatus() {
	if e.currentTask == nil {
		e.statusBar.SetText("No task loaded")
		return
	}
	state := "saved"
	if e.store.HasUnsavedChanges() {
		state = "unsaved changes"
	}
	toolName := "select"
	if e.store.ActiveTool() == annotation.ToolBBox {
		toolName = "box"
	}
	e.statusBar.SetText(fmt.Sprintf("%d annotations | tool: %s | %s | task: %s",
		len(e.store.Annotations()), toolName, state, e.currentTask.Status))
}

// confirmClose warns about unsaved work before letting the window go.
func (e *Editor) confirmClose() {
	if !e.store.HasUnsavedChanges() {
		e.teardown()
		e.Close()
		return
	}
	dialog.ShowConfirm("Unsaved changes",
		"This task has unsaved annotations. Discard them?",
		func(discard bool) {
			if discard {
				e.teardown()
				e.Close()
			}
		}, e.Window)
}

func (e *Editor) teardown() {
	if e.ocrEngine != nil {
		if err := e.ocrEngine.Close(); err != nil {
			log.Printf("editor: failed to close OCR engine: %v", err)
		}
	}
	e.store.Cleanup()
}
