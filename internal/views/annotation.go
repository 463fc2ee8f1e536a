package views

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"

	"ecg-annotator/internal/controllers"
	"ecg-annotator/internal/views/components"
)

// AnnotationView shows one scan with its tag checkboxes and navigation controls
type AnnotationView struct {
	container    *fyne.Container
	imageDisplay *components.ImageDisplay
	tagPanel     *components.TagPanel
	toolbar      *components.Toolbar
	statusBar    *components.StatusBar
}

// NewAnnotationView creates the browsing screen
func NewAnnotationView() *AnnotationView {
	av := &AnnotationView{
		imageDisplay: components.NewImageDisplay(),
		tagPanel:     components.NewTagPanel(),
		toolbar:      components.NewToolbar(),
		statusBar:    components.NewStatusBar(),
	}
	av.buildLayout()
	return av
}

func (av *AnnotationView) buildLayout() {
	av.container = container.NewBorder(
		av.toolbar.GetContainer(),
		av.statusBar.GetContainer(),
		nil,
		container.NewPadded(av.tagPanel.GetContainer()),
		av.imageDisplay.GetContainer(),
	)
}

// Render updates every control from snap except the image itself
func (av *AnnotationView) Render(snap controllers.Snapshot) {
	av.imageDisplay.SetPath(snap.Path)
	av.tagPanel.SetRow(snap.Row)
	av.toolbar.SetUnlabeledOnly(snap.UnlabeledOnly)
	av.toolbar.SetHasAnnotated(snap.Annotated > 0)
	av.statusBar.SetPosition(snap.Index, snap.Count)
	av.statusBar.SetProgress(snap.Annotated, snap.Count)
}

// SetStatus updates the status message
func (av *AnnotationView) SetStatus(format string, args ...interface{}) {
	av.statusBar.SetStatus(fmt.Sprintf(format, args...))
}

// GetContainer returns the main container
func (av *AnnotationView) GetContainer() *fyne.Container {
	return av.container
}
