package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"ecg-annotator/internal/labels"
	"ecg-annotator/internal/models"
)

// TagPanel shows one checkbox per catalog tag
type TagPanel struct {
	container *fyne.Container
	checks    [labels.Count]*widget.Check
	stateLabel *widget.Label

	// set while the panel is being filled from a row so OnChanged does not echo
	// the values back as toggles
	updating bool

	toggleHandler func(labels.Tag, bool)
}

// NewTagPanel creates the checkbox column
func NewTagPanel() *TagPanel {
	tp := &TagPanel{}
	tp.createComponents()
	tp.buildLayout()
	return tp
}

func (tp *TagPanel) createComponents() {
	for _, tag := range labels.All() {
		tag := tag
		tp.checks[tag] = widget.NewCheck(tag.Description(), func(checked bool) {
			if tp.updating || tp.toggleHandler == nil {
				return
			}
			tp.toggleHandler(tag, checked)
		})
	}
	tp.stateLabel = widget.NewLabel("")
	tp.stateLabel.TextStyle = fyne.TextStyle{Italic: true}
}

func (tp *TagPanel) buildLayout() {
	objects := make([]fyne.CanvasObject, 0, labels.Count+2)
	objects = append(objects, widget.NewLabelWithStyle("Labels", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}))
	for _, check := range tp.checks {
		objects = append(objects, check)
	}
	objects = append(objects, tp.stateLabel)
	tp.container = container.NewVBox(objects...)
}

// SetToggleHandler sets the callback for operator clicks
func (tp *TagPanel) SetToggleHandler(handler func(labels.Tag, bool)) {
	tp.toggleHandler = handler
}

// SetRow shows the values of row without reporting them as toggles
func (tp *TagPanel) SetRow(row models.AnnotationRow) {
	tp.updating = true
	defer func() { tp.updating = false }()

	for _, tag := range labels.All() {
		tp.checks[tag].SetChecked(row.Has(tag))
	}
	if row.Annotated() {
		tp.stateLabel.SetText("")
	} else {
		tp.stateLabel.SetText("Not labeled yet")
	}
}

// Checked returns the displayed value of tag
func (tp *TagPanel) Checked(tag labels.Tag) bool {
	if !tag.Valid() {
		return false
	}
	return tp.checks[tag].Checked
}

// SetEnabled enables or disables every checkbox
func (tp *TagPanel) SetEnabled(enabled bool) {
	for _, check := range tp.checks {
		if enabled {
			check.Enable()
		} else {
			check.Disable()
		}
	}
}

// GetContainer returns the main container
func (tp *TagPanel) GetContainer() *fyne.Container {
	return tp.container
}
