package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// Toolbar holds the navigation and session buttons of the annotation view
type Toolbar struct {
	container       *fyne.Container
	previousButton  *widget.Button
	nextButton      *widget.Button
	annotatedButton *widget.Button
	saveButton      *widget.Button
	closeButton     *widget.Button
	unlabeledCheck  *widget.Check

	updating bool

	previousHandler  func()
	nextHandler      func()
	annotatedHandler func()
	saveHandler      func()
	closeHandler     func()
	unlabeledHandler func(bool)
}

// NewToolbar creates a new toolbar component
func NewToolbar() *Toolbar {
	t := &Toolbar{}
	t.createComponents()
	t.buildLayout()
	return t
}

func (t *Toolbar) createComponents() {
	t.previousButton = widget.NewButtonWithIcon("Previous", theme.NavigateBackIcon(), func() {
		call(t.previousHandler)
	})

	t.nextButton = widget.NewButtonWithIcon("Next", theme.NavigateNextIcon(), func() {
		call(t.nextHandler)
	})
	t.nextButton.Importance = widget.HighImportance
	t.nextButton.IconPlacement = widget.ButtonIconTrailingText

	t.annotatedButton = widget.NewButtonWithIcon("Choose from annotated", theme.ListIcon(), func() {
		call(t.annotatedHandler)
	})

	t.saveButton = widget.NewButtonWithIcon("Save", theme.DocumentSaveIcon(), func() {
		call(t.saveHandler)
	})

	t.closeButton = widget.NewButtonWithIcon("Close", theme.LogoutIcon(), func() {
		call(t.closeHandler)
	})
	t.closeButton.Importance = widget.DangerImportance

	t.unlabeledCheck = widget.NewCheck("Show only unlabeled images", func(checked bool) {
		if t.updating || t.unlabeledHandler == nil {
			return
		}
		t.unlabeledHandler(checked)
	})
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}

func (t *Toolbar) buildLayout() {
	navigation := container.NewHBox(t.previousButton, t.nextButton)
	session := container.NewHBox(t.annotatedButton, widget.NewSeparator(), t.saveButton, t.closeButton)

	t.container = container.NewVBox(
		container.NewBorder(nil, nil, navigation, session),
		t.unlabeledCheck,
	)
}

func (t *Toolbar) SetPreviousHandler(handler func())  { t.previousHandler = handler }
func (t *Toolbar) SetNextHandler(handler func())      { t.nextHandler = handler }
func (t *Toolbar) SetAnnotatedHandler(handler func()) { t.annotatedHandler = handler }
func (t *Toolbar) SetSaveHandler(handler func())      { t.saveHandler = handler }
func (t *Toolbar) SetCloseHandler(handler func())     { t.closeHandler = handler }

func (t *Toolbar) SetUnlabeledOnlyHandler(handler func(bool)) { t.unlabeledHandler = handler }

// SetUnlabeledOnly reflects the session mode without calling the handler
func (t *Toolbar) SetUnlabeledOnly(enabled bool) {
	t.updating = true
	defer func() { t.updating = false }()
	t.unlabeledCheck.SetChecked(enabled)
}

// SetHasAnnotated enables the picker only when there is something to pick
func (t *Toolbar) SetHasAnnotated(has bool) {
	if has {
		t.annotatedButton.Enable()
	} else {
		t.annotatedButton.Disable()
	}
}

// SetNavigationEnabled toggles every session-changing control
func (t *Toolbar) SetNavigationEnabled(enabled bool) {
	for _, b := range []*widget.Button{t.previousButton, t.nextButton, t.saveButton, t.closeButton} {
		if enabled {
			b.Enable()
		} else {
			b.Disable()
		}
	}
}

// GetContainer returns the toolbar container
func (t *Toolbar) GetContainer() *fyne.Container {
	return t.container
}
