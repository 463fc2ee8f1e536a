package views

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

const noDirectoryText = "No directory selected"

// StartView lets the operator pick the data directory before a session opens
type StartView struct {
	window    fyne.Window
	container *fyne.Container

	dirLabel     *widget.Label
	selectButton *widget.Button
	startButton  *widget.Button
	quitButton   *widget.Button

	dataDir      string
	startHandler func(dir string)
	quitHandler  func()
}

// NewStartView creates the start screen, preselecting dataDir when set
func NewStartView(window fyne.Window, dataDir string) *StartView {
	sv := &StartView{window: window}
	sv.createComponents()
	sv.buildLayout()
	sv.SetDataDir(dataDir)
	return sv
}

func (sv *StartView) createComponents() {
	sv.dirLabel = widget.NewLabel(noDirectoryText)
	sv.dirLabel.Wrapping = fyne.TextWrapBreak

	sv.selectButton = widget.NewButtonWithIcon("Select Data Directory", theme.FolderOpenIcon(), sv.showFolderDialog)

	sv.startButton = widget.NewButtonWithIcon("Start annotating", theme.MediaPlayIcon(), func() {
		if sv.startHandler != nil && sv.dataDir != "" {
			sv.startHandler(sv.dataDir)
		}
	})
	sv.startButton.Importance = widget.HighImportance

	sv.quitButton = widget.NewButton("Save annotations and close the app", func() {
		if sv.quitHandler != nil {
			sv.quitHandler()
		}
	})
}

func (sv *StartView) buildLayout() {
	sv.container = container.NewCenter(container.NewVBox(
		widget.NewLabelWithStyle("ECG Scan Annotator", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		widget.NewSeparator(),
		sv.selectButton,
		sv.dirLabel,
		sv.startButton,
		widget.NewSeparator(),
		sv.quitButton,
	))
}

func (sv *StartView) showFolderDialog() {
	d := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			dialog.ShowError(err, sv.window)
			return
		}
		if uri == nil {
			return
		}
		sv.SetDataDir(uri.Path())
	}, sv.window)

	if sv.dataDir != "" {
		if lister, err := storage.ListerForURI(storage.NewFileURI(sv.dataDir)); err == nil {
			d.SetLocation(lister)
		}
	}
	d.Show()
}

// SetDataDir updates the selected directory
func (sv *StartView) SetDataDir(dir string) {
	sv.dataDir = dir
	if dir == "" {
		sv.dirLabel.SetText(noDirectoryText)
		sv.startButton.Disable()
		return
	}
	sv.dirLabel.SetText(dir)
	sv.startButton.Enable()
}

// DataDir returns the selected directory
func (sv *StartView) DataDir() string { return sv.dataDir }

func (sv *StartView) SetStartHandler(handler func(dir string)) { sv.startHandler = handler }
func (sv *StartView) SetQuitHandler(handler func())           { sv.quitHandler = handler }

// GetContainer returns the main container
func (sv *StartView) GetContainer() *fyne.Container {
	return sv.container
}
