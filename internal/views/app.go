// Package views is the fyne front end. It turns clicks into session commands and
// renders the snapshots the session returns.
package views

import (
	"errors"
	"fmt"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"

	"ecg-annotator/internal/controllers"
	"ecg-annotator/internal/labels"
	"ecg-annotator/internal/logger"
	"ecg-annotator/internal/models"
	"ecg-annotator/internal/navigation"
	"ecg-annotator/internal/thumbnails"
)

// Options wires the front end to the core
type Options struct {
	Window     fyne.Window
	Session    *controllers.Session
	Thumbnails *thumbnails.Service
	Logger     logger.Logger
	DataDir    string
	// OnDataDirChosen is called once a directory opened successfully
	OnDataDirChosen func(dir string)
	// OnQuit is called after the session has been saved and closed
	OnQuit func()
}

// App switches between the start screen and the annotation screen
type App struct {
	opts       Options
	window     fyne.Window
	session    *controllers.Session
	logger     logger.Logger
	start      *StartView
	annotation *AnnotationView

	mu        sync.Mutex
	shownPath string
	shown     controllers.Snapshot
}

// NewApp builds both screens and connects their handlers
func NewApp(opts Options) *App {
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	a := &App{
		opts:       opts,
		window:     opts.Window,
		session:    opts.Session,
		logger:     opts.Logger,
		start:      NewStartView(opts.Window, opts.DataDir),
		annotation: NewAnnotationView(),
	}
	a.connect()
	a.session.Subscribe(a.render)
	return a
}

func (a *App) connect() {
	a.start.SetStartHandler(a.Open)
	a.start.SetQuitHandler(a.Quit)

	tb := a.annotation.toolbar
	tb.SetPreviousHandler(func() { a.advance(navigation.Backward) })
	tb.SetNextHandler(func() { a.advance(navigation.Forward) })
	tb.SetAnnotatedHandler(a.chooseAnnotated)
	tb.SetSaveHandler(a.save)
	tb.SetCloseHandler(a.Quit)
	tb.SetUnlabeledOnlyHandler(func(enabled bool) {
		a.dispatch(controllers.SetUnlabeledOnly{Enabled: enabled})
	})

	a.annotation.tagPanel.SetToggleHandler(a.toggle)

	a.window.SetCloseIntercept(a.Quit)
	a.window.Canvas().SetOnTypedKey(a.handleKey)
}

// ShowStart displays the directory selection screen
func (a *App) ShowStart() {
	a.window.SetContent(a.start.GetContainer())
}

// Open starts a session on dir and switches to the annotation screen
func (a *App) Open(dir string) {
	snap, err := a.session.Open(dir)
	if err != nil {
		if errors.Is(err, controllers.ErrNoImages) {
			dialog.ShowInformation("No images found",
				fmt.Sprintf("No images found in %s.\nChoose a directory that contains ECG scans.", dir), a.window)
			return
		}
		a.logger.Error("Open failed", err, map[string]interface{}{"data_dir": dir})
		dialog.ShowError(err, a.window)
		return
	}

	if a.opts.OnDataDirChosen != nil {
		a.opts.OnDataDirChosen(dir)
	}
	a.window.SetContent(a.annotation.GetContainer())

	if snap.StoreExisted {
		a.annotation.SetStatus("Loaded labels from %s", snap.StorePath)
	} else {
		a.annotation.SetStatus("No labels found, a new store will be written to %s", snap.StorePath)
	}
	if snap.Finished {
		a.showFinished()
	}
}

// Quit saves and closes the session, then calls OnQuit. If the final save
// fails the operator decides whether to quit anyway.
func (a *App) Quit() {
	_, err := a.session.Dispatch(controllers.Close{})
	if err != nil && !errors.Is(err, controllers.ErrSessionClosed) && !errors.Is(err, controllers.ErrNotOpen) {
		dialog.ShowConfirm("Save failed",
			fmt.Sprintf("%v\n\nQuit without saving?", err),
			func(quit bool) {
				if quit {
					a.quit()
				}
			}, a.window)
		return
	}
	a.quit()
}

func (a *App) quit() {
	if a.opts.Thumbnails != nil {
		a.opts.Thumbnails.Flush()
	}
	if a.opts.OnQuit != nil {
		a.opts.OnQuit()
	}
}

func (a *App) advance(dir navigation.Direction) {
	snap, ok := a.dispatch(controllers.Advance{Direction: dir})
	if ok && snap.Finished {
		a.showFinished()
	}
}

func (a *App) save() {
	if snap, ok := a.dispatch(controllers.Save{}); ok {
		a.annotation.SetStatus("Saved %d labeled images to %s", snap.Annotated, snap.StorePath)
	}
}

func (a *App) showFinished() {
	dialog.ShowInformation("Finished", "Every image has at least one label.", a.window)
}

func (a *App) chooseAnnotated() {
	paths := a.session.AnnotatedList()
	if len(paths) == 0 {
		dialog.ShowInformation("Choose from annotated", "No image has been labeled yet.", a.window)
		return
	}
	current := a.session.Snapshot().Path
	showAnnotatedPicker(a.window, paths, current, a.jumpTo)
}

func (a *App) jumpTo(path string) {
	_, err := a.session.Dispatch(controllers.JumpTo{Path: path})
	if err == nil {
		return
	}
	if errors.Is(err, navigation.ErrPathNotFound) {
		// the store knows images that are no longer in the directory
		d := dialog.NewError(fmt.Errorf("%s is not in the current directory", path), a.window)
		d.SetOnClosed(a.chooseAnnotated)
		d.Show()
		return
	}
	dialog.ShowError(err, a.window)
}

func (a *App) dispatch(cmd controllers.Command) (controllers.Snapshot, bool) {
	snap, err := a.session.Dispatch(cmd)
	if err != nil {
		dialog.ShowError(err, a.window)
		return snap, false
	}
	return snap, true
}

func (a *App) handleKey(ev *fyne.KeyEvent) {
	if a.session.Snapshot().State != models.StateBrowsing {
		return
	}
	switch ev.Name {
	case fyne.KeyRight, fyne.KeySpace:
		a.advance(navigation.Forward)
	case fyne.KeyLeft:
		a.advance(navigation.Backward)
	case fyne.Key1, fyne.Key2, fyne.Key3, fyne.Key4, fyne.Key5:
		tag := labels.Tag(int(ev.Name[0] - '1'))
		a.toggle(tag, !a.rendered().Row.Has(tag))
	}
}

// toggle labels the image on screen, which is not necessarily the cursor's
func (a *App) toggle(tag labels.Tag, value bool) {
	shown := a.rendered()
	if shown.Path == "" {
		return
	}
	a.dispatch(controllers.ToggleTag{Path: shown.Path, Tag: tag, Value: value})
}

// rendered returns the last snapshot drawn by render
func (a *App) rendered() controllers.Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.shown
}

// render is registered as a session listener and runs on the UI goroutine
func (a *App) render(snap controllers.Snapshot) {
	a.annotation.Render(snap)

	a.mu.Lock()
	changed := a.shownPath != snap.Path
	a.shownPath = snap.Path
	a.shown = snap
	a.mu.Unlock()

	if changed {
		a.loadImage(snap.Path, snap.AbsPath)
	}
}

func (a *App) loadImage(key, absPath string) {
	display := a.annotation.imageDisplay
	if a.opts.Thumbnails == nil {
		display.SetImage(nil)
		return
	}

	go func() {
		img, err := a.opts.Thumbnails.Load(absPath)

		a.mu.Lock()
		stale := a.shownPath != key
		a.mu.Unlock()
		if stale {
			return
		}

		if err != nil {
			a.logger.Error("Preview failed", err, map[string]interface{}{"path": key})
			display.SetImage(nil)
			a.annotation.statusBar.SetStatus(fmt.Sprintf("Cannot display %s", key))
			return
		}
		display.SetImage(img)
	}()
}
