package components

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// StatusBar shows the last message, the cursor position and labeling progress
type StatusBar struct {
	container     *fyne.Container
	statusLabel   *widget.Label
	positionLabel *widget.Label
	progress      *widget.ProgressBar
}

// NewStatusBar creates a new status bar component
func NewStatusBar() *StatusBar {
	sb := &StatusBar{}
	sb.createComponents()
	sb.buildLayout()
	return sb
}

func (sb *StatusBar) createComponents() {
	sb.statusLabel = widget.NewLabel("Ready")
	sb.statusLabel.Truncation = fyne.TextTruncateEllipsis
	sb.positionLabel = widget.NewLabel("--")
	sb.progress = widget.NewProgressBar()
	sb.progress.TextFormatter = func() string {
		return fmt.Sprintf("%.0f / %.0f labeled", sb.progress.Value, sb.progress.Max)
	}
}

func (sb *StatusBar) buildLayout() {
	sb.container = container.NewBorder(
		nil, nil,
		sb.positionLabel,
		container.NewGridWrap(fyne.NewSize(220, sb.progress.MinSize().Height), sb.progress),
		sb.statusLabel,
	)
}

// SetStatus updates the message. Safe to call from any goroutine.
func (sb *StatusBar) SetStatus(status string) {
	fyne.Do(func() {
		sb.statusLabel.SetText(status)
	})
}

// GetStatus returns the current status message
func (sb *StatusBar) GetStatus() string {
	return sb.statusLabel.Text
}

// SetPosition shows the 1-based index of the current image
func (sb *StatusBar) SetPosition(index, count int) {
	if count == 0 {
		sb.positionLabel.SetText("--")
		return
	}
	sb.positionLabel.SetText(fmt.Sprintf("%d / %d", index+1, count))
}

// SetProgress shows how many images carry at least one label
func (sb *StatusBar) SetProgress(annotated, total int) {
	if total <= 0 {
		total = 1
	}
	sb.progress.Max = float64(total)
	sb.progress.SetValue(float64(annotated))
}

// GetContainer returns the status bar container
func (sb *StatusBar) GetContainer() *fyne.Container {
	return sb.container
}
