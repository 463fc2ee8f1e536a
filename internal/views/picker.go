package views

import (
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// filterPaths keeps the paths containing query, ignoring case
func filterPaths(paths []string, query string) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return paths
	}
	var out []string
	for _, p := range paths {
		if strings.Contains(strings.ToLower(p), query) {
			out = append(out, p)
		}
	}
	return out
}

// showAnnotatedPicker asks the operator to pick one of the annotated images.
// onChoose is not called when the dialog is dismissed.
func showAnnotatedPicker(window fyne.Window, paths []string, current string, onChoose func(string)) {
	selector := widget.NewSelect(paths, nil)
	selector.PlaceHolder = "Select an annotated image"
	for _, p := range paths {
		if p == current {
			selector.SetSelected(p)
			break
		}
	}

	filter := widget.NewEntry()
	filter.SetPlaceHolder("Filter")
	filter.OnChanged = func(query string) {
		selector.Options = filterPaths(paths, query)
		selector.ClearSelected()
		selector.Refresh()
	}

	content := container.NewVBox(filter, selector)
	d := dialog.NewCustomConfirm("Choose from annotated", "Open", "Cancel", content, func(ok bool) {
		if ok && selector.Selected != "" {
			onChoose(selector.Selected)
		}
	}, window)
	d.Resize(fyne.NewSize(480, 200))
	d.Show()
}
