package components

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"

	"ecg-annotator/internal/labels"
	"ecg-annotator/internal/models"
)

func TestTagPanelSetRowDoesNotEcho(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	panel := NewTagPanel()
	var toggles []labels.Tag
	panel.SetToggleHandler(func(tag labels.Tag, value bool) {
		toggles = append(toggles, tag)
	})

	row := models.AnnotationRow{}.With(labels.LowContrast, true)
	panel.SetRow(row)
	assert.Empty(t, toggles)
	assert.True(t, panel.Checked(labels.LowContrast))
	assert.Equal(t, "", panel.stateLabel.Text)

	test.Tap(panel.checks[labels.Unreadable])
	assert.Equal(t, []labels.Tag{labels.Unreadable}, toggles)

	panel.SetRow(models.AnnotationRow{})
	assert.Equal(t, "Not labeled yet", panel.stateLabel.Text)
	assert.Len(t, toggles, 1)
}

func TestToolbarHandlers(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	tb := NewToolbar()
	var calls []string
	tb.SetNextHandler(func() { calls = append(calls, "next") })
	tb.SetPreviousHandler(func() { calls = append(calls, "previous") })
	tb.SetUnlabeledOnlyHandler(func(v bool) { calls = append(calls, "unlabeled") })

	test.Tap(tb.nextButton)
	test.Tap(tb.previousButton)
	tb.SetUnlabeledOnly(true)
	assert.Equal(t, []string{"next", "previous"}, calls)

	test.Tap(tb.unlabeledCheck)
	assert.Equal(t, []string{"next", "previous", "unlabeled"}, calls)
	assert.False(t, tb.unlabeledCheck.Checked)

	tb.SetHasAnnotated(false)
	assert.True(t, tb.annotatedButton.Disabled())
}

func TestStatusBar(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	sb := NewStatusBar()
	sb.SetPosition(4, 10)
	assert.Equal(t, "5 / 10", sb.positionLabel.Text)
	sb.SetPosition(0, 0)
	assert.Equal(t, "--", sb.positionLabel.Text)

	sb.SetProgress(3, 12)
	assert.Equal(t, "3 / 12 labeled", sb.progress.TextFormatter())
}
