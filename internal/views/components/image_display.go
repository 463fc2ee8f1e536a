package components

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const (
	ImageAreaWidth  = 500
	ImageAreaHeight = 500
)

// ImageDisplay shows the current scan with its path above it
type ImageDisplay struct {
	container   *fyne.Container
	image       *canvas.Image
	pathLabel   *widget.Label
	placeholder image.Image
	hasImage    bool
}

// NewImageDisplay creates an empty display
func NewImageDisplay() *ImageDisplay {
	id := &ImageDisplay{}
	id.createComponents()
	id.buildLayout()
	return id
}

func (id *ImageDisplay) createComponents() {
	id.placeholder = placeholderImage(ImageAreaWidth, ImageAreaHeight)

	id.image = canvas.NewImageFromImage(id.placeholder)
	id.image.FillMode = canvas.ImageFillContain
	id.image.ScaleMode = canvas.ImageScaleSmooth
	id.image.SetMinSize(fyne.NewSize(ImageAreaWidth, ImageAreaHeight))

	id.pathLabel = widget.NewLabel("")
	id.pathLabel.Alignment = fyne.TextAlignCenter
	id.pathLabel.TextStyle = fyne.TextStyle{Monospace: true}
	id.pathLabel.Truncation = fyne.TextTruncateEllipsis
}

func placeholderImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	background := color.RGBA{R: 240, G: 240, B: 240, A: 255}
	border := color.RGBA{R: 200, G: 200, B: 200, A: 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x == 0 || y == 0 || x == w-1 || y == h-1 {
				img.Set(x, y, border)
			} else {
				img.Set(x, y, background)
			}
		}
	}
	return img
}

func (id *ImageDisplay) buildLayout() {
	id.container = container.NewBorder(
		id.pathLabel, nil, nil, nil,
		container.NewStack(
			canvas.NewRectangle(color.RGBA{R: 252, G: 252, B: 252, A: 255}),
			id.image,
		),
	)
}

// SetPath updates the caption
func (id *ImageDisplay) SetPath(path string) {
	id.pathLabel.SetText(path)
}

// SetImage replaces the shown image; nil restores the placeholder. Safe to call
// from any goroutine.
func (id *ImageDisplay) SetImage(img image.Image) {
	fyne.Do(func() {
		if img != nil {
			id.image.Image = img
			id.hasImage = true
		} else {
			id.image.Image = id.placeholder
			id.hasImage = false
		}
		id.image.Refresh()
	})
}

// HasImage reports whether a scan, not the placeholder, is displayed
func (id *ImageDisplay) HasImage() bool {
	return id.hasImage
}

// GetContainer returns the main container
func (id *ImageDisplay) GetContainer() *fyne.Container {
	return id.container
}
