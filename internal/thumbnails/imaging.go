package thumbnails

import (
	"image"

	"github.com/disintegration/imaging"
	// extra formats found in scanner exports
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImagingDecoder decodes with the pure Go image stack
type ImagingDecoder struct{}

func (ImagingDecoder) Name() string { return "imaging" }

func (ImagingDecoder) Decode(path string, maxSize int, rotate bool) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}
	if rotate {
		// Rotate270 turns counter-clockwise, i.e. a quarter turn clockwise
		img = imaging.Rotate270(img)
	}
	return imaging.Fit(img, maxSize, maxSize, imaging.Box), nil
}
