// Package opencv decodes scan previews with OpenCV.
package opencv

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Decoder reads, rotates and area-resizes images through gocv
type Decoder struct{}

// NewDecoder creates an OpenCV backed preview decoder
func NewDecoder() *Decoder { return &Decoder{} }

func (*Decoder) Name() string { return "opencv" }

// Decode loads path, turns it a quarter clockwise when rotate is set and shrinks it
// so neither side exceeds maxSize. Images already within bounds are not enlarged.
func (*Decoder) Decode(path string, maxSize int, rotate bool) (image.Image, error) {
	src := gocv.IMRead(path, gocv.IMReadColor)
	defer src.Close()
	if err := validateMat(src, "read"); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	work := src
	if rotate {
		rotated := gocv.NewMat()
		defer rotated.Close()
		gocv.Rotate(src, &rotated, gocv.Rotate90Clockwise)
		if err := validateMat(rotated, "rotate"); err != nil {
			return nil, err
		}
		work = rotated
	}

	scale := fitScale(work.Cols(), work.Rows(), maxSize)
	if scale < 1 {
		resized := gocv.NewMat()
		defer resized.Close()
		gocv.Resize(work, &resized, image.Point{}, scale, scale, gocv.InterpolationArea)
		if err := validateMat(resized, "resize"); err != nil {
			return nil, err
		}
		work = resized
	}

	img, err := work.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert Mat to image: %w", err)
	}
	return img, nil
}

func validateMat(mat gocv.Mat, operation string) error {
	if mat.Empty() {
		return fmt.Errorf("Mat is empty after %s", operation)
	}
	if mat.Rows() <= 0 || mat.Cols() <= 0 {
		return fmt.Errorf("Mat has invalid dimensions %dx%d after %s", mat.Cols(), mat.Rows(), operation)
	}
	return nil
}

func fitScale(width, height, maxSize int) float64 {
	longest := width
	if height > longest {
		longest = height
	}
	if longest <= maxSize || longest == 0 {
		return 1
	}
	return float64(maxSize) / float64(longest)
}
