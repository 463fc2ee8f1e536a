package thumbnails

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, dir string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	path := filepath.Join(dir, "scan.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

type countingDecoder struct {
	calls atomic.Int32
	err   error
}

func (d *countingDecoder) Name() string { return "counting" }

func (d *countingDecoder) Decode(string, int, bool) (image.Image, error) {
	d.calls.Add(1)
	if d.err != nil {
		return nil, d.err
	}
	return image.NewGray(image.Rect(0, 0, 4, 2)), nil
}

func TestImagingDecoderRotatesAndFits(t *testing.T) {
	t.Parallel()

	path := writePNG(t, t.TempDir(), 400, 100)

	img, err := ImagingDecoder{}.Decode(path, 50, true)
	require.NoError(t, err)
	assert.Equal(t, 13, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())

	// the red top row ends up on the right edge after a clockwise quarter turn
	r, _, _, _ := img.At(img.Bounds().Dx()-1, 0).RGBA()
	assert.Greater(t, r, uint32(0))

	img, err = ImagingDecoder{}.Decode(path, 1000, false)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 400, 100), img.Bounds())
}

func TestServiceCachesByPath(t *testing.T) {
	t.Parallel()

	path := writePNG(t, t.TempDir(), 10, 10)
	dec := &countingDecoder{}
	svc, err := NewService(DefaultOptions(), nil, dec)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := svc.Load(path)
		require.NoError(t, err)
	}
	assert.EqualValues(t, 1, dec.calls.Load())

	stats := svc.Stats()
	assert.EqualValues(t, 2, stats.Hits)
	assert.EqualValues(t, 1, stats.Misses)
	assert.Equal(t, 1, stats.Items)

	svc.Flush()
	_, err = svc.Load(path)
	require.NoError(t, err)
	assert.EqualValues(t, 2, dec.calls.Load())
}

func TestServiceReloadsModifiedFile(t *testing.T) {
	t.Parallel()

	path := writePNG(t, t.TempDir(), 10, 10)
	dec := &countingDecoder{}
	svc, err := NewService(DefaultOptions(), nil, dec)
	require.NoError(t, err)

	_, err = svc.Load(path)
	require.NoError(t, err)

	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, later, later))
	_, err = svc.Load(path)
	require.NoError(t, err)
	assert.EqualValues(t, 2, dec.calls.Load())
}

func TestServiceFallsBack(t *testing.T) {
	t.Parallel()

	path := writePNG(t, t.TempDir(), 20, 10)
	broken := &countingDecoder{err: errors.New("no codec")}
	svc, err := NewService(Options{MaxSize: 8, Rotate: true}, nil, broken, ImagingDecoder{})
	require.NoError(t, err)

	img, err := svc.Load(path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 8), img.Bounds())
	assert.EqualValues(t, 1, svc.Stats().Fallbacks)
}

func TestServiceErrors(t *testing.T) {
	t.Parallel()

	_, err := NewService(DefaultOptions(), nil)
	assert.Error(t, err)

	_, err = NewService(Options{MaxSize: 0}, nil, ImagingDecoder{})
	assert.Error(t, err)

	broken := &countingDecoder{err: errors.New("no codec")}
	svc, err := NewService(DefaultOptions(), nil, broken)
	require.NoError(t, err)

	_, err = svc.Load(filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := writePNG(t, t.TempDir(), 4, 4)
	_, err = svc.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no codec")
}
