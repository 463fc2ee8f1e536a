// Package thumbnails produces display-sized, rotated previews of ECG scans and
// keeps recently shown previews in memory.
package thumbnails

import (
	"errors"
	"fmt"
	"image"
	"os"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"

	"ecg-annotator/internal/logger"
)

// Decoder turns an image file into a preview no larger than maxSize on either side.
// When rotate is set the preview is turned 90 degrees clockwise.
type Decoder interface {
	Name() string
	Decode(path string, maxSize int, rotate bool) (image.Image, error)
}

// Options controls preview geometry and cache lifetime
type Options struct {
	MaxSize  int
	Rotate   bool
	CacheTTL time.Duration
}

// DefaultOptions matches the 500px previews shown by the annotation view
func DefaultOptions() Options {
	return Options{MaxSize: 500, Rotate: true, CacheTTL: 10 * time.Minute}
}

// Stats reports cache effectiveness
type Stats struct {
	Hits      uint64
	Misses    uint64
	Fallbacks uint64
	Items     int
}

// Service decodes previews with a primary decoder, falls back to a second decoder
// on failure and caches results keyed by path and modification time.
type Service struct {
	opts     Options
	decoders []Decoder
	cache    *cache.Cache
	logger   logger.Logger

	hits      atomic.Uint64
	misses    atomic.Uint64
	fallbacks atomic.Uint64
}

// NewService creates a preview service. Decoders are tried in order; at least one
// is required.
func NewService(opts Options, log logger.Logger, decoders ...Decoder) (*Service, error) {
	if len(decoders) == 0 {
		return nil, errors.New("no thumbnail decoders configured")
	}
	if opts.MaxSize <= 0 {
		return nil, fmt.Errorf("invalid thumbnail size %d", opts.MaxSize)
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultOptions().CacheTTL
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &Service{
		opts:     opts,
		decoders: decoders,
		cache:    cache.New(opts.CacheTTL, 2*opts.CacheTTL),
		logger:   log,
	}, nil
}

// Load returns the preview for the file at path
func (s *Service) Load(path string) (image.Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat image: %w", err)
	}
	key := fmt.Sprintf("%s@%d", path, info.ModTime().UnixNano())

	if cached, ok := s.cache.Get(key); ok {
		s.hits.Add(1)
		return cached.(image.Image), nil
	}
	s.misses.Add(1)

	var errs []error
	for i, dec := range s.decoders {
		start := time.Now()
		img, err := dec.Decode(path, s.opts.MaxSize, s.opts.Rotate)
		if err != nil {
			s.logger.Warning("Thumbnail decode failed", map[string]interface{}{
				"decoder": dec.Name(),
				"path":    path,
				"error":   err.Error(),
			})
			errs = append(errs, fmt.Errorf("%s: %w", dec.Name(), err))
			continue
		}
		if i > 0 {
			s.fallbacks.Add(1)
		}

		s.cache.Set(key, img, cache.DefaultExpiration)
		s.logger.Debug("Thumbnail decoded", map[string]interface{}{
			"decoder":     dec.Name(),
			"path":        path,
			"width":       img.Bounds().Dx(),
			"height":      img.Bounds().Dy(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return img, nil
	}
	return nil, fmt.Errorf("decode %s: %w", path, errors.Join(errs...))
}

// Stats returns counters since creation
func (s *Service) Stats() Stats {
	return Stats{
		Hits:      s.hits.Load(),
		Misses:    s.misses.Load(),
		Fallbacks: s.fallbacks.Load(),
		Items:     s.cache.ItemCount(),
	}
}

// Flush drops every cached preview
func (s *Service) Flush() {
	s.cache.Flush()
}
