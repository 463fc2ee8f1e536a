package services

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DefaultExtensions are the image types picked up by a scan
var DefaultExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".tif", ".tiff", ".webp"}

// NormalizeKey turns a path relative to the data directory into a store key:
// slash separated and NFC normalized so keys agree across platforms.
func NormalizeKey(rel string) string {
	return norm.NFC.String(filepath.ToSlash(filepath.Clean(rel)))
}

// ImageScan is the result of walking a data directory. Keys are normalized, the
// file names on disk are kept so every key resolves to the file it came from.
type ImageScan struct {
	Dir string
	// Keys are unique and in walk order
	Keys []string
	// Duplicates lists files skipped because their key was already taken by
	// another file, e.g. the same name stored once composed and once decomposed
	Duplicates []string

	files map[string]string
}

// Resolve returns the filesystem path of the image behind key. Keys that were
// not part of the scan are joined onto the directory as they are.
func (s *ImageScan) Resolve(key string) string {
	if rel, ok := s.files[key]; ok {
		return filepath.Join(s.Dir, rel)
	}
	return ResolveKey(s.Dir, key)
}

// ScanDir walks dir recursively and records every file with a recognized
// extension. Extension matching ignores case.
func ScanDir(dir string, extensions []string) (*ImageScan, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat data directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("data directory %s is not a directory", dir)
	}
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}

	allowed := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed[ext] = struct{}{}
	}

	scan := &ImageScan{Dir: dir, files: make(map[string]string)}
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := allowed[strings.ToLower(filepath.Ext(d.Name()))]; !ok {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		key := NormalizeKey(rel)
		if _, taken := scan.files[key]; taken {
			scan.Duplicates = append(scan.Duplicates, filepath.ToSlash(rel))
			return nil
		}
		scan.files[key] = rel
		scan.Keys = append(scan.Keys, key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	return scan, nil
}

// ScanImages walks dir and returns only the image keys
func ScanImages(dir string, extensions []string) ([]string, error) {
	scan, err := ScanDir(dir, extensions)
	if err != nil {
		return nil, err
	}
	return scan.Keys, nil
}

// ResolveKey maps a store key back to a filesystem path under dir
func ResolveKey(dir, key string) string {
	return filepath.Join(dir, filepath.FromSlash(key))
}
