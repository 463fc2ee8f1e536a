package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ecg-annotator/internal/logger"
	"ecg-annotator/internal/models"
)

// Store persists an annotation table to a single file
type Store struct {
	path   string
	format Format
	logger logger.Logger
}

// NewStore creates a store for path. format may be empty to choose by extension.
func NewStore(path, format string, log logger.Logger) (*Store, error) {
	f, err := FormatForPath(path, format)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Store{path: path, format: f, logger: log}, nil
}

// Path returns the store file location
func (s *Store) Path() string { return s.path }

// Format returns the store encoding
func (s *Store) Format() Format { return s.format }

// Exists reports whether the store file is present
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load builds the session table. Rows read from disk take precedence over the
// all-false rows seeded for scanned paths. A missing file is a first run, not an
// error; existed reports which case applied.
func (s *Store) Load(scanned []string) (table *models.AnnotationTable, existed bool, err error) {
	seed := models.SeedTable(scanned)

	disk, existed, err := s.read()
	if err != nil {
		return nil, false, err
	}
	if !existed {
		s.logger.Info("No label store found, starting fresh", map[string]interface{}{
			"path":    s.path,
			"scanned": len(scanned),
		})
		return seed, false, nil
	}

	disk.Merge(seed)
	s.logger.Info("Label store loaded", map[string]interface{}{
		"path":      s.path,
		"rows":      disk.Len(),
		"annotated": len(disk.AnnotatedPaths()),
	})
	return disk, true, nil
}

// Save merges the current file contents into table, keeping table's rows on
// conflict and importing rows only present on disk, then replaces the file.
// Readers never observe a partially written file.
func (s *Store) Save(table *models.AnnotationTable) error {
	start := time.Now()

	disk, _, err := s.read()
	if err != nil {
		return err
	}
	if disk != nil {
		table.Merge(disk)
	}

	if err := s.write(table); err != nil {
		return err
	}

	s.logger.Debug("Label store saved", map[string]interface{}{
		"path":        s.path,
		"rows":        table.Len(),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return nil
}

// Overwrite replaces the file with table without merging. The prune command
// uses it so deleted rows are not re-imported from disk.
func (s *Store) Overwrite(table *models.AnnotationTable) error {
	return s.write(table)
}

func (s *Store) read() (*models.AnnotationTable, bool, error) {
	file, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("open label store: %w", err)
	}
	defer file.Close()

	table, err := s.format.Decode(file)
	if err != nil {
		return nil, true, fmt.Errorf("load %s: %w", s.path, err)
	}
	return table, true, nil
}

func (s *Store) write(table *models.AnnotationTable) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temporary store file: %w", err)
	}
	tempPath := tmp.Name()

	if err := s.format.Encode(tmp, table); err != nil {
		tmp.Close()
		os.Remove(tempPath)
		return fmt.Errorf("encode label store: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tempPath)
		return fmt.Errorf("sync label store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("close label store: %w", err)
	}
	if err := os.Chmod(tempPath, 0o644); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("chmod label store: %w", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("replace label store: %w", err)
	}
	return nil
}

// ResolveStorePath places a relative store path inside the data directory
func ResolveStorePath(dataDir, storePath string) string {
	if filepath.IsAbs(storePath) || dataDir == "" {
		return storePath
	}
	return filepath.Join(dataDir, storePath)
}
