// Package controllers owns the annotation session: it turns operator commands
// into table, cursor and store operations and reports the resulting state.
package controllers

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"ecg-annotator/internal/labels"
	"ecg-annotator/internal/logger"
	"ecg-annotator/internal/models"
	"ecg-annotator/internal/navigation"
	"ecg-annotator/internal/services"
)

var (
	// ErrNoImages is returned by Open when the directory holds no recognized images
	ErrNoImages = errors.New("no images found")
	// ErrSessionClosed is returned for commands issued after Close
	ErrSessionClosed = errors.New("session closed")
	// ErrNotOpen is returned for commands issued before Open succeeded
	ErrNotOpen = errors.New("session not open")
)

// Options configures a session
type Options struct {
	// StorePath is the label store; relative paths resolve against the data directory
	StorePath   string
	StoreFormat string
	Extensions  []string
	// UnlabeledOnly is the initial browsing mode
	UnlabeledOnly bool
	// Autosave saves after every move
	Autosave bool
}

// Listener is notified after every command that changed the session
type Listener func(Snapshot)

// Session processes one command at a time against the annotation table
type Session struct {
	mu sync.Mutex

	opts   Options
	logger logger.Logger
	state  *models.SessionStateRepository

	scan         *services.ImageScan
	store        *services.Store
	table        *models.AnnotationTable
	cursor       *navigation.Cursor
	storeExisted bool
	finished     bool
	lastSave     time.Time

	listeners []Listener
}

// NewSession creates an idle session
func NewSession(opts Options, log logger.Logger) *Session {
	if log == nil {
		log = logger.NewNop()
	}
	return &Session{
		opts:   opts,
		logger: log,
		state:  models.NewSessionStateRepository(),
	}
}

// Subscribe registers fn to receive a snapshot after each successful command.
// Listeners run synchronously on the dispatching goroutine.
func (s *Session) Subscribe(fn Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Open scans dataDir, loads the label store and shows the first image
func (s *Session) Open(dataDir string) (Snapshot, error) {
	s.mu.Lock()
	snap, err := s.open(dataDir)
	listeners := s.listeners
	s.mu.Unlock()

	if err == nil {
		notify(listeners, snap)
	}
	return snap, err
}

func (s *Session) open(dataDir string) (Snapshot, error) {
	if err := s.state.Transition(models.StateScanning); err != nil {
		if s.state.Current() == models.StateClosed {
			return Snapshot{}, ErrSessionClosed
		}
		return Snapshot{}, err
	}

	start := time.Now()
	scan, err := services.ScanDir(dataDir, s.opts.Extensions)
	if err != nil {
		_ = s.state.Transition(models.StateIdle)
		return Snapshot{}, err
	}
	paths := scan.Keys
	if len(scan.Duplicates) > 0 {
		s.logger.Warning("Images share a key with another image and are skipped", map[string]interface{}{
			"data_dir": dataDir,
			"files":    scan.Duplicates,
		})
	}
	if len(paths) == 0 {
		_ = s.state.Transition(models.StateIdle)
		s.logger.Warning("No images found", map[string]interface{}{"data_dir": dataDir})
		return Snapshot{}, fmt.Errorf("%w in %s", ErrNoImages, dataDir)
	}

	storePath := s.opts.StorePath
	if storePath == "" {
		storePath = "annotations.csv"
	}
	storePath = services.ResolveStorePath(dataDir, storePath)
	store, err := services.NewStore(storePath, s.opts.StoreFormat, s.logger)
	if err != nil {
		_ = s.state.Transition(models.StateIdle)
		return Snapshot{}, err
	}

	table, existed, err := store.Load(paths)
	if err != nil {
		_ = s.state.Transition(models.StateIdle)
		return Snapshot{}, err
	}

	cursor, err := navigation.NewCursor(paths)
	if err != nil {
		_ = s.state.Transition(models.StateIdle)
		return Snapshot{}, err
	}
	if err := s.state.Transition(models.StateLoaded); err != nil {
		return Snapshot{}, err
	}

	s.scan = scan
	s.store = store
	s.table = table
	s.cursor = cursor
	s.storeExisted = existed

	cursor.SetUnlabeledOnly(s.opts.UnlabeledOnly)
	_, s.finished = cursor.First(table.AnnotatedPaths())
	table.MarkSeen(cursor.Path())

	if err := s.state.Transition(models.StateBrowsing); err != nil {
		return Snapshot{}, err
	}

	s.logger.Info("Session opened", map[string]interface{}{
		"data_dir":      dataDir,
		"images":        len(paths),
		"store":         storePath,
		"store_existed": existed,
		"duration_ms":   time.Since(start).Milliseconds(),
	})
	return s.snapshot(), nil
}

// Dispatch applies one command and returns the resulting snapshot, which always
// describes the current position. A move whose autosave failed still moved:
// listeners are notified of it and the save error is returned.
func (s *Session) Dispatch(cmd Command) (Snapshot, error) {
	s.mu.Lock()
	before := -1
	if s.cursor != nil {
		before = s.cursor.Index()
	}
	snap, err := s.dispatch(cmd)
	moved := s.cursor != nil && s.cursor.Index() != before
	listeners := s.listeners
	s.mu.Unlock()

	if err != nil {
		s.logger.Warning("Command failed", map[string]interface{}{
			"command": cmd.commandName(),
			"error":   err.Error(),
			"moved":   moved,
		})
		if moved {
			notify(listeners, snap)
		}
		return snap, err
	}
	notify(listeners, snap)
	return snap, nil
}

func (s *Session) dispatch(cmd Command) (Snapshot, error) {
	switch s.state.Current() {
	case models.StateClosed:
		return Snapshot{State: models.StateClosed}, ErrSessionClosed
	case models.StateBrowsing:
	default:
		return Snapshot{State: s.state.Current()}, ErrNotOpen
	}

	switch c := cmd.(type) {
	case ToggleTag:
		path := c.Path
		if path == "" {
			path = s.cursor.Path()
		}
		if !c.Tag.Valid() {
			return s.snapshot(), fmt.Errorf("toggle %s: %w", c.Tag, labels.ErrUnknownTag)
		}
		s.table.SetTag(path, c.Tag, c.Value)
		s.logger.Debug("Tag set", map[string]interface{}{
			"path":  path,
			"tag":   c.Tag.String(),
			"value": c.Value,
		})
		return s.snapshot(), nil

	case Advance:
		_, s.finished = s.cursor.Advance(c.Direction, s.table.AnnotatedPaths())
		if s.finished {
			s.logger.Info("All images annotated", map[string]interface{}{"count": s.cursor.Count()})
		}
		return s.arrive()

	case JumpTo:
		if _, err := s.cursor.JumpToPath(c.Path); err != nil {
			return s.snapshot(), err
		}
		s.finished = false
		return s.arrive()

	case SetUnlabeledOnly:
		s.cursor.SetUnlabeledOnly(c.Enabled)
		s.finished = false
		return s.snapshot(), nil

	case Save:
		if err := s.save(); err != nil {
			return s.snapshot(), err
		}
		return s.snapshot(), nil

	case Close:
		if err := s.save(); err != nil {
			return s.snapshot(), err
		}
		if err := s.state.Transition(models.StateClosed); err != nil {
			return s.snapshot(), err
		}
		s.logger.Info("Session closed", map[string]interface{}{
			"saves": s.state.SaveCount(),
		})
		return s.snapshot(), nil

	default:
		return s.snapshot(), fmt.Errorf("unsupported command %T", cmd)
	}
}

// arrive marks the current image seen and autosaves
func (s *Session) arrive() (Snapshot, error) {
	s.table.MarkSeen(s.cursor.Path())
	if s.opts.Autosave {
		if err := s.save(); err != nil {
			return s.snapshot(), err
		}
	}
	return s.snapshot(), nil
}

func (s *Session) save() error {
	if err := s.state.Transition(models.StateSaving); err != nil {
		return err
	}
	err := s.store.Save(s.table)
	if terr := s.state.Transition(models.StateBrowsing); terr != nil && err == nil {
		err = terr
	}
	if err != nil {
		s.logger.Error("Save failed", err, map[string]interface{}{"store": s.store.Path()})
		return fmt.Errorf("save annotations: %w", err)
	}
	s.lastSave = time.Now()
	return nil
}

// Flush saves the table if the session is browsing. It is safe to call from a
// signal handler goroutine and after Close.
func (s *Session) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Current() != models.StateBrowsing {
		return nil
	}
	return s.save()
}

// Snapshot returns the current state without changing it
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor == nil {
		return Snapshot{State: s.state.Current()}
	}
	return s.snapshot()
}

// AnnotatedList returns the sorted keys of every annotated image in the table,
// for the picker of already-labeled images.
func (s *Session) AnnotatedList() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.table == nil {
		return nil
	}
	return s.table.AnnotatedList()
}

// Stats returns per-tag counts for the whole table
func (s *Session) Stats() models.TableStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.table == nil {
		return models.NewAnnotationTable().Stats()
	}
	return s.table.Stats()
}

// LastSave returns when the table was last written, zero if never
func (s *Session) LastSave() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSave
}

func (s *Session) snapshot() Snapshot {
	path := s.cursor.Path()
	annotated := s.table.AnnotatedPaths()
	remaining := s.cursor.Remaining(annotated)
	return Snapshot{
		Path:          path,
		AbsPath:       s.scan.Resolve(path),
		Index:         s.cursor.Index(),
		Count:         s.cursor.Count(),
		Row:           s.table.GetRow(path),
		UnlabeledOnly: s.cursor.UnlabeledOnly(),
		Finished:      s.finished,
		Remaining:     remaining,
		Annotated:     s.cursor.Count() - remaining,
		StoreExisted:  s.storeExisted,
		StorePath:     s.store.Path(),
		State:         s.state.Current(),
	}
}

func notify(listeners []Listener, snap Snapshot) {
	for _, fn := range listeners {
		fn(snap)
	}
}
