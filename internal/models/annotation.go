package models

import (
	"sort"
	"sync"

	"ecg-annotator/internal/labels"
)

// AnnotationRow holds the tag values and the Seen flag for one image
type AnnotationRow struct {
	Tags [labels.Count]bool
	Seen bool
}

// Has reports whether the given tag is set
func (r AnnotationRow) Has(tag labels.Tag) bool {
	if !tag.Valid() {
		return false
	}
	return r.Tags[tag]
}

// Annotated reports whether at least one tag is set. Seen does not count.
func (r AnnotationRow) Annotated() bool {
	for _, v := range r.Tags {
		if v {
			return true
		}
	}
	return false
}

// With returns a copy of the row with one tag changed
func (r AnnotationRow) With(tag labels.Tag, value bool) AnnotationRow {
	if tag.Valid() {
		r.Tags[tag] = value
	}
	return r
}

// AnnotationTable maps image paths, relative to the data directory, to their rows.
// Rows are stored by value so a reader never observes a half-applied change.
type AnnotationTable struct {
	mu   sync.RWMutex
	rows map[string]AnnotationRow
}

// NewAnnotationTable creates an empty table
func NewAnnotationTable() *AnnotationTable {
	return &AnnotationTable{rows: make(map[string]AnnotationRow)}
}

// SeedTable creates a table with an all-false row for every path
func SeedTable(paths []string) *AnnotationTable {
	t := &AnnotationTable{rows: make(map[string]AnnotationRow, len(paths))}
	for _, p := range paths {
		t.rows[p] = AnnotationRow{}
	}
	return t
}

// GetRow returns the row for path, creating an all-false row if none exists
func (t *AnnotationTable) GetRow(path string) AnnotationRow {
	t.mu.Lock()
	defer t.mu.Unlock()

	row, ok := t.rows[path]
	if !ok {
		t.rows[path] = row
	}
	return row
}

// Lookup returns the row for path without creating it
func (t *AnnotationTable) Lookup(path string) (AnnotationRow, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	row, ok := t.rows[path]
	return row, ok
}

// SetTag sets a single tag on the row for path
func (t *AnnotationTable) SetTag(path string, tag labels.Tag, value bool) {
	if !tag.Valid() {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows[path] = t.rows[path].With(tag, value)
}

// MarkSeen sets the Seen flag on the row for path
func (t *AnnotationTable) MarkSeen(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	row := t.rows[path]
	row.Seen = true
	t.rows[path] = row
}

// SetRow replaces the row for path
func (t *AnnotationTable) SetRow(path string, row AnnotationRow) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows[path] = row
}

// Delete removes the row for path. Only the explicit prune operation uses it.
func (t *AnnotationTable) Delete(path string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.rows[path]
	delete(t.rows, path)
	return ok
}

// Has reports whether a row exists for path
func (t *AnnotationTable) Has(path string) bool {
	_, ok := t.Lookup(path)
	return ok
}

// Len returns the number of rows
func (t *AnnotationTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

// Paths returns every key in sorted order
func (t *AnnotationTable) Paths() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	paths := make([]string, 0, len(t.rows))
	for p := range t.rows {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// AnnotatedPaths returns the set of paths with at least one tag set
func (t *AnnotationTable) AnnotatedPaths() map[string]struct{} {
	t.mu.RLock()
	defer t.mu.RUnlock()

	set := make(map[string]struct{})
	for p, row := range t.rows {
		if row.Annotated() {
			set[p] = struct{}{}
		}
	}
	return set
}

// AnnotatedList returns AnnotatedPaths as a sorted slice
func (t *AnnotationTable) AnnotatedList() []string {
	set := t.AnnotatedPaths()
	list := make([]string, 0, len(set))
	for p := range set {
		list = append(list, p)
	}
	sort.Strings(list)
	return list
}

// Merge imports rows from other. For a path present in both tables the receiver's
// row is kept; paths only present in other are copied unchanged. Merging a table
// into itself is a no-op.
func (t *AnnotationTable) Merge(other *AnnotationTable) {
	if other == nil || other == t {
		return
	}
	incoming := other.snapshot()

	t.mu.Lock()
	defer t.mu.Unlock()
	for p, row := range incoming {
		if _, ok := t.rows[p]; !ok {
			t.rows[p] = row
		}
	}
}

// Clone returns an independent copy of the table
func (t *AnnotationTable) Clone() *AnnotationTable {
	return &AnnotationTable{rows: t.snapshot()}
}

// Equal reports whether both tables hold the same paths with the same rows
func (t *AnnotationTable) Equal(other *AnnotationTable) bool {
	if other == nil {
		return false
	}
	if other == t {
		return true
	}
	a, b := t.snapshot(), other.snapshot()
	if len(a) != len(b) {
		return false
	}
	for p, row := range a {
		if o, ok := b[p]; !ok || o != row {
			return false
		}
	}
	return true
}

// Range calls fn for every row in path order
func (t *AnnotationTable) Range(fn func(path string, row AnnotationRow)) {
	rows := t.snapshot()
	paths := make([]string, 0, len(rows))
	for p := range rows {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		fn(p, rows[p])
	}
}

// TableStats summarizes a table for status display and the summary command
type TableStats struct {
	Rows      int
	Seen      int
	Annotated int
	PerTag    map[labels.Tag]int
}

// Stats counts rows, seen rows, annotated rows and rows per tag
func (t *AnnotationTable) Stats() TableStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	stats := TableStats{Rows: len(t.rows), PerTag: make(map[labels.Tag]int, labels.Count)}
	for _, row := range t.rows {
		if row.Seen {
			stats.Seen++
		}
		if row.Annotated() {
			stats.Annotated++
		}
		for _, tag := range labels.All() {
			if row.Tags[tag] {
				stats.PerTag[tag]++
			}
		}
	}
	return stats
}

func (t *AnnotationTable) snapshot() map[string]AnnotationRow {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]AnnotationRow, len(t.rows))
	for p, row := range t.rows {
		out[p] = row
	}
	return out
}
