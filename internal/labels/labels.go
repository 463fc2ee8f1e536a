// Package labels holds the fixed catalog of quality-control tags an operator can
// attach to an ECG scan.
package labels

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownTag is returned by Parse for names outside the catalog
var ErrUnknownTag = errors.New("unknown tag")

// Tag identifies one boolean quality label
type Tag int

const (
	Unreadable Tag = iota
	Obscured
	LowContrast
	SignalsIntersect
	GoodQuality
)

// SeenColumn is the column name of the Seen flag in persisted stores
const SeenColumn = "Seen"

type entry struct {
	name        string
	description string
}

var catalog = [...]entry{
	Unreadable:       {"Unreadable", "Unreadable"},
	Obscured:         {"Obscured", "Parts of image are obscured"},
	LowContrast:      {"Low_Contrast", "Low contrast between signal and image"},
	SignalsIntersect: {"Signals_Intersect", "Signals intersect"},
	GoodQuality:      {"Good_Quality", "Good quality and good contrast"},
}

// Count is the number of tags in the catalog
const Count = len(catalog)

// All returns the tags in display order
func All() []Tag {
	tags := make([]Tag, Count)
	for i := range tags {
		tags[i] = Tag(i)
	}
	return tags
}

// Valid reports whether t belongs to the catalog
func (t Tag) Valid() bool {
	return t >= 0 && int(t) < Count
}

// String returns the column identifier used in persisted stores
func (t Tag) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Tag(%d)", int(t))
	}
	return catalog[t].name
}

// Description returns the checkbox text shown to the operator
func (t Tag) Description() string {
	if !t.Valid() {
		return t.String()
	}
	return catalog[t].description
}

// Parse maps a column identifier back to its tag. Descriptions are accepted too,
// since older JSON stores were keyed by them. Matching ignores case and
// surrounding whitespace.
func Parse(name string) (Tag, error) {
	trimmed := strings.TrimSpace(name)
	for i, e := range catalog {
		if strings.EqualFold(e.name, trimmed) || strings.EqualFold(e.description, trimmed) {
			return Tag(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTag, name)
}

// Columns returns the store header after the path column: every tag name
// followed by the Seen column.
func Columns() []string {
	cols := make([]string, 0, Count+1)
	for _, t := range All() {
		cols = append(cols, t.String())
	}
	return append(cols, SeenColumn)
}
