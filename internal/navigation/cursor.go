// Package navigation moves through the ordered list of discovered images,
// optionally skipping images that already carry a tag.
package navigation

import (
	"errors"
	"fmt"
)

var (
	// ErrPathNotFound is returned when a jump targets a path outside the scan
	ErrPathNotFound = errors.New("path not found among discovered images")
	// ErrOutOfRange is returned when a jump targets an index outside [0, count)
	ErrOutOfRange = errors.New("image index out of range")
	// ErrEmpty is returned by NewCursor when there is nothing to browse
	ErrEmpty = errors.New("no images to browse")
)

// Direction selects which neighbour Advance moves to
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Cursor tracks the displayed image. The index is always in [0, Count()).
type Cursor struct {
	paths         []string
	index         map[string]int
	current       int
	unlabeledOnly bool
}

// NewCursor positions a cursor on the first of the given paths. The order of
// paths is the scan order and is kept for the lifetime of the cursor.
func NewCursor(paths []string) (*Cursor, error) {
	if len(paths) == 0 {
		return nil, ErrEmpty
	}
	c := &Cursor{
		paths: append([]string(nil), paths...),
		index: make(map[string]int, len(paths)),
	}
	for i, p := range c.paths {
		if _, dup := c.index[p]; !dup {
			c.index[p] = i
		}
	}
	return c, nil
}

// Index returns the current position
func (c *Cursor) Index() int { return c.current }

// Count returns the number of images
func (c *Cursor) Count() int { return len(c.paths) }

// Path returns the path at the current position
func (c *Cursor) Path() string { return c.paths[c.current] }

// PathAt returns the path at index i
func (c *Cursor) PathAt(i int) (string, error) {
	if i < 0 || i >= len(c.paths) {
		return "", fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfRange, i, len(c.paths))
	}
	return c.paths[i], nil
}

// Paths returns a copy of the ordered paths
func (c *Cursor) Paths() []string { return append([]string(nil), c.paths...) }

// UnlabeledOnly reports whether annotated images are skipped
func (c *Cursor) UnlabeledOnly() bool { return c.unlabeledOnly }

// SetUnlabeledOnly switches the navigation filter
func (c *Cursor) SetUnlabeledOnly(enabled bool) { c.unlabeledOnly = enabled }

// Advance moves one step in the given direction and returns the new index.
//
// In unlabeled-only mode the step lands on the nearest index in that direction
// whose path is not in annotated, wrapping around the ends. When every path is
// annotated the cursor resets to 0 and finished is true.
func (c *Cursor) Advance(dir Direction, annotated map[string]struct{}) (index int, finished bool) {
	n := len(c.paths)
	step := 1
	if dir == Backward {
		step = -1
	}

	if !c.unlabeledOnly {
		c.current = ((c.current+step)%n + n) % n
		return c.current, false
	}

	// Walk at most n positions starting strictly after the current one; the
	// last position visited is the current index itself.
	for k := 1; k <= n; k++ {
		i := ((c.current+step*k)%n + n) % n
		if !isAnnotated(c.paths[i], annotated) {
			c.current = i
			return c.current, false
		}
	}
	c.current = 0
	return c.current, true
}

// First places the cursor at the start of a session: index 0, or in
// unlabeled-only mode the first unlabeled index.
func (c *Cursor) First(annotated map[string]struct{}) (index int, finished bool) {
	if !c.unlabeledOnly {
		c.current = 0
		return 0, false
	}
	for i, p := range c.paths {
		if !isAnnotated(p, annotated) {
			c.current = i
			return i, false
		}
	}
	c.current = 0
	return 0, true
}

// JumpTo sets the cursor directly
func (c *Cursor) JumpTo(index int) error {
	if index < 0 || index >= len(c.paths) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfRange, index, len(c.paths))
	}
	c.current = index
	return nil
}

// JumpToPath sets the cursor to the image with the given path
func (c *Cursor) JumpToPath(path string) (int, error) {
	i, ok := c.index[path]
	if !ok {
		return c.current, fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}
	c.current = i
	return i, nil
}

// Remaining counts discovered paths not in annotated
func (c *Cursor) Remaining(annotated map[string]struct{}) int {
	n := 0
	for _, p := range c.paths {
		if !isAnnotated(p, annotated) {
			n++
		}
	}
	return n
}

func isAnnotated(path string, annotated map[string]struct{}) bool {
	_, ok := annotated[path]
	return ok
}
