package controllers

import (
	"ecg-annotator/internal/labels"
	"ecg-annotator/internal/models"
	"ecg-annotator/internal/navigation"
)

// Command is one operator action consumed by Session.Dispatch
type Command interface {
	commandName() string
}

// ToggleTag sets one tag on an image. An empty Path targets the current image.
type ToggleTag struct {
	Path  string
	Tag   labels.Tag
	Value bool
}

// Advance moves to the next or previous image
type Advance struct {
	Direction navigation.Direction
}

// JumpTo moves to a specific image by its store key
type JumpTo struct {
	Path string
}

// SetUnlabeledOnly switches unlabeled-only browsing. It takes effect on the next move.
type SetUnlabeledOnly struct {
	Enabled bool
}

// Save writes the table to the label store
type Save struct{}

// Close saves and ends the session
type Close struct{}

func (ToggleTag) commandName() string        { return "toggle_tag" }
func (Advance) commandName() string          { return "advance" }
func (JumpTo) commandName() string           { return "jump_to" }
func (SetUnlabeledOnly) commandName() string { return "set_unlabeled_only" }
func (Save) commandName() string             { return "save" }
func (Close) commandName() string            { return "close" }

// Snapshot is what the presentation layer renders after each command
type Snapshot struct {
	Path          string
	AbsPath       string
	Index         int
	Count         int
	Row           models.AnnotationRow
	UnlabeledOnly bool
	// Finished is set when unlabeled-only browsing ran out of images
	Finished     bool
	Remaining    int
	Annotated    int
	StoreExisted bool
	StorePath    string
	State        models.SessionState
}

// HasMore reports whether unlabeled images remain
func (s Snapshot) HasMore() bool { return s.Remaining > 0 }
