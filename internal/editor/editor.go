// Package editor holds the draft of the character being created or edited.
// The draft is a private copy; nothing reaches the roster until Commit.
package editor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kittclouds/roster/internal/store"
)

// Field names accepted by SetField. They match the persisted JSON keys.
const (
	FieldName             = "name"
	FieldClass            = "class"
	FieldShortDescription = "shortDescription"
	FieldBackground       = "background"
	FieldStory            = "story"
	FieldImageURL         = "imageUrl"
)

var (
	ErrNoDraft      = errors.New("no draft open")
	ErrUnknownField = errors.New("unknown field")
	ErrStatName     = errors.New("stat name is required")
	ErrStatExists   = errors.New("stat already exists")
)

// ValidationError lists the required fields a draft is missing at commit.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}

// Is lets callers match any validation failure with store.ErrIncomplete.
func (e *ValidationError) Is(target error) bool {
	return target == store.ErrIncomplete
}

// Editor is the form state behind the editor overlay.
type Editor struct {
	ids     *IDSource
	draft   *store.Character
	editing bool
}

// New creates an editor with no open draft.
func New(ids *IDSource) *Editor {
	if ids == nil {
		ids = NewIDSource(nil)
	}
	return &Editor{ids: ids}
}

// BeginCreate opens an empty draft seeded with the base stats.
func (e *Editor) BeginCreate() {
	e.draft = &store.Character{Stats: store.DefaultStats()}
	e.editing = false
}

// BeginEdit opens a copy of c. The copy keeps c's id.
func (e *Editor) BeginEdit(c *store.Character) {
	e.draft = c.Clone()
	e.editing = true
}

// Active reports whether a draft is open.
func (e *Editor) Active() bool { return e.draft != nil }

// Editing reports whether the open draft edits an existing record.
func (e *Editor) Editing() bool { return e.draft != nil && e.editing }

// Draft returns a copy of the open draft, or nil.
func (e *Editor) Draft() *store.Character { return e.draft.Clone() }

// Discard closes the draft without committing.
func (e *Editor) Discard() {
	e.draft = nil
	e.editing = false
}

// SetField sets one of the scalar fields.
func (e *Editor) SetField(name, value string) error {
	if e.draft == nil {
		return ErrNoDraft
	}
	switch name {
	case FieldName:
		e.draft.Name = value
	case FieldClass:
		e.draft.Class = value
	case FieldShortDescription:
		e.draft.ShortDescription = value
	case FieldBackground:
		e.draft.Background = value
	case FieldStory:
		e.draft.Story = value
	case FieldImageURL:
		e.draft.ImageURL = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return nil
}

// SetStat stores "unknown" as the sentinel and anything else as an integer
// score. Input that is not an integer in range leaves the draft unchanged.
func (e *Editor) SetStat(stat, raw string) error {
	if e.draft == nil {
		return ErrNoDraft
	}
	raw = strings.TrimSpace(raw)
	if raw == store.UnknownStat {
		e.draft.Stats.Set(stat, store.Unknown())
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%w: %q", store.ErrInvalidStat, raw)
	}
	v := store.Known(n)
	if err := v.Validate(); err != nil {
		return err
	}
	e.draft.Stats.Set(stat, v)
	return nil
}

// AddStat inserts a new stat at the default score. Names are trimmed; an
// empty name or one already on the draft is rejected.
func (e *Editor) AddStat(name string) error {
	if e.draft == nil {
		return ErrNoDraft
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrStatName
	}
	if e.draft.Stats.Has(name) {
		return fmt.Errorf("%w: %q", ErrStatExists, name)
	}
	e.draft.Stats.Set(name, store.Known(store.DefaultStat))
	return nil
}

// RemoveStat deletes a stat; missing names are ignored.
func (e *Editor) RemoveStat(name string) error {
	if e.draft == nil {
		return ErrNoDraft
	}
	e.draft.Stats.Delete(name)
	return nil
}

// Commit validates the draft and returns the record for the roster. New
// records get a fresh id that taken does not claim; edited ones keep theirs.
// On failure the draft stays open for correction. On success it is closed.
func (e *Editor) Commit(taken func(id string) bool) (*store.Character, error) {
	if e.draft == nil {
		return nil, ErrNoDraft
	}

	var missing []string
	if e.draft.Name == "" {
		missing = append(missing, FieldName)
	}
	if e.draft.ImageURL == "" {
		missing = append(missing, FieldImageURL)
	}
	if e.draft.Stats.Len() == 0 {
		missing = append(missing, "stats")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Missing: missing}
	}

	out := e.draft.Clone()
	if !e.editing || out.ID == "" {
		out.ID = e.ids.Next(taken)
	}
	e.Discard()
	return out, nil
}
