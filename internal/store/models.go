// Package store provides the persisted data layer of the roster: the
// character model, the key-value slots it is written to, and the adapter that
// moves a whole roster in and out of one slot.
package store

import (
	"errors"
	"fmt"
	"strings"
)

// FallbackImageURL is shown by the detail overlay when a record has no image.
const FallbackImageURL = "https://images.unsplash.com/photo-1580234811497-9df7fd2f357e?auto=format&fit=crop&q=80&w=2047&ixlib=rb-4.0.3"

var (
	// ErrIncomplete marks a record missing a field required for the roster.
	ErrIncomplete = errors.New("incomplete character")
	// ErrNotFound is returned by lookups of an id that is not in the roster.
	ErrNotFound = errors.New("character not found")
)

// Character is one roster record. Field names match the persisted layout
// under the "rpg-characters" slot.
type Character struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	ImageURL         string `json:"imageUrl"`
	ShortDescription string `json:"shortDescription"`
	Story            string `json:"story"`
	Stats            Stats  `json:"stats"`
	Background       string `json:"background"`
	Class            string `json:"class"`
}

// Clone returns a deep copy. Stats are copied so edits to the clone never
// reach the original.
func (c *Character) Clone() *Character {
	if c == nil {
		return nil
	}
	out := *c
	out.Stats = c.Stats.Clone()
	return &out
}

// DisplayImage returns the image URL, or FallbackImageURL when it is empty.
func (c *Character) DisplayImage() string {
	if c.ImageURL == "" {
		return FallbackImageURL
	}
	return c.ImageURL
}

// Validate checks the invariants of a committed record.
func (c *Character) Validate() error {
	var missing []string
	if c.ID == "" {
		missing = append(missing, "id")
	}
	if c.Name == "" {
		missing = append(missing, "name")
	}
	if c.ImageURL == "" {
		missing = append(missing, "imageUrl")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncomplete, strings.Join(missing, ", "))
	}
	return c.Stats.Validate()
}

// SiteConfig holds the page title and subtitle.
type SiteConfig struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

// DefaultSiteConfig is the title shown on a fresh page.
func DefaultSiteConfig() SiteConfig {
	return SiteConfig{
		Title:    "Beneath a Shattered Sky",
		Subtitle: "A burning dream, a wild journey and four brave souls...",
	}
}

// Neighbor is a character close to another one by stat profile.
type Neighbor struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Distance float64 `json:"distance"`
}

// Slot is a single-key view over a key-value storage backend.
// Get reports ok=false when the key has never been written.
type Slot interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// Storer moves a whole roster in and out of persistence.
// Adapter is the implementation used everywhere; tests substitute fakes.
type Storer interface {
	Load() []*Character
	Save(roster []*Character) error
}
