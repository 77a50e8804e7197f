// Package session owns everything the page shows: the roster, the selected
// character, the open editor, the drag in progress and the site title.
// The page sends one intent per user action and re-renders from the
// returned State.
package session

import (
	"errors"
	"log"

	"github.com/kittclouds/roster/internal/dragdrop"
	"github.com/kittclouds/roster/internal/editor"
	"github.com/kittclouds/roster/internal/logging"
	"github.com/kittclouds/roster/internal/roster"
	"github.com/kittclouds/roster/internal/store"
	"github.com/kittclouds/roster/pkg/portrait"
	"github.com/kittclouds/roster/pkg/search"
)

// SimilarLimit caps the similar-characters list in the detail overlay.
const SimilarLimit = 3

// Similarity ranks characters by stat profile. store.StatIndex implements it.
type Similarity interface {
	Nearest(roster []*store.Character, id string, k int) ([]store.Neighbor, error)
}

// Options configures a Session. Zero values are usable.
type Options struct {
	Logger *log.Logger
	IDs    *editor.IDSource
	// Similar is optional; without it the detail overlay lists no neighbours.
	Similar Similarity
	// PortraitMaxDim bounds attached images; 0 means portrait.DefaultMaxDim.
	PortraitMaxDim int
}

// State is the full view model returned by every intent.
type State struct {
	Characters   []*store.Character `json:"characters"`
	Total        int                `json:"total"`
	Query        string             `json:"query,omitempty"`
	Selected     *Detail            `json:"selected,omitempty"`
	Editor       *EditorState       `json:"editor,omitempty"`
	Site         store.SiteConfig   `json:"site"`
	EditingTitle bool               `json:"editingTitle"`
	Drag         dragdrop.Status    `json:"drag"`
	Error        string             `json:"error,omitempty"`
}

// Detail is the detail overlay for one character.
type Detail struct {
	Character *store.Character `json:"character"`
	Image     string           `json:"image"`
	Mentions  []string         `json:"mentions"`
	Similar   []store.Neighbor `json:"similar"`
}

// EditorState is the editor overlay.
type EditorState struct {
	Draft   *store.Character `json:"draft"`
	Editing bool             `json:"editing"`
}

// Session is the single owner of UI state.
type Session struct {
	roster  *roster.Store
	persist *store.Adapter
	editor  *editor.Editor
	drag    dragdrop.Machine
	similar Similarity
	maxDim  int
	log     *log.Logger

	site         store.SiteConfig
	editingTitle bool
	selected     string
	query        string
	lastErr      string

	index *search.Index
}

// New loads the roster through persist and starts with nothing open.
func New(persist *store.Adapter, opts Options) *Session {
	logger := logging.OrDiscard(opts.Logger)
	return &Session{
		roster:  roster.New(persist, logger),
		persist: persist,
		editor:  editor.New(opts.IDs),
		similar: opts.Similar,
		maxDim:  opts.PortraitMaxDim,
		log:     logger,
		site:    store.DefaultSiteConfig(),
	}
}

// State returns the current view model without changing anything.
func (s *Session) State() State {
	st := State{
		Total:        s.roster.Len(),
		Query:        s.query,
		Site:         s.site,
		EditingTitle: s.editingTitle,
		Drag:         s.drag.Status(),
		Error:        s.lastErr,
	}

	all := s.roster.List()
	st.Characters = all
	if s.query != "" {
		if ids, err := s.searchIndex().Filter(s.query); err != nil {
			s.log.Printf("filter %q: %v", s.query, err)
		} else {
			st.Characters = pick(all, ids)
		}
	}

	if s.selected != "" {
		if c, ok := s.roster.Get(s.selected); ok {
			st.Selected = s.detail(c, all)
		}
	}
	if s.editor.Active() {
		st.Editor = &EditorState{Draft: s.editor.Draft(), Editing: s.editor.Editing()}
	}
	return st
}

// Roster returns the underlying store for read access.
func (s *Session) Roster() *roster.Store { return s.roster }

// Select opens the detail overlay. Unknown ids are ignored.
func (s *Session) Select(id string) State {
	s.begin()
	if s.roster.Has(id) {
		s.selected = id
	}
	return s.State()
}

// CloseDetail closes the detail overlay.
func (s *Session) CloseDetail() State {
	s.begin()
	s.selected = ""
	return s.State()
}

// OpenCreate opens the editor on a new draft.
func (s *Session) OpenCreate() State {
	s.begin()
	s.editor.BeginCreate()
	return s.State()
}

// OpenEdit opens the editor on a copy of id and closes the detail overlay.
func (s *Session) OpenEdit(id string) State {
	s.begin()
	c, ok := s.roster.Get(id)
	if !ok {
		return s.State()
	}
	s.selected = ""
	s.editor.BeginEdit(c)
	return s.State()
}

// CloseEditor discards the draft. Nothing is persisted.
func (s *Session) CloseEditor() State {
	s.begin()
	s.editor.Discard()
	return s.State()
}

// SetField sets a scalar draft field. A pasted base64 image data URL is
// shrunk through the same bounds as AttachImage when it can be decoded and
// kept as typed otherwise.
func (s *Session) SetField(name, value string) State {
	s.begin()
	if name == editor.FieldImageURL && s.editor.Active() {
		value = portrait.Normalize(value, s.maxDim)
	}
	s.fail(s.editor.SetField(name, value))
	return s.State()
}

// SetStat sets a draft stat from raw widget input.
func (s *Session) SetStat(stat, raw string) State {
	s.begin()
	s.fail(s.editor.SetStat(stat, raw))
	return s.State()
}

// AddStat adds a stat to the draft.
func (s *Session) AddStat(name string) State {
	s.begin()
	s.fail(s.editor.AddStat(name))
	return s.State()
}

// RemoveStat removes a stat from the draft.
func (s *Session) RemoveStat(name string) State {
	s.begin()
	s.fail(s.editor.RemoveStat(name))
	return s.State()
}

// AttachImage converts picked file bytes into the draft's image URL.
func (s *Session) AttachImage(data []byte) State {
	s.begin()
	if !s.editor.Active() {
		s.fail(editor.ErrNoDraft)
		return s.State()
	}
	url, err := portrait.FromBytes(data, s.maxDim)
	if err != nil {
		s.fail(err)
		return s.State()
	}
	s.fail(s.editor.SetField(editor.FieldImageURL, url))
	return s.State()
}

// Save commits the draft: new records are appended, edited ones replaced in
// place. Both close the editor without reopening the detail overlay. A
// rejected draft stays open with the reason in State.Error.
func (s *Session) Save() State {
	s.begin()
	editing := s.editor.Editing()
	c, err := s.editor.Commit(s.roster.Has)
	if err != nil {
		s.fail(err)
		return s.State()
	}

	if editing {
		_, err = s.roster.Update(c)
	} else {
		_, err = s.roster.Add(c)
	}
	s.invalidate()
	s.fail(err)
	return s.State()
}

// BeginDrag starts a drag of id with the named sensor.
func (s *Session) BeginDrag(id, sensor string) State {
	s.begin()
	sn, err := dragdrop.ParseSensor(sensor)
	if err != nil {
		s.fail(err)
		return s.State()
	}
	if !s.roster.Has(id) {
		return s.State()
	}
	s.fail(s.drag.Begin(id, sn))
	return s.State()
}

// DragOver records the card under the pointer; "" means none.
func (s *Session) DragOver(id string) State {
	s.begin()
	s.drag.Over(id)
	return s.State()
}

// DragStep moves a keyboard drag target through the visible order.
func (s *Session) DragStep(delta int) State {
	s.begin()
	s.drag.Step(s.visibleIDs(), delta)
	return s.State()
}

// Drop ends the drag and applies the reorder, if any.
func (s *Session) Drop(overID string) State {
	s.begin()
	in, ok := s.drag.Drop(overID)
	if !ok {
		return s.State()
	}
	_, err := s.roster.Reorder(in.ActiveID, in.OverID)
	s.invalidate()
	s.fail(err)
	return s.State()
}

// CancelDrag abandons the drag.
func (s *Session) CancelDrag() State {
	s.begin()
	s.drag.Cancel()
	return s.State()
}

// BeginTitleEdit switches the header into edit mode.
func (s *Session) BeginTitleEdit() State {
	s.begin()
	s.editingTitle = true
	return s.State()
}

// SetTitle updates the page title while editing.
func (s *Session) SetTitle(title string) State {
	s.begin()
	if s.editingTitle {
		s.site.Title = title
	}
	return s.State()
}

// SetSubtitle updates the page subtitle while editing.
func (s *Session) SetSubtitle(subtitle string) State {
	s.begin()
	if s.editingTitle {
		s.site.Subtitle = subtitle
	}
	return s.State()
}

// SaveTitle leaves edit mode. The title lives only as long as the session.
func (s *Session) SaveTitle() State {
	s.begin()
	s.editingTitle = false
	return s.State()
}

// Filter sets the roster search query; "" clears it.
func (s *Session) Filter(query string) State {
	s.begin()
	s.query = query
	return s.State()
}

// Reload re-reads the persisted roster, e.g. after an import. Selection and
// drag state referring to vanished ids are dropped.
func (s *Session) Reload() State {
	s.begin()
	s.roster.Reload()
	s.invalidate()
	if !s.roster.Has(s.selected) {
		s.selected = ""
	}
	s.drag.Cancel()
	return s.State()
}

// Import replaces the persisted roster with data and reloads.
func (s *Session) Import(data []byte) State {
	s.begin()
	n, err := s.persist.Import(data)
	if err != nil {
		s.fail(err)
		return s.State()
	}
	s.log.Printf("imported %d characters", n)
	return s.Reload()
}

// Export returns the persisted roster as JSON.
func (s *Session) Export() ([]byte, error) {
	return s.persist.Export()
}

func (s *Session) begin() { s.lastErr = "" }

func (s *Session) fail(err error) {
	if err == nil {
		return
	}
	var verr *editor.ValidationError
	if !errors.As(err, &verr) {
		s.log.Printf("intent failed: %v", err)
	}
	s.lastErr = err.Error()
}

func (s *Session) invalidate() { s.index = nil }

func (s *Session) searchIndex() *search.Index {
	if s.index == nil {
		idx, err := search.New(s.roster.List())
		if err != nil {
			s.log.Printf("search index: %v", err)
			idx, _ = search.New(nil)
		}
		s.index = idx
	}
	return s.index
}

func (s *Session) detail(c *store.Character, all []*store.Character) *Detail {
	d := &Detail{
		Character: c,
		Image:     c.DisplayImage(),
		Mentions:  s.searchIndex().Mentions(c),
	}
	if s.similar != nil {
		near, err := s.similar.Nearest(all, c.ID, SimilarLimit)
		if err != nil {
			s.log.Printf("similar %s: %v", c.ID, err)
		}
		d.Similar = near
	}
	return d
}

func (s *Session) visibleIDs() []string {
	st := s.State()
	ids := make([]string, len(st.Characters))
	for i, c := range st.Characters {
		ids[i] = c.ID
	}
	return ids
}

func pick(all []*store.Character, ids []string) []*store.Character {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := make([]*store.Character, 0, len(ids))
	for _, c := range all {
		if want[c.ID] {
			out = append(out, c)
		}
	}
	return out
}
