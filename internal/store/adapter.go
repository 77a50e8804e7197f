package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"

	"github.com/kittclouds/roster/internal/logging"
)

// DefaultKey is the slot the roster lives under.
const DefaultKey = "rpg-characters"

// Adapter serializes the full roster into one slot. Every Save rewrites the
// whole value; there are no partial writes.
type Adapter struct {
	slot Slot
	key  string
	log  *log.Logger
}

// NewAdapter binds slot under key. An empty key means DefaultKey.
func NewAdapter(slot Slot, key string, logger *log.Logger) *Adapter {
	if key == "" {
		key = DefaultKey
	}
	return &Adapter{slot: slot, key: key, log: logging.OrDiscard(logger)}
}

// Key returns the slot key.
func (a *Adapter) Key() string { return a.key }

// Load reads the persisted roster. Absent or unparseable data yields an
// empty roster; the caller never sees an error. A stat value that is not a
// valid stat is read as unknown, a record that cannot be decoded at all is
// dropped on its own, and records repeating an earlier id are dropped so ids
// stay unique.
func (a *Adapter) Load() []*Character {
	raw, ok, err := a.slot.Get(a.key)
	if err != nil {
		a.log.Printf("load %s: %v (starting empty)", a.key, err)
		return []*Character{}
	}
	if !ok || raw == "" {
		return []*Character{}
	}

	var records []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		a.log.Printf("load %s: malformed roster: %v (starting empty)", a.key, err)
		return []*Character{}
	}

	roster := make([]*Character, 0, len(records))
	seen := make(map[string]bool, len(records))
	for i, rec := range records {
		c, coerced, err := decodeRecord(rec)
		if err != nil {
			a.log.Printf("load %s: dropping record %d: %v", a.key, i, err)
			continue
		}
		if c == nil {
			continue
		}
		for _, name := range coerced {
			a.log.Printf("load %s: record %q: stat %q is not a valid value, reading it as unknown", a.key, c.ID, name)
		}
		if seen[c.ID] {
			a.log.Printf("load %s: dropping duplicate id %q", a.key, c.ID)
			continue
		}
		seen[c.ID] = true
		roster = append(roster, c)
	}
	return roster
}

// decodeRecord reads one persisted record with lenient stats. A JSON null
// yields a nil character.
func decodeRecord(data json.RawMessage) (*Character, []string, error) {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, nil, nil
	}
	type plain Character
	var rec struct {
		plain
		Stats json.RawMessage `json:"stats"`
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, nil, err
	}
	c := Character(rec.plain)
	if len(rec.Stats) == 0 {
		return &c, nil, nil
	}
	stats, coerced, err := decodeStats(rec.Stats, true)
	if err != nil {
		return nil, nil, err
	}
	c.Stats = stats
	return &c, coerced, nil
}

// Save overwrites the slot with the full roster.
func (a *Adapter) Save(roster []*Character) error {
	data, err := encode(roster, false)
	if err != nil {
		return err
	}
	if err := a.slot.Set(a.key, string(data)); err != nil {
		return fmt.Errorf("save %s: %w", a.key, err)
	}
	return nil
}

// Export returns the persisted roster as an indented JSON array in the slot
// layout.
func (a *Adapter) Export() ([]byte, error) {
	return encode(a.Load(), true)
}

// Import replaces the persisted roster with data. Every record must be a
// valid committed character with a unique id; otherwise nothing is written.
func (a *Adapter) Import(data []byte) (int, error) {
	var roster []*Character
	if err := json.Unmarshal(data, &roster); err != nil {
		return 0, fmt.Errorf("import unmarshal: %w", err)
	}

	seen := make(map[string]bool, len(roster))
	for i, c := range roster {
		if c == nil {
			return 0, fmt.Errorf("import record %d: null", i)
		}
		if err := c.Validate(); err != nil {
			return 0, fmt.Errorf("import record %d: %w", i, err)
		}
		if seen[c.ID] {
			return 0, fmt.Errorf("import record %d: duplicate id %q", i, c.ID)
		}
		seen[c.ID] = true
	}

	if err := a.Save(roster); err != nil {
		return 0, err
	}
	return len(roster), nil
}

func encode(roster []*Character, indent bool) ([]byte, error) {
	if roster == nil {
		roster = []*Character{}
	}
	var (
		data []byte
		err  error
	)
	if indent {
		data, err = json.MarshalIndent(roster, "", "  ")
	} else {
		data, err = json.Marshal(roster)
	}
	if err != nil {
		return nil, fmt.Errorf("encode roster: %w", err)
	}
	return data, nil
}
