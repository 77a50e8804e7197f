package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"math"
)

// UnknownStat is the literal stored for a deliberately unspecified stat.
const UnknownStat = "unknown"

// Stat bounds. The editor widgets and the persisted format both use them.
const (
	MinStat     = 0
	MaxStat     = 100
	DefaultStat = 50
)

// BaseStats are seeded into every new draft, in display order.
var BaseStats = []string{"strength", "agility", "intelligence", "charisma"}

// ErrInvalidStat is returned for any stat value that is neither an integer in
// [MinStat, MaxStat] nor the "unknown" sentinel.
var ErrInvalidStat = errors.New("invalid stat value")

// StatValue is either a known integer score or the "unknown" sentinel.
// The zero value is a known score of 0.
type StatValue struct {
	score   int
	unknown bool
}

// Known returns a numeric stat value. Range is checked by Validate.
func Known(score int) StatValue {
	return StatValue{score: score}
}

// Unknown returns the sentinel value.
func Unknown() StatValue {
	return StatValue{unknown: true}
}

// IsUnknown reports whether v is the sentinel.
func (v StatValue) IsUnknown() bool { return v.unknown }

// Score returns the numeric value and false for the sentinel.
func (v StatValue) Score() (int, bool) {
	if v.unknown {
		return 0, false
	}
	return v.score, true
}

// Validate checks the [MinStat, MaxStat] range for known values.
func (v StatValue) Validate() error {
	if v.unknown {
		return nil
	}
	if v.score < MinStat || v.score > MaxStat {
		return fmt.Errorf("%w: %d out of range [%d,%d]", ErrInvalidStat, v.score, MinStat, MaxStat)
	}
	return nil
}

func (v StatValue) String() string {
	if v.unknown {
		return UnknownStat
	}
	return fmt.Sprintf("%d", v.score)
}

// MarshalJSON writes a number or the "unknown" string.
func (v StatValue) MarshalJSON() ([]byte, error) {
	if v.unknown {
		return json.Marshal(UnknownStat)
	}
	return json.Marshal(v.score)
}

// UnmarshalJSON accepts an integral number in range or the "unknown" string.
func (v *StatValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("%w: null", ErrInvalidStat)
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s != UnknownStat {
			return fmt.Errorf("%w: %q", ErrInvalidStat, s)
		}
		*v = Unknown()
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidStat, data)
	}
	if f != math.Trunc(f) {
		return fmt.Errorf("%w: %v is not an integer", ErrInvalidStat, f)
	}
	parsed := Known(int(f))
	if err := parsed.Validate(); err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Stat is one named entry of a Stats mapping.
type Stat struct {
	Name  string
	Value StatValue
}

// Stats maps user-defined stat names to values and remembers insertion order,
// so the editor and the detail overlay list stats the way they were added.
// It serializes as a plain JSON object.
type Stats struct {
	entries []Stat
}

// DefaultStats returns the base four stats at DefaultStat.
func DefaultStats() Stats {
	var s Stats
	for _, name := range BaseStats {
		s.Set(name, Known(DefaultStat))
	}
	return s
}

// Len returns the number of stats.
func (s Stats) Len() int { return len(s.entries) }

// Get returns the value for name.
func (s Stats) Get(name string) (StatValue, bool) {
	if i := s.index(name); i >= 0 {
		return s.entries[i].Value, true
	}
	return StatValue{}, false
}

// Has reports whether name is present.
func (s Stats) Has(name string) bool { return s.index(name) >= 0 }

// Set replaces the value of an existing stat in place or appends a new one.
func (s *Stats) Set(name string, v StatValue) {
	if i := s.index(name); i >= 0 {
		s.entries[i].Value = v
		return
	}
	s.entries = append(s.entries, Stat{Name: name, Value: v})
}

// Delete removes name. Missing names are ignored.
func (s *Stats) Delete(name string) {
	i := s.index(name)
	if i < 0 {
		return
	}
	s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
	if len(s.entries) == 0 {
		s.entries = nil
	}
}

// Names returns the stat names in order.
func (s Stats) Names() []string {
	names := make([]string, len(s.entries))
	for i, e := range s.entries {
		names[i] = e.Name
	}
	return names
}

// All iterates over the stats in order.
func (s Stats) All() iter.Seq2[string, StatValue] {
	return func(yield func(string, StatValue) bool) {
		for _, e := range s.entries {
			if !yield(e.Name, e.Value) {
				return
			}
		}
	}
}

// Clone returns a copy that shares no storage with s.
func (s Stats) Clone() Stats {
	if s.entries == nil {
		return Stats{}
	}
	out := make([]Stat, len(s.entries))
	copy(out, s.entries)
	return Stats{entries: out}
}

// Validate checks every value.
func (s Stats) Validate() error {
	for _, e := range s.entries {
		if err := e.Value.Validate(); err != nil {
			return fmt.Errorf("stat %q: %w", e.Name, err)
		}
	}
	return nil
}

func (s Stats) index(name string) int {
	for i, e := range s.entries {
		if e.Name == name {
			return i
		}
	}
	return -1
}

// MarshalJSON writes the stats as a JSON object in insertion order.
func (s Stats) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range s.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Name)
		if err != nil {
			return nil, err
		}
		val, err := e.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping key order. A repeated key keeps
// its first position and its last value. null decodes to empty stats.
func (s *Stats) UnmarshalJSON(data []byte) error {
	out, _, err := decodeStats(data, false)
	if err != nil {
		return err
	}
	*s = out
	return nil
}

// decodeStats parses a stats object. When lenient is set, a value that is
// not a valid stat is read as unknown and its name is returned in coerced
// instead of failing the whole object.
func decodeStats(data []byte, lenient bool) (out Stats, coerced []string, err error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return Stats{}, nil, err
	}
	if tok == nil {
		return Stats{}, nil, nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return Stats{}, nil, fmt.Errorf("stats: expected object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Stats{}, nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return Stats{}, nil, fmt.Errorf("stats: expected key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return Stats{}, nil, fmt.Errorf("stat %q: %w", name, err)
		}
		var v StatValue
		if err := v.UnmarshalJSON(raw); err != nil {
			if !lenient {
				return Stats{}, nil, fmt.Errorf("stat %q: %w", name, err)
			}
			v = Unknown()
			coerced = append(coerced, name)
		}
		out.Set(name, v)
	}
	if _, err := dec.Token(); err != nil {
		return Stats{}, nil, err
	}
	return out, coerced, nil
}
