package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteSlotGetSet(t *testing.T) {
	s, err := NewSQLiteSlot()
	require.NoError(t, err)
	defer s.Close()

	_, ok, err := s.Get(DefaultKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(DefaultKey, "[]"))
	require.NoError(t, s.Set(DefaultKey, `[{"id":"1"}]`))

	v, ok, err := s.Get(DefaultKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"1"}]`, v)

	ts, err := s.UpdatedAt(DefaultKey)
	require.NoError(t, err)
	assert.Positive(t, ts)
}

func TestSQLiteSlotPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.db")

	s, err := NewSQLiteSlotWithDSN(path)
	require.NoError(t, err)
	require.NoError(t, NewAdapter(s, "", nil).Save(sampleRoster()))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteSlotWithDSN(path)
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, sampleRoster(), NewAdapter(reopened, "", nil).Load())
}

func TestStatIndexNearest(t *testing.T) {
	idx, err := NewStatIndex()
	require.NoError(t, err)
	defer idx.Close()

	a := &Character{ID: "a", Name: "A"}
	a.Stats.Set("strength", Known(50))
	a.Stats.Set("agility", Known(50))

	b := &Character{ID: "b", Name: "B"}
	b.Stats.Set("strength", Known(50))
	b.Stats.Set("agility", Known(60))

	c := &Character{ID: "c", Name: "C"}
	c.Stats.Set("strength", Known(90))

	d := &Character{ID: "d", Name: "D"}
	d.Stats.Set("agility", Unknown())

	roster := []*Character{c, b, a, d}

	got, err := idx.Nearest(roster, "a", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "d", got[0].ID)
	assert.InDelta(t, 0, got[0].Distance, 1e-6)
	assert.Equal(t, "b", got[1].ID)
	assert.InDelta(t, 10, got[1].Distance, 1e-6)

	all, err := idx.Nearest(roster, "a", 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[2].ID)
	assert.InDelta(t, 40, all[2].Distance, 1e-6)

	none, err := idx.Nearest(roster, "missing", 3)
	require.NoError(t, err)
	assert.Empty(t, none)
}
