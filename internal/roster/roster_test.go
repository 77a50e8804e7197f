package roster

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kittclouds/roster/internal/store"
)

// countingStorer records every Save.
type countingStorer struct {
	initial []*store.Character
	saves   [][]*store.Character
	err     error
}

func (c *countingStorer) Load() []*store.Character {
	out := make([]*store.Character, len(c.initial))
	copy(out, c.initial)
	return out
}

func (c *countingStorer) Save(roster []*store.Character) error {
	snap := make([]*store.Character, len(roster))
	for i, ch := range roster {
		snap[i] = ch.Clone()
	}
	c.saves = append(c.saves, snap)
	return c.err
}

func char(id string) *store.Character {
	return &store.Character{ID: id, Name: "C" + id, ImageURL: "img-" + id, Stats: store.DefaultStats()}
}

func ids(list []*store.Character) []string {
	out := make([]string, len(list))
	for i, c := range list {
		out[i] = c.ID
	}
	return out
}

func newStore(idList ...string) (*Store, *countingStorer) {
	p := &countingStorer{}
	for _, id := range idList {
		p.initial = append(p.initial, char(id))
	}
	return New(p, nil), p
}

func TestReorderArrayMove(t *testing.T) {
	s, p := newStore("1", "2", "3")

	got, err := s.Reorder("1", "3")
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "3", "1"}, ids(got))
	require.Len(t, p.saves, 1)
	assert.Equal(t, []string{"2", "3", "1"}, ids(p.saves[0]))

	got, err = s.Reorder("1", "2")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, ids(got))
}

func TestReorderNoOps(t *testing.T) {
	s, p := newStore("1", "2", "3")

	for _, tc := range [][2]string{{"2", "2"}, {"9", "1"}, {"1", "9"}, {"", "1"}, {"1", ""}} {
		got, err := s.Reorder(tc[0], tc[1])
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "2", "3"}, ids(got), "reorder %v", tc)
	}
	assert.Empty(t, p.saves)
}

func TestReorderIsPermutationForAllPairs(t *testing.T) {
	base := []string{"a", "b", "c", "d", "e"}
	for from := range base {
		for to := range base {
			if from == to {
				continue
			}
			t.Run(fmt.Sprintf("%d->%d", from, to), func(t *testing.T) {
				s, _ := newStore(base...)
				got, err := s.Reorder(base[from], base[to])
				require.NoError(t, err)
				order := ids(got)

				require.Len(t, order, len(base))
				assert.Equal(t, base[from], order[to])
				assert.ElementsMatch(t, base, order)

				var restBefore, restAfter []string
				for i, id := range base {
					if i != from {
						restBefore = append(restBefore, id)
					}
				}
				for i, id := range order {
					if i != to {
						restAfter = append(restAfter, id)
					}
				}
				assert.Equal(t, restBefore, restAfter)
			})
		}
	}
}

func TestAddAppends(t *testing.T) {
	s, p := newStore("1", "2")

	got, err := s.Add(char("3"))
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, ids(got))
	assert.Equal(t, 3, s.Len())
	require.Len(t, p.saves, 1)

	_, err = s.Add(char("2"))
	require.NoError(t, err)
	assert.Equal(t, 3, s.Len())
	assert.Len(t, p.saves, 1)

	_, err = s.Add(nil)
	require.NoError(t, err)
	assert.Len(t, p.saves, 1)
}

func TestUpdateReplacesInPlace(t *testing.T) {
	s, p := newStore("1", "2", "3")

	edited := char("2")
	edited.Name = "Renamed"
	got, err := s.Update(edited)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, ids(got))
	assert.Equal(t, "Renamed", got[1].Name)
	assert.Len(t, p.saves, 1)

	ghost := char("9")
	got, err = s.Update(ghost)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, ids(got))
	assert.Len(t, p.saves, 1)
}

func TestStoreHandsOutCopies(t *testing.T) {
	s, _ := newStore("1")

	c, ok := s.Get("1")
	require.True(t, ok)
	c.Name = "mutated"
	c.Stats.Set("strength", store.Known(1))

	again, _ := s.Get("1")
	assert.Equal(t, "C1", again.Name)
	v, _ := again.Stats.Get("strength")
	assert.Equal(t, store.Known(store.DefaultStat), v)

	added := char("2")
	_, err := s.Add(added)
	require.NoError(t, err)
	added.Name = "changed after add"
	stored, _ := s.Get("2")
	assert.Equal(t, "C2", stored.Name)
}

func TestPersistFailureKeepsChange(t *testing.T) {
	s, p := newStore("1", "2")
	p.err = errors.New("quota exceeded")

	got, err := s.Reorder("2", "1")
	require.ErrorIs(t, err, p.err)
	assert.Equal(t, []string{"2", "1"}, ids(got))
	assert.Equal(t, []string{"2", "1"}, s.IDs())
}

func TestReloadReadsPersistedRoster(t *testing.T) {
	slot := store.NewMemorySlot()
	adapter := store.NewAdapter(slot, "", nil)
	s := New(adapter, nil)
	assert.Zero(t, s.Len())

	require.NoError(t, adapter.Save([]*store.Character{char("7")}))
	got := s.Reload()
	assert.Equal(t, []string{"7"}, ids(got))
	assert.True(t, s.Has("7"))
}

func TestMoveGuards(t *testing.T) {
	in := []int{1, 2, 3}
	assert.Equal(t, []int{1, 2, 3}, Move(in, -1, 2))
	assert.Equal(t, []int{1, 2, 3}, Move(in, 0, 3))
	assert.Equal(t, []int{3, 1, 2}, Move(in, 2, 0))
	assert.Equal(t, []int{2, 3, 1}, Move(in, 0, 2))
	assert.Equal(t, []int{1, 2, 3}, in)
	assert.Empty(t, Move([]int{}, 0, 0))
}
