package store

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsJSONKeepsOrderAndSentinel(t *testing.T) {
	var s Stats
	s.Set("strength", Known(80))
	s.Set("luck", Unknown())
	s.Set("agility", Known(0))

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `{"strength":80,"luck":"unknown","agility":0}`, string(data))

	var back Stats
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []string{"strength", "luck", "agility"}, back.Names())

	luck, ok := back.Get("luck")
	require.True(t, ok)
	assert.True(t, luck.IsUnknown())
}

func TestStatValueRejectsInvalid(t *testing.T) {
	for _, raw := range []string{`"maybe"`, `101`, `-1`, `12.5`, `true`, `null`, `[]`} {
		var v StatValue
		err := json.Unmarshal([]byte(raw), &v)
		assert.Error(t, err, raw)
	}

	var v StatValue
	require.NoError(t, json.Unmarshal([]byte(`100`), &v))
	score, known := v.Score()
	assert.True(t, known)
	assert.Equal(t, 100, score)
}

func TestStatsDuplicateKeyKeepsFirstPosition(t *testing.T) {
	var s Stats
	require.NoError(t, json.Unmarshal([]byte(`{"a":1,"b":2,"a":3}`), &s))

	assert.Equal(t, []string{"a", "b"}, s.Names())
	a, _ := s.Get("a")
	assert.Equal(t, Known(3), a)
}

func TestStatsCloneIsIndependent(t *testing.T) {
	orig := DefaultStats()
	clone := orig.Clone()
	clone.Set("strength", Known(99))
	clone.Delete("agility")

	v, _ := orig.Get("strength")
	assert.Equal(t, Known(DefaultStat), v)
	assert.True(t, orig.Has("agility"))
	assert.Equal(t, 4, orig.Len())
}

func TestStatsDelete(t *testing.T) {
	s := DefaultStats()
	s.Delete("missing")
	assert.Equal(t, 4, s.Len())

	for _, name := range BaseStats {
		s.Delete(name)
	}
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, Stats{}, s)
}

func TestStatsNullDecodesEmpty(t *testing.T) {
	var c Character
	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","stats":null}`), &c))
	assert.Equal(t, 0, c.Stats.Len())
}
