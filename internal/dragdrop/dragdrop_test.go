package dragdrop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointerDropEmitsIntent(t *testing.T) {
	var m Machine
	assert.Equal(t, Status{Phase: PhaseIdle}, m.Status())

	require.NoError(t, m.Begin("1", SensorPointer))
	assert.True(t, m.Dragging())
	m.Over("2")
	assert.Equal(t, Status{Phase: PhaseDragging, Sensor: SensorPointer, ActiveID: "1", OverID: "2"}, m.Status())

	in, ok := m.Drop("3")
	require.True(t, ok)
	assert.Equal(t, Intent{ActiveID: "1", OverID: "3"}, in)
	assert.False(t, m.Dragging())
}

func TestDropWithoutTargetOrOnSelf(t *testing.T) {
	var m Machine

	_, ok := m.Drop("2")
	assert.False(t, ok, "idle drop")

	require.NoError(t, m.Begin("1", SensorPointer))
	_, ok = m.Drop("")
	assert.False(t, ok, "dropped on itself")

	require.NoError(t, m.Begin("1", SensorPointer))
	m.Over("2")
	m.Over("")
	_, ok = m.Drop("")
	assert.False(t, ok, "dropped outside any card")
	assert.False(t, m.Dragging())
}

func TestCancel(t *testing.T) {
	var m Machine
	require.NoError(t, m.Begin("1", SensorKeyboard))
	m.Over("2")
	m.Cancel()

	assert.Equal(t, Status{Phase: PhaseIdle}, m.Status())
	_, ok := m.Drop("")
	assert.False(t, ok)
}

func TestBeginGuards(t *testing.T) {
	var m Machine
	assert.ErrorIs(t, m.Begin("", SensorPointer), ErrNoActiveID)

	require.NoError(t, m.Begin("1", SensorPointer))
	assert.ErrorIs(t, m.Begin("2", SensorPointer), ErrDragging)
	assert.Equal(t, "1", m.Status().ActiveID)
}

func TestKeyboardStep(t *testing.T) {
	order := []string{"a", "b", "c", "d"}
	var m Machine
	require.NoError(t, m.Begin("b", SensorKeyboard))

	m.Step(order, 1)
	assert.Equal(t, "c", m.Status().OverID)
	m.Step(order, 5)
	assert.Equal(t, "d", m.Status().OverID)
	m.Step(order, -10)
	assert.Equal(t, "a", m.Status().OverID)

	in, ok := m.Drop("")
	require.True(t, ok)
	assert.Equal(t, Intent{ActiveID: "b", OverID: "a"}, in)
}

func TestStepIgnoredForPointer(t *testing.T) {
	var m Machine
	require.NoError(t, m.Begin("a", SensorPointer))
	m.Step([]string{"a", "b"}, 1)
	assert.Equal(t, "a", m.Status().OverID)
}

func TestParseSensor(t *testing.T) {
	s, err := ParseSensor("keyboard")
	require.NoError(t, err)
	assert.Equal(t, SensorKeyboard, s)

	_, err = ParseSensor("touch")
	assert.Error(t, err)
}
