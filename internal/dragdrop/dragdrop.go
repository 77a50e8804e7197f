// Package dragdrop tracks one drag gesture over the roster grid. Sensors in
// the page (pointer and keyboard) report activation, hover and drop; a drop
// on a different card yields exactly one reorder intent.
package dragdrop

import (
	"errors"
	"fmt"
)

// Sensor identifies what started the drag.
type Sensor string

const (
	SensorPointer  Sensor = "pointer"
	SensorKeyboard Sensor = "keyboard"
)

// ParseSensor maps the page's sensor name to a Sensor.
func ParseSensor(s string) (Sensor, error) {
	switch Sensor(s) {
	case SensorPointer, SensorKeyboard:
		return Sensor(s), nil
	}
	return "", fmt.Errorf("unknown sensor %q", s)
}

// Phase is the machine state.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseDragging Phase = "dragging"
)

var (
	ErrDragging   = errors.New("drag already in progress")
	ErrNoActiveID = errors.New("drag needs an active id")
)

// Intent asks the roster to move ActiveID to OverID's position.
type Intent struct {
	ActiveID string `json:"activeId"`
	OverID   string `json:"overId"`
}

// Status is the view-facing snapshot of the machine.
type Status struct {
	Phase    Phase  `json:"phase"`
	Sensor   Sensor `json:"sensor,omitempty"`
	ActiveID string `json:"activeId,omitempty"`
	OverID   string `json:"overId,omitempty"`
}

// Machine is the Idle/Dragging state machine. The zero value is idle.
type Machine struct {
	phase  Phase
	sensor Sensor
	active string
	over   string
}

// Begin starts dragging activeID.
func (m *Machine) Begin(activeID string, sensor Sensor) error {
	if m.Dragging() {
		return ErrDragging
	}
	if activeID == "" {
		return ErrNoActiveID
	}
	m.phase = PhaseDragging
	m.sensor = sensor
	m.active = activeID
	m.over = activeID
	return nil
}

// Over records the card under the drag; "" means no target.
func (m *Machine) Over(overID string) {
	if !m.Dragging() {
		return
	}
	m.over = overID
}

// Step moves the keyboard target delta places through order, clamped to
// the ends. It only applies to keyboard drags.
func (m *Machine) Step(order []string, delta int) {
	if !m.Dragging() || m.sensor != SensorKeyboard || len(order) == 0 {
		return
	}
	cur := -1
	for i, id := range order {
		if id == m.over {
			cur = i
			break
		}
	}
	if cur < 0 {
		for i, id := range order {
			if id == m.active {
				cur = i
				break
			}
		}
	}
	if cur < 0 {
		return
	}
	next := min(max(cur+delta, 0), len(order)-1)
	m.over = order[next]
}

// Drop ends the drag. overID, when set, overrides the tracked target. The
// intent is returned only when the target exists and differs from the
// dragged card.
func (m *Machine) Drop(overID string) (Intent, bool) {
	if !m.Dragging() {
		return Intent{}, false
	}
	if overID != "" {
		m.over = overID
	}
	in := Intent{ActiveID: m.active, OverID: m.over}
	m.reset()
	if in.OverID == "" || in.OverID == in.ActiveID {
		return Intent{}, false
	}
	return in, true
}

// Cancel abandons the drag.
func (m *Machine) Cancel() { m.reset() }

// Dragging reports whether a drag is in progress.
func (m *Machine) Dragging() bool { return m.phase == PhaseDragging }

// Status returns the current snapshot.
func (m *Machine) Status() Status {
	if !m.Dragging() {
		return Status{Phase: PhaseIdle}
	}
	return Status{Phase: m.phase, Sensor: m.sensor, ActiveID: m.active, OverID: m.over}
}

func (m *Machine) reset() { *m = Machine{} }
