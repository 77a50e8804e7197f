package editor

import (
	"strconv"
	"time"
)

// IDSource hands out creation-time ids: Unix milliseconds as a decimal
// string. Two commits inside the same millisecond, or a clock that steps
// back, still get distinct ids because the counter never repeats a value.
type IDSource struct {
	now  func() time.Time
	last int64
}

// NewIDSource uses now as the clock; nil means time.Now.
func NewIDSource(now func() time.Time) *IDSource {
	if now == nil {
		now = time.Now
	}
	return &IDSource{now: now}
}

// Next returns a fresh id that taken does not report as used.
func (s *IDSource) Next(taken func(id string) bool) string {
	ms := s.now().UnixMilli()
	if ms <= s.last {
		ms = s.last + 1
	}
	for taken != nil && taken(strconv.FormatInt(ms, 10)) {
		ms++
	}
	s.last = ms
	return strconv.FormatInt(ms, 10)
}
