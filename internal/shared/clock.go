package shared

import "time"

// Clock supplies the current time to services so that due-date and
// future-date rules stay deterministic under test.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }

// FixedClock always reports the same instant. Test helper.
type FixedClock struct {
	T time.Time
}

// Now implements Clock.
func (c FixedClock) Now() time.Time { return c.T }
