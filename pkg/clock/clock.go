// Package clock abstracts time for code that checks sales windows and
// lifecycle deadlines, so tests can pin "now" to a fixed instant.
package clock

import "time"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// System returns the real wall clock.
func System() Clock {
	return systemClock{}
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// Fixed returns a clock pinned to t. Intended for tests.
func Fixed(t time.Time) Clock {
	return fixedClock{t: t}
}

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time {
	return c.t
}
