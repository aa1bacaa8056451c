// Package clock provides an abstraction for time operations to improve testability.
// The visual challenge sent to the signing device embeds a wall-clock timestamp,
// so code uses the Clock interface instead of calling time.Now() directly and
// tests supply a fixed clock to make device round-trips reproducible.
package clock

import "time"

// Clock is an interface for time operations.
// This allows code to be tested with fixed clocks.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the actual system time.
type RealClock struct{}

// Now returns the current time from the system clock.
func (RealClock) Now() time.Time {
	return time.Now()
}

// FixedClock implements Clock with a constant time. Tests use it to pin the
// visual challenge timestamp.
type FixedClock struct {
	Time time.Time
}

// Now returns the fixed time.
func (c FixedClock) Now() time.Time {
	return c.Time
}

// Ensure both implementations satisfy Clock.
var (
	_ Clock = RealClock{}
	_ Clock = FixedClock{}
)
