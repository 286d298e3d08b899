package generation

import "time"

// Clock is the time source for the minimum display duration
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time                         { return time.Now() }
func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// remaining returns how much of floor is left after elapsed, never negative
func remaining(floor, elapsed time.Duration) time.Duration {
	if d := floor - elapsed; d > 0 {
		return d
	}
	return 0
}
