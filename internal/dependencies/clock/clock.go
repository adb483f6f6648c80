package clock

import "time"

// Clock tells the time
type Clock interface {
	Now() time.Time
}

// Func adapts a plain function to Clock
type Func func() time.Time

func (f Func) Now() time.Time { return f() }

// New returns the system clock in UTC
func New() Clock {
	return Func(func() time.Time { return time.Now().UTC() })
}

// Since is time.Since against c
func Since(c Clock, t time.Time) time.Duration {
	return c.Now().Sub(t)
}
