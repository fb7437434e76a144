package shuttlesim

import "time"

// Clock returns the wall clock time elapsed between two calls.
type Clock struct {
	now  func() time.Time
	last time.Time
}

// NewClock returns a new clock. If now is nil, time.Now is used.
func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now}
}

// Delta returns the number of seconds since the previous call, and zero on the first one.
func (c *Clock) Delta() float64 {
	t := c.now()
	if c.last.IsZero() {
		c.last = t
		return 0
	}
	dt := t.Sub(c.last).Seconds()
	c.last = t
	return dt
}

// Reset forgets the previous call, e.g. after a pause.
func (c *Clock) Reset() {
	c.last = time.Time{}
}
