package core

import "time"

type Clock struct {
	start   time.Time
	last    time.Time
	running bool
}

func NewClock() *Clock {
	return &Clock{}
}

// Starts the provided clock. Resets elapsed time.
func (c *Clock) Start() {
	c.start = time.Now()
	c.last = c.start
	c.running = true
}

// Stops the provided clock. Does not reset elapsed time.
func (c *Clock) Stop() {
	c.running = false
}

// Tick returns the seconds passed since the previous Tick (or Start).
// Non-started clocks always report zero.
func (c *Clock) Tick() float32 {
	if !c.running {
		return 0
	}
	now := time.Now()
	dt := now.Sub(c.last).Seconds()
	c.last = now
	return float32(dt)
}

// Elapsed returns the seconds since Start.
func (c *Clock) Elapsed() float64 {
	if !c.running {
		return 0
	}
	return time.Since(c.start).Seconds()
}
