// Package timestep measures frame deltas and paces loops to a target rate.
package timestep

import "time"

// Clock tracks the time between frames and the frame rate over the last
// full second.
type Clock struct {
	last   time.Time
	frames int
	acc    time.Duration
	rate   int
}

func NewClock() *Clock {
	return &Clock{last: time.Now()}
}

// Tick marks the start of a frame and returns the time since the previous one.
func (c *Clock) Tick() time.Duration {
	return c.tickAt(time.Now())
}

func (c *Clock) tickAt(now time.Time) time.Duration {
	delta := now.Sub(c.last)
	c.last = now
	c.frames++
	c.acc += delta
	if c.acc >= time.Second {
		c.rate = c.frames
		c.frames = 0
		c.acc = 0
	}
	return delta
}

// FPS returns the number of frames counted in the last completed second.
func (c *Clock) FPS() int { return c.rate }

// Limiter paces a loop to a fixed rate.
type Limiter struct {
	target time.Duration
	next   time.Time
}

// NewLimiter returns a limiter for hz iterations per second. hz <= 0 disables
// waiting.
func NewLimiter(hz int) *Limiter {
	l := &Limiter{}
	if hz > 0 {
		l.target = time.Second / time.Duration(hz)
	}
	return l
}

// Wait blocks until the next iteration is due. It sleeps for most of the
// interval and spins for the final stretch.
func (l *Limiter) Wait() {
	if l.target == 0 {
		return
	}
	if l.next.IsZero() {
		l.next = time.Now().Add(l.target)
	} else {
		l.next = l.next.Add(l.target)
	}

	for {
		remaining := time.Until(l.next)
		if remaining <= 0 {
			break
		}
		if remaining > 200*time.Microsecond {
			time.Sleep(remaining - 200*time.Microsecond)
		}
	}

	// Resync after a hitch instead of bursting to catch up.
	if late := -time.Until(l.next); late > l.target {
		l.next = time.Now().Add(l.target)
	}
}
