package timer

// Clock is a countdown that is advanced one second at a time. It knows
// nothing about phases or wall time: whoever drives it decides when a second
// has passed.
type Clock struct {
	remaining int
	running   bool
}

// Set replaces the remaining seconds. Negative values are clamped to zero.
func (c *Clock) Set(seconds int) {
	c.remaining = max(seconds, 0)
}

// Remaining returns the seconds left on the clock.
func (c *Clock) Remaining() int {
	return c.remaining
}

// Running reports whether the clock is counting down.
func (c *Clock) Running() bool {
	return c.running
}

// Start resumes the countdown.
func (c *Clock) Start() {
	c.running = true
}

// Stop pauses the countdown.
func (c *Clock) Stop() {
	c.running = false
}

// Tick advances the clock by one second and reports whether it ran out.
// A stopped clock does not move. The clock stops itself when it reaches zero.
func (c *Clock) Tick() bool {
	if !c.running {
		return false
	}

	if c.remaining > 0 {
		c.remaining--
	}

	if c.remaining == 0 {
		c.running = false
		return true
	}

	return false
}
