// Package hwclock is the calibrated time base used for boot-time delays.
//
// Delays busy-wait on the time base rather than yielding to the scheduler:
// the boot selector runs before anything else exists and must block the core
// for the whole window.
package hwclock

import "time"

// Clock supplies monotonic time since start-up and blocking delays.
type Clock interface {
	Now() time.Duration
	Delay(d time.Duration)
}

// Monotonic is the hardware-backed clock. On TinyGo, time.Now reads the
// RP2040 microsecond timer, which is running once the runtime has brought
// up the clock tree.
type Monotonic struct {
	start time.Time
}

var _ Clock = (*Monotonic)(nil)

func NewMonotonic() *Monotonic { return &Monotonic{start: time.Now()} }

func (m *Monotonic) Now() time.Duration { return time.Since(m.start) }

// Delay spins until d has elapsed.
func (m *Monotonic) Delay(d time.Duration) {
	if d <= 0 {
		return
	}
	t0 := time.Now()
	for time.Since(t0) < d {
	}
}

// Ms converts a millisecond constant from the board plan.
func Ms(n uint32) time.Duration { return time.Duration(n) * time.Millisecond }
