package hwclock

import "time"

// Manual is a deterministic Clock for host tests. Delay advances virtual time
// instantly. A warm reset can be scheduled at a virtual instant: the Delay
// that would cross it stops there and unwinds the caller with a WarmReset
// panic, which RunBoot converts back into a return value.
type Manual struct {
	now     time.Duration
	resetAt time.Duration // 0 => none scheduled
	delays  []time.Duration
}

var _ Clock = (*Manual)(nil)

// WarmReset is the panic value raised when a scheduled reset fires.
type WarmReset struct {
	At time.Duration
}

func (m *Manual) Now() time.Duration { return m.now }

// Set moves virtual time to t (used to model time spent powered down or in
// the ROM before the next boot observes the cell).
func (m *Manual) Set(t time.Duration) { m.now = t }

// ScheduleReset arms a warm reset at virtual instant at (> Now).
func (m *Manual) ScheduleReset(at time.Duration) { m.resetAt = at }

// Delays returns every delay requested so far, in order.
func (m *Manual) Delays() []time.Duration { return append([]time.Duration(nil), m.delays...) }

func (m *Manual) Delay(d time.Duration) {
	m.delays = append(m.delays, d)
	if d <= 0 {
		return
	}
	end := m.now + d
	if m.resetAt > 0 && m.resetAt > m.now && m.resetAt <= end {
		at := m.resetAt
		m.now = at
		m.resetAt = 0
		panic(WarmReset{At: at})
	}
	m.now = end
}

// RunBoot runs one simulated boot. It returns true if a scheduled warm reset
// interrupted fn; any other panic is re-raised.
func RunBoot(fn func()) (interrupted bool) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(WarmReset); ok {
				interrupted = true
				return
			}
			panic(r)
		}
	}()
	fn()
	return false
}
