// Package bootsel turns a double press of the reset button into a jump to the
// RP2040's USB mass-storage bootloader.
//
// A 32-bit flag lives in memory that start-up code never zero-fills, so it
// survives a warm reset. Each boot arms the flag, waits out the watch window
// and disarms it. A reset during the window leaves the flag armed, and the
// next boot sees it and diverts into the bootloader instead of continuing.
//
// Probe must run before anything else touches memory or peripherals.
package bootsel

import (
	"sync/atomic"
	"time"

	"dualdisplay-go/services/board"
	"dualdisplay-go/services/hwclock"
	"dualdisplay-go/x/console"
)

// Cell is the reset-persistent flag word. Loads and stores are sequentially
// consistent so the check-and-set cannot be reordered around the delay.
type Cell interface {
	Load() uint32
	Store(v uint32)
}

// MemCell is a Cell over an ordinary word.
type MemCell struct {
	v uint32
}

func (c *MemCell) Load() uint32   { return atomic.LoadUint32(&c.v) }
func (c *MemCell) Store(v uint32) { atomic.StoreUint32(&c.v, v) }

// Entry transfers control to the ROM bootloader. On hardware Enter does not
// return.
type Entry interface {
	Enter()
}

// EntryFunc adapts a plain function to Entry.
type EntryFunc func()

func (f EntryFunc) Enter() { f() }

// FlagState is the logical reading of the flag word.
type FlagState uint8

const (
	NoRecentBoot FlagState = iota
	RecentBoot
)

func (f FlagState) String() string {
	if f == RecentBoot {
		return "recent_boot"
	}
	return "no_recent_boot"
}

// Decision is the outcome of one Probe.
type Decision uint8

const (
	Continue Decision = iota
	EnterBootloader
)

func (d Decision) String() string {
	if d == EnterBootloader {
		return "enter_bootloader"
	}
	return "continue"
}

// Config sets the protocol constants. Window and Debounce are independent.
type Config struct {
	Magic    uint32
	Window   time.Duration
	Debounce time.Duration
}

// FromPlan converts the board's boot plan.
func FromPlan(p board.BootPlan) Config {
	return Config{
		Magic:    p.Magic,
		Window:   hwclock.Ms(p.WindowMs),
		Debounce: hwclock.Ms(p.DebounceMs),
	}
}

// Selector runs the double-reset protocol against one cell.
type Selector struct {
	cfg   Config
	cell  Cell
	clock hwclock.Clock
	log   *console.Logger
}

func New(cell Cell, clock hwclock.Clock, cfg Config) *Selector {
	return &Selector{cfg: cfg, cell: cell, clock: clock, log: console.New("boot")}
}

// Classify reads the flag without changing it.
func (s *Selector) Classify() FlagState {
	if s.cell.Load() == s.cfg.Magic {
		return RecentBoot
	}
	return NoRecentBoot
}

// Probe runs the protocol up to, but not including, the bootloader jump.
// On the normal path it blocks for the whole watch window.
func (s *Selector) Probe() Decision {
	if st := s.Classify(); st == RecentBoot {
		s.cell.Store(0)
		s.log.Info("double reset", console.Str("state", st.String()), console.Word("flag", s.cfg.Magic))
		s.clock.Delay(s.cfg.Debounce)
		return EnterBootloader
	}

	s.cell.Store(s.cfg.Magic)
	s.clock.Delay(s.cfg.Window)
	s.cell.Store(0)
	return Continue
}

// Run probes and, on a double reset, jumps to the bootloader. It returns only
// when boot should continue.
func (s *Selector) Run(entry Entry) {
	if s.Probe() == Continue {
		return
	}
	s.log.Info("entering bootloader")
	entry.Enter()
	halt()
}
