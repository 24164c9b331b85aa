// Package app wires the firmware together: boot selection first, then the
// console mirror, the shared bus and both display channels, then idle.
package app

import (
	"io"

	"dualdisplay-go/errcode"
	"dualdisplay-go/services/board"
	"dualdisplay-go/services/bootsel"
	"dualdisplay-go/services/display"
	"dualdisplay-go/services/hwclock"
	"dualdisplay-go/services/i2cbus"
	"dualdisplay-go/services/platform"
	"dualdisplay-go/x/console"

	"tinygo.org/x/drivers"
)

// Deps are the board resources the firmware runs on. Factories are called
// lazily so nothing touches a peripheral before the boot selector has run.
type Deps struct {
	Plan    board.Plan
	Clock   hwclock.Clock
	Cell    bootsel.Cell
	Entry   bootsel.Entry
	I2C     func(board.BusPlan) (drivers.I2C, error)
	Console func(board.ConsolePlan) io.Writer // may return nil
	Idle    func()                            // one wait-for-interrupt

	// Trace, if set, sees every bus event after the firmware's own logging.
	Trace i2cbus.Observer
}

// Defaults returns the deps for the selected board on the current platform.
func Defaults() Deps {
	return Deps{
		Plan:    board.Selected,
		Clock:   hwclock.NewMonotonic(),
		Cell:    bootsel.PersistentCell(),
		Entry:   bootsel.ROMEntry(),
		I2C:     platform.DefaultI2C,
		Console: platform.ConsoleWriter,
		Idle:    platform.Idle,
	}
}

// Firmware is one boot of the device.
type Firmware struct {
	d        Deps
	arb      *i2cbus.Arbiter
	displays [2]*display.Channel
	log      *console.Logger
}

func New(d Deps) *Firmware {
	return &Firmware{d: d, log: console.New("main")}
}

// Run boots the selected board and never returns.
func Run() { Main(Defaults()) }

// Main runs the whole boot sequence on d and then idles forever.
func Main(d Deps) {
	f := New(d)
	f.Boot()
	if err := f.Start(); err != nil {
		f.log.Error("start failed", console.Err(err))
	}
	f.Loop()
}

// Boot runs the double-reset selector. It returns only if boot continues.
func (f *Firmware) Boot() {
	bootsel.New(f.d.Cell, f.d.Clock, bootsel.FromPlan(f.d.Plan.Boot)).Run(f.d.Entry)
}

// Start brings up the console mirror, the bus and both displays. Display 1
// is initialised and flushed completely before display 2 starts. A display
// that faults is logged and left behind; Start only fails on a bad plan.
func (f *Firmware) Start() error {
	p := f.d.Plan
	if err := p.Validate(); err != nil {
		return err
	}
	if f.d.Console != nil {
		if w := f.d.Console(p.Console); w != nil {
			console.SetOutput(console.Tee(console.Stdout(), w))
		}
	}
	f.log.Info("boot", console.Str("board", p.Name))

	f.arb = i2cbus.New(nil)
	f.arb.SetObserver(f.observe)
	if hw := f.openBus(p.Bus); hw != nil {
		f.arb.Attach(hw)
	}
	if !f.arb.Ready() {
		f.log.Warn("no bus attached, displays will fault", console.Str("bus", p.Bus.ID))
	}

	for i, dp := range p.Displays {
		ch := display.New(f.arb, display.FromPlan(dp, p.RetryBudget))
		f.displays[i] = ch
		f.bringUp(ch, dp.Splash)
	}
	return nil
}

func (f *Firmware) openBus(p board.BusPlan) drivers.I2C {
	if f.d.I2C == nil {
		f.log.Warn("no bus factory", console.Str("bus", p.ID))
		return nil
	}
	hw, err := f.d.I2C(p)
	if err != nil {
		f.log.Error("bus unavailable", console.Str("bus", p.ID), console.Err(err))
		return nil
	}
	return hw
}

func (f *Firmware) bringUp(ch *display.Channel, splash []board.TextLine) {
	if err := ch.Init(); err != nil {
		f.log.Error("display init", console.Str("name", ch.Name()), console.Err(err))
		return
	}
	ch.Clear()
	for _, l := range splash {
		ch.WriteText(l.X, l.Y, l.Text)
	}
	if err := ch.Flush(); err != nil {
		f.log.Error("display flush", console.Str("name", ch.Name()), console.Err(err))
		return
	}
	f.log.Info("display ready", console.Str("name", ch.Name()), console.Addr("addr", ch.Addr()))
}

func (f *Firmware) observe(ev i2cbus.Event) {
	if ev.Kind == i2cbus.EvPerform && ev.Err != nil {
		f.log.Warn("i2c",
			console.Addr("addr", ev.Addr),
			console.Str("op", ev.Op.String()),
			console.Str("code", string(errcode.MapDriverErr(ev.Err))))
	}
	if f.d.Trace != nil {
		f.d.Trace(ev)
	}
}

// Display returns channel i (0 or 1), or nil before Start.
func (f *Firmware) Display(i int) *display.Channel { return f.displays[i] }

// Bus returns the shared arbiter, or nil before Start.
func (f *Firmware) Bus() *i2cbus.Arbiter { return f.arb }

// Loop idles the core forever.
func (f *Firmware) Loop() { f.loop(-1) }

func (f *Firmware) loop(n int) {
	for _, ch := range f.displays {
		if ch != nil && ch.State() == display.Faulted {
			f.log.Warn("skipping faulted display", console.Str("name", ch.Name()))
		}
	}
	idle := f.d.Idle
	if idle == nil {
		idle = platform.Idle
	}
	for ; n != 0; n-- {
		idle()
	}
}
