// Package display owns one SSD1306 panel on the shared bus: its framebuffer,
// its power-up sequence and its health.
//
// All hardware access goes through an i2cbus token held for a whole init or
// flush, so the other panel's traffic can never land mid-sequence. Drawing
// only touches the channel's own framebuffer.
//
// A channel is Uninitialized until Init succeeds, then Ready. Exhausting the
// retry budget on init or flush moves it to Faulted, which is terminal: the
// channel refuses further bus work but the arbiter, and therefore the other
// channel, are unaffected.
package display

import (
	"image/color"

	"dualdisplay-go/errcode"
	"dualdisplay-go/services/board"
	"dualdisplay-go/services/i2cbus"
	"dualdisplay-go/x/console"
	"dualdisplay-go/x/mathx"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// State is the channel lifecycle.
type State uint8

const (
	Uninitialized State = iota
	Ready
	Faulted
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case Faulted:
		return "faulted"
	}
	return "unknown"
}

// Config fixes one channel's identity and retry policy.
type Config struct {
	Name        string
	Addr        uint8
	Width       int16 // default 128
	Height      int16 // default 64
	RetryBudget int   // attempts per Init/Flush; default 1
}

// FromPlan derives a channel Config from the board plan.
func FromPlan(p board.DisplayPlan, retries int) Config {
	return Config{Name: p.Name, Addr: p.Addr, Width: p.Width, Height: p.Height, RetryBudget: retries}
}

var on = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}

// Channel is one display. It is not safe for concurrent use; the firmware has
// a single thread of control.
type Channel struct {
	cfg   Config
	arb   *i2cbus.Arbiter
	wire  tokenWire
	panel panel
	fb    []byte

	state State
	err   error // channel_faulted wrapping the last bus cause
	log   *console.Logger
}

// New creates an Uninitialized channel on arb. No bus traffic happens here.
func New(arb *i2cbus.Arbiter, cfg Config) *Channel {
	if cfg.Width <= 0 {
		cfg.Width = 128
	}
	if cfg.Height <= 0 {
		cfg.Height = 64
	}
	cfg.RetryBudget = mathx.Max(cfg.RetryBudget, 1)
	if cfg.Name == "" {
		cfg.Name = "display"
	}
	c := &Channel{
		cfg: cfg,
		arb: arb,
		fb:  make([]byte, int(cfg.Width)*int(cfg.Height)/8),
		log: console.New(cfg.Name),
	}
	c.panel = newPanel(&c.wire)
	return c
}

func (c *Channel) Name() string       { return c.cfg.Name }
func (c *Channel) Addr() uint8        { return c.cfg.Addr }
func (c *Channel) State() State       { return c.state }
func (c *Channel) Err() error         { return c.err }
func (c *Channel) Size() (w, h int16) { return c.cfg.Width, c.cfg.Height }

// attempt runs fn with the panel wired to a freshly acquired token. The first
// bus error of the attempt fails it.
func (c *Channel) attempt(fn func() error) error {
	return c.arb.With(c.cfg.Addr, func(t *i2cbus.Token) error {
		c.wire.begin(t)
		defer c.wire.end()
		if err := fn(); err != nil {
			return err
		}
		return c.wire.err
	})
}

// retry runs fn up to the budget and faults the channel if every attempt fails.
func (c *Channel) retry(op string, fn func() error) error {
	var err error
	for i := 1; i <= c.cfg.RetryBudget; i++ {
		if err = c.attempt(fn); err == nil {
			return nil
		}
		c.log.Warn(op+" attempt failed", console.Int("attempt", i), console.Int("budget", c.cfg.RetryBudget), console.Err(err))
	}
	c.state = Faulted
	c.err = &errcode.E{C: errcode.ChannelFaulted, Op: "display." + op, Msg: c.cfg.Name, Err: err}
	c.log.Error("faulted", console.Str("op", op), console.Addr("addr", c.cfg.Addr), console.Err(err))
	return c.err
}

// Init issues the panel power-up sequence. It is idempotent once Ready.
func (c *Channel) Init() error {
	switch c.state {
	case Ready:
		return nil
	case Faulted:
		return c.err
	}
	err := c.retry("init", func() error {
		c.panel.Configure(panelConfig{Addr: c.cfg.Addr, Width: c.cfg.Width, Height: c.cfg.Height})
		return nil
	})
	if err != nil {
		return err
	}
	c.state = Ready
	c.log.Info("ready", console.Addr("addr", c.cfg.Addr))
	return nil
}

// Flush pushes the framebuffer to the panel as one bus sequence.
func (c *Channel) Flush() error {
	switch c.state {
	case Uninitialized:
		return &errcode.E{C: errcode.NotReady, Op: "display.flush", Msg: c.cfg.Name}
	case Faulted:
		return c.err
	}
	return c.retry("flush", func() error {
		if err := c.panel.SetBuffer(c.fb); err != nil {
			return err
		}
		return c.panel.Display()
	})
}

// Display lets tinyfont and other drivers.Displayer users push a frame.
func (c *Channel) Display() error { return c.Flush() }

// Draw copies buf into the framebuffer (page-major, 8 vertical pixels per
// byte). Short buffers update a prefix; extra bytes are ignored.
func (c *Channel) Draw(buf []byte) {
	copy(c.fb, buf)
}

// Clear blanks the framebuffer.
func (c *Channel) Clear() {
	for i := range c.fb {
		c.fb[i] = 0
	}
}

// SetPixel lights (any non-zero RGB) or clears one framebuffer pixel.
// Out-of-range coordinates are ignored.
func (c *Channel) SetPixel(x, y int16, col color.RGBA) {
	if !c.inside(x, y) {
		return
	}
	i := int(x) + int(y/8)*int(c.cfg.Width)
	if col.R != 0 || col.G != 0 || col.B != 0 {
		c.fb[i] |= 1 << uint8(y%8)
	} else {
		c.fb[i] &^= 1 << uint8(y%8)
	}
}

func (c *Channel) inside(x, y int16) bool {
	return mathx.Between(x, 0, c.cfg.Width-1) && mathx.Between(y, 0, c.cfg.Height-1)
}

// Pixel reports whether a framebuffer pixel is lit.
func (c *Channel) Pixel(x, y int16) bool {
	if !c.inside(x, y) {
		return false
	}
	return c.fb[int(x)+int(y/8)*int(c.cfg.Width)]>>uint8(y%8)&1 == 1
}

// WriteText renders one line into the framebuffer; y is the baseline.
func (c *Channel) WriteText(x, y int16, text string) {
	tinyfont.WriteLine(c, &proggy.TinySZ8pt7b, x, y, text, on)
}

// Framebuffer returns a copy of the pending image.
func (c *Channel) Framebuffer() []byte {
	return append([]byte(nil), c.fb...)
}

// tokenWire forwards the panel driver's Tx calls to the token held for the
// current attempt. Outside an attempt there is no bus. After the first
// failure the rest of the attempt is dropped without touching the wire, since
// the panel does not stop on command errors.
type tokenWire struct {
	tok *i2cbus.Token
	err error
}

func (w *tokenWire) begin(t *i2cbus.Token) { w.tok, w.err = t, nil }
func (w *tokenWire) end()                  { w.tok = nil }

func (w *tokenWire) Tx(addr uint16, wb, rb []byte) error {
	if w.err != nil {
		return w.err
	}
	if w.tok == nil {
		w.err = errcode.BusUnavailable
		return w.err
	}
	if err := w.tok.Tx(addr, wb, rb); err != nil {
		w.err = err
		return err
	}
	return nil
}
