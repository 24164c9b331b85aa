package display

import (
	"bytes"
	"errors"
	"image/color"
	"testing"

	"dualdisplay-go/errcode"
	"dualdisplay-go/services/board"
	"dualdisplay-go/services/i2cbus"
	"dualdisplay-go/services/platform"
)

const (
	addr1 = 0x3D
	addr2 = 0x3C
)

func newPair(t *testing.T, retries int) (*platform.HostI2C, *i2cbus.Arbiter, *Channel, *Channel) {
	t.Helper()
	hw := &platform.HostI2C{}
	arb := i2cbus.New(hw)
	c1 := New(arb, Config{Name: "disp1", Addr: addr1, RetryBudget: retries})
	c2 := New(arb, Config{Name: "disp2", Addr: addr2, RetryBudget: retries})
	return hw, arb, c1, c2
}

func TestInitIssuesPowerUpSequence(t *testing.T) {
	hw, arb, c1, _ := newPair(t, 1)

	if err := c1.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	if c1.State() != Ready {
		t.Fatalf("state = %v", c1.State())
	}
	log := hw.Log()
	if len(log) < 20 {
		t.Fatalf("power-up sequence too short: %d commands", len(log))
	}
	for _, tx := range log {
		if tx.Addr != addr1 || len(tx.W) != 2 || tx.W[0] != 0x00 {
			t.Fatalf("unexpected command tx %+v", tx)
		}
	}
	if first, last := log[0].W[1], log[len(log)-1].W[1]; first != 0xAE || last != 0xAF {
		t.Fatalf("sequence must start display-off and end display-on, got %#x..%#x", first, last)
	}
	if arb.Busy() {
		t.Fatal("token leaked after init")
	}
}

func TestInitIsIdempotent(t *testing.T) {
	hw, _, c1, _ := newPair(t, 1)

	if err := c1.Init(); err != nil {
		t.Fatal(err)
	}
	c1.SetPixel(5, 9, on)
	before := c1.Framebuffer()
	n := len(hw.Log())

	for i := 0; i < 2; i++ {
		if err := c1.Init(); err != nil {
			t.Fatalf("re-init %d: %v", i, err)
		}
	}
	if len(hw.Log()) != n {
		t.Fatal("re-init issued bus traffic")
	}
	if c1.State() != Ready || !bytes.Equal(before, c1.Framebuffer()) {
		t.Fatal("re-init changed state or framebuffer")
	}
}

func TestInitRecoversWithinBudget(t *testing.T) {
	hw, _, c1, _ := newPair(t, 2)
	hw.FailNext(addr1, 1)

	if err := c1.Init(); err != nil {
		t.Fatalf("init should succeed on retry: %v", err)
	}
	if c1.State() != Ready {
		t.Fatalf("state = %v", c1.State())
	}
	// The failed attempt stops at its first command.
	log := hw.Log()
	if log[0].Err == nil || log[1].Err != nil || log[1].W[1] != 0xAE {
		t.Fatalf("retry did not restart the sequence: %+v", log[:2])
	}
}

func TestFaultIsContainedToOneChannel(t *testing.T) {
	hw, arb, c1, c2 := newPair(t, 3)
	hw.FailAlways(addr1)

	err := c1.Init()
	if !errors.Is(err, errcode.ChannelFaulted) {
		t.Fatalf("want channel_faulted, got %v", err)
	}
	if !errors.Is(err, errcode.TransactionAborted) {
		t.Fatalf("fault should carry the bus cause, got %v", err)
	}
	if c1.State() != Faulted || c1.Err() == nil {
		t.Fatalf("state=%v err=%v", c1.State(), c1.Err())
	}
	if got := hw.CountTo(addr1); got != 3 {
		t.Fatalf("want one aborted tx per attempt (3), got %d", got)
	}
	if arb.Busy() {
		t.Fatal("faulted channel kept the bus")
	}

	if err := c2.Init(); err != nil {
		t.Fatalf("healthy channel: %v", err)
	}
	if err := c2.Flush(); err != nil {
		t.Fatalf("healthy flush: %v", err)
	}
	if c2.State() != Ready {
		t.Fatalf("disp2 state = %v", c2.State())
	}
}

func TestFaultedIsTerminalAndSilent(t *testing.T) {
	hw, _, c1, _ := newPair(t, 1)
	hw.FailAlways(addr1)
	_ = c1.Init()
	hw.Heal(addr1)
	n := len(hw.Log())

	if err := c1.Init(); !errors.Is(err, errcode.ChannelFaulted) {
		t.Fatalf("init on faulted: %v", err)
	}
	if err := c1.Flush(); !errors.Is(err, errcode.ChannelFaulted) {
		t.Fatalf("flush on faulted: %v", err)
	}
	if len(hw.Log()) != n {
		t.Fatal("faulted channel touched the bus")
	}
	if c1.State() != Faulted {
		t.Fatal("fault must be terminal")
	}
}

func TestFlushBeforeInitIsNotReady(t *testing.T) {
	hw, _, c1, _ := newPair(t, 1)
	if err := c1.Flush(); !errors.Is(err, errcode.NotReady) {
		t.Fatalf("want not_ready, got %v", err)
	}
	if len(hw.Log()) != 0 || c1.State() != Uninitialized {
		t.Fatal("flush before init must not touch bus or state")
	}
}

func TestFlushSendsFramebuffer(t *testing.T) {
	hw, _, c1, _ := newPair(t, 1)
	if err := c1.Init(); err != nil {
		t.Fatal(err)
	}
	hw.ClearLog()

	c1.SetPixel(0, 0, on)
	c1.SetPixel(127, 63, on)
	if err := c1.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	log := hw.Log()
	data := log[len(log)-1].W
	if data[0] != 0x40 || len(data) != 1+128*64/8 {
		t.Fatalf("data burst: ctrl=%#x len=%d", data[0], len(data))
	}
	if !bytes.Equal(data[1:], c1.Framebuffer()) {
		t.Fatal("burst does not match framebuffer")
	}
	// Address window reset precedes the burst.
	if log[0].W[1] != 0x21 {
		t.Fatalf("flush should start with COLUMNADDR, got %#x", log[0].W[1])
	}
}

func TestFlushFailureFaultsAfterBudget(t *testing.T) {
	hw, _, c1, _ := newPair(t, 2)
	if err := c1.Init(); err != nil {
		t.Fatal(err)
	}
	hw.FailAlways(addr1)
	if err := c1.Flush(); !errors.Is(err, errcode.ChannelFaulted) {
		t.Fatalf("want channel_faulted, got %v", err)
	}
	if c1.State() != Faulted {
		t.Fatalf("state = %v", c1.State())
	}
}

func TestFlushRetrySucceeds(t *testing.T) {
	hw, _, c1, _ := newPair(t, 2)
	if err := c1.Init(); err != nil {
		t.Fatal(err)
	}
	hw.FailNext(addr1, 1)
	if err := c1.Flush(); err != nil {
		t.Fatalf("flush retry: %v", err)
	}
	if c1.State() != Ready {
		t.Fatalf("state = %v", c1.State())
	}
}

func TestDrawTouchesOnlyFramebuffer(t *testing.T) {
	hw, _, c1, _ := newPair(t, 1)

	c1.Draw([]byte{0xFF, 0x01})
	if !c1.Pixel(0, 7) || !c1.Pixel(1, 0) || c1.Pixel(1, 1) {
		t.Fatal("Draw layout is page-major, LSB at top")
	}
	c1.Draw(make([]byte, 4096)) // longer than the framebuffer
	c1.Draw(nil)
	c1.SetPixel(-1, 0, on)
	c1.SetPixel(0, 64, on)
	c1.SetPixel(3, 10, on)
	c1.SetPixel(3, 10, color.RGBA{A: 0xFF})
	if c1.Pixel(3, 10) {
		t.Fatal("black clears the pixel")
	}

	c1.WriteText(0, 20, "RMK Display 1")
	lit := 0
	for _, b := range c1.Framebuffer() {
		for ; b != 0; b &= b - 1 {
			lit++
		}
	}
	if lit == 0 {
		t.Fatal("text rendered no pixels")
	}
	c1.Clear()
	if !bytes.Equal(c1.Framebuffer(), make([]byte, 1024)) {
		t.Fatal("Clear left pixels lit")
	}
	if len(hw.Log()) != 0 {
		t.Fatal("drawing caused bus traffic")
	}
}

func TestInitWithoutBusFaults(t *testing.T) {
	c := New(i2cbus.New(nil), Config{Name: "disp1", Addr: addr1, RetryBudget: 2})
	err := c.Init()
	if !errors.Is(err, errcode.ChannelFaulted) || !errors.Is(err, errcode.BusUnavailable) {
		t.Fatalf("want channel_faulted caused by bus_unavailable, got %v", err)
	}
}

func TestFromPlan(t *testing.T) {
	cfg := FromPlan(board.Selected.Displays[1], board.Selected.RetryBudget)
	if cfg.Addr != addr2 || cfg.Name != "disp2" || cfg.RetryBudget != 3 || cfg.Width != 128 {
		t.Fatalf("cfg = %+v", cfg)
	}
	c := New(nil, Config{})
	if w, h := c.Size(); w != 128 || h != 64 || c.Name() != "display" {
		t.Fatalf("defaults: %dx%d %q", w, h, c.Name())
	}
}

func TestInitCommandStream(t *testing.T) {
	hw, _, c1, _ := newPair(t, 1)
	if err := c1.Init(); err != nil {
		t.Fatal(err)
	}
	want := []byte{
		0xAE, 0xD5, 0x80, 0xA8, 0x3F, 0xD3, 0x00, 0x40, 0x8D, 0x14,
		0x20, 0x00, 0xA1, 0xC8, 0xDA, 0x12, 0x81, 0xCF,
		0xD9, 0xF1, 0xDB, 0x40, 0xA4, 0xA6, 0x2E, 0xAF,
	}
	var got []byte
	for _, tx := range hw.Log() {
		got = append(got, tx.W[1])
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("power-up commands\n got % X\nwant % X", got, want)
	}

	hw.ClearLog()
	if err := c1.Flush(); err != nil {
		t.Fatal(err)
	}
	log := hw.Log()
	got = got[:0]
	for _, tx := range log[:len(log)-1] {
		got = append(got, tx.W[1])
	}
	if want := []byte{0x21, 0x00, 0x7F, 0x22, 0x00, 0x07}; !bytes.Equal(got, want) {
		t.Fatalf("address window % X, want % X", got, want)
	}
}

func TestFaultedErrWrapsBusCause(t *testing.T) {
	hw, _, c1, _ := newPair(t, 2)
	hw.FailAlways(addr1)
	initErr := c1.Init()

	err := c1.Err()
	if !errors.Is(err, errcode.ChannelFaulted) {
		t.Fatalf("Err() = %v, want channel_faulted", err)
	}
	if !errors.Is(err, platform.ErrNack) {
		t.Fatalf("Err() lost the bus cause: %v", err)
	}
	if errcode.Of(err) != errcode.ChannelFaulted || initErr != err {
		t.Fatalf("Init returned %v, Err() %v", initErr, err)
	}
	if flushErr := c1.Flush(); flushErr != err {
		t.Fatalf("Flush on faulted = %v", flushErr)
	}
}
