// Package board holds the compile-time wiring and operating parameters of the
// firmware. Nothing here is runtime-configurable; change Selected and rebuild.
package board

import (
	"dualdisplay-go/errcode"
)

// BusPlan wires the shared I²C controller.
type BusPlan struct {
	ID  string // "i2c0" or "i2c1"
	SDA int    // GPIO number
	SCL int    // GPIO number
	Hz  uint32 // fixed bus clock
}

// TextLine is splash text drawn once after a display comes up. Y is the
// font baseline.
type TextLine struct {
	X, Y int16
	Text string
}

// DisplayPlan describes one SSD1306 panel on the shared bus.
type DisplayPlan struct {
	Name   string // log tag, e.g. "disp1"
	Addr   uint8  // 7-bit target address
	Width  int16
	Height int16
	Splash []TextLine
}

// BootPlan parameterises the double-reset bootloader selector.
type BootPlan struct {
	Magic      uint32 // value held by the flag while a reset would count as the second tap
	WindowMs   uint32 // double-tap watch window
	DebounceMs uint32 // wait before entering the bootloader
}

// ConsolePlan wires the diagnostic UART mirror.
type ConsolePlan struct {
	ID   string // "uart0" or "uart1"; empty disables the mirror
	TX   int
	RX   int
	Baud uint32
}

// Plan is the complete board configuration.
type Plan struct {
	Name        string
	Bus         BusPlan
	Displays    [2]DisplayPlan
	RetryBudget int // attempts per display init/flush before the channel faults
	Boot        BootPlan
	Console     ConsolePlan
}

func invalid(msg string) error {
	return &errcode.E{C: errcode.InvalidPlan, Op: "board.validate", Msg: msg}
}

// Validate rejects plans the firmware cannot honour.
func (p Plan) Validate() error {
	if p.Bus.Hz == 0 {
		return invalid("bus frequency is zero")
	}
	if p.Bus.SDA == p.Bus.SCL {
		return invalid("bus SDA and SCL share a pin")
	}
	for i := range p.Displays {
		d := p.Displays[i]
		if d.Addr == 0 || d.Addr > 0x7F {
			return invalid("display " + d.Name + ": address is not 7-bit")
		}
		if d.Width <= 0 || d.Height <= 0 || d.Height%8 != 0 {
			return invalid("display " + d.Name + ": bad resolution")
		}
	}
	if p.Displays[0].Addr == p.Displays[1].Addr {
		return invalid("displays share an address")
	}
	if p.RetryBudget < 1 {
		return invalid("retry budget must be at least 1")
	}
	if p.Boot.Magic == 0 {
		return invalid("boot magic must be non-zero")
	}
	if p.Boot.WindowMs == 0 {
		return invalid("boot window is zero")
	}
	return nil
}
