//go:build rp2040

package platform

import (
	"device/arm"
	"io"
	"machine"

	"dualdisplay-go/errcode"
	"dualdisplay-go/services/board"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
	"tinygo.org/x/drivers"
)

// DefaultI2C configures the planned controller, its pins and clock, and
// returns it as the raw bus resource for the arbiter.
func DefaultI2C(p board.BusPlan) (drivers.I2C, error) {
	var hw *machine.I2C
	switch p.ID {
	case "i2c0":
		hw = machine.I2C0
	case "i2c1":
		hw = machine.I2C1
	default:
		return nil, &errcode.E{C: errcode.BusUnavailable, Op: "platform.i2c", Msg: "unknown bus " + p.ID}
	}
	sda := machine.Pin(p.SDA)
	scl := machine.Pin(p.SCL)
	sda.Configure(machine.PinConfig{Mode: machine.PinI2C})
	scl.Configure(machine.PinConfig{Mode: machine.PinI2C})
	if err := hw.Configure(machine.I2CConfig{
		SDA:       sda,
		SCL:       scl,
		Frequency: p.Hz,
	}); err != nil {
		return nil, errcode.Wrap(errcode.BusUnavailable, "platform.i2c", err)
	}
	return hw, nil
}

// ConsoleWriter returns the UART the console mirrors onto, or nil when the
// plan disables it.
func ConsoleWriter(p board.ConsolePlan) io.Writer {
	var hw *uartx.UART
	switch p.ID {
	case "uart0":
		hw = uartx.UART0
	case "uart1":
		hw = uartx.UART1
	default:
		return nil
	}
	// Defaults inside uartx apply if zero.
	if err := hw.Configure(uartx.UARTConfig{
		BaudRate: p.Baud,
		TX:       machine.Pin(p.TX),
		RX:       machine.Pin(p.RX),
	}); err != nil {
		return nil
	}
	return hw
}

// Idle sleeps the core until the next interrupt.
func Idle() { arm.Asm("wfi") }
