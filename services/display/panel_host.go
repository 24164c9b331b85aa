//go:build !rp2040

package display

import (
	"errors"

	"tinygo.org/x/drivers"
)

// ssd1306 register set, as used by the power-up and flush sequences.
const (
	regSetContrast      = 0x81
	regAllOnResume      = 0xA4
	regNormalDisplay    = 0xA6
	regDisplayOff       = 0xAE
	regDisplayOn        = 0xAF
	regDisplayOffset    = 0xD3
	regComPins          = 0xDA
	regVcomDetect       = 0xDB
	regClockDiv         = 0xD5
	regPrecharge        = 0xD9
	regMultiplex        = 0xA8
	regStartLine        = 0x40
	regMemoryMode       = 0x20
	regColumnAddr       = 0x21
	regPageAddr         = 0x22
	regComScanDec       = 0xC8
	regSegRemap         = 0xA0
	regChargePump       = 0x8D
	regDeactivateScroll = 0x2E
)

var errBufferSize = errors.New("invalid size buffer")

// cmdPanel speaks the same I²C framing as tinygo's ssd1306 driver
// ([0x00, cmd] per command, [0x40, frame...] per flush) for builds without
// the machine package.
type cmdPanel struct {
	bus  drivers.I2C
	addr uint16
	w, h int16
	buf  []byte // [ctrl, frame...]
}

func newPanel(bus drivers.I2C) panel { return &cmdPanel{bus: bus} }

func (p *cmdPanel) command(cmds ...uint8) {
	for _, c := range cmds {
		_ = p.bus.Tx(p.addr, []byte{0x00, c}, nil)
	}
}

// Configure mirrors ssd1306.Device.Configure for a switched-cap panel. Like
// the driver, it does not report command errors; the wire latches them.
func (p *cmdPanel) Configure(cfg panelConfig) {
	p.addr, p.w, p.h = uint16(cfg.Addr), cfg.Width, cfg.Height
	p.buf = make([]byte, 1+int(p.w)*int(p.h)/8)

	p.command(regDisplayOff, regClockDiv, 0x80, regMultiplex, uint8(p.h-1),
		regDisplayOffset, 0x00, regStartLine|0x00, regChargePump, 0x14,
		regMemoryMode, 0x00, regSegRemap|0x01, regComScanDec)
	switch {
	case p.w == 128 && p.h == 32:
		p.command(regComPins, 0x02, regSetContrast, 0x8F)
	case p.w == 96 && p.h == 16:
		p.command(regComPins, 0x02, regSetContrast, 0xAF)
	default:
		p.command(regComPins, 0x12, regSetContrast, 0xCF)
	}
	p.command(regPrecharge, 0xF1, regVcomDetect, 0x40, regAllOnResume,
		regNormalDisplay, regDeactivateScroll, regDisplayOn)
}

func (p *cmdPanel) SetBuffer(buf []byte) error {
	if len(buf) != len(p.buf)-1 {
		return errBufferSize
	}
	copy(p.buf[1:], buf)
	return nil
}

func (p *cmdPanel) Display() error {
	p.command(regColumnAddr, 0, uint8(p.w-1), regPageAddr, 0, uint8(p.h/8)-1)
	p.buf[0] = 0x40
	return p.bus.Tx(p.addr, p.buf, nil)
}
