//go:build rp2040

package display

import (
	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/ssd1306"
)

type ssdPanel struct {
	*ssd1306.Device
}

func newPanel(bus drivers.I2C) panel { return ssdPanel{ssd1306.NewI2C(bus)} }

func (p ssdPanel) Configure(cfg panelConfig) {
	p.Device.Configure(ssd1306.Config{
		Address:  uint16(cfg.Addr),
		Width:    cfg.Width,
		Height:   cfg.Height,
		VccState: ssd1306.SWITCHCAPVCC,
	})
}
