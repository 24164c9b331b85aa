package display

// panel is the SSD1306 command surface a Channel drives. Every call goes out
// over the tokenWire passed to newPanel, so it only reaches the bus inside an
// attempt.
type panel interface {
	Configure(cfg panelConfig)
	SetBuffer(buf []byte) error
	Display() error
}

type panelConfig struct {
	Addr          uint8
	Width, Height int16
}
