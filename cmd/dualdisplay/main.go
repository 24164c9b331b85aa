// Firmware for a Pico driving two SSD1306 panels on one I²C bus. A double
// press of reset drops the board into the USB bootloader.
//
//	tinygo flash -target=pico ./cmd/dualdisplay
package main

import "dualdisplay-go/services/app"

func main() {
	// No USB-enumeration delay here: the boot selector must see the reset
	// flag before anything else runs.
	app.Run()
}
