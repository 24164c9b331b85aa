package board

// Selected is the Pico with two 128x64 SSD1306 panels on I2C1 (GP2/GP3).
var Selected = Plan{
	Name: "pico_dual_oled",
	Bus:  BusPlan{ID: "i2c1", SDA: 2, SCL: 3, Hz: 400_000},
	Displays: [2]DisplayPlan{
		{
			Name: "disp1", Addr: 0x3D, Width: 128, Height: 64,
			Splash: []TextLine{{X: 0, Y: 20, Text: "RMK Display 1"}, {X: 0, Y: 35, Text: "OK"}},
		},
		{
			Name: "disp2", Addr: 0x3C, Width: 128, Height: 64,
			Splash: []TextLine{{X: 0, Y: 20, Text: "RMK Display 2"}, {X: 0, Y: 35, Text: "OK"}},
		},
	},
	RetryBudget: 3,
	Boot: BootPlan{
		Magic:      0x0B0075E1,
		WindowMs:   500,
		DebounceMs: 500,
	},
	// RP2040 default UART0 pins.
	Console: ConsolePlan{ID: "uart0", TX: 0, RX: 1, Baud: 115200},
}
