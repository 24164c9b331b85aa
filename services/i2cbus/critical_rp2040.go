//go:build rp2040

package i2cbus

import (
	"device/arm"
	"runtime/interrupt"
)

// Single core: masking interrupts is the global lock.
type critical struct{}

type csState = interrupt.State

func (critical) enter() csState  { return interrupt.Disable() }
func (critical) exit(st csState) { interrupt.Restore(st) }

func spin() { arm.Asm("nop") }
