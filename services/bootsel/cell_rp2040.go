//go:build rp2040

package bootsel

import (
	"device/arm"
	"machine"
	"sync/atomic"
	"unsafe"
)

// flagAddr is the first word of SRAM4. TinyGo's RP2040 memory map ends at
// 0x20040000, so neither the .bss clear nor the heap reaches it, and the
// bootrom only claims the top 256 bytes of SRAM5 for boot2. Contents survive
// a warm reset (RUN pin, watchdog); after power loss they are undefined.
const flagAddr = 0x20040000

type sramCell struct{}

func (sramCell) word() *uint32 { return (*uint32)(unsafe.Pointer(uintptr(flagAddr))) }

func (c sramCell) Load() uint32   { return atomic.LoadUint32(c.word()) }
func (c sramCell) Store(v uint32) { atomic.StoreUint32(c.word(), v) }

// PersistentCell returns the flag word that survives a warm reset.
func PersistentCell() Cell { return sramCell{} }

// ROMEntry calls the bootrom's reset_usb_boot(0, 0).
func ROMEntry() Entry { return EntryFunc(machine.EnterBootloader) }

func halt() {
	for {
		arm.Asm("wfi")
	}
}
