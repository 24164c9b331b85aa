//go:build !rp2040

package bootsel

// warmCell stands in for non-zeroed SRAM. Nothing in the package resets it,
// so simulated restarts within one process observe the previous boot's value.
var warmCell MemCell

// PersistentCell returns the process-wide warm-reset cell.
func PersistentCell() Cell { return &warmCell }

// ROMEntry has no ROM to jump to on host builds.
func ROMEntry() Entry {
	return EntryFunc(func() {
		println("[boot] bootloader entry requested (host build, no ROM)")
	})
}

func halt() { select {} }
