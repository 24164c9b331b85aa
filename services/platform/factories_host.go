//go:build !rp2040

package platform

import (
	"errors"
	"io"
	"sync"
	"time"

	"dualdisplay-go/services/board"

	"tinygo.org/x/drivers"
)

// ErrNack is what HostI2C reports for a scripted failure.
var ErrNack = errors.New("i2c: nack")

// HostTx is one recorded transaction.
type HostTx struct {
	Addr uint16
	W    []byte
	Rn   int
	Err  error
}

// HostI2C implements tinygo drivers.I2C for host-side tests. It records every
// transaction and can be scripted to fail per address.
type HostI2C struct {
	mu   sync.Mutex
	log  []HostTx
	fail map[uint16]int // remaining forced failures; <0 => always

	// Respond, if set, fills r for reads.
	Respond func(addr uint16, w, r []byte)
}

var _ drivers.I2C = (*HostI2C)(nil)

func (h *HostI2C) Tx(addr uint16, w, r []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var err error
	if n, ok := h.fail[addr]; ok && n != 0 {
		err = ErrNack
		if n > 0 {
			h.fail[addr] = n - 1
		}
	} else if h.Respond != nil && len(r) > 0 {
		h.Respond(addr, w, r)
	}
	h.log = append(h.log, HostTx{Addr: addr, W: append([]byte(nil), w...), Rn: len(r), Err: err})
	return err
}

// FailNext makes the next n transactions to addr fail.
func (h *HostI2C) FailNext(addr uint16, n int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.fail == nil {
		h.fail = make(map[uint16]int)
	}
	h.fail[addr] = n
}

// FailAlways makes every transaction to addr fail until Heal.
func (h *HostI2C) FailAlways(addr uint16) { h.FailNext(addr, -1) }

func (h *HostI2C) Heal(addr uint16) {
	h.mu.Lock()
	delete(h.fail, addr)
	h.mu.Unlock()
}

// Log returns a copy of the recorded transactions.
func (h *HostI2C) Log() []HostTx {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]HostTx(nil), h.log...)
}

// CountTo returns how many transactions were issued to addr.
func (h *HostI2C) CountTo(addr uint16) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, tx := range h.log {
		if tx.Addr == addr {
			n++
		}
	}
	return n
}

func (h *HostI2C) ClearLog() {
	h.mu.Lock()
	h.log = nil
	h.mu.Unlock()
}

// DefaultI2C returns an inert host bus for the planned controller.
func DefaultI2C(_ board.BusPlan) (drivers.I2C, error) {
	return &HostI2C{}, nil
}

// ConsoleWriter has no UART to mirror onto on host builds.
func ConsoleWriter(_ board.ConsolePlan) io.Writer { return nil }

// Idle stands in for wfi: the goroutine blocks until a timer wakes it.
func Idle() { time.Sleep(100 * time.Millisecond) }
