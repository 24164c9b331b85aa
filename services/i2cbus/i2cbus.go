// Package i2cbus arbitrates the one physical I²C bus between logical users.
//
// An Arbiter owns the bus hardware. Users Acquire a Token bound to one 7-bit
// target address, issue any number of transactions through it, and Release
// it. While a token is held no other token can be acquired, so a multi-step
// sequence (display init, frame flush) is never interleaved with another
// user's traffic. Arbitration is per token, not per byte.
//
// Acquisition busy-waits: there is no cooperative suspension and no timeout.
// Ownership changes happen inside a critical section (interrupts disabled on
// the MCU, a mutex on host builds); transfers run outside it under the token.
package i2cbus

import (
	"dualdisplay-go/errcode"
	"dualdisplay-go/x/conv"

	"tinygo.org/x/drivers"
)

// OpKind selects the shape of one transaction.
type OpKind uint8

const (
	OpWrite OpKind = iota
	OpRead
	OpWriteRead // write, repeated start, read; bus is not released in between
)

func (k OpKind) String() string {
	switch k {
	case OpWrite:
		return "write"
	case OpRead:
		return "read"
	case OpWriteRead:
		return "write_read"
	}
	return "unknown"
}

// Op is one atomic transaction against a token's bound address.
type Op struct {
	Kind OpKind
	W    []byte
	R    []byte
}

func Write(w []byte) Op        { return Op{Kind: OpWrite, W: w} }
func Read(r []byte) Op         { return Op{Kind: OpRead, R: r} }
func WriteRead(w, r []byte) Op { return Op{Kind: OpWriteRead, W: w, R: r} }

func opFor(w, r []byte) Op {
	switch {
	case len(w) > 0 && len(r) > 0:
		return WriteRead(w, r)
	case len(r) > 0:
		return Read(r)
	default:
		return Write(w)
	}
}

// EventKind classifies observer events.
type EventKind uint8

const (
	EvAcquire EventKind = iota
	EvPerform
	EvRelease
)

// Event is reported to the observer outside the critical section, while the
// reporting token still holds the bus.
type Event struct {
	Kind EventKind
	Addr uint8
	Op   OpKind // EvPerform only
	N    int    // bytes written+read, EvPerform only
	Err  error  // EvPerform only
}

// Observer receives bus events in order. It must not call back into the
// Arbiter.
type Observer func(Event)

// Arbiter owns the bus resource. The zero value has no hardware attached and
// fails every transaction with errcode.BusUnavailable.
type Arbiter struct {
	cs critical

	hw   drivers.I2C
	held bool
	addr uint8
	gen  uint32 // bumped on every acquire; stale tokens never match

	obs Observer
}

// New returns an Arbiter for hw. hw may be nil and attached later.
func New(hw drivers.I2C) *Arbiter {
	return &Arbiter{hw: hw}
}

// Attach installs (or replaces) the bus hardware. It must not be called while
// a token is held.
func (a *Arbiter) Attach(hw drivers.I2C) {
	st := a.cs.enter()
	a.hw = hw
	a.cs.exit(st)
}

// Ready reports whether bus hardware is attached.
func (a *Arbiter) Ready() bool {
	if a == nil {
		return false
	}
	st := a.cs.enter()
	ok := a.hw != nil
	a.cs.exit(st)
	return ok
}

// SetObserver installs fn (nil to clear).
func (a *Arbiter) SetObserver(fn Observer) {
	st := a.cs.enter()
	a.obs = fn
	a.cs.exit(st)
}

func (a *Arbiter) notify(obs Observer, ev Event) {
	if obs != nil {
		obs(ev)
	}
}

// Acquire blocks until the bus is free, then returns a token bound to addr.
func (a *Arbiter) Acquire(addr uint8) (*Token, error) {
	if a == nil {
		return nil, errcode.BusUnavailable
	}
	if addr > 0x7F {
		return nil, errcode.InvalidAddress
	}
	for {
		st := a.cs.enter()
		if !a.held {
			a.held = true
			a.addr = addr
			a.gen++
			t := &Token{a: a, addr: addr, gen: a.gen}
			obs := a.obs
			a.cs.exit(st)
			a.notify(obs, Event{Kind: EvAcquire, Addr: addr})
			return t, nil
		}
		a.cs.exit(st)
		spin()
	}
}

// With runs fn under a token for addr and releases it on every exit path,
// including a panic in fn.
func (a *Arbiter) With(addr uint8, fn func(t *Token) error) error {
	t, err := a.Acquire(addr)
	if err != nil {
		return err
	}
	defer t.Release()
	return fn(t)
}

// Busy reports whether a token is currently held.
func (a *Arbiter) Busy() bool {
	st := a.cs.enter()
	b := a.held
	a.cs.exit(st)
	return b
}

// Token is a scoped, address-bound handle on the bus.
type Token struct {
	a        *Arbiter
	addr     uint8
	gen      uint32
	released bool
}

// Ensure a Token can carry third-party drivers.
var _ drivers.I2C = (*Token)(nil)

func (t *Token) Addr() uint8 { return t.addr }

// Perform executes one transaction and returns the number of bytes read.
func (t *Token) Perform(op Op) (int, error) {
	if t == nil || t.a == nil || t.released {
		return 0, errcode.BusUnavailable
	}
	a := t.a

	w, r := op.W, op.R
	switch op.Kind {
	case OpWrite:
		r = nil
	case OpRead:
		w = nil
	}

	st := a.cs.enter()
	if !a.held || a.gen != t.gen || a.hw == nil {
		a.cs.exit(st)
		return 0, errcode.BusUnavailable
	}
	hw := a.hw
	a.cs.exit(st)

	// The held token already excludes every other user, so the transfer
	// itself runs with interrupts enabled.
	err := hw.Tx(uint16(t.addr), w, r)

	st = a.cs.enter()
	lost := !a.held || a.gen != t.gen
	obs := a.obs
	a.cs.exit(st)

	opName := "i2c." + op.Kind.String()
	if err == nil && lost {
		err = &errcode.E{C: errcode.TransactionAborted, Op: opName, Msg: "bus released during transfer"}
	}
	a.notify(obs, Event{Kind: EvPerform, Addr: t.addr, Op: op.Kind, N: len(w) + len(r), Err: err})
	if err != nil {
		return 0, &errcode.E{C: errcode.MapDriverErr(err), Op: opName, Err: err}
	}
	return len(r), nil
}

// Tx adapts the token to drivers.I2C. addr must match the bound address.
func (t *Token) Tx(addr uint16, w, r []byte) error {
	if t != nil && addr != uint16(t.addr) {
		return &errcode.E{C: errcode.TransactionAborted, Op: "i2c.tx", Msg: "address " + conv.Hex8(uint8(addr)) + " not bound to token"}
	}
	_, err := t.Perform(opFor(w, r))
	return err
}

// Release frees the bus. Releasing twice, or after the bus moved on, is a
// no-op.
func (t *Token) Release() {
	if t == nil || t.a == nil || t.released {
		return
	}
	a := t.a
	t.released = true

	st := a.cs.enter()
	owner := a.held && a.gen == t.gen
	obs := a.obs
	a.cs.exit(st)
	if !owner {
		return
	}

	// Report before freeing: the next holder's acquire must log after us.
	a.notify(obs, Event{Kind: EvRelease, Addr: t.addr})

	st = a.cs.enter()
	a.held = false
	a.cs.exit(st)
}
