//go:build !rp2040

package i2cbus

import (
	"runtime"
	"sync"
)

// Host builds stand in a mutex for interrupt masking so tests may drive the
// Arbiter from several goroutines.
type critical struct {
	mu sync.Mutex
}

type csState struct{}

func (c *critical) enter() csState {
	c.mu.Lock()
	return csState{}
}

func (c *critical) exit(csState) { c.mu.Unlock() }

func spin() { runtime.Gosched() }
