package trading

import "sync"

// gate is a settable broadcast flag. Wait returns a channel that is closed
// while the gate is set, so every waiter is released together. Set and Clear
// are idempotent. Order lifecycle gates (received/done) are only ever Set;
// session gates (connected/loggedIn and their inverses) toggle across
// reconnects.
type gate struct {
	mx  sync.Mutex
	set bool
	ch  chan struct{}
}

func newGate(set bool) *gate {
	g := &gate{set: set, ch: make(chan struct{})}
	if set {
		close(g.ch)
	}
	return g
}

func (g *gate) Set() {
	g.mx.Lock()
	defer g.mx.Unlock()
	if g.set {
		return
	}
	g.set = true
	close(g.ch)
}

func (g *gate) Clear() {
	g.mx.Lock()
	defer g.mx.Unlock()
	if !g.set {
		return
	}
	g.set = false
	g.ch = make(chan struct{})
}

// Wait returns the current broadcast channel. The channel is closed once the
// gate is set; callers select on it together with their context.
func (g *gate) Wait() <-chan struct{} {
	g.mx.Lock()
	defer g.mx.Unlock()
	return g.ch
}

func (g *gate) IsSet() bool {
	g.mx.Lock()
	defer g.mx.Unlock()
	return g.set
}
