package utils

import "go.uber.org/atomic"

// Disposer runs a cleanup action at most once, no matter how many goroutines call Dispose.
type Disposer struct {
	done atomic.Bool
	fn   func() error
}

// NewDisposer wraps fn, which may be nil.
func NewDisposer(fn func() error) *Disposer {
	return &Disposer{fn: fn}
}

// Dispose runs the wrapped action on the first call and returns its error.
// Every later call is a no-op returning nil.
func (d *Disposer) Dispose() error {
	if !d.done.CAS(false, true) {
		return nil
	}
	if d.fn == nil {
		return nil
	}
	return d.fn()
}

// Disposed reports whether Dispose has been called.
func (d *Disposer) Disposed() bool {
	return d.done.Load()
}
