package util

import "sync/atomic"

// SafeCounter is a monotonically adjusted counter that is safe to use concurrently.
type SafeCounter struct {
	value atomic.Int64
}

// NewSafeCounter creates a counter starting at zero.
func NewSafeCounter() *SafeCounter {
	return &SafeCounter{}
}

// Increment increments the counter's value and returns the new value.
func (sc *SafeCounter) Increment() int64 {
	return sc.value.Add(1)
}

// Add adds a delta to the counter's value and returns the new value.
func (sc *SafeCounter) Add(delta int64) int64 {
	return sc.value.Add(delta)
}

// Reset sets the counter back to zero and returns the previous value.
func (sc *SafeCounter) Reset() int64 {
	return sc.value.Swap(0)
}

// Value returns the current value of the counter.
func (sc *SafeCounter) Value() int64 {
	return sc.value.Load()
}

// SafeFlag is a boolean that is safe to use concurrently.
type SafeFlag struct {
	value atomic.Bool
}

// NewSafeFlag creates a flag with an initial value.
func NewSafeFlag(initial bool) *SafeFlag {
	f := &SafeFlag{}
	f.value.Store(initial)
	return f
}

// Set sets the value of the flag.
func (sf *SafeFlag) Set(v bool) {
	sf.value.Store(v)
}

// Value returns the current value of the flag.
func (sf *SafeFlag) Value() bool {
	return sf.value.Load()
}

// Raise sets the flag and reports whether this call changed it. Only one of several
// concurrent callers wins.
func (sf *SafeFlag) Raise() bool {
	return sf.value.CompareAndSwap(false, true)
}

// Lower clears the flag and reports whether this call changed it.
func (sf *SafeFlag) Lower() bool {
	return sf.value.CompareAndSwap(true, false)
}
