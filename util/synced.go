package util

import "sync/atomic"

// SafeCounter is an int counter safe to use concurrently.
type SafeCounter struct {
	value atomic.Int64
}

// NewSafeCounter creates a new SafeCounter starting at zero.
func NewSafeCounter() *SafeCounter {
	return &SafeCounter{}
}

// Increment increments the counter and returns the new value.
func (c *SafeCounter) Increment() int {
	return int(c.value.Add(1))
}

// Reset sets the counter back to zero and returns the value it had.
func (c *SafeCounter) Reset() int {
	return int(c.value.Swap(0))
}

// Value returns the current value of the counter.
func (c *SafeCounter) Value() int {
	return int(c.value.Load())
}

// SafeFlag is a boolean safe to use concurrently.
type SafeFlag struct {
	value atomic.Bool
}

// NewSafeFlag creates a new SafeFlag with an initial value.
func NewSafeFlag(initial bool) *SafeFlag {
	f := &SafeFlag{}
	f.value.Store(initial)
	return f
}

// Set sets the flag and returns the new value.
func (f *SafeFlag) Set(v bool) bool {
	f.value.Store(v)
	return v
}

// Value returns the current value of the flag.
func (f *SafeFlag) Value() bool {
	return f.value.Load()
}

// CompareAndSwap sets the flag to newValue only if it currently holds old.
func (f *SafeFlag) CompareAndSwap(old, newValue bool) bool {
	return f.value.CompareAndSwap(old, newValue)
}
