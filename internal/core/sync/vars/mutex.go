package vars

import (
	sc "sync"
	"sync/atomic"
)

// Mutex is a value cell guarded by a read-write mutex. It is the only way
// state crosses between network handlers and the simulation goroutine, so
// every read and write of the value goes through it.
type Mutex[T any] struct {
	valueMu sc.RWMutex
	value   T
	version atomic.Uint64
}

// NewMutex creates a cell holding initial at version 1.
func NewMutex[T any](initial T) *Mutex[T] {
	v := &Mutex[T]{value: initial}
	v.version.Store(1)
	return v
}

// Get returns a copy of the current value.
func (v *Mutex[T]) Get() T {
	v.valueMu.RLock()
	defer v.valueMu.RUnlock()
	return v.value
}

// Set replaces the value.
func (v *Mutex[T]) Set(newValue T) {
	v.valueMu.Lock()
	defer v.valueMu.Unlock()
	v.value = newValue
	v.version.Add(1)
}

// Update runs fn with exclusive access to the value. fn reports whether it
// changed anything; the version only moves when it did.
func (v *Mutex[T]) Update(fn func(value *T) bool) bool {
	v.valueMu.Lock()
	defer v.valueMu.Unlock()
	if !fn(&v.value) {
		return false
	}
	v.version.Add(1)
	return true
}

// View runs fn with shared access to the value. fn must not retain the
// pointer.
func (v *Mutex[T]) View(fn func(value *T)) {
	v.valueMu.RLock()
	defer v.valueMu.RUnlock()
	fn(&v.value)
}

// Version counts successful writes, starting at 1.
func (v *Mutex[T]) Version() uint64 {
	return v.version.Load()
}
