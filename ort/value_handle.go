package ort

import "sync/atomic"

// ValueHandle shares ownership of a runtime-owned OrtValue pointer. The
// runtime's ReleaseValue entry fires exactly once per owned pointer, when
// the last reference drops, regardless of which goroutine drops it.
//
// A ValueHandle carries no kind, shape, or size; it only knows how to be
// released. It must be shared as a pointer: copying the struct would bypass
// the reference count and double-release the native buffer.
type ValueHandle struct {
	refs  atomic.Int64
	value uintptr
	// owner is the enclosing array-of-values pointer when the runtime
	// returned this value inside a collection, 0 otherwise. It is released
	// together with value.
	owner uintptr
}

// newValueHandle wraps a runtime-owned OrtValue pointer with an initial
// reference count of one.
func newValueHandle(value uintptr) *ValueHandle {
	return newValueHandleWithOwner(value, 0)
}

// newValueHandleWithOwner wraps a value that lives inside a runtime-returned
// collection; both pointers are released when the last reference drops.
func newValueHandleWithOwner(value, owner uintptr) *ValueHandle {
	h := &ValueHandle{value: value, owner: owner}
	h.refs.Store(1)
	return h
}

// Retain adds a reference and returns the handle for chaining.
func (h *ValueHandle) Retain() *ValueHandle {
	if h.refs.Add(1) <= 1 {
		panic("ort: Retain on a released ValueHandle")
	}
	return h
}

// Release drops one reference. On the last drop the native value (and the
// owning collection, if any) is handed back to the runtime. Releasing more
// times than retained is a programming error and panics.
func (h *ValueHandle) Release() {
	remaining := h.refs.Add(-1)
	if remaining > 0 {
		return
	}
	if remaining < 0 {
		panic("ort: ValueHandle released more times than retained")
	}

	// Lock order here is ortCallMu -> mu.
	ortCallMu.Lock()
	defer ortCallMu.Unlock()

	mu.Lock()
	release := releaseValueFunc
	mu.Unlock()

	value, owner := h.value, h.owner
	h.value = 0
	h.owner = 0

	if release == nil {
		return
	}
	if value != 0 {
		release(value)
	}
	if owner != 0 {
		release(owner)
	}
}

// valuePtr returns the wrapped OrtValue pointer. Callers must hold a live
// reference for the duration of any native call made with it.
func (h *ValueHandle) valuePtr() uintptr {
	return h.value
}
