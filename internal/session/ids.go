package session

import (
	"strconv"
	"sync/atomic"
)

// IDAllocator issues identifiers of the form id<N> from a monotonic counter.
//
// Thread-safety: IDAllocator is safe for concurrent use (atomic operations).
// Each call to Next returns a distinct identifier.
type IDAllocator struct {
	last atomic.Int64
}

// NewIDAllocator creates an allocator whose first identifier is id1.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{}
}

// NewIDAllocatorAt creates an allocator that resumes after last.
// Used to reattach to a session whose counter was persisted.
func NewIDAllocatorAt(last int64) *IDAllocator {
	a := &IDAllocator{}
	a.last.Store(last)
	return a
}

// Next returns the next identifier.
func (a *IDAllocator) Next() string {
	return "id" + strconv.FormatInt(a.last.Add(1), 10)
}

// Last returns the counter value of the most recent identifier,
// or the starting point if none has been issued.
func (a *IDAllocator) Last() int64 {
	return a.last.Load()
}
