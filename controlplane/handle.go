package controlplane

import "github.com/google/uuid"

// HandleAllocator produces fresh node handles. Must be safe for
// concurrent use and must never repeat within a process lifetime.
type HandleAllocator func() string

// NewHandle is the default allocator. UUIDv4 gives uniqueness under
// concurrent allocation and keeps handles unguessable by clients that
// do not already hold one.
func NewHandle() string {
	return uuid.NewString()
}
