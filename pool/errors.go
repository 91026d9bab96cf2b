package pool

import "errors"

var (
	// ErrCapacityExceeded is returned by Alloc when MaxSize objects are live.
	ErrCapacityExceeded = errors.New("exceeded pool max size")

	// ErrAccessViolation is returned when using or releasing an id that is not
	// allocated (already released, never allocated or from before a Clear).
	ErrAccessViolation = errors.New("tried to release or use a released object")

	// ErrNotDefragged is returned by ClearUnusedMemory while holes are pending.
	ErrNotDefragged = errors.New("cannot resize pool while there are holes to defrag")

	// ErrInternal means the pool bookkeeping is corrupted. It never happens
	// under correct use.
	ErrInternal = errors.New("internal error or corrupted pool data")

	// ErrIterating is returned by structural calls made from inside a visitor.
	ErrIterating = errors.New("cannot change pool structure while iterating")
)
