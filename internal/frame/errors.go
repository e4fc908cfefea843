package frame

import (
	"errors"
	"strconv"
)

// poolExhaustedError signals an Acquire on an empty free list. Pools are sized
// for the worst case, so this is a scheduling bug rather than a load condition.
type poolExhaustedError struct{ size int }

func (e poolExhaustedError) Error() string {
	return "pool exhausted: all " + strconv.Itoa(e.size) + " buffers in use"
}

// IsPoolExhausted reports whether err indicates an empty free list.
func IsPoolExhausted(err error) bool {
	var e poolExhaustedError
	return errors.As(err, &e)
}

// doubleReleaseError signals Release of a buffer that is already free.
type doubleReleaseError struct{ id int }

func (e doubleReleaseError) Error() string {
	return "buffer " + strconv.Itoa(e.id) + " released twice"
}

// IsDoubleRelease reports whether err indicates a repeated Release.
func IsDoubleRelease(err error) bool {
	var e doubleReleaseError
	return errors.As(err, &e)
}

// foreignBufferError signals Release of a buffer this pool did not create.
type foreignBufferError struct{ id int }

func (e foreignBufferError) Error() string {
	return "buffer " + strconv.Itoa(e.id) + " does not belong to this pool"
}

// IsForeignBuffer reports whether err indicates a buffer from another pool.
func IsForeignBuffer(err error) bool {
	var e foreignBufferError
	return errors.As(err, &e)
}
