package container

import "unsafe"

// Payload is the set of filler regions an Element can carry. Each type
// pads the element to a power-of-two total size.
type Payload interface {
	~[4]byte | ~[12]byte | ~[28]byte | ~[60]byte | ~[124]byte | ~[252]byte
}

// SupportedSizes lists the total element sizes, in bytes, with a
// matching Payload type.
var SupportedSizes = []int{8, 16, 32, 64, 128, 256}

// Element is the record stored by every candidate container: a 32-bit
// key followed by a fixed-size filler region.
type Element[P Payload] struct {
	Key     int32
	Payload P
}

// Int returns the element's key.
func (e *Element[P]) Int() int32 {
	return e.Key
}

// SizeOf returns the in-memory size of Element[P].
func SizeOf[P Payload]() uintptr {
	var e Element[P]

	return unsafe.Sizeof(e)
}

// release zeroes the payload of an element that is being destroyed or
// moved from, when the container models non-trivial payloads.
func release[P Payload](e *Element[P], nontrivial bool) {
	if nontrivial {
		var zero P
		e.Payload = zero
	}
}
