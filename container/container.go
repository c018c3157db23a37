// Package container defines the capability set shared by the candidate
// containers under benchmark and provides three implementations of it.
package container

import (
	"errors"
	"iter"
)

// Handle identifies one inserted element. It stays valid until that
// element is erased, or until the container is cleared, sorted or
// shrunk.
type Handle uint64

// Container is the capability set every candidate exposes. A candidate
// must additionally implement Eraser or VoidEraser.
type Container[P Payload] interface {
	Insert(key int32) Handle
	Len() int
	Clear()
	ShrinkToFit()
	// All yields every live element once. The yielded pointer is only
	// valid until the next mutation.
	All() iter.Seq[*Element[P]]
	// Sort reorders the elements in place by key.
	Sort()
}

// Eraser is implemented by containers whose erase reports the handle
// of the element following the erased one in traversal order.
type Eraser interface {
	Erase(h Handle) (next Handle, ok bool)
}

// VoidEraser is implemented by containers offering an erase that
// returns nothing.
type VoidEraser interface {
	EraseVoid(h Handle)
}

// Visitor is implemented by containers with a bulk traversal API.
type Visitor[P Payload] interface {
	VisitAll(fn func(*Element[P]))
}

// ErrNoEraser is the panic value raised when erasing through a
// container that declares no erase capability.
var ErrNoEraser = errors.New("container declares no erase capability")

// Erase removes the element behind h, dispatching on the erase
// capability c declares. The void form is preferred when both exist.
func Erase[P Payload](c Container[P], h Handle) {
	switch e := any(c).(type) {
	case VoidEraser:
		e.EraseVoid(h)
	case Eraser:
		e.Erase(h)
	default:
		panic(ErrNoEraser)
	}
}

// Capabilities describes the optional capabilities of a container.
type Capabilities struct {
	HandleErase bool
	VoidErase   bool
	VisitAll    bool
}

// Describe reports which optional capabilities c declares.
func Describe[P Payload](c Container[P]) Capabilities {
	_, handle := any(c).(Eraser)
	_, void := any(c).(VoidEraser)
	_, visit := any(c).(Visitor[P])

	return Capabilities{
		HandleErase: handle,
		VoidErase:   void,
		VisitAll:    visit,
	}
}

// Check verifies that c declares at least one erase capability.
func Check[P Payload](c Container[P]) error {
	caps := Describe(c)
	if !caps.HandleErase && !caps.VoidErase {
		return ErrNoEraser
	}

	return nil
}
