package container

import (
	"cmp"
	"iter"
	"math/bits"
	"slices"
)

const (
	hubBlockSize = 64
	hubFullMask  = ^uint64(0)
)

type hubBlock[P Payload] struct {
	elems [hubBlockSize]Element[P]
	mask  uint64 // bit i set when elems[i] is live
}

// Hub stores elements in fixed 64-slot blocks tracked by an occupancy
// bitmask. Erasure is void: it never computes a successor.
type Hub[P Payload] struct {
	blocks     []*hubBlock[P]
	avail      []int // blocks with at least one free slot
	size       int
	nontrivial bool
}

// NewHub returns an empty Hub.
func NewHub[P Payload](nontrivial bool) *Hub[P] {
	return &Hub[P]{nontrivial: nontrivial}
}

// Insert adds an element with the given key.
func (h *Hub[P]) Insert(key int32) Handle {
	return h.push(Element[P]{Key: key})
}

func (h *Hub[P]) push(e Element[P]) Handle {
	if len(h.avail) == 0 {
		h.blocks = append(h.blocks, new(hubBlock[P]))
		h.avail = append(h.avail, len(h.blocks)-1)
	}

	top := len(h.avail) - 1
	bi := h.avail[top]
	b := h.blocks[bi]

	slot := bits.TrailingZeros64(^b.mask)
	b.elems[slot] = e
	b.mask |= 1 << slot

	if b.mask == hubFullMask {
		h.avail = h.avail[:top]
	}

	h.size++

	return makeHandle(bi, slot)
}

// EraseVoid removes the element behind hd.
func (h *Hub[P]) EraseVoid(hd Handle) {
	bi, slot := hd.split()
	if bi < 0 || bi >= len(h.blocks) || slot < 0 || slot >= hubBlockSize {
		panic(ErrStaleHandle)
	}

	b := h.blocks[bi]
	bit := uint64(1) << slot

	if b.mask&bit == 0 {
		panic(ErrStaleHandle)
	}

	if b.mask == hubFullMask {
		h.avail = append(h.avail, bi)
	}

	b.mask &^= bit
	release(&b.elems[slot], h.nontrivial)
	h.size--
}

// Len returns the number of live elements.
func (h *Hub[P]) Len() int {
	return h.size
}

// Clear destroys every element but keeps the blocks for reuse.
func (h *Hub[P]) Clear() {
	for _, b := range h.blocks {
		if h.nontrivial {
			for m := b.mask; m != 0; m &= m - 1 {
				release(&b.elems[bits.TrailingZeros64(m)], true)
			}
		}

		b.mask = 0
	}

	h.size = 0
	h.resetAvail()
}

// ShrinkToFit releases empty blocks. Handles into the remaining blocks
// are invalidated.
func (h *Hub[P]) ShrinkToFit() {
	kept := h.blocks[:0]
	for _, b := range h.blocks {
		if b.mask != 0 {
			kept = append(kept, b)
		}
	}

	clear(h.blocks[len(kept):])

	if len(kept) == 0 {
		kept = nil
	}

	h.blocks = kept
	h.resetAvail()
}

// resetAvail rebuilds the free-block stack so the lowest block is
// filled first.
func (h *Hub[P]) resetAvail() {
	h.avail = h.avail[:0]

	for i := len(h.blocks) - 1; i >= 0; i-- {
		if h.blocks[i].mask != hubFullMask {
			h.avail = append(h.avail, i)
		}
	}
}

// All yields live elements block by block.
func (h *Hub[P]) All() iter.Seq[*Element[P]] {
	return func(yield func(*Element[P]) bool) {
		for _, b := range h.blocks {
			for m := b.mask; m != 0; m &= m - 1 {
				if !yield(&b.elems[bits.TrailingZeros64(m)]) {
					return
				}
			}
		}
	}
}

// VisitAll calls fn for every live element. Full blocks are walked
// without consulting the mask.
func (h *Hub[P]) VisitAll(fn func(*Element[P])) {
	for _, b := range h.blocks {
		if b.mask == hubFullMask {
			for i := range b.elems {
				fn(&b.elems[i])
			}

			continue
		}

		for m := b.mask; m != 0; m &= m - 1 {
			fn(&b.elems[bits.TrailingZeros64(m)])
		}
	}
}

// Sort reorders the elements by key and packs them densely from the
// first block. All handles are invalidated.
func (h *Hub[P]) Sort() {
	scratch := make([]Element[P], 0, h.size)
	for e := range h.All() {
		scratch = append(scratch, *e)
	}

	slices.SortFunc(scratch, func(a, b Element[P]) int {
		return cmp.Compare(a.Key, b.Key)
	})

	h.Clear()

	for _, e := range scratch {
		h.push(e)
	}
}
