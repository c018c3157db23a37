package container

import (
	"cmp"
	"iter"
	"slices"
)

const (
	hiveMinBlock = 8
	hiveMaxBlock = 8192
)

type hiveBlock[P Payload] struct {
	elems []Element[P]
	live  []bool
	used  int // slots constructed so far
	size  int // live elements
	free  []int32
}

// Hive stores elements in a chain of blocks whose capacity doubles up to
// a fixed maximum. Erased slots are recycled through per-block free lists,
// so live elements never move and handles stay stable.
type Hive[P Payload] struct {
	blocks     []*hiveBlock[P]
	avail      []int // blocks with a non-empty free list
	tail       int   // first block that may have unconstructed slots
	size       int
	nontrivial bool
}

// NewHive returns an empty Hive.
func NewHive[P Payload](nontrivial bool) *Hive[P] {
	return &Hive[P]{nontrivial: nontrivial}
}

// Insert adds an element with the given key.
func (h *Hive[P]) Insert(key int32) Handle {
	return h.push(Element[P]{Key: key})
}

func (h *Hive[P]) push(e Element[P]) Handle {
	if n := len(h.avail); n > 0 {
		bi := h.avail[n-1]
		b := h.blocks[bi]

		last := len(b.free) - 1
		slot := int(b.free[last])
		b.free = b.free[:last]

		if len(b.free) == 0 {
			h.avail = h.avail[:n-1]
		}

		return h.place(bi, slot, e)
	}

	for h.tail < len(h.blocks) &&
		h.blocks[h.tail].used == len(h.blocks[h.tail].elems) {
		h.tail++
	}

	if h.tail == len(h.blocks) {
		h.grow()
	}

	b := h.blocks[h.tail]
	slot := b.used
	b.used++

	return h.place(h.tail, slot, e)
}

func (h *Hive[P]) place(bi, slot int, e Element[P]) Handle {
	b := h.blocks[bi]
	b.elems[slot] = e
	b.live[slot] = true
	b.size++
	h.size++

	return makeHandle(bi, slot)
}

func (h *Hive[P]) grow() {
	capacity := hiveMinBlock
	if n := len(h.blocks); n > 0 {
		capacity = min(2*len(h.blocks[n-1].elems), hiveMaxBlock)
	}

	h.blocks = append(h.blocks, &hiveBlock[P]{
		elems: make([]Element[P], capacity),
		live:  make([]bool, capacity),
	})
}

// Erase removes the element behind hd and returns the handle of the next
// live element in traversal order, if any.
func (h *Hive[P]) Erase(hd Handle) (Handle, bool) {
	bi, slot := hd.split()
	if bi < 0 || bi >= len(h.blocks) {
		panic(ErrStaleHandle)
	}

	b := h.blocks[bi]
	if slot < 0 || slot >= b.used || !b.live[slot] {
		panic(ErrStaleHandle)
	}

	b.live[slot] = false
	release(&b.elems[slot], h.nontrivial)
	b.size--
	h.size--

	b.free = append(b.free, int32(slot))
	if len(b.free) == 1 {
		h.avail = append(h.avail, bi)
	}

	return h.next(bi, slot+1)
}

func (h *Hive[P]) next(bi, slot int) (Handle, bool) {
	for ; bi < len(h.blocks); bi, slot = bi+1, 0 {
		b := h.blocks[bi]
		if b.size == 0 {
			continue
		}

		for ; slot < b.used; slot++ {
			if b.live[slot] {
				return makeHandle(bi, slot), true
			}
		}
	}

	return 0, false
}

// Len returns the number of live elements.
func (h *Hive[P]) Len() int {
	return h.size
}

// Clear destroys every element but keeps the blocks for reuse.
func (h *Hive[P]) Clear() {
	for _, b := range h.blocks {
		for i := 0; i < b.used; i++ {
			if b.live[i] {
				release(&b.elems[i], h.nontrivial)
				b.live[i] = false
			}
		}

		b.used = 0
		b.size = 0
		b.free = b.free[:0]
	}

	h.avail = h.avail[:0]
	h.tail = 0
	h.size = 0
}

// ShrinkToFit releases blocks holding no live elements. Handles into
// the remaining blocks are invalidated.
func (h *Hive[P]) ShrinkToFit() {
	kept := h.blocks[:0]
	for _, b := range h.blocks {
		if b.size > 0 {
			kept = append(kept, b)
		}
	}

	clear(h.blocks[len(kept):])

	if len(kept) == 0 {
		kept = nil
	}

	h.blocks = kept
	h.avail = h.avail[:0]
	h.tail = 0

	for i, b := range h.blocks {
		if len(b.free) > 0 {
			h.avail = append(h.avail, i)
		}
	}
}

// All yields live elements block by block.
func (h *Hive[P]) All() iter.Seq[*Element[P]] {
	return func(yield func(*Element[P]) bool) {
		for _, b := range h.blocks {
			if b.size == 0 {
				continue
			}

			for i := 0; i < b.used; i++ {
				if b.live[i] && !yield(&b.elems[i]) {
					return
				}
			}
		}
	}
}

// Sort reorders the elements by key and compacts them into the leading
// blocks. All handles are invalidated.
func (h *Hive[P]) Sort() {
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
