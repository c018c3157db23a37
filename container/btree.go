package container

import (
	"iter"

	"github.com/google/btree"
)

const btreeDegree = 32

type btreeItem[P Payload] struct {
	elem Element[P]
	seq  uint64
}

func lessItem[P Payload](a, b *btreeItem[P]) bool {
	if a.elem.Key != b.elem.Key {
		return a.elem.Key < b.elem.Key
	}

	return a.seq < b.seq
}

// BTree keeps elements ordered by key in a B-tree. Duplicate keys are
// disambiguated by insertion sequence, which also serves as the handle.
type BTree[P Payload] struct {
	tree       *btree.BTreeG[*btreeItem[P]]
	items      map[Handle]*btreeItem[P]
	seq        uint64
	nontrivial bool
}

// NewBTree returns an empty BTree.
func NewBTree[P Payload](nontrivial bool) *BTree[P] {
	return &BTree[P]{
		tree:       btree.NewG(btreeDegree, lessItem[P]),
		items:      make(map[Handle]*btreeItem[P]),
		nontrivial: nontrivial,
	}
}

// Insert adds an element with the given key.
func (t *BTree[P]) Insert(key int32) Handle {
	t.seq++

	it := &btreeItem[P]{elem: Element[P]{Key: key}, seq: t.seq}
	t.tree.ReplaceOrInsert(it)

	h := Handle(t.seq)
	t.items[h] = it

	return h
}

// EraseVoid removes the element behind h.
func (t *BTree[P]) EraseVoid(h Handle) {
	it, ok := t.items[h]
	if !ok {
		panic(ErrStaleHandle)
	}

	delete(t.items, h)
	t.tree.Delete(it)
	release(&it.elem, t.nontrivial)
}

// Len returns the number of live elements.
func (t *BTree[P]) Len() int {
	return t.tree.Len()
}

// Clear destroys every element and keeps the tree nodes on the free list.
func (t *BTree[P]) Clear() {
	if t.nontrivial {
		t.tree.Ascend(func(it *btreeItem[P]) bool {
			release(&it.elem, true)
			return true
		})
	}

	t.tree.Clear(true)
	clear(t.items)
}

// ShrinkToFit drops the node free list and the handle index once the
// tree is empty. A non-empty tree is left untouched.
func (t *BTree[P]) ShrinkToFit() {
	if t.tree.Len() > 0 {
		return
	}

	t.tree = btree.NewG(btreeDegree, lessItem[P])
	t.items = make(map[Handle]*btreeItem[P])
}

// All yields elements in key order.
func (t *BTree[P]) All() iter.Seq[*Element[P]] {
	return func(yield func(*Element[P]) bool) {
		t.tree.Ascend(func(it *btreeItem[P]) bool {
			return yield(&it.elem)
		})
	}
}

// VisitAll calls fn for every element in key order.
func (t *BTree[P]) VisitAll(fn func(*Element[P])) {
	t.tree.Ascend(func(it *btreeItem[P]) bool {
		fn(&it.elem)
		return true
	})
}

// Sort is a no-op: the tree is always ordered by key.
func (t *BTree[P]) Sort() {}
