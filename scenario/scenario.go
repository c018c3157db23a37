// Package scenario wraps workload construction into the measured
// operations compared between two candidates. Each scenario returns a
// checksum that the timer folds into its sink.
package scenario

import (
	"github.com/weiihann/hubbench/container"
	"github.com/weiihann/hubbench/workload"
)

// Titles of the standard scenario pairs, in table order.
const (
	TitleBuild        = "insert, erase, insert"
	TitleBuildDestroy = "ins, erase, ins, destroy"
	TitleForEach      = "for_each"
	TitleVisitAll     = "visit_all"
	TitleSort         = "sort"
)

// Func is one measured operation on a grid cell.
type Func func(n int, erasureRate float64) uint32

// Pauser excludes work from the open measurement.
type Pauser interface {
	Pause()
	Resume()
}

// Pair is one named scenario applied to both candidates. Release, when
// set, frees whatever the pair retains between calls and is invoked once
// the pair has been measured.
type Pair struct {
	Title   string
	A, B    Func
	Release func()
}

// Suite returns the standard five scenario pairs. The visit_all pair
// times candidate A's plain traversal against candidate B's bulk
// traversal capability.
func Suite[P container.Payload](a, b container.Factory[P], p Pauser) []Pair {
	eachA, eachB := newCache(a, p), newCache(b, p)
	visitA, visitB := newCache(a, p), newCache(b, p)

	return []Pair{
		{Title: TitleBuild, A: BuildEraseRebuild(a, p), B: BuildEraseRebuild(b, p)},
		{Title: TitleBuildDestroy, A: BuildEraseRebuildDestroy(a), B: BuildEraseRebuildDestroy(b)},
		{
			Title:   TitleForEach,
			A:       eachA.fullTraversal,
			B:       eachB.fullTraversal,
			Release: releaseAll(eachA, eachB),
		},
		{
			Title:   TitleVisitAll,
			A:       visitA.fullTraversal,
			B:       visitB.capabilityTraversal,
			Release: releaseAll(visitA, visitB),
		},
		{Title: TitleSort, A: SortAll(a, p), B: SortAll(b, p)},
	}
}

// BuildEraseRebuild builds a container, refills it to n and returns its
// size. Destroying the container is excluded from the measurement.
func BuildEraseRebuild[P container.Payload](newC container.Factory[P], p Pauser) Func {
	return func(n int, erasureRate float64) uint32 {
		c := workload.Make(newC, n, erasureRate)
		workload.Fill(c, n)
		res := uint32(c.Len())

		p.Pause()
		destroy(c)
		p.Resume()

		return res
	}
}

// BuildEraseRebuildDestroy is BuildEraseRebuild with the container's
// destruction inside the measurement.
func BuildEraseRebuildDestroy[P container.Payload](newC container.Factory[P]) Func {
	return func(n int, erasureRate float64) uint32 {
		c := workload.Make(newC, n, erasureRate)
		workload.Fill(c, n)
		res := uint32(c.Len())
		destroy(c)

		return res
	}
}

// FullTraversal sums the keys of a cached container with a plain
// range over All.
func FullTraversal[P container.Payload](newC container.Factory[P], p Pauser) Func {
	return newCache(newC, p).fullTraversal
}

// CapabilityTraversal sums the keys of a cached container through its
// VisitAll capability, falling back to All when the candidate has none.
func CapabilityTraversal[P container.Payload](newC container.Factory[P], p Pauser) Func {
	return newCache(newC, p).capabilityTraversal
}

// SortAll builds a container outside the measurement and times only its
// in-place sort.
func SortAll[P container.Payload](newC container.Factory[P], p Pauser) Func {
	return func(n int, erasureRate float64) uint32 {
		p.Pause()
		c := workload.Make(newC, n, erasureRate)
		p.Resume()

		c.Sort()

		return uint32(c.Len())
	}
}

// cache keeps the container of the last grid cell so repeated calls on
// the same cell reuse it. Rebuilds happen with the clock paused.
type cache[P container.Payload] struct {
	newC        container.Factory[P]
	p           Pauser
	n           int
	erasureRate float64
	c           container.Container[P]
}

func newCache[P container.Payload](newC container.Factory[P], p Pauser) *cache[P] {
	return &cache[P]{newC: newC, p: p}
}

func (k *cache[P]) fullTraversal(n int, erasureRate float64) uint32 {
	var sum uint32
	for e := range k.get(n, erasureRate).All() {
		sum += uint32(e.Key)
	}

	return sum
}

func (k *cache[P]) capabilityTraversal(n int, erasureRate float64) uint32 {
	c := k.get(n, erasureRate)

	var sum uint32

	if v, ok := c.(container.Visitor[P]); ok {
		v.VisitAll(func(e *container.Element[P]) {
			sum += uint32(e.Key)
		})

		return sum
	}

	for e := range c.All() {
		sum += uint32(e.Key)
	}

	return sum
}

func (k *cache[P]) get(n int, erasureRate float64) container.Container[P] {
	if k.c != nil && n == k.n && erasureRate == k.erasureRate {
		return k.c
	}

	k.p.Pause()

	if k.c != nil {
		destroy(k.c)
	}

	k.c = workload.Make(k.newC, n, erasureRate)
	k.n = n
	k.erasureRate = erasureRate

	k.p.Resume()

	return k.c
}

// release destroys the cached container. The next get rebuilds.
func (k *cache[P]) release() {
	if k.c == nil {
		return
	}

	destroy(k.c)
	k.c = nil
}

func releaseAll[P container.Payload](caches ...*cache[P]) func() {
	return func() {
		for _, k := range caches {
			k.release()
		}
	}
}

func destroy[P container.Payload](c container.Container[P]) {
	c.Clear()
	c.ShrinkToFit()
}
