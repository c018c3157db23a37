// Package workload builds candidate containers with reproducible
// insertion, shuffle and erasure patterns. Every call draws from a
// freshly seeded source, so identical arguments yield identical
// containers regardless of the candidate.
package workload

import (
	"math"
	"math/rand/v2"

	"github.com/weiihann/hubbench/container"
)

// Fixed PCG seed shared by every workload.
const (
	seedHi = 0x9e3779b97f4a7c15
	seedLo = 0xbf58476d1ce4e5b9
)

func newSource() *rand.Rand {
	return rand.New(rand.NewPCG(seedHi, seedLo))
}

// Make inserts n elements with pseudo-random keys into a new container,
// shuffles the returned handles and erases each one with probability
// erasureRate. The resulting size is n*(1-erasureRate) in expectation.
func Make[P container.Payload](
	newC container.Factory[P],
	n int,
	erasureRate float64,
) container.Container[P] {
	c := newC()
	rng := newSource()

	handles := make([]container.Handle, 0, n)
	for range n {
		handles = append(handles, c.Insert(int32(rng.Uint64())))
	}

	rng.Shuffle(len(handles), func(i, j int) {
		handles[i], handles[j] = handles[j], handles[i]
	})

	cut, all := erasureCut(erasureRate)

	for _, h := range handles {
		// Always draw, so the sequence does not depend on the outcome.
		if v := rng.Uint64(); all || v < cut {
			container.Erase(c, h)
		}
	}

	return c
}

// erasureCut scales rate into the generator's output range. all is set
// when every element must be erased.
func erasureCut(rate float64) (cut uint64, all bool) {
	switch {
	case rate <= 0:
		return 0, false
	case rate >= 1:
		return math.MaxUint64, true
	}

	return uint64(rate * float64(math.MaxUint64)), false
}

// Fill inserts pseudo-random elements into c until it holds n of them.
// It never removes elements.
func Fill[P container.Payload](c container.Container[P], n int) {
	rng := newSource()

	for c.Len() < n {
		c.Insert(int32(rng.Uint64()))
	}
}

// Keys returns the keys of c in traversal order.
func Keys[P container.Payload](c container.Container[P]) []int32 {
	keys := make([]int32, 0, c.Len())
	for e := range c.All() {
		keys = append(keys, e.Key)
	}

	return keys
}
