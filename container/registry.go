package container

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownCandidate is returned for a candidate name with no
	// registered implementation.
	ErrUnknownCandidate = errors.New("unknown candidate")

	// ErrStaleHandle is the panic value raised when erasing through a
	// handle whose element is no longer live.
	ErrStaleHandle = errors.New("stale handle")
)

// Factory builds an empty container.
type Factory[P Payload] func() Container[P]

// Names returns the registered candidate names.
func Names() []string {
	return []string{"hive", "hub", "btree"}
}

// NewFactory returns the factory for the named candidate.
func NewFactory[P Payload](name string, nontrivial bool) (Factory[P], error) {
	var f Factory[P]

	switch name {
	case "hive":
		f = func() Container[P] { return NewHive[P](nontrivial) }
	case "hub":
		f = func() Container[P] { return NewHub[P](nontrivial) }
	case "btree":
		f = func() Container[P] { return NewBTree[P](nontrivial) }
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownCandidate, name)
	}

	if err := Check(f()); err != nil {
		return nil, fmt.Errorf("candidate %s: %w", name, err)
	}

	return f, nil
}

func makeHandle(block, slot int) Handle {
	return Handle(uint64(block)<<32 | uint64(uint32(slot)))
}

func (h Handle) split() (block, slot int) {
	return int(h >> 32), int(uint32(h))
}
