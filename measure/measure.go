// Package measure times a single operation robustly: it runs a fixed
// number of trials, each long enough to swamp clock resolution, and
// reports the trimmed mean of the per-call averages.
package measure

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

const (
	// DefaultTrials is the number of trials run per measurement.
	DefaultTrials = 10

	// DefaultMinTrialTime is the minimum wall time spent in each trial.
	DefaultMinTrialTime = 200 * time.Millisecond

	// trim is the number of samples dropped at each end before averaging.
	trim = 2
)

var (
	// ErrNestedTrial is returned when Measure is called while a trial of
	// the same Timer is already open.
	ErrNestedTrial = errors.New("measure: trial already open")

	// ErrPauseProtocol is returned when Pause and Resume are not paired
	// inside a trial.
	ErrPauseProtocol = errors.New("measure: unbalanced pause/resume")

	// ErrTooFewTrials is returned when the trial count leaves nothing
	// after trimming.
	ErrTooFewTrials = errors.New("measure: too few trials")
)

// Clock is the time source used by a Timer.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Option configures a Timer.
type Option func(*Timer)

// WithTrials sets the number of trials per measurement.
func WithTrials(n int) Option {
	return func(t *Timer) { t.trials = n }
}

// WithMinTrialTime sets the minimum time spent in each trial.
func WithMinTrialTime(d time.Duration) Option {
	return func(t *Timer) { t.minTrialTime = d }
}

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(t *Timer) { t.clock = c }
}

// Timer measures operations one trial at a time. It is not safe for
// concurrent use; at most one trial is open at any moment.
type Timer struct {
	clock        Clock
	trials       int
	minTrialTime time.Duration

	open     bool
	paused   bool
	start    time.Time
	pausedAt time.Time
	protoErr error

	sink uint64
}

// New creates a Timer with the default trial count and floor.
func New(opts ...Option) *Timer {
	t := &Timer{
		clock:        systemClock{},
		trials:       DefaultTrials,
		minTrialTime: DefaultMinTrialTime,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Measure returns the robust seconds-per-call estimate for op. Every
// result of op is folded into the Timer's sink.
func (t *Timer) Measure(op func() uint32) (float64, error) {
	if t.open {
		return 0, ErrNestedTrial
	}

	if t.trials <= 2*trim {
		return 0, fmt.Errorf("%w: %d", ErrTooFewTrials, t.trials)
	}

	samples := make([]float64, t.trials)

	for i := range samples {
		s, err := t.trial(op)
		if err != nil {
			return 0, fmt.Errorf("trial %d: %w", i, err)
		}

		samples[i] = s
	}

	return TrimmedMean(samples, trim), nil
}

func (t *Timer) trial(op func() uint32) (float64, error) {
	t.open = true
	t.paused = false
	t.protoErr = nil

	defer func() { t.open = false }()

	var (
		runs    int
		elapsed time.Duration
	)

	t.start = t.clock.Now()

	for {
		t.sink += uint64(op())
		runs++

		if t.protoErr != nil {
			return 0, t.protoErr
		}

		if t.paused {
			return 0, fmt.Errorf("%w: call returned while paused", ErrPauseProtocol)
		}

		elapsed = t.clock.Now().Sub(t.start)
		if elapsed >= t.minTrialTime {
			break
		}
	}

	return elapsed.Seconds() / float64(runs), nil
}

// Pause stops the clock of the open trial until Resume is called.
func (t *Timer) Pause() {
	if !t.open || t.paused {
		t.protoErr = fmt.Errorf("%w: pause without running trial", ErrPauseProtocol)
		return
	}

	t.pausedAt = t.clock.Now()
	t.paused = true
}

// Resume restarts the clock, shifting the trial start forward by the
// time spent paused.
func (t *Timer) Resume() {
	if !t.open || !t.paused {
		t.protoErr = fmt.Errorf("%w: resume without pause", ErrPauseProtocol)
		return
	}

	t.start = t.start.Add(t.clock.Now().Sub(t.pausedAt))
	t.paused = false
}

// Sink returns the accumulated results of every measured call.
func (t *Timer) Sink() uint64 {
	return t.sink
}

// TrimmedMean returns the mean of samples after dropping the n smallest
// and n largest values. samples is not modified. When fewer than 2n+1
// samples are given, all of them are averaged.
func TrimmedMean(samples []float64, n int) float64 {
	if len(samples) == 0 {
		return 0
	}

	sorted := slices.Clone(samples)
	slices.Sort(sorted)

	if len(sorted) > 2*n {
		sorted = sorted[n : len(sorted)-n]
	}

	var sum float64
	for _, s := range sorted {
		sum += s
	}

	return sum / float64(len(sorted))
}
