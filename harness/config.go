package harness

import (
	"errors"
	"fmt"
	"math"
	"os"
	"slices"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/weiihann/hubbench/container"
	"github.com/weiihann/hubbench/measure"
)

// maxSizeExp keeps 10^exp within an int64.
const maxSizeExp = 18

// rateEpsilon absorbs float error when stepping erasure rates.
const rateEpsilon = 1e-9

// maxErasureRows bounds the number of rows an increment may produce.
const maxErasureRows = 1000

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds the recognized benchmark options.
type Config struct {
	ElementSize    int           `yaml:"element_size"`
	NonTrivial     bool          `yaml:"nontrivial"`
	MinSizeExp     int           `yaml:"min_size_exp"`
	MaxSizeExp     int           `yaml:"max_size_exp"`
	MinErasureRate float64       `yaml:"min_erasure_rate"`
	MaxErasureRate float64       `yaml:"max_erasure_rate"`
	ErasureRateInc float64       `yaml:"erasure_rate_inc"`
	Trials         int           `yaml:"trials"`
	MinTrialTime   time.Duration `yaml:"min_trial_time"`
	SizeLimit      uint64        `yaml:"size_limit"`
	CandidateA     string        `yaml:"candidate_a"`
	CandidateB     string        `yaml:"candidate_b"`
}

// DefaultConfig returns the standard sweep: sizes 1e3 to 1e7, erasure
// rates 0 to 0.9 in steps of 0.1, hive against hub.
func DefaultConfig() Config {
	return Config{
		ElementSize:    32,
		MinSizeExp:     3,
		MaxSizeExp:     7,
		MinErasureRate: 0,
		MaxErasureRate: 0.9,
		ErasureRateInc: 0.1,
		Trials:         measure.DefaultTrials,
		MinTrialTime:   measure.DefaultMinTrialTime,
		SizeLimit:      DefaultSizeLimit(),
		CandidateA:     "hive",
		CandidateB:     "hub",
	}
}

// DefaultSizeLimit returns the memory cutoff for the platform word size.
func DefaultSizeLimit() uint64 {
	if strconv.IntSize == 32 {
		return 800 << 20
	}

	return 2048 << 20
}

// LoadConfig overlays the YAML file at path onto base. Keys absent from
// the file keep their value from base.
func LoadConfig(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return base, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks that the configuration describes a runnable sweep.
func (c Config) Validate() error {
	switch {
	case !slices.Contains(container.SupportedSizes, c.ElementSize):
		return fmt.Errorf("%w: element size %d not in %v",
			ErrInvalidConfig, c.ElementSize, container.SupportedSizes)
	case c.MinSizeExp < 0 || c.MaxSizeExp > maxSizeExp ||
		c.MinSizeExp > c.MaxSizeExp:
		return fmt.Errorf("%w: size exponents [%d, %d] outside [0, %d]",
			ErrInvalidConfig, c.MinSizeExp, c.MaxSizeExp, maxSizeExp)
	case c.MinErasureRate < 0 || c.MaxErasureRate > 1 ||
		c.MinErasureRate > c.MaxErasureRate:
		return fmt.Errorf("%w: erasure rates [%g, %g] outside [0, 1]",
			ErrInvalidConfig, c.MinErasureRate, c.MaxErasureRate)
	case !(c.ErasureRateInc > 0):
		return fmt.Errorf("%w: erasure rate increment %g must be positive",
			ErrInvalidConfig, c.ErasureRateInc)
	case (c.MaxErasureRate-c.MinErasureRate+rateEpsilon)/c.ErasureRateInc >= maxErasureRows:
		return fmt.Errorf("%w: erasure rate increment %g yields more than %d rows",
			ErrInvalidConfig, c.ErasureRateInc, maxErasureRows)
	case c.Trials < 5:
		return fmt.Errorf("%w: trials %d, need at least 5",
			ErrInvalidConfig, c.Trials)
	case c.MinTrialTime <= 0:
		return fmt.Errorf("%w: min trial time %s must be positive",
			ErrInvalidConfig, c.MinTrialTime)
	case c.SizeLimit == 0:
		return fmt.Errorf("%w: size limit must be positive", ErrInvalidConfig)
	case c.CandidateA == "" || c.CandidateB == "":
		return fmt.Errorf("%w: both candidates must be named", ErrInvalidConfig)
	}

	return nil
}

// SizeExps returns the size exponents of the sweep's columns.
func (c Config) SizeExps() []int {
	exps := make([]int, 0, c.MaxSizeExp-c.MinSizeExp+1)
	for i := c.MinSizeExp; i <= c.MaxSizeExp; i++ {
		exps = append(exps, i)
	}

	return exps
}

// ErasureRates returns the erasure rates of the sweep's rows.
func (c Config) ErasureRates() []float64 {
	var rates []float64

	for i := 0; ; i++ {
		r := c.MinErasureRate + float64(i)*c.ErasureRateInc
		if r > c.MaxErasureRate+rateEpsilon {
			break
		}

		rates = append(rates, math.Min(r, c.MaxErasureRate))
	}

	return rates
}
