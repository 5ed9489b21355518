package servo

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	DefaultCycleTimeUSec = 1000000 / 50
	MinCycleTimeUSec     = 655
	MaxCycleTimeUSec     = 41666
	DefaultStepTimeUSec  = 5
	MinStepTimeUSec      = 2
	MaxStepTimeUSec      = 1000
	DefaultMinPulseUSec  = 500
	DefaultMaxPulseUSec  = 2500

	// minStepsPerCycle keeps at least this many width steps in one cycle.
	minStepsPerCycle = 100
)

// ErrConfig is returned for any invalid chip configuration.
var ErrConfig = errors.New("invalid chip configuration")

// ChipConfig holds the timing every width conversion is based on.
type ChipConfig struct {
	CycleTimeUSec float64
	StepTimeUSec  float64
	MinPulseUSec  float64
	MaxPulseUSec  float64
	Prescale      byte
}

// Options are the user facing timing values, in the same unit grammar the
// command line accepts. Empty strings select the defaults.
type Options struct {
	CycleTime string `json:"cycleTime,omitempty"`
	StepSize  string `json:"stepSize,omitempty"`
	Min       string `json:"min,omitempty"`
	Max       string `json:"max,omitempty"`
}

// Resolve validates opts and builds a ChipConfig. The cycle time is replaced
// by the one the prescaler can actually achieve before min and max are
// resolved, so percentages are taken of the real cycle.
func Resolve(opts Options) (ChipConfig, error) {
	var cfg ChipConfig

	cycle, err := parseTime(opts.CycleTime, DefaultCycleTimeUSec, MinCycleTimeUSec, MaxCycleTimeUSec)
	if err != nil {
		return cfg, errors.Wrap(err, "cycle-time")
	}
	step, err := parseTime(opts.StepSize, DefaultStepTimeUSec, MinStepTimeUSec, MaxStepTimeUSec)
	if err != nil {
		return cfg, errors.Wrap(err, "step-size")
	}
	cfg.StepTimeUSec = step
	cfg.Prescale, cfg.CycleTimeUSec = Calculate(cycle)

	if cfg.CycleTimeUSec/cfg.StepTimeUSec < minStepsPerCycle {
		return cfg, errors.Wrapf(ErrConfig, "cycle time must be at least %d * step-size", minStepsPerCycle)
	}

	cfg.MinPulseUSec = DefaultMinPulseUSec
	if opts.Min != "" {
		if cfg.MinPulseUSec, err = ParsePulse(opts.Min, cfg.StepTimeUSec, cfg.CycleTimeUSec); err != nil {
			return cfg, errors.Wrap(err, "min")
		}
	}
	cfg.MaxPulseUSec = DefaultMaxPulseUSec
	if opts.Max != "" {
		if cfg.MaxPulseUSec, err = ParsePulse(opts.Max, cfg.StepTimeUSec, cfg.CycleTimeUSec); err != nil {
			return cfg, errors.Wrap(err, "max")
		}
	}
	return cfg, cfg.Validate()
}

// Validate checks the pulse limits against each other and the cycle time.
func (c ChipConfig) Validate() error {
	switch {
	case c.MaxPulseUSec > c.CycleTimeUSec:
		return errors.Wrap(ErrConfig, "max value is larger than cycle time")
	case c.MinPulseUSec >= c.MaxPulseUSec:
		return errors.Wrap(ErrConfig, "min value is >= max value")
	case c.MinPulseUSec < 0:
		return errors.Wrap(ErrConfig, "min value is too small")
	case c.StepTimeUSec <= 0 || c.CycleTimeUSec/c.StepTimeUSec < minStepsPerCycle:
		return errors.Wrapf(ErrConfig, "cycle time must be at least %d * step-size", minStepsPerCycle)
	}
	return nil
}

// PulseRange is the width of the usable pulse window in microseconds.
func (c ChipConfig) PulseRange() float64 {
	return c.MaxPulseUSec - c.MinPulseUSec
}

// PulseUSec converts a normalized position into a pulse width.
func (c ChipConfig) PulseUSec(fraction float64) float64 {
	return fraction*c.PulseRange() + c.MinPulseUSec
}

// parseTime accepts an integer optionally followed by "us".
func parseTime(arg string, def, lo, hi float64) (float64, error) {
	if arg == "" {
		return def, nil
	}
	if !startsWithDigit(arg) {
		return 0, errors.Wrapf(ErrConfig, "invalid value %q", arg)
	}
	v, err := strconv.Atoi(strings.TrimSuffix(arg, "us"))
	if err != nil {
		return 0, errors.Wrapf(ErrConfig, "invalid value %q", arg)
	}
	if float64(v) < lo || float64(v) > hi {
		return 0, errors.Wrapf(ErrConfig, "%d is outside %v-%v", v, lo, hi)
	}
	return float64(v), nil
}

// ParsePulse resolves a min or max pulse argument into microseconds. A bare
// number counts steps, "us" is microseconds and "%" is a share of the cycle
// time clamped to 0-100.
func ParsePulse(arg string, stepUSec, cycleUSec float64) (float64, error) {
	if !startsWithDigit(arg) {
		return 0, errors.Wrapf(ErrConfig, "invalid min/max value %q", arg)
	}
	num, unit := splitUnit(arg)
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrConfig, "invalid min/max value %q", arg)
	}
	switch unit {
	case unitSteps:
		return v * stepUSec, nil
	case unitMicros:
		return v, nil
	case unitPercent:
		v = min(max(v, 0), 100)
		return v * cycleUSec / 100, nil
	}
	return 0, errors.Wrapf(ErrConfig, "invalid min/max value %q", arg)
}

func startsWithDigit(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}
