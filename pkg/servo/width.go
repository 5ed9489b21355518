package servo

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrBadSyntax means the width token could not be read.
	ErrBadSyntax = errors.New("bad width syntax")
	// ErrOutOfRange means the width falls outside the min/max window.
	ErrOutOfRange = errors.New("width out of range")
)

// WidthError describes why a width token was rejected.
type WidthError struct {
	Channel int
	Token   string
	Err     error
}

func (e *WidthError) Error() string {
	return "invalid width " + strconv.Quote(e.Token) + " for servo " + strconv.Itoa(e.Channel) + ": " + e.Err.Error()
}

func (e *WidthError) Unwrap() error { return e.Err }

type unit int

const (
	unitSteps unit = iota
	unitMicros
	unitPercent
)

func splitUnit(s string) (string, unit) {
	switch {
	case strings.HasSuffix(s, "us"):
		return strings.TrimSuffix(s, "us"), unitMicros
	case strings.HasSuffix(s, "%"):
		return strings.TrimSuffix(s, "%"), unitPercent
	}
	return s, unitSteps
}

// ParseWidth turns a width token into a position for channel. A leading
// '+' or '-' adjusts the channel's current position. The returned fraction
// is in [0,1]; zero is a valid position.
func (b *Board) ParseWidth(channel int, token string) (float64, error) {
	st, err := b.channels.Get(channel)
	if err != nil {
		return 0, err
	}
	fail := func(err error) (float64, error) {
		return 0, &WidthError{Channel: channel, Token: token, Err: err}
	}

	sign := 0
	digits := token
	switch {
	case strings.HasPrefix(token, "+"):
		sign, digits = 1, token[1:]
	case strings.HasPrefix(token, "-"):
		sign, digits = -1, token[1:]
	}
	if !startsWithDigit(digits) {
		return fail(ErrBadSyntax)
	}
	num, u := splitUnit(digits)
	value, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return fail(ErrBadSyntax)
	}
	delta := float64(sign) * value

	cfg := b.config
	current := cfg.PulseUSec(st.Position)
	var width float64
	switch u {
	case unitSteps:
		steps := value
		if sign != 0 {
			steps = current/cfg.StepTimeUSec + delta
		}
		width = (steps*cfg.StepTimeUSec - cfg.MinPulseUSec) / cfg.PulseRange()
	case unitMicros:
		usec := value
		if sign != 0 {
			usec = current + delta
		}
		width = (usec - cfg.MinPulseUSec) / cfg.PulseRange()
	case unitPercent:
		width = value / 100
		if sign != 0 {
			width = st.Position + delta/100
		}
	}

	if width == 0 {
		return 0, nil
	}
	if !(width >= 0 && width <= 1) {
		return fail(ErrOutOfRange)
	}
	return width, nil
}
