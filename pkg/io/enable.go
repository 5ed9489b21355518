package io

import (
	"github.com/pkg/errors"
	"github.com/warthog618/go-gpiocdev"
	"github.com/warthog618/go-gpiocdev/device/rpi"
	"go.uber.org/multierr"
)

// OutputEnable drives the chip's active low /OE pin.
type OutputEnable struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// RequestOutputEnable claims pin on chipName as an output, initially high so
// the outputs stay off until Enable. Pin accepts rpi names such as "GPIO17",
// "J8p11" or a bare line offset.
func RequestOutputEnable(chipName, pin string) (*OutputEnable, error) {
	offset, err := rpi.Pin(pin)
	if err != nil {
		return nil, errors.Wrapf(err, "output enable pin %q", pin)
	}
	c, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", chipName)
	}
	l, err := c.RequestLine(offset, gpiocdev.AsOutput(1), gpiocdev.WithConsumer("pca9685servod"))
	if err != nil {
		_ = c.Close()
		return nil, errors.Wrapf(err, "request line %d", offset)
	}
	return &OutputEnable{chip: c, line: l}, nil
}

func (o *OutputEnable) Enable() error {
	return o.line.SetValue(0)
}

func (o *OutputEnable) Disable() error {
	return o.line.SetValue(1)
}

// Close turns the outputs off and releases the line.
func (o *OutputEnable) Close() error {
	return multierr.Combine(o.Disable(), o.line.Close(), o.chip.Close())
}
