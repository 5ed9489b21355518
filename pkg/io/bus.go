package io

import (
	"github.com/pkg/errors"
	"strconv"
)

// Registers is a handle on one chip's byte wide registers.
type Registers interface {
	ReadRegister(reg uint8) (byte, error)
	WriteRegister(reg uint8, val byte) error
	Close() error
}

const (
	BackendPeriph = "periph"
	BackendGobot  = "gobot"
)

// Open connects to the chip at addr on the named bus using backend.
func Open(backend, bus string, addr uint16) (Registers, error) {
	switch backend {
	case BackendPeriph, "":
		return OpenPeriph(bus, addr)
	case BackendGobot:
		n, err := strconv.Atoi(bus)
		if err != nil {
			return nil, errors.Errorf("gobot needs a numeric bus, got %q", bus)
		}
		return OpenGobot(n, addr)
	}
	return nil, errors.Errorf("unknown i2c backend %q", backend)
}
