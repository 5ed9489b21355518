package io

import (
	stdio "io"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// PeriphRegisters reaches the chip through periph.io.
type PeriphRegisters struct {
	bus i2c.Bus
	dev *i2c.Dev
}

// OpenPeriph initializes the periph host drivers and opens the I2C bus by
// name ("1", "I2C1", or "" for the first one found).
func OpenPeriph(name string, addr uint16) (*PeriphRegisters, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "periph host init")
	}
	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "open i2c bus %q", name)
	}
	return NewPeriphRegisters(bus, addr), nil
}

// NewPeriphRegisters wraps an already opened bus.
func NewPeriphRegisters(bus i2c.Bus, addr uint16) *PeriphRegisters {
	return &PeriphRegisters{
		bus: bus,
		dev: &i2c.Dev{Bus: bus, Addr: addr},
	}
}

func (p *PeriphRegisters) ReadRegister(reg uint8) (byte, error) {
	var b [1]byte
	if err := p.dev.Tx([]byte{reg}, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func (p *PeriphRegisters) WriteRegister(reg uint8, val byte) error {
	_, err := p.dev.Write([]byte{reg, val})
	return err
}

// Close releases the bus if it was opened here.
func (p *PeriphRegisters) Close() error {
	if c, ok := p.bus.(stdio.Closer); ok {
		return c.Close()
	}
	return nil
}

func (p *PeriphRegisters) String() string {
	return p.dev.String()
}
