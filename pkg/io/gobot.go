package io

import (
	"github.com/pkg/errors"
	"gobot.io/x/gobot/drivers/i2c"
	"gobot.io/x/gobot/platforms/raspi"
)

// GobotRegisters reaches the chip through a gobot i2c connection.
type GobotRegisters struct {
	conn i2c.Connection
}

// OpenGobot opens the chip on a Raspberry Pi i2c bus.
func OpenGobot(bus int, addr uint16) (*GobotRegisters, error) {
	r := raspi.NewAdaptor()
	conn, err := r.GetConnection(int(addr), bus)
	if err != nil {
		return nil, errors.Wrapf(err, "open i2c bus %d", bus)
	}
	return NewGobotRegisters(conn), nil
}

// NewGobotRegisters wraps an existing connection.
func NewGobotRegisters(conn i2c.Connection) *GobotRegisters {
	return &GobotRegisters{conn: conn}
}

func (g *GobotRegisters) ReadRegister(reg uint8) (byte, error) {
	return g.conn.ReadByteData(reg)
}

func (g *GobotRegisters) WriteRegister(reg uint8, val byte) error {
	return g.conn.WriteByteData(reg, val)
}

func (g *GobotRegisters) Close() error {
	return g.conn.Close()
}
