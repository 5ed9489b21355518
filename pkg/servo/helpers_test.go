package servo

import (
	"context"
	"errors"
	"time"
)

var errBus = errors.New("bus fault")

type regWrite struct {
	reg uint8
	val byte
}

// memRegisters is an in-memory register file that can fail on one register.
type memRegisters struct {
	regs   [256]byte
	writes []regWrite
	reads  int
	failAt int // register to fail on, -1 for none
}

func newMemRegisters() *memRegisters {
	return &memRegisters{failAt: -1}
}

func (m *memRegisters) ReadRegister(reg uint8) (byte, error) {
	if int(reg) == m.failAt {
		return 0, errBus
	}
	m.reads++
	return m.regs[reg], nil
}

func (m *memRegisters) WriteRegister(reg uint8, val byte) error {
	if int(reg) == m.failAt {
		return errBus
	}
	m.regs[reg] = val
	m.writes = append(m.writes, regWrite{reg, val})
	return nil
}

func defaultConfig() ChipConfig {
	cfg, err := Resolve(Options{})
	if err != nil {
		panic(err)
	}
	return cfg
}

func newTestBoard(spread bool) (*Board, *memRegisters) {
	regs := newMemRegisters()
	b := NewBoard(regs, defaultConfig(), spread, nil)
	b.sleep = func(context.Context, time.Duration) error { return nil }
	return b, regs
}
