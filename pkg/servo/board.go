package servo

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// PCA9685 registers.
const (
	RegMode1     = 0x00
	RegMode2     = 0x01
	RegLED0      = 0x06
	RegAllLEDOnL = 0xFA
	RegPrescale  = 0xFE

	// registersPerChannel is the stride between LEDn_ON_L registers.
	registersPerChannel = 4
)

// MODE1 and MODE2 bits.
const (
	mode1Restart = 0x80
	mode1Sleep   = 0x10
	mode1AllCall = 0x01
	mode2OutDrv  = 0x04
)

// Registers is the byte level access the board needs from an I2C backend.
type Registers interface {
	ReadRegister(reg uint8) (byte, error)
	WriteRegister(reg uint8, val byte) error
}

// RegisterError reports a failed bus transfer.
type RegisterError struct {
	Op  string
	Reg uint8
	Err error
}

func (e *RegisterError) Error() string {
	return fmt.Sprintf("%s register 0x%02x: %v", e.Op, e.Reg, e.Err)
}

func (e *RegisterError) Unwrap() error { return e.Err }

// Board owns the chip configuration and the per channel state and programs
// the chip through Registers. It is not safe for concurrent use.
type Board struct {
	regs     Registers
	config   ChipConfig
	channels channelStore
	logger   *zap.Logger

	// sleep is replaced in tests.
	sleep func(context.Context, time.Duration) error
}

// NewBoard returns a board with start ticks set according to spread.
func NewBoard(regs Registers, cfg ChipConfig, spread bool, logger *zap.Logger) *Board {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Board{
		regs:   regs,
		config: cfg,
		logger: logger,
		sleep:  sleepContext,
	}
	b.channels.InitStarts(spread)
	return b
}

// Config returns the chip configuration in use.
func (b *Board) Config() ChipConfig { return b.config }

// Channel returns the stored state of channel i.
func (b *Board) Channel(i int) (ChannelState, error) { return b.channels.Get(i) }

// Ticks computes the on and off counter values for a fraction on channel i.
func (b *Board) Ticks(i int, fraction float64) (PulseTicks, error) {
	st, err := b.channels.Get(i)
	if err != nil {
		return PulseTicks{}, err
	}
	if !(fraction >= 0 && fraction <= 1) {
		return PulseTicks{}, errors.Wrapf(ErrOutOfRange, "position %v", fraction)
	}
	offset := int(b.config.PulseUSec(fraction) / b.config.CycleTimeUSec * Ticks)
	return PulseTicks{
		On:  st.StartTick,
		Off: (st.StartTick + offset) % Ticks,
	}, nil
}

// Program sets channel i to fraction. A failed write stops the remaining
// writes for the channel and leaves the stored position untouched.
func (b *Board) Program(i int, fraction float64) error {
	t, err := b.Ticks(i, fraction)
	if err != nil {
		return err
	}
	vals := [registersPerChannel]byte{
		byte(t.On & 0xFF), byte(t.On >> 8),
		byte(t.Off & 0xFF), byte(t.Off >> 8),
	}
	base := uint8(RegLED0 + registersPerChannel*i)
	for n, v := range vals {
		if err := b.write(base+uint8(n), v); err != nil {
			return errors.Wrapf(err, "servo %d", i)
		}
	}
	b.logger.Debug("servo set",
		zap.Int("servo", i),
		zap.Float64("position", fraction),
		zap.Int("on", t.On),
		zap.Int("off", t.Off))

	if ce := b.logger.Check(zap.DebugLevel, "servo read back"); ce != nil {
		if rt, err := b.ReadTicks(i); err != nil {
			b.logger.Debug("servo read back failed", zap.Int("servo", i), zap.Error(err))
		} else {
			ce.Write(zap.Int("servo", i), zap.Int("on", rt.On), zap.Int("off", rt.Off))
		}
	}
	return b.channels.Set(i, fraction)
}

// ReadTicks reads the on and off counter values of channel i from the chip.
func (b *Board) ReadTicks(i int) (PulseTicks, error) {
	if i < 0 || i >= Channels {
		return PulseTicks{}, errors.Wrapf(ErrChannel, "channel %d", i)
	}
	var vals [registersPerChannel]int
	base := uint8(RegLED0 + registersPerChannel*i)
	for n := range vals {
		v, err := b.read(base + uint8(n))
		if err != nil {
			return PulseTicks{}, errors.Wrapf(err, "servo %d", i)
		}
		vals[n] = int(v)
	}
	return PulseTicks{
		On:  vals[0] | vals[1]<<8,
		Off: vals[2] | vals[3]<<8,
	}, nil
}

// AllOff zeroes the all-channel on/off registers.
func (b *Board) AllOff() error {
	for n := uint8(0); n < registersPerChannel; n++ {
		if err := b.write(RegAllLEDOnL+n, 0); err != nil {
			return errors.Wrap(err, "all off")
		}
	}
	return nil
}

// Init puts the chip into a known state: all outputs off, totem pole
// outputs, oscillator running and the prescaler loaded from the config.
func (b *Board) Init(ctx context.Context) error {
	if err := b.AllOff(); err != nil {
		return err
	}
	if err := b.write(RegMode1, mode1AllCall); err != nil {
		return errors.Wrap(err, "init mode1")
	}
	if err := b.write(RegMode2, mode2OutDrv); err != nil {
		return errors.Wrap(err, "init mode2")
	}
	// the oscillator needs 500us after leaving sleep
	if err := b.sleep(ctx, 10*time.Millisecond); err != nil {
		return err
	}
	mode, err := b.read(RegMode1)
	if err != nil {
		return errors.Wrap(err, "init mode1")
	}
	if err := b.write(RegMode1, mode&^mode1Sleep); err != nil {
		return errors.Wrap(err, "wake")
	}
	if err := b.sleep(ctx, 10*time.Millisecond); err != nil {
		return err
	}
	return b.setPrescale(ctx)
}

// setPrescale loads the prescaler, which the chip only accepts while asleep.
func (b *Board) setPrescale(ctx context.Context) error {
	old, err := b.read(RegMode1)
	if err != nil {
		return errors.Wrap(err, "prescale")
	}
	steps := []struct {
		reg uint8
		val byte
	}{
		{RegMode1, old | mode1Sleep},
		{RegPrescale, b.config.Prescale},
		{RegMode1, old},
	}
	for _, s := range steps {
		if err := b.write(s.reg, s.val); err != nil {
			return errors.Wrap(err, "prescale")
		}
	}
	if err := b.sleep(ctx, time.Millisecond); err != nil {
		return err
	}
	if err := b.write(RegMode1, old|mode1Restart); err != nil {
		return errors.Wrap(err, "restart")
	}
	b.logger.Info("prescale set",
		zap.Uint8("prescale", b.config.Prescale),
		zap.Float64("cycleTimeUSec", b.config.CycleTimeUSec))
	return nil
}

func (b *Board) write(reg uint8, val byte) error {
	if err := b.regs.WriteRegister(reg, val); err != nil {
		return &RegisterError{Op: "write", Reg: reg, Err: err}
	}
	return nil
}

func (b *Board) read(reg uint8) (byte, error) {
	v, err := b.regs.ReadRegister(reg)
	if err != nil {
		return 0, &RegisterError{Op: "read", Reg: reg, Err: err}
	}
	return v, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
