package controller

import (
	"context"
	stdio "io"
	"strings"
	"sync"
	"time"

	"github.com/Seann-Moser/pca9685servod/pkg/io"
	"github.com/Seann-Moser/pca9685servod/pkg/servo"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"periph.io/x/conn/v3/physic"
)

// Enabler switches the chip outputs on and off as a whole.
type Enabler interface {
	Enable() error
	Close() error
}

// Controller reads commands from the pipe and applies them to the board.
type Controller struct {
	Board *servo.Board

	logger    *zap.Logger
	regs      stdio.Closer
	enable    Enabler
	pipe      *Pipe
	closeOnce sync.Once
	closeErr  error
}

// New validates the configuration, brings up the chip and creates the
// command pipe. Any error here is fatal for the daemon.
func New(ctx context.Context, config Configuration, logger *zap.Logger) (*Controller, error) {
	chip, err := servo.Resolve(config.Timing)
	if err != nil {
		return nil, err
	}
	addr, err := config.DeviceAddress()
	if err != nil {
		return nil, err
	}
	logConfig(logger, config, addr, chip)

	regs, err := io.Open(config.Backend, config.Bus, addr)
	if err != nil {
		return nil, errors.Wrap(err, "unable to connect to PCA9685 hardware")
	}
	c := &Controller{
		Board:  servo.NewBoard(regs, chip, !config.NoFlicker, logger),
		logger: logger,
		regs:   regs,
	}
	if err := c.Board.Init(ctx); err != nil {
		return nil, multierr.Append(errors.Wrap(err, "init hardware"), c.Close())
	}
	if config.OEPin != "" {
		oe, err := io.RequestOutputEnable(config.GPIOChip, config.OEPin)
		if err != nil {
			return nil, multierr.Append(err, c.Close())
		}
		c.enable = oe
		if err := oe.Enable(); err != nil {
			return nil, multierr.Append(errors.Wrap(err, "enable outputs"), c.Close())
		}
	}
	if c.pipe, err = CreatePipe(config.Pipe); err != nil {
		return nil, multierr.Append(err, c.Close())
	}
	return c, nil
}

func logConfig(logger *zap.Logger, config Configuration, addr uint16, chip servo.ChipConfig) {
	period := time.Duration(chip.CycleTimeUSec * float64(time.Microsecond))
	logger.Info("pca9685 configured",
		zap.String("address", config.Address),
		zap.Uint16("addr", addr),
		zap.String("backend", config.Backend),
		zap.String("bus", config.Bus),
		zap.Float64("cycleTimeUSec", chip.CycleTimeUSec),
		zap.Stringer("frequency", physic.PeriodToFrequency(period)),
		zap.Uint8("prescale", chip.Prescale),
		zap.Float64("stepTimeUSec", chip.StepTimeUSec),
		zap.Float64("minPulseUSec", chip.MinPulseUSec),
		zap.Int("minSteps", int(chip.MinPulseUSec/chip.StepTimeUSec)),
		zap.Float64("maxPulseUSec", chip.MaxPulseUSec),
		zap.Int("maxSteps", int(chip.MaxPulseUSec/chip.StepTimeUSec)),
		zap.Bool("spread", !config.NoFlicker))
}

// Run serves the pipe until ctx is done.
func (c *Controller) Run(ctx context.Context) error {
	f, err := c.pipe.Open()
	if err != nil {
		return err
	}
	defer f.Close()
	// closing the pipe is what wakes the blocked read
	stop := context.AfterFunc(ctx, func() { _ = f.Close() })
	defer stop()

	c.logger.Info("listening", zap.String("pipe", c.pipe.Path))
	err = c.Serve(ctx, f)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// Serve handles every complete line of r until r ends or ctx is done. Bad
// lines are logged and skipped.
func (c *Controller) Serve(ctx context.Context, r stdio.Reader) error {
	lines := NewLineReader(r, MaxLineLength)
	discarded := 0
	for line := range lines.Lines() {
		if ctx.Err() != nil {
			return nil
		}
		if n := lines.Discarded(); n != discarded {
			c.logger.Debug("dropped overlong input", zap.Int("lines", n-discarded))
			discarded = n
		}
		if err := c.Dispatch(line); err != nil {
			c.logger.Warn("command rejected", zap.String("line", line), zap.Error(err))
		}
	}
	return lines.Err()
}

// Dispatch parses one command line and programs the servo it names. Blank
// lines are ignored.
func (c *Controller) Dispatch(line string) error {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	cmd, err := ParseCommand(line)
	if err != nil {
		return err
	}
	width, err := c.Board.ParseWidth(cmd.Channel, cmd.Width)
	if err != nil {
		return err
	}
	if err := c.Board.Program(cmd.Channel, width); err != nil {
		return err
	}
	c.logger.Debug("command applied", zap.Int("servo", cmd.Channel), zap.Float64("position", width))
	return nil
}

// Close turns the outputs off through /OE if one is configured, releases the
// bus and removes the pipe. It is safe to call more than once.
func (c *Controller) Close() error {
	c.closeOnce.Do(func() {
		if c.enable != nil {
			c.closeErr = multierr.Append(c.closeErr, c.enable.Close())
		}
		if c.regs != nil {
			c.closeErr = multierr.Append(c.closeErr, c.regs.Close())
		}
		if c.pipe != nil {
			c.closeErr = multierr.Append(c.closeErr, c.pipe.Remove())
		}
	})
	return c.closeErr
}
