package controller

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/Seann-Moser/pca9685servod/pkg/io"
	"github.com/Seann-Moser/pca9685servod/pkg/servo"
	"github.com/pkg/errors"
	"periph.io/x/devices/v3/pca9685"
)

// DefaultPipe is where commands are read from.
const DefaultPipe = "/dev/pca9685servo"

// Configuration is everything the daemon needs to start. It can be read from
// a JSON file and overridden from the command line.
type Configuration struct {
	Timing servo.Options `json:"timing"`

	// Address is parsed with base prefixes, so "0x41" and "65" are equal.
	Address   string `json:"address,omitempty"`
	Bus       string `json:"bus,omitempty"`
	Backend   string `json:"backend,omitempty"`
	NoFlicker bool   `json:"noflicker,omitempty"`
	Pipe      string `json:"pipe,omitempty"`
	GPIOChip  string `json:"gpioChip,omitempty"`
	OEPin     string `json:"oePin,omitempty"`
}

func DefaultConfiguration() Configuration {
	return Configuration{
		Address:  fmt.Sprintf("0x%02x", pca9685.I2CAddr),
		Bus:      "1",
		Backend:  io.BackendPeriph,
		Pipe:     DefaultPipe,
		GPIOChip: "gpiochip0",
	}
}

// LoadConfiguration reads path over the defaults. A missing path is not an
// error, the defaults are returned.
func LoadConfiguration(path string) (Configuration, error) {
	config := DefaultConfiguration()
	if path == "" {
		return config, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return config, errors.Wrap(err, "read config")
	}
	if err := json.Unmarshal(data, &config); err != nil {
		return config, errors.Wrapf(err, "parse config %s", path)
	}
	return config, nil
}

// DeviceAddress returns the parsed i2c address.
func (c Configuration) DeviceAddress() (uint16, error) {
	a, err := strconv.ParseUint(c.Address, 0, 16)
	if err != nil || a > 0x7F {
		return 0, errors.Wrapf(servo.ErrConfig, "invalid i2c device address %q", c.Address)
	}
	return uint16(a), nil
}
