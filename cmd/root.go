package cmd

import (
	"os"

	"github.com/Seann-Moser/pca9685servod/pkg/controller"
	"github.com/Seann-Moser/pca9685servod/pkg/io"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configPath string
	logLevel   string
	logFormat  string
	flagConfig = controller.DefaultConfiguration()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pca9685servod",
	Short: "Drive servos on a PCA9685 board through a named pipe",
	Long: `pca9685servod programs a PCA9685 16 channel PWM controller over i2c and
reads servo commands from a named pipe, one per line:

  echo 0=150 >    /dev/pca9685servo     # as a number of steps
  echo 0=50% >    /dev/pca9685servo     # as a percentage
  echo 0=1500us > /dev/pca9685servo     # as microseconds
  echo 0=+10% >   /dev/pca9685servo     # relative to the current position
  echo 0=-20 >    /dev/pca9685servo

min and max can be given in steps, microseconds or as a percentage of the
cycle time. With a 20000us cycle and 10us steps these are equal:

  --min=50   --min=500us   --min=2.5%`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&configPath, "config", "", "JSON configuration file; flags override its values")
	f.StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	f.StringVar(&logFormat, "log-format", "console", "console or json")

	f.StringVarP(&flagConfig.Timing.CycleTime, "cycle-time", "c", "", "control pulse cycle time in microseconds (655-41666, default 20000us)")
	f.StringVarP(&flagConfig.Timing.StepSize, "step-size", "s", "", "pulse width increment step size in microseconds (default 5us)")
	f.StringVarP(&flagConfig.Timing.Min, "min", "m", "", "minimum pulse width {N|Nus|N%} (default 500us)")
	f.StringVarP(&flagConfig.Timing.Max, "max", "x", "", "maximum pulse width {N|Nus|N%} (default 2500us)")
	f.StringVarP(&flagConfig.Address, "i2c-device-address", "a", flagConfig.Address, "PCA9685 i2c address")
	f.StringVar(&flagConfig.Bus, "i2c-bus", flagConfig.Bus, "i2c bus name or number")
	f.StringVar(&flagConfig.Backend, "backend", flagConfig.Backend, "i2c backend: "+io.BackendPeriph+" or "+io.BackendGobot)
	f.BoolVarP(&flagConfig.NoFlicker, "noflicker", "n", false, "start every output's cycle at the same time")
	f.StringVar(&flagConfig.Pipe, "pipe", flagConfig.Pipe, "named pipe to read commands from")
	f.StringVar(&flagConfig.GPIOChip, "gpio-chip", flagConfig.GPIOChip, "gpio chip of the output enable line")
	f.StringVar(&flagConfig.OEPin, "oe-pin", "", "gpio wired to the chip's /OE pin, e.g. GPIO17")
}

// loadConfiguration reads the config file and lays the flags the user set
// on top of it.
func loadConfiguration(cmd *cobra.Command) (controller.Configuration, error) {
	config, err := controller.LoadConfiguration(configPath)
	if err != nil {
		return config, err
	}
	set := func(name string, dst *string, v string) {
		if cmd.Flags().Changed(name) {
			*dst = v
		}
	}
	set("cycle-time", &config.Timing.CycleTime, flagConfig.Timing.CycleTime)
	set("step-size", &config.Timing.StepSize, flagConfig.Timing.StepSize)
	set("min", &config.Timing.Min, flagConfig.Timing.Min)
	set("max", &config.Timing.Max, flagConfig.Timing.Max)
	set("i2c-device-address", &config.Address, flagConfig.Address)
	set("i2c-bus", &config.Bus, flagConfig.Bus)
	set("backend", &config.Backend, flagConfig.Backend)
	set("pipe", &config.Pipe, flagConfig.Pipe)
	set("gpio-chip", &config.GPIOChip, flagConfig.GPIOChip)
	set("oe-pin", &config.OEPin, flagConfig.OEPin)
	if cmd.Flags().Changed("noflicker") {
		config.NoFlicker = flagConfig.NoFlicker
	}
	return config, nil
}

func newLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(logLevel)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.Encoding = logFormat
	if logFormat == "console" {
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	return cfg.Build()
}
