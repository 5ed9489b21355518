package cmd

import (
	"fmt"
	"time"

	"github.com/Seann-Moser/pca9685servod/pkg/servo"
	"github.com/spf13/cobra"
	"periph.io/x/conn/v3/physic"
)

// timingCmd prints what the daemon would program without touching the bus
var timingCmd = &cobra.Command{
	Use:   "timing",
	Short: "Show the resolved cycle time, prescale and pulse limits",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := loadConfiguration(cmd)
		if err != nil {
			return err
		}
		chip, err := servo.Resolve(config.Timing)
		if err != nil {
			return err
		}
		addr, err := config.DeviceAddress()
		if err != nil {
			return err
		}
		period := time.Duration(chip.CycleTimeUSec * float64(time.Microsecond))
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Device address = 0x%02x\n", addr)
		fmt.Fprintf(out, "Prescale value:            %d\n", chip.Prescale)
		fmt.Fprintf(out, "Actual cycle time:         %8.3fus (%s)\n", chip.CycleTimeUSec, physic.PeriodToFrequency(period))
		fmt.Fprintf(out, "Pulse increment step size: %8.3fus\n", chip.StepTimeUSec)
		fmt.Fprintf(out, "Minimum width value:       %8.3fus (%d)\n", chip.MinPulseUSec, int(chip.MinPulseUSec/chip.StepTimeUSec))
		fmt.Fprintf(out, "Maximum width value:       %8.3fus (%d)\n", chip.MaxPulseUSec, int(chip.MaxPulseUSec/chip.StepTimeUSec))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(timingCmd)
}
