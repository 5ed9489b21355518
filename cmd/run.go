package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Seann-Moser/pca9685servod/pkg/controller"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Initialize the PCA9685 and serve commands from the pipe",
	Long: `run programs the PCA9685 prescaler, turns every output off and then waits
for "<servo>=<width>" lines on the pipe until it receives SIGINT, SIGTERM,
SIGHUP or SIGQUIT. On the way out it releases the bus, switches the outputs
off through /OE when --oe-pin is set and removes the pipe.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := loadConfiguration(cmd)
		if err != nil {
			return err
		}
		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer logger.Sync()

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)
		defer signal.Stop(sigs)
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		go func() {
			select {
			case s := <-sigs:
				logger.Info("terminating", zap.Stringer("signal", s))
				cancel()
			case <-ctx.Done():
			}
		}()

		c, err := controller.New(ctx, config, logger)
		if err != nil {
			logger.Error("startup failed", zap.Error(err))
			return err
		}
		defer func() {
			if err := c.Close(); err != nil {
				logger.Warn("cleanup", zap.Error(err))
			}
		}()
		if err := c.Run(ctx); err != nil {
			logger.Error("command loop failed", zap.Error(err))
			return err
		}
		logger.Info("pca9685servod finished")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
