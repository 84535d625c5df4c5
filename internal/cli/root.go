package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/carson-networks/banking-core/internal/config"
	"github.com/carson-networks/banking-core/internal/logging"
)

var (
	debug       bool
	metricsAddr string

	env    *config.Config
	logger *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "banking",
	Short: "Banking client core and its sandbox backend",
	Long: `Client commands talk to the backend at BACKEND_URL with SESSION_TOKEN.
The sandbox commands run a Postgres-backed backend for local use.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log at debug level and dump results")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "Serve client metrics on this address while the command runs")
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	var err error
	env, err = config.ProcessEnvironmentVariables()
	if err != nil {
		return err
	}

	level := env.LogLevel
	if debug {
		level = "debug"
	}
	logger, err = logging.SetupLogging(level)
	if err != nil {
		return err
	}
	logger.SetOutput(cmd.ErrOrStderr())
	return nil
}

func dump(cmd *cobra.Command, v any) {
	if debug {
		spew.Fdump(cmd.ErrOrStderr(), v)
	}
}
