package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	defaultConfigPath = "configs/config.yaml"
	serviceName       = "odds-service"
)

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Error("odds-service failed")
		os.Exit(1)
	}
}

func run() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   serviceName,
		Short: "Keirin trifecta odds scraped from netkeiba",
		Long: `Serves the current trifecta (3連単) odds of a keirin race as plain text.
Odds are read live from keirin.netkeiba.com through a headless Chrome.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", defaultConfig(), "Path to config file (can be set via CONFIG_PATH env var)")

	cmd.AddCommand(
		newServeCmd(&configPath),
		newFetchCmd(&configPath),
		newVenuesCmd(),
	)
	return cmd
}

// defaultConfig resolves the --config default. .env is loaded first so
// CONFIG_PATH may come from it; config.Load loading it again is a no-op.
func defaultConfig() string {
	_ = godotenv.Load()
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return defaultConfigPath
}

func setupSignalHandler(ctx context.Context, cancel context.CancelFunc, log logrus.FieldLogger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.WithField("signal", sig.String()).Info("Received shutdown signal, stopping...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()
}
