package main

import (
	"github.com/spf13/cobra"

	ports "tweetbot-service/internal/domain/ports/output"
	"tweetbot-service/internal/infrastructure/config"
	"tweetbot-service/internal/infrastructure/logger"
	prometheus_metrics "tweetbot-service/internal/infrastructure/outbound/metrics/prometheus"
)

// app carries what every subcommand needs once the config is loaded.
type app struct {
	configDir string
	cfg       *config.Config
	log       *logger.Logger
	metrics   ports.MetricsProvider
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "tweetbot",
		Short:         "Tweetbot publishes queued posts as threads with images",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configDir)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = logger.New(cfg.Env)
			a.metrics = prometheus_metrics.NewPrometheusMetricsProvider()
			return nil
		},
	}

	cmd.Version = version
	cmd.PersistentFlags().StringVar(&a.configDir, "config-dir", "config", "directory holding config.yaml")

	cmd.AddCommand(
		newServeCmd(a),
		newRunCmd(a),
		newMigrateCmd(a),
		newImportCmd(a),
	)

	return cmd
}
