// Package cmd implements the CLI commands for kava.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PizzaHomicide/kava/internal/config"
	"github.com/PizzaHomicide/kava/internal/log"
	"github.com/PizzaHomicide/kava/internal/version"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:     "kava",
	Short:   "Playback analytics beacons for media played in mpv",
	Version: version.GetVersion(),
	Long: `kava plays a media URL in mpv and reports the playback to an analytics
backend as a stream of beacons: impressions, plays, pauses, seeks, quartile
milestones, buffering, bitrate switches, errors and a VIEW heartbeat every ten
seconds of playback.

Configuration is read from a YAML file (see "kava config path") and can be
overridden with KAVA_CONFIG_* environment variables (see "kava config env").

Example:
  kava watch --entry-id 1_abcd1234 --media-type vod https://cdn.example.com/a.m3u8`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("executing root command: %w", err)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (text, json)")
	rootCmd.PersistentFlags().String("log-file", "", "log file path (default from config)")

	rootCmd.AddCommand(watchCmd, configCmd, versionCmd)
}

// loadConfig reads the configuration and lets the persistent logging flags override it
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Logging.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format, _ = flags.GetString("log-format")
	}
	if flags.Changed("log-file") {
		cfg.Logging.FilePath, _ = flags.GetString("log-file")
	}
	return cfg, nil
}

// initLogging creates the logger described by cfg and installs it as the default.  The returned func closes it.
func initLogging(cfg *config.Config) (func(), error) {
	logger, err := log.New(log.Config{
		Level:    cfg.Logging.Level,
		Format:   cfg.Logging.Format,
		FilePath: cfg.Logging.FilePath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialise logger: %w", err)
	}
	log.SetDefaultLogger(logger)

	return func() {
		log.SetDefaultLogger(nil)
		logger.Close()
	}, nil
}
