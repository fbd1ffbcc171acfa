package cmd

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/PizzaHomicide/kava/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the kava configuration",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the path of the config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, err := config.Path()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
		return err
	},
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Load the configuration and report anything that would stop beacons being sent",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration:\n%w", err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), "configuration ok")
		return err
	},
}

var configEnvCmd = &cobra.Command{
	Use:   "env",
	Short: "List the environment variables that override the config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, envVar := range config.SupportedEnvVars() {
			_, _ = fmt.Fprintf(w, "%s\t%s\n", envVar.Name, envVar.Desc)
		}
		return w.Flush()
	},
}

var configSetCmd = &cobra.Command{
	Use:       "set <key> <value>",
	Short:     "Persist a setting in the config file",
	Long:      `Writes a single setting to the config file.  Supported keys: partner-id, metrics-addr.`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"partner-id", "metrics-addr"},
	RunE: func(cmd *cobra.Command, args []string) error {
		update, err := configSetter(args[0], args[1])
		if err != nil {
			return err
		}
		// Make sure the file exists before rewriting it
		if _, err := config.Load(); err != nil {
			return err
		}
		if err := config.UpdateConfig(update); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s set\n", args[0])
		return err
	},
}

func configSetter(key, value string) (func(*config.Config), error) {
	switch key {
	case "partner-id":
		id, err := strconv.Atoi(value)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("partner-id must be a positive integer, got %q", value)
		}
		return func(c *config.Config) { c.Analytics.PartnerID = id }, nil
	case "metrics-addr":
		return func(c *config.Config) { c.Metrics.Addr = value }, nil
	default:
		return nil, fmt.Errorf("unknown config key %q", key)
	}
}

func init() {
	configCmd.AddCommand(configPathCmd, configCheckCmd, configEnvCmd, configSetCmd)
}
