package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PizzaHomicide/kava/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), version.GetVersionInfo())
		return err
	},
}
