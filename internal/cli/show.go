// internal/cli/show.go
package voi

import (
	"github.com/mwiater/voi/internal/appconfig"
	"github.com/spf13/cobra"
)

// showCmd represents the 'show' command group for displaying resources.
var showCmd = &cobra.Command{
	Use:     "show",
	GroupID: toolsGroup,
	Short:   "Group commands for displaying resources",
	Long:    `The 'show' command groups subcommands that display resources or information related to voi.`,
}

// showConfigCmd implements 'show config', which prints the merged settings.
var showConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show config settings",
	Long:  `Show config settings ensuring that the JSON configs are loaded properly and overridden by flags accordingly.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := getConfig()
		appconfig.ShowConfig(cmd.OutOrStdout(), cfg.ConfigPath, cfg)
	},
}

func init() {
	showCmd.AddCommand(showConfigCmd)
	rootCmd.AddCommand(showCmd)
}
