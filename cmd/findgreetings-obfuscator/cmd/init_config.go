package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Patrickazonzo/findgreetings/internal/config"
)

var initConfigCmd = &cobra.Command{
	Use:   "init-config [path]",
	Short: "Writes the default configuration as YAML",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		path := config.DefaultConfigFile
		if len(args) == 1 {
			path = args[0]
		}
		return config.SaveConfig(path)
	},
}

func init() {
	rootCmd.AddCommand(initConfigCmd)
}
