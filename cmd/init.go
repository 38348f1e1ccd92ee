package cmd

import (
	"github.com/spf13/cobra"

	"deepresearch/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize deepresearch configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure deepresearch and generates a .deepresearch.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
