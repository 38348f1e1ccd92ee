package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "deepresearch",
	Short: "AI-powered research assistant",
	Long: `Deep Research searches the web for a query, extracts and ranks the
most relevant content, and synthesizes a cited report with an LLM.
Pro mode first decomposes the query into a research plan and compiles
the answers into a comprehensive report.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".deepresearch.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
