package cmd

import (
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "theo",
	Short: "Theo chatbot server",
	Long:  "Theo — a companion chatbot with long-term memory: a daily turn log, consolidated topic summaries, and vector recall.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (yaml)")
}
