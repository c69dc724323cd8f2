package main

import (
	"github.com/spf13/cobra"
)

var flagConfig string

var rootCmd = &cobra.Command{
	Use:   "templateindex",
	Short: "Index website templates for semantic search",
	Long: `templateindex discovers website template metadata, embeds each
template's description and writes the vectors and metadata records to
their stores. Re-running is safe: unchanged templates produce identical
documents.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
}
