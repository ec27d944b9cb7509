package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ALH477/dcf-serializer/internal/observability"
)

var (
	cfgPath string
	logger  zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "dcfselftest",
	Short: "Self-test driver for the DCF wire codec",
	Long: `dcfselftest builds and decodes DCF frames covering the codec's
documented scenarios and edge cases, for use as a smoke test or a reference
client when integrating a transport against this codec.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = observability.InitLogger("dcfselftest")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to a self-test TOML config (optional; built-in scenarios run if omitted)")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(serveCmd)
}
