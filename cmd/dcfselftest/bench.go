package main

import (
	"time"

	"github.com/spf13/cobra"
)

var benchIterations int

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Repeat every scenario many times and report aggregate timing",
	RunE: func(cmd *cobra.Command, args []string) error {
		scenarios, err := loadScenarios()
		if err != nil {
			return err
		}

		for _, sc := range scenarios {
			var total time.Duration
			var failures int
			for i := 0; i < benchIterations; i++ {
				res := runScenario(sc)
				total += res.Duration
				if !res.OK {
					failures++
				}
			}
			avg := total / time.Duration(benchIterations)
			logger.Info().
				Str("scenario", sc.Name).
				Int("iterations", benchIterations).
				Int("failures", failures).
				Dur("avg_duration", avg).
				Msg("bench complete")
		}
		return nil
	},
}

func init() {
	benchCmd.Flags().IntVarP(&benchIterations, "iterations", "n", 1000, "iterations per scenario")
}
