package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ALH477/dcf-serializer/internal/config"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the self-test scenario set once and report pass/fail",
	RunE: func(cmd *cobra.Command, args []string) error {
		scenarios, err := loadScenarios()
		if err != nil {
			return err
		}

		failures := 0
		for _, sc := range scenarios {
			repeat := sc.Repeat
			if repeat < 1 {
				repeat = 1
			}
			for i := 0; i < repeat; i++ {
				res := runScenario(sc)
				if res.OK {
					logger.Info().
						Str("scenario", res.Name).
						Int("bytes", res.Bytes).
						Dur("duration", res.Duration).
						Msg("scenario passed")
				} else {
					failures++
					logger.Error().
						Str("scenario", res.Name).
						Err(res.Err).
						Msg("scenario failed")
				}
			}
		}

		if failures > 0 {
			return fmt.Errorf("%d scenario(s) failed", failures)
		}
		logger.Info().Int("count", len(scenarios)).Msg("all scenarios passed")
		return nil
	},
}

func loadScenarios() ([]config.ScenarioConfig, error) {
	if cfgPath == "" {
		return config.DefaultScenarios(), nil
	}
	cfg, err := config.LoadSelfTestConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	return cfg.Scenarios, nil
}
