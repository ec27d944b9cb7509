package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ScenarioConfig names one self-test scenario: a message type and flag set
// to exercise, repeated Repeat times to shake out allocator and growth-path
// bugs the first iteration would miss.
type ScenarioConfig struct {
	Name    string `toml:"name"`
	MsgType uint16 `toml:"msg_type"`
	Flags   uint8  `toml:"flags"`
	Repeat  int    `toml:"repeat"`
}

// SelfTestConfig configures the cmd/dcfselftest driver binary, matching the
// teacher's LoadGhostConfig/LoadSeedConfig shape in internal/config/config.go:
// a typed struct with toml tags, a Load function that applies defaults and
// validates.
type SelfTestConfig struct {
	Name      string           `toml:"name"`
	DebugAddr string           `toml:"debug_addr"`
	Scenarios []ScenarioConfig `toml:"scenarios"`
}

// LoadSelfTestConfig reads and validates a SelfTestConfig from path.
func LoadSelfTestConfig(path string) (SelfTestConfig, error) {
	var cfg SelfTestConfig
	if err := loadToml(path, &cfg); err != nil {
		return SelfTestConfig{}, err
	}
	if cfg.Name == "" {
		cfg.Name = "dcfselftest"
	}
	if cfg.DebugAddr == "" {
		cfg.DebugAddr = ":9400"
	}
	if err := ValidateSelfTestConfig(cfg); err != nil {
		return SelfTestConfig{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

// ValidateSelfTestConfig checks the structural invariants a Load caller
// should not have to re-derive.
func ValidateSelfTestConfig(cfg SelfTestConfig) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("self-test config missing name")
	}
	seen := map[string]bool{}
	for i, s := range cfg.Scenarios {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("scenario[%d] missing name", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("scenario[%d] duplicate name %q", i, s.Name)
		}
		seen[s.Name] = true
		if s.Repeat < 0 {
			return fmt.Errorf("scenario %q: repeat must be >= 0", s.Name)
		}
	}
	return nil
}

// DefaultScenarios returns the built-in scenario set used when no config
// file is supplied: primitive, array and nested-struct round trips, the
// no-CRC path, a borrowed-buffer overflow, and nesting past MaxDepth.
func DefaultScenarios() []ScenarioConfig {
	return []ScenarioConfig{
		{Name: "primitive-roundtrip", MsgType: 1, Flags: 0, Repeat: 1},
		{Name: "array-of-u32", MsgType: 2, Flags: 0, Repeat: 1},
		{Name: "nested-struct", MsgType: 3, Flags: 0, Repeat: 1},
		{Name: "no-crc", MsgType: 4, Flags: 0x20, Repeat: 1},
		{Name: "borrowed-buffer-overflow", MsgType: 5, Flags: 0, Repeat: 1},
		{Name: "depth-exceeded", MsgType: 6, Flags: 0, Repeat: 1},
	}
}
