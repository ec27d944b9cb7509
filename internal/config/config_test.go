package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSelfTestConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "selftest.toml")
	if err := os.WriteFile(path, []byte(`
[[scenarios]]
name = "primitive-roundtrip"
msg_type = 1
`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadSelfTestConfig(path)
	if err != nil {
		t.Fatalf("LoadSelfTestConfig: %v", err)
	}
	if cfg.Name != "dcfselftest" {
		t.Fatalf("Name = %q, want default dcfselftest", cfg.Name)
	}
	if cfg.DebugAddr != ":9400" {
		t.Fatalf("DebugAddr = %q, want default :9400", cfg.DebugAddr)
	}
	if len(cfg.Scenarios) != 1 || cfg.Scenarios[0].Name != "primitive-roundtrip" {
		t.Fatalf("unexpected scenarios: %+v", cfg.Scenarios)
	}
}

func TestLoadSelfTestConfigMissingFile(t *testing.T) {
	if _, err := LoadSelfTestConfig("/nonexistent/path.toml"); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestValidateSelfTestConfigDuplicateScenario(t *testing.T) {
	cfg := SelfTestConfig{
		Name: "x",
		Scenarios: []ScenarioConfig{
			{Name: "dup"},
			{Name: "dup"},
		},
	}
	if err := ValidateSelfTestConfig(cfg); err == nil {
		t.Fatalf("expected error for duplicate scenario name")
	}
}

func TestDefaultScenariosAreValid(t *testing.T) {
	cfg := SelfTestConfig{Name: "dcfselftest", Scenarios: DefaultScenarios()}
	if err := ValidateSelfTestConfig(cfg); err != nil {
		t.Fatalf("ValidateSelfTestConfig(DefaultScenarios()): %v", err)
	}
}
