package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ScenarioConfig is one entry of scenarios.yaml: a scenario name plus the
// strategy parameters to replay it with. CLI flags on `loom run` override
// whichever of these fields they were explicitly set to.
type ScenarioConfig struct {
	Name                string `yaml:"name"`
	Iterations          int    `yaml:"iterations"`
	Strategy            string `yaml:"strategy"`
	Seed                uint64 `yaml:"seed"`
	Probability         int    `yaml:"probability,omitempty"`
	MaxPrioritySwitches int    `yaml:"max_priority_switches,omitempty"`
}

// Config is the top-level shape of scenarios.yaml.
type Config struct {
	Scenarios []ScenarioConfig `yaml:"scenarios"`
}

// LoadConfig reads and parses a scenarios.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// Find returns the named entry, or nil if config has none by that name.
func (c *Config) Find(name string) *ScenarioConfig {
	for i := range c.Scenarios {
		if c.Scenarios[i].Name == name {
			return &c.Scenarios[i]
		}
	}
	return nil
}
