package main

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/mcdev12/gully/go/internal/auction"
)

// Config holds the tunable pieces of the server loaded from YAML.
type Config struct {
	Auction struct {
		BaseIncrement    float64 `yaml:"base_increment"`
		UpperIncrement   float64 `yaml:"upper_increment"`
		IncrementCutover float64 `yaml:"increment_cutover"`
		RosterCap        int     `yaml:"roster_cap"`
		TimerSeconds     int     `yaml:"timer_seconds"`
	} `yaml:"auction"`
}

// Rules converts the config into auction rules, falling back to the
// defaults for anything unset.
func (c *Config) Rules() auction.Rules {
	rules := auction.DefaultRules()
	if c.Auction.BaseIncrement > 0 {
		rules.BaseIncrement = decimal.NewFromFloat(c.Auction.BaseIncrement)
	}
	if c.Auction.UpperIncrement > 0 {
		rules.UpperIncrement = decimal.NewFromFloat(c.Auction.UpperIncrement)
	}
	if c.Auction.IncrementCutover > 0 {
		rules.IncrementCutover = decimal.NewFromFloat(c.Auction.IncrementCutover)
	}
	if c.Auction.RosterCap > 0 {
		rules.RosterCap = c.Auction.RosterCap
	}
	if c.Auction.TimerSeconds > 0 {
		rules.TimerSeconds = c.Auction.TimerSeconds
	}
	return rules
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// loadConfig reads the YAML config file; a missing file means defaults.
func loadConfig(path string) (*Config, error) {
	var config Config

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &config, nil
}
