package main

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func testConfig() Config {
	return Config{
		SeedVault:         decimal.NewFromInt(1000),
		EntryCost:         decimal.NewFromInt(10),
		VaultSplit:        decimal.RequireFromString("0.90"),
		PayoutRate:        decimal.RequireFromString("0.03"),
		MinPayout:         decimal.NewFromInt(20),
		GrandSolveRate:    decimal.RequireFromString("0.60"),
		DepletionCutoff:   decimal.RequireFromString("0.60"),
		GrandSolveAnswer:  "timestamp % 10 == 7 AND volume >= 3",
		TimeResidue:       7,
		TimeModulus:       10,
		LayerOneWinTarget: 3,
		VolumeWindow:      10 * time.Second,
		VolumeThreshold:   3,
		PlayCooldown:      5 * time.Second,
		WinCooldown:       120 * time.Second,
		BroadcastCooldown: 300 * time.Second,
		TxRetryLimit:      3,
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	if !cfg.SeedVault.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected seed vault 1000 got %s", cfg.SeedVault)
	}
	if !cfg.EntryCost.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected entry cost 10 got %s", cfg.EntryCost)
	}
	if cfg.PlayCooldown != 5*time.Second {
		t.Fatalf("expected play cooldown 5s got %s", cfg.PlayCooldown)
	}
	if cfg.WinCooldown != 120*time.Second {
		t.Fatalf("expected win cooldown 120s got %s", cfg.WinCooldown)
	}
	if cfg.BroadcastCooldown != 300*time.Second {
		t.Fatalf("expected broadcast cooldown 300s got %s", cfg.BroadcastCooldown)
	}
	if cfg.LayerOneWinTarget != 3 {
		t.Fatalf("expected layer-1 win target 3 got %d", cfg.LayerOneWinTarget)
	}
	if cfg.VolumeWindow != 10*time.Second || cfg.VolumeThreshold != 3 {
		t.Fatalf("unexpected volume tuning: %s / %d", cfg.VolumeWindow, cfg.VolumeThreshold)
	}
}

func TestEntryCostSplit(t *testing.T) {
	cfg := testConfig()

	if !cfg.vaultShare().Equal(decimal.NewFromInt(9)) {
		t.Fatalf("expected vault share 9 got %s", cfg.vaultShare())
	}
	if !cfg.houseFee().Equal(decimal.NewFromInt(1)) {
		t.Fatalf("expected house fee 1 got %s", cfg.houseFee())
	}
	if !cfg.vaultShare().Add(cfg.houseFee()).Equal(cfg.EntryCost) {
		t.Fatalf("split does not sum to entry cost")
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"residue above modulus", func(c *Config) { c.TimeResidue = 12 }},
		{"zero modulus", func(c *Config) { c.TimeModulus = 0 }},
		{"split above one", func(c *Config) { c.VaultSplit = decimal.NewFromInt(2) }},
		{"zero depletion cutoff", func(c *Config) { c.DepletionCutoff = decimal.Zero }},
		{"negative seed", func(c *Config) { c.SeedVault = decimal.NewFromInt(-1) }},
		{"zero volume threshold", func(c *Config) { c.VolumeThreshold = 0 }},
		{"zero retry limit", func(c *Config) { c.TxRetryLimit = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(&cfg)
			if err := cfg.validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}

	if err := testConfig().validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}
