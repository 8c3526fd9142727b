package main

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/shopspring/decimal"
)

// Config carries every tunable of the engine. Values mirror the
// calibration of Season 1; overriding them only takes effect for
// seasons started after the change.
type Config struct {
	Addr        string `env:"ADDR" envDefault:"0.0.0.0:8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogEncoding string `env:"LOG_ENCODING" envDefault:"json"`
	AdminKey    string `env:"ADMIN_KEY"`

	SeedVault        decimal.Decimal `env:"SEED_VAULT" envDefault:"1000"`
	EntryCost        decimal.Decimal `env:"ENTRY_COST" envDefault:"10"`
	VaultSplit       decimal.Decimal `env:"VAULT_SPLIT" envDefault:"0.90"`
	PayoutRate       decimal.Decimal `env:"PAYOUT_RATE" envDefault:"0.03"`
	MinPayout        decimal.Decimal `env:"MIN_PAYOUT" envDefault:"20"`
	GrandSolveRate   decimal.Decimal `env:"GRAND_SOLVE_RATE" envDefault:"0.60"`
	DepletionCutoff  decimal.Decimal `env:"DEPLETION_CUTOFF" envDefault:"0.60"`
	GrandSolveAnswer string          `env:"GRAND_SOLVE_ANSWER" envDefault:"timestamp % 10 == 7 AND volume >= 3"`

	TimeResidue       int64         `env:"TIME_RESIDUE" envDefault:"7"`
	TimeModulus       int64         `env:"TIME_MODULUS" envDefault:"10"`
	LayerOneWinTarget int           `env:"LAYER_ONE_WIN_TARGET" envDefault:"3"`
	VolumeWindow      time.Duration `env:"VOLUME_WINDOW" envDefault:"10s"`
	VolumeThreshold   int           `env:"VOLUME_THRESHOLD" envDefault:"3"`

	PlayCooldown      time.Duration `env:"PLAY_COOLDOWN" envDefault:"5s"`
	WinCooldown       time.Duration `env:"WIN_COOLDOWN" envDefault:"120s"`
	BroadcastCooldown time.Duration `env:"BROADCAST_COOLDOWN" envDefault:"300s"`

	TxRetryLimit     int    `env:"TX_RETRY_LIMIT" envDefault:"3"`
	SnapshotSchedule string `env:"SNAPSHOT_SCHEDULE" envDefault:"@every 1m"`
}

func loadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.TimeModulus <= 0 {
		return fmt.Errorf("TIME_MODULUS must be positive")
	}
	if c.TimeResidue < 0 || c.TimeResidue >= c.TimeModulus {
		return fmt.Errorf("TIME_RESIDUE must be in [0, TIME_MODULUS)")
	}
	if c.VaultSplit.IsNegative() || c.VaultSplit.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("VAULT_SPLIT must be between 0 and 1")
	}
	if c.DepletionCutoff.LessThanOrEqual(decimal.Zero) || c.DepletionCutoff.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("DEPLETION_CUTOFF must be in (0, 1]")
	}
	if c.SeedVault.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("SEED_VAULT must be positive")
	}
	if c.VolumeThreshold < 1 {
		return fmt.Errorf("VOLUME_THRESHOLD must be at least 1")
	}
	if c.TxRetryLimit < 1 {
		return fmt.Errorf("TX_RETRY_LIMIT must be at least 1")
	}
	return nil
}

// vaultShare is the slice of the entry cost credited to the vault;
// the remainder is the house fee.
func (c Config) vaultShare() decimal.Decimal {
	return c.EntryCost.Mul(c.VaultSplit).Round(2)
}

func (c Config) houseFee() decimal.Decimal {
	return c.EntryCost.Sub(c.vaultShare())
}
