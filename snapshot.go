package main

import (
	"database/sql"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// startSnapshotJob records the vault balance on a schedule for the
// display history. Read plus append only; it never touches game state.
func startSnapshotJob(db *sql.DB, cfg Config, clock Clock, logger *zap.Logger) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(cfg.SnapshotSchedule, func() {
		season, err := loadLatestSeason(db)
		if err != nil {
			logger.Warn("snapshot: load season failed", zap.Error(err))
			return
		}

		balance, err := vaultBalance(db, season.SeasonID)
		if err != nil {
			logger.Warn("snapshot: load vault failed", zap.Error(err))
			return
		}

		if _, err := db.Exec(`
			INSERT INTO vault_snapshots (season_id, balance, captured_at)
			VALUES ($1, $2, $3)
		`, season.SeasonID, balance, clock.Now()); err != nil {
			logger.Warn("snapshot: insert failed", zap.Error(err))
			return
		}

		logger.Debug("vault snapshot",
			zap.String("seasonId", season.SeasonID),
			zap.String("balance", balance.String()))
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	return c, nil
}
