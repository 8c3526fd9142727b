package main

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type analyticsReport struct {
	MetricsTimestamp time.Time `json:"metricsTimestamp"`
	Activity         struct {
		PlaysLastHour   int `json:"playsLastHour"`
		TotalGlobalWins int `json:"totalGlobalWins"`
	} `json:"activity"`
	PlayerDistribution struct {
		ActiveOnLayer1 int `json:"activeOnLayer1"`
		ActiveOnLayer2 int `json:"activeOnLayer2"`
	} `json:"playerDistribution"`
	Economy struct {
		VaultBalance     decimal.Decimal `json:"vaultBalance"`
		HouseTake        decimal.Decimal `json:"houseTake"`
		AverageWinPayout decimal.Decimal `json:"averageWinPayout"`
	} `json:"economy"`
}

// buildAnalyticsReport aggregates house-monitoring stats. Read-only;
// no game-state effect.
func buildAnalyticsReport(db *sql.DB, seasonID string, cfg Config, now time.Time) (*analyticsReport, error) {
	report := &analyticsReport{MetricsTimestamp: now}

	err := db.QueryRow(`
		SELECT COUNT(*)
		FROM play_events
		WHERE season_id = $1 AND occurred_at > $2
	`, seasonID, now.Add(-time.Hour)).Scan(&report.Activity.PlaysLastHour)
	if err != nil {
		return nil, err
	}

	err = db.QueryRow(`
		SELECT COUNT(*)
		FROM play_events
		WHERE season_id = $1 AND outcome = $2
	`, seasonID, OutcomeWin).Scan(&report.Activity.TotalGlobalWins)
	if err != nil {
		return nil, err
	}

	err = db.QueryRow(`
		SELECT
			COUNT(*) FILTER (WHERE l1_wins > 0 AND l1_wins < $1),
			COUNT(*) FILTER (WHERE l1_wins >= $1)
		FROM players
	`, cfg.LayerOneWinTarget).Scan(
		&report.PlayerDistribution.ActiveOnLayer1,
		&report.PlayerDistribution.ActiveOnLayer2,
	)
	if err != nil {
		return nil, err
	}

	err = db.QueryRow(`
		SELECT balance, house_take
		FROM vault
		WHERE season_id = $1
	`, seasonID).Scan(&report.Economy.VaultBalance, &report.Economy.HouseTake)
	if err != nil {
		return nil, err
	}

	err = db.QueryRow(`
		SELECT COALESCE(AVG(amount_paid), 0)
		FROM play_events
		WHERE season_id = $1 AND amount_paid > 0
	`, seasonID).Scan(&report.Economy.AverageWinPayout)
	if err != nil {
		return nil, err
	}
	report.Economy.AverageWinPayout = report.Economy.AverageWinPayout.Round(2)

	return report, nil
}
