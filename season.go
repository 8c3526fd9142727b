package main

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EndReasonNone       = "none"
	EndReasonGrandSolve = "grand_solve"
	EndReasonDepletion  = "depletion"
)

type Season struct {
	SeasonID  string
	StartTime time.Time
	EndTime   sql.NullTime
	EndReason string
	VictorID  sql.NullString
}

func (s *Season) Active() bool {
	return !s.EndTime.Valid
}

func loadActiveSeasonTx(tx *sql.Tx) (*Season, error) {
	var s Season
	err := tx.QueryRow(`
		SELECT season_id, start_time, end_time, end_reason, victor_id
		FROM seasons
		WHERE end_time IS NULL
	`).Scan(&s.SeasonID, &s.StartTime, &s.EndTime, &s.EndReason, &s.VictorID)
	if err == sql.ErrNoRows {
		return nil, errSeasonEnded
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func loadLatestSeason(db *sql.DB) (*Season, error) {
	var s Season
	err := db.QueryRow(`
		SELECT season_id, start_time, end_time, end_reason, victor_id
		FROM seasons
		ORDER BY start_time DESC
		LIMIT 1
	`).Scan(&s.SeasonID, &s.StartTime, &s.EndTime, &s.EndReason, &s.VictorID)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ensureActiveSeason seeds Season 1 on first boot. Idempotent; safe
// to call from every instance once the startup lock is held.
func ensureActiveSeason(ctx context.Context, db *sql.DB, cfg Config, clock Clock) (string, error) {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	var seasonID string
	err = tx.QueryRow(`
		SELECT season_id FROM seasons WHERE end_time IS NULL
	`).Scan(&seasonID)
	if err == nil {
		return seasonID, tx.Commit()
	}
	if err != sql.ErrNoRows {
		return "", err
	}

	now := clock.Now()
	seasonID = uuid.NewString()
	if _, err := tx.Exec(`
		INSERT INTO seasons (season_id, start_time, end_reason)
		VALUES ($1, $2, $3)
	`, seasonID, now, EndReasonNone); err != nil {
		return "", err
	}
	if err := createVault(tx, seasonID, cfg.SeedVault, now); err != nil {
		return "", err
	}

	return seasonID, tx.Commit()
}

// endSeasonTx flips the season to its terminal state. The WHERE clause
// on end_time IS NULL is the compare-and-swap behind the Highlander
// lock: at most one transaction can ever observe a row flipped.
func endSeasonTx(tx *sql.Tx, seasonID, reason string, victorID sql.NullString, now time.Time) (bool, error) {
	result, err := tx.Exec(`
		UPDATE seasons
		SET end_time = $2,
			end_reason = $3,
			victor_id = $4
		WHERE season_id = $1 AND end_time IS NULL
	`, seasonID, now, reason, victorID)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

type seasonTotals struct {
	PlayerID string
	Won      decimal.Decimal
	Spent    decimal.Decimal
}

type hallOfFameEntry struct {
	PlayerID    string
	FinalReturn decimal.Decimal
	Rank        int
}

// rankHallOfFame orders players by realized return (extracted over
// spent) within one season's ledger. Players with no spend are
// excluded; ties break on player ID for a stable ordering.
func rankHallOfFame(totals []seasonTotals, limit int) []hallOfFameEntry {
	ranked := make([]hallOfFameEntry, 0, len(totals))
	for _, t := range totals {
		if t.Spent.LessThanOrEqual(decimal.Zero) {
			continue
		}
		ranked = append(ranked, hallOfFameEntry{
			PlayerID:    t.PlayerID,
			FinalReturn: t.Won.Div(t.Spent).Round(4),
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if !ranked[i].FinalReturn.Equal(ranked[j].FinalReturn) {
			return ranked[i].FinalReturn.GreaterThan(ranked[j].FinalReturn)
		}
		return ranked[i].PlayerID < ranked[j].PlayerID
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// writeHallOfFameTx persists the top performers of the season being
// finalized. Totals come from the season's own ledger rather than the
// lifetime player rows, so returns never leak across seasons.
// Idempotent via ON CONFLICT.
func writeHallOfFameTx(tx *sql.Tx, seasonID string) error {
	rows, err := tx.Query(`
		SELECT player_id, SUM(amount_paid), SUM(entry_cost)
		FROM play_events
		WHERE season_id = $1
		GROUP BY player_id
	`, seasonID)
	if err != nil {
		return err
	}
	defer rows.Close()

	totals := []seasonTotals{}
	for rows.Next() {
		var t seasonTotals
		if err := rows.Scan(&t.PlayerID, &t.Won, &t.Spent); err != nil {
			return err
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, entry := range rankHallOfFame(totals, 5) {
		if _, err := tx.Exec(`
			INSERT INTO hall_of_fame (season_id, player_id, final_return, rank)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (season_id, player_id) DO NOTHING
		`, seasonID, entry.PlayerID, entry.FinalReturn, entry.Rank); err != nil {
			return err
		}
	}
	return nil
}

// startNextSeason is the explicit external operation that begins a
// fresh season after the previous one went Legacy.
func startNextSeason(ctx context.Context, db *sql.DB, cfg Config, clock Clock) (string, error) {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	var active string
	err = tx.QueryRow(`
		SELECT season_id FROM seasons WHERE end_time IS NULL
	`).Scan(&active)
	if err == nil {
		return "", errSeasonActive
	}
	if err != sql.ErrNoRows {
		return "", err
	}

	now := clock.Now()
	seasonID := uuid.NewString()
	if _, err := tx.Exec(`
		INSERT INTO seasons (season_id, start_time, end_reason)
		VALUES ($1, $2, $3)
	`, seasonID, now, EndReasonNone); err != nil {
		return "", err
	}
	if err := createVault(tx, seasonID, cfg.SeedVault, now); err != nil {
		return "", err
	}

	return seasonID, tx.Commit()
}
