package main

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type PlayEvent struct {
	ID           int64           `json:"id"`
	SeasonID     string          `json:"seasonId"`
	PlayerID     string          `json:"playerId"`
	Outcome      string          `json:"outcome"`
	Reason       string          `json:"reason"`
	Layer        int             `json:"layer"`
	EntryCost    decimal.Decimal `json:"entryCost"`
	AmountPaid   decimal.Decimal `json:"amountPaid"`
	VaultBalance decimal.Decimal `json:"vaultBalance"`
	OccurredAt   time.Time       `json:"occurredAt"`
}

func appendPlayEventTx(tx *sql.Tx, ev PlayEvent) error {
	_, err := tx.Exec(`
		INSERT INTO play_events (
			season_id,
			player_id,
			outcome,
			reason,
			layer,
			entry_cost,
			amount_paid,
			vault_balance,
			occurred_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, ev.SeasonID, ev.PlayerID, ev.Outcome, ev.Reason, ev.Layer,
		ev.EntryCost, ev.AmountPaid, ev.VaultBalance, ev.OccurredAt)
	return err
}

// countPlaysSinceTx counts ledger events of any player inside the
// trailing window, evaluated against the transaction's snapshot. The
// lower bound is strict; the triggering play is not yet appended and
// is counted by the evaluator.
func countPlaysSinceTx(tx *sql.Tx, seasonID string, cutoff time.Time) (int, error) {
	var n int
	err := tx.QueryRow(`
		SELECT COUNT(*)
		FROM play_events
		WHERE season_id = $1 AND occurred_at > $2
	`, seasonID, cutoff).Scan(&n)
	return n, err
}

func recentPlayEvents(db *sql.DB, seasonID string, limit int) ([]PlayEvent, error) {
	rows, err := db.Query(`
		SELECT id, season_id, player_id, outcome, reason, layer,
			entry_cost, amount_paid, vault_balance, occurred_at
		FROM play_events
		WHERE season_id = $1
		ORDER BY id DESC
		LIMIT $2
	`, seasonID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []PlayEvent{}
	for rows.Next() {
		var ev PlayEvent
		if err := rows.Scan(
			&ev.ID, &ev.SeasonID, &ev.PlayerID, &ev.Outcome, &ev.Reason,
			&ev.Layer, &ev.EntryCost, &ev.AmountPaid, &ev.VaultBalance,
			&ev.OccurredAt,
		); err != nil {
			continue
		}
		events = append(events, ev)
	}

	return events, rows.Err()
}
