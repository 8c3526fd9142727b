package main

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type playerState struct {
	PlayerID        string
	TotalSpent      decimal.Decimal
	TotalWon        decimal.Decimal
	L1Wins          int
	LastPlayAt      sql.NullTime
	LastWinAt       sql.NullTime
	LastBroadcastAt sql.NullTime
}

// lockPlayer loads the player's cooldown/win-count row under FOR
// UPDATE, creating it on first contact. Rows are never deleted.
func lockPlayer(tx *sql.Tx, playerID string, now time.Time) (*playerState, error) {
	_, err := tx.Exec(`
		INSERT INTO players (player_id, created_at)
		VALUES ($1, $2)
		ON CONFLICT (player_id) DO NOTHING
	`, playerID, now)
	if err != nil {
		return nil, err
	}

	var p playerState
	err = tx.QueryRow(`
		SELECT player_id, total_spent, total_won, l1_wins,
			last_play_at, last_win_at, last_broadcast_at
		FROM players
		WHERE player_id = $1
		FOR UPDATE
	`, playerID).Scan(
		&p.PlayerID, &p.TotalSpent, &p.TotalWon, &p.L1Wins,
		&p.LastPlayAt, &p.LastWinAt, &p.LastBroadcastAt,
	)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func savePlayer(tx *sql.Tx, p *playerState) error {
	_, err := tx.Exec(`
		UPDATE players
		SET total_spent = $2,
			total_won = $3,
			l1_wins = $4,
			last_play_at = $5,
			last_win_at = $6,
			last_broadcast_at = $7
		WHERE player_id = $1
	`, p.PlayerID, p.TotalSpent, p.TotalWon, p.L1Wins,
		p.LastPlayAt, p.LastWinAt, p.LastBroadcastAt)
	return err
}
