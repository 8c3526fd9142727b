package main

import (
	"database/sql"
	"strings"
	"time"
)

const maxBroadcastLength = 280

type Broadcast struct {
	ID        int64     `json:"id"`
	PlayerID  string    `json:"playerId"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

func validBroadcastText(text string) bool {
	trimmed := strings.TrimSpace(text)
	return trimmed != "" && len(trimmed) <= maxBroadcastLength
}

func recentBroadcasts(db *sql.DB, limit int) ([]Broadcast, error) {
	rows, err := db.Query(`
		SELECT id, player_id, body, created_at
		FROM broadcasts
		ORDER BY id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	broadcasts := []Broadcast{}
	for rows.Next() {
		var b Broadcast
		if err := rows.Scan(&b.ID, &b.PlayerID, &b.Body, &b.CreatedAt); err != nil {
			continue
		}
		broadcasts = append(broadcasts, b)
	}

	return broadcasts, rows.Err()
}
