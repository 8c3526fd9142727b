package main

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

type liveSnapshot struct {
	ServerTime   string          `json:"serverTime"`
	SeasonID     string          `json:"seasonId"`
	Active       bool            `json:"active"`
	VaultBalance decimal.Decimal `json:"vaultBalance"`
	PlaysLastMin int             `json:"playsLastMinute"`
}

func buildLiveSnapshot(db *sql.DB) (liveSnapshot, error) {
	now := time.Now().UTC()

	season, err := loadLatestSeason(db)
	if err != nil {
		return liveSnapshot{}, err
	}

	balance, err := vaultBalance(db, season.SeasonID)
	if err != nil {
		return liveSnapshot{}, err
	}

	var plays int
	err = db.QueryRow(`
		SELECT COUNT(*)
		FROM play_events
		WHERE season_id = $1 AND occurred_at > $2
	`, season.SeasonID, now.Add(-time.Minute)).Scan(&plays)
	if err != nil {
		return liveSnapshot{}, err
	}

	return liveSnapshot{
		ServerTime:   now.Format(time.RFC3339),
		SeasonID:     season.SeasonID,
		Active:       season.Active(),
		VaultBalance: balance,
		PlaysLastMin: plays,
	}, nil
}

func eventsHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")

		sendSnapshot := func() bool {
			snapshot, err := buildLiveSnapshot(db)
			if err != nil {
				return false
			}
			payload, err := json.Marshal(snapshot)
			if err != nil {
				return false
			}
			if _, err := w.Write([]byte("event: snapshot\n")); err != nil {
				return false
			}
			if _, err := w.Write([]byte("data: ")); err != nil {
				return false
			}
			if _, err := w.Write(payload); err != nil {
				return false
			}
			if _, err := w.Write([]byte("\n\n")); err != nil {
				return false
			}
			flusher.Flush()
			return true
		}

		if !sendSnapshot() {
			return
		}

		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()

		ctx := r.Context()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !sendSnapshot() {
					return
				}
			}
		}
	}
}
