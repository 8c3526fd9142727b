package main

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

type LeaderboardEntry struct {
	Rank       int             `json:"rank"`
	PlayerID   string          `json:"playerId"`
	ROIPercent decimal.Decimal `json:"roiPercent"`
	NetProfit  decimal.Decimal `json:"netProfit"`
}

// roiPercent is the realized return on capital: (won - spent) / spent,
// as a percentage.
func roiPercent(won, spent decimal.Decimal) decimal.Decimal {
	if spent.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return won.Sub(spent).Div(spent).Mul(decimal.NewFromInt(100)).Round(2)
}

func topPerformers(db *sql.DB, limit int) ([]LeaderboardEntry, error) {
	rows, err := db.Query(`
		SELECT player_id, total_spent, total_won
		FROM players
		WHERE total_spent > 0
		ORDER BY (total_won - total_spent) / total_spent DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []LeaderboardEntry{}
	rank := 0
	for rows.Next() {
		var playerID string
		var spent, won decimal.Decimal
		if err := rows.Scan(&playerID, &spent, &won); err != nil {
			continue
		}
		rank++
		results = append(results, LeaderboardEntry{
			Rank:       rank,
			PlayerID:   playerID,
			ROIPercent: roiPercent(won, spent),
			NetProfit:  won.Sub(spent),
		})
	}

	return results, rows.Err()
}
