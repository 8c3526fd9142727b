package main

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type vaultState struct {
	SeasonID  string
	Balance   decimal.Decimal
	Initial   decimal.Decimal
	HouseTake decimal.Decimal
}

// lockVault reads the season's vault row under FOR UPDATE so the
// read-modify-write of the balance is serialized against concurrent
// plays.
func lockVault(tx *sql.Tx, seasonID string) (*vaultState, error) {
	var v vaultState

	err := tx.QueryRow(`
		SELECT season_id, balance, initial_balance, house_take
		FROM vault
		WHERE season_id = $1
		FOR UPDATE
	`, seasonID).Scan(&v.SeasonID, &v.Balance, &v.Initial, &v.HouseTake)
	if err != nil {
		return nil, err
	}

	return &v, nil
}

func saveVault(tx *sql.Tx, v *vaultState, now time.Time) error {
	_, err := tx.Exec(`
		UPDATE vault
		SET balance = $2,
			house_take = $3,
			updated_at = $4
		WHERE season_id = $1
	`, v.SeasonID, v.Balance, v.HouseTake, now)
	return err
}

func createVault(tx *sql.Tx, seasonID string, seed decimal.Decimal, now time.Time) error {
	_, err := tx.Exec(`
		INSERT INTO vault (season_id, balance, initial_balance, house_take, updated_at)
		VALUES ($1, $2, $2, 0, $3)
	`, seasonID, seed, now)
	return err
}

func vaultBalance(db *sql.DB, seasonID string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := db.QueryRow(`
		SELECT balance FROM vault WHERE season_id = $1
	`, seasonID).Scan(&balance)
	return balance, err
}
