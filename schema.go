package main

import "database/sql"

func ensureSchema(db *sql.DB) error {

	// 1️⃣ seasons table
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS seasons (
			season_id TEXT PRIMARY KEY,
			start_time TIMESTAMPTZ NOT NULL,
			end_time TIMESTAMPTZ,
			end_reason TEXT NOT NULL DEFAULT 'none',
			victor_id TEXT
		);
	`)
	if err != nil {
		return err
	}

	// 2️⃣ vault table (one row per season; the active season's row is
	// the shared balance)
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS vault (
			season_id TEXT PRIMARY KEY,
			balance NUMERIC(18,2) NOT NULL,
			initial_balance NUMERIC(18,2) NOT NULL,
			house_take NUMERIC(18,2) NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL
		);
	`)
	if err != nil {
		return err
	}

	// 3️⃣ players table (cooldown state + win count; rows persist for
	// the lifetime of the game)
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS players (
			player_id TEXT PRIMARY KEY,
			total_spent NUMERIC(18,2) NOT NULL DEFAULT 0,
			total_won NUMERIC(18,2) NOT NULL DEFAULT 0,
			l1_wins INT NOT NULL DEFAULT 0,
			last_play_at TIMESTAMPTZ,
			last_win_at TIMESTAMPTZ,
			last_broadcast_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL
		);
	`)
	if err != nil {
		return err
	}

	// 4️⃣ play_events ledger (append-only)
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS play_events (
			id BIGSERIAL PRIMARY KEY,
			season_id TEXT NOT NULL,
			player_id TEXT NOT NULL,
			outcome TEXT NOT NULL,
			reason TEXT NOT NULL,
			layer INT NOT NULL,
			entry_cost NUMERIC(18,2) NOT NULL,
			amount_paid NUMERIC(18,2) NOT NULL,
			vault_balance NUMERIC(18,2) NOT NULL,
			occurred_at TIMESTAMPTZ NOT NULL
		);
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_play_events_occurred_at
		ON play_events (season_id, occurred_at);
	`)
	if err != nil {
		return err
	}

	// 5️⃣ broadcasts table (append-only, unmoderated)
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS broadcasts (
			id BIGSERIAL PRIMARY KEY,
			player_id TEXT NOT NULL,
			body TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);
	`)
	if err != nil {
		return err
	}

	// 6️⃣ grand_solve_attempts security log (every attempt, accepted
	// or not)
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS grand_solve_attempts (
			attempt_id TEXT PRIMARY KEY,
			season_id TEXT NOT NULL,
			player_id TEXT NOT NULL,
			submission TEXT NOT NULL,
			accepted BOOLEAN NOT NULL,
			submitted_at TIMESTAMPTZ NOT NULL
		);
	`)
	if err != nil {
		return err
	}

	// 7️⃣ hall_of_fame table
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS hall_of_fame (
			season_id TEXT NOT NULL,
			player_id TEXT NOT NULL,
			final_return NUMERIC(18,4) NOT NULL,
			rank INT NOT NULL,
			PRIMARY KEY (season_id, player_id)
		);
	`)
	if err != nil {
		return err
	}

	// 8️⃣ vault_snapshots table (display history, written by the cron
	// job)
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS vault_snapshots (
			id BIGSERIAL PRIMARY KEY,
			season_id TEXT NOT NULL,
			balance NUMERIC(18,2) NOT NULL,
			captured_at TIMESTAMPTZ NOT NULL
		);
	`)
	if err != nil {
		return err
	}

	return nil
}
