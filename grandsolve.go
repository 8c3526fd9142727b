package main

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
)

const maxSubmissionLength = 256

// normalizeFormula collapses whitespace and case so cosmetic
// differences do not reject a correct formula.
func normalizeFormula(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func validSubmission(s string) bool {
	trimmed := strings.TrimSpace(s)
	return trimmed != "" && len(trimmed) <= maxSubmissionLength
}

func answerMatches(submission string, cfg Config) bool {
	return normalizeFormula(submission) == normalizeFormula(cfg.GrandSolveAnswer)
}

// submitResolution settles a submission: the status to report, whether
// the attempt log records a season-ending win, and whether a correct
// formula lost the finalization race to an earlier solver.
type submitResolution struct {
	Status   string
	Won      bool
	RaceLost bool
}

func resolveSubmission(valid, accepted, flipped bool) submitResolution {
	switch {
	case !valid:
		return submitResolution{Status: SubmitInvalid}
	case !accepted:
		return submitResolution{Status: SubmitRejected}
	case !flipped:
		return submitResolution{Status: SubmitRejected, RaceLost: true}
	default:
		return submitResolution{Status: SubmitAccepted, Won: true}
	}
}

// logGrandSolveAttemptTx appends to the security log. Every attempt is
// recorded, accepted or not.
func logGrandSolveAttemptTx(tx *sql.Tx, seasonID, playerID, submission string, accepted bool, now time.Time) error {
	_, err := tx.Exec(`
		INSERT INTO grand_solve_attempts (
			attempt_id,
			season_id,
			player_id,
			submission,
			accepted,
			submitted_at
		)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.NewString(), seasonID, playerID, submission, accepted, now)
	return err
}
