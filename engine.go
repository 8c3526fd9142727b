package main

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	errSeasonEnded  = errors.New("season ended")
	errSeasonActive = errors.New("season still active")
	errConflict     = errors.New("transaction conflict")
)

// Engine serializes every play and submission through one logical
// transaction per request. Concurrent requests on disjoint players may
// interleave, but any two transactions touching the vault row are
// ordered by its lock.
type Engine struct {
	db    *sql.DB
	cfg   Config
	clock Clock
	log   *zap.Logger
}

func NewEngine(db *sql.DB, cfg Config, clock Clock, log *zap.Logger) *Engine {
	return &Engine{db: db, cfg: cfg, clock: clock, log: log}
}

type PlayResult struct {
	PlayerID      string
	Outcome       string
	Reason        string
	Layer         int
	Payout        decimal.Decimal
	EntryCost     decimal.Decimal
	VaultBalance  decimal.Decimal
	SeasonEnded   bool
	NextAllowedAt time.Time
	// NextWinAllowedAt is set only when the win cooldown forced the
	// outcome to a loss; it is when the win gate reopens.
	NextWinAllowedAt time.Time
}

const (
	SubmitAccepted = "accepted"
	SubmitRejected = "rejected"
	SubmitInvalid  = "invalid"
)

type SubmitResult struct {
	PlayerID  string
	Status    string
	Payout    decimal.Decimal
	SeasonEnd bool
}

// Play runs the full pipeline: cooldown gate, win evaluator, payout
// calculator, ledger append and season check, all inside one
// serializable transaction.
func (e *Engine) Play(ctx context.Context, playerID string) (*PlayResult, error) {
	var result *PlayResult

	err := e.withSerializableTx(ctx, func(tx *sql.Tx) error {
		now := e.clock.Now()

		season, err := loadActiveSeasonTx(tx)
		if err != nil {
			return err
		}

		vault, err := lockVault(tx, season.SeasonID)
		if err != nil {
			return err
		}

		player, err := lockPlayer(tx, playerID, now)
		if err != nil {
			return err
		}

		if rem := cooldownRemaining(player.LastPlayAt, now, e.cfg.PlayCooldown); rem > 0 {
			return &rateLimitError{Gate: GatePlay, Remaining: rem}
		}

		// Entry cost is charged on every attempt, win or loss. The
		// vault share is credited before evaluation; the payout is
		// computed on the balance as of transaction start.
		startBalance := vault.Balance
		vault.Balance = vault.Balance.Add(e.cfg.vaultShare())
		vault.HouseTake = vault.HouseTake.Add(e.cfg.houseFee())
		player.TotalSpent = player.TotalSpent.Add(e.cfg.EntryCost)

		prior, err := countPlaysSinceTx(tx, season.SeasonID, now.Add(-e.cfg.VolumeWindow))
		if err != nil {
			return err
		}

		decision := evaluateAttempt(e.cfg, attemptState{
			L1Wins:             player.L1Wins,
			PriorPlaysInWindow: prior,
		}, now)

		outcome := decision.Outcome
		reason := decision.Reason
		payout := decimal.Zero
		var nextWinAt time.Time

		if decision.Outcome == OutcomeWin {
			if rem := cooldownRemaining(player.LastWinAt, now, e.cfg.WinCooldown); rem > 0 {
				// Hit the formula inside the win cooldown: forced to a
				// loss, entry cost still charged. The caller gets the
				// reopen time so it does not retry blind.
				outcome = OutcomeLoss
				reason = ReasonWinCooldown
				nextWinAt = now.Add(rem)
			} else {
				payout = payoutAmount(startBalance, e.cfg)
				if payout.GreaterThan(vault.Balance) {
					payout = vault.Balance
				}
				vault.Balance = vault.Balance.Sub(payout)
				player.TotalWon = player.TotalWon.Add(payout)
				player.LastWinAt = sql.NullTime{Time: now, Valid: true}
				if decision.Layer == 1 {
					player.L1Wins++
				}
			}
		}

		player.LastPlayAt = sql.NullTime{Time: now, Valid: true}

		if err := saveVault(tx, vault, now); err != nil {
			return err
		}
		if err := savePlayer(tx, player); err != nil {
			return err
		}
		if err := appendPlayEventTx(tx, PlayEvent{
			SeasonID:     season.SeasonID,
			PlayerID:     playerID,
			Outcome:      outcome,
			Reason:       reason,
			Layer:        decision.Layer,
			EntryCost:    e.cfg.EntryCost,
			AmountPaid:   payout,
			VaultBalance: vault.Balance,
			OccurredAt:   now,
		}); err != nil {
			return err
		}

		seasonEnded := false
		if payout.IsPositive() && depletionReached(vault.Initial, vault.Balance, e.cfg) {
			flipped, err := endSeasonTx(tx, season.SeasonID, EndReasonDepletion, sql.NullString{}, now)
			if err != nil {
				return err
			}
			if flipped {
				if err := writeHallOfFameTx(tx, season.SeasonID); err != nil {
					return err
				}
				seasonEnded = true
			}
		}

		result = &PlayResult{
			PlayerID:         playerID,
			Outcome:          outcome,
			Reason:           reason,
			Layer:            decision.Layer,
			Payout:           payout,
			EntryCost:        e.cfg.EntryCost,
			VaultBalance:     vault.Balance,
			SeasonEnded:      seasonEnded,
			NextAllowedAt:    now.Add(e.cfg.PlayCooldown),
			NextWinAllowedAt: nextWinAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.SeasonEnded {
		e.log.Info("season ended by depletion",
			zap.String("playerId", playerID),
			zap.String("vaultBalance", result.VaultBalance.String()))
	}
	return result, nil
}

// Submit handles a Grand Solve attempt. Acceptance, payout and the
// Legacy transition commit atomically; the compare-and-swap in
// endSeasonTx guarantees at most one accepted submission per season.
// The attempt log row commits on every path, including a correct
// formula that lost the finalization race.
func (e *Engine) Submit(ctx context.Context, playerID, formula string) (*SubmitResult, error) {
	var result *SubmitResult
	raceLost := false

	err := e.withSerializableTx(ctx, func(tx *sql.Tx) error {
		raceLost = false
		now := e.clock.Now()

		season, err := loadActiveSeasonTx(tx)
		if err != nil {
			return err
		}

		valid := validSubmission(formula)
		accepted := valid && answerMatches(formula, e.cfg)
		flipped := false
		if accepted {
			flipped, err = endSeasonTx(tx, season.SeasonID, EndReasonGrandSolve,
				sql.NullString{String: playerID, Valid: true}, now)
			if err != nil {
				return err
			}
		}

		res := resolveSubmission(valid, accepted, flipped)
		if err := logGrandSolveAttemptTx(tx, season.SeasonID, playerID, formula, res.Won, now); err != nil {
			return err
		}
		if !res.Won {
			raceLost = res.RaceLost
			result = &SubmitResult{PlayerID: playerID, Status: res.Status}
			return nil
		}

		vault, err := lockVault(tx, season.SeasonID)
		if err != nil {
			return err
		}
		player, err := lockPlayer(tx, playerID, now)
		if err != nil {
			return err
		}

		prize := grandPrize(vault.Balance, e.cfg)
		if prize.GreaterThan(vault.Balance) {
			prize = vault.Balance
		}
		vault.Balance = vault.Balance.Sub(prize)
		player.TotalWon = player.TotalWon.Add(prize)
		player.LastWinAt = sql.NullTime{Time: now, Valid: true}

		if err := saveVault(tx, vault, now); err != nil {
			return err
		}
		if err := savePlayer(tx, player); err != nil {
			return err
		}
		if err := appendPlayEventTx(tx, PlayEvent{
			SeasonID:     season.SeasonID,
			PlayerID:     playerID,
			Outcome:      OutcomeWin,
			Reason:       ReasonGrandSolve,
			Layer:        activeLayer(player.L1Wins, e.cfg.LayerOneWinTarget),
			EntryCost:    decimal.Zero,
			AmountPaid:   prize,
			VaultBalance: vault.Balance,
			OccurredAt:   now,
		}); err != nil {
			return err
		}
		if err := writeHallOfFameTx(tx, season.SeasonID); err != nil {
			return err
		}

		result = &SubmitResult{
			PlayerID:  playerID,
			Status:    SubmitAccepted,
			Payout:    prize,
			SeasonEnd: true,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if raceLost {
		return nil, errSeasonEnded
	}

	if result.Status == SubmitAccepted {
		e.log.Info("grand solve accepted",
			zap.String("playerId", playerID),
			zap.String("payout", result.Payout.String()))
	}
	return result, nil
}

// Broadcast appends a rate-limited message. Only the sender's own
// cooldown row is locked; no vault contention.
func (e *Engine) Broadcast(ctx context.Context, playerID, text string) (time.Time, error) {
	var nextAllowedAt time.Time

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return time.Time{}, err
	}
	defer tx.Rollback()

	now := e.clock.Now()

	player, err := lockPlayer(tx, playerID, now)
	if err != nil {
		return time.Time{}, err
	}
	if rem := cooldownRemaining(player.LastBroadcastAt, now, e.cfg.BroadcastCooldown); rem > 0 {
		return time.Time{}, &rateLimitError{Gate: GateBroadcast, Remaining: rem}
	}

	if _, err := tx.Exec(`
		INSERT INTO broadcasts (player_id, body, created_at)
		VALUES ($1, $2, $3)
	`, playerID, text, now); err != nil {
		return time.Time{}, err
	}

	player.LastBroadcastAt = sql.NullTime{Time: now, Valid: true}
	if err := savePlayer(tx, player); err != nil {
		return time.Time{}, err
	}

	nextAllowedAt = now.Add(e.cfg.BroadcastCooldown)
	return nextAllowedAt, tx.Commit()
}

// withSerializableTx retries on serialization failures a bounded
// number of times before surfacing errConflict.
func (e *Engine) withSerializableTx(ctx context.Context, fn func(*sql.Tx) error) error {
	return retryOnConflict(e.cfg.TxRetryLimit, e.log, func() error {
		return e.runTx(ctx, fn)
	})
}

func retryOnConflict(limit int, log *zap.Logger, fn func() error) error {
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !isSerializationFailure(err) {
			return err
		}
		if attempt >= limit {
			log.Warn("transaction conflict, retries exhausted", zap.Int("attempts", attempt))
			return errConflict
		}
		log.Debug("transaction conflict, retrying", zap.Int("attempt", attempt))
	}
}

func (e *Engine) runTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := e.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func isSerializationFailure(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	// 40001 serialization_failure, 40P01 deadlock_detected
	return pqErr.Code == "40001" || pqErr.Code == "40P01"
}
