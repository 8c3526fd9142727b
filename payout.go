package main

import "github.com/shopspring/decimal"

// payoutAmount computes a normal win extraction from the balance at
// transaction start: min(balance, max(MIN_PAYOUT, PAYOUT_RATE * balance)).
// The floor keeps payouts meaningful as the vault shrinks; the outer
// clamp guarantees the vault never pays out more than it holds.
func payoutAmount(balance decimal.Decimal, cfg Config) decimal.Decimal {
	if balance.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	amount := balance.Mul(cfg.PayoutRate).Round(2)
	if amount.LessThan(cfg.MinPayout) {
		amount = cfg.MinPayout
	}
	if amount.GreaterThan(balance) {
		amount = balance
	}
	return amount
}

// grandPrize is the season-ending extraction. It bypasses the normal
// floor/rate formula entirely.
func grandPrize(balance decimal.Decimal, cfg Config) decimal.Decimal {
	if balance.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return balance.Mul(cfg.GrandSolveRate).Round(2)
}

// depletionReached reports whether cumulative depletion has consumed
// the configured fraction of the seed balance.
func depletionReached(initial, balance decimal.Decimal, cfg Config) bool {
	spent := initial.Sub(balance)
	return spent.GreaterThanOrEqual(cfg.DepletionCutoff.Mul(initial))
}
