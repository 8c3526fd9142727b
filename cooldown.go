package main

import (
	"database/sql"
	"time"
)

const (
	GatePlay      = "play"
	GateWin       = "win"
	GateBroadcast = "broadcast"
)

// cooldownRemaining returns how long the gate stays closed. Zero means
// the attempt may proceed; an attempt at exactly last+window is
// allowed.
func cooldownRemaining(last sql.NullTime, now time.Time, window time.Duration) time.Duration {
	if !last.Valid {
		return 0
	}
	next := last.Time.Add(window)
	if !now.Before(next) {
		return 0
	}
	return next.Sub(now)
}

// rateLimitError is reported, not silently dropped: the caller gets
// the gate that closed and the remaining wait.
type rateLimitError struct {
	Gate      string
	Remaining time.Duration
}

func (e *rateLimitError) Error() string {
	return e.Gate + " cooldown active for " + e.Remaining.String()
}
