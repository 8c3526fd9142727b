package main

import (
	"database/sql"
	"testing"
	"time"
)

func TestCooldownBoundary(t *testing.T) {
	window := 5 * time.Second
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	last := sql.NullTime{Time: base, Valid: true}

	// 4.999s in: still closed, with the exact remaining wait reported.
	if rem := cooldownRemaining(last, base.Add(4999*time.Millisecond), window); rem != time.Millisecond {
		t.Fatalf("expected 1ms remaining, got %s", rem)
	}

	// Exactly 5s: open.
	if rem := cooldownRemaining(last, base.Add(5*time.Second), window); rem != 0 {
		t.Fatalf("expected open gate at boundary, got %s remaining", rem)
	}

	if rem := cooldownRemaining(last, base.Add(time.Minute), window); rem != 0 {
		t.Fatalf("expected open gate, got %s remaining", rem)
	}
}

func TestCooldownFirstContact(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if rem := cooldownRemaining(sql.NullTime{}, now, 300*time.Second); rem != 0 {
		t.Fatalf("expected no cooldown for first contact, got %s", rem)
	}
}

func TestRateLimitErrorReportsGate(t *testing.T) {
	err := &rateLimitError{Gate: GateBroadcast, Remaining: 42 * time.Second}
	if err.Error() != "broadcast cooldown active for 42s" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}

func TestCeilSeconds(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want int64
	}{
		{0, 0},
		{time.Millisecond, 1},
		{time.Second, 1},
		{1500 * time.Millisecond, 2},
		{119*time.Second + 999*time.Millisecond, 120},
	}
	for _, tc := range cases {
		if got := ceilSeconds(tc.d); got != tc.want {
			t.Fatalf("ceilSeconds(%s) = %d, want %d", tc.d, got, tc.want)
		}
	}
}
