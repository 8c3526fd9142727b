package main

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestPayoutAmount(t *testing.T) {
	cfg := testConfig()

	cases := []struct {
		name    string
		balance string
		want    string
	}{
		{"rate applies above floor", "1000", "30"},
		{"floor keeps payouts meaningful", "100", "20"},
		{"clamped to balance", "5", "5"},
		{"exactly at floor crossover", "666.67", "20"},
		{"zero balance pays nothing", "0", "0"},
		{"rate rounding", "1234.56", "37.04"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := payoutAmount(decimal.RequireFromString(tc.balance), cfg)
			if !got.Equal(decimal.RequireFromString(tc.want)) {
				t.Fatalf("payout(%s) = %s, want %s", tc.balance, got, tc.want)
			}
		})
	}
}

func TestPayoutNeverExceedsBalance(t *testing.T) {
	cfg := testConfig()

	for _, balance := range []string{"0.01", "1", "19.99", "20", "21", "500", "100000"} {
		b := decimal.RequireFromString(balance)
		if payoutAmount(b, cfg).GreaterThan(b) {
			t.Fatalf("payout exceeds balance %s", balance)
		}
	}
}

func TestGrandPrize(t *testing.T) {
	cfg := testConfig()

	got := grandPrize(decimal.NewFromInt(1000), cfg)
	if !got.Equal(decimal.NewFromInt(600)) {
		t.Fatalf("grand prize on 1000 = %s, want 600", got)
	}

	if !grandPrize(decimal.Zero, cfg).Equal(decimal.Zero) {
		t.Fatalf("grand prize on empty vault must be zero")
	}
}

func TestDepletionReached(t *testing.T) {
	cfg := testConfig()
	initial := decimal.NewFromInt(1000)

	cases := []struct {
		balance string
		want    bool
	}{
		{"1000", false},
		{"400.01", false},
		{"400", true},
		{"399.99", true},
		{"0", true},
	}

	for _, tc := range cases {
		got := depletionReached(initial, decimal.RequireFromString(tc.balance), cfg)
		if got != tc.want {
			t.Fatalf("depletionReached(balance=%s) = %v, want %v", tc.balance, got, tc.want)
		}
	}
}
