package main

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestROIPercent(t *testing.T) {
	cases := []struct {
		name  string
		won   string
		spent string
		want  string
	}{
		{"doubled up", "200", "100", "100"},
		{"total loss", "0", "100", "-100"},
		{"break even", "50", "50", "0"},
		{"fractional", "37.04", "10", "270.4"},
		{"never played", "0", "0", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := roiPercent(decimal.RequireFromString(tc.won), decimal.RequireFromString(tc.spent))
			if !got.Equal(decimal.RequireFromString(tc.want)) {
				t.Fatalf("roiPercent(%s, %s) = %s, want %s", tc.won, tc.spent, got, tc.want)
			}
		})
	}
}
