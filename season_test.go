package main

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRankHallOfFame(t *testing.T) {
	d := decimal.RequireFromString
	totals := []seasonTotals{
		{PlayerID: "grinder", Won: d("90"), Spent: d("300")},
		{PlayerID: "whale", Won: d("600"), Spent: d("100")},
		{PlayerID: "spectator", Won: d("0"), Spent: d("0")},
		{PlayerID: "lucky", Won: d("40"), Spent: d("10")},
		{PlayerID: "even", Won: d("50"), Spent: d("50")},
		{PlayerID: "down", Won: d("5"), Spent: d("100")},
		{PlayerID: "mid", Won: d("30"), Spent: d("20")},
	}

	ranked := rankHallOfFame(totals, 5)
	if len(ranked) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(ranked))
	}

	wantOrder := []string{"whale", "lucky", "mid", "even", "grinder"}
	for i, want := range wantOrder {
		if ranked[i].PlayerID != want {
			t.Fatalf("rank %d: expected %s, got %s", i+1, want, ranked[i].PlayerID)
		}
		if ranked[i].Rank != i+1 {
			t.Fatalf("expected rank %d for %s, got %d", i+1, want, ranked[i].Rank)
		}
	}
	if !ranked[0].FinalReturn.Equal(d("6")) {
		t.Fatalf("expected whale return 6, got %s", ranked[0].FinalReturn)
	}
}

func TestRankHallOfFameRoundsReturn(t *testing.T) {
	ranked := rankHallOfFame([]seasonTotals{
		{PlayerID: "frac", Won: decimal.NewFromInt(100), Spent: decimal.NewFromInt(3)},
	}, 5)
	if len(ranked) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(ranked))
	}
	if !ranked[0].FinalReturn.Equal(decimal.RequireFromString("33.3333")) {
		t.Fatalf("expected return 33.3333, got %s", ranked[0].FinalReturn)
	}
}

func TestRankHallOfFameTieBreaksOnPlayerID(t *testing.T) {
	ranked := rankHallOfFame([]seasonTotals{
		{PlayerID: "zed", Won: decimal.NewFromInt(20), Spent: decimal.NewFromInt(10)},
		{PlayerID: "abe", Won: decimal.NewFromInt(40), Spent: decimal.NewFromInt(20)},
	}, 5)
	if ranked[0].PlayerID != "abe" || ranked[1].PlayerID != "zed" {
		t.Fatalf("expected tie broken by player ID, got %s then %s",
			ranked[0].PlayerID, ranked[1].PlayerID)
	}
}
