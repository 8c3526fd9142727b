package main

import (
	"strings"
	"testing"
)

func TestIsValidPlayerID(t *testing.T) {
	cases := []struct {
		name string
		id   string
		want bool
	}{
		{"simple", "alice", true},
		{"mixed", "player_42-b", true},
		{"digits only", "12345", true},
		{"empty", "", false},
		{"space", "bad id", false},
		{"punctuation", "drop;table", false},
		{"max length", strings.Repeat("a", 64), true},
		{"over length", strings.Repeat("a", 65), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isValidPlayerID(tc.id); got != tc.want {
				t.Fatalf("isValidPlayerID(%q) = %v, want %v", tc.id, got, tc.want)
			}
		})
	}
}
