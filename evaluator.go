package main

import "time"

const (
	OutcomeWin  = "win"
	OutcomeLoss = "loss"
)

// Reason codes attached to every ledger event. SIGNAL_MISSED and
// LOW_VOLUME are the two loss branches of the hidden formula;
// WIN_COOLDOWN marks a play that hit the formula but was forced to a
// loss by the per-player win cooldown.
const (
	ReasonLayerOneBreach = "LAYER1_BREACH"
	ReasonLayerTwoBreach = "LAYER2_BREACH"
	ReasonSignalMissed   = "SIGNAL_MISSED"
	ReasonLowVolume      = "LOW_VOLUME"
	ReasonWinCooldown    = "WIN_COOLDOWN"
	ReasonGrandSolve     = "GRAND_SOLVE"
)

type attemptState struct {
	L1Wins             int
	PriorPlaysInWindow int
}

type playDecision struct {
	Outcome string
	Layer   int
	Reason  string
}

func timeAligned(now time.Time, residue, modulus int64) bool {
	return now.Unix()%modulus == residue
}

// activeLayer is one-directional: once a player's layer-1 win count
// reaches the target they are evaluated against layer 2 forever.
func activeLayer(l1Wins, target int) int {
	if l1Wins < target {
		return 1
	}
	return 2
}

// evaluateAttempt decides a single play. It is a pure function of the
// player's escalation state, the trailing ledger window and the server
// clock; callers resolve those against the transaction snapshot.
func evaluateAttempt(cfg Config, st attemptState, now time.Time) playDecision {
	layer := activeLayer(st.L1Wins, cfg.LayerOneWinTarget)

	if !timeAligned(now, cfg.TimeResidue, cfg.TimeModulus) {
		return playDecision{Outcome: OutcomeLoss, Layer: layer, Reason: ReasonSignalMissed}
	}

	if layer == 1 {
		return playDecision{Outcome: OutcomeWin, Layer: 1, Reason: ReasonLayerOneBreach}
	}

	// The triggering play itself counts toward the surge.
	volume := st.PriorPlaysInWindow + 1
	if volume >= cfg.VolumeThreshold {
		return playDecision{Outcome: OutcomeWin, Layer: 2, Reason: ReasonLayerTwoBreach}
	}

	return playDecision{Outcome: OutcomeLoss, Layer: 2, Reason: ReasonLowVolume}
}
