// Package score composes aggregated wallet statistics into the bounded
// DegenScore. One formula, parameterized by a named weighting profile:
// divergent historical implementations are unified here so the same wallet
// can never receive two different scores from forked code paths.
package score

import (
	"errors"
	"fmt"
)

// Profile names.
const (
	ProfileNeutral = "neutral"
	ProfileStrict  = "strict"
)

// ErrUnknownProfile is returned for a profile name this package does not
// define.
var ErrUnknownProfile = errors.New("unknown score profile")

// Profile is one named weighting of the score formula.
type Profile struct {
	Name     string
	Baseline float64 // starting score before any contribution

	WinWeight float64 // score at 100% win rate
	WinCap    float64

	VolumeNormalizer float64 // volume that earns the full volume weight
	VolumeWeight     float64

	MoonshotUnit float64 // per moonshot
	MoonshotCap  float64

	RugUnit float64 // per rug, subtracted
	RugCap  float64

	ConsistencyLongDays  int     // trading days for the full bonus
	ConsistencyLong      float64
	ConsistencyShortDays int
	ConsistencyShort     float64

	ProfitabilityCap float64 // bound on the PnL/volume contribution, +/-
}

// Neutral is the canonical default: starts every wallet at mid-scale.
func Neutral() Profile {
	p := baseWeights()
	p.Name = ProfileNeutral
	p.Baseline = 50
	return p
}

// Strict starts at zero: only demonstrated activity earns score.
func Strict() Profile {
	p := baseWeights()
	p.Name = ProfileStrict
	p.Baseline = 0
	return p
}

// baseWeights holds the weights shared by every profile; profiles differ
// only in name and baseline.
func baseWeights() Profile {
	return Profile{
		WinWeight:            20,
		WinCap:               20,
		VolumeNormalizer:     100,
		VolumeWeight:         15,
		MoonshotUnit:         5,
		MoonshotCap:          15,
		RugUnit:              3,
		RugCap:               15,
		ConsistencyLongDays:  30,
		ConsistencyLong:      10,
		ConsistencyShortDays: 7,
		ConsistencyShort:     5,
		ProfitabilityCap:     10,
	}
}

// FromName resolves a profile by name. The empty name selects Neutral.
func FromName(name string) (Profile, error) {
	switch name {
	case "", ProfileNeutral:
		return Neutral(), nil
	case ProfileStrict:
		return Strict(), nil
	default:
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
}
