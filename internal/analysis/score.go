package analysis

import (
	"time"

	"github.com/vanshika/ringtrace/backend/internal/domain"
)

// Config holds the detection tuning knobs. The fan-in threshold and velocity
// window are heuristics without a principled derivation, so they are
// configuration rather than constants.
type Config struct {
	FanInThreshold int           // in-degree above which the smurfing bonus accrues
	VelocityWindow time.Duration // maximum in-to-out gap for the layering flag
	RiskThreshold  int           // minimum score for risk_summary inclusion
}

// DefaultConfig returns the baseline detection tuning.
func DefaultConfig() Config {
	return Config{
		FanInThreshold: 5,
		VelocityWindow: 15 * time.Minute,
		RiskThreshold:  20,
	}
}

const (
	ringContribution     = 50
	velocityContribution = 20
	smurfingUnit         = 5
	smurfingCap          = 30
	maxScore             = 100
)

// scoreAccount computes the bounded suspicion score and pattern labels for
// one account. Labels attach independently of the numeric contributions and
// survive the cap at 100.
func scoreAccount(inRing bool, inDegree int, highVelocity bool, fanInThreshold int) (int, []string) {
	score := 0
	patterns := []string{}

	if inRing {
		score += ringContribution
		patterns = append(patterns, domain.PatternCycle)
	}
	if inDegree > fanInThreshold {
		bonus := (inDegree - fanInThreshold) * smurfingUnit
		if bonus > smurfingCap {
			bonus = smurfingCap
		}
		score += bonus
		patterns = append(patterns, domain.PatternSmurfing)
	}
	if highVelocity {
		score += velocityContribution
		patterns = append(patterns, domain.PatternLayering)
	}

	if score > maxScore {
		score = maxScore
	}
	return score, patterns
}

// scoreColor mirrors the frontend palette: red above 50, blue otherwise.
func scoreColor(score int) string {
	if score > 50 {
		return "#ef4444"
	}
	return "#3b82f6"
}
