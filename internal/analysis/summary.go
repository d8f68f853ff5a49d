package analysis

import (
	"math"

	"github.com/vanshika/ringtrace/backend/internal/domain"
)

// SummarizeRings aggregates per-account findings into ring-level records.
func SummarizeRings(rings []Ring, findings map[string]domain.AccountFinding) []domain.FraudRing {
	out := make([]domain.FraudRing, 0, len(rings))
	for _, ring := range rings {
		out = append(out, summarizeRing(ring, findings))
	}
	return out
}

// summarizeRing computes the mean member risk (2 decimal places) and
// classifies the ring over the union of member pattern labels: smurfing and
// cycle together make hybrid, otherwise any layering makes layering,
// otherwise cycle (ring membership is itself the cycle pattern).
func summarizeRing(ring Ring, findings map[string]domain.AccountFinding) domain.FraudRing {
	var total, scored int
	var hasCycle, hasSmurfing, hasLayering bool

	for _, member := range ring.Members {
		finding, ok := findings[member]
		if !ok {
			continue
		}
		total += finding.SuspicionScore
		scored++
		for _, p := range finding.Patterns {
			switch p {
			case domain.PatternCycle:
				hasCycle = true
			case domain.PatternSmurfing:
				hasSmurfing = true
			case domain.PatternLayering:
				hasLayering = true
			}
		}
	}

	risk := 0.0
	if scored > 0 {
		risk = math.Round(float64(total)/float64(scored)*100) / 100
	}

	patternType := domain.RingPatternCycle
	switch {
	case hasSmurfing && hasCycle:
		patternType = domain.RingPatternHybrid
	case hasLayering:
		patternType = domain.RingPatternLayering
	}

	return domain.FraudRing{
		RingID:         ring.ID,
		MemberAccounts: ring.Members,
		PatternType:    patternType,
		RiskScore:      risk,
	}
}
