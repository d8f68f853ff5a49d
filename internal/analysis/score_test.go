package analysis

import (
	"reflect"
	"testing"

	"github.com/vanshika/ringtrace/backend/internal/domain"
)

func TestScoreAccountContributions(t *testing.T) {
	cases := []struct {
		name         string
		inRing       bool
		inDegree     int
		highVelocity bool
		wantScore    int
		wantPatterns []string
	}{
		{"clean account", false, 1, false, 0, []string{}},
		{"ring member", true, 0, false, 50, []string{domain.PatternCycle}},
		{"at fan-in threshold", false, 5, false, 0, []string{}},
		{"one past threshold", false, 6, false, 5, []string{domain.PatternSmurfing}},
		{"fan-in of ten", false, 10, false, 25, []string{domain.PatternSmurfing}},
		{"smurfing saturates", false, 11, false, 30, []string{domain.PatternSmurfing}},
		{"smurfing stays saturated", false, 40, false, 30, []string{domain.PatternSmurfing}},
		{"high velocity", false, 0, true, 20, []string{domain.PatternLayering}},
		{"ring and velocity", true, 0, true, 70, []string{domain.PatternCycle, domain.PatternLayering}},
		{
			"all patterns capped at 100",
			true, 11, true, 100,
			[]string{domain.PatternCycle, domain.PatternSmurfing, domain.PatternLayering},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			score, patterns := scoreAccount(tc.inRing, tc.inDegree, tc.highVelocity, 5)
			if score != tc.wantScore {
				t.Fatalf("expected score %d, got %d", tc.wantScore, score)
			}
			if !reflect.DeepEqual(patterns, tc.wantPatterns) {
				t.Fatalf("expected patterns %v, got %v", tc.wantPatterns, patterns)
			}
		})
	}
}

func TestScoreAccountPatternsNeverNil(t *testing.T) {
	_, patterns := scoreAccount(false, 0, false, 5)
	if patterns == nil {
		t.Fatal("patterns must be an empty slice, not nil, so JSON renders []")
	}
}

func TestScoreAccountSmurfingMonotonic(t *testing.T) {
	prev := -1
	for degree := 0; degree <= 20; degree++ {
		score, _ := scoreAccount(false, degree, false, 5)
		if score < prev {
			t.Fatalf("score decreased from %d to %d at in-degree %d", prev, score, degree)
		}
		prev = score
	}
}

func TestScoreColorThreshold(t *testing.T) {
	if got := scoreColor(50); got != "#3b82f6" {
		t.Fatalf("score 50 must stay blue, got %q", got)
	}
	if got := scoreColor(51); got != "#ef4444" {
		t.Fatalf("score 51 must turn red, got %q", got)
	}
}
