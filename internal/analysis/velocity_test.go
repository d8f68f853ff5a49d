package analysis

import (
	"testing"
	"time"

	"github.com/vanshika/ringtrace/backend/internal/domain"
)

const testWindow = 15 * time.Minute

func TestDetectVelocityInclusiveBounds(t *testing.T) {
	cases := []struct {
		name    string
		outAt   time.Time
		flagged bool
	}{
		{"outgoing at same instant", testBase, true},
		{"outgoing mid-window", testBase.Add(10 * time.Minute), true},
		{"outgoing exactly at window edge", testBase.Add(testWindow), true},
		{"outgoing one second past window", testBase.Add(testWindow + time.Second), false},
		{"outgoing before incoming", testBase.Add(-time.Minute), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := BuildGraph([]domain.Transaction{
				tx("TX_IN", "X", "M", 900, testBase),
				tx("TX_OUT", "M", "Y", 900, tc.outAt),
			})
			flagged := DetectVelocity(g, testWindow)
			if flagged["M"] != tc.flagged {
				t.Fatalf("expected flagged=%v for M, got %v", tc.flagged, flagged["M"])
			}
		})
	}
}

func TestDetectVelocityRequiresBothDirections(t *testing.T) {
	g := BuildGraph([]domain.Transaction{
		tx("TX_1", "A", "B", 100, testBase),
		tx("TX_2", "A", "C", 100, testBase.Add(time.Minute)),
	})

	flagged := DetectVelocity(g, testWindow)
	if len(flagged) != 0 {
		t.Fatalf("accounts without both incoming and outgoing transfers must not be flagged, got %v", flagged)
	}
}

func TestDetectVelocityUnsortedInput(t *testing.T) {
	// Only the (12:30 in, 12:35 out) pair is inside the window. The detector
	// sorts internally, so out-of-order transactions must still match.
	g := BuildGraph([]domain.Transaction{
		tx("TX_1", "M", "Y", 100, testBase.Add(90*time.Minute)),
		tx("TX_2", "X", "M", 100, testBase.Add(30*time.Minute)),
		tx("TX_3", "M", "Z", 100, testBase.Add(35*time.Minute)),
		tx("TX_4", "W", "M", 100, testBase),
	})

	flagged := DetectVelocity(g, testWindow)
	if !flagged["M"] {
		t.Fatal("expected M to be flagged via the mid-batch pair")
	}
}

func TestDetectVelocityIgnoresMissingTimestamps(t *testing.T) {
	g := BuildGraph([]domain.Transaction{
		tx("TX_1", "X", "M", 100, testBase),
		tx("TX_2", "M", "Y", 100, time.Time{}),
	})

	flagged := DetectVelocity(g, testWindow)
	if flagged["M"] {
		t.Fatal("transfers without timestamps must not contribute to velocity")
	}
}

func TestDetectVelocityLaterOutgoingStillMatches(t *testing.T) {
	// The first outgoing transfer precedes every incoming one; the second
	// falls within the window of the incoming transfer.
	g := BuildGraph([]domain.Transaction{
		tx("TX_1", "M", "Y", 100, testBase.Add(-time.Hour)),
		tx("TX_2", "X", "M", 100, testBase),
		tx("TX_3", "M", "Z", 100, testBase.Add(5*time.Minute)),
	})

	flagged := DetectVelocity(g, testWindow)
	if !flagged["M"] {
		t.Fatal("expected M to be flagged, pre-window outgoing must be skipped")
	}
}
