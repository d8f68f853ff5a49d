package analysis

import (
	"sort"
	"time"
)

// DetectVelocity flags accounts that relay funds quickly: some incoming
// transfer at t_in followed by an outgoing transfer within
// [t_in, t_in+window], bounds inclusive. Accounts with no incoming or no
// outgoing transfers cannot be flagged. Transfers without a parseable
// timestamp are ignored, which is how the detector degrades to "no flags"
// when an entire batch has unusable timestamps.
func DetectVelocity(g *Graph, window time.Duration) map[string]bool {
	flagged := make(map[string]bool)
	for _, account := range g.Accounts {
		in := sortedTimes(g.In[account])
		if len(in) == 0 {
			continue
		}
		out := sortedTimes(g.Out[account])
		if len(out) == 0 {
			continue
		}
		if hasPassThrough(in, out, window) {
			flagged[account] = true
		}
	}
	return flagged
}

// hasPassThrough runs a two-pointer scan over sorted timestamp slices rather
// than the quadratic pairwise check. For ascending t_in, the first outgoing
// timestamp not before t_in advances monotonically.
func hasPassThrough(in, out []time.Time, window time.Duration) bool {
	j := 0
	for _, tin := range in {
		for j < len(out) && out[j].Before(tin) {
			j++
		}
		if j == len(out) {
			return false
		}
		if !out[j].After(tin.Add(window)) {
			return true
		}
	}
	return false
}

func sortedTimes(edges []Edge) []time.Time {
	times := make([]time.Time, 0, len(edges))
	for _, e := range edges {
		if e.Timestamp.IsZero() {
			continue
		}
		times = append(times, e.Timestamp)
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	return times
}
