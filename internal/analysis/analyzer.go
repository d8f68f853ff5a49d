package analysis

import (
	"log/slog"
	"sort"
	"time"

	"github.com/vanshika/ringtrace/backend/internal/domain"
)

// Analyzer runs the detection pipeline over one transaction batch: graph
// construction, ring detection, velocity detection, scoring and ring
// summarization. It holds no state between runs; every call builds a fresh
// graph and result, so concurrent calls need no coordination.
type Analyzer struct {
	cfg    Config
	logger *slog.Logger
	nowFn  func() time.Time
}

// NewAnalyzer constructs an Analyzer, filling unset tuning values with the
// defaults.
func NewAnalyzer(cfg Config, logger *slog.Logger) *Analyzer {
	defaults := DefaultConfig()
	if cfg.FanInThreshold <= 0 {
		cfg.FanInThreshold = defaults.FanInThreshold
	}
	if cfg.VelocityWindow <= 0 {
		cfg.VelocityWindow = defaults.VelocityWindow
	}
	if cfg.RiskThreshold <= 0 {
		cfg.RiskThreshold = defaults.RiskThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		cfg:    cfg,
		logger: logger,
		nowFn:  time.Now,
	}
}

// WithClock overrides the time provider (used primarily in tests).
func (a *Analyzer) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		a.nowFn = nowFn
	}
}

// Analyze executes the full pipeline and assembles the result. An empty batch
// yields a valid all-zero result, not an error.
func (a *Analyzer) Analyze(txs []domain.Transaction) domain.AnalysisResult {
	start := a.nowFn()

	g := BuildGraph(txs)

	if len(txs) > 0 && !anyTimestamped(txs) {
		// Operators need to tell "no velocity pattern" apart from "no usable
		// timestamps", even though the API result looks identical.
		a.logger.Warn("velocity detection degraded, batch has no parseable timestamps",
			"transactions", len(txs))
	}

	rings := DetectRings(g, a.logger)
	ringByAccount := make(map[string]string, len(rings))
	for _, ring := range rings {
		for _, member := range ring.Members {
			ringByAccount[member] = ring.ID
		}
	}

	velocity := DetectVelocity(g, a.cfg.VelocityWindow)

	nodes := make([]domain.AccountFinding, 0, len(g.Accounts))
	findings := make(map[string]domain.AccountFinding, len(g.Accounts))
	for _, account := range g.Accounts {
		ringID, inRing := ringByAccount[account]
		if !inRing {
			ringID = domain.NoRing
		}

		score, patterns := scoreAccount(inRing, g.InDegree(account), velocity[account], a.cfg.FanInThreshold)
		finding := domain.AccountFinding{
			ID:             account,
			SuspicionScore: score,
			Patterns:       patterns,
			RingID:         ringID,
			Val:            float64(score) / 10,
			Color:          scoreColor(score),
		}
		nodes = append(nodes, finding)
		findings[account] = finding
	}

	links := make([]domain.Link, 0, len(g.Edges))
	for _, e := range g.Edges {
		links = append(links, domain.Link{Source: e.From, Target: e.To, Amount: e.Amount})
	}

	fraudRings := SummarizeRings(rings, findings)

	riskSummary := make([]domain.AccountFinding, 0)
	for _, n := range nodes {
		if n.SuspicionScore > a.cfg.RiskThreshold {
			riskSummary = append(riskSummary, n)
		}
	}
	sort.SliceStable(riskSummary, func(i, j int) bool {
		if riskSummary[i].SuspicionScore != riskSummary[j].SuspicionScore {
			return riskSummary[i].SuspicionScore > riskSummary[j].SuspicionScore
		}
		return riskSummary[i].ID < riskSummary[j].ID
	})

	elapsed := a.nowFn().Sub(start)

	return domain.AnalysisResult{
		Nodes:       nodes,
		Links:       links,
		FraudRings:  fraudRings,
		RiskSummary: riskSummary,
		Summary: domain.Summary{
			TotalAccountsAnalyzed:     len(nodes),
			SuspiciousAccountsFlagged: len(riskSummary),
			FraudRingsDetected:        len(fraudRings),
			ProcessingTimeSeconds:     elapsed.Seconds(),
		},
	}
}

// BuildReport reshapes an analysis result into the stricter compliance
// export: accounts with a positive score, sorted by score descending with a
// deterministic tie-break on account id.
func BuildReport(result domain.AnalysisResult) domain.ComplianceReport {
	accounts := make([]domain.ReportEntry, 0)
	for _, n := range result.Nodes {
		if n.SuspicionScore <= 0 {
			continue
		}
		accounts = append(accounts, domain.ReportEntry{
			AccountID:        n.ID,
			SuspicionScore:   n.SuspicionScore,
			DetectedPatterns: n.Patterns,
			RingID:           n.RingID,
		})
	}
	sort.SliceStable(accounts, func(i, j int) bool {
		if accounts[i].SuspicionScore != accounts[j].SuspicionScore {
			return accounts[i].SuspicionScore > accounts[j].SuspicionScore
		}
		return accounts[i].AccountID < accounts[j].AccountID
	})

	return domain.ComplianceReport{
		Accounts:   accounts,
		FraudRings: result.FraudRings,
		Summary:    result.Summary,
	}
}

func anyTimestamped(txs []domain.Transaction) bool {
	for _, tx := range txs {
		if tx.HasTimestamp() {
			return true
		}
	}
	return false
}
