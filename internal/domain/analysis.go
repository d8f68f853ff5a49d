package domain

// NoRing is the ring id assigned to accounts outside any detected ring.
const NoRing = "none"

// Pattern labels attached to flagged accounts.
const (
	PatternCycle    = "cycle"
	PatternSmurfing = "smurfing"
	PatternLayering = "layering"
)

// Ring-level pattern classifications.
const (
	RingPatternCycle    = "cycle"
	RingPatternLayering = "layering"
	RingPatternHybrid   = "hybrid"
)

// AccountFinding is the scored analysis output for one account node. Val and
// Color are presentation hints derived purely from the score; they carry no
// analytical meaning.
type AccountFinding struct {
	ID             string   `json:"id"`
	SuspicionScore int      `json:"suspicion_score"`
	Patterns       []string `json:"patterns"`
	RingID         string   `json:"ring_id"`
	Val            float64  `json:"val"`
	Color          string   `json:"color"`
}

// Link renders a transaction as a graph edge for the interactive view.
type Link struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Amount float64 `json:"amount"`
}

// FraudRing aggregates a detected ring of mutually reachable accounts.
type FraudRing struct {
	RingID         string   `json:"ring_id"`
	MemberAccounts []string `json:"member_accounts"`
	PatternType    string   `json:"pattern_type"`
	RiskScore      float64  `json:"risk_score"`
}

// Summary carries batch-level counts for one analysis run.
type Summary struct {
	TotalAccountsAnalyzed     int     `json:"total_accounts_analyzed"`
	SuspiciousAccountsFlagged int     `json:"suspicious_accounts_flagged"`
	FraudRingsDetected        int     `json:"fraud_rings_detected"`
	ProcessingTimeSeconds     float64 `json:"processing_time_seconds"`
}

// AnalysisResult is the full per-batch output consumed by the interactive
// view. The compliance report is a reshaping of this result, never a second
// analysis.
type AnalysisResult struct {
	Nodes       []AccountFinding `json:"nodes"`
	Links       []Link           `json:"links"`
	FraudRings  []FraudRing      `json:"fraud_rings"`
	RiskSummary []AccountFinding `json:"risk_summary"`
	Summary     Summary          `json:"summary"`
}

// ReportEntry is one row of the compliance export.
type ReportEntry struct {
	AccountID        string   `json:"account_id"`
	SuspicionScore   int      `json:"suspicion_score"`
	DetectedPatterns []string `json:"detected_patterns"`
	RingID           string   `json:"ring_id"`
}

// ComplianceReport restricts the analysis to accounts with a positive score,
// sorted by score descending.
type ComplianceReport struct {
	Accounts   []ReportEntry `json:"accounts"`
	FraudRings []FraudRing   `json:"fraud_rings"`
	Summary    Summary       `json:"summary"`
}
