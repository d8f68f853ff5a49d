package analysis

import (
	"time"

	"github.com/vanshika/ringtrace/backend/internal/domain"
)

// Edge is one transfer between two accounts. Repeated transfers between the
// same ordered pair remain distinct edges; degree is counted per transaction,
// which is the multiplicity signal smurfing detection depends on.
type Edge struct {
	TransactionID string
	From          string
	To            string
	Amount        float64
	Timestamp     time.Time
}

// Graph is a directed multigraph of accounts connected by transfers. It is
// built fresh for every analysis call and discarded after scoring.
type Graph struct {
	Accounts []string // account ids in first-seen order
	Out      map[string][]Edge
	In       map[string][]Edge
	Edges    []Edge // every transfer in input order
}

// BuildGraph converts a transaction batch into a directed multigraph with one
// node per distinct account identifier and one edge per transaction. Input
// order does not matter; nothing is deduplicated. Self-transfers are legal
// and produce self-loops.
func BuildGraph(txs []domain.Transaction) *Graph {
	g := &Graph{
		Out: make(map[string][]Edge, len(txs)),
		In:  make(map[string][]Edge, len(txs)),
	}

	seen := make(map[string]struct{}, 2*len(txs))
	addAccount := func(id string) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		g.Accounts = append(g.Accounts, id)
	}

	for _, tx := range txs {
		addAccount(tx.SenderID)
		addAccount(tx.ReceiverID)

		edge := Edge{
			TransactionID: tx.ID,
			From:          tx.SenderID,
			To:            tx.ReceiverID,
			Amount:        tx.Amount,
			Timestamp:     tx.Timestamp,
		}
		g.Edges = append(g.Edges, edge)
		g.Out[tx.SenderID] = append(g.Out[tx.SenderID], edge)
		g.In[tx.ReceiverID] = append(g.In[tx.ReceiverID], edge)
	}
	return g
}

// InDegree returns the number of incoming transfers for an account, counted
// with multiplicity.
func (g *Graph) InDegree(id string) int {
	return len(g.In[id])
}

// OutDegree returns the number of outgoing transfers for an account, counted
// with multiplicity.
func (g *Graph) OutDegree(id string) int {
	return len(g.Out[id])
}

// HasSelfLoop reports whether the account transfers to itself.
func (g *Graph) HasSelfLoop(id string) bool {
	for _, e := range g.Out[id] {
		if e.To == id {
			return true
		}
	}
	return false
}
