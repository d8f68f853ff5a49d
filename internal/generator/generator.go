package generator

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/vanshika/ringtrace/backend/internal/domain"
)

// Dataset contains the generated ledger plus a manifest of which accounts
// carry each injected pattern, so demos can verify detection output.
type Dataset struct {
	Transactions     []domain.Transaction `json:"transactions"`
	Mules            []string             `json:"mules"`
	RingAccounts     [][]string           `json:"ring_accounts"`
	LayeringAccounts [][]string           `json:"layering_accounts"`
}

// Generator produces a synthetic transaction ledger: random background
// transfers with smurfing fan-ins, transfer rings and layering chains
// injected on top.
type Generator struct {
	cfg  Config
	rand *rand.Rand
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	defaults := DefaultConfig()
	if cfg.NumAccounts <= 0 {
		cfg.NumAccounts = defaults.NumAccounts
	}
	if cfg.NumTransactions < 0 {
		cfg.NumTransactions = defaults.NumTransactions
	}
	if cfg.RingSize < 2 {
		cfg.RingSize = defaults.RingSize
	}
	if cfg.SmurfsPerMule <= 0 {
		cfg.SmurfsPerMule = defaults.SmurfsPerMule
	}
	if cfg.LayeringChainLength < 3 {
		cfg.LayeringChainLength = defaults.LayeringChainLength
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &Generator{
		cfg:  cfg,
		rand: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Generate synthesises the ledger. It respects context cancellation.
func (g *Generator) Generate(ctx context.Context) (Dataset, error) {
	accounts := make([]string, g.cfg.NumAccounts)
	for i := range accounts {
		accounts[i] = fmt.Sprintf("ACC_%03d", i)
	}

	start := time.Now().UTC().Truncate(time.Second)
	var dataset Dataset

	// Background noise: random transfers spread over 24 hours.
	for i := 0; i < g.cfg.NumTransactions; i++ {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}

		sender := accounts[g.rand.Intn(len(accounts))]
		receiver := accounts[g.rand.Intn(len(accounts))]
		for receiver == sender {
			receiver = accounts[g.rand.Intn(len(accounts))]
		}

		dataset.Transactions = append(dataset.Transactions, domain.Transaction{
			ID:         fmt.Sprintf("TX_%05d", i),
			SenderID:   sender,
			ReceiverID: receiver,
			Amount:     g.roundedAmount(10, 1000),
			Timestamp:  start.Add(time.Duration(g.rand.Intn(86400)) * time.Second),
		})
	}

	// Reserve pattern accounts up front so injected structures stay disjoint
	// from each other; background traffic may still touch them.
	pool := g.rand.Perm(len(accounts))
	next := 0
	take := func(n int) ([]string, error) {
		if next+n > len(pool) {
			return nil, fmt.Errorf("not enough accounts for injected patterns: need %d more of %d", next+n, len(accounts))
		}
		ids := make([]string, n)
		for i := 0; i < n; i++ {
			ids[i] = accounts[pool[next]]
			next++
		}
		return ids, nil
	}

	// Smurfing: many small transfers fan into a mule, which cashes out one
	// large transfer shortly after.
	for m := 0; m < g.cfg.MuleCount; m++ {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}

		ids, err := take(g.cfg.SmurfsPerMule + 2)
		if err != nil {
			return Dataset{}, err
		}
		mule, smurfs, cashoutTarget := ids[0], ids[1:g.cfg.SmurfsPerMule+1], ids[g.cfg.SmurfsPerMule+1]
		base := start.Add(2 * time.Hour).Add(time.Duration(m) * time.Hour)

		for i, smurf := range smurfs {
			dataset.Transactions = append(dataset.Transactions, domain.Transaction{
				ID:         fmt.Sprintf("TX_SMURF_%d_%d", m, i),
				SenderID:   smurf,
				ReceiverID: mule,
				Amount:     g.roundedAmount(900, 990), // just under a reporting threshold
				Timestamp:  base.Add(time.Duration(1+g.rand.Intn(10)) * time.Minute),
			})
		}
		dataset.Transactions = append(dataset.Transactions, domain.Transaction{
			ID:         fmt.Sprintf("TX_MULE_CASHOUT_%d", m),
			SenderID:   mule,
			ReceiverID: cashoutTarget,
			Amount:     7500,
			Timestamp:  base.Add(15 * time.Minute),
		})
		dataset.Mules = append(dataset.Mules, mule)
	}

	// Rings: circular transfers a few minutes apart.
	for r := 0; r < g.cfg.RingCount; r++ {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}

		members, err := take(g.cfg.RingSize)
		if err != nil {
			return Dataset{}, err
		}
		base := start.Add(4 * time.Hour).Add(time.Duration(r) * time.Hour)

		for i := range members {
			dataset.Transactions = append(dataset.Transactions, domain.Transaction{
				ID:         fmt.Sprintf("TX_RING_%d_%d", r, i),
				SenderID:   members[i],
				ReceiverID: members[(i+1)%len(members)],
				Amount:     5000,
				Timestamp:  base.Add(time.Duration(i*5) * time.Minute),
			})
		}
		dataset.RingAccounts = append(dataset.RingAccounts, members)
	}

	// Layering chains: funds hop account to account within minutes, shrinking
	// slightly at each hop.
	for c := 0; c < g.cfg.LayeringChainCount; c++ {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}

		chain, err := take(g.cfg.LayeringChainLength)
		if err != nil {
			return Dataset{}, err
		}
		base := start.Add(6 * time.Hour).Add(time.Duration(c) * time.Hour)
		amount := 4000.0

		for i := 0; i < len(chain)-1; i++ {
			dataset.Transactions = append(dataset.Transactions, domain.Transaction{
				ID:         fmt.Sprintf("TX_CHAIN_%d_%d", c, i),
				SenderID:   chain[i],
				ReceiverID: chain[i+1],
				Amount:     math.Round(amount*100) / 100,
				Timestamp:  base.Add(time.Duration(i*3) * time.Minute),
			})
			amount *= 0.98
		}
		dataset.LayeringAccounts = append(dataset.LayeringAccounts, chain)
	}

	sort.SliceStable(dataset.Transactions, func(i, j int) bool {
		a, b := dataset.Transactions[i], dataset.Transactions[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		return a.ID < b.ID
	})

	return dataset, nil
}

func (g *Generator) roundedAmount(min, max float64) float64 {
	return math.Round((min+g.rand.Float64()*(max-min))*100) / 100
}
