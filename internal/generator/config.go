package generator

// Config drives the synthetic ledger generator.
type Config struct {
	NumAccounts         int
	NumTransactions     int // background transfers, before pattern injection
	RingCount           int
	RingSize            int
	MuleCount           int
	SmurfsPerMule       int
	LayeringChainCount  int
	LayeringChainLength int
	Seed                int64
}

// DefaultConfig returns baseline settings producing a small demo ledger with
// one of each laundering pattern buried in background noise.
func DefaultConfig() Config {
	return Config{
		NumAccounts:         50,
		NumTransactions:     200,
		RingCount:           1,
		RingSize:            3,
		MuleCount:           1,
		SmurfsPerMule:       8,
		LayeringChainCount:  1,
		LayeringChainLength: 4,
		Seed:                42,
	}
}
