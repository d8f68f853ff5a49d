package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/vanshika/ringtrace/backend/internal/generator"
)

func main() {
	cfg := generator.DefaultConfig()
	var (
		accounts     = flag.Int("accounts", cfg.NumAccounts, "number of accounts in the ledger")
		transactions = flag.Int("transactions", cfg.NumTransactions, "number of background transactions")
		rings        = flag.Int("rings", cfg.RingCount, "number of transfer rings to inject")
		ringSize     = flag.Int("ring-size", cfg.RingSize, "accounts per injected ring")
		mules        = flag.Int("mules", cfg.MuleCount, "number of smurfing mules to inject")
		smurfs       = flag.Int("smurfs", cfg.SmurfsPerMule, "accounts fanning into each mule")
		chains       = flag.Int("chains", cfg.LayeringChainCount, "number of layering chains to inject")
		chainLength  = flag.Int("chain-length", cfg.LayeringChainLength, "accounts per layering chain")
		seed         = flag.Int64("seed", cfg.Seed, "random seed for deterministic generation")
		outputDir    = flag.String("output-dir", "data", "directory to write transactions.csv and manifest.json")
		writeStdout  = flag.Bool("stdout", false, "write the dataset as JSON to stdout instead of files")
	)
	flag.Parse()

	genCfg := generator.Config{
		NumAccounts:         *accounts,
		NumTransactions:     *transactions,
		RingCount:           *rings,
		RingSize:            *ringSize,
		MuleCount:           *mules,
		SmurfsPerMule:       *smurfs,
		LayeringChainCount:  *chains,
		LayeringChainLength: *chainLength,
		Seed:                *seed,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	gen := generator.New(genCfg)
	dataset, err := gen.Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		os.Exit(1)
	}

	if *writeStdout {
		if err := json.NewEncoder(os.Stdout).Encode(dataset); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write dataset to stdout: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := generator.WriteDataset(dataset, *outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write dataset: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "Generated %d transactions across %d accounts into %s\n",
		len(dataset.Transactions), *accounts, *outputDir)
}
