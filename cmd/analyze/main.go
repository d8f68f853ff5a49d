package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/vanshika/ringtrace/backend/internal/analysis"
	"github.com/vanshika/ringtrace/backend/internal/config"
	"github.com/vanshika/ringtrace/backend/internal/ingest"
	"github.com/vanshika/ringtrace/backend/internal/logging"
)

func main() {
	var (
		inputPath  = flag.String("input", "", "Path to the transaction CSV (defaults to stdin)")
		outputPath = flag.String("output", "", "Path to write the JSON output (defaults to stdout)")
		view       = flag.String("view", "result", "Output shape: result or report")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging).With("component", "analyze")

	if *view != "result" && *view != "report" {
		logger.Error("invalid view", "view", *view)
		os.Exit(1)
	}

	var in io.Reader = os.Stdin
	if *inputPath != "" {
		file, err := os.Open(*inputPath)
		if err != nil {
			logger.Error("failed to open input", "error", err, "path", *inputPath)
			os.Exit(1)
		}
		defer file.Close()
		in = file
	}

	txs, err := ingest.ReadBatch(in)
	if err != nil {
		logger.Error("failed to read transaction batch", "error", err)
		os.Exit(1)
	}

	analyzer := analysis.NewAnalyzer(analysis.Config{
		FanInThreshold: cfg.Detection.FanInThreshold,
		VelocityWindow: cfg.Detection.VelocityWindow,
		RiskThreshold:  cfg.Detection.RiskThreshold,
	}, logger)

	result := analyzer.Analyze(txs)

	var out io.Writer = os.Stdout
	if *outputPath != "" {
		file, err := os.Create(*outputPath)
		if err != nil {
			logger.Error("failed to create output", "error", err, "path", *outputPath)
			os.Exit(1)
		}
		defer file.Close()
		out = file
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")

	if *view == "report" {
		err = encoder.Encode(analysis.BuildReport(result))
	} else {
		err = encoder.Encode(result)
	}
	if err != nil {
		logger.Error("failed to encode output", "error", err)
		os.Exit(1)
	}

	logger.Info("analysis complete",
		"transactions", len(txs),
		"accounts", result.Summary.TotalAccountsAnalyzed,
		"flagged", result.Summary.SuspiciousAccountsFlagged,
		"rings", result.Summary.FraudRingsDetected,
	)
}
