package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/kavya/transintelliflow/backend/internal/dispatcher"
	"github.com/kavya/transintelliflow/backend/internal/domain"
	"github.com/kavya/transintelliflow/backend/internal/generator"
	"github.com/kavya/transintelliflow/backend/internal/scoring"
)

func main() {
	genCfg := generator.DefaultConfig()
	var (
		batchSize   = flag.Int("batch-size", genCfg.BatchSize, "number of transaction requests to generate")
		targetRate  = flag.Float64("target-rate", genCfg.TargetRate, "target fraud ratio; 0 draws one per run")
		seed        = flag.Int64("seed", genCfg.Seed, "random seed for deterministic generation")
		concurrency = flag.Int("concurrency", 5, "maximum in-flight scoring calls")
		scoringURL  = flag.String("scoring-url", "", "scoring service base URL; empty uses the local rule scorer")
		apiKey      = flag.String("api-key", "", "scoring service API key")
		outputDir   = flag.String("output-dir", "", "directory to write requests.json and records.json")
		verbose     = flag.Bool("verbose", false, "log per-item dispatch progress")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	scorer, err := buildScorer(logger, *scoringURL, *apiKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create scorer: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	gen := generator.New(generator.Config{
		BatchSize:  *batchSize,
		TargetRate: *targetRate,
		Seed:       *seed,
	})
	batch, err := gen.Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		os.Exit(1)
	}

	d := dispatcher.New(scorer, *concurrency)
	if *verbose {
		d.OnProgress = func(completed, total int) {
			logger.Info("dispatch progress", "completed", completed, "total", total)
		}
	}

	started := time.Now()
	records, err := d.Dispatch(ctx, batch.Requests)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dispatch failed: %v\n", err)
		os.Exit(1)
	}
	elapsed := time.Since(started)

	succeeded, failed, flaggedFraud := 0, 0, 0
	for i := range records {
		switch records[i].Status {
		case domain.DispatchSuccess:
			succeeded++
			if records[i].Result.PredictedLabel == domain.LabelFraud {
				flaggedFraud++
			}
		case domain.DispatchError:
			failed++
		}
	}

	if *outputDir != "" {
		artifacts := generator.RunArtifacts{Requests: batch.Requests, Records: records}
		if err := generator.WriteArtifacts(artifacts, *outputDir); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write artifacts: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Fprintf(os.Stdout,
		"Dispatched %d requests in %s: %d succeeded, %d failed; generated fraud %d (rate %.4f), model flagged %d\n",
		len(records), elapsed.Round(time.Millisecond), succeeded, failed,
		batch.FraudCount, batch.TargetRate, flaggedFraud)
}

func buildScorer(logger *slog.Logger, url, apiKey string) (scoring.Client, error) {
	if url == "" {
		return scoring.NewRuleScorer(), nil
	}
	return scoring.NewHTTPClient(logger, scoring.Options{
		BaseURL: url,
		APIKey:  apiKey,
	})
}
