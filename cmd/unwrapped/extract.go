package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/runlab/unwrapped/internal/config"
	"github.com/runlab/unwrapped/internal/record"
	"github.com/runlab/unwrapped/internal/report"
	"github.com/runlab/unwrapped/internal/snapshot"
	"github.com/runlab/unwrapped/internal/store"
)

func runExtract(args []string) {
	cfg := mustLoadConfig("extract", args)

	snap := mustLoadSnapshot(cfg)
	if len(snap.AllRecords().Runs) == 0 {
		fmt.Printf("No runs found for %d. Nothing to report.\n", cfg.Year)
		return
	}

	fmt.Println("Computing metrics...")
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	rep := report.Build(snap, cfg.Year, rng, time.Now())

	if err := report.Write(rep, cfg.OutputPath); err != nil {
		log.Fatalf("writing report: %v", err)
	}
	fmt.Printf("Report saved to %s\n\n", cfg.OutputPath)
	printSummary(rep)
}

// mustLoadSnapshot loads the snapshot file when one is
// configured (and caches it in the snapshot store), otherwise
// falls back to the cached snapshot from a previous run.
func mustLoadSnapshot(cfg config.Config) record.Snapshot {
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("opening snapshot cache: %v", err)
	}
	defer db.Close()

	if cfg.SnapshotPath == "" {
		snap, err := db.Load()
		if err != nil {
			log.Fatalf(
				"no snapshot given and cache is empty "+
					"(use -snapshot): %v", err,
			)
		}
		fmt.Println("Using cached snapshot")
		return snap
	}

	snap, err := snapshot.Load(cfg.SnapshotPath)
	if err != nil {
		log.Fatalf("loading snapshot: %v", err)
	}
	if err := db.Save(snap); err != nil {
		log.Fatalf("caching snapshot: %v", err)
	}
	fmt.Printf("Loaded snapshot from %s\n", cfg.SnapshotPath)
	return snap
}

func mustLoadConfig(name string, args []string) config.Config {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(),
			"Usage: unwrapped %s [flags]\n\nFlags:\n", name)
		fs.PrintDefaults()
	}
	config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		log.Fatalf("parsing flags: %v", err)
	}

	cfg, err := config.Load(fs)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	return cfg
}

func printSummary(rep report.Report) {
	fmt.Println("Summary")
	fmt.Printf("  Total runs: %d\n", rep.CoreStats.TotalRuns)
	fmt.Printf("  Success rate: %v%%\n", rep.CoreStats.SuccessRate)
	fmt.Printf("  Unique users: %d\n", rep.CoreStats.UniqueUsers)
	fmt.Printf("  Unique pipelines: %d\n", rep.CoreStats.UniquePipelines)
	if len(rep.Projects) > 0 {
		fmt.Printf("  Projects: %d\n", len(rep.Projects))
	}
	fmt.Printf("  Awards generated: %d\n", len(rep.Awards))
}
