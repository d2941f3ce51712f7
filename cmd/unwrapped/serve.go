package main

import (
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/runlab/unwrapped/internal/config"
	"github.com/runlab/unwrapped/internal/record"
	"github.com/runlab/unwrapped/internal/report"
	"github.com/runlab/unwrapped/internal/server"
	"github.com/runlab/unwrapped/internal/snapshot"
	"github.com/runlab/unwrapped/internal/store"
)

const watcherDebounce = 500 * time.Millisecond

func runServe(args []string) {
	cfg := mustLoadConfig("serve", args)

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("opening snapshot cache: %v", err)
	}
	defer db.Close()

	build := func() (report.Report, error) {
		snap, err := loadForServe(cfg, db)
		if err != nil {
			return report.Report{}, err
		}
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		return report.Build(snap, cfg.Year, rng, time.Now()), nil
	}

	srv, err := server.New(build)
	if err != nil {
		log.Fatalf("building report: %v", err)
	}

	if cfg.SnapshotPath != "" {
		watcher, err := server.NewWatcher(
			cfg.SnapshotPath, watcherDebounce, srv.OnSnapshotChange,
		)
		if err != nil {
			log.Printf("warning: snapshot watcher unavailable: %v", err)
		} else {
			watcher.Start()
			defer watcher.Stop()
		}
	}

	port := server.FindAvailablePort(cfg.Host, cfg.Port)
	if port != cfg.Port {
		fmt.Printf("Port %d in use, using %d\n", cfg.Port, port)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, port)
	fmt.Printf("unwrapped %s serving report at http://%s/api/v1/report\n",
		version, addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// loadForServe prefers the live snapshot file so watcher-driven
// rebuilds pick up edits; the cache is the fallback.
func loadForServe(cfg config.Config, db *store.DB) (record.Snapshot, error) {
	if cfg.SnapshotPath != "" {
		snap, err := snapshot.Load(cfg.SnapshotPath)
		if err != nil {
			return record.Snapshot{}, err
		}
		if err := db.Save(snap); err != nil {
			return record.Snapshot{}, err
		}
		return snap, nil
	}
	return db.Load()
}
