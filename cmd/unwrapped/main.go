package main

import (
	"fmt"
	"os"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = ""
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "extract":
			runExtract(os.Args[2:])
			return
		case "serve":
			runServe(os.Args[2:])
			return
		case "version", "--version", "-v":
			fmt.Printf("unwrapped %s (commit %s, built %s)\n",
				version, commit, buildDate)
			return
		case "help", "--help", "-h":
			printUsage()
			return
		}
	}

	runExtract(os.Args[1:])
}

func printUsage() {
	fmt.Printf(`unwrapped %s - year-in-review reports for pipeline runs

Aggregates a workspace snapshot (runs, pipelines, users,
artifacts, models, schedules, services) into a single
metrics.json: headline counters, time analytics, leaderboards,
awards, fun facts, and anonymized names.

Usage:
  unwrapped [flags]           Build the report (default command)
  unwrapped extract [flags]   Build the report (explicit)
  unwrapped serve [flags]     Serve the report over HTTP,
                              rebuilding on snapshot changes
  unwrapped version           Show version information
  unwrapped help              Show this help

Flags:
  -snapshot string    Path to the raw snapshot JSON; omit to
                      reuse the cached snapshot
  -out string         Output path (default "data/metrics.json")
  -year int           Year to report on (default: current year)
  -host string        Host to bind to, serve only (default "127.0.0.1")
  -port int           Port to listen on, serve only (default 8080)

Environment variables:
  UNWRAPPED_SNAPSHOT    Snapshot path
  UNWRAPPED_YEAR        Report year
  UNWRAPPED_DATA_DIR    Data directory (snapshot cache, config)

Data is stored in ~/.unwrapped/ by default.
`, version)
}
