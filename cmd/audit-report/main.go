package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/fireflyiii-tools/allegro-sync/internal/infrastructure/config"
	"github.com/fireflyiii-tools/allegro-sync/internal/infrastructure/storage"
)

func main() {
	var (
		dbPath     string
		configFile string
		limit      int
	)
	flag.StringVar(&dbPath, "db", "", "Path to database file (uses config if not specified)")
	flag.StringVar(&configFile, "config", "", "Configuration file path")
	flag.IntVar(&limit, "limit", 10, "Number of recent entries to show per section")
	flag.Parse()

	if dbPath == "" {
		cfg, err := config.Load(configFile)
		if err != nil {
			cfg = config.LoadFromEnv()
		}
		dbPath = cfg.Storage.DatabasePath
	}

	store, err := storage.NewStorage(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = store.Close() }()

	fmt.Println("RECONCILIATION AUDIT REPORT")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Database: %s\n", dbPath)
	fmt.Printf("Generated: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))

	printStats(store)
	printRuns(store, limit)
	printAttempts(store, limit)
}

func printStats(store *storage.Storage) {
	fmt.Println("OVERALL STATISTICS")
	fmt.Println(strings.Repeat("-", 40))

	stats, err := store.GetStats()
	if err != nil {
		log.Printf("Error getting stats: %v", err)
		return
	}

	appliedRate := 0.0
	if stats.TotalAttempts > 0 {
		appliedRate = float64(stats.AppliedCount) / float64(stats.TotalAttempts) * 100
	}

	fmt.Printf("Total Attempts: %d\n", stats.TotalAttempts)
	fmt.Printf("Applied: %d (%.1f%%)\n", stats.AppliedCount, appliedRate)
	fmt.Printf("No Match: %d\n", stats.NoMatchCount)
	fmt.Printf("Ambiguous: %d\n", stats.AmbiguousCount)
	fmt.Printf("Errors: %d\n", stats.ErrorCount)
	fmt.Printf("Total Amount Reconciled: %.2f\n\n", stats.TotalAppliedAmount)
}

func printRuns(store *storage.Storage, limit int) {
	fmt.Println("RECENT RUNS")
	fmt.Println(strings.Repeat("-", 40))

	runs, err := store.ListRuns(limit)
	if err != nil {
		log.Printf("Error getting runs: %v", err)
		return
	}

	fmt.Printf("%-5s %-20s %-10s %-6s %-8s %-8s %-8s\n",
		"ID", "Started", "Filter", "Mode", "Seen", "Applied", "Errors")
	fmt.Println(strings.Repeat("-", 70))

	for _, run := range runs {
		mode := "PROD"
		if run.DryRun {
			mode = "DRY"
		}

		fmt.Printf("%-5d %-20s %-10s %-6s %-8d %-8d %-8d\n",
			run.ID,
			run.StartedAt,
			run.FilterText,
			mode,
			run.TransactionsSeen,
			run.AppliedCount,
			run.ErrorCount,
		)
	}
	fmt.Println()
}

func printAttempts(store *storage.Storage, limit int) {
	fmt.Println("RECENT ATTEMPTS")
	fmt.Println(strings.Repeat("-", 40))

	attempts, err := store.ListAttempts(limit)
	if err != nil {
		log.Printf("Error getting attempts: %v", err)
		return
	}

	for _, a := range attempts {
		outcome := "no match"
		switch {
		case a.Applied:
			outcome = "applied"
		case a.ErrorMessage != "":
			outcome = "error"
		case a.CandidateCount > 1:
			outcome = fmt.Sprintf("ambiguous (%d candidates)", a.CandidateCount)
		case a.CandidateCount == 1 && a.DryRun:
			outcome = "matched (dry run)"
		}

		fmt.Printf("\nTransaction %s (%.2f on %s): %s\n",
			a.TransactionID,
			a.TransactionAmount,
			a.TransactionDate.Format("2006-01-02"),
			outcome,
		)

		if a.ErrorMessage != "" {
			fmt.Printf("   Error: %s\n", a.ErrorMessage)
		}
		for _, details := range a.CandidateDetails {
			for _, line := range strings.Split(details, "\n") {
				fmt.Printf("   %s\n", line)
			}
		}
	}
	fmt.Println()
}
