package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rakmakan/ai-resume/internal/store"
)

// showHistory prints the most recent recorded runs.
func showHistory(ctx context.Context, opts options) error {
	dbPath := opts.dbPath
	if dbPath == "" {
		dbPath = filepath.Join(opts.outputDir, "history.db")
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	searches, err := db.RecentSearches(ctx, 20)
	if err != nil {
		return err
	}
	total, err := db.SearchCount(ctx)
	if err != nil {
		return err
	}
	jobs, err := db.JobCount(ctx)
	if err != nil {
		return err
	}

	if total == 0 {
		fmt.Println("No recorded searches yet.")
		return nil
	}

	fmt.Printf("%d searches recorded, %d distinct jobs seen\n\n", total, jobs)
	for _, s := range searches {
		fmt.Printf("%s  %-30s  %-20s  %3d results  (%s)\n",
			s.StartedAt.Format("2006-01-02 15:04"), s.Title, s.Location, s.TotalResults, s.Mode)
		if s.JSONPath != "" {
			fmt.Printf("    %s\n", s.JSONPath)
		}
	}
	return nil
}
