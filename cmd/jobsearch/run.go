package main

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/rakmakan/ai-resume/internal/domain"
	"github.com/rakmakan/ai-resume/internal/report"
	"github.com/rakmakan/ai-resume/internal/scrape/alertmail"
	"github.com/rakmakan/ai-resume/internal/store"
)

// runner holds everything one search pass needs; watch mode reuses it so the
// history database can separate new jobs from already-seen ones.
type runner struct {
	opts   options
	params domain.SearchParams

	passes int
}

func (r *runner) runOnce(ctx context.Context) error {
	start := time.Now()
	r.passes++

	var (
		records []domain.JobRecord
		runErr  error
	)
	searcher := newSearcher(ctx, r.opts)

	if r.opts.fromAlerts {
		cfg, err := alertmail.FromEnv()
		if err != nil {
			return err
		}
		raw, err := alertmail.Fetch(ctx, cfg)
		if err != nil {
			return err
		}
		records = searcher.Sift(ctx, raw, r.params)
	} else {
		records, runErr = searcher.Run(ctx, r.params)
	}

	// An interrupt still gets its partial results written below.
	if runErr != nil && len(records) == 0 {
		return runErr
	}

	now := time.Now()
	paths := report.OutputPaths(r.opts.outputDir, r.params.Title, now)
	res := report.Write(records, r.params, paths, now)
	if !res.OK() {
		log.Printf("[jobsearch] warning: some report files failed to save")
	}

	newCount := len(records)
	if !r.opts.noHistory {
		n, err := r.record(ctx, records, res, start)
		if err != nil {
			log.Printf("[jobsearch] history: %v", err)
		} else {
			newCount = n
		}
	}

	r.summarize(records, res, newCount, time.Since(start))
	return runErr
}

// record writes the run and its jobs into the history db and returns how
// many jobs were new across all recorded runs.
func (r *runner) record(ctx context.Context, records []domain.JobRecord, res report.Result, start time.Time) (int, error) {
	dbPath := r.opts.dbPath
	if dbPath == "" {
		dbPath = filepath.Join(r.opts.outputDir, "history.db")
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	searchID, err := db.RecordSearch(ctx, store.Search{
		RunID:         uuid.NewString(),
		StartedAt:     start,
		Title:         r.params.Title,
		Experience:    r.params.ExperienceLabel(),
		Location:      r.params.LocationLabel(),
		TimeWindow:    r.params.TimeWindow,
		MaxApplicants: r.params.MaxApplicants,
		MaxResults:    r.params.MaxResults,
		Mode:          r.params.Mode(),
		TotalResults:  len(records),
		CSVPath:       res.CSVPath,
		JSONPath:      res.JSONPath,
	})
	if err != nil {
		return 0, err
	}

	newCount := 0
	for _, rec := range records {
		added, err := db.InsertJobIfNew(ctx, searchID, rec)
		if err != nil {
			log.Printf("[store] %v", err)
			continue
		}
		if added {
			newCount++
		}
	}
	return newCount, nil
}

func (r *runner) summarize(records []domain.JobRecord, res report.Result, newCount int, elapsed time.Duration) {
	log.Printf("[jobsearch] %d jobs in %s", len(records), elapsed.Round(time.Second))
	if r.passes > 1 || r.opts.watch > 0 {
		log.Printf("[jobsearch] %d new since last run", newCount)
	}
	if res.CSVErr == nil {
		log.Printf("[jobsearch] csv:  %s", res.CSVPath)
	}
	if res.JSONErr == nil {
		log.Printf("[jobsearch] json: %s", res.JSONPath)
	}

	if !r.params.FetchDetails || len(records) == 0 || r.opts.quiet {
		return
	}

	fmt.Println("\nTop results:")
	for i, rec := range records {
		if i >= 5 {
			break
		}
		applicants := "unknown"
		if rec.Applicants != nil {
			applicants = strconv.Itoa(*rec.Applicants)
		}
		fmt.Printf("  %d. %s\n     %s | %s | %s applicants\n",
			i+1, rec.Title, rec.Company, rec.Location, applicants)
	}
}
