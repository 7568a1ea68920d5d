package store

import (
	"context"
	"fmt"
	"time"

	"github.com/rakmakan/ai-resume/internal/domain"
	"github.com/rakmakan/ai-resume/internal/scrape/util"
)

// Search is one recorded run.
type Search struct {
	ID            int64
	RunID         string
	StartedAt     time.Time
	Title         string
	Experience    string
	Location      string
	TimeWindow    string
	MaxApplicants int
	MaxResults    int
	Mode          string
	TotalResults  int
	CSVPath       string
	JSONPath      string
}

// RecordSearch inserts the run metadata and returns its id for job rows.
func (d *DB) RecordSearch(ctx context.Context, s Search) (int64, error) {
	res, err := d.Pool.ExecContext(ctx, `
INSERT INTO searches (run_id, started_at, title, experience, location, time_window,
  max_applicants, max_results, mode, total_results, csv_path, json_path)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		s.RunID, s.StartedAt.Format(time.RFC3339), s.Title, s.Experience, s.Location,
		s.TimeWindow, s.MaxApplicants, s.MaxResults, s.Mode, s.TotalResults,
		s.CSVPath, s.JSONPath,
	)
	if err != nil {
		return 0, fmt.Errorf("record search: %w", err)
	}
	return res.LastInsertId()
}

// SourceID gives the cross-run dedupe key for a record: the native posting
// id when the scrape captured one, else a hash of what identifies the job.
func SourceID(rec domain.JobRecord) string {
	if rec.JobID != "" {
		return "linkedin:" + rec.JobID
	}
	if rec.Link != "" && rec.Link != domain.NotAvailable {
		return "url:" + util.HashString(rec.Link)
	}
	return "tc:" + util.HashString(rec.Title+"|"+rec.Company)
}

// InsertJobIfNew adds the record unless its source id is already known.
// Reports whether the row is new.
func (d *DB) InsertJobIfNew(ctx context.Context, searchID int64, rec domain.JobRecord) (bool, error) {
	res, err := d.Pool.ExecContext(ctx, `
INSERT OR IGNORE INTO jobs (source_id, title, company, location, url, applicants, posting_date, search_id, first_seen)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		SourceID(rec), rec.Title, rec.Company, rec.Location, rec.Link,
		applicantsValue(rec), rec.PostingDate, searchID, time.Now().Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("insert job: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert job: %w", err)
	}
	return n > 0, nil
}

func applicantsValue(rec domain.JobRecord) any {
	if rec.Applicants == nil {
		return nil
	}
	return *rec.Applicants
}

// RecentSearches lists the newest runs first.
func (d *DB) RecentSearches(ctx context.Context, limit int) ([]Search, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := d.Pool.QueryContext(ctx, `
SELECT id, run_id, started_at, title, experience, location, time_window,
  max_applicants, max_results, mode, total_results, csv_path, json_path
FROM searches
ORDER BY started_at DESC, id DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent searches: %w", err)
	}
	defer rows.Close()

	var out []Search
	for rows.Next() {
		var s Search
		var started string
		if err := rows.Scan(&s.ID, &s.RunID, &started, &s.Title, &s.Experience,
			&s.Location, &s.TimeWindow, &s.MaxApplicants, &s.MaxResults,
			&s.Mode, &s.TotalResults, &s.CSVPath, &s.JSONPath); err != nil {
			return nil, fmt.Errorf("recent searches: %w", err)
		}
		s.StartedAt, _ = time.Parse(time.RFC3339, started)
		out = append(out, s)
	}
	return out, rows.Err()
}

// SearchCount is the number of recorded runs.
func (d *DB) SearchCount(ctx context.Context) (int, error) {
	var n int
	if err := d.Pool.QueryRowContext(ctx, `SELECT COUNT(*) FROM searches;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("search count: %w", err)
	}
	return n, nil
}

// JobCount is the number of distinct jobs ever seen.
func (d *DB) JobCount(ctx context.Context) (int, error) {
	var n int
	if err := d.Pool.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("job count: %w", err)
	}
	return n, nil
}
