package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rakmakan/ai-resume/internal/domain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInsertJobDedupe(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	searchID, err := db.RecordSearch(ctx, Search{
		RunID:     "run-1",
		StartedAt: time.Now(),
		Title:     "Data Scientist",
		Mode:      "Basic",
	})
	if err != nil {
		t.Fatal(err)
	}

	rec := domain.JobRecord{
		Title:   "Data Scientist",
		Company: "Acme",
		Link:    "https://www.linkedin.com/jobs/view/12345",
		JobID:   "12345",
	}

	added, err := db.InsertJobIfNew(ctx, searchID, rec)
	if err != nil {
		t.Fatal(err)
	}
	if !added {
		t.Fatal("first insert should be new")
	}

	// Same posting id again, even from another run, is not new.
	secondID, err := db.RecordSearch(ctx, Search{RunID: "run-2", StartedAt: time.Now(), Title: "Data Scientist"})
	if err != nil {
		t.Fatal(err)
	}
	added, err = db.InsertJobIfNew(ctx, secondID, rec)
	if err != nil {
		t.Fatal(err)
	}
	if added {
		t.Fatal("second insert of same source_id should not be new")
	}

	n, err := db.JobCount(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("job count = %d, want 1", n)
	}
}

func TestSourceIDFallbacks(t *testing.T) {
	withID := domain.JobRecord{JobID: "99", Link: "https://x/jobs/view/99"}
	if got := SourceID(withID); got != "linkedin:99" {
		t.Errorf("SourceID = %q", got)
	}

	byURL := domain.JobRecord{Link: "https://example.com/posting"}
	byURL2 := domain.JobRecord{Link: "https://example.com/posting"}
	if SourceID(byURL) != SourceID(byURL2) {
		t.Error("same URL should hash to the same id")
	}

	byTitle := domain.JobRecord{Title: "Engineer", Company: "Acme", Link: domain.NotAvailable}
	if SourceID(byTitle) == SourceID(byURL) {
		t.Error("different identity should give different ids")
	}
}

func TestRecentSearchesOrderAndCount(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		_, err := db.RecordSearch(ctx, Search{
			RunID:     "run",
			StartedAt: base.Add(time.Duration(i) * time.Minute),
			Title:     "T",
			JSONPath:  "p" + string(rune('0'+i)),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	got, err := db.RecentSearches(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].JSONPath != "p2" {
		t.Errorf("newest first, got %q", got[0].JSONPath)
	}

	n, err := db.SearchCount(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}
}
