package workflow

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	s, err := LoadState(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.RunID == "" {
		t.Error("fresh state should get a run id")
	}

	s.MarkCompleted(Step1JobSearch)
	s.MarkCompleted(Step1JobSearch) // at most once
	s.Data.JobSearchOutput = "/tmp/out.json"
	if err := s.Save(path); err != nil {
		t.Fatal(err)
	}

	got, err := LoadState(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.CompletedSteps) != 1 || got.CompletedSteps[0] != Step1JobSearch {
		t.Errorf("completed steps = %v", got.CompletedSteps)
	}
	if got.Data.JobSearchOutput != "/tmp/out.json" {
		t.Errorf("data = %+v", got.Data)
	}
	if got.RunID != s.RunID {
		t.Errorf("run id changed: %q != %q", got.RunID, s.RunID)
	}
	if got.UpdatedAt == "" {
		t.Error("updated_at not stamped")
	}
}

func TestLoadStateRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadState(path); err == nil {
		t.Fatal("corrupt state file should fail to load")
	}
}
