package config

import (
	"errors"
	"strings"
	"testing"
)

const sampleYAML = `
defaults:
  workflow:
    state_file: .state.json
    continue_on_error: true
  job_search:
    location: Remote
    num_results: 20
    max_applicants: 15

configs:
  data_scientist_remote:
    name: Data Scientist (Remote)
    description: Remote DS roles
    job_search:
      title: Data Scientist
      num_results: 30
  ml_engineer_toronto:
    name: ML Engineer (Toronto)
    job_search:
      title: Machine Learning Engineer
      location: Toronto, ON, Canada
    workflow:
      continue_on_error: false
`

func TestParseMergePrecedence(t *testing.T) {
	p, err := Parse([]byte(sampleYAML), "data_scientist_remote")
	if err != nil {
		t.Fatal(err)
	}

	// Profile beats defaults block.
	if p.JobSearch.NumResults != 30 {
		t.Errorf("num_results = %d, want profile value 30", p.JobSearch.NumResults)
	}
	// Defaults block beats built-ins.
	if p.JobSearch.MaxApplicants != 15 {
		t.Errorf("max_applicants = %d, want defaults value 15", p.JobSearch.MaxApplicants)
	}
	if p.Workflow.StateFile != ".state.json" {
		t.Errorf("state_file = %q, want defaults value", p.Workflow.StateFile)
	}
	if !p.Workflow.ContinueOnError {
		t.Error("continue_on_error should come from defaults")
	}
	// Built-ins fill what nothing set.
	if !p.Workflow.SaveState {
		t.Error("save_state should default to true")
	}
	if !p.Workflow.Confirmations.AfterSearch {
		t.Error("confirmations.after_search should default to true")
	}
	if p.FolderCreation.ScriptPath != "create_job_folder.sh" {
		t.Errorf("folder_creation.script_path = %q, want built-in default", p.FolderCreation.ScriptPath)
	}
	// Untouched defaults reach the other profile too.
	if p.JobSearch.Location != "Remote" {
		t.Errorf("location = %q, want Remote", p.JobSearch.Location)
	}
}

func TestParseProfileOverridesDefaults(t *testing.T) {
	p, err := Parse([]byte(sampleYAML), "ml_engineer_toronto")
	if err != nil {
		t.Fatal(err)
	}
	if p.Workflow.ContinueOnError {
		t.Error("profile should override defaults.continue_on_error back to false")
	}
	if p.JobSearch.Location != "Toronto, ON, Canada" {
		t.Errorf("location = %q", p.JobSearch.Location)
	}
	if p.JobSearch.NumResults != 20 {
		t.Errorf("num_results = %d, want 20 from defaults", p.JobSearch.NumResults)
	}
}

func TestParseUnknownProfile(t *testing.T) {
	_, err := Parse([]byte(sampleYAML), "nope")
	if !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("err = %v, want ErrProfileNotFound", err)
	}
	// The message should name what is available.
	if !strings.Contains(err.Error(), "data_scientist_remote") || !strings.Contains(err.Error(), "ml_engineer_toronto") {
		t.Errorf("error should list available profiles: %v", err)
	}
}

func TestNormalizeAndValidate(t *testing.T) {
	p, err := Parse([]byte(sampleYAML), "data_scientist_remote")
	if err != nil {
		t.Fatal(err)
	}
	p.JobSearch.Filters.TitleAllow = []string{" Senior ", "senior", "", "Staff"}

	out, res := NormalizeAndValidate(p)
	if !res.OK() {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if got := out.JobSearch.Filters.TitleAllow; len(got) != 2 || got[0] != "Senior" || got[1] != "Staff" {
		t.Errorf("title_allow not trimmed/deduped: %v", got)
	}

	p.JobSearch.Title = ""
	p.JobSearch.NumResults = 0
	_, res = NormalizeAndValidate(p)
	if res.OK() {
		t.Fatal("expected validation errors")
	}
	if len(res.Errors) != 2 {
		t.Errorf("errors = %v, want title and num_results complaints", res.Errors)
	}
}

func TestValidateBadTimeWindow(t *testing.T) {
	p, err := Parse([]byte(sampleYAML), "data_scientist_remote")
	if err != nil {
		t.Fatal(err)
	}
	p.JobSearch.TimeWindow = "yesterday"
	if _, res := NormalizeAndValidate(p); res.OK() {
		t.Error("bad time window should fail validation")
	}
	p.JobSearch.TimeWindow = "r3600"
	if _, res := NormalizeAndValidate(p); !res.OK() {
		t.Errorf("raw rNNN code should pass: %v", res.Errors)
	}
}
