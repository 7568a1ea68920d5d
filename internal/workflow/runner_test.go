package workflow

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rakmakan/ai-resume/internal/config"
)

// writeStub drops an executable shell script into dir. Each stub appends a
// line to invocations.log so tests can assert which step bodies ran.
func writeStub(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return name
}

const stubReport = `{"metadata":{"search_date":"2025-01-01 10:00:00","job_title":"Data Scientist","experience":"Any","location":"Remote","max_applicants":10,"total_results":1,"search_mode":"Basic"},"jobs":[{"title":"Data Scientist","company":"Acme"}]}`

// testOrchestrator wires a full profile onto shell stubs in a temp dir.
func testOrchestrator(t *testing.T) (*Orchestrator, string) {
	t.Helper()
	base := t.TempDir()

	search := writeStub(t, base, "search.sh",
		`mkdir -p job_search_output/2025-01-01
printf '%s' '`+stubReport+`' > job_search_output/2025-01-01/data_scientist_100000.json
echo "step1" >> invocations.log`)

	folders := writeStub(t, base, "folders.sh",
		`mkdir -p "resumes/Data Scientist/acme_data_scientist" "resumes/Data Scientist/globex_data_scientist"
echo "step2 $2" >> invocations.log`)

	tailor := writeStub(t, base, "tailor.sh", `echo "step3 $2" >> invocations.log`)
	build := writeStub(t, base, "build.sh", `echo "step4 $2 $4" >> invocations.log`)

	p, err := config.Parse([]byte(`
configs:
  test:
    job_search:
      title: Data Scientist
      script_path: `+search+`
    folder_creation:
      script_path: `+folders+`
    ai_tailoring:
      script_path: `+tailor+`
    build:
      script_path: `+build+`
    workflow:
      confirmations:
        after_search: false
        after_folder_creation: false
        after_tailoring: false
        after_build: false
`), "test")
	if err != nil {
		t.Fatal(err)
	}

	return &Orchestrator{
		Profile:      p,
		ProfileName:  "test",
		BaseDir:      base,
		FolderWindow: time.Hour,
	}, base
}

func invocations(t *testing.T, base string) []string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(base, "invocations.log"))
	if err != nil {
		t.Fatalf("no invocations recorded: %v", err)
	}
	return strings.Split(strings.TrimSpace(string(b)), "\n")
}

func countPrefix(lines []string, prefix string) int {
	n := 0
	for _, l := range lines {
		if strings.HasPrefix(l, prefix) {
			n++
		}
	}
	return n
}

func TestRunExecutesAllSteps(t *testing.T) {
	o, base := testOrchestrator(t)

	if err := o.Run(context.Background(), ""); err != nil {
		t.Fatal(err)
	}

	lines := invocations(t, base)
	if countPrefix(lines, "step1") != 1 || countPrefix(lines, "step2") != 1 {
		t.Errorf("steps 1/2 should run once: %v", lines)
	}
	// Two folders => two tailoring and two build invocations.
	if countPrefix(lines, "step3") != 2 || countPrefix(lines, "step4") != 2 {
		t.Errorf("steps 3/4 should run per folder: %v", lines)
	}

	state, err := LoadState(o.stateFile())
	if err != nil {
		t.Fatal(err)
	}
	if len(state.CompletedSteps) != 4 {
		t.Errorf("completed = %v", state.CompletedSteps)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	o, base := testOrchestrator(t)

	if err := o.Run(context.Background(), ""); err != nil {
		t.Fatal(err)
	}
	first := len(invocations(t, base))

	// Unmodified state file: the second run must invoke no step body.
	if err := o.Run(context.Background(), ""); err != nil {
		t.Fatal(err)
	}
	second := invocations(t, base)
	if len(second) != first {
		t.Errorf("second run executed step bodies: %v", second[first:])
	}
}

func TestResumeUsesRecordedFolders(t *testing.T) {
	o, base := testOrchestrator(t)

	folderA := filepath.Join(base, "a")
	folderB := filepath.Join(base, "b")
	for _, d := range []string{folderA, folderB} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}

	seed := &State{
		RunID:          "seeded",
		CompletedSteps: []string{Step1JobSearch, Step2FolderCreation},
		Data: StateData{
			JobSearchOutput: filepath.Join(base, "ignored.json"),
			CreatedFolders:  []string{folderA, folderB},
			JobTitle:        "Data Scientist",
		},
	}
	if err := seed.Save(o.stateFile()); err != nil {
		t.Fatal(err)
	}

	if err := o.Run(context.Background(), ""); err != nil {
		t.Fatal(err)
	}

	lines := invocations(t, base)
	if countPrefix(lines, "step1") != 0 || countPrefix(lines, "step2") != 0 {
		t.Errorf("completed steps re-ran: %v", lines)
	}
	for _, want := range []string{"step3 " + folderA, "step3 " + folderB} {
		found := false
		for _, l := range lines {
			if l == want {
				found = true
			}
		}
		if !found {
			t.Errorf("missing %q in %v", want, lines)
		}
	}
	if countPrefix(lines, "step3") != 2 || countPrefix(lines, "step4") != 2 {
		t.Errorf("steps 3/4 should use exactly the two recorded folders: %v", lines)
	}
}

func TestRunFailsFastWhenLocked(t *testing.T) {
	o, _ := testOrchestrator(t)

	lock, err := acquireLock(o.stateFile())
	if err != nil {
		t.Fatal(err)
	}
	defer lock.Unlock()

	if err := o.Run(context.Background(), ""); !errors.Is(err, ErrLocked) {
		t.Fatalf("err = %v, want ErrLocked", err)
	}
}

func TestDecliningConfirmationPauses(t *testing.T) {
	o, base := testOrchestrator(t)
	o.Profile.Workflow.Confirmations.AfterSearch = true
	o.Confirm = func(string, bool) bool { return false }

	err := o.Run(context.Background(), "")
	if !errors.Is(err, ErrPaused) {
		t.Fatalf("err = %v, want ErrPaused", err)
	}

	// Step 1 completed and is preserved for resumption.
	state, err := LoadState(o.stateFile())
	if err != nil {
		t.Fatal(err)
	}
	if !state.Completed(Step1JobSearch) {
		t.Error("step1 should be recorded before the pause")
	}
	if countPrefix(invocations(t, base), "step2") != 0 {
		t.Error("step2 must not run after a declined confirmation")
	}
}

func TestDisabledSearchAbortsFreshRun(t *testing.T) {
	o, _ := testOrchestrator(t)
	o.Profile.JobSearch.Enabled = false

	if err := o.Run(context.Background(), ""); !errors.Is(err, ErrNoSearchOutput) {
		t.Fatalf("err = %v, want ErrNoSearchOutput", err)
	}
}

func TestContinueOnErrorSkipsFailedFolder(t *testing.T) {
	o, base := testOrchestrator(t)
	o.Profile.Workflow.ContinueOnError = true

	// Tailoring fails for the first folder only.
	writeStub(t, base, "tailor.sh",
		`echo "step3 $2" >> invocations.log
case "$2" in *acme*) exit 1;; esac`)

	if err := o.Run(context.Background(), ""); err != nil {
		t.Fatal(err)
	}
	lines := invocations(t, base)
	if countPrefix(lines, "step3") != 2 {
		t.Errorf("both folders should be attempted: %v", lines)
	}
	if countPrefix(lines, "step4") != 2 {
		t.Errorf("build should still run: %v", lines)
	}
}

func TestStepFailureAbortsWithoutContinueOnError(t *testing.T) {
	o, base := testOrchestrator(t)

	writeStub(t, base, "tailor.sh", `echo "step3 $2" >> invocations.log; exit 1`)

	err := o.Run(context.Background(), "")
	if !errors.Is(err, ErrStepFailed) {
		t.Fatalf("err = %v, want ErrStepFailed", err)
	}
	if countPrefix(invocations(t, base), "step4") != 0 {
		t.Error("step4 must not run after an aborting failure")
	}
}
