package workflow

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/rakmakan/ai-resume/internal/config"
)

var (
	// ErrPaused means the user declined to continue; the state file holds
	// everything needed to resume, and the process should exit cleanly.
	ErrPaused = errors.New("workflow paused by user")

	ErrStepFailed = errors.New("workflow step failed")

	// ErrNoSearchOutput aborts a run whose first step is disabled and whose
	// state has nothing to fall back on.
	ErrNoSearchOutput = errors.New("no job search output available")
)

// Orchestrator sequences the four steps for one profile. Everything runs
// sequentially; cancellation of ctx stops between (and inside) steps and
// leaves the state file intact.
type Orchestrator struct {
	Profile     config.Profile
	ProfileName string

	// BaseDir anchors relative script and output paths. Empty means the
	// current directory.
	BaseDir string

	// StateFile overrides the profile's workflow.state_file when set.
	StateFile string

	DryRun bool

	// Confirm asks the user a yes/no question. Nil means read stdin.
	Confirm func(prompt string, def bool) bool

	// FolderWindow is how fresh a directory must be to count as created by
	// step 2. Zero means one minute.
	FolderWindow time.Duration

	state *State
}

func (o *Orchestrator) stateFile() string {
	if o.StateFile != "" {
		return o.StateFile
	}
	return o.resolve(o.Profile.Workflow.StateFile)
}

// Run executes the workflow from resumeFrom ("", "beginning" or "stepN").
// Steps before resumeFrom are not invoked; their outputs come from the state
// file. Completed steps skip themselves regardless.
func (o *Orchestrator) Run(ctx context.Context, resumeFrom string) error {
	startAt, err := resumeIndex(resumeFrom)
	if err != nil {
		return err
	}

	lock, err := acquireLock(o.stateFile())
	if err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	o.state, err = o.loadState()
	if err != nil {
		return err
	}

	log.Printf("[workflow] starting run %s (profile %s)", o.state.RunID, o.ProfileName)
	if o.Profile.Description != "" {
		log.Printf("[workflow] %s", o.Profile.Description)
	}

	// Step 1: job search
	var searchOutput string
	if startAt <= 1 {
		searchOutput, err = o.step1JobSearch(ctx)
		if err != nil {
			return err
		}
	} else {
		searchOutput = o.state.Data.JobSearchOutput
	}
	if searchOutput == "" && !o.DryRun {
		return ErrNoSearchOutput
	}

	// Step 2: folder creation
	var folders []string
	if startAt <= 2 {
		folders, err = o.step2FolderCreation(ctx, searchOutput)
		if err != nil {
			return err
		}
	} else {
		folders = o.state.Data.CreatedFolders
	}
	if len(folders) == 0 {
		if o.DryRun {
			log.Printf("[workflow] dry-run: steps 3 and 4 would process the created folders")
			return nil
		}
		log.Printf("[workflow] no resume folders to process, stopping")
		return nil
	}

	// Step 3: AI tailoring
	if startAt <= 3 {
		if err := o.step3AITailoring(ctx, folders); err != nil {
			return err
		}
	}

	// Step 4: build PDFs
	if err := o.step4BuildPDFs(ctx, folders); err != nil {
		return err
	}

	log.Printf("[workflow] all done, %d resumes processed", len(folders))
	return nil
}

func (o *Orchestrator) loadState() (*State, error) {
	if !o.Profile.Workflow.SaveState {
		return &State{}, nil
	}
	return LoadState(o.stateFile())
}

func (o *Orchestrator) saveState() error {
	if !o.Profile.Workflow.SaveState || o.DryRun {
		return nil
	}
	return o.state.Save(o.stateFile())
}

func resumeIndex(resumeFrom string) (int, error) {
	switch resumeFrom {
	case "", "beginning", "step1":
		return 1, nil
	case "step2":
		return 2, nil
	case "step3":
		return 3, nil
	case "step4":
		return 4, nil
	}
	return 0, fmt.Errorf("unknown resume point %q (want step1..step4)", resumeFrom)
}

// pauseAfter asks the per-step confirmation when configured. A decline saves
// nothing further and surfaces ErrPaused.
func (o *Orchestrator) pauseAfter(enabled bool, prompt string) error {
	if !enabled || o.DryRun {
		return nil
	}
	if !o.confirm(prompt, true) {
		log.Printf("[workflow] paused; resume with: workflow -config %s -resume", o.ProfileName)
		return ErrPaused
	}
	return nil
}

func (o *Orchestrator) confirm(prompt string, def bool) bool {
	if o.Confirm != nil {
		return o.Confirm(prompt, def)
	}
	return stdinConfirm(prompt, def)
}

func stdinConfirm(prompt string, def bool) bool {
	choices := "[Y/n]"
	if !def {
		choices = "[y/N]"
	}
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Printf("\n%s %s: ", prompt, choices)
		line, err := reader.ReadString('\n')
		if err != nil {
			return def
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "":
			return def
		case "y", "yes":
			return true
		case "n", "no":
			return false
		}
		fmt.Println("Please enter 'y' or 'n'")
	}
}
