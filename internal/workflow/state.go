// Package workflow runs the four-step resume pipeline: job search, folder
// creation, AI tailoring, PDF build. Steps are external collaborators invoked
// as subprocesses; a JSON state file makes the sequence resumable.
package workflow

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Step names as recorded in the state file.
const (
	Step1JobSearch      = "step1_job_search"
	Step2FolderCreation = "step2_folder_creation"
	Step3AITailoring    = "step3_ai_tailoring"
	Step4BuildPDFs      = "step4_build_pdfs"
)

// StateData carries outputs between steps.
type StateData struct {
	JobSearchOutput string   `json:"job_search_output,omitempty"`
	CreatedFolders  []string `json:"created_folders,omitempty"`
	JobTitle        string   `json:"job_title,omitempty"`
}

// State is the persisted checkpoint. A step name appears in CompletedSteps
// at most once.
type State struct {
	RunID          string    `json:"run_id,omitempty"`
	CompletedSteps []string  `json:"completed_steps"`
	Data           StateData `json:"data"`
	UpdatedAt      string    `json:"updated_at,omitempty"`
}

// LoadState reads the checkpoint, or starts a fresh one with a new run id
// when the file does not exist.
func LoadState(path string) (*State, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &State{RunID: uuid.NewString()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state %s: %w", path, err)
	}

	var s State
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse state %s: %w", path, err)
	}
	if s.RunID == "" {
		s.RunID = uuid.NewString()
	}
	return &s, nil
}

// Save writes the checkpoint atomically (tmp then rename) so an interrupt
// mid-write never corrupts it.
func (s *State) Save(path string) error {
	s.UpdatedAt = time.Now().Format(time.RFC3339)

	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	b = append(b, '\n')

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("save state: %w", err)
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// Completed reports whether step already ran to completion.
func (s *State) Completed(step string) bool {
	for _, name := range s.CompletedSteps {
		if name == step {
			return true
		}
	}
	return false
}

// MarkCompleted records step, keeping the at-most-once invariant.
func (s *State) MarkCompleted(step string) {
	if !s.Completed(step) {
		s.CompletedSteps = append(s.CompletedSteps, step)
	}
}
