package workflow

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rakmakan/ai-resume/internal/report"
	"github.com/rakmakan/ai-resume/internal/secrets"
)

// step1JobSearch runs the search collaborator and locates its newest JSON
// report. Disabled search with no saved output aborts the run: every later
// step depends on it.
func (o *Orchestrator) step1JobSearch(ctx context.Context) (string, error) {
	if o.state.Completed(Step1JobSearch) {
		log.Printf("[workflow] step 1 (job search) already completed, skipping")
		return o.state.Data.JobSearchOutput, nil
	}

	cfg := o.Profile.JobSearch
	if !cfg.Enabled {
		log.Printf("[workflow] step 1 (job search) disabled")
		return o.state.Data.JobSearchOutput, nil
	}

	log.Printf("[workflow] STEP 1: job search (%s in %s, %d results)",
		cfg.Title, cfg.Location, cfg.NumResults)

	script := cfg.ScriptPath
	if script == "" {
		// No script configured: use the jobsearch binary from PATH.
		script = "jobsearch"
	}

	args := []string{
		"--title", cfg.Title,
		"--location", cfg.Location,
		"--num-results", strconv.Itoa(cfg.NumResults),
	}
	if cfg.MaxApplicants > 0 {
		args = append(args, "--max-applicants", strconv.Itoa(cfg.MaxApplicants))
	}
	if cfg.TimeWindow != "" {
		args = append(args, "--time-window", cfg.TimeWindow)
	}
	if cfg.Experience != nil {
		args = append(args, "--experience", strconv.Itoa(*cfg.Experience))
	}
	if cfg.Details {
		args = append(args, "--details")
	}
	if cfg.OutputDir != "" {
		args = append(args, "--output-dir", cfg.OutputDir)
	}
	if len(cfg.Filters.TitleAllow) > 0 {
		args = append(args, "--title-allow", strings.Join(cfg.Filters.TitleAllow, ","))
	}
	if len(cfg.Filters.TitleBlock) > 0 {
		args = append(args, "--title-block", strings.Join(cfg.Filters.TitleBlock, ","))
	}

	if err := o.runCommand(ctx, buildArgv(script, args...), nil); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrStepFailed, Step1JobSearch, err)
	}
	if o.DryRun {
		return "", nil
	}

	output, err := report.LatestJSON(o.resolve(cfg.OutputDir))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrStepFailed, Step1JobSearch, err)
	}
	log.Printf("[workflow] job search completed: %s", output)

	o.state.MarkCompleted(Step1JobSearch)
	o.state.Data.JobSearchOutput = output
	if err := o.saveState(); err != nil {
		return "", err
	}

	if doc, rerr := report.ReadDocument(output); rerr == nil {
		log.Printf("[workflow] found %d jobs", len(doc.Jobs))
	}
	if err := o.pauseAfter(o.Profile.Workflow.Confirmations.AfterSearch,
		"Continue to next step (Folder Creation)?"); err != nil {
		return "", err
	}
	return output, nil
}

// step2FolderCreation runs the interactive folder script, then collects the
// directories it just created under <output_base>/<job title>/.
func (o *Orchestrator) step2FolderCreation(ctx context.Context, searchOutput string) ([]string, error) {
	if o.state.Completed(Step2FolderCreation) {
		log.Printf("[workflow] step 2 (folder creation) already completed, skipping")
		return o.state.Data.CreatedFolders, nil
	}

	cfg := o.Profile.FolderCreation
	if !cfg.Enabled {
		log.Printf("[workflow] step 2 (folder creation) disabled, skipping")
		return nil, nil
	}

	log.Printf("[workflow] STEP 2: folder creation")
	log.Printf("[workflow] (you will be prompted to select jobs)")

	argv := buildArgv(cfg.ScriptPath, "--json_path", searchOutput)
	if err := o.runCommand(ctx, argv, nil); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrStepFailed, Step2FolderCreation, err)
	}
	if o.DryRun {
		return nil, nil
	}

	doc, err := report.ReadDocument(searchOutput)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrStepFailed, Step2FolderCreation, err)
	}
	jobTitle := doc.Metadata.JobTitle

	folders, err := o.freshFolders(filepath.Join(o.resolve(cfg.OutputBase), jobTitle))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrStepFailed, Step2FolderCreation, err)
	}
	if len(folders) == 0 {
		log.Printf("[workflow] warning: no folders created")
	} else {
		log.Printf("[workflow] created %d resume folders", len(folders))
		for _, f := range folders {
			log.Printf("[workflow]   - %s", filepath.Base(f))
		}
	}

	o.state.MarkCompleted(Step2FolderCreation)
	o.state.Data.CreatedFolders = folders
	o.state.Data.JobTitle = jobTitle
	if err := o.saveState(); err != nil {
		return nil, err
	}

	if err := o.pauseAfter(o.Profile.Workflow.Confirmations.AfterFolderCreation,
		"Continue to next step (AI Tailoring)?"); err != nil {
		return nil, err
	}
	return folders, nil
}

// freshFolders lists subdirectories of dir modified within the folder window.
// The folder script reports nothing machine-readable, so recency is the
// contract: new directories appear shortly after it exits.
func (o *Orchestrator) freshFolders(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	window := o.FolderWindow
	if window <= 0 {
		window = time.Minute
	}
	cutoff := time.Now().Add(-window)

	var out []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out, nil
}

// step3AITailoring runs the AI collaborator once per folder. Folder-level
// failures abort or continue per workflow.continue_on_error.
func (o *Orchestrator) step3AITailoring(ctx context.Context, folders []string) error {
	if o.state.Completed(Step3AITailoring) {
		log.Printf("[workflow] step 3 (AI tailoring) already completed, skipping")
		return nil
	}

	cfg := o.Profile.AITailoring
	if !cfg.Enabled {
		log.Printf("[workflow] step 3 (AI tailoring) disabled, skipping")
		return nil
	}

	log.Printf("[workflow] STEP 3: AI tailoring (%d folders)", len(folders))

	var extraEnv []string
	if cfg.KeychainAPIKey != "" {
		key, err := secrets.AIKey()
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrStepFailed, Step3AITailoring, err)
		}
		extraEnv = []string{cfg.KeychainAPIKey + "=" + key}
	}

	for i, folder := range folders {
		if err := ctx.Err(); err != nil {
			return err
		}
		log.Printf("[workflow] [%d/%d] tailoring %s", i+1, len(folders), filepath.Base(folder))

		args := []string{"--path", folder}
		if cfg.PromptTemplate != "" {
			args = append(args, "--template", cfg.PromptTemplate)
		}

		if err := o.runCommand(ctx, buildArgv(cfg.ScriptPath, args...), extraEnv); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("[workflow] tailoring failed for %s: %v", filepath.Base(folder), err)
			if !o.Profile.Workflow.ContinueOnError {
				return fmt.Errorf("%w: %s: %v", ErrStepFailed, Step3AITailoring, err)
			}
		}
	}
	if o.DryRun {
		return nil
	}

	o.state.MarkCompleted(Step3AITailoring)
	if err := o.saveState(); err != nil {
		return err
	}

	return o.pauseAfter(o.Profile.Workflow.Confirmations.AfterTailoring,
		"Continue to next step (Build PDFs)?")
}

// step4BuildPDFs compiles each folder's resume and checks the PDF landed at
// the conventional path.
func (o *Orchestrator) step4BuildPDFs(ctx context.Context, folders []string) error {
	if o.state.Completed(Step4BuildPDFs) {
		log.Printf("[workflow] step 4 (build PDFs) already completed, skipping")
		return nil
	}

	cfg := o.Profile.Build
	if !cfg.Enabled {
		log.Printf("[workflow] step 4 (build PDFs) disabled, skipping")
		return nil
	}

	log.Printf("[workflow] STEP 4: build PDFs (%d folders)", len(folders))
	jobTitle := o.state.Data.JobTitle

	for i, folder := range folders {
		if err := ctx.Err(); err != nil {
			return err
		}
		log.Printf("[workflow] [%d/%d] building %s", i+1, len(folders), filepath.Base(folder))

		argv := buildArgv(cfg.ScriptPath, "--title", jobTitle, "--path", filepath.Base(folder))
		if err := o.runCommand(ctx, argv, nil); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("[workflow] build failed for %s: %v", filepath.Base(folder), err)
			if !o.Profile.Workflow.ContinueOnError {
				return fmt.Errorf("%w: %s: %v", ErrStepFailed, Step4BuildPDFs, err)
			}
			continue
		}
		if o.DryRun {
			continue
		}

		pdf := filepath.Join(folder, "resume.pdf")
		if _, err := os.Stat(pdf); err == nil {
			log.Printf("[workflow] pdf created: %s", pdf)
		} else {
			log.Printf("[workflow] warning: pdf not found at %s", pdf)
		}
	}
	if o.DryRun {
		return nil
	}

	o.state.MarkCompleted(Step4BuildPDFs)
	if err := o.saveState(); err != nil {
		return err
	}

	if o.Profile.Workflow.Confirmations.AfterBuild {
		log.Printf("[workflow] workflow completed, %d resumes processed", len(folders))
		for _, folder := range folders {
			pdf := filepath.Join(folder, "resume.pdf")
			if _, err := os.Stat(pdf); err == nil {
				log.Printf("[workflow]   - %s", pdf)
			}
		}
	}
	return nil
}
