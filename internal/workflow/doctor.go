package workflow

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rakmakan/ai-resume/internal/scrape/linkedin"
	"github.com/rakmakan/ai-resume/internal/secrets"
)

// Check is one preflight result. A nil Err with a Warn is degraded but not
// blocking.
type Check struct {
	Name string
	Err  error
	Warn string
}

// DoctorReport aggregates the preflight checks.
type DoctorReport struct {
	Checks []Check
}

// OK is true when no check failed hard.
func (r DoctorReport) OK() bool {
	for _, c := range r.Checks {
		if c.Err != nil {
			return false
		}
	}
	return true
}

// Doctor runs the preflight checks concurrently: endpoint reachability,
// collaborator scripts, output directories, state file, keychain.
func (o *Orchestrator) Doctor(ctx context.Context) DoctorReport {
	endpoints := []string{linkedin.ListingEndpoint, linkedin.FallbackEndpoint}

	checks := make([]Check, 0, 8)
	add := func(c Check) { checks = append(checks, c) }

	add(Check{Name: "endpoint " + endpoints[0]})
	add(Check{Name: "endpoint " + endpoints[1]})
	add(Check{Name: "collaborator scripts"})
	add(Check{Name: "output directories"})
	add(Check{Name: "state file"})
	add(Check{Name: "keychain"})

	g, gctx := errgroup.WithContext(ctx)

	for i, endpoint := range endpoints {
		g.Go(func() error {
			checks[i].Err = probeEndpoint(gctx, endpoint)
			return nil
		})
	}
	g.Go(func() error {
		checks[2].Err = o.checkScripts()
		return nil
	})
	g.Go(func() error {
		checks[3].Err = o.checkOutputDirs()
		return nil
	})
	g.Go(func() error {
		checks[4].Warn, checks[4].Err = o.checkStateFile()
		return nil
	})
	g.Go(func() error {
		if err := secrets.Probe(); err != nil {
			checks[5].Warn = fmt.Sprintf("keychain unavailable (%v); env fallbacks still work", err)
		}
		return nil
	})

	_ = g.Wait()
	return DoctorReport{Checks: checks}
}

// probeEndpoint only cares that the host answers; LinkedIn greeting a bare
// probe with 4xx is fine.
func probeEndpoint(ctx context.Context, rawURL string) error {
	hctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(hctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return err
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("unreachable: %w", err)
	}
	res.Body.Close()
	return nil
}

func (o *Orchestrator) checkScripts() error {
	type entry struct {
		name, path string
		enabled    bool
	}
	scripts := []entry{
		{"job_search", o.Profile.JobSearch.ScriptPath, o.Profile.JobSearch.Enabled},
		{"folder_creation", o.Profile.FolderCreation.ScriptPath, o.Profile.FolderCreation.Enabled},
		{"ai_tailoring", o.Profile.AITailoring.ScriptPath, o.Profile.AITailoring.Enabled},
		{"build", o.Profile.Build.ScriptPath, o.Profile.Build.Enabled},
	}

	for _, s := range scripts {
		if !s.enabled || s.path == "" {
			continue
		}
		info, err := os.Stat(o.resolve(s.path))
		if err != nil {
			return fmt.Errorf("%s script: %w", s.name, err)
		}
		if info.IsDir() {
			return fmt.Errorf("%s script %s is a directory", s.name, s.path)
		}
	}
	return nil
}

func (o *Orchestrator) checkOutputDirs() error {
	for _, dir := range []string{o.Profile.JobSearch.OutputDir, o.Profile.FolderCreation.OutputBase} {
		if dir == "" {
			continue
		}
		dir = o.resolve(dir)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
		probe := filepath.Join(dir, ".doctor_probe")
		if err := os.WriteFile(probe, nil, 0o644); err != nil {
			return fmt.Errorf("%s not writable: %w", dir, err)
		}
		os.Remove(probe)
	}
	return nil
}

func (o *Orchestrator) checkStateFile() (warn string, err error) {
	path := o.stateFile()
	if _, serr := os.Stat(path); os.IsNotExist(serr) {
		return "no state file yet (fresh run)", nil
	}
	if _, err := LoadState(path); err != nil {
		return "", err
	}
	return "", nil
}
