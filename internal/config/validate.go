package config

import (
	"fmt"
	"strings"

	"github.com/rakmakan/ai-resume/internal/domain"
)

type Validation struct {
	Errors   []string
	Warnings []string
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate trims list fields and checks the profile for the
// mistakes that would otherwise surface mid-run.
func NormalizeAndValidate(p Profile) (Profile, Validation) {
	out := p
	var res Validation

	out.JobSearch.Filters.TitleAllow = trimList(out.JobSearch.Filters.TitleAllow)
	out.JobSearch.Filters.TitleBlock = trimList(out.JobSearch.Filters.TitleBlock)

	if out.JobSearch.Enabled {
		if strings.TrimSpace(out.JobSearch.Title) == "" {
			res.addErr("job_search.title is required")
		}
		if out.JobSearch.NumResults <= 0 {
			res.addErr("job_search.num_results must be > 0")
		}
		if out.JobSearch.MaxApplicants <= 0 {
			res.addErr("job_search.max_applicants must be > 0")
		}
		if out.JobSearch.Experience != nil && *out.JobSearch.Experience < 0 {
			res.addErr("job_search.experience must be >= 0")
		}
		if out.JobSearch.TimeWindow != "" {
			if _, ok := domain.ResolveTimeWindow(out.JobSearch.TimeWindow); !ok {
				res.addErr("job_search.time_window %q is not a known window (24h, 48h, 1w, 2w or rNNN)", out.JobSearch.TimeWindow)
			}
		}
		if out.JobSearch.NumResults > 200 {
			res.addWarn("job_search.num_results is %d; large runs invite rate limiting", out.JobSearch.NumResults)
		}
	} else {
		// A run cannot proceed without step 1 output, so a disabled search
		// aborts unless the state file already has one.
		res.addWarn("job_search.enabled is false; the run will abort unless resuming from saved state")
	}

	if out.FolderCreation.Enabled && strings.TrimSpace(out.FolderCreation.ScriptPath) == "" {
		res.addErr("folder_creation.script_path is required when enabled")
	}
	if out.AITailoring.Enabled && strings.TrimSpace(out.AITailoring.ScriptPath) == "" {
		res.addErr("ai_tailoring.script_path is required when enabled")
	}
	if out.Build.Enabled && strings.TrimSpace(out.Build.ScriptPath) == "" {
		res.addErr("build.script_path is required when enabled")
	}

	if strings.TrimSpace(out.Workflow.StateFile) == "" {
		res.addErr("workflow.state_file cannot be empty")
	}
	if !out.Workflow.SaveState {
		res.addWarn("workflow.save_state is false; interrupted runs cannot be resumed")
	}

	return out, res
}

func trimList(xs []string) []string {
	seen := map[string]bool{}
	var ys []string
	for _, x := range xs {
		x = strings.TrimSpace(x)
		if x == "" {
			continue
		}
		key := strings.ToLower(x)
		if seen[key] {
			continue
		}
		seen[key] = true
		ys = append(ys, x)
	}
	return ys
}
