// Package config loads the workflow profile file: a YAML document with a
// defaults block and named profiles under configs. Merge precedence is
// built-in defaults < defaults block < named profile.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rakmakan/ai-resume/internal/domain"
)

var ErrProfileNotFound = errors.New("profile not found")

// File mirrors the top level of workflow.yml. Profiles stay as raw nodes so
// they can be decoded over an already-populated Profile, which is what gives
// the layered merge.
type File struct {
	Defaults yaml.Node            `yaml:"defaults"`
	Configs  map[string]yaml.Node `yaml:"configs"`
}

// Profile is one fully merged workflow configuration.
type Profile struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	Workflow  Workflow  `yaml:"workflow"`
	Logging   Logging   `yaml:"logging"`
	JobSearch JobSearch `yaml:"job_search"`

	FolderCreation FolderCreation `yaml:"folder_creation"`
	AITailoring    AITailoring    `yaml:"ai_tailoring"`
	Build          Build          `yaml:"build"`
}

type Workflow struct {
	StateFile       string        `yaml:"state_file"`
	SaveState       bool          `yaml:"save_state"`
	ContinueOnError bool          `yaml:"continue_on_error"`
	Confirmations   Confirmations `yaml:"confirmations"`
}

// Confirmations are the per-step pause-and-ask switches.
type Confirmations struct {
	AfterSearch         bool `yaml:"after_search"`
	AfterFolderCreation bool `yaml:"after_folder_creation"`
	AfterTailoring      bool `yaml:"after_tailoring"`
	AfterBuild          bool `yaml:"after_build"`
}

type Logging struct {
	// File may contain a {timestamp} placeholder. Empty means console only.
	File string `yaml:"file"`
}

type JobSearch struct {
	Enabled    bool   `yaml:"enabled"`
	ScriptPath string `yaml:"script_path"` // empty = use the jobsearch binary on PATH
	OutputDir  string `yaml:"output_dir"`

	Title      string `yaml:"title"`
	Location   string `yaml:"location"`
	NumResults int    `yaml:"num_results"`

	MaxApplicants int    `yaml:"max_applicants"`
	TimeWindow    string `yaml:"time_window"`
	Experience    *int   `yaml:"experience"`
	Details       bool   `yaml:"details"`

	Filters Filters `yaml:"filters"`
}

// Filters are extra title keyword lists layered on the built-in relevance
// check; the jobsearch binary receives them as flags.
type Filters struct {
	TitleAllow []string `yaml:"title_allow"`
	TitleBlock []string `yaml:"title_block"`
}

type FolderCreation struct {
	Enabled    bool   `yaml:"enabled"`
	ScriptPath string `yaml:"script_path"`
	OutputBase string `yaml:"output_base"`
}

type AITailoring struct {
	Enabled        bool   `yaml:"enabled"`
	ScriptPath     string `yaml:"script_path"`
	PromptTemplate string `yaml:"prompt_template"`
	// KeychainAPIKey injects the keychain-stored AI key into the collaborator's
	// environment under this variable name.
	KeychainAPIKey string `yaml:"keychain_api_key"`
}

type Build struct {
	Enabled    bool   `yaml:"enabled"`
	ScriptPath string `yaml:"script_path"`
}

// builtin is the baseline every profile starts from.
func builtin() Profile {
	return Profile{
		Workflow: Workflow{
			StateFile: ".workflow_state.json",
			SaveState: true,
			Confirmations: Confirmations{
				AfterSearch:         true,
				AfterFolderCreation: true,
				AfterTailoring:      true,
				AfterBuild:          true,
			},
		},
		JobSearch: JobSearch{
			Enabled:       true,
			OutputDir:     "job_search_output",
			Location:      "Remote",
			NumResults:    10,
			MaxApplicants: domain.DefaultMaxApplicants,
		},
		FolderCreation: FolderCreation{
			Enabled:    true,
			ScriptPath: "create_job_folder.sh",
			OutputBase: "resumes",
		},
		AITailoring: AITailoring{
			Enabled:    true,
			ScriptPath: "resume_ai_creator.py",
		},
		Build: Build{
			Enabled:    true,
			ScriptPath: "build.sh",
		},
	}
}

// Parse reads the file and materializes one named profile. Decoding a yaml
// node over a populated struct only touches keys present in the node, so
// defaults then profile gives the documented precedence.
func Parse(b []byte, profileName string) (Profile, error) {
	var file File
	if err := yaml.Unmarshal(b, &file); err != nil {
		return Profile{}, fmt.Errorf("parse workflow config: %w", err)
	}

	node, ok := file.Configs[profileName]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q (available: %s)",
			ErrProfileNotFound, profileName, strings.Join(profileNames(file), ", "))
	}

	p := builtin()
	if file.Defaults.Kind != 0 {
		if err := file.Defaults.Decode(&p); err != nil {
			return Profile{}, fmt.Errorf("decode defaults: %w", err)
		}
	}
	if err := node.Decode(&p); err != nil {
		return Profile{}, fmt.Errorf("decode profile %q: %w", profileName, err)
	}
	return p, nil
}

// Load is Parse from a file path.
func Load(path, profileName string) (Profile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read workflow config: %w", err)
	}
	return Parse(b, profileName)
}

// ProfileSummary is what list-configs shows per profile.
type ProfileSummary struct {
	Key         string
	Name        string
	Description string
	JobTitle    string
	Location    string
}

// List returns a summary for every profile in the file, sorted by key.
func List(path string) ([]ProfileSummary, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workflow config: %w", err)
	}
	var file File
	if err := yaml.Unmarshal(b, &file); err != nil {
		return nil, fmt.Errorf("parse workflow config: %w", err)
	}

	out := make([]ProfileSummary, 0, len(file.Configs))
	for _, key := range profileNames(file) {
		p, err := Parse(b, key)
		if err != nil {
			return nil, err
		}
		out = append(out, ProfileSummary{
			Key:         key,
			Name:        p.Name,
			Description: p.Description,
			JobTitle:    p.JobSearch.Title,
			Location:    p.JobSearch.Location,
		})
	}
	return out, nil
}

func profileNames(file File) []string {
	names := make([]string, 0, len(file.Configs))
	for name := range file.Configs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
