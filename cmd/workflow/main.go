// Command workflow orchestrates the four-step resume pipeline described by a
// YAML profile: job search, folder creation, AI tailoring, PDF build. State
// is checkpointed to JSON so an interrupted or paused run can resume.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/rakmakan/ai-resume/internal/config"
	"github.com/rakmakan/ai-resume/internal/secrets"
	"github.com/rakmakan/ai-resume/internal/workflow"
)

func main() {
	log.SetFlags(log.Ltime)
	_ = godotenv.Load()

	var (
		profileName = flag.String("config", "", "profile name from the workflow config file")
		configFile  = flag.String("file", "workflow.yml", "workflow config file")
		listConfigs = flag.Bool("list-configs", false, "list available profiles and exit")
		resume      = flag.Bool("resume", false, "resume from the saved state file")
		resumeFrom  = flag.String("resume-from", "", "resume from a specific step (step1..step4)")
		dryRun      = flag.Bool("dry-run", false, "print collaborator commands without running them")
		doctor      = flag.Bool("doctor", false, "run preflight checks and exit")
		setAIKey    = flag.Bool("set-ai-key", false, "store the AI-tool API key in the OS keychain and exit")
		stateFile   = flag.String("state", "", "override the profile's state file path")
	)
	flag.Parse()

	if *setAIKey {
		if err := storeAIKey(); err != nil {
			log.Fatalf("[workflow] %v", err)
		}
		return
	}

	if *listConfigs {
		if err := printConfigs(*configFile); err != nil {
			log.Fatalf("[workflow] %v", err)
		}
		return
	}

	if *profileName == "" {
		fmt.Fprintln(os.Stderr, "error: -config is required (or use -list-configs)")
		flag.Usage()
		os.Exit(2)
	}

	profile, err := config.Load(*configFile, *profileName)
	if err != nil {
		log.Fatalf("[workflow] %v", err)
	}
	profile, validation := config.NormalizeAndValidate(profile)
	for _, w := range validation.Warnings {
		log.Printf("[workflow] warning: %s", w)
	}
	if !validation.OK() {
		for _, e := range validation.Errors {
			log.Printf("[workflow] config error: %s", e)
		}
		os.Exit(1)
	}

	closeLog, err := setupLogFile(profile.Logging)
	if err != nil {
		log.Fatalf("[workflow] %v", err)
	}
	defer closeLog()

	o := &workflow.Orchestrator{
		Profile:     profile,
		ProfileName: *profileName,
		StateFile:   *stateFile,
		DryRun:      *dryRun,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *doctor {
		os.Exit(runDoctor(ctx, o))
	}

	from := *resumeFrom
	if *resume {
		// Plain -resume relies on the completed-steps skipping.
		from = ""
	}

	switch err := o.Run(ctx, from); {
	case err == nil:
	case errors.Is(err, workflow.ErrPaused):
		os.Exit(0)
	case errors.Is(err, context.Canceled), ctx.Err() != nil:
		log.Printf("[workflow] interrupted; state preserved, resume with -config %s -resume", *profileName)
		os.Exit(1)
	default:
		log.Printf("[workflow] failed: %v", err)
		os.Exit(1)
	}
}

// setupLogFile tees log output into the configured file, substituting the
// {timestamp} placeholder.
func setupLogFile(cfg config.Logging) (func(), error) {
	if cfg.File == "" {
		return func() {}, nil
	}

	path := strings.ReplaceAll(cfg.File, "{timestamp}", time.Now().Format("20060102_150405"))
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(io.MultiWriter(os.Stderr, f))
	return func() { _ = f.Close() }, nil
}

func printConfigs(path string) error {
	summaries, err := config.List(path)
	if err != nil {
		return err
	}
	fmt.Println("Available configurations:")
	for _, s := range summaries {
		fmt.Printf("\n  %s\n", s.Key)
		if s.Name != "" {
			fmt.Printf("    Name: %s\n", s.Name)
		}
		if s.Description != "" {
			fmt.Printf("    Description: %s\n", s.Description)
		}
		if s.JobTitle != "" {
			fmt.Printf("    Job: %s in %s\n", s.JobTitle, s.Location)
		}
	}
	fmt.Printf("\nUsage: workflow -config <name>\n")
	return nil
}

func runDoctor(ctx context.Context, o *workflow.Orchestrator) int {
	rep := o.Doctor(ctx)
	for _, c := range rep.Checks {
		switch {
		case c.Err != nil:
			fmt.Printf("FAIL  %s: %v\n", c.Name, c.Err)
		case c.Warn != "":
			fmt.Printf("warn  %s: %s\n", c.Name, c.Warn)
		default:
			fmt.Printf("ok    %s\n", c.Name)
		}
	}
	if !rep.OK() {
		return 1
	}
	return 0
}

func storeAIKey() error {
	fmt.Print("AI API key: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("read key: %w", err)
	}
	if err := secrets.SetAIKey(strings.TrimSpace(line)); err != nil {
		return err
	}
	log.Printf("[workflow] key stored in keychain")
	return nil
}
