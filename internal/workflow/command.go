package workflow

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// buildArgv prepends the interpreter a collaborator script needs. Shell
// scripts go through bash, python scripts through python3, anything else is
// executed directly.
func buildArgv(script string, args ...string) []string {
	var argv []string
	switch filepath.Ext(script) {
	case ".sh":
		argv = []string{"bash", script}
	case ".py":
		argv = []string{"python3", script}
	default:
		argv = []string{script}
	}
	return append(argv, args...)
}

// runCommand executes one collaborator with the process's stdio attached;
// folder creation in particular prompts the user. extraEnv entries are
// KEY=value pairs appended to the inherited environment.
func (o *Orchestrator) runCommand(ctx context.Context, argv []string, extraEnv []string) error {
	display := strings.Join(argv, " ")
	if o.DryRun {
		log.Printf("[workflow] dry-run: %s", display)
		return nil
	}
	log.Printf("[workflow] running: %s", display)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = o.BaseDir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if len(extraEnv) > 0 {
		cmd.Env = append(os.Environ(), extraEnv...)
	}

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s: %w", argv[0], err)
	}
	return nil
}

// resolve anchors a relative path at the orchestrator's base directory.
func (o *Orchestrator) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || o.BaseDir == "" {
		return path
	}
	return filepath.Join(o.BaseDir, path)
}
