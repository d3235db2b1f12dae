// Package git reads version-control signals from a local repository.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/emiliopalmerini/devmetrics/internal/ports"
)

// Runner runs git with the given arguments and returns stdout.
type Runner interface {
	Run(ctx context.Context, args ...string) (string, error)
}

// ExecRunner runs the git binary. An empty Dir means the working directory.
type ExecRunner struct {
	Dir string
}

func (g ExecRunner) Run(ctx context.Context, args ...string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("git: no args")
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	if g.Dir != "" {
		cmd.Dir = g.Dir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("git %s failed: %s", strings.Join(args, " "), msg)
	}
	return stdout.String(), nil
}

// Source answers commit questions through a Runner.
type Source struct {
	runner Runner
}

var _ ports.VCSSource = (*Source)(nil)

func NewSource(runner Runner) *Source {
	return &Source{runner: runner}
}

// NewRepoSource runs git inside dir.
func NewRepoSource(dir string) *Source {
	return NewSource(ExecRunner{Dir: dir})
}

func (s *Source) CommitsSince(ctx context.Context, since time.Time) (int, error) {
	lines, err := s.log(ctx, since, "--format=%H")
	if err != nil {
		return 0, err
	}
	return len(lines), nil
}

func (s *Source) MergesSince(ctx context.Context, since time.Time) (int, error) {
	lines, err := s.log(ctx, since, "--merges", "--format=%H")
	if err != nil {
		return 0, err
	}
	return len(lines), nil
}

func (s *Source) SubjectsSince(ctx context.Context, since time.Time) ([]string, error) {
	return s.log(ctx, since, "--format=%s")
}

func (s *Source) log(ctx context.Context, since time.Time, args ...string) ([]string, error) {
	full := append([]string{"log", "--since=" + since.Format(time.RFC3339)}, args...)
	out, err := s.runner.Run(ctx, full...)
	if err != nil {
		return nil, err
	}

	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}
