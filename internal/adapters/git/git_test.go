package git

import (
	"context"
	"errors"
	"os/exec"
	"reflect"
	"strings"
	"testing"
	"time"
)

type fakeRunner struct {
	out   map[string]string
	err   error
	calls [][]string
}

func (f *fakeRunner) Run(ctx context.Context, args ...string) (string, error) {
	f.calls = append(f.calls, args)
	if f.err != nil {
		return "", f.err
	}
	return f.out[strings.Join(args[2:], " ")], nil
}

var midnight = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

func TestSource_Counts(t *testing.T) {
	runner := &fakeRunner{out: map[string]string{
		"--format=%H":          "a1\nb2\nc3\n",
		"--merges --format=%H": "c3\n",
		"--format=%s":          "feat: login\nfix typo\nMerge branch 'x'\n",
	}}
	src := NewSource(runner)
	ctx := context.Background()

	commits, err := src.CommitsSince(ctx, midnight)
	if err != nil || commits != 3 {
		t.Errorf("CommitsSince = %d, %v; want 3", commits, err)
	}
	merges, err := src.MergesSince(ctx, midnight)
	if err != nil || merges != 1 {
		t.Errorf("MergesSince = %d, %v; want 1", merges, err)
	}
	subjects, err := src.SubjectsSince(ctx, midnight)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"feat: login", "fix typo", "Merge branch 'x'"}
	if !reflect.DeepEqual(subjects, want) {
		t.Errorf("SubjectsSince = %q, want %q", subjects, want)
	}

	if got := runner.calls[0]; got[0] != "log" || got[1] != "--since=2026-10-19T00:00:00Z" {
		t.Errorf("first call = %q", got)
	}
}

func TestSource_EmptyLog(t *testing.T) {
	src := NewSource(&fakeRunner{out: map[string]string{}})
	n, err := src.CommitsSince(context.Background(), midnight)
	if err != nil || n != 0 {
		t.Errorf("CommitsSince = %d, %v; want 0", n, err)
	}
}

func TestSource_RunnerError(t *testing.T) {
	src := NewSource(&fakeRunner{err: errors.New("not a git repository")})
	if _, err := src.CommitsSince(context.Background(), midnight); err == nil {
		t.Error("expected runner error")
	}
}

func TestExecRunner_RealRepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(cmd.Environ(),
			"GIT_AUTHOR_NAME=t", "GIT_AUTHOR_EMAIL=t@example.com",
			"GIT_COMMITTER_NAME=t", "GIT_COMMITTER_EMAIL=t@example.com")
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}
	run("init", "-q")
	run("commit", "-q", "--allow-empty", "-m", "feat: first")
	run("commit", "-q", "--allow-empty", "-m", "chore: second")

	src := NewRepoSource(dir)
	since := time.Now().Add(-time.Hour)
	commits, err := src.CommitsSince(context.Background(), since)
	if err != nil {
		t.Fatalf("CommitsSince: %v", err)
	}
	if commits != 2 {
		t.Errorf("CommitsSince = %d, want 2", commits)
	}

	if _, err := (ExecRunner{Dir: dir}).Run(context.Background()); err == nil {
		t.Error("Run with no args should fail")
	}
}
