package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/emiliopalmerini/devmetrics/internal/adapters/filestore"
	"github.com/emiliopalmerini/devmetrics/internal/domain"
)

// testNow is the fixed clock used by every command under test.
var testNow = time.Date(2025, 1, 8, 12, 0, 0, 0, time.Local)

// testEnv isolates config and data directories for one test.
type testEnv struct {
	dataDir string
	repoDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	old := nowFunc
	nowFunc = func() time.Time { return testNow }
	t.Cleanup(func() { nowFunc = old })

	return &testEnv{
		dataDir: t.TempDir(),
		repoDir: t.TempDir(),
	}
}

// resetFlags restores every flag to its default, since cobra keeps flag
// state between executions of the same command tree.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// run executes the CLI with args against the test directories and
// returns stdout and stderr.
func (e *testEnv) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	var stdout, stderr bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	defer func() {
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	full := append([]string{"--data-dir", e.dataDir, "--repo", e.repoDir, "--log-level", "warn"}, args...)
	rootCmd.SetArgs(full)

	err := run(context.Background())
	return stdout.String(), stderr.String(), err
}

func (e *testEnv) seed(t *testing.T, records ...*domain.DailyMetricRecord) {
	t.Helper()

	store, err := filestore.NewRecordStore(e.dataDir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	for _, r := range records {
		if err := store.Put(context.Background(), r); err != nil {
			t.Fatalf("Failed to seed record %s: %v", r.Date, err)
		}
	}
}

func (e *testEnv) load(t *testing.T, date string) *domain.DailyMetricRecord {
	t.Helper()

	store, err := filestore.NewRecordStore(e.dataDir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	r, err := store.Get(context.Background(), date)
	if err != nil {
		t.Fatalf("Failed to load record %s: %v", date, err)
	}
	return r
}

func testRecord(date string, commits int, tokens int64, skills ...string) *domain.DailyMetricRecord {
	return &domain.DailyMetricRecord{
		Date:         date,
		Productivity: domain.Productivity{Commits: commits},
		Quality:      domain.Quality{TestCoverage: 80},
		Learning:     domain.Learning{SkillsInvoked: skills},
		Context:      domain.ContextUsage{TokensUsed: tokens},
	}
}

func assertEqual[T comparable](t *testing.T, name string, expected, actual T) {
	t.Helper()
	if expected != actual {
		t.Errorf("%s: expected %v, got %v", name, expected, actual)
	}
}

func assertContains(t *testing.T, name, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Errorf("%s: expected %q to contain %q", name, haystack, needle)
	}
}
