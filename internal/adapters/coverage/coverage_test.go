package coverage

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func assertFloatNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func noGo(t *testing.T) CommandRunner {
	return func(ctx context.Context, dir, name string, args ...string) (string, error) {
		t.Fatalf("unexpected command %s %v", name, args)
		return "", nil
	}
}

func TestReader_Istanbul(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, IstanbulSummary, `{"total":{"lines":{"total":200,"covered":167,"pct":83.5}}}`)
	writeFile(t, dir, CoberturaFile, `<coverage line-rate="0.5"></coverage>`)

	got, err := NewReader(dir).WithRunner(noGo(t)).Coverage(context.Background())
	if err != nil {
		t.Fatalf("Coverage: %v", err)
	}
	assertFloatNear(t, "coverage", got, 83.5)
}

func TestReader_Cobertura(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, CoberturaFile, `<?xml version="1.0" ?>
<coverage line-rate="0.725" branch-rate="0.5" version="1.9">
  <packages/>
</coverage>`)

	got, err := NewReader(dir).WithRunner(noGo(t)).Coverage(context.Background())
	if err != nil {
		t.Fatalf("Coverage: %v", err)
	}
	assertFloatNear(t, "coverage", got, 72.5)
}

func TestReader_FallsThroughBrokenReport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, IstanbulSummary, `{"total":{"lines":{"pct":"Unknown"}}}`)
	writeFile(t, dir, CoberturaFile, `<coverage line-rate="0.6"/>`)

	got, err := NewReader(dir).WithRunner(noGo(t)).Coverage(context.Background())
	if err != nil {
		t.Fatalf("Coverage: %v", err)
	}
	assertFloatNear(t, "coverage", got, 60)
}

func TestReader_GoCover(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, GoProfile, "mode: set\n")

	var gotArgs []string
	run := func(ctx context.Context, d, name string, args ...string) (string, error) {
		gotArgs = append([]string{name}, args...)
		return "pkg/a.go:10:\tFoo\t100.0%\ntotal:\t\t\t(statements)\t64.3%\n", nil
	}

	got, err := NewReader(dir).WithRunner(run).Coverage(context.Background())
	if err != nil {
		t.Fatalf("Coverage: %v", err)
	}
	assertFloatNear(t, "coverage", got, 64.3)
	if len(gotArgs) != 4 || gotArgs[0] != "go" || gotArgs[3] != "-func=coverage.out" {
		t.Errorf("command = %q", gotArgs)
	}
}

func TestReader_NoReport(t *testing.T) {
	got, err := NewReader(t.TempDir()).WithRunner(noGo(t)).Coverage(context.Background())
	if !errors.Is(err, ErrNoReport) {
		t.Errorf("err = %v, want ErrNoReport", err)
	}
	if got != 0 {
		t.Errorf("coverage = %v, want 0", got)
	}
}

func TestReader_Clamps(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, CoberturaFile, `<coverage line-rate="1.2"/>`)

	got, err := NewReader(dir).WithRunner(noGo(t)).Coverage(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	assertFloatNear(t, "coverage", got, 100)
}

func TestParseGoCoverTotal(t *testing.T) {
	tests := []struct {
		name    string
		out     string
		want    float64
		wantErr bool
	}{
		{"total", "a.go:1:\tX\t50.0%\ntotal:\t(statements)\t81.2%\n", 81.2, false},
		{"missing", "a.go:1:\tX\t50.0%\n", 0, true},
		{"garbage", "total:\t(statements)\tabc%\n", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseGoCoverTotal(tt.out)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			assertFloatNear(t, "total", got, tt.want)
		})
	}
}
