// Package coverage reads the line coverage percentage of a project from
// the first known report format present in its directory.
package coverage

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/emiliopalmerini/devmetrics/internal/ports"
)

// ErrNoReport is returned when no reader found a usable report.
var ErrNoReport = errors.New("no coverage report found")

// Report file locations, relative to the project directory.
const (
	IstanbulSummary = "coverage/coverage-summary.json"
	CoberturaFile   = "coverage.xml"
	GoProfile       = "coverage.out"
)

// CommandRunner runs an external command in dir and returns stdout.
type CommandRunner func(ctx context.Context, dir, name string, args ...string) (string, error)

func execRunner(ctx context.Context, dir, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("%s %s failed: %s", name, strings.Join(args, " "), msg)
	}
	return stdout.String(), nil
}

// Reader tries each format in priority order: Istanbul summary, Cobertura
// XML, then the Go cover tool. The first one that yields a value wins.
type Reader struct {
	dir string
	run CommandRunner
}

var _ ports.CoverageReader = (*Reader)(nil)

func NewReader(dir string) *Reader {
	return &Reader{dir: dir, run: execRunner}
}

// WithRunner replaces how the Go cover tool is invoked.
func (r *Reader) WithRunner(run CommandRunner) *Reader {
	r.run = run
	return r
}

func (r *Reader) Coverage(ctx context.Context) (float64, error) {
	readers := []struct {
		name string
		read func(context.Context) (float64, error)
	}{
		{"istanbul", r.istanbul},
		{"cobertura", r.cobertura},
		{"go", r.goCover},
	}

	var errs []error
	for _, rd := range readers {
		pct, err := rd.read(ctx)
		if err == nil {
			return clamp(pct), nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("%s: %w", rd.name, err))
		}
	}
	if len(errs) > 0 {
		return 0, fmt.Errorf("%w: %w", ErrNoReport, errors.Join(errs...))
	}
	return 0, ErrNoReport
}

type istanbulSummary struct {
	Total struct {
		Lines struct {
			Pct float64 `json:"pct"`
		} `json:"lines"`
	} `json:"total"`
}

func (r *Reader) istanbul(ctx context.Context) (float64, error) {
	data, err := os.ReadFile(filepath.Join(r.dir, IstanbulSummary))
	if err != nil {
		return 0, err
	}
	var s istanbulSummary
	if err := json.Unmarshal(data, &s); err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", IstanbulSummary, err)
	}
	return s.Total.Lines.Pct, nil
}

type coberturaRoot struct {
	XMLName  xml.Name `xml:"coverage"`
	LineRate *float64 `xml:"line-rate,attr"`
}

func (r *Reader) cobertura(ctx context.Context) (float64, error) {
	data, err := os.ReadFile(filepath.Join(r.dir, CoberturaFile))
	if err != nil {
		return 0, err
	}
	var root coberturaRoot
	if err := xml.Unmarshal(data, &root); err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", CoberturaFile, err)
	}
	if root.LineRate == nil {
		return 0, fmt.Errorf("%s has no line-rate", CoberturaFile)
	}
	return *root.LineRate * 100, nil
}

func (r *Reader) goCover(ctx context.Context) (float64, error) {
	if _, err := os.Stat(filepath.Join(r.dir, GoProfile)); err != nil {
		return 0, err
	}
	out, err := r.run(ctx, r.dir, "go", "tool", "cover", "-func="+GoProfile)
	if err != nil {
		return 0, err
	}
	return ParseGoCoverTotal(out)
}

// ParseGoCoverTotal extracts the percentage from the "total:" line of
// `go tool cover -func` output.
func ParseGoCoverTotal(out string) (float64, error) {
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[0] != "total:" {
			continue
		}
		pct := strings.TrimSuffix(fields[len(fields)-1], "%")
		v, err := strconv.ParseFloat(pct, 64)
		if err != nil {
			return 0, fmt.Errorf("bad total percentage %q: %w", fields[len(fields)-1], err)
		}
		return v, nil
	}
	return 0, fmt.Errorf("no total line in cover output")
}

func clamp(pct float64) float64 {
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return pct
}
