// Package eventlog stores host events as JSON lines, one file per kind,
// and answers per-day questions about them for the daily collector.
package eventlog

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/emiliopalmerini/devmetrics/internal/domain"
	"github.com/emiliopalmerini/devmetrics/internal/jsonwire"
	"github.com/emiliopalmerini/devmetrics/internal/ports"
)

const (
	skillsFile   = "skills.jsonl"
	patternsFile = "patterns.jsonl"
	tokensFile   = "tokens.jsonl"

	// EventCompaction tags token log entries written before a compaction.
	EventCompaction = "compaction"
	// EventSessionEnd tags token log entries carrying a session's usage.
	EventSessionEnd = "session_end"
)

type skillEntry struct {
	TS    string `json:"ts"`
	Skill string `json:"skill"`
}

type patternEntry struct {
	TS      string `json:"ts"`
	Pattern string `json:"pattern"`
}

type tokenEntry struct {
	TS     string `json:"ts"`
	Tokens int64  `json:"tokens"`
	Event  string `json:"event,omitempty"`
}

// Log reads and appends the event logs in one directory.
type Log struct {
	dir string
}

var (
	_ ports.SkillLog      = (*Log)(nil)
	_ ports.PatternLog    = (*Log)(nil)
	_ ports.TokenLog      = (*Log)(nil)
	_ ports.EventRecorder = (*Log)(nil)
)

func New(dir string) *Log {
	return &Log{dir: dir}
}

// Dir is where the log files live.
func (l *Log) Dir() string {
	return l.dir
}

func (l *Log) SkillsOn(ctx context.Context, day time.Time) ([]string, error) {
	var skills []string
	err := l.scan(skillsFile, func(line string) {
		ts, ok := jsonwire.ExtractField(line, "ts")
		if !ok || !onDay(ts, day) {
			return
		}
		if name, ok := jsonwire.ExtractField(line, "skill"); ok && name != "" {
			skills = append(skills, name)
		}
	})
	if err != nil {
		return nil, err
	}
	return domain.UnionSorted(skills), nil
}

func (l *Log) PatternsOn(ctx context.Context, day time.Time) (int, error) {
	count := 0
	err := l.scan(patternsFile, func(line string) {
		ts, ok := jsonwire.ExtractField(line, "ts")
		if !ok || !onDay(ts, day) {
			return
		}
		if _, ok := jsonwire.ExtractField(line, "pattern"); ok {
			count++
		}
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (l *Log) UsageOn(ctx context.Context, day time.Time) (ports.TokenUsage, error) {
	var usage ports.TokenUsage
	err := l.scan(tokensFile, func(line string) {
		var e tokenEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			return
		}
		if !onDay(e.TS, day) {
			return
		}
		if e.Tokens > 0 {
			usage.Tokens += e.Tokens
		}
		if e.Event == EventCompaction {
			usage.Compactions++
		}
	})
	if err != nil {
		return ports.TokenUsage{}, err
	}
	return usage, nil
}

func (l *Log) RecordSkill(ctx context.Context, at time.Time, skill string) error {
	return l.append(skillsFile, skillEntry{TS: at.Format(time.RFC3339), Skill: skill})
}

func (l *Log) RecordPattern(ctx context.Context, at time.Time, pattern string) error {
	return l.append(patternsFile, patternEntry{TS: at.Format(time.RFC3339), Pattern: pattern})
}

func (l *Log) RecordTokens(ctx context.Context, at time.Time, tokens int64, event string) error {
	return l.append(tokensFile, tokenEntry{TS: at.Format(time.RFC3339), Tokens: tokens, Event: event})
}

// scan calls fn for every non-empty line of the named file. A missing file
// is reported as an error wrapping os.ErrNotExist.
func (l *Log) scan(name string, fn func(line string)) error {
	path := filepath.Join(l.dir, name)
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer func() { _ = file.Close() }()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		fn(line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading %s: %w", name, err)
	}
	return nil
}

func (l *Log) append(name string, entry any) error {
	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode log entry: %w", err)
	}
	line = append(line, '\n')

	file, err := os.OpenFile(filepath.Join(l.dir, name), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer func() { _ = file.Close() }()

	if _, err := file.Write(line); err != nil {
		return fmt.Errorf("failed to append to %s: %w", name, err)
	}
	return nil
}

// onDay reports whether an RFC3339 timestamp falls on day's calendar date
// in day's location.
func onDay(ts string, day time.Time) bool {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return false
	}
	return domain.FormatDate(t.In(day.Location())) == domain.FormatDate(day)
}
