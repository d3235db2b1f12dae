// Package parser reads host session transcripts.
package parser

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/emiliopalmerini/devmetrics/internal/domain"
)

// TokenUsage is the token count of a transcript split by kind.
type TokenUsage struct {
	Input      int64
	Output     int64
	CacheRead  int64
	CacheWrite int64
}

// Total is every token the session pushed through the context window.
func (u TokenUsage) Total() int64 {
	return u.Input + u.Output + u.CacheRead + u.CacheWrite
}

func (u *TokenUsage) add(v *Usage) {
	if v == nil {
		return
	}
	u.Input += v.InputTokens
	u.Output += v.OutputTokens
	u.CacheRead += v.CacheReadInputTokens
	u.CacheWrite += v.CacheCreationInputTokens
}

// Transcript is what devmetrics needs from one session transcript.
type Transcript struct {
	StartedAt *time.Time
	EndedAt   *time.Time
	Usage     TokenUsage
	// Skills lists the skills invoked through the Skill tool, sorted.
	Skills []string
	Turns  int
}

type TranscriptEntry struct {
	Type          string         `json:"type"`
	Timestamp     string         `json:"timestamp,omitempty"`
	Message       *Message       `json:"message,omitempty"`
	Usage         *Usage         `json:"usage,omitempty"`
	ToolUseResult *ToolUseResult `json:"toolUseResult,omitempty"`
}

type Message struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
	Usage   *Usage          `json:"usage,omitempty"`
}

type Content struct {
	Type  string          `json:"type"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

type Usage struct {
	InputTokens              int64 `json:"input_tokens"`
	OutputTokens             int64 `json:"output_tokens"`
	CacheReadInputTokens     int64 `json:"cache_read_input_tokens"`
	CacheCreationInputTokens int64 `json:"cache_creation_input_tokens"`
}

// ToolUseResult carries the usage of sub-agent and skill runs.
type ToolUseResult struct {
	Usage *Usage `json:"usage,omitempty"`
}

type skillInput struct {
	Skill   string `json:"skill"`
	Command string `json:"command"`
}

// ParseTranscript reads a JSONL transcript. Malformed lines are skipped.
// Usage is summed from the entry, its message and any tool result.
func ParseTranscript(path string) (*Transcript, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript: %w", err)
	}
	defer func() { _ = file.Close() }()

	result := &Transcript{}
	var skills []string
	var users, assistants int

	scanner := bufio.NewScanner(file)
	// Transcript lines carry whole tool outputs.
	buf := make([]byte, 0, 1024*1024)
	scanner.Buffer(buf, 10*1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var entry TranscriptEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}

		if entry.Timestamp != "" {
			if t, err := time.Parse(time.RFC3339Nano, entry.Timestamp); err == nil {
				if result.StartedAt == nil {
					result.StartedAt = &t
				}
				result.EndedAt = &t
			}
		}

		switch entry.Type {
		case "user", "human":
			users++
		case "assistant":
			assistants++
			if entry.Message != nil {
				skills = append(skills, skillsIn(entry.Message.Content)...)
			}
		}

		result.Usage.add(entry.Usage)
		if entry.Message != nil {
			result.Usage.add(entry.Message.Usage)
		}
		if entry.ToolUseResult != nil {
			result.Usage.add(entry.ToolUseResult.Usage)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading transcript: %w", err)
	}

	result.Turns = min(users, assistants)
	result.Skills = domain.UnionSorted(skills)
	return result, nil
}

// skillsIn returns the skill names of Skill tool calls in a message body.
// Plain string bodies carry no tool calls.
func skillsIn(raw json.RawMessage) []string {
	var contents []Content
	if err := json.Unmarshal(raw, &contents); err != nil {
		return nil
	}

	var out []string
	for _, c := range contents {
		if c.Type != "tool_use" || c.Name != "Skill" || len(c.Input) == 0 {
			continue
		}
		var in skillInput
		if err := json.Unmarshal(c.Input, &in); err != nil {
			continue
		}
		if in.Skill != "" {
			out = append(out, in.Skill)
		} else if in.Command != "" {
			out = append(out, in.Command)
		}
	}
	return out
}
