package domain

import (
	"fmt"

	"github.com/emiliopalmerini/devmetrics/internal/jsonwire"
)

// Hook event names sent by the host.
const (
	EventSessionStart     = "SessionStart"
	EventSessionEnd       = "SessionEnd"
	EventPreToolUse       = "PreToolUse"
	EventPostToolUse      = "PostToolUse"
	EventPreCompact       = "PreCompact"
	EventUserPromptSubmit = "UserPromptSubmit"
)

// HookEventBase contains fields common to all hook events.
type HookEventBase struct {
	SessionID      string
	TranscriptPath string
	Cwd            string
	HookEventName  string
}

// SessionStartInput is sent when a session starts.
type SessionStartInput struct {
	HookEventBase
	Source string
}

// SessionEndInput is sent when a session ends.
type SessionEndInput struct {
	HookEventBase
	Reason string
}

// PreToolUseInput is sent before a tool runs. Command is set for Bash.
type PreToolUseInput struct {
	HookEventBase
	ToolName string
	Command  string
}

// PostToolUseInput is sent after a tool ran. Skill is set for the Skill tool.
type PostToolUseInput struct {
	HookEventBase
	ToolName string
	Skill    string
}

// PreCompactInput is sent before the context window is compacted.
type PreCompactInput struct {
	HookEventBase
	Trigger string
}

// UserPromptSubmitInput is sent when the user submits a prompt.
type UserPromptSubmitInput struct {
	HookEventBase
	Prompt string
}

// ParseHookEvent extracts a typed event from raw hook text. Fields are
// pulled out individually, so unknown keys, extra nesting or a truncated
// payload only cost the fields that are missing. The only error is a
// payload without a recognised hook_event_name.
func ParseHookEvent(data []byte) (any, error) {
	text := string(data)
	field := func(name string) string {
		v, _ := jsonwire.ExtractField(text, name)
		return v
	}

	name, ok := jsonwire.ExtractField(text, "hook_event_name")
	if !ok || name == "" {
		return nil, fmt.Errorf("missing hook_event_name")
	}

	base := HookEventBase{
		SessionID:      field("session_id"),
		TranscriptPath: field("transcript_path"),
		Cwd:            field("cwd"),
		HookEventName:  name,
	}

	switch name {
	case EventSessionStart:
		return &SessionStartInput{HookEventBase: base, Source: field("source")}, nil
	case EventSessionEnd:
		return &SessionEndInput{HookEventBase: base, Reason: field("reason")}, nil
	case EventPreToolUse:
		return &PreToolUseInput{HookEventBase: base, ToolName: field("tool_name"), Command: field("command")}, nil
	case EventPostToolUse:
		skill := field("skill")
		if skill == "" {
			skill = field("command")
		}
		return &PostToolUseInput{HookEventBase: base, ToolName: field("tool_name"), Skill: skill}, nil
	case EventPreCompact:
		return &PreCompactInput{HookEventBase: base, Trigger: field("trigger")}, nil
	case EventUserPromptSubmit:
		return &UserPromptSubmitInput{HookEventBase: base, Prompt: field("prompt")}, nil
	default:
		return nil, fmt.Errorf("unknown hook event: %s", name)
	}
}
