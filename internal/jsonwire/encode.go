package jsonwire

import (
	"bytes"
	"encoding/json"
	"strings"
)

const hexDigits = "0123456789abcdef"

// EscapeForJSON escapes s for embedding between double quotes in a JSON
// document. Backslash, double quote, newline, carriage return and tab get
// their short escapes; other control bytes become \u00XX. Everything else,
// including multi-byte UTF-8, is copied through unchanged.
func EscapeForJSON(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if c < 0x20 {
				b.WriteString(`\u00`)
				b.WriteByte(hexDigits[c>>4])
				b.WriteByte(hexDigits[c&0xf])
				continue
			}
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Decision is a control response, e.g. blocking a tool call.
type Decision struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason"`
}

// HookSpecificOutput carries context tagged with the event that produced it.
type HookSpecificOutput struct {
	HookEventName     string `json:"hookEventName"`
	AdditionalContext string `json:"additionalContext"`
}

// ContextResponse injects text into the host's context window.
type ContextResponse struct {
	AdditionalContext  *string             `json:"additionalContext,omitempty"`
	HookSpecificOutput *HookSpecificOutput `json:"hookSpecificOutput,omitempty"`
}

// BuildDecision renders a single-line decision object.
func BuildDecision(kind, reason string) string {
	return encodeLine(Decision{Decision: kind, Reason: reason})
}

// BuildContext renders a single-line context object. When eventName is set
// the text is nested under hookSpecificOutput.
func BuildContext(text, eventName string) string {
	if eventName == "" {
		return encodeLine(ContextResponse{AdditionalContext: &text})
	}
	return encodeLine(ContextResponse{
		HookSpecificOutput: &HookSpecificOutput{
			HookEventName:     eventName,
			AdditionalContext: text,
		},
	})
}

// encodeLine marshals v without HTML escaping. The value types above only
// hold strings, so encoding cannot fail.
func encodeLine(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "{}"
	}
	return strings.TrimRight(buf.String(), "\n")
}
