// Package jsonwire implements the small JSON protocol spoken at the hook
// boundary: pulling single string fields out of loosely structured event
// text and emitting one-line JSON responses the host can act on.
package jsonwire

import (
	"encoding/json"
	"strings"
)

// ExtractField returns the first string value stored under the key field,
// at any nesting depth, anywhere in text.
//
// Text does not have to be a single valid document. Leading noise, several
// concatenated documents (JSONL) and truncated tails are all tolerated: the
// scan restarts at the next '{' or '[' after anything the tokenizer rejects.
// A key whose value is not a string is skipped and the scan continues.
// The boolean is false when nothing matched; ExtractField never panics.
func ExtractField(text, field string) (string, bool) {
	start := 0
	for start < len(text) {
		i := strings.IndexAny(text[start:], "{[")
		if i < 0 {
			return "", false
		}
		pos := start + i
		if v, ok := scanTokens(text[pos:], field); ok {
			return v, true
		}
		start = pos + 1
	}
	return "", false
}

type frame struct {
	object    bool
	expectKey bool
}

// scanTokens walks the token stream of s until field is found with a string
// value, the input ends, or the tokenizer reports a syntax error.
func scanTokens(s, field string) (string, bool) {
	dec := json.NewDecoder(strings.NewReader(s))

	var stack []frame
	matched := false

	// value marks the parent object as waiting for its next key.
	value := func() {
		if n := len(stack); n > 0 && stack[n-1].object {
			stack[n-1].expectKey = true
		}
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			return "", false
		}

		switch t := tok.(type) {
		case json.Delim:
			switch t {
			case '{', '[':
				value()
				matched = false
				stack = append(stack, frame{object: t == '{', expectKey: t == '{'})
			case '}', ']':
				if len(stack) > 0 {
					stack = stack[:len(stack)-1]
				}
				matched = false
			}
		case string:
			if n := len(stack); n > 0 && stack[n-1].object && stack[n-1].expectKey {
				stack[n-1].expectKey = false
				matched = t == field
				continue
			}
			if matched {
				return t, true
			}
			value()
		default:
			value()
			matched = false
		}
	}
}
