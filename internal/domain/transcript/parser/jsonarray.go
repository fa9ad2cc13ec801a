package parser

import (
	"encoding/json"
	"strings"
)

// FirstJSONArray finds the first balanced JSON array in text that decodes
// cleanly. Model replies often wrap the array in prose or code fences, and
// array elements may themselves hold brackets, so the scan tracks nesting
// and string literals rather than matching with a regex.
func FirstJSONArray(text string) ([]json.RawMessage, bool) {
	for start := strings.IndexByte(text, '['); start >= 0; {
		if end, ok := matchBracket(text, start); ok {
			var items []json.RawMessage
			if err := json.Unmarshal([]byte(text[start:end+1]), &items); err == nil {
				return items, true
			}
		}

		next := strings.IndexByte(text[start+1:], '[')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return nil, false
}

// matchBracket returns the index of the ']' closing the '[' at start.
func matchBracket(text string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '[', '{':
			depth++
		case ']', '}':
			depth--
			if depth == 0 {
				if ch != ']' {
					return 0, false
				}
				return i, true
			}
			if depth < 0 {
				return 0, false
			}
		}
	}
	return 0, false
}
