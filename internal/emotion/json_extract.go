package emotion

import "strings"

// ExtractFirstJSONObject returns the first balanced {...} span in s. Braces
// inside JSON strings are ignored. The span is not validated as JSON.
func ExtractFirstJSONObject(s string) (string, error) {
	for start := strings.IndexByte(s, '{'); start != -1; {
		if end := balancedEnd(s, start); end != -1 {
			return s[start : end+1], nil
		}

		next := strings.IndexByte(s[start+1:], '{')
		if next == -1 {
			break
		}
		start += next + 1
	}
	return "", ErrNoJSONObject
}

// balancedEnd returns the index of the brace closing s[start], or -1.
func balancedEnd(s string, start int) int {
	depth := 0
	inString, escaped := false, false

	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
