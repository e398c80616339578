package generation

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var (
	errNoJSON = errors.New("no JSON found in model output")

	fencedBlock = regexp.MustCompile("(?s)```[a-zA-Z]*[ \t]*\r?\n?(.*?)```")
)

// ExtractJSON pulls the first JSON value out of free-form model output.
// Fenced code blocks win over bare spans; a candidate only counts if it
// parses.
func ExtractJSON(s string) ([]byte, error) {
	for _, m := range fencedBlock.FindAllStringSubmatch(s, -1) {
		candidate := strings.TrimSpace(m[1])
		if candidate != "" && json.Valid([]byte(candidate)) {
			return []byte(candidate), nil
		}
	}

	for i := 0; i < len(s); i++ {
		if s[i] != '{' && s[i] != '[' {
			continue
		}
		end := matchingBracket(s, i)
		if end < 0 {
			continue
		}
		candidate := []byte(s[i : end+1])
		if json.Valid(candidate) {
			return candidate, nil
		}
	}

	return nil, errNoJSON
}

// matchingBracket returns the index closing the bracket opened at start,
// skipping over string literals, or -1.
func matchingBracket(s string, start int) int {
	depth := 0
	inString := false
	escaped := false

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
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// decodeList decodes a JSON array of T. An object wrapping the array under
// one of keys is accepted too.
func decodeList[T any](raw []byte, keys ...string) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '{' {
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(raw, &wrapper); err != nil {
			return nil, err
		}
		found := false
		for _, k := range keys {
			if inner, ok := wrapper[k]; ok {
				raw, found = inner, true
				break
			}
		}
		if !found {
			return nil, errors.New("expected a JSON array")
		}
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}
