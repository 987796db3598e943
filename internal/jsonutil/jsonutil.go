package jsonutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// StripFences removes a single surrounding markdown code fence (``` or
// ```json) from raw model output. Text outside the fence is discarded.
// Input without a fence is returned trimmed.
func StripFences(raw []byte) []byte {
	s := strings.TrimSpace(string(raw))
	start := strings.Index(s, "```")
	if start < 0 {
		return []byte(s)
	}
	s = s[start+3:]
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// Drop a language tag such as "json" on the fence line.
		head := strings.TrimSpace(s[:nl])
		if head == "" || isFenceTag(head) {
			s = s[nl+1:]
		}
	}
	if end := strings.LastIndex(s, "```"); end >= 0 {
		s = s[:end]
	}
	return []byte(strings.TrimSpace(s))
}

func isFenceTag(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return len(s) <= 10
}

// UnmarshalLoose unmarshals model output into v with best effort:
// 1) direct unmarshal, 2) fence-stripped unmarshal, 3) first balanced
// JSON object extracted from the text.
func UnmarshalLoose(raw []byte, v any) error {
	if err := json.Unmarshal(raw, v); err == nil {
		return nil
	}
	stripped := StripFences(raw)
	if err := json.Unmarshal(stripped, v); err == nil {
		return nil
	}
	if obj, ok := firstJSONValue(stripped); ok {
		return json.Unmarshal(obj, v)
	}
	return errors.New("jsonutil: no parseable JSON in payload")
}

// firstJSONValue extracts the first balanced {...} or [...] from b.
func firstJSONValue(b []byte) ([]byte, bool) {
	start := bytes.IndexAny(b, "{[")
	if start < 0 {
		return nil, false
	}
	open := b[start]
	var close byte = '}'
	if open == '[' {
		close = ']'
	}
	depth := 0
	inStr := false
	esc := false
	for i := start; i < len(b); i++ {
		c := b[i]
		if inStr {
			switch {
			case esc:
				esc = false
			case c == '\\':
				esc = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return b[start : i+1], true
			}
		}
	}
	return nil, false
}

// MarshalNoEscape encodes v into JSON without escaping <, >, & into <, etc.
func MarshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
