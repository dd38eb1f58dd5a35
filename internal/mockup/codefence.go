package mockup

import (
	"fmt"
	"strings"
)

// stripCodeFence removes a surrounding markdown code fence, tolerating an
// optional language tag after the opening backticks. Content without a fence
// is returned trimmed.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	body := s[3:]
	// Drop the language tag line (e.g. "tsx", "html") if present.
	if idx := strings.IndexByte(body, '\n'); idx >= 0 {
		firstLine := strings.TrimSpace(body[:idx])
		if firstLine == "" || isLanguageTag(firstLine) {
			body = body[idx+1:]
		}
	}

	body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	return strings.TrimSpace(body)
}

// isLanguageTag reports whether a fence info string looks like a language
// tag rather than code.
func isLanguageTag(s string) bool {
	if len(s) > 20 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '+', r == '-', r == '#':
		default:
			return false
		}
	}
	return true
}

// normalizeCode strips fencing and enforces the minimum length so that a
// truncated or empty model response is classified as a failure instead of
// reaching the UI.
func normalizeCode(raw string, minLength int) (string, error) {
	code := stripCodeFence(raw)
	if len(code) < minLength {
		return "", fmt.Errorf("code response too short (%d bytes)", len(code))
	}
	return code, nil
}
