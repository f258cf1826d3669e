package genai

import (
	"errors"
	"strings"
)

// ExtractJSON recovers a JSON document from free-form model output. Models
// asked for "only JSON" still wrap it in code fences or prose often enough
// that parsing the raw text directly is a losing game.
//
// Strategy: trim, strip ```json fences, then take the first balanced
// {...} or [...] span. Returns an error when no candidate span exists;
// callers wrap that in a MalformedResponseError with the raw text.
func ExtractJSON(text string) (string, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return "", errors.New("empty response")
	}

	// Strip markdown fences. ```json\n...\n``` is the usual shape, but a
	// bare ``` fence appears too.
	if strings.Contains(s, "```") {
		s = strings.ReplaceAll(s, "```json", "")
		s = strings.ReplaceAll(s, "```", "")
		s = strings.TrimSpace(s)
	}

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return "", errors.New("no JSON object or array found")
	}

	span, err := balancedSpan(s[start:])
	if err != nil {
		return "", err
	}
	return span, nil
}

// balancedSpan returns the prefix of s forming one balanced {...} or
// [...] document, ignoring brackets inside string literals.
func balancedSpan(s string) (string, error) {
	open := s[0]
	var close byte
	switch open {
	case '{':
		close = '}'
	case '[':
		close = ']'
	default:
		return "", errors.New("not positioned at a JSON opener")
	}

	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
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
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[:i+1], nil
			}
		}
	}
	return "", errors.New("unbalanced JSON brackets")
}
