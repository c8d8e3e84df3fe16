package pipeline

import (
	"strings"

	"github.com/kaptinlin/jsonrepair"

	jsonx "alttext/internal/shared/json"
)

// ParseOutcome is the result of coercing provider text into the stage
// schema. When OK is false the raw text is preserved untouched.
type ParseOutcome struct {
	OK     bool
	Parsed Parsed
	Raw    string
}

// ParseStageOutput extracts the structured stage payload from provider text.
// Providers wrap JSON in prose, markdown fences or mild syntax damage, so
// parsing is tiered: strict decode, then the first JSON object embedded in
// the text, then a repair pass. Exhausting all tiers yields a failed outcome
// carrying the raw text.
func ParseStageOutput(raw string) ParseOutcome {
	failed := ParseOutcome{Raw: raw}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return failed
	}

	if parsed, ok := decodeStrict(trimmed); ok {
		return ParseOutcome{OK: true, Parsed: parsed, Raw: raw}
	}

	candidate := extractJSONObject(stripFences(trimmed))
	if candidate != "" {
		if parsed, ok := decodeStrict(candidate); ok {
			return ParseOutcome{OK: true, Parsed: parsed, Raw: raw}
		}
		if repaired, err := jsonrepair.JSONRepair(candidate); err == nil {
			if parsed, ok := decodeStrict(repaired); ok {
				return ParseOutcome{OK: true, Parsed: parsed, Raw: raw}
			}
		}
	}

	if repaired, err := jsonrepair.JSONRepair(trimmed); err == nil {
		if parsed, ok := decodeStrict(repaired); ok {
			return ParseOutcome{OK: true, Parsed: parsed, Raw: raw}
		}
	}

	return failed
}

func decodeStrict(text string) (Parsed, bool) {
	var parsed Parsed
	if err := jsonx.Unmarshal([]byte(text), &parsed); err != nil {
		return Parsed{}, false
	}
	if parsed == (Parsed{}) {
		// Valid JSON with none of the schema fields is still a parse miss.
		return Parsed{}, false
	}
	parsed.ImageType = ImageType(strings.ToLower(strings.TrimSpace(string(parsed.ImageType))))
	return parsed, true
}

// stripFences removes a surrounding markdown code fence, with or without a
// language tag.
func stripFences(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	body := strings.TrimPrefix(text, "```")
	if idx := strings.Index(body, "\n"); idx >= 0 {
		// Drop the fence line itself ("```json" and friends).
		if first := strings.TrimSpace(body[:idx]); len(first) <= 10 && !strings.Contains(first, "{") {
			body = body[idx+1:]
		}
	}
	body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	return strings.TrimSpace(body)
}

// extractJSONObject returns the first balanced top-level JSON object in the
// text, or "" when none exists. Brace tracking skips braces inside strings.
func extractJSONObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
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
				return text[start : i+1]
			}
		}
	}
	return ""
}
