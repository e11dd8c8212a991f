package generator

import (
	"regexp"
	"strings"
)

var (
	// jsonArrayBlockPattern matches a JSON array inside a markdown code block.
	jsonArrayBlockPattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(\\[.*\\])\\s*```")
	// jsonArrayPattern matches any JSON array (greedy fallback).
	jsonArrayPattern = regexp.MustCompile(`(?s)\[[\s\S]*\]`)
	// trailingCommaPattern matches trailing commas before ] or }.
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
)

// stripCodeFences removes a leading ``` or ```json line and a closing fence.
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	lines := strings.Split(text, "\n")
	lines = lines[1:]
	if n := len(lines); n > 0 && strings.HasPrefix(strings.TrimSpace(lines[n-1]), "```") {
		lines = lines[:n-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// extractJSONArray pulls the JSON array out of a model reply that may wrap
// it in fences or prose. It returns "" when there is no array.
func extractJSONArray(content string) string {
	if m := jsonArrayBlockPattern.FindStringSubmatch(content); len(m) > 1 {
		return trailingCommaPattern.ReplaceAllString(m[1], "$1")
	}
	clean := stripCodeFences(content)
	if m := jsonArrayPattern.FindString(clean); m != "" {
		return trailingCommaPattern.ReplaceAllString(m, "$1")
	}
	return ""
}
