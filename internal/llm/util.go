// Package llm - util.go provides shared utilities for LLM response processing.
package llm

import "strings"

// StripCodeFence removes a single code fence wrapped around the whole response.
// Models often wrap markdown in ```markdown ... ``` even when asked not to. A
// response with any other fence line is returned unchanged.
func StripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") || !strings.HasSuffix(trimmed, "```") || len(trimmed) < 6 {
		return text
	}

	inner := strings.TrimPrefix(trimmed, "```")
	nl := strings.Index(inner, "\n")
	if nl < 0 {
		return text
	}
	// Skip the language identifier on the opening line
	if lang := inner[:nl]; strings.ContainsAny(lang, " {") {
		return text
	}
	inner = inner[nl+1:]
	inner = strings.TrimSuffix(inner, "```")

	// Any fence left inside means the outer fences belong to separate blocks
	if hasFenceLine(inner) {
		return text
	}
	return strings.TrimSpace(inner)
}

func hasFenceLine(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimLeft(line, " \t"), "```") {
			return true
		}
	}
	return false
}
