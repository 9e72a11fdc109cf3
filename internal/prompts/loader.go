// Package prompts holds the LLM prompt templates. Templates live in JSON
// files embedded at compile time, keyed by name within each file.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

// library parses every embedded file once
var library = sync.OnceValues(func() (map[string]map[string]string, error) {
	return parseAll(promptFiles)
})

var placeholderPattern = regexp.MustCompile(`\{\{\.(\w+)\}\}`)

func parseAll(fsys fs.FS) (map[string]map[string]string, error) {
	names, err := fs.Glob(fsys, "*.json")
	if err != nil {
		return nil, err
	}

	lib := make(map[string]map[string]string, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt file %s: %w", name, err)
		}
		var prompts map[string]string
		if err := json.Unmarshal(data, &prompts); err != nil {
			return nil, fmt.Errorf("failed to parse prompt file %s: %w", name, err)
		}
		lib[name] = prompts
	}
	return lib, nil
}

// Get retrieves a prompt by filename and key, e.g. ("strategy.json", "executive-strategy").
func Get(filename, key string) (string, error) {
	lib, err := library()
	if err != nil {
		return "", err
	}

	prompts, ok := lib[filename]
	if !ok {
		return "", fmt.Errorf("failed to read prompt file %s: not embedded", filename)
	}
	prompt, ok := prompts[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return prompt, nil
}

// MustGet is Get for prompts required at initialization time. It panics on a miss.
func MustGet(filename, key string) string {
	prompt, err := Get(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return prompt
}

// Placeholders lists the distinct {{.Key}} names in template, sorted.
func Placeholders(template string) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			keys = append(keys, m[1])
		}
	}
	sort.Strings(keys)
	return keys
}

// Format replaces placeholders in the form {{.Key}} with values from data.
// Substitution is a single pass, so placeholder-like text inside a value is
// inserted literally and never expanded. Unknown placeholders are left as is.
func Format(template string, data map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		key := strings.TrimSuffix(strings.TrimPrefix(match, "{{."), "}}")
		if v, ok := data[key]; ok {
			return v
		}
		return match
	})
}
