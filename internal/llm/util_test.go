package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "markdown fence",
			input:    "```markdown\n# BLUF\n- Score: 80\n```",
			expected: "# BLUF\n- Score: 80",
		},
		{
			name:     "bare fence",
			input:    "```\n# BLUF\n```",
			expected: "# BLUF",
		},
		{
			name:     "surrounding whitespace",
			input:    "\n\n```md\n# BLUF\n```\n",
			expected: "# BLUF",
		},
		{
			name:     "plain markdown untouched",
			input:    "# BLUF\n\nBody",
			expected: "# BLUF\n\nBody",
		},
		{
			name:     "inner fence only untouched",
			input:    "# Report\n```\ncode\n```\nafter",
			expected: "# Report\n```\ncode\n```\nafter",
		},
		{
			name:     "separate leading and trailing blocks untouched",
			input:    "```a\nx\n```\ntext\n```b\ny\n```",
			expected: "```a\nx\n```\ntext\n```b\ny\n```",
		},
		{
			name:     "two bare blocks untouched",
			input:    "```\nx\n```\ntext\n```\ny\n```",
			expected: "```\nx\n```\ntext\n```\ny\n```",
		},
		{
			name:     "wrapper around nested block untouched",
			input:    "```markdown\n# BLUF\n  ```go\ncode\n  ```\n```",
			expected: "```markdown\n# BLUF\n  ```go\ncode\n  ```\n```",
		},
		{
			name:     "single line fence untouched",
			input:    "```inline```",
			expected: "```inline```",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripCodeFence(tt.input))
		})
	}
}
