package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		n        int
		expected string
	}{
		{name: "Short string", input: "abc", n: 10, expected: "abc"},
		{name: "Exact length", input: "abcde", n: 5, expected: "abcde"},
		{name: "Cut", input: "abcdef", n: 3, expected: "abc"},
		{name: "Multibyte", input: "ééééé", n: 2, expected: "éé"},
		{name: "Zero", input: "abc", n: 0, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Truncate(tt.input, tt.n))
		})
	}

	assert.Len(t, Truncate(strings.Repeat("x", 1000), 300), 300)
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", FirstNonEmpty("", "b", "c"))
	assert.Equal(t, "", FirstNonEmpty("", ""))
	assert.Equal(t, "", FirstNonEmpty())
}
