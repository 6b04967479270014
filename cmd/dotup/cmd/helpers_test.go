package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadConfirmation(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"lowercase y", "y\n", true},
		{"uppercase y", "Y\n", true},
		{"full word yes", "yes\n", true},
		{"uppercase word", "Yes\n", true},
		{"surrounding whitespace", "  y  \n", true},
		{"lowercase n", "n\n", false},
		{"full word no", "no\n", false},
		{"empty line", "\n", false},
		{"eof without input", "", false},
		{"unrelated answer", "maybe\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, readConfirmation(strings.NewReader(tt.input)))
		})
	}
}
