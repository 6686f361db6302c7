package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/nfseaudit/internal/document/store"
)

func TestContainsPattern(t *testing.T) {
	type testCase struct {
		name  string
		input string
		want  string
	}

	tests := []testCase{
		{name: "plain", input: "Clinica", want: "%Clinica%"},
		{name: "percent", input: "100%", want: `%100\%%`},
		{name: "underscore", input: "a_b", want: `%a\_b%`},
		{name: "backslash", input: `a\b`, want: `%a\\b%`},
		{name: "empty", input: "", want: "%%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, store.ContainsPattern(tt.input))
		})
	}
}
