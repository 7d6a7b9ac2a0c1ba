package normalize

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWord(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Hello", "hello"},
		{"café", "cafe"},
		{"rock-n-roll", "rocknroll"},
		{"  ", ""},
		{"日本語", ""},
		{"Go1.24", "go124"},
	}
	for _, c := range cases {
		require.Equal(t, c.want, Word(c.in), "input %q", c.in)
	}
}

func TestTokens(t *testing.T) {
	got := Tokens("The Quick, Brown Fox! café-au-lait")
	require.Equal(t, []string{"the", "quick", "brown", "fox", "cafeaulait"}, got)
}

func TestTokensEmpty(t *testing.T) {
	require.Empty(t, Tokens("   "))
}

func TestTokensDropsSingleCharacterWords(t *testing.T) {
	got := Tokens("a b cat I")
	require.Equal(t, []string{"cat"}, got)
}
