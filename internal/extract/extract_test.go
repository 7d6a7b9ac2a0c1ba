package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const samplePage = `<html><head><title>My Article</title></head>
<body>
<nav><a href="/">home</a><a href="/about">about</a></nav>
<article>
<p>This is the first paragraph of a long article about Go programming and search engines.</p>
<p>This is the second paragraph, continuing the discussion with even more detail and words.</p>
</article>
<footer>copyright 2026</footer>
</body></html>`

func TestGetTextExtractsTitle(t *testing.T) {
	doc, err := GetText(strings.NewReader(samplePage))
	require.NoError(t, err)
	require.Equal(t, "My Article", doc.Title)
}

func TestGetTextKeepsArticleParagraphs(t *testing.T) {
	doc, err := GetText(strings.NewReader(samplePage))
	require.NoError(t, err)
	require.NotEmpty(t, doc.Paragraphs)
	joined := doc.Text()
	require.Contains(t, joined, "first paragraph")
	require.Contains(t, joined, "second paragraph")
}

func TestGetTextEmptyDocument(t *testing.T) {
	doc, err := GetText(strings.NewReader(""))
	require.NoError(t, err)
	require.Empty(t, doc.Paragraphs)
}
