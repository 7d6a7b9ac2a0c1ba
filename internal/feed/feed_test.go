package feed

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleRSS = `<?xml version="1.0"?>
<rss version="2.0">
<channel>
<title>Example Feed</title>
<link>https://example.com/</link>
<item>
<title>First Post</title>
<link>https://example.com/first</link>
</item>
<item>
<title>Second Post</title>
<link>https://example.com/second</link>
</item>
<item>
<title>No Link Post</title>
</item>
</channel>
</rss>`

func TestParse(t *testing.T) {
	items, err := Parse(sampleRSS)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "https://example.com/first", items[0].Link)
	require.Equal(t, "First Post", items[0].Title)
	require.Equal(t, "https://example.com/second", items[1].Link)
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse("not xml at all")
	require.Error(t, err)
}
