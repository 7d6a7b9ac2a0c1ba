package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nyxsearch/scout/internal/fetch"
	"github.com/nyxsearch/scout/internal/feed"
	"github.com/nyxsearch/scout/internal/index"
)

func TestFetchAllFetchesEveryItem(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>T</title></head><body>
			<article><p>some article content that is reasonably long</p>
			<p>a second paragraph of similar length for the heuristic</p></article>
		</body></html>`))
	}))
	defer server.Close()

	items := []feed.Item{
		{Link: server.URL + "/a", Title: "A"},
		{Link: server.URL + "/b", Title: "B"},
		{Link: server.URL + "/c", Title: "C"},
	}

	f := fetch.New(5*time.Second, 1, "scout-test")
	results := fetchAll(t.Context(), f, items, 2)

	seen := make(map[string]bool)
	for r := range results {
		require.NoError(t, r.err)
		seen[r.url] = true
		require.Contains(t, r.text, "article content")
	}
	require.Len(t, seen, 3)
}

func TestFetchOneReportsFetchError(t *testing.T) {
	f := fetch.New(100*time.Millisecond, 0, "scout-test")
	r := fetchOne(t.Context(), f, feed.Item{Link: "http://127.0.0.1:1"})
	require.Error(t, r.err)
}

func TestCrawlFeedInsertsEveryItem(t *testing.T) {
	pageServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>T</title></head><body>
			<article><p>some article content that is reasonably long</p>
			<p>a second paragraph of similar length for the heuristic</p></article>
		</body></html>`))
	}))
	defer pageServer.Close()

	feedXML := `<?xml version="1.0"?><rss version="2.0"><channel>
		<item><title>A</title><link>` + pageServer.URL + `/a</link></item>
		<item><title>B</title><link>` + pageServer.URL + `/b</link></item>
	</channel></rss>`
	feedServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(feedXML))
	}))
	defer feedServer.Close()

	db, err := index.Open(t.TempDir())
	require.NoError(t, err)
	defer db.Close()
	f := fetch.New(5*time.Second, 1, "scout-test")

	seen, inserted, err := crawlFeed(t.Context(), db, f, feedServer.URL, 2)
	require.NoError(t, err)
	require.Equal(t, 2, seen)
	require.Equal(t, 2, inserted)

	require.NoError(t, db.Flush())
	results, err := db.Search("article")
	require.NoError(t, err)
	require.Len(t, results, 2)
}
