// Package feed parses RSS/Atom feeds into the list of item links a crawl
// should visit. Feed parsing sits outside the indexing core's contract —
// the core only ever sees URLs and fetched page bodies.
package feed

import (
	"strings"

	"github.com/mmcdole/gofeed"
)

// Item is one entry of a parsed feed.
type Item struct {
	Link  string
	Title string
}

// Parse reads an RSS or Atom document and returns its item links, in feed
// order, skipping entries with no link.
func Parse(source string) ([]Item, error) {
	parsed, err := gofeed.NewParser().ParseString(source)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		link := strings.TrimSpace(it.Link)
		if link == "" {
			continue
		}
		items = append(items, Item{Link: link, Title: it.Title})
	}
	return items, nil
}
