// Package extract pulls the main readable text out of an HTML document.
//
// The heuristic is the one a simple blog/news crawler needs and no more:
// group the page's text nodes by their (collapsed) tag-path, find the
// handful of paths that carry the longest average amount of text — that is
// almost always the article body, not the nav/header/footer chrome — and
// keep the contiguous span of the document that path covers.
package extract

import (
	"io"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// topN is the number of highest-scoring tag-paths kept as "main content".
const topN = 10

var skipTags = map[string]bool{
	"script": true, "noscript": true, "svg": true, "img": true, "g": true,
	"input": true, "form": true, "html": true, "body": true, "path": true,
	"style": true,
}

type row struct {
	path []string
	text string
}

// Document is the result of extracting a page: its title and the ordered
// list of text chunks judged to be the article body.
type Document struct {
	Title      string
	Paragraphs []string
}

// Text joins the extracted paragraphs into a single block, one per line.
func (d Document) Text() string {
	return strings.Join(d.Paragraphs, "\n")
}

// GetText parses r as HTML with goquery and extracts its title and main
// text. The parsed tree itself is not returned.
func GetText(r io.Reader) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Document{}, err
	}
	if len(doc.Nodes) == 0 {
		return Document{}, nil
	}
	root := doc.Nodes[0]

	var rows []row
	var title string
	var walk func(n *html.Node, path []string)
	walk = func(n *html.Node, path []string) {
		switch n.Type {
		case html.ElementNode:
			name := strings.ToLower(n.Data)
			childPath := collapse(append(append([]string{}, path...), name))
			if name == "title" && title == "" {
				title = strings.TrimSpace(textContent(n))
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c, childPath)
			}
		case html.TextNode:
			content := strings.TrimSpace(n.Data)
			if content == "" || len(path) == 0 {
				return
			}
			leaf := path[len(path)-1]
			if skipTags[leaf] {
				return
			}
			rows = append(rows, row{path: path, text: content})
		default:
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c, path)
			}
		}
	}
	walk(root, nil)

	return Document{Title: title, Paragraphs: mainText(rows)}, nil
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// collapse removes consecutive duplicate tag names from a path, so a deeply
// re-nested <div><div><div> doesn't fragment the scoring into noise.
func collapse(path []string) []string {
	out := make([]string, 0, len(path))
	for _, p := range path {
		if len(out) == 0 || out[len(out)-1] != p {
			out = append(out, p)
		}
	}
	return out
}

func pathKey(path []string) string {
	return strings.Join(path, "/")
}

func hasPrefix(path, prefix []string) bool {
	if len(prefix) > len(path) {
		return false
	}
	for i, p := range prefix {
		if path[i] != p {
			return false
		}
	}
	return true
}

// mainText scores rows by the average text length of their tag-path, keeps
// the topN highest-scoring paths, then returns the contiguous span of rows
// running from the first row matching a kept path to the last.
func mainText(rows []row) []string {
	if len(rows) == 0 {
		return nil
	}

	scores := make(map[string][]int)
	paths := make(map[string][]string)
	for _, r := range rows {
		key := pathKey(r.path)
		scores[key] = append(scores[key], len(r.text))
		paths[key] = r.path
	}

	type board struct {
		avg float64
		key string
	}
	ranking := make([]board, 0, len(scores))
	for key, lens := range scores {
		sum := 0
		for _, l := range lens {
			sum += l
		}
		ranking = append(ranking, board{avg: float64(sum) / float64(len(lens)), key: key})
	}
	sort.Slice(ranking, func(i, j int) bool { return ranking[i].avg < ranking[j].avg })

	keepFrom := len(ranking) - topN
	if keepFrom < 0 {
		keepFrom = 0
	}
	var kept [][]string
	for _, b := range ranking[keepFrom:] {
		kept = append(kept, paths[b.key])
	}

	matches := func(path []string) bool {
		for _, k := range kept {
			if hasPrefix(path, k) {
				return true
			}
		}
		return false
	}

	first, last := -1, -1
	for i, r := range rows {
		if matches(r.path) {
			if first == -1 {
				first = i
			}
			last = i
		}
	}
	if first == -1 {
		// nothing scored: fall back to returning everything
		out := make([]string, len(rows))
		for i, r := range rows {
			out[i] = r.text
		}
		return out
	}

	out := make([]string, 0, last-first+1)
	for _, r := range rows[first : last+1] {
		out = append(out, r.text)
	}
	return out
}
