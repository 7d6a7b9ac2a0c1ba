package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/nyxsearch/scout/internal/extract"
	"github.com/nyxsearch/scout/internal/fetch"
	"github.com/nyxsearch/scout/internal/feed"
	"github.com/nyxsearch/scout/internal/index"
)

// fetched is the work product of one feed item's fetch+extract step,
// carried from a worker goroutine to the single goroutine that calls
// db.Insert, since the index is single-writer (SPEC_FULL.md section 5).
type fetched struct {
	url   string
	title string
	text  string
	err   error
}

func newCmd_Crawl() *cli.Command {
	return &cli.Command{
		Name:        "crawl",
		Usage:       "Crawl an RSS/Atom feed, inserting unseen links into the index.",
		Description: "Fetch a feed, then fetch and insert every item link the index hasn't seen before. With no --url, crawls every feed in config.feeds.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to scout.yaml"},
			&cli.StringFlag{Name: "url", Usage: "feed URL to crawl (default: every feed in config.feeds)"},
			&cli.IntFlag{Name: "concurrency", Usage: "override config crawl.concurrency"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfigOrDefault(c.String("config"))
			if err != nil {
				return err
			}
			if n := c.Int("concurrency"); n > 0 {
				cfg.Crawl.Concurrency = n
			}

			var feedURLs []string
			if url := c.String("url"); url != "" {
				feedURLs = []string{url}
			} else {
				feedURLs = cfg.Feeds
			}
			if len(feedURLs) == 0 {
				return fmt.Errorf("crawl requires --url or a non-empty config.feeds")
			}

			db, err := index.Open(cfg.Dir)
			if err != nil {
				return fmt.Errorf("open index: %w", err)
			}
			defer db.Close()

			f := fetch.New(cfg.Fetch.Timeout, cfg.Fetch.MaxRetries, cfg.Fetch.UserAgent)

			var seen, inserted int
			for _, feedURL := range feedURLs {
				n, ins, err := crawlFeed(c.Context, db, f, feedURL, cfg.Crawl.Concurrency)
				if err != nil {
					klog.Errorf("crawl: %s: %v", feedURL, err)
					continue
				}
				seen += n
				inserted += ins
			}

			if err := db.Flush(); err != nil {
				return fmt.Errorf("flush: %w", err)
			}
			fmt.Printf("\ncrawled %d feed(s): %d items seen, %d inserted\n", len(feedURLs), seen, inserted)
			return nil
		},
	}
}

// crawlFeed fetches and parses one feed, then fetches and inserts every item
// link the index hasn't seen before. Returns the number of items seen and
// the number actually inserted.
func crawlFeed(ctx context.Context, db *index.DB, f *fetch.Fetcher, feedURL string, concurrency int) (seen, inserted int, err error) {
	klog.Infof("crawl: fetching feed %s", feedURL)
	feedRes, err := f.Get(ctx, feedURL)
	if err != nil {
		return 0, 0, fmt.Errorf("fetch feed %s: %w", feedURL, err)
	}

	items, err := feed.Parse(string(feedRes.Body))
	if err != nil {
		return 0, 0, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}
	klog.Infof("crawl: feed %s has %d items", feedURL, len(items))

	bar := progressbar.Default(int64(len(items)), "crawling "+feedURL)
	results := fetchAll(ctx, f, items, concurrency)

	for r := range results {
		seen++
		metricsCrawlItemsSeen.Inc()
		if r.err != nil {
			klog.Errorf("crawl: %s: %v", r.url, r.err)
			bar.Add(1)
			continue
		}

		_, ok, err := db.Insert(r.url, r.title, r.text)
		if err != nil {
			klog.Errorf("crawl: insert %s: %v", r.url, err)
			bar.Add(1)
			continue
		}
		if ok {
			metricsDocsIndexed.Inc()
			metricsCrawlItemsInserted.Inc()
			inserted++
		}
		bar.Add(1)
	}

	return seen, inserted, nil
}

// fetchAll fetches and extracts every item's page concurrently, bounded by
// concurrency, and streams the outcomes back in no particular order. The
// caller serializes db.Insert over the returned channel. fetchOne never
// returns a hard error itself (failures are carried in fetched.err), so the
// errgroup here is purely the teacher's bounded-fan-out idiom (see
// split-car-fetcher's SplitCarReader loader) rather than fail-fast error
// propagation.
func fetchAll(ctx context.Context, f *fetch.Fetcher, items []feed.Item, concurrency int) <-chan fetched {
	if concurrency <= 0 {
		concurrency = 1
	}
	out := make(chan fetched)

	// Dispatch runs on its own goroutine: Group.Go blocks once concurrency
	// active goroutines are outstanding, and those goroutines in turn block
	// sending on out until the caller starts draining it, so dispatching
	// from the caller's own goroutine would deadlock before out is ever read.
	go func() {
		g := new(errgroup.Group)
		g.SetLimit(concurrency)
		for _, item := range items {
			item := item
			g.Go(func() error {
				out <- fetchOne(ctx, f, item)
				return nil
			})
		}
		g.Wait()
		close(out)
	}()
	return out
}

func fetchOne(ctx context.Context, f *fetch.Fetcher, item feed.Item) fetched {
	res, err := f.Get(ctx, item.Link)
	if err != nil {
		metricsFetchErrors.WithLabelValues("fetch").Inc()
		return fetched{url: item.Link, err: fmt.Errorf("fetch: %w", err)}
	}
	if !strings.HasPrefix(res.ContentType, "text/html") {
		return fetched{url: item.Link, err: fmt.Errorf("unsupported content type %q", res.ContentType)}
	}

	doc, err := extract.GetText(strings.NewReader(string(res.Body)))
	if err != nil {
		metricsFetchErrors.WithLabelValues("parse").Inc()
		return fetched{url: item.Link, err: fmt.Errorf("parse: %w", err)}
	}

	title := doc.Title
	if title == "" {
		title = item.Title
	}
	return fetched{url: item.Link, title: title, text: doc.Text()}
}
