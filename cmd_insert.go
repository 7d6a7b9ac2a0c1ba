package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/nyxsearch/scout/internal/extract"
	"github.com/nyxsearch/scout/internal/fetch"
	"github.com/nyxsearch/scout/internal/index"
)

func newCmd_Insert() *cli.Command {
	return &cli.Command{
		Name:        "insert",
		Usage:       "Fetch a single URL and insert it into the index.",
		Description: "Fetch a single URL, extract its main text, and insert it into the index.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to scout.yaml"},
			&cli.StringFlag{Name: "url", Required: true, Usage: "URL to fetch and insert"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfigOrDefault(c.String("config"))
			if err != nil {
				return err
			}

			db, err := index.Open(cfg.Dir)
			if err != nil {
				return fmt.Errorf("open index: %w", err)
			}
			defer db.Close()

			f := fetch.New(cfg.Fetch.Timeout, cfg.Fetch.MaxRetries, cfg.Fetch.UserAgent)
			docID, inserted, err := insertURL(c.Context, db, f, c.String("url"))
			if err != nil {
				return err
			}
			if !inserted {
				fmt.Printf("already indexed: doc %d\n", docID)
				return nil
			}
			if err := db.Flush(); err != nil {
				return fmt.Errorf("flush: %w", err)
			}
			fmt.Printf("inserted: doc %d\n", docID)
			return nil
		},
	}
}

// insertURL fetches url, extracts its text, and inserts it into db. A
// non-HTML response or a fetch/parse failure is reported to the caller but
// is not itself a fatal condition for callers that process many URLs and
// must skip past a bad one.
func insertURL(ctx context.Context, db *index.DB, f *fetch.Fetcher, url string) (uint64, bool, error) {
	res, err := f.Get(ctx, url)
	if err != nil {
		metricsFetchErrors.WithLabelValues("fetch").Inc()
		return 0, false, fmt.Errorf("fetch %s: %w", url, err)
	}
	if !strings.HasPrefix(res.ContentType, "text/html") {
		return 0, false, fmt.Errorf("fetch %s: unsupported content type %q", url, res.ContentType)
	}

	doc, err := extract.GetText(strings.NewReader(string(res.Body)))
	if err != nil {
		metricsFetchErrors.WithLabelValues("parse").Inc()
		return 0, false, fmt.Errorf("parse %s: %w", url, err)
	}

	docID, inserted, err := db.Insert(url, doc.Title, doc.Text())
	if err != nil {
		return 0, false, err
	}
	if inserted {
		metricsDocsIndexed.Inc()
	}
	return docID, inserted, nil
}

func loadConfigOrDefault(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
