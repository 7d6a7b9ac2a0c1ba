package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/nyxsearch/scout/internal/index"
)

func newCmd_Stats() *cli.Command {
	return &cli.Command{
		Name:        "stats",
		Usage:       "Print corpus size and on-disk store sizes.",
		Description: "Print the number of documents and distinct words indexed, and the on-disk size of each store.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to scout.yaml"},
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

			stats, err := db.Stats()
			if err != nil {
				return fmt.Errorf("stats: %w", err)
			}

			fmt.Printf("documents: %s\n", humanize.Comma(int64(stats.Documents)))
			fmt.Printf("words:     %s\n", humanize.Comma(int64(stats.Words)))
			fmt.Println()

			for _, store := range []string{"page", "pageset", "link", "word"} {
				size, err := dirSize(filepath.Join(cfg.Dir, store))
				if err != nil {
					continue
				}
				fmt.Printf("%-8s %s\n", store, humanize.Bytes(uint64(size)))
			}
			return nil
		},
	}
}

func dirSize(dir string) (int64, error) {
	var total int64
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			continue
		}
		total += info.Size()
	}
	return total, nil
}
