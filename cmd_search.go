package main

import (
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/nyxsearch/scout/internal/index"
)

func newCmd_Search() *cli.Command {
	return &cli.Command{
		Name:        "search",
		Usage:       "Search the index for terms.",
		Description: "Search the index. By default matches ANY term (SPEC_FULL.md section 9.1); --all requires every term.",
		ArgsUsage:   "TERM [TERM...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to scout.yaml"},
			&cli.BoolFlag{Name: "json", Usage: "print results as JSON"},
			&cli.BoolFlag{Name: "all", Aliases: []string{"a"}, Usage: "require every term (AND) instead of any term (OR)"},
		},
		Action: func(c *cli.Context) error {
			terms := c.Args().Slice()
			if len(terms) == 0 {
				return fmt.Errorf("search requires at least one term")
			}

			cfg, err := loadConfigOrDefault(c.String("config"))
			if err != nil {
				return err
			}

			db, err := index.Open(cfg.Dir)
			if err != nil {
				return fmt.Errorf("open index: %w", err)
			}
			defer db.Close()

			var results []index.Result
			if c.Bool("all") {
				results, err = db.SearchAll(terms...)
			} else {
				results, err = db.Search(terms...)
			}
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}

			if c.Bool("json") {
				out, err := json.Marshal(results)
				if err != nil {
					return err
				}
				fmt.Println(string(out))
				return nil
			}

			if len(results) == 0 {
				fmt.Println("no matches")
				return nil
			}
			for _, r := range results {
				fmt.Printf("%s\n  %s\n\n", r.URL, r.Snippet)
			}
			return nil
		},
	}
}
