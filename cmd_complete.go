package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/nyxsearch/scout/internal/index"
)

func newCmd_Complete() *cli.Command {
	return &cli.Command{
		Name:        "complete",
		Usage:       "List vocabulary entries matching a prefix.",
		Description: "List words the index knows that start with, or are a close typo of, the given prefix.",
		ArgsUsage:   "PREFIX",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to scout.yaml"},
		},
		Action: func(c *cli.Context) error {
			prefix := c.Args().First()
			if prefix == "" {
				return fmt.Errorf("complete requires a prefix argument")
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

			words, err := db.Complete(prefix)
			if err != nil {
				return fmt.Errorf("complete: %w", err)
			}
			if len(words) == 0 {
				fmt.Println("no matches")
				return nil
			}
			for _, w := range words {
				fmt.Println(w)
			}
			return nil
		},
	}
}
