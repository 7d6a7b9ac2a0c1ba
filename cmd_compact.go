package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
	"k8s.io/klog/v2"

	"github.com/nyxsearch/scout/internal/index"
)

func newCmd_Compact() *cli.Command {
	return &cli.Command{
		Name:        "compact",
		Usage:       "Rebuild the pageset store, dropping stale bitmap revisions.",
		Description: "Rebuild the pageset store from the current word vocabulary, reclaiming space the append-only log left behind.",
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

			start := time.Now()
			klog.Info("compact: rebuilding pageset store")
			if err := db.Compact(); err != nil {
				return fmt.Errorf("compact: %w", err)
			}
			metricsFlushDuration.Observe(time.Since(start).Seconds())
			fmt.Printf("compacted in %s\n", time.Since(start))
			return nil
		},
	}
}
