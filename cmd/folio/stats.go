package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/folio/internal/notifier"
	"github.com/amishk599/folio/internal/store"
)

var statsSince time.Duration

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print chat activity from the store",
	Long:  "Summarizes recorded chat questions: totals, AI vs keyword answers, latency and top topics.",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().DurationVar(&statsSince, "since", 7*24*time.Hour, "how far back to look")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Store.Path == "" {
		logger.Error("stats requires store.path in config")
		os.Exit(1)
	}

	sqlStore, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer sqlStore.Close()

	stats, err := sqlStore.Stats(time.Now().Add(-statsSince))
	if err != nil {
		logger.Error("failed to read stats", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Since %s\n", stats.Since.Format("2006-01-02 15:04"))
	fmt.Printf("  questions:       %d\n", stats.Total)
	fmt.Printf("  AI answers:      %d\n", stats.LLM)
	fmt.Printf("  keyword answers: %d\n", stats.Keyword)
	if stats.Total > 0 {
		fmt.Printf("  avg latency:     %s\n", stats.AvgLatency.Round(time.Millisecond))
	}
	if top := notifier.TopTopics(stats, 10); len(top) > 0 {
		fmt.Println("Topics")
		for _, tc := range top {
			fmt.Printf("  %-14s %d\n", tc.Topic, tc.Count)
		}
	}
	return nil
}
