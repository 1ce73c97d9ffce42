package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/folio/internal/chat"
	"github.com/amishk599/folio/internal/model"
	"github.com/amishk599/folio/internal/tui"
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Browse the portfolio and chat (TUI)",
	Long:  "Fetches the resume from the backend (falling back to the built-in one) and opens the split-pane viewer with the chat assistant.",
	RunE:  runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	api := resolveAPIBase(cfg)
	httpClient := &http.Client{Timeout: cfg.Client.Timeout}

	// The viewer owns the terminal from here on; log lines would corrupt it.
	var notice string
	r, err := tui.RunLoader(api, func(ctx context.Context) (model.Resume, error) {
		var fetched model.Resume
		var fetchErr error
		fetched, notice, fetchErr = fetchWithNotice(ctx, api, httpClient)
		return fetched, fetchErr
	})
	if err != nil {
		fmt.Printf("Loading portfolio: %v\n", err)
		return nil
	}

	widget := chat.NewWidget(chat.NewHTTPBackend(api, httpClient))
	if err := tui.RunViewer(r, widget, cfg.Client.Timeout, notice); err != nil {
		fmt.Printf("TUI error: %v\n", err)
	}
	return nil
}
