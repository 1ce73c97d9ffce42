package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/folio/internal/chat"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the chat assistant one question",
	Long:  "Sends one question to {api}/api/chat the way the chat widget does and prints the reply.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	api := resolveAPIBase(cfg)
	logger.Debug("asking", "api", api)

	httpClient := &http.Client{Timeout: cfg.Client.Timeout}
	widget := chat.NewWidget(chat.NewHTTPBackend(api, httpClient))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Client.Timeout)
	defer cancel()

	reply, err := widget.Send(ctx, strings.Join(args, " "))
	if err != nil {
		logger.Error("ask failed", "error", err)
		os.Exit(1)
	}
	fmt.Println(reply.Content)
	return nil
}
