package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/folio/internal/page"
	"github.com/amishk599/folio/internal/resume"
	"github.com/amishk599/folio/internal/server"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the portfolio page as static HTML",
	Long:  "Renders the configured resume to a standalone HTML page whose chat widget talks to {api}/api/chat.",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default: stdout)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	// Source logs are dropped so stdout stays a clean HTML document.
	quiet := discardLogger()
	r, err := resume.NewFallbackSource(setupResumeSource(cfg, httpClient, quiet), quiet).FetchResume(ctx)
	if err != nil {
		logger.Error("failed to load resume", "error", err)
		os.Exit(1)
	}

	var w io.Writer = os.Stdout
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			logger.Error("failed to create output", "path", exportOut, "error", err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}

	data := server.NewPageData(r, page.NewAccordion(len(r.Experience)), resolveAPIBase(cfg))
	if err := server.Render(w, data); err != nil {
		logger.Error("failed to render page", "error", err)
		os.Exit(1)
	}
	if exportOut != "" {
		logger.Info("page exported", "path", exportOut)
	}
	return nil
}
