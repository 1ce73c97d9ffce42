package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/amishk599/folio/internal/chat"
	"github.com/amishk599/folio/internal/resume"
	"github.com/amishk599/folio/internal/scheduler"
	"github.com/amishk599/folio/internal/server"
)

// cleanupInterval is how often expired chat events are purged.
const cleanupInterval = 24 * time.Hour

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the portfolio server",
	Long:  "Serves the portfolio page and the resume, chat and health API; blocks until SIGINT/SIGTERM.",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"addr", cfg.Server.Addr,
		"ai_provider", cfg.AI.Provider,
		"ai_configured", cfg.AI.Configured(),
		"rate_limit_rpm", cfg.Server.RateLimit.RequestsPerMinute,
		"store", cfg.Store.Path,
		"notification", cfg.Notification.Type,
	)

	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpClient := &http.Client{Timeout: 30 * time.Second}

	// A failed reload keeps the last good resume; only a failed first load
	// falls back to the embedded one.
	resumes := resume.NewReloader(ctx, setupResumeSource(cfg, httpClient, logger), logger)
	current, _ := resumes.FetchResume(ctx)

	chatStore, closeStore, err := setupStore(cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	assistant := chat.NewAssistant(resumes, setupProvider(cfg, httpClient, logger), chatStore, cfg.AI.Timeout, logger)

	srv, err := server.New(cfg.Server, server.Deps{
		Resumes:      resumes,
		Assistant:    assistant,
		AIConfigured: cfg.AI.Configured(),
		Logger:       logger,
	})
	if err != nil {
		logger.Error("failed to build server", "error", err)
		os.Exit(1)
	}

	var entries []scheduler.Entry
	if cfg.Resume.Path != "" || cfg.Resume.RemoteURL != "" {
		entries = append(entries, scheduler.Entry{Task: resumes, Interval: cfg.Resume.ReloadInterval})
	}
	if cfg.Store.Path != "" {
		n := setupNotifier(cfg, current.Name, httpClient, logger)
		entries = append(entries,
			scheduler.Entry{Task: scheduler.NewDigestTask(chatStore, n, cfg.Notification.DigestInterval, logger), Interval: cfg.Notification.DigestInterval},
			scheduler.Entry{Task: scheduler.NewCleanupTask(chatStore, cfg.Store.Retention, logger), Interval: cleanupInterval, RunAtStart: true},
		)
	}
	sched := scheduler.NewScheduler(entries, logger)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := sched.Run(ctx); err != nil {
			logger.Error("scheduler error", "error", err)
		}
	}()

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		stop()
		wg.Wait()
		os.Exit(1)
	}

	wg.Wait()
	logger.Info("goodbye")
	return nil
}
