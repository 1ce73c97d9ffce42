package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/amishk599/folio/internal/ai"
	"github.com/amishk599/folio/internal/config"
	"github.com/amishk599/folio/internal/model"
	"github.com/amishk599/folio/internal/notifier"
	"github.com/amishk599/folio/internal/ratelimit"
	"github.com/amishk599/folio/internal/resume"
	"github.com/amishk599/folio/internal/retry"
	"github.com/amishk599/folio/internal/store"
)

const defaultConfigPath = "folio.yaml"

var (
	cfgPath string
	apiFlag string
	debug   bool
)

// apiBase is the backend the viewer and `folio ask` talk to when neither
// --api nor FOLIO_API_URL is set. Override at build time with
// -ldflags "-X main.apiBase=https://api.example.com".
var apiBase = "http://localhost:5000"

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "Personal portfolio with a resume chat assistant",
	Long:  "Folio serves a single-page portfolio built from a resume record, with a chat assistant that answers questions about it.",
	// Without a subcommand, open the terminal viewer.
	RunE:          runView,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(loadDotEnv)
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: FOLIO_CONFIG env var or ./folio.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiFlag, "api", "", "backend base URL (default: FOLIO_API_URL env var or the built-in URL)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadDotEnv loads ./.env when present so config can reference its variables.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > FOLIO_CONFIG env var > "./folio.yaml".
// A missing default file yields the built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	explicit := true
	if path == "" {
		if env := os.Getenv("FOLIO_CONFIG"); env != "" {
			path = env
		} else {
			path = defaultConfigPath
			explicit = false
		}
	}
	cfg, err := config.Load(path)
	if err != nil && !explicit && errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}

// resolveAPIBase picks the backend URL.
// Priority: --api flag > FOLIO_API_URL env var > client.api_base in config > build-time default.
func resolveAPIBase(cfg *config.Config) string {
	base := apiBase
	switch {
	case apiFlag != "":
		base = apiFlag
	case os.Getenv("FOLIO_API_URL") != "":
		base = os.Getenv("FOLIO_API_URL")
	case cfg != nil && cfg.Client.APIBase != "":
		base = cfg.Client.APIBase
	}
	return strings.TrimRight(base, "/")
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupNotifier builds the digest notifier; title names the portfolio in Slack headers.
func setupNotifier(cfg *config.Config, title string, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, title, httpClient, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

// setupProvider builds the LLM chain: provider -> rate limit -> retry.
// Without an API key the Nop provider sends every question to the keyword fallback.
func setupProvider(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) ai.LLMProvider {
	if !cfg.AI.Configured() {
		logger.Info("AI answers disabled, using keyword responses")
		return ai.NewNopProvider()
	}

	var p ai.LLMProvider
	switch cfg.AI.Provider {
	case config.ProviderOpenAI:
		p = ai.NewOpenAIProvider(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model, cfg.AI.MaxTokens, cfg.AI.Temperature, httpClient)
	default:
		p = ai.NewHuggingFaceProvider(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.MaxTokens, cfg.AI.Temperature, httpClient)
	}
	logger.Info("AI answers enabled", "provider", cfg.AI.Provider, "model", cfg.AI.Model)

	if cfg.AI.MinDelay > 0 {
		p = ratelimit.NewProvider(p, ratelimit.NewMinDelayLimiter(cfg.AI.MinDelay), cfg.AI.Provider)
	}
	return retry.NewProvider(p, cfg.AI.MaxRetries, cfg.AI.RetryDelay, logger)
}

// setupResumeSource builds the source the server reads from: the resume file,
// the remote server with retries, or the embedded default. Callers choose how
// to handle its errors.
func setupResumeSource(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.ResumeSource {
	switch {
	case cfg.Resume.Path != "":
		logger.Info("reading resume from file", "path", cfg.Resume.Path)
		return resume.NewFileSource(cfg.Resume.Path)
	case cfg.Resume.RemoteURL != "":
		logger.Info("reading resume from remote", "url", cfg.Resume.RemoteURL)
		return retry.NewSource(resume.NewRemoteSource(cfg.Resume.RemoteURL, httpClient), 2, time.Second, logger)
	default:
		return resume.StaticSource{Resume: resume.Default()}
	}
}

// setupStore opens the SQLite store, or the Nop store when no path is set.
// The returned close func is always safe to call.
func setupStore(cfg *config.Config, logger *slog.Logger) (model.ChatStore, func() error, error) {
	if cfg.Store.Path == "" {
		s := store.NewNopStore()
		return s, s.Close, nil
	}
	s, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("chat store opened", "path", cfg.Store.Path)
	return s, s.Close, nil
}

// viewerSource fetches from {api}/api/resume with the embedded fallback.
func viewerSource(api string, httpClient *http.Client, logger *slog.Logger) model.ResumeSource {
	return resume.NewFallbackSource(resume.NewRemoteSource(api, httpClient), logger)
}

// fetchWithNotice fetches the resume and reports whether the fallback was used.
func fetchWithNotice(ctx context.Context, api string, httpClient *http.Client) (model.Resume, string, error) {
	r, err := resume.NewRemoteSource(api, httpClient).FetchResume(ctx)
	if err == nil {
		return r, "", nil
	}
	if ctx.Err() != nil {
		return model.Resume{}, "", ctx.Err()
	}
	return resume.Default(), "backend unavailable, showing built-in resume", nil
}
