package resume

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/amishk599/folio/internal/model"
)

// Ensure sources implement model.ResumeSource.
var (
	_ model.ResumeSource = StaticSource{}
	_ model.ResumeSource = (*FileSource)(nil)
	_ model.ResumeSource = (*RemoteSource)(nil)
	_ model.ResumeSource = (*FallbackSource)(nil)
	_ model.ResumeSource = (*Reloader)(nil)
)

// StaticSource always returns the same resume.
type StaticSource struct {
	Resume model.Resume
}

func (s StaticSource) FetchResume(_ context.Context) (model.Resume, error) {
	return Clone(s.Resume), nil
}

// FileSource reads a YAML or JSON resume file on every fetch.
type FileSource struct {
	path string
}

// NewFileSource returns a source backed by the file at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) FetchResume(_ context.Context) (model.Resume, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return model.Resume{}, fmt.Errorf("read resume %s: %w", s.path, err)
	}
	return Parse(data, FormatOf(s.path))
}

// RemoteSource fetches the resume from GET {baseURL}/api/resume.
type RemoteSource struct {
	baseURL string
	client  *http.Client
}

// NewRemoteSource creates a source that reads from another folio server.
func NewRemoteSource(baseURL string, client *http.Client) *RemoteSource {
	return &RemoteSource{baseURL: baseURL, client: client}
}

// FetchResume returns *model.HTTPError for any non-2xx response.
func (s *RemoteSource) FetchResume(ctx context.Context) (model.Resume, error) {
	url := s.baseURL + "/api/resume"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return model.Resume{}, fmt.Errorf("resume fetch from %s: %w", url, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return model.Resume{}, fmt.Errorf("resume fetch from %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.Resume{}, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: model.ParseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("resume fetch from %s: unexpected status", url),
		}
	}

	var r model.Resume
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return model.Resume{}, fmt.Errorf("resume fetch from %s: %w", url, err)
	}
	return r, nil
}

// FallbackSource substitutes the embedded default resume whenever the wrapped
// source fails. It never returns an error.
type FallbackSource struct {
	inner  model.ResumeSource
	logger *slog.Logger
}

// NewFallbackSource wraps inner with the embedded default as fallback.
func NewFallbackSource(inner model.ResumeSource, logger *slog.Logger) *FallbackSource {
	return &FallbackSource{inner: inner, logger: logger}
}

func (s *FallbackSource) FetchResume(ctx context.Context) (model.Resume, error) {
	r, err := s.inner.FetchResume(ctx)
	if err != nil {
		s.logger.Info("using default resume data", "error", err)
		return Default(), nil
	}
	return r, nil
}

// Reloader caches the resume from a source and refreshes it on Reload.
// A failed reload keeps the previous value.
type Reloader struct {
	source model.ResumeSource
	logger *slog.Logger

	mu      sync.RWMutex
	current model.Resume
}

// NewReloader loads the resume once from source. If that first load fails
// the embedded default is served until a reload succeeds.
func NewReloader(ctx context.Context, source model.ResumeSource, logger *slog.Logger) *Reloader {
	r, err := source.FetchResume(ctx)
	if err != nil {
		logger.Info("using default resume data", "error", err)
		r = Default()
	}
	return &Reloader{source: source, logger: logger, current: r}
}

// FetchResume returns a copy of the cached resume.
func (l *Reloader) FetchResume(_ context.Context) (model.Resume, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Clone(l.current), nil
}

// Reload fetches a fresh resume and swaps it in.
func (l *Reloader) Reload(ctx context.Context) error {
	r, err := l.source.FetchResume(ctx)
	if err != nil {
		return fmt.Errorf("reload resume: %w", err)
	}

	l.mu.Lock()
	l.current = r
	l.mu.Unlock()

	l.logger.Debug("resume reloaded", "name", r.Name, "projects", len(r.Projects))
	return nil
}

// Name identifies the reloader as a scheduled task.
func (l *Reloader) Name() string { return "resume-reload" }

// Run reloads the resume; it lets the scheduler drive the Reloader.
func (l *Reloader) Run(ctx context.Context) error { return l.Reload(ctx) }
