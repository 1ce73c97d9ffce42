package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amishk599/folio/internal/ai"
	"github.com/amishk599/folio/internal/chat"
	"github.com/amishk599/folio/internal/config"
	"github.com/amishk599/folio/internal/model"
	"github.com/amishk599/folio/internal/resume"
	"github.com/amishk599/folio/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubProvider struct {
	reply    string
	err      error
	messages []model.Message
}

func (s *stubProvider) Complete(_ context.Context, messages []model.Message) (string, error) {
	s.messages = messages
	return s.reply, s.err
}

func testResume() model.Resume {
	return model.Resume{
		Name:    "Ada Lovelace",
		Title:   "Analytical Engine Programmer",
		Summary: "Writes the first published algorithm.",
		Email:   "ada@example.com",
		Phone:   "+44 20 7946",
		Skills:  model.Skills{{Name: "Math", Items: []string{"Analysis"}}},
		Experience: []model.Experience{
			{Role: "Translator", Company: "Babbage & Co", Description: "Annotated the engine."},
			{Role: "Author", Company: "Scientific Memoirs", Description: "Published Note G."},
		},
	}
}

func newTestServer(t *testing.T, provider ai.LLMProvider, cfg config.ServerConfig) http.Handler {
	t.Helper()
	logger := discardLogger()
	src := resume.StaticSource{Resume: testResume()}
	srv, err := New(cfg, Deps{
		Resumes:      src,
		Assistant:    chat.NewAssistant(src, provider, store.NewNopStore(), time.Second, logger),
		AIConfigured: provider != nil,
		Logger:       logger,
	})
	require.NoError(t, err)
	return srv.Handler()
}

func defaultServerConfig() config.ServerConfig {
	return config.Default().Server
}

func postChat(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestResumeEndpoint(t *testing.T) {
	h := newTestServer(t, ai.NewNopProvider(), defaultServerConfig())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/resume", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got model.Resume
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, testResume(), got)
}

func TestChatEndpoint_LLMReply(t *testing.T) {
	provider := &stubProvider{reply: "I love mathematics."}
	h := newTestServer(t, provider, defaultServerConfig())

	history := make([]model.HistoryEntry, 14)
	for i := range history {
		history[i] = model.HistoryEntry{Role: model.RoleUser, Content: "old"}
	}
	body, _ := json.Marshal(model.ChatRequest{Message: "What do you enjoy?", History: history})

	rec := postChat(t, h, string(body))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "I love mathematics.", resp.Message)
	_, err := time.Parse(time.RFC3339, resp.Timestamp)
	assert.NoError(t, err)

	// system + at most ten history + user
	assert.Len(t, provider.messages, model.MaxHistory+2)
}

func TestChatEndpoint_KeywordFallbackWithoutAPIKey(t *testing.T) {
	h := newTestServer(t, ai.NewNopProvider(), defaultServerConfig())

	rec := postChat(t, h, `{"message":"How can I contact you?","history":[]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Message, "- Email: ada@example.com")
}

func TestChatEndpoint_ProviderErrorFallsBack(t *testing.T) {
	h := newTestServer(t, &stubProvider{err: errors.New("upstream down")}, defaultServerConfig())

	rec := postChat(t, h, `{"message":"hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "I'm an AI assistant on this portfolio")
}

func TestChatEndpoint_BadRequests(t *testing.T) {
	h := newTestServer(t, ai.NewNopProvider(), defaultServerConfig())

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"empty message", `{"message":""}`, "Message is required"},
		{"whitespace message", `{"message":"   "}`, "Message is required"},
		{"missing message", `{}`, "Message is required"},
		{"malformed json", `{"message":`, "Invalid request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postChat(t, h, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantErr, resp["error"])
		})
	}
}

func TestChatEndpoint_RateLimitedPerClient(t *testing.T) {
	cfg := defaultServerConfig()
	cfg.RateLimit = config.RateLimitConfig{RequestsPerMinute: 1, Burst: 2}
	h := newTestServer(t, ai.NewNopProvider(), cfg)

	for i := 0; i < 2; i++ {
		rec := postChat(t, h, `{"message":"hi"}`)
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i)
	}
	rec := postChat(t, h, `{"message":"hi"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Other endpoints are not limited.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		provider ai.LLMProvider
		want     bool
	}{
		{"configured", &stubProvider{reply: "x"}, true},
		{"not configured", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := tt.provider
			if provider == nil {
				provider = ai.NewNopProvider()
			}
			logger := discardLogger()
			src := resume.StaticSource{Resume: testResume()}
			srv, err := New(defaultServerConfig(), Deps{
				Resumes:      src,
				Assistant:    chat.NewAssistant(src, provider, store.NewNopStore(), time.Second, logger),
				AIConfigured: tt.want,
				Logger:       logger,
			})
			require.NoError(t, err)

			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
			require.Equal(t, http.StatusOK, rec.Code)

			var resp struct {
				Status           string `json:"status"`
				Timestamp        string `json:"timestamp"`
				APIKeyConfigured bool   `json:"api_key_configured"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "healthy", resp.Status)
			assert.NotEmpty(t, resp.Timestamp)
			assert.Equal(t, tt.want, resp.APIKeyConfigured)
		})
	}
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	cfg := defaultServerConfig()
	cfg.AllowedOrigins = []string{"https://portfolio.example"}
	h := newTestServer(t, ai.NewNopProvider(), cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "https://portfolio.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "https://portfolio.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestIndexPage(t *testing.T) {
	h := newTestServer(t, ai.NewNopProvider(), defaultServerConfig())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "<h1>Ada Lovelace</h1>")
	assert.Contains(t, body, "Analytical Engine Programmer")
	assert.Contains(t, body, `href="tel:`)
	assert.NotContains(t, body, "ZgotmplZ")
	assert.NotContains(t, body, `id="projects"`, "empty sections are omitted")
	assert.NotContains(t, body, "entry expanded")
}

func TestIndexPage_OpenExpandsOneEntry(t *testing.T) {
	h := newTestServer(t, ai.NewNopProvider(), defaultServerConfig())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?open=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Equal(t, 1, strings.Count(body, "entry expanded"))
	assert.Contains(t, body, `entry expanded" data-index="1"`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?open=9", nil))
	assert.NotContains(t, rec.Body.String(), "entry expanded")
}

func TestRender_StaticExport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, NewPageData(testResume(), nil, "https://api.example/")))

	out := buf.String()
	assert.Contains(t, out, `const apiBase = "https:`)
	assert.Contains(t, out, `api.example";`)
	assert.Contains(t, out, "Hi there!")
}
