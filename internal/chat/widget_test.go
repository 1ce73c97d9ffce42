package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amishk599/folio/internal/model"
)

type stubBackend struct {
	reply string
	err   error
	reqs  []model.ChatRequest
}

func (s *stubBackend) Chat(_ context.Context, req model.ChatRequest) (string, error) {
	s.reqs = append(s.reqs, req)
	return s.reply, s.err
}

func TestWidget_StartsWithGreeting(t *testing.T) {
	w := NewWidget(&stubBackend{})
	tr := w.Transcript()
	require.Len(t, tr, 1)
	assert.Equal(t, model.RoleAssistant, tr[0].Role)
	assert.Equal(t, Greeting, tr[0].Content)
	assert.NotEmpty(t, tr[0].ID)
}

func TestWidget_SendAppendsUserThenAssistant(t *testing.T) {
	backend := &stubBackend{reply: "I know Go."}
	w := NewWidget(backend)

	msg, err := w.Send(context.Background(), "  What do you know?  ")
	require.NoError(t, err)
	assert.Equal(t, "I know Go.", msg.Content)

	tr := w.Transcript()
	require.Len(t, tr, 3)
	assert.Equal(t, model.RoleUser, tr[1].Role)
	assert.Equal(t, "What do you know?", tr[1].Content)
	assert.Equal(t, model.RoleAssistant, tr[2].Role)
	assert.Equal(t, "I know Go.", tr[2].Content)
	assert.NotEqual(t, tr[1].ID, tr[2].ID)
	assert.False(t, w.Busy())

	require.Len(t, backend.reqs, 1)
	assert.Equal(t, "What do you know?", backend.reqs[0].Message)
	assert.Equal(t, []model.HistoryEntry{{Role: model.RoleAssistant, Content: Greeting}}, backend.reqs[0].History)
}

func TestWidget_FailureAppendsApology(t *testing.T) {
	tests := []struct {
		name    string
		backend *stubBackend
	}{
		{"error", &stubBackend{err: errors.New("connection refused")}},
		{"blank reply", &stubBackend{reply: " "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWidget(tt.backend)
			msg, err := w.Send(context.Background(), "hello")
			require.NoError(t, err)
			assert.Equal(t, Apology, msg.Content)

			tr := w.Transcript()
			require.Len(t, tr, 3)
			assert.Equal(t, model.RoleUser, tr[1].Role)
			assert.Equal(t, Apology, tr[2].Content)
			assert.False(t, w.Busy())
		})
	}
}

func TestWidget_EmptyInputLeavesTranscriptUnchanged(t *testing.T) {
	backend := &stubBackend{reply: "x"}
	w := NewWidget(backend)

	for _, in := range []string{"", "   ", "\t\n"} {
		_, err := w.Send(context.Background(), in)
		assert.ErrorIs(t, err, ErrEmptyMessage)
	}
	assert.Len(t, w.Transcript(), 1)
	assert.Empty(t, backend.reqs)
}

func TestWidget_RejectsSendWhileBusy(t *testing.T) {
	w := NewWidget(&stubBackend{reply: "x"})

	p, err := w.Begin("first")
	require.NoError(t, err)
	assert.True(t, w.Busy())

	_, err = w.Begin("second")
	assert.ErrorIs(t, err, ErrBusy)
	assert.Len(t, w.Transcript(), 2)

	reply, err := w.Exchange(context.Background(), p)
	w.Complete(reply, err)
	assert.False(t, w.Busy())

	_, err = w.Begin("third")
	assert.NoError(t, err)
}

func TestWidget_HistoryCappedAtTenPriorMessages(t *testing.T) {
	backend := &stubBackend{reply: "ok"}
	w := NewWidget(backend)

	for i := 0; i < 8; i++ {
		_, err := w.Send(context.Background(), fmt.Sprintf("q%d", i))
		require.NoError(t, err)
	}
	// greeting + 8 questions + 8 answers
	require.Len(t, w.Transcript(), 17)

	for i, req := range backend.reqs {
		assert.LessOrEqual(t, len(req.History), model.MaxHistory, "request %d", i)
	}

	last := backend.reqs[len(backend.reqs)-1]
	require.Len(t, last.History, model.MaxHistory)
	tr := w.Transcript()
	// The history ends just before the last user message.
	assert.Equal(t, tr[14].Content, last.History[9].Content)
	assert.Equal(t, tr[5].Content, last.History[0].Content)
	assert.Equal(t, "q7", last.Message)
}

func TestHTTPBackend_Chat(t *testing.T) {
	var got model.ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(model.ChatResponse{Message: "pong", Timestamp: "2024-01-01T00:00:00Z"})
	}))
	defer srv.Close()

	reply, err := NewHTTPBackend(srv.URL+"/", srv.Client()).Chat(context.Background(), model.ChatRequest{
		Message: "ping",
		History: []model.HistoryEntry{{Role: model.RoleAssistant, Content: Greeting}},
	})
	require.NoError(t, err)
	assert.Equal(t, "pong", reply)
	assert.Equal(t, "ping", got.Message)
	assert.Len(t, got.History, 1)
}

func TestHTTPBackend_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"non-2xx", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"bad body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}},
		{"empty message", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"message":"","timestamp":"x"}`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewHTTPBackend(srv.URL, srv.Client()).Chat(context.Background(), model.ChatRequest{Message: "x"})
			assert.Error(t, err)
		})
	}
}

func TestWidget_OverHTTPBackendDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	w := NewWidget(NewHTTPBackend(url, http.DefaultClient))
	msg, err := w.Send(context.Background(), "anyone there?")
	require.NoError(t, err)
	assert.Equal(t, Apology, msg.Content)
	assert.Len(t, w.Transcript(), 3)
}
