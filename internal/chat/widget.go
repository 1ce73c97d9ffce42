package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/amishk599/folio/internal/model"
)

// Greeting is the first assistant message of every transcript.
const Greeting = "Hi there! 👋 I'm your AI assistant. Feel free to ask me anything about my background, skills, experience, or projects!"

// Apology replaces the assistant reply whenever the backend cannot answer.
const Apology = "Sorry, I'm having trouble connecting. Please make sure the backend server is running."

// ErrBusy is returned when a send is attempted while another is in flight.
var ErrBusy = errors.New("a message is already being sent")

// Backend delivers one chat request and returns the assistant's text.
type Backend interface {
	Chat(ctx context.Context, req model.ChatRequest) (string, error)
}

var _ Backend = (*HTTPBackend)(nil)

// HTTPBackend posts chat requests to {apiBase}/api/chat.
type HTTPBackend struct {
	client *resty.Client
}

// NewHTTPBackend creates a backend for the folio server at apiBase.
func NewHTTPBackend(apiBase string, httpClient *http.Client) *HTTPBackend {
	return &HTTPBackend{
		client: resty.NewWithClient(httpClient).
			SetBaseURL(strings.TrimRight(apiBase, "/")).
			SetHeader("Content-Type", "application/json"),
	}
}

// Chat returns an error for transport failures, non-2xx responses,
// undecodable bodies and empty replies.
func (b *HTTPBackend) Chat(ctx context.Context, req model.ChatRequest) (string, error) {
	resp, err := b.client.R().
		SetContext(ctx).
		SetBody(req).
		Post("/api/chat")
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	if !resp.IsSuccess() {
		return "", &model.HTTPError{
			StatusCode: resp.StatusCode(),
			Err:        fmt.Errorf("chat request: unexpected status"),
		}
	}

	var out model.ChatResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("chat response: %w", err)
	}
	if strings.TrimSpace(out.Message) == "" {
		return "", fmt.Errorf("chat response: empty message")
	}
	return out.Message, nil
}

// Pending is a send that has been started with Begin and awaits Complete.
type Pending struct {
	User    model.Message
	Request model.ChatRequest
}

// Widget is the visitor's side of the chat: an in-memory transcript and at
// most one request in flight. Transcripts are never persisted.
type Widget struct {
	backend Backend
	now     func() time.Time
	newID   func() string

	mu         sync.Mutex
	transcript []model.Message
	busy       bool
}

// NewWidget returns a widget whose transcript holds only the greeting.
func NewWidget(backend Backend) *Widget {
	w := &Widget{
		backend: backend,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	w.transcript = []model.Message{w.message(model.RoleAssistant, Greeting)}
	return w
}

// Transcript returns a copy of the conversation so far.
func (w *Widget) Transcript() []model.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]model.Message(nil), w.transcript...)
}

// Busy reports whether a send is in flight.
func (w *Widget) Busy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.busy
}

// Begin appends the user's message and marks the widget busy. The request
// history is the last model.MaxHistory messages before the new one.
func (w *Widget) Begin(text string) (Pending, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Pending{}, ErrEmptyMessage
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.busy {
		return Pending{}, ErrBusy
	}

	prior := w.transcript
	if len(prior) > model.MaxHistory {
		prior = prior[len(prior)-model.MaxHistory:]
	}
	history := make([]model.HistoryEntry, len(prior))
	for i, m := range prior {
		history[i] = model.HistoryEntry{Role: m.Role, Content: m.Content}
	}

	user := w.message(model.RoleUser, text)
	w.transcript = append(w.transcript, user)
	w.busy = true

	return Pending{
		User:    user,
		Request: model.ChatRequest{Message: text, History: history},
	}, nil
}

// Exchange sends a pending request to the backend. It does not touch the
// transcript and may run outside the caller's UI loop.
func (w *Widget) Exchange(ctx context.Context, p Pending) (string, error) {
	return w.backend.Chat(ctx, p.Request)
}

// Complete appends the assistant's reply, or the apology when err is set
// or the reply is blank, and clears the busy flag.
func (w *Widget) Complete(reply string, err error) model.Message {
	content := reply
	if err != nil || strings.TrimSpace(reply) == "" {
		content = Apology
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	msg := w.message(model.RoleAssistant, content)
	w.transcript = append(w.transcript, msg)
	w.busy = false
	return msg
}

// Send runs Begin, Exchange and Complete. The returned error is only ever
// ErrEmptyMessage or ErrBusy; backend failures become the apology reply.
func (w *Widget) Send(ctx context.Context, text string) (model.Message, error) {
	p, err := w.Begin(text)
	if err != nil {
		return model.Message{}, err
	}
	reply, err := w.Exchange(ctx, p)
	return w.Complete(reply, err), nil
}

func (w *Widget) message(role, content string) model.Message {
	return model.Message{
		ID:        w.newID(),
		Role:      role,
		Content:   content,
		Timestamp: w.now(),
	}
}
