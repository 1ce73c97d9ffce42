// Package chat holds both ends of the portfolio chat: the server-side
// Assistant that answers questions and the client-side Widget that keeps a
// visitor's transcript.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/amishk599/folio/internal/ai"
	"github.com/amishk599/folio/internal/model"
	"github.com/amishk599/folio/internal/resume"
)

// ErrEmptyMessage is returned when a message is blank after trimming.
var ErrEmptyMessage = errors.New("message is required")

// Answer is the assistant's reply to one question.
type Answer struct {
	Text   string
	Source string // model.SourceLLM or model.SourceKeyword
	Topic  string
}

// Assistant answers visitor questions about the resume. It asks the LLM
// provider first and falls back to keyword answers whenever the provider is
// disabled, fails or returns nothing.
type Assistant struct {
	resumes  model.ResumeSource
	provider ai.LLMProvider
	keywords *KeywordResponder
	store    model.ChatStore
	timeout  time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewAssistant creates an Assistant. timeout bounds each provider call;
// zero means the caller's context alone applies.
func NewAssistant(resumes model.ResumeSource, provider ai.LLMProvider, store model.ChatStore, timeout time.Duration, logger *slog.Logger) *Assistant {
	return &Assistant{
		resumes:  resumes,
		provider: provider,
		keywords: NewKeywordResponder(),
		store:    store,
		timeout:  timeout,
		logger:   logger,
		now:      time.Now,
	}
}

// Reply answers message given the prior conversation. Only the last
// model.MaxHistory history entries are forwarded to the provider.
func (a *Assistant) Reply(ctx context.Context, message string, history []model.HistoryEntry) (Answer, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Answer{}, ErrEmptyMessage
	}

	start := a.now()
	r, err := a.resumes.FetchResume(ctx)
	if err != nil {
		a.logger.Warn("resume unavailable, answering from default", "error", err)
		r = resume.Default()
	}

	answer := Answer{Topic: a.keywords.Topic(message)}
	if text, err := a.complete(ctx, r, message, history); err == nil {
		answer.Text = text
		answer.Source = model.SourceLLM
	} else {
		if !errors.Is(err, ai.ErrDisabled) {
			a.logger.Warn("llm reply failed, using keyword fallback", "error", err)
		}
		answer.Text = a.keywords.Respond(r, message)
		answer.Source = model.SourceKeyword
	}

	ev := model.ChatEvent{
		At:         start,
		Source:     answer.Source,
		Topic:      answer.Topic,
		Latency:    a.now().Sub(start),
		HistoryLen: min(len(history), model.MaxHistory),
	}
	if err := a.store.Record(ev); err != nil {
		a.logger.Warn("failed to record chat event", "error", err)
	}

	a.logger.Debug("chat answered", "source", answer.Source, "topic", answer.Topic, "latency", ev.Latency)
	return answer, nil
}

var errEmptyCompletion = errors.New("llm returned empty reply")

func (a *Assistant) complete(ctx context.Context, r model.Resume, message string, history []model.HistoryEntry) (string, error) {
	prompt, err := SystemPrompt(r)
	if err != nil {
		return "", err
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	text, err := a.provider.Complete(ctx, BuildMessages(prompt, message, history))
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errEmptyCompletion
	}
	return text, nil
}
