package ai

import (
	"context"
	"errors"

	"github.com/amishk599/folio/internal/model"
)

// ErrDisabled is returned by providers that are not configured to answer.
var ErrDisabled = errors.New("ai provider disabled")

// LLMProvider sends a conversation to an LLM and returns the assistant's reply.
// The first message is normally the system prompt.
type LLMProvider interface {
	Complete(ctx context.Context, messages []model.Message) (string, error)
}
