package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/amishk599/folio/internal/model"
)

var _ LLMProvider = (*HuggingFaceProvider)(nil)

const assistantMarker = "Assistant:"

var errNoAssistantText = errors.New("huggingface response has no assistant text")

// HuggingFaceProvider calls a text-generation model on the Hugging Face
// inference API. Chat messages are flattened into a single prompt.
type HuggingFaceProvider struct {
	client      *resty.Client
	url         string
	maxTokens   int
	temperature float64
}

// NewHuggingFaceProvider creates a provider for the model at url
// (e.g. https://api-inference.huggingface.co/models/<model>).
func NewHuggingFaceProvider(url, apiKey string, maxTokens int, temperature float64, httpClient *http.Client) *HuggingFaceProvider {
	client := resty.NewWithClient(httpClient).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json")
	return &HuggingFaceProvider{
		client:      client,
		url:         url,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	MaxNewTokens int     `json:"max_new_tokens"`
	Temperature  float64 `json:"temperature"`
}

type hfGeneration struct {
	GeneratedText string `json:"generated_text"`
}

// Complete posts the flattened prompt and returns the text after the last
// "Assistant:" marker of the first generation.
func (p *HuggingFaceProvider) Complete(ctx context.Context, messages []model.Message) (string, error) {
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(hfRequest{
			Inputs: FlattenPrompt(messages),
			Parameters: hfParameters{
				MaxNewTokens: p.maxTokens,
				Temperature:  p.temperature,
			},
		}).
		Post(p.url)
	if err != nil {
		return "", fmt.Errorf("huggingface request: %w", err)
	}

	if !resp.IsSuccess() {
		return "", &model.HTTPError{
			StatusCode: resp.StatusCode(),
			RetryAfter: model.ParseRetryAfter(resp.Header().Get("Retry-After")),
			Err:        fmt.Errorf("huggingface request: unexpected status"),
		}
	}

	var generations []hfGeneration
	if err := json.Unmarshal(resp.Body(), &generations); err != nil {
		return "", fmt.Errorf("huggingface response: %w", err)
	}
	if len(generations) == 0 {
		return "", errNoAssistantText
	}

	text := generations[0].GeneratedText
	idx := strings.LastIndex(text, assistantMarker)
	if idx < 0 {
		return "", errNoAssistantText
	}
	return strings.TrimSpace(text[idx+len(assistantMarker):]), nil
}

// FlattenPrompt renders messages as "System:", "User:" and "Assistant:"
// lines, ending with an open "Assistant:" turn.
func FlattenPrompt(messages []model.Message) string {
	var b strings.Builder
	for _, m := range messages {
		switch m.Role {
		case model.RoleSystem:
			b.WriteString("System: ")
		case model.RoleAssistant:
			b.WriteString("Assistant: ")
		default:
			b.WriteString("User: ")
		}
		b.WriteString(m.Content)
		b.WriteByte('\n')
	}
	b.WriteString(assistantMarker)
	return b.String()
}
