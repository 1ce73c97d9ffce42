package chat

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/amishk599/folio/internal/model"
)

//go:embed system_prompt.md
var systemPromptTemplate string

const resumePlaceholder = "{{RESUME_JSON}}"

// SystemPrompt renders the assistant's system prompt with r embedded as
// indented JSON.
func SystemPrompt(r model.Resume) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal resume for prompt: %w", err)
	}
	return strings.Replace(strings.TrimSpace(systemPromptTemplate), resumePlaceholder, string(data), 1), nil
}

// BuildMessages assembles the provider conversation: system prompt, the last
// model.MaxHistory history entries, then the user's message. History entries
// with a role other than user or assistant are dropped.
func BuildMessages(systemPrompt, message string, history []model.HistoryEntry) []model.Message {
	recent := model.LastN(history, model.MaxHistory)
	msgs := make([]model.Message, 0, len(recent)+2)
	msgs = append(msgs, model.Message{Role: model.RoleSystem, Content: systemPrompt})
	for _, h := range recent {
		if h.Role != model.RoleUser && h.Role != model.RoleAssistant {
			continue
		}
		msgs = append(msgs, model.Message{Role: h.Role, Content: h.Content})
	}
	msgs = append(msgs, model.Message{Role: model.RoleUser, Content: message})
	return msgs
}
