package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/folio/internal/model"
)

// Ensure SlackNotifier implements model.Notifier.
var _ model.Notifier = (*SlackNotifier)(nil)

// slackTopTopics is the number of topics listed in a Slack digest.
const slackTopTopics = 5

// SlackNotifier sends chat digests to a Slack channel via Incoming Webhooks.
type SlackNotifier struct {
	webhookURL string
	title      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSlackNotifier returns a notifier that posts digests to Slack via webhook.
// title names the portfolio in the message header.
func NewSlackNotifier(webhookURL, title string, httpClient *http.Client, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		title:      title,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Notify posts the digest as a Block Kit message. Digests with no activity
// are not sent.
func (s *SlackNotifier) Notify(stats model.ChatStats) error {
	if stats.Total == 0 {
		s.logger.Debug("slack digest skipped, no activity")
		return nil
	}

	body, err := json.Marshal(buildPayload(s.title, stats))
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	resp, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		secs, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		if secs <= 0 {
			secs = 1
		}
		s.logger.Warn("slack rate limited, retrying", "retry_after_secs", secs)
		time.Sleep(time.Duration(secs) * time.Second)

		resp2, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("post to slack (retry): %w", err)
		}
		defer resp2.Body.Close()

		if resp2.StatusCode != http.StatusOK {
			return fmt.Errorf("slack returned %d on retry", resp2.StatusCode)
		}
		s.logger.Info("slack digest sent", "total", stats.Total, "retried", true)
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack returned %d", resp.StatusCode)
	}
	s.logger.Info("slack digest sent", "total", stats.Total)
	return nil
}

// Block Kit payload types.

type slackPayload struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string      `json:"type"`
	Text     *slackText  `json:"text,omitempty"`
	Fields   []slackText `json:"fields,omitempty"`
	Elements []slackText `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func buildPayload(title string, stats model.ChatStats) slackPayload {
	header := "💬 Chat digest"
	if title != "" {
		header += ": " + title
	}

	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: header},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*Questions:*\n" + strconv.Itoa(stats.Total)},
				{Type: "mrkdwn", Text: "*Avg latency:*\n" + stats.AvgLatency.Round(time.Millisecond).String()},
			},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*AI answers:*\n" + strconv.Itoa(stats.LLM)},
				{Type: "mrkdwn", Text: "*Keyword answers:*\n" + strconv.Itoa(stats.Keyword)},
			},
		},
	}

	if top := TopTopics(stats, slackTopTopics); len(top) > 0 {
		lines := make([]string, len(top))
		for i, tc := range top {
			lines[i] = fmt.Sprintf("• %s: %d", tc.Topic, tc.Count)
		}
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: "*Top topics:*\n" + strings.Join(lines, "\n")},
		})
	}

	blocks = append(blocks,
		slackBlock{
			Type:     "context",
			Elements: []slackText{{Type: "mrkdwn", Text: "Since " + stats.Since.Format(time.RFC1123)}},
		},
		slackBlock{Type: "divider"},
	)

	return slackPayload{Blocks: blocks}
}
