package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/amishk599/jobrank/internal/model"
)

var _ model.Notifier = (*SlackNotifier)(nil)

const slackPause = 500 * time.Millisecond

// SlackNotifier posts postings to a Slack channel via an Incoming Webhook.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
	pause      time.Duration // between messages
}

// NewSlackNotifier returns a notifier that posts each posting as its own message.
func NewSlackNotifier(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
		pause:      slackPause,
	}
}

// Notify sends each posting as a Block Kit message. It returns an error only
// if every message failed; individual failures are logged.
func (s *SlackNotifier) Notify(jobs []model.Job) error {
	if len(jobs) == 0 {
		return nil
	}

	failures := 0
	for i, j := range jobs {
		if i > 0 && s.pause > 0 {
			time.Sleep(s.pause)
		}
		if err := s.send(j); err != nil {
			s.logger.Error("slack notification failed", "company", j.Company, "title", j.Title, "error", err)
			failures++
		}
	}

	if failures == len(jobs) {
		return fmt.Errorf("all %d slack notifications failed", failures)
	}
	s.logger.Info("slack notifications complete", "sent", len(jobs)-failures, "failed", failures)
	return nil
}

// send posts one message, retrying once when Slack rate limits.
func (s *SlackNotifier) send(j model.Job) error {
	body, err := json.Marshal(buildPayload(j))
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	for attempt := 0; ; attempt++ {
		resp, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("post to slack: %w", err)
		}
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			s.logger.Debug("slack message sent", "company", j.Company, "title", j.Title, "retried", attempt > 0)
			return nil
		case resp.StatusCode == http.StatusTooManyRequests && attempt == 0:
			secs, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
			if secs <= 0 {
				secs = 1
			}
			s.logger.Warn("slack rate limited, retrying", "retry_after_secs", secs)
			time.Sleep(time.Duration(secs) * time.Second)
		default:
			return fmt.Errorf("slack returned %d", resp.StatusCode)
		}
	}
}

// Block Kit payload types.

type slackPayload struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string         `json:"type"`
	Text     *slackText     `json:"text,omitempty"`
	Fields   []slackText    `json:"fields,omitempty"`
	Elements []slackElement `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackElement struct {
	Type  string    `json:"type"`
	Text  slackText `json:"text"`
	URL   string    `json:"url"`
	Style string    `json:"style"`
}

func mrkdwn(label, value string) slackText {
	return slackText{Type: "mrkdwn", Text: "*" + label + ":*\n" + value}
}

func buildPayload(j model.Job) slackPayload {
	company := capitalize(j.Company)

	scoreFields := []slackText{
		mrkdwn("Score", strconv.FormatFloat(j.Score, 'f', 1, 64)),
		mrkdwn("Skills", skillsText(j)),
	}
	if m := matchText(j); m != "" {
		scoreFields = append(scoreFields, mrkdwn("Resume match", m))
	}
	if j.CVPath != "" {
		scoreFields = append(scoreFields, mrkdwn("Tailored CV", "`"+j.CVPath+"`"))
	}

	return slackPayload{Blocks: []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: company + ": " + j.Title},
		},
		{
			Type:   "section",
			Fields: []slackText{mrkdwn("Company", company), mrkdwn("Location", j.Location)},
		},
		{
			Type:   "section",
			Fields: []slackText{mrkdwn("Posted", postedText(j)), mrkdwn("Source", capitalize(j.Source))},
		},
		{
			Type:   "section",
			Fields: scoreFields,
		},
		{
			Type: "actions",
			Elements: []slackElement{{
				Type:  "button",
				Text:  slackText{Type: "plain_text", Text: "Apply"},
				URL:   j.Link,
				Style: "primary",
			}},
		},
		{Type: "divider"},
	}}
}
