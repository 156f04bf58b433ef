package notifier

import (
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/amishk599/jobrank/internal/model"
)

var _ model.Notifier = (*TelegramNotifier)(nil)

// TelegramNotifier sends one HTML message per posting to a Telegram chat.
type TelegramNotifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
	logger *slog.Logger
}

// NewTelegramNotifier authenticates the bot token. endpoint is the Bot API
// URL pattern; empty selects the public API.
func NewTelegramNotifier(token string, chatID int64, endpoint string, client *http.Client, logger *slog.Logger) (*TelegramNotifier, error) {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	api, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram bot login: %w", err)
	}
	return &TelegramNotifier{api: api, chatID: chatID, logger: logger}, nil
}

// Notify sends each posting. It returns an error only if every send failed.
func (t *TelegramNotifier) Notify(jobs []model.Job) error {
	if len(jobs) == 0 {
		return nil
	}

	failures := 0
	for _, j := range jobs {
		msg := tgbotapi.NewMessage(t.chatID, formatTelegram(j))
		msg.ParseMode = tgbotapi.ModeHTML
		msg.DisableWebPagePreview = true
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL("View job", j.Link)),
		)
		if _, err := t.api.Send(msg); err != nil {
			t.logger.Error("telegram notification failed", "company", j.Company, "title", j.Title, "error", err)
			failures++
		}
	}

	if failures == len(jobs) {
		return fmt.Errorf("all %d telegram notifications failed", failures)
	}
	t.logger.Info("telegram notifications complete", "sent", len(jobs)-failures, "failed", failures)
	return nil
}

func formatTelegram(j model.Job) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b> at <b>%s</b>\n", html.EscapeString(j.Title), html.EscapeString(capitalize(j.Company)))
	if j.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", html.EscapeString(j.Location))
	}
	fmt.Fprintf(&b, "Score: %.1f\n", j.Score)
	fmt.Fprintf(&b, "Skills: %s\n", html.EscapeString(skillsText(j)))
	if m := matchText(j); m != "" {
		fmt.Fprintf(&b, "Resume match: %s\n", m)
	}
	fmt.Fprintf(&b, "Posted: %s\n", postedText(j))
	if j.CVPath != "" {
		fmt.Fprintf(&b, "CV: <code>%s</code>\n", html.EscapeString(j.CVPath))
	}
	fmt.Fprintf(&b, `<a href="%s">Apply</a>`, html.EscapeString(j.Link))
	return b.String()
}
