// Package notify posts a short run summary to a Telegram chat.
package notify

import (
	"fmt"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"carinfo/api/internal/report"
)

const maxListed = 20

type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	return NewTelegramWithClient(token, tgbotapi.APIEndpoint, chatID, &http.Client{})
}

// NewTelegramWithClient talks to endpoint, a format string taking the token
// and the method name like tgbotapi.APIEndpoint.
func NewTelegramWithClient(token, endpoint string, chatID int64, c *http.Client) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, c)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	bot.Debug = false
	return &Telegram{bot: bot, chatID: chatID}, nil
}

func (t *Telegram) Notify(s report.Summary, outputPath string) error {
	msg := tgbotapi.NewMessage(t.chatID, FormatSummary(s, outputPath))
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func FormatSummary(s report.Summary, outputPath string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Car info run finished: %d/%d images identified.\n", s.Succeeded, s.Total)
	if n := len(s.Failed); n > 0 {
		fmt.Fprintf(&b, "Without data (%d):\n", n)
		for i, f := range s.Failed {
			if i == maxListed {
				fmt.Fprintf(&b, "… and %d more\n", n-maxListed)
				break
			}
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}
	fmt.Fprintf(&b, "Report: %s", outputPath)
	return b.String()
}
