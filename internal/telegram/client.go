// Package telegram provides a client for sending prediction reports via Telegram Bot API.
// It formats a prediction into a MarkdownV2 message and handles delivery with retry
// logic for reliability.
package telegram

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/rewired-gh/quantumscout/internal/models"
)

// Client handles Telegram notifications
type Client struct {
	bot            *tgbotapi.BotAPI
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
}

// NewClient creates a new Telegram client
func NewClient(botToken, chatID string, maxRetries int, retryDelayBase time.Duration) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}

	return &Client{
		bot:            bot,
		chatID:         chatIDInt,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}, nil
}

// Send posts the prediction report
func (c *Client) Send(p *models.Prediction) error {
	msg := tgbotapi.NewMessage(c.chatID, formatMessage(p))
	msg.ParseMode = "MarkdownV2"

	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		_, err := c.bot.Send(msg)
		if err == nil {
			return nil
		}
		lastErr = err
		time.Sleep(c.retryDelayBase * time.Duration(i+1))
	}

	return fmt.Errorf("failed to send message after %d retries: %w", c.maxRetries, lastErr)
}

// formatMessage formats a prediction into a Telegram message
func formatMessage(p *models.Prediction) string {
	var b strings.Builder

	b.WriteString("🔮 *" + escapeMarkdownV2(p.Alliance.Title()) + "*\n\n")
	fmt.Fprintf(&b, "📅 Event: %s\n", escapeMarkdownV2(p.Event))
	fmt.Fprintf(&b, "🎲 Shots: %d, matches per team: %d\n", p.Shots, p.MatchCount)
	fmt.Fprintf(&b, "🎯 Most likely score: *%d* \\(%s\\)\n",
		p.MostLikely, escapeMarkdownV2(fmt.Sprintf("%.2f%%", p.MostLikelyProb)))

	if len(p.Ranges) > 0 {
		b.WriteString("\n📊 Ranges:\n")
		for _, r := range p.Ranges {
			line := fmt.Sprintf("%s: %.2f%%", formatRange(r.Start, r.End), r.Probability)
			if r.EndMissing {
				line += " (end not observed)"
			}
			b.WriteString("   " + escapeMarkdownV2(line) + "\n")
		}
	}

	if len(p.Points) > 0 {
		b.WriteString("\n📍 Scores:\n")
		for _, pt := range p.Points {
			b.WriteString("   " + escapeMarkdownV2(fmt.Sprintf("%d: %.2f%%", pt.Value, pt.Probability)) + "\n")
		}
	}

	return b.String()
}

// formatRange renders a query with -1 as an open side
func formatRange(start, end int) string {
	switch {
	case start == -1 && end == -1:
		return "all"
	case start == -1:
		return fmt.Sprintf("< %d", end)
	case end == -1:
		return fmt.Sprintf(">= %d", start)
	default:
		return fmt.Sprintf("[%d, %d)", start, end)
	}
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2
func escapeMarkdownV2(text string) string {
	// Characters that need escaping in MarkdownV2:
	// _ * [ ] ( ) ~ ` > # + - = | { } . !
	var b strings.Builder
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!':
			b.WriteRune('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}
