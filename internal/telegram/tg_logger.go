package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/nightcafe/promobot/internal/config"
)

// TelegramLogger mirrors business events into a staff log chat. Disabled when
// no log chat is configured.
type TelegramLogger struct {
	bot *bot.Bot
	cfg *config.Config
}

func NewTelegramLogger(b *bot.Bot, cfg *config.Config) *TelegramLogger {
	return &TelegramLogger{bot: b, cfg: cfg}
}

type LogType string

const (
	LogTypeError  LogType = "error"
	LogTypeIssue  LogType = "issue"
	LogTypeRedeem LogType = "redeem"
)

func (l *TelegramLogger) Log(logType LogType, message string) {
	if l.cfg.LogTelegramChatID == 0 {
		return
	}

	topicID := l.getTopicID(logType)
	if topicID == 0 {
		return
	}

	if len([]rune(message)) > config.MaxTelegramMessageLen {
		message = string([]rune(message)[:config.MaxTelegramMessageLen-20]) + "\n\n... (truncated)"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := l.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          l.cfg.LogTelegramChatID,
		Text:            message,
		ParseMode:       "Markdown",
		MessageThreadID: topicID,
	})
	if err != nil {
		slog.Error("failed to send telegram log", "type", logType, "error", err)
	}
}

func (l *TelegramLogger) LogError(err error, context string) {
	msg := fmt.Sprintf("❌ *Error*\n\n*Context:* %s\n*Error:* `%s`\n*Time:* %s",
		context, err.Error(), time.Now().Format("2006-01-02 15:04:05"))
	l.Log(LogTypeError, msg)
}

func (l *TelegramLogger) LogIssue(identity, code, discount string) {
	msg := fmt.Sprintf("🎟 *Code Issued*\n\n*User:* %s\n*Code:* `%s`\n*Discount:* %s",
		identity, code, discount)
	l.Log(LogTypeIssue, msg)
}

func (l *TelegramLogger) LogRedeem(actor, code, discount string) {
	msg := fmt.Sprintf("✅ *Code Redeemed*\n\n*Staff:* %s\n*Code:* `%s`\n*Discount:* %s",
		actor, code, discount)
	l.Log(LogTypeRedeem, msg)
}

func (l *TelegramLogger) getTopicID(logType LogType) int {
	switch logType {
	case LogTypeError:
		return l.cfg.LogTopicError
	case LogTypeIssue:
		return l.cfg.LogTopicIssue
	case LogTypeRedeem:
		return l.cfg.LogTopicRedeem
	default:
		return 0
	}
}
