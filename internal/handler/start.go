package handler

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/nightcafe/promobot/internal/middleware"
	"github.com/nightcafe/promobot/internal/telegram"
)

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	actor := middleware.GetActor(ctx)
	if actor == nil {
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text: fmt.Sprintf(
			"Привет, %s! 👋\n\nЯ бот для управления промо-кодами.\n\nВыберите действие:",
			actor.FirstName,
		),
		ReplyMarkup: h.mainKeyboard(actor),
	})
}

func (h *Handler) mainKeyboard(actor *middleware.Actor) *models.InlineKeyboardMarkup {
	rows := [][]models.InlineKeyboardButton{
		telegram.ButtonRow(telegram.InlineButton("🎁 Получить промо-код", "get_promo")),
		telegram.ButtonRow(telegram.InlineButton("ℹ️ Помощь", "help")),
	}
	if actor.IsAdmin {
		rows = append(rows,
			telegram.ButtonRow(telegram.InlineButton("📱 Сканировать QR-код", "scan_qr")),
			telegram.ButtonRow(telegram.InlineButton("👑 Админ-статистика", "admin_stats")),
		)
	}
	return telegram.InlineKeyboard(rows...)
}
