package handler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/nightcafe/promobot/internal/middleware"
	"github.com/nightcafe/promobot/internal/telegram"
)

func (h *Handler) handleStatsCommand(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	actor := middleware.GetActor(ctx)
	if actor == nil {
		return
	}
	chatID := update.Message.Chat.ID

	if !actor.IsAdmin {
		telegram.SendText(ctx, b, chatID, "У вас нет прав для этой команды.")
		return
	}

	h.sendStats(ctx, b, chatID)
}

func (h *Handler) handleAdminStats(ctx context.Context, b *bot.Bot, update *models.Update) {
	query := update.CallbackQuery
	if query == nil || query.Message.Message == nil {
		return
	}
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: query.ID})

	actor := middleware.GetActor(ctx)
	if actor == nil || !actor.IsAdmin {
		return
	}

	h.sendStats(ctx, b, query.Message.Message.Chat.ID)
}

func (h *Handler) sendStats(ctx context.Context, b *bot.Bot, chatID int64) {
	stats, err := h.promo.Stats(ctx)
	if err != nil {
		slog.Error("promo stats", "error", err)
		telegram.SendText(ctx, b, chatID, "Произошла ошибка. Попробуйте позже.")
		return
	}

	telegram.SendText(ctx, b, chatID, fmt.Sprintf(
		"📊 Статистика промо-кодов:\n\n"+
			"• Всего сгенерировано: %d\n"+
			"• Выдано пользователям: %d\n"+
			"• Использовано: %d\n"+
			"• Активных: %d\n\n"+
			"Шаблон скидки: %s",
		stats.Total, stats.Issued, stats.Used, stats.Active,
		h.cfg.DiscountTemplate,
	))
}
