package handler

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/nightcafe/promobot/internal/middleware"
	"github.com/nightcafe/promobot/internal/telegram"
)

func (h *Handler) handleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	query := update.CallbackQuery
	if query == nil || query.Message.Message == nil {
		return
	}
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: query.ID})

	actor := middleware.GetActor(ctx)
	if actor == nil {
		return
	}

	chatID := query.Message.Message.Chat.ID
	messageID := query.Message.Message.ID

	if actor.IsAdmin {
		telegram.EditText(ctx, b, chatID, messageID, fmt.Sprintf(
			"🤖 Помощь по боту\n\n"+
				"Для клиентов:\n"+
				"• Нажмите «Получить промо-код» для получения скидки\n"+
				"• Подпишитесь на канал, если еще не подписаны\n"+
				"• Покажите QR-код на кассе для активации скидки\n\n"+
				"Для персонала:\n"+
				"• Отправьте фото QR-кода или сам код для активации\n"+
				"• Код будет автоматически отмечен как использованный\n\n"+
				"Формат кода: %s + %d символов",
			h.cfg.CodePrefix, h.cfg.CodeLength), nil)
		return
	}

	telegram.EditText(ctx, b, chatID, messageID,
		"🤖 Помощь по боту\n\n"+
			"• Подпишитесь на канал, если еще не подписаны\n"+
			"• Нажмите «Получить промо-код» для получения скидки\n"+
			"• Покажите QR-код на кассе для активации скидки", nil)
}
