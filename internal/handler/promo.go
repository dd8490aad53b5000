package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/nightcafe/promobot/internal/domain"
	"github.com/nightcafe/promobot/internal/middleware"
	"github.com/nightcafe/promobot/internal/telegram"
)

// handleGetPromo issues a code to a subscribed user. Membership gates the
// issue call; the lifecycle manager itself only enforces one-per-identity.
func (h *Handler) handleGetPromo(ctx context.Context, b *bot.Bot, update *models.Update) {
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

	isMember, err := h.membership.IsMember(ctx, actor.TelegramID)
	if err != nil {
		slog.Error("membership check failed", "identity", actor.Identity, "error", err)
		h.tgLogger.LogError(err, "membership check")
		telegram.EditText(ctx, b, chatID, messageID, "Произошла ошибка. Попробуйте позже.", nil)
		return
	}

	if !isMember {
		markup := telegram.InlineKeyboard(
			telegram.ButtonRow(telegram.URLButton("Подписаться на канал", h.cfg.ChannelLink())),
		)
		telegram.EditText(ctx, b, chatID, messageID,
			"Чтобы получить промо-код, подпишитесь на наш канал!", markup)
		return
	}

	received, err := h.promo.HasReceivedCode(ctx, actor.Identity)
	if err != nil {
		slog.Error("issued-code lookup failed", "identity", actor.Identity, "error", err)
		telegram.EditText(ctx, b, chatID, messageID, "Произошла ошибка. Попробуйте позже.", nil)
		return
	}
	if received {
		telegram.EditText(ctx, b, chatID, messageID,
			"Вы уже получали свой промо-код! Спасибо за подписку!", nil)
		return
	}

	pc, err := h.promo.Issue(ctx, actor.Identity)
	if err != nil {
		if !errors.Is(err, domain.ErrGenerationFailed) {
			slog.Error("issue promo code", "identity", actor.Identity, "error", err)
		}
		telegram.EditText(ctx, b, chatID, messageID,
			"Произошла ошибка при получении кода 😒", nil)
		return
	}

	png, err := h.qr.Encode(pc.Code)
	if err != nil {
		slog.Error("encode qr", "code", pc.Code, "error", err)
		telegram.EditText(ctx, b, chatID, messageID,
			"Произошла ошибка при получении кода 😒", nil)
		return
	}

	caption := fmt.Sprintf(
		"🎉 Спасибо за подписку! Ваш промо-код на скидку %s.\nПокажите этот QR-код на кассе.",
		pc.DiscountValue,
	)
	if err := telegram.SendPhotoBytes(ctx, b, actor.TelegramID, "qrcode.png", png, caption); err != nil {
		slog.Error("send qr photo", "code", pc.Code, "error", err)
	}

	telegram.EditText(ctx, b, chatID, messageID, fmt.Sprintf(
		"Ваш код: %s\nСохраните его на случай, если QR-код не отсканируется.", pc.Code), nil)

	h.tgLogger.LogIssue(actor.Identity, pc.Code, pc.DiscountValue)
}

func (h *Handler) handleScanQR(ctx context.Context, b *bot.Bot, update *models.Update) {
	query := update.CallbackQuery
	if query == nil || query.Message.Message == nil {
		return
	}
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: query.ID})

	actor := middleware.GetActor(ctx)
	if actor == nil || !actor.IsAdmin {
		return
	}

	telegram.EditText(ctx, b,
		query.Message.Message.Chat.ID, query.Message.Message.ID,
		"📱 Отправьте мне фото QR-кода для сканирования.\n\n"+
			"Убедитесь, что:\n"+
			"• QR-код хорошо освещен\n"+
			"• Занимает большую часть фото\n"+
			"• Не размыт и не перекошен", nil)
}
