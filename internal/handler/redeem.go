package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/nightcafe/promobot/internal/domain"
	"github.com/nightcafe/promobot/internal/middleware"
	"github.com/nightcafe/promobot/internal/telegram"
)

// HandlePhoto redeems a code scanned from a staff-submitted QR photo.
func (h *Handler) HandlePhoto(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || len(update.Message.Photo) == 0 {
		return
	}

	actor := middleware.GetActor(ctx)
	if actor == nil {
		return
	}
	chatID := update.Message.Chat.ID

	if !actor.IsAdmin {
		telegram.SendText(ctx, b, chatID, "Только администраторы могут применить промокод")
		return
	}

	// Largest size is last
	photo := update.Message.Photo[len(update.Message.Photo)-1]
	data, err := telegram.DownloadFile(ctx, b, photo.FileID)
	if err != nil {
		slog.Error("download photo", "error", err)
		telegram.SendText(ctx, b, chatID, "Произошла ошибка. Попробуйте позже.")
		return
	}

	code, err := h.qr.Decode(data)
	if err != nil {
		slog.Warn("qr decode failed", "error", err)
		telegram.SendText(ctx, b, chatID,
			"❌ QR-код не найден на изображении. Убедитесь, что фото четкое и код хорошо виден.")
		return
	}

	h.redeemAndReply(ctx, b, chatID, actor, code)
}

// HandleText redeems codes typed in manually by staff.
func (h *Handler) HandleText(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	actor := middleware.GetActor(ctx)
	if actor == nil {
		return
	}
	chatID := update.Message.Chat.ID
	text := strings.TrimSpace(update.Message.Text)

	if !actor.IsAdmin {
		telegram.SendText(ctx, b, chatID, "Только администраторы могут применить промокод")
		return
	}

	if !h.promo.LooksLikeCode(text) {
		telegram.SendText(ctx, b, chatID, "Отправьте мне QR-код или промо-код для активации")
		return
	}

	h.redeemAndReply(ctx, b, chatID, actor, text)
}

func (h *Handler) redeemAndReply(ctx context.Context, b *bot.Bot, chatID int64, actor *middleware.Actor, code string) {
	pc, err := h.promo.Redeem(ctx, code, actor.Identity)
	if err != nil {
		telegram.SendText(ctx, b, chatID, redeemErrorMessage(err))
		if !isBusinessOutcome(err) {
			slog.Error("redeem promo code", "code", code, "error", err)
			h.tgLogger.LogError(err, "redeem promo code")
		}
		return
	}

	telegram.SendText(ctx, b, chatID,
		fmt.Sprintf("✅ Код '%s' на скидку %s успешно применен!", pc.Code, pc.DiscountValue))
	h.tgLogger.LogRedeem(actor.Identity, pc.Code, pc.DiscountValue)

	h.sendCodeDetails(ctx, b, chatID, pc.Code)
}

// sendCodeDetails shows staff the full record of the code they just handled.
func (h *Handler) sendCodeDetails(ctx context.Context, b *bot.Bot, chatID int64, code string) {
	pc, err := h.promo.Lookup(ctx, code)
	if err != nil {
		return
	}

	status := "Активен"
	if pc.IsUsed {
		status = "Использован"
	}
	usedAt := "Еще нет"
	if pc.UsedAt != nil {
		usedAt = pc.UsedAt.Format("2006-01-02 15:04:05")
	}

	telegram.SendText(ctx, b, chatID, fmt.Sprintf(
		"📋 Детали кода:\n"+
			"• Код: %s\n"+
			"• Скидка: %s\n"+
			"• Статус: %s\n"+
			"• Создан: %s\n"+
			"• Выдан пользователю: %s\n"+
			"• Использован: %s",
		pc.Code, pc.DiscountValue, status,
		pc.CreatedAt.Format("2006-01-02 15:04:05"), pc.IssuedTo, usedAt,
	))
}

func redeemErrorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrCodeNotFound):
		return "❌ Код не найден"
	case errors.Is(err, domain.ErrNotIssued):
		return "❌ Код не был выдан пользователю"
	case errors.Is(err, domain.ErrAlreadyUsed):
		return "❌ Код уже использован"
	default:
		return "❌ Ошибка при активации промокода."
	}
}

func isBusinessOutcome(err error) bool {
	return errors.Is(err, domain.ErrCodeNotFound) ||
		errors.Is(err, domain.ErrNotIssued) ||
		errors.Is(err, domain.ErrAlreadyUsed)
}
