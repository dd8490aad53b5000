package handler

import (
	"github.com/go-telegram/bot"
	"github.com/nightcafe/promobot/internal/config"
	"github.com/nightcafe/promobot/internal/qr"
	"github.com/nightcafe/promobot/internal/service"
	"github.com/nightcafe/promobot/internal/telegram"
)

// Handler holds all dependencies needed by command and callback handlers.
type Handler struct {
	bot        *bot.Bot
	cfg        *config.Config
	promo      *service.PromoService
	membership *service.MembershipService
	qr         *qr.Generator
	tgLogger   *telegram.TelegramLogger
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Bot        *bot.Bot
	Cfg        *config.Config
	Promo      *service.PromoService
	Membership *service.MembershipService
	QR         *qr.Generator
	TgLogger   *telegram.TelegramLogger
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		bot:        deps.Bot,
		cfg:        deps.Cfg,
		promo:      deps.Promo,
		membership: deps.Membership,
		qr:         deps.QR,
		tgLogger:   deps.TgLogger,
	}
}
