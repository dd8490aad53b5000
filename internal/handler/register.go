package handler

import (
	"github.com/go-telegram/bot"
)

// Register registers all command and callback handlers on the bot instance.
func (h *Handler) Register() {
	// Commands
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, h.handleStart)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/stats", bot.MatchTypePrefix, h.handleStatsCommand)

	// Keyboard callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "get_promo", bot.MatchTypeExact, h.handleGetPromo)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "scan_qr", bot.MatchTypeExact, h.handleScanQR)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "admin_stats", bot.MatchTypeExact, h.handleAdminStats)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "help", bot.MatchTypeExact, h.handleHelp)

	// Note: photos and free-form text are routed via the default handler in main.go
}
