package config

const (
	// Bounded attempts for issuing a unique code
	MaxGenerateAttempts = 10

	// QR image side in pixels
	QRImageSize = 256

	// Telegram limits
	MaxTelegramMessageLen = 4096
)
