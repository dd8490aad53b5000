package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Core
	BotToken        string `env:"BOT_TOKEN,required"`
	DatabaseURL     string `env:"DATABASE_URL,required"`
	ChannelUsername string `env:"CHANNEL_USERNAME,required"`

	// Staff allowed to redeem codes, as @usernames
	AdminUsernames []string `env:"ADMIN_USER_NAMES" envSeparator:","`

	// Code format
	CodePrefix string `env:"CODE_PREFIX" envDefault:"DC"`
	CodeLength int    `env:"CODE_LENGTH" envDefault:"8"`

	// Discount template printed on every issued code
	DiscountTemplate string `env:"DISCOUNT_TEMPLATE" envDefault:"10%"`

	// Telegram logging
	LogTelegramChatID int64 `env:"LOG_TELEGRAM_CHAT_ID"`
	LogTopicError     int   `env:"LOG_TOPIC_ERROR"`
	LogTopicIssue     int   `env:"LOG_TOPIC_ISSUE"`
	LogTopicRedeem    int   `env:"LOG_TOPIC_REDEEM"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// IsAdmin reports whether the identity belongs to the staff list.
func (c *Config) IsAdmin(identity string) bool {
	for _, name := range c.AdminUsernames {
		if strings.EqualFold(strings.TrimSpace(name), identity) {
			return true
		}
	}
	return false
}

// CodeTotalLength is the length of a fully formatted code.
func (c *Config) CodeTotalLength() int {
	return len(c.CodePrefix) + c.CodeLength
}

// ChannelLink returns a public https link to the required channel.
func (c *Config) ChannelLink() string {
	return "https://t.me/" + strings.TrimPrefix(c.ChannelUsername, "@")
}
