package service

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// MembershipService answers whether a user is subscribed to the required
// channel. Issue is gated on this outside the lifecycle manager.
type MembershipService struct {
	bot     *bot.Bot
	channel string
}

func NewMembershipService(b *bot.Bot, channel string) *MembershipService {
	return &MembershipService{bot: b, channel: channel}
}

func (s *MembershipService) IsMember(ctx context.Context, userID int64) (bool, error) {
	member, err := s.bot.GetChatMember(ctx, &bot.GetChatMemberParams{
		ChatID: s.channel,
		UserID: userID,
	})
	if err != nil {
		return false, fmt.Errorf("get chat member: %w", err)
	}

	switch member.Type {
	case models.ChatMemberTypeOwner,
		models.ChatMemberTypeAdministrator,
		models.ChatMemberTypeMember:
		return true, nil
	default:
		return false, nil
	}
}
