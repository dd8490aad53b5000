package middleware

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

type ctxKey string

const ActorKey ctxKey = "actor"

// Actor is the resolved sender of an update. Identity is the opaque string
// every code is keyed on.
type Actor struct {
	TelegramID int64
	Identity   string
	FirstName  string
	IsAdmin    bool
}

// GetActor extracts the actor from context.
func GetActor(ctx context.Context) *Actor {
	a, ok := ctx.Value(ActorKey).(*Actor)
	if !ok {
		return nil
	}
	return a
}

// IdentityFor derives the stable identity string for a Telegram user. Users
// without a public username fall back to their numeric id so the identity is
// never empty.
func IdentityFor(u *models.User) string {
	if u.Username != "" {
		return "@" + u.Username
	}
	return fmt.Sprintf("id:%d", u.ID)
}

// ActorLoader returns middleware that resolves the sender into the context.
func ActorLoader(cfg interface{ IsAdmin(string) bool }) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			var from *models.User

			if update.Message != nil {
				from = update.Message.From
			} else if update.CallbackQuery != nil {
				from = &update.CallbackQuery.From
			}

			if from == nil {
				next(ctx, b, update)
				return
			}

			identity := IdentityFor(from)
			actor := &Actor{
				TelegramID: from.ID,
				Identity:   identity,
				FirstName:  from.FirstName,
				IsAdmin:    cfg.IsAdmin(identity),
			}

			next(context.WithValue(ctx, ActorKey, actor), b, update)
		}
	}
}
