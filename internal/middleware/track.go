package middleware

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/linguasaurus-bot/internal/dto"
	"github.com/noah-isme/linguasaurus-bot/pkg/logger"
)

// UserTracker records users as they interact with the bot.
type UserTracker interface {
	Track(ctx context.Context, id int64, username string) error
}

// TrackUser upserts the acting user before the update is handled. A registry
// failure is logged and does not block the update.
func TrackUser(tracker UserTracker, l *zap.Logger) Middleware {
	if l == nil {
		l = zap.NewNop()
	}
	return func(next UpdateHandler) UpdateHandler {
		return func(ctx context.Context, update dto.Update) error {
			if update.Actor.ID != 0 {
				if err := tracker.Track(ctx, update.Actor.ID, update.Actor.Username); err != nil {
					logger.FromContext(ctx, l).Error("track user failed", zap.Int64("actor_id", update.Actor.ID), zap.Error(err))
				}
			}
			return next(ctx, update)
		}
	}
}
