package middleware

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/linguasaurus-bot/internal/dto"
	appErrors "github.com/noah-isme/linguasaurus-bot/pkg/errors"
	"github.com/noah-isme/linguasaurus-bot/pkg/logger"
)

// Logging writes one structured line per handled update.
func Logging(l *zap.Logger) Middleware {
	if l == nil {
		l = zap.NewNop()
	}
	return func(next UpdateHandler) UpdateHandler {
		return func(ctx context.Context, update dto.Update) error {
			start := time.Now()
			err := next(ctx, update)

			fields := []zap.Field{
				zap.Int("update_id", update.ID),
				zap.String("kind", string(update.Kind)),
				zap.Int64("actor_id", update.Actor.ID),
				zap.Duration("latency", time.Since(start)),
			}
			if update.Command != nil {
				fields = append(fields, zap.String("command", update.Command.Name))
			}
			if update.Callback != nil {
				fields = append(fields, zap.String("action", update.Callback.Data))
			}
			log := logger.FromContext(ctx, l)
			switch {
			case err == nil:
			case appErrors.UserFacing(err):
				log.Debug("update_rejected", append(fields, zap.String("reason", err.Error()))...)
				return err
			default:
				log.Warn("update_failed", append(fields, zap.Error(err))...)
				return err
			}
			log.Debug("update_handled", fields...)
			return nil
		}
	}
}
