package middleware

import (
	"context"
	"time"

	"github.com/noah-isme/linguasaurus-bot/internal/dto"
	"github.com/noah-isme/linguasaurus-bot/internal/service"
	appErrors "github.com/noah-isme/linguasaurus-bot/pkg/errors"
)

// Metrics records the outcome and latency of every update.
func Metrics(metricsSvc *service.MetricsService) Middleware {
	return func(next UpdateHandler) UpdateHandler {
		if metricsSvc == nil {
			return next
		}
		return func(ctx context.Context, update dto.Update) error {
			start := time.Now()
			err := next(ctx, update)
			metricsSvc.ObserveUpdate(string(update.Kind), outcome(err), time.Since(start))
			return err
		}
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return service.OutcomeOK
	case appErrors.UserFacing(err):
		return service.OutcomeRejected
	default:
		return service.OutcomeError
	}
}
