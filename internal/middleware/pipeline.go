package middleware

import (
	"context"
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/noah-isme/linguasaurus-bot/internal/dto"
	"github.com/noah-isme/linguasaurus-bot/pkg/middleware/requestid"
)

// UpdateHandler processes one inbound update.
type UpdateHandler func(ctx context.Context, update dto.Update) error

// Middleware decorates an UpdateHandler.
type Middleware func(next UpdateHandler) UpdateHandler

// Chain wraps h so that the first middleware runs outermost.
func Chain(h UpdateHandler, mws ...Middleware) UpdateHandler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// Recover turns a panic in the handler into an error.
func Recover(logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next UpdateHandler) UpdateHandler {
		return func(ctx context.Context, update dto.Update) (err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("panic while handling update",
						zap.Int("update_id", update.ID),
						zap.Any("panic", r),
						zap.ByteString("stack", debug.Stack()),
					)
					err = fmt.Errorf("panic: %v", r)
				}
			}()
			return next(ctx, update)
		}
	}
}

// RequestID assigns a correlation id to each update and stores it in the context.
func RequestID() Middleware {
	return func(next UpdateHandler) UpdateHandler {
		return func(ctx context.Context, update dto.Update) error {
			if update.RequestID == "" {
				update.RequestID = requestid.New()
			}
			return next(requestid.WithValue(ctx, update.RequestID), update)
		}
	}
}
