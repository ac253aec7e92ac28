package handler

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/linguasaurus-bot/internal/dto"
	"github.com/noah-isme/linguasaurus-bot/internal/navigation"
	appErrors "github.com/noah-isme/linguasaurus-bot/pkg/errors"
	"github.com/noah-isme/linguasaurus-bot/pkg/logger"
	"github.com/noah-isme/linguasaurus-bot/pkg/response"
)

// Reporter turns handler failures into user notices. Failures the user cannot fix
// are logged for operators and shown as a generic notice.
type Reporter struct {
	messenger Messenger
	logger    *zap.Logger
}

// NewReporter constructs a Reporter.
func NewReporter(messenger Messenger, l *zap.Logger) *Reporter {
	if l == nil {
		l = zap.NewNop()
	}
	return &Reporter{messenger: messenger, logger: l}
}

// ReportMessage answers a command or document with a notice.
func (r *Reporter) ReportMessage(ctx context.Context, update dto.Update, err error) {
	notice := r.notice(ctx, update, err)
	view := dto.View{Text: notice}
	if operatorFacing(err) {
		view = navigation.Notice(notice)
	}
	if _, sendErr := r.messenger.SendText(ctx, update.Actor.ChatID, view); sendErr != nil {
		logger.FromContext(ctx, r.logger).Warn("failed to deliver notice", zap.Int64("chat_id", update.Actor.ChatID), zap.Error(sendErr))
	}
}

// ReportCallback answers a button press with an alert. Menus that could not be
// rendered are replaced with a neutral notice.
func (r *Reporter) ReportCallback(ctx context.Context, update dto.Update, err error) {
	notice := r.notice(ctx, update, err)
	log := logger.FromContext(ctx, r.logger)
	if ackErr := r.messenger.AnswerCallback(ctx, update.Callback.ID, notice, true); ackErr != nil {
		log.Debug("answer callback failed", zap.Error(ackErr))
	}
	if !operatorFacing(err) {
		return
	}
	if editErr := r.messenger.EditText(ctx, update.Actor.ChatID, update.Callback.MessageID, navigation.Notice(notice)); editErr != nil {
		log.Warn("failed to replace menu", zap.Int64("chat_id", update.Actor.ChatID), zap.Error(editErr))
	}
}

func (r *Reporter) notice(ctx context.Context, update dto.Update, err error) string {
	if operatorFacing(err) {
		logger.FromContext(ctx, r.logger).Error("update failed",
			zap.Int("update_id", update.ID),
			zap.String("kind", string(update.Kind)),
			zap.Int64("actor_id", update.Actor.ID),
			zap.Error(err),
		)
	}
	return response.Notice(err)
}

// operatorFacing reports errors that are not the user's doing.
func operatorFacing(err error) bool {
	return !appErrors.UserFacing(err)
}
