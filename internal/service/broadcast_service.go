package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/linguasaurus-bot/pkg/errors"
	"github.com/noah-isme/linguasaurus-bot/pkg/jobs"
)

const broadcastJobType = "broadcast_message"

// TextSender delivers a plain text message to one chat.
type TextSender interface {
	SendPlain(ctx context.Context, chatID int64, text string) error
}

type broadcastRecipients interface {
	UserIDs(ctx context.Context) ([]int64, error)
}

type broadcastPayload struct {
	ChatID int64
	Text   string
}

// BroadcastConfig tunes the delivery queue.
type BroadcastConfig struct {
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

// BroadcastService fans a message out to every registered user in the background.
type BroadcastService struct {
	users   broadcastRecipients
	sender  TextSender
	queue   *jobs.Queue[broadcastPayload]
	metrics *MetricsService
	logger  *zap.Logger
}

// NewBroadcastService wires the queue. Start must be called before Broadcast.
func NewBroadcastService(users broadcastRecipients, sender TextSender, cfg BroadcastConfig, metrics *MetricsService, logger *zap.Logger) *BroadcastService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &BroadcastService{users: users, sender: sender, metrics: metrics, logger: logger}
	svc.queue = jobs.NewQueue[broadcastPayload]("broadcast", svc.deliver, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return svc
}

// Start launches the delivery workers.
func (s *BroadcastService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop halts delivery and waits for in-flight sends.
func (s *BroadcastService) Stop() {
	s.queue.Stop()
}

// Broadcast queues text for every registered user and returns how many messages were queued.
func (s *BroadcastService) Broadcast(ctx context.Context, text string) (int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, appErrors.Clone(appErrors.ErrBadRequest, "broadcast text is empty")
	}
	ids, err := s.users.UserIDs(ctx)
	if err != nil {
		return 0, err
	}
	queued := 0
	for _, id := range ids {
		if _, err := s.queue.Enqueue(broadcastJobType, broadcastPayload{ChatID: id, Text: text}); err != nil {
			s.logger.Warn("broadcast enqueue failed", zap.Int64("chat_id", id), zap.Error(err))
			continue
		}
		queued++
	}
	s.logger.Info("broadcast queued", zap.Int("recipients", len(ids)), zap.Int("queued", queued))
	return queued, nil
}

func (s *BroadcastService) deliver(ctx context.Context, job jobs.Job[broadcastPayload]) error {
	err := s.sender.SendPlain(ctx, job.Payload.ChatID, job.Payload.Text)
	s.metrics.RecordBroadcast(err == nil)
	if err != nil {
		return fmt.Errorf("deliver broadcast to %d: %w", job.Payload.ChatID, err)
	}
	return nil
}
