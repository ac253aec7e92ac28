package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/linguasaurus-bot/internal/dto"
	"github.com/noah-isme/linguasaurus-bot/internal/models"
	"github.com/noah-isme/linguasaurus-bot/internal/service"
)

// Messenger is the outbound side of the chat transport.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, view dto.View) (int, error)
	EditText(ctx context.Context, chatID int64, messageID int, view dto.View) error
	SendDocument(ctx context.Context, chatID int64, doc dto.Document) error
	SendFile(ctx context.Context, chatID int64, name string, content []byte) error
	AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error
}

type resourceService interface {
	Add(ctx context.Context, in models.NewResource) (int64, error)
	List(ctx context.Context, semester int, course, resourceType string) ([]models.ResourceSummary, error)
	Get(ctx context.Context, id int64) (*models.Resource, error)
	Delete(ctx context.Context, id int64) (*models.Resource, error)
	Count(ctx context.Context) (int, error)
}

type userDirectory interface {
	IsAdmin(id int64) bool
	IsAdminRecorded(ctx context.Context, id int64) (bool, error)
	UserIDs(ctx context.Context) ([]int64, error)
}

type sessionStore interface {
	Get(userID int64) models.Session
	Update(userID int64, fn func(*models.Session)) models.Session
	Clear(userID int64)
	ClearUpload(userID int64)
	ClearDelete(userID int64)
	Len() int
}

type broadcaster interface {
	Broadcast(ctx context.Context, text string) (int, error)
}

type inventoryGenerator interface {
	Generate(ctx context.Context, format string) (*service.InventoryFile, error)
}

type statsSource interface {
	Snapshot() models.BotStats
}

// BotDeps groups the collaborators of BotHandler. Broadcaster, Inventory and Stats are optional.
type BotDeps struct {
	Catalog     *models.Catalog
	Resources   resourceService
	Users       userDirectory
	Sessions    sessionStore
	Messenger   Messenger
	Broadcaster broadcaster
	Inventory   inventoryGenerator
	Stats       statsSource
	Validator   *validator.Validate
	Logger      *zap.Logger
}

// BotHandler dispatches commands, button presses and documents.
type BotHandler struct {
	catalog     *models.Catalog
	resources   resourceService
	users       userDirectory
	sessions    sessionStore
	messenger   Messenger
	broadcaster broadcaster
	inventory   inventoryGenerator
	stats       statsSource
	validator   *validator.Validate
	reporter    *Reporter
	logger      *zap.Logger
}

// NewBotHandler constructs a BotHandler.
func NewBotHandler(deps BotDeps) *BotHandler {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	if deps.Catalog == nil {
		deps.Catalog = models.DefaultCatalog()
	}
	return &BotHandler{
		catalog:     deps.Catalog,
		resources:   deps.Resources,
		users:       deps.Users,
		sessions:    deps.Sessions,
		messenger:   deps.Messenger,
		broadcaster: deps.Broadcaster,
		inventory:   deps.Inventory,
		stats:       deps.Stats,
		validator:   deps.Validator,
		reporter:    NewReporter(deps.Messenger, deps.Logger),
		logger:      deps.Logger,
	}
}

// Handle processes one update. Failures are reported to the user before being returned.
func (h *BotHandler) Handle(ctx context.Context, update dto.Update) error {
	switch update.Kind {
	case dto.KindCommand:
		if update.Command == nil {
			return nil
		}
		if err := h.handleCommand(ctx, update.Actor, update.Command); err != nil {
			h.reporter.ReportMessage(ctx, update, err)
			return err
		}
	case dto.KindCallback:
		if update.Callback == nil {
			return nil
		}
		toast, err := h.handleCallback(ctx, update.Actor, update.Callback)
		if err != nil {
			h.reporter.ReportCallback(ctx, update, err)
			return err
		}
		if ackErr := h.messenger.AnswerCallback(ctx, update.Callback.ID, toast, false); ackErr != nil {
			h.logger.Debug("answer callback failed", zap.Error(ackErr))
		}
	case dto.KindDocument:
		if update.Document == nil {
			return nil
		}
		if err := h.handleDocument(ctx, update.Actor, *update.Document); err != nil {
			h.reporter.ReportMessage(ctx, update, err)
			return err
		}
	case dto.KindText:
		return h.handleText(ctx, update.Actor)
	}
	return nil
}

func (h *BotHandler) isAdmin(actor dto.Actor) bool {
	return h.users.IsAdmin(actor.ID)
}

func (h *BotHandler) reply(ctx context.Context, actor dto.Actor, text string) error {
	_, err := h.messenger.SendText(ctx, actor.ChatID, dto.View{Text: text})
	return err
}

func (h *BotHandler) show(ctx context.Context, actor dto.Actor, view dto.View) error {
	_, err := h.messenger.SendText(ctx, actor.ChatID, view)
	return err
}

func (h *BotHandler) edit(ctx context.Context, actor dto.Actor, cb *dto.Callback, view dto.View) error {
	return h.messenger.EditText(ctx, actor.ChatID, cb.MessageID, view)
}

func (h *BotHandler) snapshot() models.BotStats {
	if h.stats == nil {
		return models.BotStats{}
	}
	return h.stats.Snapshot()
}
