package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/linguasaurus-bot/internal/dto"
	"github.com/noah-isme/linguasaurus-bot/internal/navigation"
	appErrors "github.com/noah-isme/linguasaurus-bot/pkg/errors"
)

const (
	usageDelete    = "Usage: /delete <resource_id>"
	usageBroadcast = "Usage: /broadcast <text>"
	usageInventory = "Usage: /inventory [csv|pdf]"
	unknownCommand = "Unknown command. Use /help to see what I can do."
)

func (h *BotHandler) handleCommand(ctx context.Context, actor dto.Actor, cmd *dto.Command) error {
	switch cmd.Name {
	case "start":
		h.sessions.Clear(actor.ID)
		return h.show(ctx, actor, navigation.Root(h.catalog))
	case "help":
		return h.show(ctx, actor, navigation.HelpView(h.isAdmin(actor)))
	case "upload":
		return h.adminOnly(actor, "upload files", func() error { return h.uploadCommand(ctx, actor, cmd) })
	case "delete":
		return h.adminOnly(actor, "delete files", func() error { return h.deleteCommand(ctx, actor, cmd) })
	case "broadcast":
		return h.adminOnly(actor, "broadcast", func() error { return h.broadcastCommand(ctx, actor, cmd) })
	case "inventory":
		return h.adminOnly(actor, "export the inventory", func() error { return h.inventoryCommand(ctx, actor, cmd) })
	case "stats":
		return h.adminOnly(actor, "view stats", func() error { return h.statsCommand(ctx, actor) })
	default:
		return h.reply(ctx, actor, unknownCommand)
	}
}

func (h *BotHandler) adminOnly(actor dto.Actor, what string, fn func() error) error {
	if !h.isAdmin(actor) {
		return appErrors.Clone(appErrors.ErrUnauthorized, fmt.Sprintf("unauthorized. Only admins can %s.", what))
	}
	return fn()
}

func (h *BotHandler) deleteCommand(ctx context.Context, actor dto.Actor, cmd *dto.Command) error {
	if len(cmd.Args) == 0 {
		return h.reply(ctx, actor, usageDelete)
	}
	id, err := strconv.ParseInt(cmd.Args[0], 10, 64)
	if err != nil || id <= 0 {
		return h.reply(ctx, actor, usageDelete)
	}
	res, err := h.resources.Delete(ctx, id)
	if err != nil {
		return err
	}
	h.logger.Info("resource deleted via command", zap.Int64("resource_id", id), zap.Int64("actor_id", actor.ID))
	return h.reply(ctx, actor, fmt.Sprintf("Resource with ID %d (%s) deleted from database.", res.ID, res.FileName))
}

func (h *BotHandler) broadcastCommand(ctx context.Context, actor dto.Actor, cmd *dto.Command) error {
	if h.broadcaster == nil {
		return h.reply(ctx, actor, "Broadcasting is not enabled.")
	}
	text := strings.TrimSpace(cmd.RawArgs)
	if text == "" {
		return h.reply(ctx, actor, usageBroadcast)
	}
	queued, err := h.broadcaster.Broadcast(ctx, text)
	if err != nil {
		return err
	}
	return h.reply(ctx, actor, fmt.Sprintf("Broadcast queued for %d users.", queued))
}

func (h *BotHandler) inventoryCommand(ctx context.Context, actor dto.Actor, cmd *dto.Command) error {
	if h.inventory == nil {
		return h.reply(ctx, actor, "Inventory export is not enabled.")
	}
	if len(cmd.Args) > 1 {
		return h.reply(ctx, actor, usageInventory)
	}
	format := ""
	if len(cmd.Args) == 1 {
		format = cmd.Args[0]
	}
	file, err := h.inventory.Generate(ctx, format)
	if err != nil {
		if appErrors.HasCode(err, appErrors.CodeBadRequest) {
			return h.reply(ctx, actor, usageInventory)
		}
		return err
	}
	return h.messenger.SendFile(ctx, actor.ChatID, file.Name, file.Content)
}

func (h *BotHandler) statsCommand(ctx context.Context, actor dto.Actor) error {
	resources, err := h.resources.Count(ctx)
	if err != nil {
		return err
	}
	users, err := h.users.UserIDs(ctx)
	if err != nil {
		return err
	}
	// the stored flag lags the allow-list until the caller's next update is tracked
	recorded, err := h.users.IsAdminRecorded(ctx, actor.ID)
	if err != nil {
		return err
	}
	stats := h.snapshot()
	stats.Resources = resources
	stats.Users = len(users)
	stats.ActiveSessions = h.sessions.Len()

	var b strings.Builder
	fmt.Fprintf(&b, "Resources: %d\n", stats.Resources)
	fmt.Fprintf(&b, "Users: %d\n", stats.Users)
	fmt.Fprintf(&b, "Active sessions: %d\n", stats.ActiveSessions)
	fmt.Fprintf(&b, "Updates handled: %d (%d failed)\n", stats.UpdatesTotal, stats.UpdateFailures)
	fmt.Fprintf(&b, "Avg update latency: %.1f ms\n", stats.AverageUpdateMs)
	fmt.Fprintf(&b, "DB queries: %d (avg %.1f ms)\n", stats.DBQueryCount, stats.AverageDBQueryMs)
	fmt.Fprintf(&b, "Cache hit ratio: %.0f%%\n", stats.CacheHitRatio*100)
	fmt.Fprintf(&b, "Goroutines: %d\n", stats.Goroutines)
	fmt.Fprintf(&b, "Your stored admin flag: %s", yesNo(recorded))
	return h.reply(ctx, actor, b.String())
}

func (h *BotHandler) handleText(ctx context.Context, actor dto.Actor) error {
	if !h.sessions.Get(actor.ID).AwaitingFile {
		return nil
	}
	return h.reply(ctx, actor, "Please send the file as a document, or press Cancel to stop uploading.")
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
