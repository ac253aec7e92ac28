package handler

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/linguasaurus-bot/internal/dto"
	"github.com/noah-isme/linguasaurus-bot/internal/models"
	"github.com/noah-isme/linguasaurus-bot/internal/navigation"
	appErrors "github.com/noah-isme/linguasaurus-bot/pkg/errors"
	"github.com/noah-isme/linguasaurus-bot/pkg/response"
)

const (
	toastFileSent     = "File sent."
	toastFileNotFound = "File not found."
	noticeNotFound    = "Resource not found. It may have been deleted already."
)

var errAdminOnly = appErrors.Clone(appErrors.ErrUnauthorized, "unauthorized. Only admins can do that.")

// handleCallback applies one button press and returns the toast to acknowledge it with.
func (h *BotHandler) handleCallback(ctx context.Context, actor dto.Actor, cb *dto.Callback) (string, error) {
	action, err := navigation.Parse(cb.Data)
	if err != nil {
		h.logger.Debug("ignoring malformed action", zap.String("data", cb.Data), zap.Int64("actor_id", actor.ID))
		return "", nil
	}

	switch action.Kind {
	case navigation.KindSemester, navigation.KindCourse, navigation.KindResources, navigation.KindHelp, navigation.KindBackToStart:
		h.sessions.ClearUpload(actor.ID)
		return "", h.browse(ctx, actor, cb, action)
	case navigation.KindFile:
		return h.sendFile(ctx, actor, action.ResourceID)
	}

	if !h.isAdmin(actor) {
		return "", errAdminOnly
	}

	switch action.Kind {
	case navigation.KindUpload:
		return "", h.beginUpload(ctx, actor, cb, action)
	case navigation.KindUploadType:
		return "", h.chooseUploadType(ctx, actor, cb, action.ResourceType)
	case navigation.KindDelete:
		return "", h.askDelete(ctx, actor, cb, action.ResourceID)
	case navigation.KindConfirmDelete:
		return h.confirmDelete(ctx, actor, cb, action.ResourceID)
	case navigation.KindCancelDelete:
		h.sessions.ClearDelete(actor.ID)
		return "", h.edit(ctx, actor, cb, navigation.DeleteCancelled())
	}
	return "", nil
}

func (h *BotHandler) browse(ctx context.Context, actor dto.Actor, cb *dto.Callback, action navigation.Action) error {
	admin := h.isAdmin(actor)
	var view dto.View
	switch action.Kind {
	case navigation.KindSemester:
		view = navigation.SemesterView(h.catalog, action.Semester)
	case navigation.KindCourse:
		view = navigation.CourseView(h.catalog, action.Semester, action.Course, admin)
	case navigation.KindResources:
		items, err := h.listBucket(ctx, action)
		if err != nil {
			return err
		}
		view = navigation.ResourceListView(h.catalog, action.Semester, action.Course, action.ResourceType, items, admin)
	case navigation.KindHelp:
		view = navigation.HelpView(admin)
	default:
		view = navigation.Root(h.catalog)
	}
	return h.edit(ctx, actor, cb, view)
}

// listBucket resolves catalog coordinates; out-of-range coordinates list nothing.
func (h *BotHandler) listBucket(ctx context.Context, action navigation.Action) ([]models.ResourceSummary, error) {
	course, ok := h.catalog.Course(action.Semester, action.Course)
	if !ok {
		return nil, nil
	}
	if _, ok := h.catalog.ResourceTypeByKey(action.ResourceType); !ok {
		return nil, nil
	}
	return h.resources.List(ctx, action.Semester, course, action.ResourceType)
}

func (h *BotHandler) sendFile(ctx context.Context, actor dto.Actor, id int64) (string, error) {
	res, err := h.resources.Get(ctx, id)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return "", appErrors.Clone(appErrors.ErrNotFound, toastFileNotFound)
		}
		return "", err
	}
	if err := h.messenger.SendDocument(ctx, actor.ChatID, dto.Document{FileRef: res.FileRef, FileName: res.FileName}); err != nil {
		return "", err
	}
	return toastFileSent, nil
}

func (h *BotHandler) beginUpload(ctx context.Context, actor dto.Actor, cb *dto.Callback, action navigation.Action) error {
	course, ok := h.catalog.Course(action.Semester, action.Course)
	if !ok {
		return h.edit(ctx, actor, cb, navigation.CourseView(h.catalog, action.Semester, action.Course, true))
	}
	h.sessions.Update(actor.ID, func(s *models.Session) {
		s.ClearUpload()
		s.Semester = action.Semester
		s.CourseIndex = action.Course
		s.Course = course
	})
	return h.edit(ctx, actor, cb, navigation.UploadTypeSelect(h.catalog, action.Semester, action.Course))
}

func (h *BotHandler) chooseUploadType(ctx context.Context, actor dto.Actor, cb *dto.Callback, typeKey string) error {
	typeName, ok := h.catalog.ResourceTypeByKey(typeKey)
	if !ok {
		return nil
	}
	var missing bool
	sess := h.sessions.Update(actor.ID, func(s *models.Session) {
		if s.Semester <= 0 || s.Course == "" {
			missing = true
			return
		}
		s.ResourceType = typeKey
		s.AwaitingFile = true
	})
	if missing {
		return h.edit(ctx, actor, cb, navigation.Notice(response.Notice(appErrors.ErrMissingUploadContext)))
	}
	return h.edit(ctx, actor, cb, navigation.AwaitingFile(sess.Course, typeName))
}

func (h *BotHandler) askDelete(ctx context.Context, actor dto.Actor, cb *dto.Callback, id int64) error {
	res, err := h.resources.Get(ctx, id)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			h.sessions.ClearDelete(actor.ID)
			return h.edit(ctx, actor, cb, navigation.Notice(noticeNotFound))
		}
		return err
	}
	h.sessions.Update(actor.ID, func(s *models.Session) { s.PendingDeleteID = id })
	return h.edit(ctx, actor, cb, navigation.DeleteConfirm(res))
}

// confirmDelete deletes only the resource the actor was last asked about. Any
// other id goes back through the confirmation step.
func (h *BotHandler) confirmDelete(ctx context.Context, actor dto.Actor, cb *dto.Callback, id int64) (string, error) {
	if h.sessions.Get(actor.ID).PendingDeleteID != id {
		return "", h.askDelete(ctx, actor, cb, id)
	}
	h.sessions.ClearDelete(actor.ID)
	res, err := h.resources.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return "", h.edit(ctx, actor, cb, navigation.Notice(noticeNotFound))
		}
		return "", err
	}
	h.logger.Info("resource deleted via menu", zap.Int64("resource_id", id), zap.Int64("actor_id", actor.ID))
	return "Deleted.", h.edit(ctx, actor, cb, navigation.Notice(fmt.Sprintf("Deleted \"%s\" (ID %d).", res.FileName, res.ID)))
}
