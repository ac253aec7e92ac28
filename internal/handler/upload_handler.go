package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/linguasaurus-bot/internal/dto"
	"github.com/noah-isme/linguasaurus-bot/internal/models"
	appErrors "github.com/noah-isme/linguasaurus-bot/pkg/errors"
)

const (
	usageUpload      = "Usage: /upload <semester> <course> <resource_type>"
	usageUploadReply = "Reply to a file with /upload <semester> <course> <resource_type> to upload and save metadata."
	uploadHint       = "Course may be its index or code (e.g. 0 or UG2301). Resource type is one of: %s."
)

// UploadArgs are the positional arguments of /upload.
type UploadArgs struct {
	Semester     string `validate:"required,numeric"`
	Course       string `validate:"required"`
	ResourceType string `validate:"required"`
}

// uploadTarget is a resolved upload destination.
type uploadTarget struct {
	Semester     int
	Course       string
	ResourceType string
}

func (h *BotHandler) uploadCommand(ctx context.Context, actor dto.Actor, cmd *dto.Command) error {
	if cmd.ReplyDocument == nil {
		return h.reply(ctx, actor, usageUploadReply)
	}
	if len(cmd.Args) < 3 {
		return h.reply(ctx, actor, usageUpload)
	}
	args := UploadArgs{
		Semester:     cmd.Args[0],
		Course:       cmd.Args[1],
		ResourceType: strings.Join(cmd.Args[2:], " "),
	}
	target, err := h.resolveUpload(args)
	if err != nil {
		if appErrors.HasCode(err, appErrors.CodeBadRequest) {
			return h.reply(ctx, actor, fmt.Sprintf("%s\n%s\n%s", capitalize(err.Error()), usageUpload, h.typeHint()))
		}
		return err
	}
	return h.store(ctx, actor, target, *cmd.ReplyDocument)
}

// resolveUpload validates /upload arguments against the catalog.
func (h *BotHandler) resolveUpload(args UploadArgs) (uploadTarget, error) {
	if err := h.validator.Struct(args); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return uploadTarget{}, appErrors.Clone(appErrors.ErrBadRequest, fmt.Sprintf("invalid %s", strings.ToLower(verrs[0].Field())))
		}
		return uploadTarget{}, appErrors.Clone(appErrors.ErrBadRequest, "invalid arguments")
	}
	semester, err := strconv.Atoi(args.Semester)
	if err != nil || len(h.catalog.CoursesFor(semester)) == 0 {
		return uploadTarget{}, appErrors.Clone(appErrors.ErrBadRequest, fmt.Sprintf("unknown semester %s", args.Semester))
	}
	_, course, ok := h.catalog.FindCourse(semester, args.Course)
	if !ok {
		return uploadTarget{}, appErrors.Clone(appErrors.ErrBadRequest, fmt.Sprintf("unknown course %s in semester %d", args.Course, semester))
	}
	typeKey, _, ok := h.catalog.MatchResourceType(args.ResourceType)
	if !ok {
		return uploadTarget{}, appErrors.Clone(appErrors.ErrBadRequest, fmt.Sprintf("unknown resource type %s", args.ResourceType))
	}
	return uploadTarget{Semester: semester, Course: course, ResourceType: typeKey}, nil
}

func (h *BotHandler) typeHint() string {
	keys := make([]string, 0, len(h.catalog.ResourceTypes()))
	for _, t := range h.catalog.ResourceTypes() {
		keys = append(keys, strings.ReplaceAll(models.ResourceTypeKey(t), " ", "_"))
	}
	return fmt.Sprintf(uploadHint, strings.Join(keys, ", "))
}

// handleDocument consumes a file sent while an upload is pending.
func (h *BotHandler) handleDocument(ctx context.Context, actor dto.Actor, doc dto.Document) error {
	sess := h.sessions.Get(actor.ID)
	if !sess.AwaitingFile {
		if h.isAdmin(actor) {
			return h.reply(ctx, actor, usageUploadReply+" Or use the Upload button in a course menu.")
		}
		return nil
	}
	if !h.isAdmin(actor) {
		h.sessions.ClearUpload(actor.ID)
		return errAdminOnly
	}
	semester, course, resourceType, ok := sess.UploadTarget()
	if !ok {
		h.sessions.ClearUpload(actor.ID)
		return appErrors.ErrMissingUploadContext
	}
	if err := h.store(ctx, actor, uploadTarget{Semester: semester, Course: course, ResourceType: resourceType}, doc); err != nil {
		return err
	}
	h.sessions.ClearUpload(actor.ID)
	return nil
}

func (h *BotHandler) store(ctx context.Context, actor dto.Actor, target uploadTarget, doc dto.Document) error {
	id, err := h.resources.Add(ctx, models.NewResource{
		Semester:     target.Semester,
		Course:       target.Course,
		ResourceType: target.ResourceType,
		FileRef:      doc.FileRef,
		FileName:     doc.FileName,
		UploaderID:   actor.ID,
	})
	if err != nil {
		return err
	}
	h.logger.Info("resource uploaded",
		zap.Int64("resource_id", id),
		zap.Int64("actor_id", actor.ID),
		zap.String("file_name", doc.FileName),
	)
	return h.reply(ctx, actor, fmt.Sprintf("File '%s' uploaded to %s (%s), ID %d.", doc.FileName, target.Course, target.ResourceType, id))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
