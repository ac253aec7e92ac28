package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/noah-isme/linguasaurus-bot/internal/dto"
)

// Convert maps a Bot API update onto a transport-neutral update. It reports false
// for updates the bot does not handle.
func Convert(u tgbotapi.Update) (dto.Update, bool) {
	switch {
	case u.CallbackQuery != nil:
		return convertCallback(u.UpdateID, u.CallbackQuery)
	case u.Message != nil:
		return convertMessage(u.UpdateID, u.Message)
	default:
		return dto.Update{}, false
	}
}

func convertCallback(id int, q *tgbotapi.CallbackQuery) (dto.Update, bool) {
	if q.From == nil || q.Message == nil || q.Message.Chat == nil {
		return dto.Update{}, false
	}
	return dto.Update{
		ID:    id,
		Kind:  dto.KindCallback,
		Actor: actor(q.From, q.Message.Chat),
		Callback: &dto.Callback{
			ID:        q.ID,
			Data:      q.Data,
			MessageID: q.Message.MessageID,
		},
	}, true
}

func convertMessage(id int, m *tgbotapi.Message) (dto.Update, bool) {
	if m.From == nil || m.Chat == nil {
		return dto.Update{}, false
	}
	update := dto.Update{ID: id, Actor: actor(m.From, m.Chat)}

	switch {
	case m.IsCommand():
		raw := strings.TrimSpace(m.CommandArguments())
		cmd := &dto.Command{
			Name:    strings.ToLower(m.Command()),
			Args:    strings.Fields(raw),
			RawArgs: raw,
		}
		if reply := m.ReplyToMessage; reply != nil && reply.Document != nil {
			cmd.ReplyDocument = document(reply.Document)
		}
		update.Kind = dto.KindCommand
		update.Command = cmd
	case m.Document != nil:
		update.Kind = dto.KindDocument
		update.Document = document(m.Document)
	case m.Text != "":
		update.Kind = dto.KindText
		update.Text = m.Text
	default:
		return dto.Update{}, false
	}
	return update, true
}

func actor(from *tgbotapi.User, chat *tgbotapi.Chat) dto.Actor {
	name := from.UserName
	if name == "" {
		name = strings.TrimSpace(from.FirstName + " " + from.LastName)
	}
	return dto.Actor{ID: from.ID, Username: name, ChatID: chat.ID}
}

func document(d *tgbotapi.Document) *dto.Document {
	name := d.FileName
	if name == "" {
		name = d.FileUniqueID
	}
	return &dto.Document{FileRef: d.FileID, FileName: name}
}
