package telegram

import (
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/linguasaurus-bot/internal/dto"
)

func commandMessage(text string) *tgbotapi.Message {
	cmdLen := len(text)
	for i, r := range text {
		if r == ' ' {
			cmdLen = i
			break
		}
	}
	return &tgbotapi.Message{
		MessageID: 10,
		From:      &tgbotapi.User{ID: 7, UserName: "ada"},
		Chat:      &tgbotapi.Chat{ID: 700},
		Text:      text,
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: cmdLen}},
	}
}

func TestConvertCommandWithReplyDocument(t *testing.T) {
	msg := commandMessage("/upload 3 UG2301 past_questions")
	msg.ReplyToMessage = &tgbotapi.Message{Document: &tgbotapi.Document{FileID: "file-1", FileName: "syntax.pdf"}}

	update, ok := Convert(tgbotapi.Update{UpdateID: 5, Message: msg})
	require.True(t, ok)
	assert.Equal(t, dto.KindCommand, update.Kind)
	assert.Equal(t, 5, update.ID)
	assert.Equal(t, dto.Actor{ID: 7, Username: "ada", ChatID: 700}, update.Actor)
	require.NotNil(t, update.Command)
	assert.Equal(t, "upload", update.Command.Name)
	assert.Equal(t, []string{"3", "UG2301", "past_questions"}, update.Command.Args)
	assert.Equal(t, &dto.Document{FileRef: "file-1", FileName: "syntax.pdf"}, update.Command.ReplyDocument)
}

func TestConvertCommandWithoutArgs(t *testing.T) {
	update, ok := Convert(tgbotapi.Update{Message: commandMessage("/start")})
	require.True(t, ok)
	assert.Equal(t, "start", update.Command.Name)
	assert.Empty(t, update.Command.Args)
	assert.Nil(t, update.Command.ReplyDocument)
}

func TestConvertDocumentAndText(t *testing.T) {
	doc := &tgbotapi.Message{
		From:     &tgbotapi.User{ID: 1, FirstName: "Grace", LastName: "Hopper"},
		Chat:     &tgbotapi.Chat{ID: 1},
		Document: &tgbotapi.Document{FileID: "f", FileUniqueID: "u"},
	}
	update, ok := Convert(tgbotapi.Update{Message: doc})
	require.True(t, ok)
	assert.Equal(t, dto.KindDocument, update.Kind)
	assert.Equal(t, "Grace Hopper", update.Actor.Username)
	assert.Equal(t, &dto.Document{FileRef: "f", FileName: "u"}, update.Document)

	text := &tgbotapi.Message{From: &tgbotapi.User{ID: 1}, Chat: &tgbotapi.Chat{ID: 1}, Text: "hello"}
	update, ok = Convert(tgbotapi.Update{Message: text})
	require.True(t, ok)
	assert.Equal(t, dto.KindText, update.Kind)
}

func TestConvertCallback(t *testing.T) {
	q := &tgbotapi.CallbackQuery{
		ID:      "cb-1",
		From:    &tgbotapi.User{ID: 9},
		Message: &tgbotapi.Message{MessageID: 44, Chat: &tgbotapi.Chat{ID: 900}},
		Data:    "sem_3",
	}
	update, ok := Convert(tgbotapi.Update{CallbackQuery: q})
	require.True(t, ok)
	assert.Equal(t, dto.KindCallback, update.Kind)
	assert.Equal(t, &dto.Callback{ID: "cb-1", Data: "sem_3", MessageID: 44}, update.Callback)
	assert.Equal(t, int64(900), update.Actor.ChatID)
}

func TestConvertSkipsUnsupportedUpdates(t *testing.T) {
	_, ok := Convert(tgbotapi.Update{})
	assert.False(t, ok)

	_, ok = Convert(tgbotapi.Update{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}}})
	assert.False(t, ok)

	_, ok = Convert(tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{From: &tgbotapi.User{ID: 1}}})
	assert.False(t, ok)
}

func TestKeyboardMarkup(t *testing.T) {
	_, ok := keyboard(nil)
	assert.False(t, ok)

	markup, ok := keyboard(dto.Keyboard{{{Text: "1", Data: "sem_1"}, {Text: "2", Data: "sem_2"}}, {{Text: "Help", Data: "help"}}})
	require.True(t, ok)
	require.Len(t, markup.InlineKeyboard, 2)
	assert.Len(t, markup.InlineKeyboard[0], 2)
	require.NotNil(t, markup.InlineKeyboard[1][0].CallbackData)
	assert.Equal(t, "help", *markup.InlineKeyboard[1][0].CallbackData)
}

func TestIsNotModified(t *testing.T) {
	assert.True(t, IsNotModified(&tgbotapi.Error{Code: 400, Message: "Bad Request: message is not modified: specified new message content"}))
	assert.False(t, IsNotModified(errors.New("Forbidden: bot was blocked by the user")))
	assert.False(t, IsNotModified(nil))
}
