package telegram

import (
	"context"
	"log/slog"
	"strings"

	"ShiftBot/bot/dialog"
	"ShiftBot/internal/lib/sl"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
)

// TelegramAPI defines the Telegram bot methods needed by the messenger.
// This avoids importing the concrete bot type and prevents circular imports.
type TelegramAPI interface {
	SendMessage(chatId int64, text string, opts *tgbotapi.SendMessageOpts) (*tgbotapi.Message, error)
	EditMessageText(text string, opts *tgbotapi.EditMessageTextOpts) (*tgbotapi.Message, bool, error)
	DeleteMessage(chatId int64, messageId int64, opts *tgbotapi.DeleteMessageOpts) (bool, error)
	AnswerCallbackQuery(callbackQueryId string, opts *tgbotapi.AnswerCallbackQueryOpts) (bool, error)
}

// Messenger implements dialog.Messenger on top of the Telegram Bot API,
// keeping one editable screen message per chat.
type Messenger struct {
	api TelegramAPI
	log *slog.Logger
}

func NewMessenger(api TelegramAPI, log *slog.Logger) *Messenger {
	return &Messenger{
		api: api,
		log: log.With(sl.Module("telegram.messenger")),
	}
}

// RenderScreen edits the screen message in place when one exists, otherwise
// sends a fresh one. A failed edit (slot message deleted by the user, or too
// old to edit) degrades to a send so the conversation never stalls.
func (m *Messenger) RenderScreen(ctx context.Context, chatId, messageId int64, text string, keyboard [][]dialog.Button) (int64, error) {
	markup := inlineMarkup(keyboard)

	if messageId != 0 {
		_, _, err := m.api.EditMessageText(text, &tgbotapi.EditMessageTextOpts{
			ChatId:      chatId,
			MessageId:   messageId,
			ParseMode:   "HTML",
			ReplyMarkup: markup,
		})
		if err == nil {
			return messageId, nil
		}
		// Re-rendering identical content is a no-op, not a failure.
		if strings.Contains(err.Error(), "message is not modified") {
			return messageId, nil
		}
		m.log.Warn("editing screen, falling back to send",
			slog.Int64("chat", chatId),
			slog.Int64("message", messageId),
			sl.Err(err),
		)
	}

	msg, err := m.api.SendMessage(chatId, text, &tgbotapi.SendMessageOpts{
		ParseMode:   "HTML",
		ReplyMarkup: markup,
	})
	if err != nil {
		return messageId, err
	}
	return msg.MessageId, nil
}

// AnswerCallback closes the inline button spinner. With text set it shows a
// toast, with alert additionally set a modal popup.
func (m *Messenger) AnswerCallback(ctx context.Context, callbackId, text string, alert bool) error {
	_, err := m.api.AnswerCallbackQuery(callbackId, &tgbotapi.AnswerCallbackQueryOpts{
		Text:      text,
		ShowAlert: alert,
	})
	return err
}

// DeleteMessage removes an inbound user message so only the screen message
// stays visible. Best effort: deletion rights may be missing in the chat.
func (m *Messenger) DeleteMessage(ctx context.Context, chatId, messageId int64) {
	if _, err := m.api.DeleteMessage(chatId, messageId, nil); err != nil {
		m.log.Debug("deleting inbound message",
			slog.Int64("chat", chatId),
			slog.Int64("message", messageId),
			sl.Err(err),
		)
	}
}

func inlineMarkup(keyboard [][]dialog.Button) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, len(keyboard))
	for i, row := range keyboard {
		rows[i] = make([]tgbotapi.InlineKeyboardButton, len(row))
		for j, btn := range row {
			rows[i][j] = tgbotapi.InlineKeyboardButton{
				Text:         btn.Text,
				CallbackData: btn.Data,
			}
		}
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}
