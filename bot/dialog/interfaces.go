package dialog

import (
	"context"

	"ShiftBot/entity"
)

// UserStore is the persistent record of conversations. All writes are
// field-level and atomic; the engine serializes per user on top of it.
type UserStore interface {
	GetBotUser(ctx context.Context, telegramId int64) (*entity.User, error)
	CreateBotUser(ctx context.Context, user *entity.User) error
	SetUserState(ctx context.Context, telegramId int64, state string) error
	SaveDraft(ctx context.Context, telegramId int64, draft entity.ReportDraft) error
	SetLastMessageId(ctx context.Context, telegramId int64, messageId int64) error
}

// DefinitionStore serves screen definitions. Both lookups return nil (not an
// error) for unknown keys.
type DefinitionStore interface {
	GetStateDefinition(ctx context.Context, key string) (*entity.StateDefinition, error)
	GetButton(ctx context.Context, key string) (*entity.ButtonDefinition, error)
}

// ReportStore is the system of record for finalized reports.
type ReportStore interface {
	Exists(ctx context.Context, date string) (bool, error)
	Submit(ctx context.Context, rec entity.ReportRecord, overwrite bool) error
}

// WeatherService resolves a report date to a shift weather summary. A nil
// summary with nil error means the data is unavailable and the manual
// fallback applies.
type WeatherService interface {
	Summary(ctx context.Context, date string) (*entity.WeatherSummary, error)
}

// Button is one rendered inline keyboard button.
type Button struct {
	Text string
	Data string
}

// Messenger owns the single active message slot per conversation.
// RenderScreen edits messageId when non-zero, otherwise sends a new message;
// either way it returns the id of the message now holding the screen.
type Messenger interface {
	RenderScreen(ctx context.Context, chatId, messageId int64, text string, keyboard [][]Button) (int64, error)
	AnswerCallback(ctx context.Context, callbackId, text string, alert bool) error
}

// UserSyncer pushes the local user set back to the config spreadsheet.
type UserSyncer interface {
	RewriteUsers(ctx context.Context) error
}

// ReportListener is notified after a report is accepted by the store. Used to
// feed the live dashboard without coupling the engine to the hub.
type ReportListener interface {
	ReportSubmitted(user entity.User, rec entity.ReportRecord, overwrite bool)
}
