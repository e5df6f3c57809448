package bot

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"strings"
	"time"

	"ShiftBot/bot/dialog"
	"ShiftBot/bot/telegram"
	"ShiftBot/internal/lib/sl"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers/filters/callbackquery"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers/filters/message"
)

// ShiftBot receives Telegram updates, normalizes them into dialog events and
// feeds them to the engine. It also serves as the notifier target for
// escalated log records.
type ShiftBot struct {
	log         *slog.Logger
	api         *tgbotapi.Bot
	engine      *dialog.Engine
	msgr        *telegram.Messenger
	botUsername string
	adminId     int64
}

func NewShiftBot(botName, apiKey string, adminId int64, log *slog.Logger) (*ShiftBot, error) {
	bot := &ShiftBot{
		log:         log.With(sl.Module("tgbot")),
		adminId:     adminId,
		botUsername: botName,
	}

	api, err := tgbotapi.NewBot(apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("creating api instance: %v", err)
	}
	bot.api = api
	bot.msgr = telegram.NewMessenger(api, log)

	return bot, nil
}

// Api exposes the underlying client for the messenger wiring in main.
func (t *ShiftBot) Api() *tgbotapi.Bot {
	return t.api
}

// Messenger returns the screen-slot messenger bound to this bot.
func (t *ShiftBot) Messenger() *telegram.Messenger {
	return t.msgr
}

// SetEngine attaches the conversation engine. Must be called before Start.
func (t *ShiftBot) SetEngine(engine *dialog.Engine) {
	t.engine = engine
}

func (t *ShiftBot) Start() error {

	dispatcher := ext.NewDispatcher(&ext.DispatcherOpts{
		// If an error is returned by a handler, log it and continue going.
		Error: func(b *tgbotapi.Bot, ctx *ext.Context, err error) ext.DispatcherAction {
			log.Println("an error occurred while handling update:", err.Error())
			return ext.DispatcherActionNoop
		},
		MaxRoutines: ext.DefaultMaxRoutines,
	})

	dispatcher.AddHandler(handlers.NewCommand("start", t.onCommand("start")))
	dispatcher.AddHandler(handlers.NewCommand("daily_report", t.onCommand("daily_report")))
	dispatcher.AddHandler(handlers.NewCallback(callbackquery.All, t.onCallback))
	dispatcher.AddHandler(handlers.NewMessage(plainText, t.onText))

	updater := ext.NewUpdater(dispatcher, nil)

	// Start receiving updates.
	err := updater.StartPolling(t.api, &ext.PollingOpts{
		DropPendingUpdates: true,
		GetUpdatesOpts: &tgbotapi.GetUpdatesOpts{
			Timeout: 9,
			RequestOpts: &tgbotapi.RequestOpts{
				Timeout: time.Second * 10,
			},
		},
	})
	if err != nil {
		panic("failed to start polling: " + err.Error())
	}

	t.log.Info("bot polling", slog.String("username", t.botUsername))

	// Idle, to keep updates coming in, and avoid bot stopping.
	updater.Idle()

	return nil
}

// plainText matches text messages that are not commands; commands have their
// own handlers.
func plainText(msg *tgbotapi.Message) bool {
	return message.Text(msg) && !message.Command(msg)
}

func (t *ShiftBot) onCommand(name string) handlers.Response {
	return func(b *tgbotapi.Bot, ctx *ext.Context) error {
		ev := dialog.Event{
			Kind:      dialog.KindCommand,
			UserId:    ctx.EffectiveUser.Id,
			ChatId:    ctx.EffectiveChat.Id,
			FirstName: ctx.EffectiveUser.FirstName,
			LastName:  ctx.EffectiveUser.LastName,
			Payload:   name,
		}
		// The command message itself is clutter next to the screen message.
		t.msgr.DeleteMessage(context.Background(), ctx.EffectiveChat.Id, ctx.EffectiveMessage.MessageId)
		return t.engine.Handle(context.Background(), ev)
	}
}

func (t *ShiftBot) onCallback(b *tgbotapi.Bot, ctx *ext.Context) error {
	cb := ctx.Update.CallbackQuery
	ev := dialog.Event{
		Kind:       dialog.KindCallback,
		UserId:     cb.From.Id,
		ChatId:     ctx.EffectiveChat.Id,
		FirstName:  cb.From.FirstName,
		LastName:   cb.From.LastName,
		Payload:    cb.Data,
		CallbackId: cb.Id,
	}
	return t.engine.Handle(context.Background(), ev)
}

func (t *ShiftBot) onText(b *tgbotapi.Bot, ctx *ext.Context) error {
	msg := ctx.EffectiveMessage
	ev := dialog.Event{
		Kind:      dialog.KindText,
		UserId:    ctx.EffectiveUser.Id,
		ChatId:    ctx.EffectiveChat.Id,
		FirstName: ctx.EffectiveUser.FirstName,
		LastName:  ctx.EffectiveUser.LastName,
		Payload:   strings.TrimSpace(msg.Text),
	}
	t.msgr.DeleteMessage(context.Background(), ctx.EffectiveChat.Id, msg.MessageId)
	return t.engine.Handle(context.Background(), ev)
}

// SendMessage delivers an out-of-band notification to the admin chat. It is
// the sink for escalated log records.
func (t *ShiftBot) SendMessage(msg string) {
	if t.adminId == 0 {
		return
	}
	_, err := t.api.SendMessage(t.adminId, msg, nil)
	if err != nil {
		t.log.With(
			slog.Int64("id", t.adminId),
		).Warn("sending admin message", sl.Err(err))
	}
}
