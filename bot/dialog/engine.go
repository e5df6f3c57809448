package dialog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ShiftBot/entity"
	"ShiftBot/internal/lib/sl"
)

// State keys of the report dialogue. Every key must have a matching
// StateDefinition in the definition store.
const (
	StateMainMenu         = "main_menu"
	StateKnowledgeBase    = "main_menu.knowledge_base"
	StateManageBot        = "main_menu.manage_bot"
	StateDateEntering     = "daily_report.date_entering"
	StateConfirmOverwrite = "daily_report.confirm_overwrite"
	StateWolt             = "daily_report.wolt"
	StateBolt             = "daily_report.bolt"
	StateYandex           = "daily_report.yandex"
	StateWeather          = "daily_report.weather"
	StateManualTemp       = "daily_report.manual_temp"
	StateManualLabel      = "daily_report.manual_weather_label"
	StateSaving           = "daily_report.saving"
)

// In-band comments rendered into the {comment} placeholder.
const (
	commentUnknown       = "❌ Неизвестная ошибка. Обратитесь к администратору.\n"
	commentBadDate       = "Неверный формат даты!\n"
	commentBadAmount     = "<b>⚠️ Неверный формат суммы выручки</b>\nПример корректного ввода: 1200.50\n\n"
	commentBadTemp       = "<b>⚠️ Неверный формат температуры воздуха</b>\nПример корректного ввода: 26\n\n"
	commentWeatherFailed = "Не удалось загрузить данные о погоде 😕\n"
	commentStoreFailed   = "❌ Не удалось выполнить операцию. Попробуйте ещё раз.\n"
)

// Interim screens shown in the message slot while a blocking call runs.
const (
	textCheckingDate   = "<b>📋 Отчёт по смене</b>\n\n⏳ Подожди, проверяю дату..."
	textLoadingWeather = "<b>📋 Отчёт по смене</b>\n\n⏳ Подожди, загружаю данные о погоде..."
	textSavingReport   = "<b>📋 Отчёт по смене</b>\n\n⏳ Подожди, сохраняю отчет..."
)

const anyState = "*"

type transitionKey struct {
	State  string
	Kind   EventKind
	Action string
}

// turn carries one event end to end: the resolved user, the comment for the
// final render and the callback acknowledgment to emit.
type turn struct {
	ev       Event
	user     *entity.User
	created  bool
	comment  string
	ackText  string
	ackAlert bool
}

type handlerFunc func(ctx context.Context, t *turn) error

// Engine is the conversation state machine. One explicit transition table
// keyed by (state, event kind, action) with a single default arm; every
// entry point (command, callback, text) resolves through it.
type Engine struct {
	users    UserStore
	reports  ReportStore
	weather  WeatherService
	renderer *Renderer
	msgr     Messenger
	syncer   UserSyncer
	listener ReportListener
	log      *slog.Logger

	loc *time.Location
	now func() time.Time

	table map[transitionKey]handlerFunc
	locks sync.Map
}

func NewEngine(users UserStore, reports ReportStore, weather WeatherService,
	renderer *Renderer, msgr Messenger, loc *time.Location, log *slog.Logger) *Engine {

	e := &Engine{
		users:    users,
		reports:  reports,
		weather:  weather,
		renderer: renderer,
		msgr:     msgr,
		log:      log.With(sl.Module("dialog.engine")),
		loc:      loc,
		now:      time.Now,
		table:    make(map[transitionKey]handlerFunc),
	}
	e.buildTable()
	return e
}

// SetUserSyncer enables the manage-bot action that rewrites the users sheet.
func (e *Engine) SetUserSyncer(s UserSyncer) {
	e.syncer = s
}

// SetReportListener registers the live-feed listener.
func (e *Engine) SetReportListener(l ReportListener) {
	e.listener = l
}

// SetClock overrides the time source. Used by tests.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

func (e *Engine) on(state string, kind EventKind, action string, h handlerFunc) {
	e.table[transitionKey{State: state, Kind: kind, Action: action}] = h
}

func (e *Engine) buildTable() {
	// Commands work from any state.
	e.on(anyState, KindCommand, "start", e.cmdStart)
	e.on(anyState, KindCommand, "daily_report", e.startReport)

	// Main menu family. The same navigation callbacks are valid on every
	// menu screen.
	for _, state := range []string{StateMainMenu, StateKnowledgeBase, StateManageBot} {
		e.on(state, KindCallback, "main_menu.daily_report", e.startReport)
		e.on(state, KindCallback, "main_menu.knowledge_base", e.gotoState(StateKnowledgeBase))
		e.on(state, KindCallback, "main_menu.manage_bot", e.gotoState(StateManageBot))
		e.on(state, KindCallback, "main_menu.exit", e.gotoState(StateMainMenu))
	}
	e.on(StateManageBot, KindCallback, "manage_bot.rewrite_users", e.rewriteUsers)

	// Date entry: free text or the shortcut buttons.
	e.on(StateDateEntering, KindText, "", e.handleDateText)
	e.on(StateDateEntering, KindCallback, "daily_report.today", e.dateShortcut(0))
	e.on(StateDateEntering, KindCallback, "daily_report.yesterday", e.dateShortcut(-1))

	// Date collision fork.
	e.on(StateConfirmOverwrite, KindCallback, "yes", e.confirmOverwrite(true, StateWolt))
	e.on(StateConfirmOverwrite, KindCallback, "nope", e.confirmOverwrite(false, StateDateEntering))
	e.on(StateConfirmOverwrite, KindCallback, "back", e.startReport)

	// Revenue chain, fixed order.
	e.on(StateWolt, KindText, "", e.handleWolt)
	e.on(StateWolt, KindCallback, "back", e.gotoState(StateDateEntering))
	e.on(StateBolt, KindText, "", e.handleBolt)
	e.on(StateBolt, KindCallback, "back", e.gotoState(StateWolt))
	e.on(StateYandex, KindText, "", e.handleYandex)
	e.on(StateYandex, KindCallback, "back", e.gotoState(StateBolt))

	// Manual fallback after a failed weather lookup. Back from manual_temp
	// re-fetches instead of rewinding.
	e.on(StateManualTemp, KindText, "", e.handleManualTemp)
	e.on(StateManualTemp, KindCallback, "back", e.runWeather)
	e.on(StateManualLabel, KindCallback, "daily_report.weather_label.clear", e.manualLabel(entity.LabelClear))
	e.on(StateManualLabel, KindCallback, "daily_report.weather_label.partly_cloudy", e.manualLabel(entity.LabelPartlyCloudy))
	e.on(StateManualLabel, KindCallback, "daily_report.weather_label.cloudy", e.manualLabel(entity.LabelOvercast))
	e.on(StateManualLabel, KindCallback, "daily_report.weather_label.precipitation", e.manualLabel(entity.LabelBriefPrecip))
	e.on(StateManualLabel, KindCallback, "daily_report.weather_label.heavy_precipitation", e.manualLabel(entity.LabelHeavyPrecip))
	e.on(StateManualLabel, KindCallback, "back", e.gotoState(StateManualTemp))

	// Saving: submit, or re-fetch weather on back.
	e.on(StateSaving, KindCallback, "yes", e.submitReport)
	e.on(StateSaving, KindCallback, "back", e.runWeather)
}

// Handle processes one inbound event end to end. Events for the same user
// are serialized; events for different users run independently.
func (e *Engine) Handle(ctx context.Context, ev Event) error {
	mu := e.userLock(ev.UserId)
	mu.Lock()
	defer mu.Unlock()

	user, err := e.users.GetBotUser(ctx, ev.UserId)
	if err != nil {
		return fmt.Errorf("loading user %d: %w", ev.UserId, err)
	}

	t := &turn{ev: ev}
	if user == nil {
		user = entity.NewUser(ev.UserId, ev.FirstName, ev.LastName)
		if err := e.users.CreateBotUser(ctx, user); err != nil {
			return fmt.Errorf("creating user %d: %w", ev.UserId, err)
		}
		t.created = true
	}
	t.user = user

	handler := e.resolve(user.State, ev)
	if err := handler(ctx, t); err != nil {
		// The attempted transition did not complete; the stored state is
		// whatever was last persisted. Surface a generic failure in place.
		e.log.Error("transition failed",
			slog.String("user", user.Label()),
			slog.String("state", user.State),
			slog.String("kind", ev.Kind.String()),
			slog.String("payload", ev.Payload),
			sl.Err(err),
		)
		t.comment = commentStoreFailed
		if rerr := e.render(ctx, t); rerr != nil {
			e.log.Error("rendering failure screen", slog.String("user", user.Label()), sl.Err(rerr))
		}
	}

	if ev.Kind == KindCallback {
		if err := e.msgr.AnswerCallback(ctx, ev.CallbackId, t.ackText, t.ackAlert); err != nil {
			e.log.Warn("answering callback", slog.String("user", user.Label()), sl.Err(err))
		}
	}
	return nil
}

// resolve picks the handler for (state, event): exact match first, then the
// any-state arm for commands, then the default recovery arm.
func (e *Engine) resolve(state string, ev Event) handlerFunc {
	if h, ok := e.table[transitionKey{State: state, Kind: ev.Kind, Action: ev.action()}]; ok {
		return h
	}
	if h, ok := e.table[transitionKey{State: anyState, Kind: ev.Kind, Action: ev.action()}]; ok {
		return h
	}
	return e.unknownEvent
}

// unknownEvent is the single default arm: log the anomaly with full context
// and park the user back in the main menu with a visible error.
func (e *Engine) unknownEvent(ctx context.Context, t *turn) error {
	e.log.Error("unexpected event in state",
		slog.String("user", t.user.Label()),
		slog.String("state", t.user.State),
		slog.String("kind", t.ev.Kind.String()),
		slog.String("payload", t.ev.Payload),
	)
	t.comment = commentUnknown
	if err := e.setState(ctx, t, StateMainMenu); err != nil {
		return err
	}
	return e.render(ctx, t)
}

func (e *Engine) cmdStart(ctx context.Context, t *turn) error {
	// A fresh identity stays on the guest screen until an operator assigns
	// a role; everyone else lands in the main menu.
	if !t.created {
		if err := e.setState(ctx, t, StateMainMenu); err != nil {
			return err
		}
	}
	// /start opens a new message slot instead of editing the old one.
	t.user.LastMessageId = 0
	return e.render(ctx, t)
}

func (e *Engine) startReport(ctx context.Context, t *turn) error {
	if err := e.setState(ctx, t, StateDateEntering); err != nil {
		return err
	}
	return e.render(ctx, t)
}

func (e *Engine) gotoState(state string) handlerFunc {
	return func(ctx context.Context, t *turn) error {
		if err := e.setState(ctx, t, state); err != nil {
			return err
		}
		return e.render(ctx, t)
	}
}

func (e *Engine) rewriteUsers(ctx context.Context, t *turn) error {
	if e.syncer == nil {
		return e.unknownEvent(ctx, t)
	}
	if err := e.syncer.RewriteUsers(ctx); err != nil {
		return fmt.Errorf("rewriting users sheet: %w", err)
	}
	e.log.Info("users sheet rewritten", slog.String("user", t.user.Label()))
	return e.render(ctx, t)
}

func (e *Engine) handleDateText(ctx context.Context, t *turn) error {
	date := t.ev.Payload
	if !validReportDate(date) {
		t.comment = commentBadDate
		return e.render(ctx, t)
	}
	return e.completeDate(ctx, t, date)
}

func (e *Engine) dateShortcut(offsetDays int) handlerFunc {
	return func(ctx context.Context, t *turn) error {
		date := e.now().In(e.loc).AddDate(0, 0, offsetDays).Format("02.01")
		return e.completeDate(ctx, t, date)
	}
}

// completeDate writes the chosen date into the draft and forks on whether a
// report for it already exists in the system of record.
func (e *Engine) completeDate(ctx context.Context, t *turn, date string) error {
	fullDate := fmt.Sprintf("%s.%d", date, e.now().In(e.loc).Year())
	author := t.user.Label()
	t.user.Draft.Apply(entity.DraftPatch{Date: &fullDate, Author: &author})
	if err := e.saveDraft(ctx, t); err != nil {
		return err
	}

	e.showInterim(ctx, t, textCheckingDate)

	exists, err := e.reports.Exists(ctx, fullDate)
	if err != nil {
		return fmt.Errorf("checking report for %s: %w", fullDate, err)
	}

	if exists {
		if err := e.setState(ctx, t, StateConfirmOverwrite); err != nil {
			return err
		}
		t.comment = fullDate
		return e.render(ctx, t)
	}

	if err := e.setState(ctx, t, StateWolt); err != nil {
		return err
	}
	return e.render(ctx, t)
}

func (e *Engine) confirmOverwrite(overwrite bool, next string) handlerFunc {
	return func(ctx context.Context, t *turn) error {
		t.user.Draft.Apply(entity.DraftPatch{Overwrite: &overwrite})
		if err := e.saveDraft(ctx, t); err != nil {
			return err
		}
		if err := e.setState(ctx, t, next); err != nil {
			return err
		}
		return e.render(ctx, t)
	}
}

func (e *Engine) handleWolt(ctx context.Context, t *turn) error {
	value, ok := parseAmount(t.ev.Payload)
	if !ok {
		t.comment = commentBadAmount
		return e.render(ctx, t)
	}
	t.user.Draft.Apply(entity.DraftPatch{Wolt: &value})
	if err := e.saveDraft(ctx, t); err != nil {
		return err
	}
	if err := e.setState(ctx, t, StateBolt); err != nil {
		return err
	}
	return e.render(ctx, t)
}

func (e *Engine) handleBolt(ctx context.Context, t *turn) error {
	value, ok := parseAmount(t.ev.Payload)
	if !ok {
		t.comment = commentBadAmount
		return e.render(ctx, t)
	}
	t.user.Draft.Apply(entity.DraftPatch{Bolt: &value})
	if err := e.saveDraft(ctx, t); err != nil {
		return err
	}
	if err := e.setState(ctx, t, StateYandex); err != nil {
		return err
	}
	return e.render(ctx, t)
}

func (e *Engine) handleYandex(ctx context.Context, t *turn) error {
	value, ok := parseAmount(t.ev.Payload)
	if !ok {
		t.comment = commentBadAmount
		return e.render(ctx, t)
	}
	t.user.Draft.Apply(entity.DraftPatch{Yandex: &value})
	if err := e.saveDraft(ctx, t); err != nil {
		return err
	}
	// The last revenue figure triggers the weather sub-flow instead of a
	// plain state render.
	return e.runWeather(ctx, t)
}

// runWeather is the weather sub-flow: a transient state with an interim
// screen, then either straight to saving or to the manual fallback.
func (e *Engine) runWeather(ctx context.Context, t *turn) error {
	if err := e.setState(ctx, t, StateWeather); err != nil {
		return err
	}
	e.showInterim(ctx, t, textLoadingWeather)

	summary, err := e.weather.Summary(ctx, t.user.Draft.Date)
	if err != nil {
		e.log.Error("weather lookup",
			slog.String("user", t.user.Label()),
			slog.String("date", t.user.Draft.Date),
			sl.Err(err),
		)
		summary = nil
	}

	if summary == nil {
		if err := e.setState(ctx, t, StateManualTemp); err != nil {
			return err
		}
		t.comment = commentWeatherFailed
		return e.render(ctx, t)
	}

	t.user.Draft.Apply(entity.DraftPatch{Temp: &summary.Temp, WeatherLabel: &summary.Label})
	if err := e.saveDraft(ctx, t); err != nil {
		return err
	}
	if err := e.setState(ctx, t, StateSaving); err != nil {
		return err
	}
	t.comment = fmt.Sprintf("%s:\n🌡 <b>Температура:</b> %s°C\n🌤️ <b>Погодные условия:</b> %s\n\n",
		t.user.Draft.Date, formatAmount(&summary.Temp), summary.Label)
	return e.render(ctx, t)
}

func (e *Engine) handleManualTemp(ctx context.Context, t *turn) error {
	value, ok := parseAmount(t.ev.Payload)
	if !ok {
		t.comment = commentBadTemp
		return e.render(ctx, t)
	}
	t.user.Draft.Apply(entity.DraftPatch{Temp: &value})
	if err := e.saveDraft(ctx, t); err != nil {
		return err
	}
	if err := e.setState(ctx, t, StateManualLabel); err != nil {
		return err
	}
	return e.render(ctx, t)
}

func (e *Engine) manualLabel(label string) handlerFunc {
	return func(ctx context.Context, t *turn) error {
		t.user.Draft.Apply(entity.DraftPatch{WeatherLabel: &label})
		if err := e.saveDraft(ctx, t); err != nil {
			return err
		}
		if err := e.setState(ctx, t, StateSaving); err != nil {
			return err
		}
		return e.render(ctx, t)
	}
}

func (e *Engine) submitReport(ctx context.Context, t *turn) error {
	e.showInterim(ctx, t, textSavingReport)

	rec := t.user.Draft.Record()
	overwrite := t.user.Draft.Overwrite

	if err := e.reports.Submit(ctx, rec, overwrite); err != nil {
		e.log.Error("submitting report",
			slog.String("user", t.user.Label()),
			slog.String("date", rec.Date),
			sl.Err(err),
		)
		t.ackText = "❌ Не удалось сохранить отчёт. Обратитесь к администратору."
		t.ackAlert = true
		return e.render(ctx, t)
	}

	if e.listener != nil {
		e.listener.ReportSubmitted(*t.user, rec, overwrite)
	}

	e.log.Info("report submitted",
		slog.String("user", t.user.Label()),
		slog.String("date", rec.Date),
		slog.Bool("overwrite", overwrite),
	)

	t.user.Draft.Reset()
	if err := e.saveDraft(ctx, t); err != nil {
		return err
	}
	if err := e.setState(ctx, t, StateMainMenu); err != nil {
		return err
	}
	t.ackText = "✅ Отчёт сохранён. Спасибо!"
	t.ackAlert = true
	return e.render(ctx, t)
}

func (e *Engine) setState(ctx context.Context, t *turn, state string) error {
	old := t.user.State
	if err := e.users.SetUserState(ctx, t.user.TelegramId, state); err != nil {
		return fmt.Errorf("setting state %s: %w", state, err)
	}
	t.user.State = state
	e.log.Debug("state transition",
		slog.String("user", t.user.Label()),
		slog.String("from", old),
		slog.String("to", state),
	)
	return nil
}

func (e *Engine) saveDraft(ctx context.Context, t *turn) error {
	if err := e.users.SaveDraft(ctx, t.user.TelegramId, t.user.Draft); err != nil {
		return fmt.Errorf("saving draft: %w", err)
	}
	return nil
}

// render projects the user's current state into the message slot. Exactly one
// visible turn per event ends here.
func (e *Engine) render(ctx context.Context, t *turn) error {
	text, keyboard := e.renderer.Render(ctx, t.user.State, t.user.Role, ScreenData(t.user, t.comment))
	return e.show(ctx, t, text, keyboard)
}

// showInterim replaces the slot content with a wait screen while a blocking
// call runs. Best effort: a delivery hiccup must not abort the transition.
func (e *Engine) showInterim(ctx context.Context, t *turn, text string) {
	if err := e.show(ctx, t, text, nil); err != nil {
		e.log.Warn("rendering interim screen", slog.String("user", t.user.Label()), sl.Err(err))
	}
}

func (e *Engine) show(ctx context.Context, t *turn, text string, keyboard [][]Button) error {
	messageId, err := e.msgr.RenderScreen(ctx, t.ev.ChatId, t.user.LastMessageId, text, keyboard)
	if err != nil {
		return fmt.Errorf("rendering screen: %w", err)
	}
	if messageId != t.user.LastMessageId {
		if err := e.users.SetLastMessageId(ctx, t.user.TelegramId, messageId); err != nil {
			return fmt.Errorf("saving message id: %w", err)
		}
		t.user.LastMessageId = messageId
	}
	return nil
}

func (e *Engine) userLock(userId int64) *sync.Mutex {
	mu, _ := e.locks.LoadOrStore(userId, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
