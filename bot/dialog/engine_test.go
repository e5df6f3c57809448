package dialog

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"ShiftBot/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	stored       map[int64]*entity.User
	failSetState bool
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{stored: make(map[int64]*entity.User)}
}

func (f *fakeUsers) GetBotUser(_ context.Context, telegramId int64) (*entity.User, error) {
	u, ok := f.stored[telegramId]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUsers) CreateBotUser(_ context.Context, user *entity.User) error {
	copied := *user
	f.stored[user.TelegramId] = &copied
	return nil
}

func (f *fakeUsers) SetUserState(_ context.Context, telegramId int64, state string) error {
	if f.failSetState {
		return errors.New("db down")
	}
	f.stored[telegramId].State = state
	return nil
}

func (f *fakeUsers) SaveDraft(_ context.Context, telegramId int64, draft entity.ReportDraft) error {
	f.stored[telegramId].Draft = draft
	return nil
}

func (f *fakeUsers) SetLastMessageId(_ context.Context, telegramId int64, messageId int64) error {
	f.stored[telegramId].LastMessageId = messageId
	return nil
}

type submission struct {
	rec       entity.ReportRecord
	overwrite bool
}

type fakeReports struct {
	existing   map[string]bool
	submitted  []submission
	failSubmit bool
}

func (f *fakeReports) Exists(_ context.Context, date string) (bool, error) {
	return f.existing[date], nil
}

func (f *fakeReports) Submit(_ context.Context, rec entity.ReportRecord, overwrite bool) error {
	if f.failSubmit {
		return errors.New("sheet unavailable")
	}
	f.submitted = append(f.submitted, submission{rec: rec, overwrite: overwrite})
	return nil
}

type fakeWeather struct {
	summary *entity.WeatherSummary
	err     error
	calls   int
}

func (f *fakeWeather) Summary(_ context.Context, _ string) (*entity.WeatherSummary, error) {
	f.calls++
	return f.summary, f.err
}

type screen struct {
	chatId    int64
	messageId int64
	text      string
	keyboard  [][]Button
}

type ack struct {
	text  string
	alert bool
}

type fakeMessenger struct {
	screens []screen
	acks    []ack
	nextId  int64
}

func (f *fakeMessenger) RenderScreen(_ context.Context, chatId, messageId int64, text string, keyboard [][]Button) (int64, error) {
	if messageId == 0 {
		f.nextId++
		messageId = 100 + f.nextId
	}
	f.screens = append(f.screens, screen{chatId: chatId, messageId: messageId, text: text, keyboard: keyboard})
	return messageId, nil
}

func (f *fakeMessenger) AnswerCallback(_ context.Context, _, text string, alert bool) error {
	f.acks = append(f.acks, ack{text: text, alert: alert})
	return nil
}

func (f *fakeMessenger) lastScreen() screen {
	return f.screens[len(f.screens)-1]
}

type fakeSyncer struct {
	calls int
	err   error
}

func (f *fakeSyncer) RewriteUsers(_ context.Context) error {
	f.calls++
	return f.err
}

type fakeListener struct {
	calls []submission
}

func (f *fakeListener) ReportSubmitted(_ entity.User, rec entity.ReportRecord, overwrite bool) {
	f.calls = append(f.calls, submission{rec: rec, overwrite: overwrite})
}

type engineFixture struct {
	users    *fakeUsers
	reports  *fakeReports
	weather  *fakeWeather
	msgr     *fakeMessenger
	listener *fakeListener
	engine   *Engine
}

// Every screen renders as "[state_key]" followed by the comment, so
// assertions can pin both the state shown and the in-band message.
func engineDefs() *fakeDefs {
	keys := []string{
		entity.StateGuest,
		StateMainMenu, StateKnowledgeBase, StateManageBot,
		StateDateEntering, StateConfirmOverwrite,
		StateWolt, StateBolt, StateYandex,
		StateManualTemp, StateManualLabel, StateSaving,
	}
	states := make(map[string]*entity.StateDefinition, len(keys))
	for _, key := range keys {
		states[key] = &entity.StateDefinition{
			Key:           key,
			PhraseUser:    fmt.Sprintf("[%s]{comment}", key),
			PhraseAdmin:   fmt.Sprintf("[%s]{comment}", key),
			PhraseManager: fmt.Sprintf("[%s]{comment}", key),
		}
	}
	return &fakeDefs{states: states}
}

func newFixture() *engineFixture {
	f := &engineFixture{
		users:    newFakeUsers(),
		reports:  &fakeReports{existing: make(map[string]bool)},
		weather:  &fakeWeather{},
		msgr:     &fakeMessenger{},
		listener: &fakeListener{},
	}
	log := testLogger()
	f.engine = NewEngine(f.users, f.reports, f.weather,
		NewRenderer(engineDefs(), log), f.msgr, time.UTC, log)
	f.engine.SetClock(func() time.Time {
		return time.Date(2026, 5, 15, 12, 0, 0, 0, time.UTC)
	})
	f.engine.SetReportListener(f.listener)
	return f
}

func (f *engineFixture) seed(state string, draft entity.ReportDraft) {
	f.users.stored[42] = &entity.User{
		TelegramId:    42,
		Name:          "Anna K.",
		Role:          entity.UserRole,
		State:         state,
		LastMessageId: 10,
		Draft:         draft,
	}
}

func (f *engineFixture) stored() *entity.User {
	return f.users.stored[42]
}

func cmd(name string) Event {
	return Event{Kind: KindCommand, UserId: 42, ChatId: 42, FirstName: "Anna", LastName: "K", Payload: name}
}

func cb(data string) Event {
	return Event{Kind: KindCallback, UserId: 42, ChatId: 42, Payload: data, CallbackId: "cb1"}
}

func txt(text string) Event {
	return Event{Kind: KindText, UserId: 42, ChatId: 42, Payload: text}
}

func TestEngine_FirstContactCreatesGuest(t *testing.T) {
	f := newFixture()

	err := f.engine.Handle(context.Background(), cmd("start"))
	require.NoError(t, err)

	user := f.stored()
	require.NotNil(t, user)
	assert.Equal(t, entity.GuestRole, user.Role)
	assert.Equal(t, entity.StateGuest, user.State)
	assert.Equal(t, "Anna K.", user.Name)
	assert.NotZero(t, user.LastMessageId, "screen message slot must be recorded")
}

func TestEngine_StartCommandWorksFromAnyState(t *testing.T) {
	f := newFixture()
	f.seed(StateYandex, entity.ReportDraft{Date: "01.05.2026"})

	err := f.engine.Handle(context.Background(), cmd("start"))
	require.NoError(t, err)

	assert.Equal(t, StateMainMenu, f.stored().State)
	// /start opens a fresh slot instead of editing the old message.
	assert.NotEqual(t, int64(10), f.stored().LastMessageId)
}

func TestEngine_UnknownEventRecoversToMainMenu(t *testing.T) {
	f := newFixture()
	f.seed(StateWolt, entity.ReportDraft{})

	err := f.engine.Handle(context.Background(), cb("daily_report.weather_label.clear"))
	require.NoError(t, err)

	assert.Equal(t, StateMainMenu, f.stored().State)
	last := f.msgr.lastScreen()
	assert.Contains(t, last.text, "[main_menu]")
	assert.Contains(t, last.text, commentUnknown)
	require.Len(t, f.msgr.acks, 1, "callbacks are always answered")
}

func TestEngine_DateEntryByText(t *testing.T) {
	f := newFixture()
	f.seed(StateDateEntering, entity.ReportDraft{})

	err := f.engine.Handle(context.Background(), txt("01.05"))
	require.NoError(t, err)

	user := f.stored()
	assert.Equal(t, StateWolt, user.State)
	assert.Equal(t, "01.05.2026", user.Draft.Date, "year appended from the clock")
	assert.Equal(t, "Anna K.(42)", user.Draft.Author)
}

func TestEngine_DateEntryRejectsGarbage(t *testing.T) {
	f := newFixture()
	f.seed(StateDateEntering, entity.ReportDraft{})

	err := f.engine.Handle(context.Background(), txt("вчера"))
	require.NoError(t, err)

	assert.Equal(t, StateDateEntering, f.stored().State)
	assert.Contains(t, f.msgr.lastScreen().text, commentBadDate)
	assert.Empty(t, f.stored().Draft.Date)
}

func TestEngine_DateShortcuts(t *testing.T) {
	tests := []struct {
		action string
		want   string
	}{
		{"daily_report.today", "15.05.2026"},
		{"daily_report.yesterday", "14.05.2026"},
	}
	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			f := newFixture()
			f.seed(StateDateEntering, entity.ReportDraft{})

			err := f.engine.Handle(context.Background(), cb(tt.action))
			require.NoError(t, err)

			assert.Equal(t, tt.want, f.stored().Draft.Date)
			assert.Equal(t, StateWolt, f.stored().State)
		})
	}
}

func TestEngine_DateCollisionFork(t *testing.T) {
	f := newFixture()
	f.reports.existing["01.05.2026"] = true
	f.seed(StateDateEntering, entity.ReportDraft{})

	err := f.engine.Handle(context.Background(), txt("01.05"))
	require.NoError(t, err)

	assert.Equal(t, StateConfirmOverwrite, f.stored().State)
	assert.Contains(t, f.msgr.lastScreen().text, "01.05.2026", "collision screen shows the date")

	// Confirming raises the overwrite flag and moves on.
	err = f.engine.Handle(context.Background(), cb("yes"))
	require.NoError(t, err)
	assert.True(t, f.stored().Draft.Overwrite)
	assert.Equal(t, StateWolt, f.stored().State)
}

func TestEngine_DateCollisionDeclined(t *testing.T) {
	f := newFixture()
	f.seed(StateConfirmOverwrite, entity.ReportDraft{Date: "01.05.2026", Overwrite: true})

	err := f.engine.Handle(context.Background(), cb("nope"))
	require.NoError(t, err)

	assert.False(t, f.stored().Draft.Overwrite)
	assert.Equal(t, StateDateEntering, f.stored().State)
}

func TestEngine_RevenueChain(t *testing.T) {
	f := newFixture()
	f.weather.summary = &entity.WeatherSummary{Temp: 24.5, Label: entity.LabelClear}
	f.seed(StateWolt, entity.ReportDraft{Date: "01.05.2026", Author: "Anna K.(42)"})

	require.NoError(t, f.engine.Handle(context.Background(), txt("1200.50")))
	assert.Equal(t, StateBolt, f.stored().State)

	// Bad input stays in place with a visible complaint.
	require.NoError(t, f.engine.Handle(context.Background(), txt("дофига")))
	assert.Equal(t, StateBolt, f.stored().State)
	assert.Contains(t, f.msgr.lastScreen().text, commentBadAmount)

	require.NoError(t, f.engine.Handle(context.Background(), txt("800,25")))
	assert.Equal(t, StateYandex, f.stored().State)

	// The last figure triggers the weather sub-flow straight to saving.
	require.NoError(t, f.engine.Handle(context.Background(), txt("455")))
	user := f.stored()
	assert.Equal(t, StateSaving, user.State)
	assert.Equal(t, 1, f.weather.calls)
	require.NotNil(t, user.Draft.Wolt)
	require.NotNil(t, user.Draft.Bolt)
	require.NotNil(t, user.Draft.Yandex)
	require.NotNil(t, user.Draft.Temp)
	assert.Equal(t, 1200.50, *user.Draft.Wolt)
	assert.Equal(t, 800.25, *user.Draft.Bolt)
	assert.Equal(t, 455.0, *user.Draft.Yandex)
	assert.Equal(t, 24.5, *user.Draft.Temp)
	assert.Equal(t, entity.LabelClear, user.Draft.WeatherLabel)
	assert.Contains(t, f.msgr.lastScreen().text, entity.LabelClear, "summary shown in the comment")
}

func TestEngine_RevenueBackRewinds(t *testing.T) {
	f := newFixture()
	f.seed(StateYandex, entity.ReportDraft{Date: "01.05.2026"})

	require.NoError(t, f.engine.Handle(context.Background(), cb("back")))
	assert.Equal(t, StateBolt, f.stored().State)

	require.NoError(t, f.engine.Handle(context.Background(), cb("back")))
	assert.Equal(t, StateWolt, f.stored().State)

	require.NoError(t, f.engine.Handle(context.Background(), cb("back")))
	assert.Equal(t, StateDateEntering, f.stored().State)
}

func TestEngine_WeatherFailureFallsBackToManual(t *testing.T) {
	f := newFixture()
	f.weather.err = errors.New("open-meteo timeout")
	wolt, bolt := 1.0, 2.0
	f.seed(StateYandex, entity.ReportDraft{Date: "01.05.2026", Wolt: &wolt, Bolt: &bolt})

	require.NoError(t, f.engine.Handle(context.Background(), txt("300")))

	assert.Equal(t, StateManualTemp, f.stored().State)
	assert.Contains(t, f.msgr.lastScreen().text, commentWeatherFailed)

	// Manual temperature, then label choice.
	require.NoError(t, f.engine.Handle(context.Background(), txt("26")))
	assert.Equal(t, StateManualLabel, f.stored().State)
	require.NotNil(t, f.stored().Draft.Temp)
	assert.Equal(t, 26.0, *f.stored().Draft.Temp)

	require.NoError(t, f.engine.Handle(context.Background(), cb("daily_report.weather_label.partly_cloudy")))
	assert.Equal(t, StateSaving, f.stored().State)
	assert.Equal(t, entity.LabelPartlyCloudy, f.stored().Draft.WeatherLabel)
}

func TestEngine_ManualTempRejectsGarbage(t *testing.T) {
	f := newFixture()
	f.seed(StateManualTemp, entity.ReportDraft{Date: "01.05.2026"})

	require.NoError(t, f.engine.Handle(context.Background(), txt("тепло")))

	assert.Equal(t, StateManualTemp, f.stored().State)
	assert.Contains(t, f.msgr.lastScreen().text, commentBadTemp)
}

func TestEngine_BackFromSavingRefetchesWeather(t *testing.T) {
	f := newFixture()
	f.weather.summary = &entity.WeatherSummary{Temp: 20, Label: entity.LabelOvercast}
	temp := 15.0
	f.seed(StateSaving, entity.ReportDraft{Date: "01.05.2026", Temp: &temp, WeatherLabel: entity.LabelClear})

	require.NoError(t, f.engine.Handle(context.Background(), cb("back")))

	assert.Equal(t, 1, f.weather.calls)
	assert.Equal(t, StateSaving, f.stored().State)
	assert.Equal(t, entity.LabelOvercast, f.stored().Draft.WeatherLabel, "refetch replaces the draft values")
}

func TestEngine_SubmitSuccess(t *testing.T) {
	f := newFixture()
	wolt, bolt, yandex, temp := 1200.5, 800.0, 455.0, 24.5
	f.seed(StateSaving, entity.ReportDraft{
		Date: "01.05.2026", Author: "Anna K.(42)",
		Wolt: &wolt, Bolt: &bolt, Yandex: &yandex, Temp: &temp,
		WeatherLabel: entity.LabelClear, Overwrite: true,
	})

	require.NoError(t, f.engine.Handle(context.Background(), cb("yes")))

	require.Len(t, f.reports.submitted, 1)
	sub := f.reports.submitted[0]
	assert.True(t, sub.overwrite)
	assert.Equal(t, entity.ReportRecord{
		Date: "01.05.2026", Author: "Anna K.(42)",
		Wolt: 1200.5, Bolt: 800.0, Yandex: 455.0, Temp: 24.5,
		WeatherLabel: entity.LabelClear,
	}, sub.rec)

	user := f.stored()
	assert.Equal(t, StateMainMenu, user.State)
	assert.Equal(t, entity.ReportDraft{}, user.Draft, "draft cleared after submission")

	require.Len(t, f.listener.calls, 1)
	assert.Equal(t, "01.05.2026", f.listener.calls[0].rec.Date)

	require.Len(t, f.msgr.acks, 1)
	assert.True(t, f.msgr.acks[0].alert)
	assert.Contains(t, f.msgr.acks[0].text, "сохранён")
}

func TestEngine_SubmitFailureKeepsEverything(t *testing.T) {
	f := newFixture()
	f.reports.failSubmit = true
	temp := 24.5
	f.seed(StateSaving, entity.ReportDraft{Date: "01.05.2026", Temp: &temp, WeatherLabel: entity.LabelClear})

	require.NoError(t, f.engine.Handle(context.Background(), cb("yes")))

	user := f.stored()
	assert.Equal(t, StateSaving, user.State, "state unchanged so the user can retry")
	assert.Equal(t, "01.05.2026", user.Draft.Date, "draft preserved")
	assert.Empty(t, f.listener.calls)

	require.Len(t, f.msgr.acks, 1)
	assert.True(t, f.msgr.acks[0].alert)
	assert.Contains(t, f.msgr.acks[0].text, "Не удалось")
}

func TestEngine_StoreFailureRendersGenericError(t *testing.T) {
	f := newFixture()
	f.seed(StateMainMenu, entity.ReportDraft{})
	f.users.failSetState = true

	require.NoError(t, f.engine.Handle(context.Background(), cb("main_menu.daily_report")))

	assert.Equal(t, StateMainMenu, f.stored().State)
	assert.Contains(t, f.msgr.lastScreen().text, commentStoreFailed)
}

func TestEngine_RewriteUsersFromManageBot(t *testing.T) {
	f := newFixture()
	syncer := &fakeSyncer{}
	f.engine.SetUserSyncer(syncer)
	f.seed(StateManageBot, entity.ReportDraft{})

	require.NoError(t, f.engine.Handle(context.Background(), cb("manage_bot.rewrite_users")))

	assert.Equal(t, 1, syncer.calls)
	assert.Equal(t, StateManageBot, f.stored().State)
}

func TestEngine_MenuNavigation(t *testing.T) {
	f := newFixture()
	f.seed(StateMainMenu, entity.ReportDraft{})

	require.NoError(t, f.engine.Handle(context.Background(), cb("main_menu.knowledge_base")))
	assert.Equal(t, StateKnowledgeBase, f.stored().State)

	require.NoError(t, f.engine.Handle(context.Background(), cb("main_menu.exit")))
	assert.Equal(t, StateMainMenu, f.stored().State)

	require.NoError(t, f.engine.Handle(context.Background(), cb("main_menu.daily_report")))
	assert.Equal(t, StateDateEntering, f.stored().State)
}
