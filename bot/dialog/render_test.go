package dialog

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"ShiftBot/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDefs struct {
	states  map[string]*entity.StateDefinition
	buttons map[string]*entity.ButtonDefinition
}

func (f *fakeDefs) GetStateDefinition(_ context.Context, key string) (*entity.StateDefinition, error) {
	return f.states[key], nil
}

func (f *fakeDefs) GetButton(_ context.Context, key string) (*entity.ButtonDefinition, error) {
	return f.buttons[key], nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testUser() *entity.User {
	wolt := 1200.5
	return &entity.User{
		TelegramId: 42,
		Name:       "Anna K.",
		Role:       entity.UserRole,
		State:      StateMainMenu,
		Draft: entity.ReportDraft{
			Date: "01.05.2026",
			Wolt: &wolt,
		},
	}
}

func TestRender_SubstitutesPlaceholders(t *testing.T) {
	defs := &fakeDefs{
		states: map[string]*entity.StateDefinition{
			StateMainMenu: {
				Key:        StateMainMenu,
				PhraseUser: `Привет, {name}!\n{comment}Дата: {daily_report_date}, Wolt: {wolt}`,
			},
		},
	}
	r := NewRenderer(defs, testLogger())

	text, keyboard := r.Render(context.Background(), StateMainMenu, entity.UserRole, ScreenData(testUser(), "ok\n"))

	assert.Equal(t, "Привет, Anna K.!\nok\nДата: 01.05.2026, Wolt: 1200.5", text)
	assert.Nil(t, keyboard, "no layout configured for the role")
}

func TestRender_UnresolvedPlaceholderStaysLiteral(t *testing.T) {
	defs := &fakeDefs{
		states: map[string]*entity.StateDefinition{
			StateMainMenu: {Key: StateMainMenu, PhraseUser: "x {mystery} y"},
		},
	}
	r := NewRenderer(defs, testLogger())

	text, _ := r.Render(context.Background(), StateMainMenu, entity.UserRole, ScreenData(testUser(), ""))

	assert.Equal(t, "x {mystery} y", text)
}

func TestRender_MissingDefinitionDegrades(t *testing.T) {
	r := NewRenderer(&fakeDefs{}, testLogger())

	text, keyboard := r.Render(context.Background(), "no.such.state", entity.UserRole, nil)

	assert.Empty(t, text)
	assert.Nil(t, keyboard)
}

func TestRender_MissingPhraseForRoleDegrades(t *testing.T) {
	defs := &fakeDefs{
		states: map[string]*entity.StateDefinition{
			StateMainMenu: {Key: StateMainMenu, PhraseAdmin: "admin only"},
		},
	}
	r := NewRenderer(defs, testLogger())

	text, _ := r.Render(context.Background(), StateMainMenu, entity.UserRole, ScreenData(testUser(), ""))

	assert.Empty(t, text)
}

func TestRender_BuildsKeyboardFromLayout(t *testing.T) {
	defs := &fakeDefs{
		states: map[string]*entity.StateDefinition{
			StateMainMenu: {
				Key:         StateMainMenu,
				PhraseUser:  "menu",
				ButtonsUser: `[["main_menu.daily_report"],["yes","nope"]]`,
			},
		},
		buttons: map[string]*entity.ButtonDefinition{
			"main_menu.daily_report": {Key: "main_menu.daily_report", Label: "📋 Отчёт"},
			"yes":                    {Key: "yes", Label: "Да"},
		},
	}
	r := NewRenderer(defs, testLogger())

	_, keyboard := r.Render(context.Background(), StateMainMenu, entity.UserRole, ScreenData(testUser(), ""))

	require.Len(t, keyboard, 2)
	require.Len(t, keyboard[0], 1)
	require.Len(t, keyboard[1], 2)
	assert.Equal(t, Button{Text: "📋 Отчёт", Data: "main_menu.daily_report"}, keyboard[0][0])
	assert.Equal(t, Button{Text: "Да", Data: "yes"}, keyboard[1][0])
	// Unknown button keys keep working with a marked label.
	assert.Equal(t, Button{Text: "❓nope", Data: "nope"}, keyboard[1][1])
}

func TestRender_BadLayoutJSONDegrades(t *testing.T) {
	defs := &fakeDefs{
		states: map[string]*entity.StateDefinition{
			StateMainMenu: {
				Key:         StateMainMenu,
				PhraseUser:  "menu",
				ButtonsUser: `[["unterminated"`,
			},
		},
	}
	r := NewRenderer(defs, testLogger())

	text, keyboard := r.Render(context.Background(), StateMainMenu, entity.UserRole, ScreenData(testUser(), ""))

	assert.Equal(t, "menu", text)
	assert.Nil(t, keyboard)
}

func TestScreenData_EmptyDraftFields(t *testing.T) {
	user := &entity.User{TelegramId: 7, Name: "B", Role: entity.GuestRole}

	data := ScreenData(user, "")

	assert.Equal(t, "", data["wolt"])
	assert.Equal(t, "", data["daily_report_temp"])
	assert.Equal(t, "7", data["id"])
	assert.Equal(t, entity.GuestRole, data["role"])
}
