package dialog

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"ShiftBot/entity"
	"ShiftBot/internal/lib/sl"
)

var placeholderRx = regexp.MustCompile(`\{([a-z_]+)\}`)

// Placeholders is the substitution set for one render.
type Placeholders map[string]string

// ScreenData derives the full placeholder set from a user and an optional
// in-band comment.
func ScreenData(user *entity.User, comment string) Placeholders {
	return Placeholders{
		"name":                       user.Name,
		"id":                         strconv.FormatInt(user.TelegramId, 10),
		"role":                       user.Role,
		"comment":                    comment,
		"daily_report_date":          user.Draft.Date,
		"wolt":                       formatAmount(user.Draft.Wolt),
		"bolt":                       formatAmount(user.Draft.Bolt),
		"yandex":                     formatAmount(user.Draft.Yandex),
		"daily_report_temp":          formatAmount(user.Draft.Temp),
		"daily_report_weather_label": user.Draft.WeatherLabel,
	}
}

func formatAmount(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// Renderer is a pure projection from (state, role, placeholders) to a screen.
// Configuration gaps degrade (empty text, no keyboard, marked button labels)
// and are logged as data defects, never returned as errors.
type Renderer struct {
	defs DefinitionStore
	log  *slog.Logger
}

func NewRenderer(defs DefinitionStore, log *slog.Logger) *Renderer {
	return &Renderer{
		defs: defs,
		log:  log.With(sl.Module("dialog.renderer")),
	}
}

// Render resolves the screen for a state key and role. The keyboard is nil
// when no layout is configured for the role.
func (r *Renderer) Render(ctx context.Context, stateKey, role string, data Placeholders) (string, [][]Button) {
	def, err := r.defs.GetStateDefinition(ctx, stateKey)
	if err != nil {
		r.log.Error("loading state definition", slog.String("state", stateKey), sl.Err(err))
		return "", nil
	}
	if def == nil {
		r.log.Error("state definition missing", slog.String("state", stateKey))
		return "", nil
	}

	return r.buildText(def, role, data), r.buildKeyboard(ctx, def, role)
}

func (r *Renderer) buildText(def *entity.StateDefinition, role string, data Placeholders) string {
	text := def.Phrase(role)
	if text == "" {
		r.log.Error("phrase not configured",
			slog.String("state", def.Key),
			slog.String("role", role),
		)
		return ""
	}

	// Sheet cells store newlines escaped.
	text = strings.ReplaceAll(text, `\n`, "\n")

	return placeholderRx.ReplaceAllStringFunc(text, func(match string) string {
		key := match[1 : len(match)-1]
		value, ok := data[key]
		if !ok {
			r.log.Warn("unresolved placeholder",
				slog.String("state", def.Key),
				slog.String("placeholder", key),
			)
			return match
		}
		return value
	})
}

func (r *Renderer) buildKeyboard(ctx context.Context, def *entity.StateDefinition, role string) [][]Button {
	raw := def.Layout(role)
	if raw == "" {
		r.log.Error("buttons not configured",
			slog.String("state", def.Key),
			slog.String("role", role),
		)
		return nil
	}

	var rows [][]string
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		r.log.Error("parsing button layout",
			slog.String("state", def.Key),
			slog.String("layout", raw),
			sl.Err(err),
		)
		return nil
	}

	keyboard := make([][]Button, 0, len(rows))
	for _, row := range rows {
		line := make([]Button, 0, len(row))
		for _, key := range row {
			line = append(line, Button{Text: r.buttonLabel(ctx, key), Data: key})
		}
		keyboard = append(keyboard, line)
	}
	return keyboard
}

func (r *Renderer) buttonLabel(ctx context.Context, key string) string {
	def, err := r.defs.GetButton(ctx, key)
	if err != nil {
		r.log.Error("loading button", slog.String("key", key), sl.Err(err))
		return "❓" + key
	}
	if def == nil {
		r.log.Warn("button not configured", slog.String("key", key))
		return "❓" + key
	}
	return def.Label
}
