package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"ShiftBot/entity"
	"ShiftBot/internal/lib/sl"

	openai "github.com/sashabaranov/go-openai"
)

const assistantPrompt = `Ты погодный ассистент. Верни фактическую погоду в Тбилиси (Грузия) за указанный день ` +
	`в виде JSON объекта {"temp": <число, дневная температура °C>, "label": <строка>}. ` +
	`Поле label строго одно из: "Ясно или малооблачно", "Ясно или малооблачно (был кратковременный дождь)", ` +
	`"Облачно с прояснениями", "Пасмурно без осадков", "Пасмурно с кратковременными осадками", ` +
	`"Пасмурно с сильными осадками". Только JSON, без пояснений.`

var knownLabels = map[string]bool{
	entity.LabelClear:          true,
	entity.LabelClearBriefRain: true,
	entity.LabelPartlyCloudy:   true,
	entity.LabelOvercast:       true,
	entity.LabelBriefPrecip:    true,
	entity.LabelHeavyPrecip:    true,
}

// Assistant is the secondary weather source, consulted when Open-Meteo has no
// usable data for the requested day.
type Assistant struct {
	client *openai.Client
	model  string
	log    *slog.Logger
}

func NewAssistant(apiKey, model string, log *slog.Logger) *Assistant {
	return &Assistant{
		client: openai.NewClient(apiKey),
		model:  model,
		log:    log.With(sl.Module("weather.assistant")),
	}
}

func (a *Assistant) Summary(ctx context.Context, day time.Time) (*entity.WeatherSummary, error) {
	res, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: assistantPrompt},
			{Role: openai.ChatMessageRoleUser, Content: day.Format("02.01.2006")},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("completion request: %w", err)
	}
	if len(res.Choices) == 0 {
		return nil, fmt.Errorf("completion returned no choices")
	}

	var parsed struct {
		Temp  float64 `json:"temp"`
		Label string  `json:"label"`
	}
	content := res.Choices[0].Message.Content
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("parsing completion %q: %w", content, err)
	}
	if !knownLabels[parsed.Label] {
		a.log.Warn("assistant returned unknown label", slog.String("label", parsed.Label))
		return nil, fmt.Errorf("unknown weather label %q", parsed.Label)
	}

	return &entity.WeatherSummary{Temp: parsed.Temp, Label: parsed.Label}, nil
}
