package weather

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ShiftBot/entity"
	"ShiftBot/internal/config"
	"ShiftBot/internal/lib/sl"
)

// Service resolves a report date to a shift weather summary. Open-Meteo is
// the primary source; the assistant, when configured, covers days the archive
// cannot classify. A nil summary with nil error means both sources came up
// empty and the manual fallback applies.
type Service struct {
	meteo      *OpenMeteo
	assistant  *Assistant
	thresholds Thresholds
	log        *slog.Logger
}

func NewService(conf *config.Config, log *slog.Logger) *Service {
	w := conf.Weather
	s := &Service{
		meteo: NewOpenMeteo(w.Latitude, w.Longitude, w.WorkStartHour, w.WorkEndHour),
		thresholds: Thresholds{
			PrecipMin:   w.PrecipMin,
			StrongRain:  w.StrongRain,
			DailyTotal:  w.DailyTotal,
			ClearCloud:  w.ClearCloud,
			BrokenCloud: w.BrokenCloud,
		},
		log: log.With(sl.Module("weather")),
	}
	if conf.OpenAI.Enabled && conf.OpenAI.ApiKey != "" {
		s.assistant = NewAssistant(conf.OpenAI.ApiKey, conf.OpenAI.Model, log)
	}
	return s
}

// Summary accepts the report date in the DD.MM.YYYY form drafts carry.
func (s *Service) Summary(ctx context.Context, date string) (*entity.WeatherSummary, error) {
	day, err := time.Parse("02.01.2006", date)
	if err != nil {
		return nil, fmt.Errorf("parsing report date %q: %w", date, err)
	}

	samples, err := s.meteo.Fetch(ctx, day)
	if err != nil {
		s.log.Error("open-meteo fetch", slog.String("date", date), sl.Err(err))
	} else if summary := Classify(samples, s.thresholds); summary != nil {
		return summary, nil
	} else {
		s.log.Warn("open-meteo returned no work-window samples", slog.String("date", date))
	}

	if s.assistant == nil {
		return nil, nil
	}

	summary, err := s.assistant.Summary(ctx, day)
	if err != nil {
		s.log.Error("assistant lookup", slog.String("date", date), sl.Err(err))
		return nil, nil
	}
	s.log.Info("weather resolved by assistant", slog.String("date", date), slog.String("label", summary.Label))
	return summary, nil
}
