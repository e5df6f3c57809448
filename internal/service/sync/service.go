package sync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ShiftBot/entity"
	"ShiftBot/internal/lib/sl"

	"github.com/go-co-op/gocron/v2"
)

// ConfigSource is the remote side of the sync: the config spreadsheet.
type ConfigSource interface {
	FetchStates(ctx context.Context) ([]entity.StateDefinition, error)
	FetchButtons(ctx context.Context) ([]entity.ButtonDefinition, error)
	FetchUsers(ctx context.Context) ([]entity.User, error)
	WriteUsers(ctx context.Context, users []entity.User) error
}

// Store is the local side: the database collections being replaced.
type Store interface {
	ReplaceStates(ctx context.Context, states []entity.StateDefinition) error
	ReplaceButtons(ctx context.Context, buttons []entity.ButtonDefinition) error
	ReplaceBotUsers(ctx context.Context, users []entity.User) error
	ListBotUsers(ctx context.Context) ([]entity.User, error)
}

// Service moves bot configuration between the spreadsheet and the database.
type Service struct {
	src       ConfigSource
	store     Store
	log       *slog.Logger
	scheduler gocron.Scheduler
}

func NewService(src ConfigSource, store Store, log *slog.Logger) *Service {
	return &Service{
		src:   src,
		store: store,
		log:   log.With(sl.Module("sync")),
	}
}

// Bootstrap pulls the full configuration at startup: screens, buttons and the
// user roster all come from the spreadsheet.
func (s *Service) Bootstrap(ctx context.Context) error {
	if err := s.refreshDefinitions(ctx); err != nil {
		return err
	}

	users, err := s.src.FetchUsers(ctx)
	if err != nil {
		return fmt.Errorf("fetching users: %w", err)
	}
	if err := s.store.ReplaceBotUsers(ctx, users); err != nil {
		return fmt.Errorf("replacing users: %w", err)
	}

	s.log.Info("bootstrap sync complete", slog.Int("users", len(users)))
	return nil
}

// Refresh re-pulls screens and buttons only. Users are deliberately left
// alone so live conversation state is not clobbered mid-dialogue.
func (s *Service) Refresh(ctx context.Context) error {
	if err := s.refreshDefinitions(ctx); err != nil {
		return err
	}
	s.log.Info("definitions refreshed")
	return nil
}

func (s *Service) refreshDefinitions(ctx context.Context) error {
	states, err := s.src.FetchStates(ctx)
	if err != nil {
		return fmt.Errorf("fetching states: %w", err)
	}
	if err := s.store.ReplaceStates(ctx, states); err != nil {
		return fmt.Errorf("replacing states: %w", err)
	}

	buttons, err := s.src.FetchButtons(ctx)
	if err != nil {
		return fmt.Errorf("fetching buttons: %w", err)
	}
	if err := s.store.ReplaceButtons(ctx, buttons); err != nil {
		return fmt.Errorf("replacing buttons: %w", err)
	}
	return nil
}

// RewriteUsers publishes the local user roster back to the spreadsheet.
func (s *Service) RewriteUsers(ctx context.Context) error {
	users, err := s.store.ListBotUsers(ctx)
	if err != nil {
		return fmt.Errorf("listing users: %w", err)
	}
	if err := s.src.WriteUsers(ctx, users); err != nil {
		return fmt.Errorf("writing users sheet: %w", err)
	}
	return nil
}

// StartScheduler begins periodic definition refreshes. A zero interval
// disables the job.
func (s *Service) StartScheduler(interval time.Duration) error {
	if interval <= 0 {
		s.log.Info("periodic sync disabled")
		return nil
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			if err := s.Refresh(ctx); err != nil {
				s.log.Error("periodic sync", sl.Err(err))
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("scheduling sync job: %w", err)
	}

	scheduler.Start()
	s.scheduler = scheduler
	s.log.Info("periodic sync scheduled", slog.Duration("interval", interval))
	return nil
}

// Stop shuts the scheduler down if it was started.
func (s *Service) Stop() {
	if s.scheduler != nil {
		if err := s.scheduler.Shutdown(); err != nil {
			s.log.Warn("stopping scheduler", sl.Err(err))
		}
	}
}
