package main

import (
	"context"
	"flag"
	"log/slog"
	"time"

	"ShiftBot/bot"
	"ShiftBot/bot/dialog"
	"ShiftBot/internal/config"
	repository "ShiftBot/internal/database"
	"ShiftBot/internal/http-server/api"
	"ShiftBot/internal/lib/logger"
	"ShiftBot/internal/lib/sl"
	"ShiftBot/internal/service/sheets"
	syncservice "ShiftBot/internal/service/sync"
	"ShiftBot/internal/service/weather"
	"ShiftBot/internal/ws"
)

// apiCore combines the repository and the sync service into the single
// handler surface the http server expects.
type apiCore struct {
	*repository.MongoDB
	*syncservice.Service
}

func main() {

	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	lg := logger.SetupLogger(conf.Env, *logPath)

	loc, err := time.LoadLocation(conf.Weather.Timezone)
	if err != nil {
		lg.With(sl.Err(err)).Error("loading timezone, falling back to UTC")
		loc = time.UTC
	}

	// Initialize Telegram bot if enabled
	var shiftBot *bot.ShiftBot
	if conf.Telegram.Enabled {
		shiftBot, err = bot.NewShiftBot(conf.Telegram.BotName, conf.Telegram.ApiKey, conf.Telegram.AdminId, lg)
		if err != nil {
			lg.Error("failed to initialize telegram bot", slog.String("error", err.Error()))
			shiftBot = nil
		} else {
			// Escalated log records go to the admin chat
			lg = logger.SetupTelegramHandler(lg, shiftBot, slog.LevelError)
			lg.With(
				slog.String("bot_name", conf.Telegram.BotName),
			).Info("telegram bot initialized")
		}
	}

	lg.Info("starting shiftbot", slog.String("config", *configPath), slog.String("env", conf.Env))
	lg.Debug("debug messages enabled")

	db, err := repository.NewMongoClient(conf, lg)
	if err != nil {
		lg.With(
			sl.Err(err),
		).Error("mongo client")
		return
	}
	lg.With(
		slog.String("host", conf.Mongo.Host),
		slog.String("port", conf.Mongo.Port),
		slog.String("user", conf.Mongo.User),
		slog.String("database", conf.Mongo.Database),
	).Info("mongo client initialized")

	ctx := context.Background()

	sheetService, err := sheets.NewService(ctx, conf, loc, lg)
	if err != nil {
		lg.With(
			sl.Err(err),
		).Error("sheets client")
		return
	}
	lg.With(
		sl.Secret("report_sheet", conf.Sheets.ReportSheetId),
		sl.Secret("config_sheet", conf.Sheets.ConfigSheetId),
	).Info("sheets client initialized")

	syncService := syncservice.NewService(sheetService, db, lg)
	if err := syncService.Bootstrap(ctx); err != nil {
		lg.With(
			sl.Err(err),
		).Error("bootstrap sync")
		return
	}
	if err := syncService.StartScheduler(time.Duration(conf.Sync.IntervalHours) * time.Hour); err != nil {
		lg.With(
			sl.Err(err),
		).Error("sync scheduler")
	}
	defer syncService.Stop()

	weatherService := weather.NewService(conf, lg)

	hub := ws.NewHub(lg)
	go hub.Run()

	if shiftBot != nil {
		renderer := dialog.NewRenderer(db, lg)
		engine := dialog.NewEngine(db, sheetService, weatherService, renderer, shiftBot.Messenger(), loc, lg)
		engine.SetUserSyncer(syncService)
		engine.SetReportListener(hub)
		shiftBot.SetEngine(engine)

		go func() {
			if err := shiftBot.Start(); err != nil {
				lg.Error("telegram bot error", slog.String("error", err.Error()))
			}
		}()
	}

	handler := apiCore{MongoDB: db, Service: syncService}

	// *** blocking start with http server ***
	err = api.New(conf, lg, handler, hub)
	if err != nil {
		lg.Error("server start", sl.Err(err))
		return
	}
	lg.Error("service stopped")
}
