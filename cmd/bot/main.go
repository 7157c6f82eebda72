package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"writer_digest_bot/internal/app"
	"writer_digest_bot/internal/domain/chat"
	"writer_digest_bot/internal/domain/digest"
	"writer_digest_bot/internal/domain/progress"
	"writer_digest_bot/internal/infra/cache"
	"writer_digest_bot/internal/infra/config"
	idb "writer_digest_bot/internal/infra/database"
	"writer_digest_bot/internal/infra/discord"
	"writer_digest_bot/internal/infra/logger"
	"writer_digest_bot/internal/infra/media"
	"writer_digest_bot/internal/infra/memstore"
	"writer_digest_bot/internal/infra/metrics"
	"writer_digest_bot/internal/infra/news"
	"writer_digest_bot/internal/infra/scheduler"
	"writer_digest_bot/internal/infra/sheets"
	"writer_digest_bot/internal/infra/telegram"
	"writer_digest_bot/internal/infra/weather"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// platformRunner is a connected chat platform that can be shut down.
type platformRunner struct {
	platform chat.Platform
	stop     func()
}

func main() {
	fmt.Println("Writer Digest Bot starting...")

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Could not load application configuration: %v", err)
	}
	logger.Init(cfg)
	mainLogger := logger.Component("main")
	mainLogger.Infof("Configuration loaded. Platform: %s, Storage: %s, Environment: %s", cfg.Platform, cfg.Storage.Backend, cfg.Environment)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := prometheus.NewRegistry()
	metrics.RegisterCollectors(reg)
	var metricsServer *metrics.Server
	if cfg.MetricsAddr != "" {
		metricsServer = metrics.NewServer(cfg.MetricsAddr, reg, logger.Component("metrics"))
		metricsServer.Start()
	}

	var db *sql.DB
	if cfg.DatabaseURL != "" {
		db, err = idb.NewPostgresConnection(cfg.DatabaseURL)
		if err != nil {
			mainLogger.Fatalf("Could not connect to database: %v", err)
		}
		defer db.Close()
		if err := idb.EnsureSchema(ctx, db); err != nil {
			mainLogger.Fatalf("Could not apply database schema: %v", err)
		}
		mainLogger.Info("Database connection established successfully.")
	}

	repo, err := newProgressRepository(ctx, cfg, db)
	if err != nil {
		mainLogger.Fatalf("Could not initialize progress storage: %v", err)
	}
	if repo == nil {
		mainLogger.Warn("No progress storage configured. Progress commands are disabled.")
	}

	ledger, closeLedger, err := newRunLedger(ctx, cfg, db, mainLogger)
	if err != nil {
		mainLogger.Fatalf("Could not initialize digest run ledger: %v", err)
	}
	defer closeLedger()

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	weatherClient := weather.NewClient(httpClient, cfg.Weather.APIURL, cfg.Weather.Latitude, cfg.Weather.Longitude, cfg.Weather.Timezone)
	feedClient := news.NewFeedClient(httpClient, cfg.News.FeedURL)
	extractor := media.NewExtractor(cfg.YtDlpPath)

	loc := cfg.Digest.Location()
	targets := digest.Targets{}
	for _, role := range digest.Roles {
		targets[role] = chat.Destination(cfg.Digest.Channel(string(role)))
	}

	// The bot needs the platform, and the platform handlers need the bot's
	// dispatcher, so the platform is connected after the bot is built.
	var runner *platformRunner
	var bot *app.Bot
	switch cfg.Platform {
	case config.PlatformTelegram:
		tb, err := newTelebot(cfg.TelegramToken)
		if err != nil {
			mainLogger.Fatalf("Could not create Telegram bot: %v", err)
		}
		adapter := telegram.NewTelebotAdapter(tb)
		bot = newBot(adapter, repo, weatherClient, feedClient, ledger, extractor, targets, loc, cfg)
		telegram.RegisterHandlers(ctx, tb, bot.Dispatcher, commandNames(bot.Router), logger.Component("telegram"))
		_ = bot.Dispatcher.Dispatch(ctx, telegram.ReadyEvent(tb))
		go tb.Start()
		runner = &platformRunner{platform: adapter, stop: tb.Stop}
	case config.PlatformDiscord:
		session, err := discord.NewSession(cfg.DiscordToken)
		if err != nil {
			mainLogger.Fatalf("Could not create Discord session: %v", err)
		}
		adapter := discord.NewSessionAdapter(session)
		bot = newBot(adapter, repo, weatherClient, feedClient, ledger, extractor, targets, loc, cfg)
		discord.RegisterHandlers(ctx, adapter, bot.Dispatcher, cfg.CommandPrefix, logger.Component("discord"))
		if err := session.Open(); err != nil {
			mainLogger.Fatalf("Could not open Discord gateway: %v", err)
		}
		runner = &platformRunner{platform: adapter, stop: func() {
			if err := adapter.Close(); err != nil {
				mainLogger.WithError(err).Warn("Discord session did not close cleanly")
			}
		}}
	}
	mainLogger.Infof("Connected to %s.", runner.platform.Name())

	digestScheduler, err := scheduler.NewDigestScheduler(bot.Dispatcher, cfg.Digest.CronSpec, loc, 0, logger.Component("scheduler"))
	if err != nil {
		mainLogger.Fatalf("Could not create digest scheduler: %v", err)
	}
	digestScheduler.Start()

	mainLogger.Info("Application setup complete. Bot and Scheduler are running.")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	mainLogger.Info("Shutting down application...")
	digestScheduler.Stop()
	runner.stop()
	cancel()
	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Stop(shutdownCtx); err != nil {
			mainLogger.WithError(err).Warn("Metrics server did not stop cleanly")
		}
		shutdownCancel()
	}
	mainLogger.Info("Application shut down gracefully.")
}

func newBot(
	platform chat.Platform,
	repo progress.Repository,
	weatherSource digest.WeatherSource,
	newsSource digest.NewsSource,
	ledger digest.RunLedger,
	tracks app.TrackResolver,
	targets digest.Targets,
	loc *time.Location,
	cfg *config.AppConfig,
) *app.Bot {
	prefix := cfg.CommandPrefix
	if platform.Name() == config.PlatformTelegram {
		prefix = "/"
	}
	return app.NewBot(app.Deps{
		Platform:    platform,
		Progress:    repo,
		Weather:     weatherSource,
		News:        newsSource,
		Ledger:      ledger,
		Tracks:      tracks,
		Targets:     targets,
		NewsCount:   cfg.News.Count,
		WelcomeRole: cfg.WelcomeRole,
		Prefix:      prefix,
		Location:    loc,
		Logger:      logger.Log.WithField("platform", platform.Name()),
	})
}

func newTelebot(token string) (*telebot.Bot, error) {
	errLogger := logger.Component("telebot")
	return telebot.NewBot(telebot.Settings{
		Token:  token,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			entry := errLogger.WithError(err)
			if c != nil && c.Sender() != nil && c.Chat() != nil {
				entry = entry.WithFields(logrus.Fields{"sender": c.Sender().ID, "chat": c.Chat().ID})
			}
			entry.Error("Telegram update failed")
		},
	})
}

// newProgressRepository returns nil when progress storage is disabled.
func newProgressRepository(ctx context.Context, cfg *config.AppConfig, db *sql.DB) (progress.Repository, error) {
	switch cfg.Storage.Backend {
	case config.StorageSheets:
		service, err := sheets.NewService(ctx, cfg.Storage.CredentialsJSON)
		if err != nil {
			return nil, err
		}
		return sheets.NewRepository(service, cfg.Storage.SpreadsheetID, cfg.Storage.LogRange, cfg.Storage.WorksRange, cfg.Digest.Location()), nil
	case config.StoragePostgres:
		if db == nil {
			return nil, fmt.Errorf("postgres storage selected without DATABASE_URL")
		}
		return idb.NewPostgresProgressRepository(db), nil
	case config.StorageMemory:
		return memstore.NewProgressRepository(), nil
	}
	return nil, nil
}

// newRunLedger prefers redis, then postgres, then an in-process ledger.
func newRunLedger(ctx context.Context, cfg *config.AppConfig, db *sql.DB, log *logrus.Entry) (digest.RunLedger, func(), error) {
	if cfg.RedisAddr != "" {
		client, err := cache.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, nil, err
		}
		log.WithField("addr", cfg.RedisAddr).Info("Using redis digest run ledger.")
		return cache.NewRedisRunLedger(client, ""), closeRedis(client, log), nil
	}
	if db != nil {
		log.Info("Using postgres digest run ledger.")
		return idb.NewPostgresRunLedger(db), func() {}, nil
	}
	log.Info("Using in-memory digest run ledger.")
	return memstore.NewRunLedger(), func() {}, nil
}

func closeRedis(client *redis.Client, log *logrus.Entry) func() {
	return func() {
		if err := client.Close(); err != nil {
			log.WithError(err).Warn("Redis client did not close cleanly")
		}
	}
}

// commandNames lists every command name and alias for slash-command registration.
func commandNames(r *app.Router) []string {
	var names []string
	for _, cmd := range r.Commands() {
		names = append(names, cmd.Name)
		names = append(names, cmd.Aliases...)
	}
	return names
}
