package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported chat platforms.
const (
	PlatformTelegram = "telegram"
	PlatformDiscord  = "discord"
)

// Progress storage backends.
const (
	StorageAuto     = "auto"
	StorageSheets   = "sheets"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
	StorageDisabled = "disabled"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	Platform      string
	TelegramToken string
	DiscordToken  string
	CommandPrefix string
	LogLevel      string
	Environment   string

	Digest  DigestConfig
	Weather WeatherConfig
	News    NewsConfig
	Storage StorageConfig

	DatabaseURL   string
	RedisAddr     string
	RedisPassword string

	WelcomeRole string
	YtDlpPath   string
	MetricsAddr string
	HTTPTimeout time.Duration
}

type DigestConfig struct {
	CronSpec        string
	UTCOffsetHours  int
	SharedChannel   string
	GreetingChannel string
	WeatherChannel  string
	NewsChannel     string
}

type WeatherConfig struct {
	APIURL    string
	Latitude  float64
	Longitude float64
	Timezone  string
}

type NewsConfig struct {
	FeedURL string
	Count   int
}

type StorageConfig struct {
	Backend         string
	CredentialsJSON string
	SpreadsheetID   string
	LogRange        string
	WorksRange      string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("BOT_PLATFORM", PlatformTelegram)
	v.SetDefault("COMMAND_PREFIX", "!")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("DIGEST_CRON_SPEC", "0 7 * * *") // 07:00 every day
	v.SetDefault("DIGEST_UTC_OFFSET_HOURS", 9)
	v.SetDefault("WEATHER_API_URL", "https://api.open-meteo.com/v1/forecast")
	v.SetDefault("WEATHER_LATITUDE", 35.6895)
	v.SetDefault("WEATHER_LONGITUDE", 139.6917)
	v.SetDefault("WEATHER_TIMEZONE", "Asia/Tokyo")
	v.SetDefault("NEWS_FEED_URL", "https://news.yahoo.co.jp/rss/topics/top-picks.xml")
	v.SetDefault("NEWS_COUNT", 3)
	v.SetDefault("HTTP_TIMEOUT", "10s")
	v.SetDefault("STORAGE_BACKEND", StorageAuto)
	v.SetDefault("SHEET_LOG_RANGE", "log!A:D")
	v.SetDefault("SHEET_WORKS_RANGE", "works!A:E")
	v.SetDefault("WELCOME_ROLE", "新規メンバー")
	v.SetDefault("YTDLP_PATH", "yt-dlp")
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &AppConfig{
		Platform:      strings.ToLower(v.GetString("BOT_PLATFORM")),
		TelegramToken: v.GetString("TELEGRAM_TOKEN"),
		DiscordToken:  v.GetString("DISCORD_TOKEN"),
		CommandPrefix: v.GetString("COMMAND_PREFIX"),
		LogLevel:      strings.ToLower(v.GetString("LOG_LEVEL")),
		Environment:   strings.ToLower(v.GetString("ENVIRONMENT")),
		Digest: DigestConfig{
			CronSpec:        v.GetString("DIGEST_CRON_SPEC"),
			UTCOffsetHours:  v.GetInt("DIGEST_UTC_OFFSET_HOURS"),
			SharedChannel:   v.GetString("DIGEST_CHANNEL_ID"),
			GreetingChannel: v.GetString("DIGEST_GREETING_CHANNEL_ID"),
			WeatherChannel:  v.GetString("DIGEST_WEATHER_CHANNEL_ID"),
			NewsChannel:     v.GetString("DIGEST_NEWS_CHANNEL_ID"),
		},
		Weather: WeatherConfig{
			APIURL:    v.GetString("WEATHER_API_URL"),
			Latitude:  v.GetFloat64("WEATHER_LATITUDE"),
			Longitude: v.GetFloat64("WEATHER_LONGITUDE"),
			Timezone:  v.GetString("WEATHER_TIMEZONE"),
		},
		News: NewsConfig{
			FeedURL: v.GetString("NEWS_FEED_URL"),
			Count:   v.GetInt("NEWS_COUNT"),
		},
		Storage: StorageConfig{
			Backend:         strings.ToLower(v.GetString("STORAGE_BACKEND")),
			CredentialsJSON: v.GetString("GOOGLE_CREDENTIALS_JSON"),
			SpreadsheetID:   v.GetString("SPREADSHEET_ID"),
			LogRange:        v.GetString("SHEET_LOG_RANGE"),
			WorksRange:      v.GetString("SHEET_WORKS_RANGE"),
		},
		DatabaseURL:   v.GetString("DATABASE_URL"),
		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		WelcomeRole:   v.GetString("WELCOME_ROLE"),
		YtDlpPath:     v.GetString("YTDLP_PATH"),
		MetricsAddr:   v.GetString("METRICS_ADDR"),
		HTTPTimeout:   v.GetDuration("HTTP_TIMEOUT"),
	}

	switch cfg.Platform {
	case PlatformTelegram:
		if cfg.TelegramToken == "" {
			return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
		}
	case PlatformDiscord:
		if cfg.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is not set")
		}
	default:
		return nil, fmt.Errorf("invalid BOT_PLATFORM %q: want %q or %q", cfg.Platform, PlatformTelegram, PlatformDiscord)
	}

	if cfg.News.Count <= 0 {
		return nil, fmt.Errorf("invalid NEWS_COUNT: %d", cfg.News.Count)
	}
	if cfg.HTTPTimeout <= 0 {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %s", v.GetString("HTTP_TIMEOUT"))
	}
	if cfg.Digest.UTCOffsetHours < -12 || cfg.Digest.UTCOffsetHours > 14 {
		return nil, fmt.Errorf("invalid DIGEST_UTC_OFFSET_HOURS: %d", cfg.Digest.UTCOffsetHours)
	}

	cfg.Storage.Backend = resolveStorage(cfg)
	return cfg, nil
}

// resolveStorage picks the progress backend. "auto" prefers the spreadsheet.
func resolveStorage(cfg *AppConfig) string {
	hasSheets := cfg.Storage.CredentialsJSON != "" && cfg.Storage.SpreadsheetID != ""
	switch cfg.Storage.Backend {
	case StorageSheets:
		if !hasSheets {
			return StorageDisabled
		}
		return StorageSheets
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return StorageDisabled
		}
		return StoragePostgres
	case StorageMemory:
		return StorageMemory
	default:
		if hasSheets {
			return StorageSheets
		}
		if cfg.DatabaseURL != "" {
			return StoragePostgres
		}
		return StorageDisabled
	}
}

// Location is the fixed zone the digest schedule runs in.
func (d DigestConfig) Location() *time.Location {
	return time.FixedZone(fmt.Sprintf("UTC%+d", d.UTCOffsetHours), d.UTCOffsetHours*60*60)
}

// Channel returns the destination for a digest sub-action, falling back to the shared channel.
func (d DigestConfig) Channel(role string) string {
	var specific string
	switch role {
	case "greeting":
		specific = d.GreetingChannel
	case "weather":
		specific = d.WeatherChannel
	case "news":
		specific = d.NewsChannel
	}
	if specific != "" {
		return specific
	}
	return d.SharedChannel
}
