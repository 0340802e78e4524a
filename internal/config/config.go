package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"worktime-bot/internal/calendar"
)

type BotConfig struct {
	TelegramToken   string
	BaseAdminChatID int64
	DatabaseURL     string

	Timezone       string
	Location       *time.Location
	DefaultRegion  string
	HolidaysICSURL string
	OdooBaseURL    string
	CredentialsKey string
	HTTPAddr       string
	HTTPToken      string
	LogLevel       logrus.Level
	CalendarFile   string
	HalfDayMode    calendar.HalfDayMode
	BotDebug       bool
	FetchTimeout   time.Duration
}

var instance *BotConfig
var once sync.Once

// GetBotConfig loads the bot configuration once and exits the process when
// a required value is missing.
func GetBotConfig() *BotConfig {
	once.Do(func() {
		if err := godotenv.Load(); err != nil {
			logrus.Warnf("no .env file loaded: %s", err.Error())
		}

		cfg, err := fromEnv()
		if err != nil {
			logrus.Fatal(err)
		}
		if cfg.TelegramToken == "" {
			logrus.Fatal("could not get bot token")
		}
		if cfg.BaseAdminChatID == -2 {
			logrus.Fatal("could not get admin chat id")
		}
		instance = cfg
	})

	return instance
}

// Load reads the environment (and an optional .env file) without exiting.
// The Telegram token is not required here.
func Load(envFiles ...string) (*BotConfig, error) {
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return nil, fmt.Errorf("load env files: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}
	return fromEnv()
}

func fromEnv() (*BotConfig, error) {
	cfg := &BotConfig{
		TelegramToken:   getEnv("TELEGRAM_BOT_TOKEN", ""),
		BaseAdminChatID: getEnvAsInt("BASE_ADMIN_CHAT_ID", -2),
		DatabaseURL:     getEnv("DATABASE_URL", "worktime.db"),
		Timezone:        getEnv("TIMEZONE", "Europe/Berlin"),
		DefaultRegion:   getEnv("DEFAULT_REGION", "BB"),
		HolidaysICSURL:  getEnv("HOLIDAYS_ICS_URL", ""),
		OdooBaseURL:     getEnv("ODOO_BASE_URL", ""),
		CredentialsKey:  getEnv("CREDENTIALS_KEY", ""),
		HTTPAddr:        getEnv("HTTP_ADDR", ""),
		HTTPToken:       getEnv("HTTP_API_TOKEN", ""),
		CalendarFile:    getEnv("CALENDAR_FILE", "calendar.yaml"),
		BotDebug:        getEnvAsBool("BOT_DEBUG", false),
		FetchTimeout:    time.Duration(getEnvAsInt("FETCH_TIMEOUT_SECONDS", 30)) * time.Second,
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("could not get db url")
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc

	level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	mode, err := calendar.ParseHalfDayMode(getEnv("HALF_DAY_MODE", string(calendar.HalfDayFraction)))
	if err != nil {
		return nil, fmt.Errorf("invalid HALF_DAY_MODE: %w", err)
	}
	cfg.HalfDayMode = mode

	return cfg, nil
}

// NewLogger returns a logger with the shared text format and the configured level.
func (c *BotConfig) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(c.LogLevel)
	return logger
}

func getEnv(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultVal
}

func getEnvAsBool(name string, defaultVal bool) bool {
	valStr := getEnv(name, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}

	return defaultVal
}

func getEnvAsInt(name string, defaultVal int64) int64 {
	valStr := getEnv(name, "")
	if val, err := strconv.ParseInt(valStr, 10, 64); err == nil {
		return val
	}

	return defaultVal
}
