package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"worktime-bot/internal/api"
	"worktime-bot/internal/config"
	"worktime-bot/internal/handler"
	"worktime-bot/internal/repository"
	"worktime-bot/internal/service"
	"worktime-bot/pkg/odoo"
	"worktime-bot/pkg/secret"
	"worktime-bot/pkg/telegram"
)

func main() {
	logrus.Info("Initializing config...")
	cfg := config.GetBotConfig()
	logger := cfg.NewLogger()
	logger.Info("Config initialized...")

	db, err := repository.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database: ", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("Failed to get database instance: ", err)
	}

	repos, err := repository.NewRepositories(db)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create repositories")
	}

	var box *secret.Box
	if cfg.CredentialsKey != "" {
		if box, err = secret.NewBox(cfg.CredentialsKey); err != nil {
			logger.WithError(err).Fatal("Invalid CREDENTIALS_KEY")
		}
	} else {
		logger.Warn("CREDENTIALS_KEY is not set, Odoo credentials cannot be stored")
	}

	var exporter service.Exporter
	if cfg.OdooBaseURL != "" {
		exporter = odoo.NewClient(cfg.OdooBaseURL,
			odoo.WithTimezone(cfg.Timezone),
			odoo.WithHTTPClient(&http.Client{Timeout: cfg.FetchTimeout}),
			odoo.WithLogger(logger),
		)
	} else {
		logger.Warn("ODOO_BASE_URL is not set, /sync is disabled")
	}

	calendarFile, err := config.LoadCalendar(cfg.CalendarFile)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load calendar file")
	}

	userService := service.NewUserService(repos.Users, box, cfg.DefaultRegion)
	scheduleService := service.NewWorkScheduleService(repos.Schedules, repos.Users)
	holidayService := service.NewHolidayService(repos.Holidays, cfg.HolidaysICSURL, cfg.FetchTimeout, cfg.Location)
	leaveService := service.NewLeaveService(repos.Leaves, cfg.Location)
	halfDayService := service.NewHalfDayService(repos.HalfDays, calendarFile, cfg.HalfDayMode)
	syncService := service.NewSyncService(userService, leaveService, repos.Attendance, exporter, calendarFile.KindMapper(), cfg.Location)
	balanceService := service.NewMonthlyBalanceService(repos.Balances)
	reportService := service.NewReportService(scheduleService, holidayService, leaveService, halfDayService, syncService, balanceService, cfg.Location)

	if err := userService.InitializeAdmin(cfg.BaseAdminChatID); err != nil {
		logger.Warnf("Failed to initialize admin: %v", err)
	} else if cfg.BaseAdminChatID != 0 {
		logger.Infof("Admin initialized with chat ID: %d", cfg.BaseAdminChatID)
	}

	if count, err := holidayService.Count(); err == nil && count == 0 && cfg.HolidaysICSURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.FetchTimeout)
		if res, err := holidayService.ImportFeed(ctx, ""); err != nil {
			logger.WithError(err).Warn("Initial holiday import failed, run /loadholidays later")
		} else {
			logger.Infof("Imported %d holiday rows", res.Stored)
		}
		cancel()
	}

	client, err := telegram.NewClient(cfg.TelegramToken, cfg.BotDebug)
	if err != nil {
		logger.Fatal("Failed to create Telegram client: ", err)
	}
	logger.Infof("Authorized on account %s", client.Bot.Self.UserName)
	if err := client.SetCommands(handler.MenuCommands, handler.MenuOrder); err != nil {
		logger.WithError(err).Warn("Failed to publish command menu")
	}

	botHandler := handler.NewHandler(client, handler.Services{
		Users:     userService,
		Schedules: scheduleService,
		Holidays:  holidayService,
		Leaves:    leaveService,
		HalfDays:  halfDayService,
		Sync:      syncService,
		Reports:   reportService,
		Balances:  balanceService,
	}, cfg)

	var server *http.Server
	if cfg.HTTPAddr != "" {
		if cfg.HTTPToken == "" {
			logger.Warn("HTTP_API_TOKEN is not set, the report API is unauthenticated")
		}
		server = &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           api.NewRouter(userService, reportService, api.Options{Token: cfg.HTTPToken, Logger: logger}),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Infof("HTTP API listening on %s", cfg.HTTPAddr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.WithError(err).Error("HTTP API stopped")
			}
		}()
	}

	updates := client.Bot.GetUpdatesChan(client.UpdateConfig)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go botHandler.HandleUpdates(updates)

	logger.Info("Bot started. Press Ctrl+C to stop.")
	<-stop

	client.Bot.StopReceivingUpdates()
	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := server.Shutdown(ctx); err != nil {
			logger.WithError(err).Warn("HTTP API shutdown")
		}
		cancel()
	}
	if err := sqlDB.Close(); err != nil {
		logger.Infof("Error closing database: %v", err)
	}

	logger.Info("Bot stopped gracefully")
}
