package handler

import (
	"context"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"worktime-bot/internal/config"
	"worktime-bot/internal/service"
	"worktime-bot/pkg/telegram"
)

// Services bundles what the chat commands call into.
type Services struct {
	Users     *service.UserService
	Schedules *service.WorkScheduleService
	Holidays  *service.HolidayService
	Leaves    *service.LeaveService
	HalfDays  *service.HalfDayService
	Sync      *service.SyncService
	Reports   *service.ReportService
	Balances  *service.MonthlyBalanceService
}

type Handler struct {
	client     *telegram.Client
	services   Services
	statesMu   sync.Mutex
	userStates map[int64]string
	config     *config.BotConfig
	logger     *logrus.Logger
}

func NewHandler(client *telegram.Client, services Services, cfg *config.BotConfig) *Handler {
	return &Handler{
		client:     client,
		services:   services,
		userStates: make(map[int64]string),
		config:     cfg,
		logger:     cfg.NewLogger(),
	}
}

// HandleUpdates serves each update in its own goroutine and returns once
// the channel is closed and all of them finished.
func (h *Handler) HandleUpdates(updates tgbotapi.UpdatesChannel) {
	var wg sync.WaitGroup
	for update := range updates {
		wg.Add(1)
		go func(update tgbotapi.Update) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					h.logger.WithField("panic", r).Error("Update handler panicked")
				}
			}()
			h.handleUpdate(update)
		}(update)
	}
	wg.Wait()
}

func (h *Handler) handleUpdate(update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		h.handleCallbackQuery(update.CallbackQuery)
		return
	}
	if update.Message != nil {
		h.handleMessage(update.Message)
	}
}

func (h *Handler) setState(chatID int64, state string) {
	h.statesMu.Lock()
	defer h.statesMu.Unlock()
	h.userStates[chatID] = state
}

// takeState returns and clears the pending dialog state of chatID.
func (h *Handler) takeState(chatID int64) (string, bool) {
	h.statesMu.Lock()
	defer h.statesMu.Unlock()
	state, ok := h.userStates[chatID]
	delete(h.userStates, chatID)
	return state, ok
}

// handleCallbackQuery answers the inline confirmation buttons.
func (h *Handler) handleCallbackQuery(callback *tgbotapi.CallbackQuery) {
	chatID := callback.Message.Chat.ID
	data := callback.Data

	// drop the keyboard so a button cannot be pressed twice
	editMsg := tgbotapi.NewEditMessageReplyMarkup(chatID, callback.Message.MessageID, tgbotapi.NewInlineKeyboardMarkup())
	h.client.Bot.Send(editMsg)

	switch {
	case data == callbackConfirmDelete:
		if err := h.services.Users.DeleteUser(chatID); err != nil {
			h.reply(chatID, "❌ Failed to delete profile: "+err.Error())
		} else {
			h.reply(chatID, "✅ Your profile and all stored data were deleted.")
		}
	case data == callbackCancelDelete:
		h.reply(chatID, "❌ Profile deletion cancelled.")
	case data == callbackClearCredentials:
		if err := h.services.Users.ClearCredentials(chatID); err != nil {
			h.reply(chatID, "❌ Failed to remove credentials: "+err.Error())
		} else {
			h.reply(chatID, "🔑 Odoo credentials removed.")
		}
	case strings.HasPrefix(data, callbackReportPrefix):
		fake := &tgbotapi.Message{
			MessageID: callback.Message.MessageID,
			Chat:      callback.Message.Chat,
			From:      callback.From,
		}
		format, args := parseReportCallback(data)
		h.sendReport(fake, format, args)
	}

	h.client.Bot.Send(tgbotapi.NewCallback(callback.ID, ""))
}

func (h *Handler) handleMessage(message *tgbotapi.Message) {
	if message.From == nil {
		return
	}
	h.logger.Infof("[%s] %s", message.From.UserName, message.Text)

	chatID := message.Chat.ID

	// a command aborts any pending dialog
	if state, exists := h.takeState(chatID); exists && !message.IsCommand() {
		h.handleState(message, state)
		return
	}

	if message.IsCommand() {
		h.handleCommand(message)
		return
	}

	h.reply(chatID, "🤖 I only understand commands. Use /help to see them.")
}

func (h *Handler) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.client.Bot.Send(msg); err != nil {
		h.logger.WithError(err).WithField("chat_id", chatID).Error("Failed to send message")
	}
}

func (h *Handler) sendDocument(chatID int64, name string, data []byte, caption string) {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	doc.Caption = caption
	if _, err := h.client.Bot.Send(doc); err != nil {
		h.logger.WithError(err).WithField("chat_id", chatID).Error("Failed to send document")
		h.reply(chatID, "❌ Failed to send the file: "+err.Error())
	}
}

// requestContext bounds the Odoo and ICS calls a single command may make.
func (h *Handler) requestContext() (context.Context, context.CancelFunc) {
	timeout := h.config.FetchTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	// sync makes two exports
	return context.WithTimeout(context.Background(), 2*timeout)
}
