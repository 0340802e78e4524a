package handler

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"worktime-bot/internal/models"
	"worktime-bot/internal/report"
	"worktime-bot/pkg/holidays"
)

// currentUser loads the sender's profile and answers the chat when it
// cannot.
func (h *Handler) currentUser(chatID int64) (*models.User, bool) {
	user, err := h.services.Users.GetUser(chatID)
	if err != nil {
		h.logger.WithError(err).WithField("chat_id", chatID).Warn("User lookup failed")
		h.reply(chatID, errorText(err))
		return nil, false
	}
	return user, true
}

func (h *Handler) start(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	from := message.From

	user, created, err := h.services.Users.Register(chatID, from.UserName, from.FirstName, from.LastName)
	if err != nil {
		h.logger.WithError(err).Error("Failed to register user")
		h.reply(chatID, errorText(err))
		return
	}

	greeting := fmt.Sprintf("👋 Welcome back, %s!", user.FirstName)
	if created {
		greeting = fmt.Sprintf(`👋 Hello, %s! Your profile was created.

To get started:
1. /work_schedule full_time (or part_time, or custom)
2. /region to pick your holiday region (now %s)
3. /credentials to connect Odoo, or add leave by hand with /vacation`, user.FirstName, user.Region)
	}

	msg := tgbotapi.NewMessage(chatID, greeting+"\n\nUse /help to see all commands.")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📅 This week", reportCallbackData(formatSummary, "week")),
			tgbotapi.NewInlineKeyboardButtonData("🗓 This month", reportCallbackData(formatSummary, "month")),
		),
	)
	h.client.Bot.Send(msg)
}

func (h *Handler) showProfile(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	user, ok := h.currentUser(chatID)
	if !ok {
		return
	}

	text := h.services.Users.FormatUserInfo(user)
	if sched, err := h.services.Schedules.GetSchedule(user); err == nil {
		text += "\n\n" + h.services.Schedules.FormatSchedule(sched)
	} else {
		text += "\n\n📅 Schedule: not set (/work_schedule)"
	}
	h.reply(chatID, text)
}

func (h *Handler) deleteProfile(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if _, ok := h.currentUser(chatID); !ok {
		return
	}

	msg := tgbotapi.NewMessage(chatID, "⚠️ Delete your profile with all schedules, leave and attendance?")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Yes, delete", callbackConfirmDelete),
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", callbackCancelDelete),
		),
	)
	h.client.Bot.Send(msg)
}

func (h *Handler) setCredentials(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	if _, ok := h.currentUser(chatID); !ok {
		return
	}

	switch strings.TrimSpace(args) {
	case "":
		h.setState(chatID, stateAwaitingCredentials)
		h.reply(chatID, `🔑 Send your Odoo credentials as one message:

session_id csrf_token uid

You find them in the browser developer tools while logged into Odoo: the session_id cookie, the csrf_token of the page and your numeric user id. The message is deleted after it is read.`)
		return
	case "clear":
		msg := tgbotapi.NewMessage(chatID, "Remove the stored Odoo credentials?")
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🗑 Remove", callbackClearCredentials),
			),
		)
		h.client.Bot.Send(msg)
		return
	}

	h.storeCredentials(message, args)
}

func (h *Handler) storeCredentials(message *tgbotapi.Message, text string) {
	chatID := message.Chat.ID

	// the message carries a live session, remove it from the chat either way
	h.client.Bot.Request(tgbotapi.NewDeleteMessage(chatID, message.MessageID))

	creds, err := parseCredentials(text)
	if err != nil {
		h.reply(chatID, "❌ "+err.Error())
		return
	}
	if err := h.services.Users.SetCredentials(chatID, creds); err != nil {
		h.reply(chatID, errorText(err))
		return
	}
	h.reply(chatID, "✅ Odoo credentials stored. Use /sync or /month to load your hours.")
}

// handleState continues a dialog started by a command.
func (h *Handler) handleState(message *tgbotapi.Message, state string) {
	chatID := message.Chat.ID

	switch state {
	case stateAwaitingCredentials:
		h.storeCredentials(message, message.Text)
	case stateAwaitingCustomSchedule:
		h.setCustomSchedule(chatID, message.Text)
	default:
		h.logger.WithField("state", state).Warn("Unknown dialog state")
	}
}

func (h *Handler) setRegion(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	user, ok := h.currentUser(chatID)
	if !ok {
		return
	}

	if strings.TrimSpace(args) == "" {
		var lines []string
		current, _ := holidays.RegionName(user.Region)
		lines = append(lines, fmt.Sprintf("📍 Your region: %s (%s)", user.Region, current), "", "Available regions:")
		for _, code := range holidays.RegionCodes() {
			name, _ := holidays.RegionName(code)
			lines = append(lines, fmt.Sprintf("%s - %s", code, name))
		}
		lines = append(lines, "", "Change it with /region CODE")
		h.reply(chatID, strings.Join(lines, "\n"))
		return
	}

	if err := h.services.Users.SetRegion(chatID, args); err != nil {
		h.reply(chatID, errorText(err))
		return
	}
	code := strings.ToUpper(strings.TrimSpace(args))
	name, _ := holidays.RegionName(code)
	h.reply(chatID, fmt.Sprintf("✅ Region set to %s (%s).", code, name))
}

func (h *Handler) setCarryOver(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	user, ok := h.currentUser(chatID)
	if !ok {
		return
	}

	if strings.TrimSpace(args) == "" {
		h.reply(chatID, fmt.Sprintf("➕ Carry-over: %s\nSet it with /carryover hours, e.g. /carryover -3.5", report.FormatSigned(user.CarryOver)))
		return
	}

	hours, err := h.services.Users.SetCarryOver(chatID, args)
	if err != nil {
		h.reply(chatID, errorText(err))
		return
	}
	h.reply(chatID, "✅ Carry-over set to "+report.FormatSigned(hours)+".")
}
