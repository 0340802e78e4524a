package handler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"worktime-bot/internal/models"
)

// requireAdmin answers the chat and returns false for non-admins.
func (h *Handler) requireAdmin(chatID int64) bool {
	isAdmin, err := h.services.Users.IsAdmin(chatID)
	if err != nil {
		h.logger.WithError(err).Error("Error checking admin status")
		h.reply(chatID, errorText(err))
		return false
	}
	if !isAdmin {
		h.logger.WithField("chat_id", chatID).Warn("Unauthorized access to admin command")
		h.reply(chatID, "❌ Access denied. This command is for admins only.")
		return false
	}
	return true
}

func (h *Handler) showAllUsers(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if !h.requireAdmin(chatID) {
		return
	}

	allUsers, err := h.services.Users.FormatAllUsers()
	if err != nil {
		h.reply(chatID, errorText(err))
		return
	}
	h.reply(chatID, allUsers)
}

func (h *Handler) showStats(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if !h.requireAdmin(chatID) {
		return
	}

	total, admins, err := h.services.Users.GetStats()
	if err != nil {
		h.reply(chatID, errorText(err))
		return
	}
	holidayCount, err := h.services.Holidays.Count()
	if err != nil {
		h.reply(chatID, errorText(err))
		return
	}

	h.reply(chatID, fmt.Sprintf(`📊 Bot statistics

👥 Users: %d
👑 Admins: %d
👤 Clients: %d
🎉 Stored holidays: %d
🔄 Odoo sync: %s`, total, admins, total-admins, holidayCount, enabled(h.services.Sync.Enabled())))
}

func enabled(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

func (h *Handler) promoteToAdmin(message *tgbotapi.Message, args string) {
	h.changeRole(message, args, models.RoleAdmin)
}

func (h *Handler) demoteToClient(message *tgbotapi.Message, args string) {
	h.changeRole(message, args, models.RoleClient)
}

func (h *Handler) changeRole(message *tgbotapi.Message, args string, role models.Role) {
	chatID := message.Chat.ID
	if !h.requireAdmin(chatID) {
		return
	}

	target, err := strconv.ParseInt(strings.TrimSpace(args), 10, 64)
	if err != nil {
		h.reply(chatID, "❌ Give the user's chat ID, e.g. /promote 123456789")
		return
	}
	if role == models.RoleClient && target == h.config.BaseAdminChatID {
		h.reply(chatID, "❌ The main admin cannot be demoted.")
		return
	}

	if err := h.services.Users.UpdateRole(chatID, target, role); err != nil {
		h.reply(chatID, errorText(err))
		return
	}
	h.reply(chatID, fmt.Sprintf("✅ User %d is now %s.", target, role))
	h.reply(target, fmt.Sprintf("ℹ️ Your role was changed to %s.", role))
}

func (h *Handler) loadHolidays(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	if !h.requireAdmin(chatID) {
		return
	}

	ctx, cancel := h.requestContext()
	defer cancel()

	res, err := h.services.Holidays.ImportFeed(ctx, strings.TrimSpace(args))
	if err != nil {
		h.logger.WithError(err).Error("Holiday import failed")
		h.reply(chatID, errorText(err))
		return
	}

	text := fmt.Sprintf("✅ Holiday feed imported: %d events, %d holiday rows stored.", res.Events, res.Stored)
	if len(res.Skipped) > 0 {
		text += fmt.Sprintf("\n⚠️ %d events skipped:\n%s", len(res.Skipped), strings.Join(res.Skipped, "\n"))
	}
	h.reply(chatID, text)
}

func (h *Handler) addHoliday(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	if !h.requireAdmin(chatID) {
		return
	}

	fields := strings.Fields(args)
	if len(fields) < 3 {
		h.reply(chatID, "❌ Use /addholiday date region description, e.g. /addholiday 24.12.2026 ALL Company closed")
		return
	}
	date, err := parseDate(fields[0], time.Now().In(h.config.Location))
	if err != nil {
		h.reply(chatID, "❌ "+err.Error())
		return
	}
	if err := h.services.Holidays.AddManual(date, fields[1], strings.Join(fields[2:], " ")); err != nil {
		h.reply(chatID, errorText(err))
		return
	}
	h.reply(chatID, fmt.Sprintf("✅ Holiday %s added for %s.", date.Format("02.01.2006"), strings.ToUpper(fields[1])))
}

func (h *Handler) showHolidays(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	user, ok := h.currentUser(chatID)
	if !ok {
		return
	}

	year := time.Now().In(h.config.Location).Year()
	region := user.Region
	for _, f := range strings.Fields(args) {
		if y, err := strconv.Atoi(f); err == nil {
			year = y
		} else {
			region = strings.ToUpper(f)
		}
	}

	text, err := h.services.Holidays.FormatYear(year, region)
	if err != nil {
		h.reply(chatID, errorText(err))
		return
	}
	h.reply(chatID, text)
}

// setHalfDay reads "date [value] [fraction|fixed] [description...]".
func (h *Handler) setHalfDay(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	if !h.requireAdmin(chatID) {
		return
	}

	fields := strings.Fields(args)
	if len(fields) == 0 {
		h.reply(chatID, "❌ Use /halfday date [value] [fraction|fixed] [description]")
		return
	}
	date, err := parseDate(fields[0], time.Now().In(h.config.Location))
	if err != nil {
		h.reply(chatID, "❌ "+err.Error())
		return
	}
	rest := fields[1:]

	var value, mode string
	if len(rest) > 0 {
		if _, err := strconv.ParseFloat(strings.ReplaceAll(rest[0], ",", "."), 64); err == nil {
			value, rest = rest[0], rest[1:]
		}
	}
	if len(rest) > 0 && (rest[0] == "fraction" || rest[0] == "fixed") {
		mode, rest = rest[0], rest[1:]
	}

	day, err := h.services.HalfDays.Set(date, value, mode, strings.Join(rest, " "))
	if err != nil {
		h.reply(chatID, errorText(err))
		return
	}
	h.reply(chatID, fmt.Sprintf("✅ Half day %s set (%s %s).", date.Format("02.01.2006"), day.Mode, day.Value.String()))
}

func (h *Handler) showHalfDays(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if _, ok := h.currentUser(chatID); !ok {
		return
	}

	days, err := h.services.HalfDays.List()
	if err != nil {
		h.reply(chatID, errorText(err))
		return
	}
	h.reply(chatID, h.services.HalfDays.FormatList(days))
}

func (h *Handler) deleteHalfDay(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	if !h.requireAdmin(chatID) {
		return
	}

	date, err := parseDate(strings.TrimSpace(args), time.Now().In(h.config.Location))
	if err != nil {
		h.reply(chatID, "❌ "+err.Error())
		return
	}
	if err := h.services.HalfDays.Delete(date); err != nil {
		h.reply(chatID, errorText(err))
		return
	}
	h.reply(chatID, "✅ Half day "+date.Format("02.01.2006")+" removed.")
}
