package handler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"worktime-bot/internal/calendar"
)

const (
	leaveVacation = calendar.LeaveVacation
	leaveSick     = calendar.LeaveSick
	leaveSpecial  = calendar.LeaveSpecial
)

var leaveTitles = map[calendar.LeaveKind]string{
	leaveVacation: "🏖️ Vacation",
	leaveSick:     "🤒 Sick leave",
	leaveSpecial:  "📌 Special leave",
}

func (h *Handler) addLeave(message *tgbotapi.Message, args string, kind calendar.LeaveKind) {
	chatID := message.Chat.ID
	user, ok := h.currentUser(chatID)
	if !ok {
		return
	}

	if strings.TrimSpace(args) == "" {
		h.reply(chatID, fmt.Sprintf(`%s

Format:
/%s start [end] [note]

Examples:
/%[2]s 01.07.2026 14.07.2026
/%[2]s 15.08.2026
/%[2]s 2026-12-23 2026-12-31 winter break

Weekends and holidays inside the period are not counted twice.`, leaveTitles[kind], kind))
		return
	}

	now := time.Now().In(h.config.Location)
	start, end, description, err := parseDateRange(args, now)
	if err != nil {
		h.reply(chatID, "❌ "+err.Error())
		return
	}

	period, err := h.services.Leaves.AddLeave(user, kind, start, end, description)
	if err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{"chat_id": chatID, "kind": kind}).Warn("Failed to add leave")
		h.reply(chatID, errorText(err))
		return
	}

	h.reply(chatID, fmt.Sprintf("✅ %s added: %s - %s (%d days, ID %d)",
		leaveTitles[kind],
		period.StartDate.Format("02.01.2006"), period.EndDate.Format("02.01.2006"),
		period.Days(), period.ID))
}

func (h *Handler) showMyLeaves(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	user, ok := h.currentUser(chatID)
	if !ok {
		return
	}

	periods, err := h.services.Leaves.ListLeaves(user)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list leave")
		h.reply(chatID, errorText(err))
		return
	}
	h.reply(chatID, h.services.Leaves.FormatLeaves(periods))
}

func (h *Handler) deleteLeave(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	user, ok := h.currentUser(chatID)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(strings.TrimSpace(args), 10, 64)
	if err != nil {
		h.reply(chatID, "❌ Give the leave ID from /myleaves, e.g. /deleteleave 12")
		return
	}
	if err := h.services.Leaves.DeleteLeave(user, uint(id)); err != nil {
		h.reply(chatID, errorText(err))
		return
	}
	h.reply(chatID, fmt.Sprintf("✅ Leave %d deleted.", id))
}
