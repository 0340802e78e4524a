package handler

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"worktime-bot/internal/schedule"
)

const scheduleUsage = `📅 Work schedule

/work_schedule full_time - 40h, Monday to Friday 8h
/work_schedule part_time - 20h, Monday to Friday 4h
/work_schedule custom Mon=8,Tue=8,Wed=4 - hours per weekday
/work_schedule custom Mon,Tue,Thu 24 - weekly hours spread over days`

func (h *Handler) setWorkSchedule(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	user, ok := h.currentUser(chatID)
	if !ok {
		return
	}

	kind, rest, _ := strings.Cut(strings.TrimSpace(args), " ")
	switch schedule.Kind(strings.ToLower(kind)) {
	case "":
		text := scheduleUsage
		if sched, err := h.services.Schedules.GetSchedule(user); err == nil {
			text = h.services.Schedules.FormatSchedule(sched) + "\n\n" + text
		}
		h.reply(chatID, text)
	case schedule.KindFullTime, schedule.KindPartTime:
		sched, err := h.services.Schedules.SetPreset(user, schedule.Kind(strings.ToLower(kind)))
		if err != nil {
			h.reply(chatID, errorText(err))
			return
		}
		h.reply(chatID, "✅ Schedule saved.\n\n"+h.services.Schedules.FormatSchedule(sched))
	case schedule.KindCustom:
		if strings.TrimSpace(rest) == "" {
			h.setState(chatID, stateAwaitingCustomSchedule)
			h.reply(chatID, "✏️ Send the hours per weekday, e.g. Mon=8,Tue=8,Wed=4 or Mon,Tue,Thu 24")
			return
		}
		h.setCustomSchedule(chatID, rest)
	default:
		h.reply(chatID, "❌ Unknown schedule "+kind+".\n\n"+scheduleUsage)
	}
}

func (h *Handler) setCustomSchedule(chatID int64, input string) {
	user, ok := h.currentUser(chatID)
	if !ok {
		return
	}
	sched, err := h.services.Schedules.SetCustom(user, input)
	if err != nil {
		h.reply(chatID, errorText(err))
		return
	}
	h.reply(chatID, "✅ Schedule saved.\n\n"+h.services.Schedules.FormatSchedule(sched))
}
