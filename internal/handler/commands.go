package handler

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (h *Handler) handleCommand(message *tgbotapi.Message) {
	command := message.Command()
	args := message.CommandArguments()

	switch command {
	case "start":
		h.start(message)
	case "help":
		h.sendHelpMessage(message)
	case "helpadmin":
		h.sendAdminHelpMessage(message)

	// profile
	case "myprofile":
		h.showProfile(message)
	case "deleteprofile":
		h.deleteProfile(message)
	case "credentials":
		h.setCredentials(message, args)
	case "region":
		h.setRegion(message, args)
	case "carryover":
		h.setCarryOver(message, args)
	case "work_schedule", "schedule":
		h.setWorkSchedule(message, args)

	// reports
	case "sync":
		h.syncNow(message)
	case "week":
		h.sendReport(message, formatSummary, "week")
	case "month":
		h.sendReport(message, formatSummary, "month")
	case "custom":
		h.sendCustomReport(message, args)
	case "report":
		h.sendReport(message, formatSummary, args)
	case "status":
		h.sendReport(message, formatStatus, args)
	case "pdf":
		h.sendReport(message, formatPDF, args)
	case "xlsx":
		h.sendReport(message, formatXLSX, args)
	case "mystats":
		h.showMonthlyBalances(message)

	// leave
	case "vacation":
		h.addLeave(message, args, leaveVacation)
	case "sick", "sickleave":
		h.addLeave(message, args, leaveSick)
	case "special", "dayoff":
		h.addLeave(message, args, leaveSpecial)
	case "myleaves":
		h.showMyLeaves(message)
	case "deleteleave":
		h.deleteLeave(message, args)

	// admin
	case "allusers":
		h.showAllUsers(message)
	case "stats":
		h.showStats(message)
	case "promote":
		h.promoteToAdmin(message, args)
	case "demote":
		h.demoteToClient(message, args)
	case "loadholidays":
		h.loadHolidays(message, args)
	case "addholiday":
		h.addHoliday(message, args)
	case "holidays":
		h.showHolidays(message, args)
	case "halfday":
		h.setHalfDay(message, args)
	case "halfdays":
		h.showHalfDays(message)
	case "deletehalfday":
		h.deleteHalfDay(message, args)

	default:
		h.sendUnknownCommand(message)
	}
}

func (h *Handler) sendUnknownCommand(message *tgbotapi.Message) {
	h.reply(message.Chat.ID, "❌ Unknown command. Use /help to see the list.")
}

const helpText = `📋 Commands:

👤 Profile:
/start - Register with the bot
/help - Show this list
/myprofile - Show my profile
/credentials session_id csrf_token uid - Store Odoo credentials
/credentials clear - Remove stored credentials
/region [code] - Show or set the holiday region (e.g. BB, BY)
/carryover hours - Overtime carried over from before (e.g. -3.5)
/work_schedule full_time | part_time | custom Mon=8,Tue=8 - Set my schedule
/deleteprofile - Delete my profile

📊 Reports:
/sync - Pull attendance and leave from Odoo
/week - This week
/month - This month
/custom 2024-02 - A past or future month
/report 2024-02-01 2024-02-14 - Any range
/status [range] - One line status with ignored inputs
/pdf [range] - Report as PDF with charts
/xlsx [range] - Report as spreadsheet
/mystats - Stored monthly balances

🏖️ Leave:
/vacation start [end] [note] - Add vacation
    Example: /vacation 01.07.2026 14.07.2026
/sick start [end] [note] - Add sick leave
/special start [end] [note] - Add special leave
/myleaves - List my leave
/deleteleave ID - Delete a manually added leave

💡 Range arguments: week, month, YYYY-MM or two dates YYYY-MM-DD.
Only one of them may be used at a time.`

func (h *Handler) sendHelpMessage(message *tgbotapi.Message) {
	h.reply(message.Chat.ID, helpText)
}

const adminHelpText = `📋 Admin commands:

👑 Users:
/allusers - All users
/stats - Bot statistics
/promote ID - Make a user admin
/demote ID - Make an admin a client

📅 Calendar:
/loadholidays [ics_url] - Import the holiday feed
/addholiday date region description - Add a holiday by hand (region ALL for nationwide)
/holidays [year] [region] - List holidays
/halfday date [value] [fraction|fixed] [description] - Set a half day
    Example: /halfday 24.12.2026 0.5 fraction Christmas Eve
/halfdays - List half days
/deletehalfday date - Remove a half day`

func (h *Handler) sendAdminHelpMessage(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if !h.requireAdmin(chatID) {
		return
	}

	text := adminHelpText
	if h.config.BaseAdminChatID != 0 {
		text += fmt.Sprintf("\n\n🔧 Main admin chat ID: %d", h.config.BaseAdminChatID)
	}
	h.reply(chatID, text)
}

// MenuOrder and MenuCommands feed the command menu of the Telegram client.
var MenuOrder = []string{"week", "month", "custom", "pdf", "xlsx", "status", "sync",
	"vacation", "sick", "special", "myleaves", "mystats", "work_schedule", "region",
	"carryover", "credentials", "myprofile", "help"}

var MenuCommands = map[string]string{
	"week":          "Hours of this week",
	"month":         "Hours of this month",
	"custom":        "Hours of a month, e.g. 2024-02",
	"pdf":           "Report as PDF",
	"xlsx":          "Report as spreadsheet",
	"status":        "Short status with ignored inputs",
	"sync":          "Pull attendance and leave from Odoo",
	"vacation":      "Add vacation",
	"sick":          "Add sick leave",
	"special":       "Add special leave",
	"myleaves":      "List my leave",
	"mystats":       "Monthly balances",
	"work_schedule": "Set my work schedule",
	"region":        "Holiday region",
	"carryover":     "Hours carried over",
	"credentials":   "Store Odoo credentials",
	"myprofile":     "My profile",
	"help":          "All commands",
}
