package handler

import (
	"bytes"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"worktime-bot/internal/render"
)

func (h *Handler) syncNow(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	user, ok := h.currentUser(chatID)
	if !ok {
		return
	}

	ctx, cancel := h.requestContext()
	defer cancel()

	h.client.Bot.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))
	res, err := h.services.Sync.Sync(ctx, user)
	if err != nil {
		h.logger.WithError(err).WithField("chat_id", chatID).Warn("Sync failed")
		h.reply(chatID, errorText(err))
		return
	}
	h.reply(chatID, formatSyncResult(res))
}

func (h *Handler) sendCustomReport(message *tgbotapi.Message, args string) {
	if strings.TrimSpace(args) == "" {
		h.reply(message.Chat.ID, "🗓 Give a month as YYYY-MM, e.g. /custom 2024-02")
		return
	}
	h.sendReport(message, formatSummary, args)
}

// sendReport generates a report for the range in args and answers in format.
func (h *Handler) sendReport(message *tgbotapi.Message, format, args string) {
	chatID := message.Chat.ID
	user, ok := h.currentUser(chatID)
	if !ok {
		return
	}

	opts, err := reportOptions(args)
	if err != nil {
		h.reply(chatID, errorText(err))
		return
	}

	ctx, cancel := h.requestContext()
	defer cancel()

	action := tgbotapi.ChatTyping
	if format == formatPDF || format == formatXLSX {
		action = tgbotapi.ChatUploadDocument
	}
	h.client.Bot.Request(tgbotapi.NewChatAction(chatID, action))

	rep, synced, err := h.services.Reports.SyncAndGenerate(ctx, user, opts)
	if err != nil {
		h.logger.WithError(err).WithField("chat_id", chatID).Warn("Report failed")
		h.reply(chatID, errorText(err))
		return
	}
	if synced != nil && (len(synced.RowErrors) > 0 || len(synced.Unmapped) > 0) {
		h.reply(chatID, formatSyncResult(synced))
	}

	switch format {
	case formatStatus:
		h.reply(chatID, render.Status(rep))
	case formatPDF:
		var buf bytes.Buffer
		if err := render.PDF(&buf, rep); err != nil {
			h.logger.WithError(err).Error("Failed to render PDF")
			h.reply(chatID, errorText(err))
			return
		}
		h.sendDocument(chatID, render.FileName(rep)+".pdf", buf.Bytes(), render.Title(rep))
	case formatXLSX:
		var buf bytes.Buffer
		if err := render.XLSX(&buf, rep); err != nil {
			h.logger.WithError(err).Error("Failed to render XLSX")
			h.reply(chatID, errorText(err))
			return
		}
		h.sendDocument(chatID, render.FileName(rep)+".xlsx", buf.Bytes(), render.Title(rep))
	default:
		rangeArg := rep.Range.Start.Format("2006-01-02") + " " + rep.Range.End.Format("2006-01-02")
		if rep.Range.MonthAligned() {
			rangeArg = rep.Range.Start.Format("2006-01")
		}
		msg := tgbotapi.NewMessage(chatID, render.Summary(rep))
		msg.ParseMode = tgbotapi.ModeMarkdown
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("📄 PDF", reportCallbackData(formatPDF, rangeArg)),
				tgbotapi.NewInlineKeyboardButtonData("📊 XLSX", reportCallbackData(formatXLSX, rangeArg)),
			),
		)
		if _, err := h.client.Bot.Send(msg); err != nil {
			h.logger.WithError(err).WithField("chat_id", chatID).Warn("Markdown rejected, sending plain text")
			h.reply(chatID, render.Summary(rep))
		}
	}
}

func (h *Handler) showMonthlyBalances(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	user, ok := h.currentUser(chatID)
	if !ok {
		return
	}

	all, err := h.services.Balances.List(user)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list monthly balances")
		h.reply(chatID, errorText(err))
		return
	}
	h.reply(chatID, h.services.Balances.FormatStats(user, all))
}
