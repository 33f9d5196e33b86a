package handlers

import (
	"strings"

	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/iwebix/webixbot/core/telegram/helpers"
	"github.com/iwebix/webixbot/core/telegram/keyboard"
	"github.com/iwebix/webixbot/internal/wizard"
)

func markupOf(r wizard.Render) *tele.ReplyMarkup {
	rows := make([][]keyboard.InlineBtn, 0, len(r.Rows))
	for _, row := range r.Rows {
		btns := make([]keyboard.InlineBtn, 0, len(row))
		for _, b := range row {
			btns = append(btns, keyboard.InlineBtn{
				Text:   b.Label,
				Unique: b.Action,
				Data:   b.Data,
				URL:    b.URL,
			})
		}
		rows = append(rows, btns)
	}
	return keyboard.InlineButtonsRows(rows...)
}

// safeEdit edits the current message, tolerating Telegram's "message is not
// modified" rejection: an identical re-render is a success, not a failure.
func safeEdit(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	err := tghelpers.EditOrSendMD(c, text, markup)
	if err != nil && strings.Contains(err.Error(), "message is not modified") {
		return nil
	}
	return err
}

// respond answers the pending callback, attaching a transient notice if any.
func respond(c tele.Context, notice string, alert bool) error {
	if c.Callback() == nil {
		return nil
	}
	return c.Respond(&tele.CallbackResponse{Text: notice, ShowAlert: alert})
}

// show applies a wizard render directive to the chat.
func show(c tele.Context, r wizard.Render) error {
	if err := safeEdit(c, r.Text, markupOf(r)); err != nil {
		return err
	}
	return respond(c, r.Notice, r.Alert)
}

// showResult renders on success; on a store failure it leaves the screen
// untouched, warns the user via an alert, and propagates the error so the
// router logs it.
func showResult(c tele.Context, r wizard.Render, err error) error {
	if err != nil {
		_ = respond(c, "Сервис временно недоступен, попробуйте позже", true)
		return err
	}
	return show(c, r)
}
