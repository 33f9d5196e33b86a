package handlers

import (
	tele "gopkg.in/telebot.v4"

	"github.com/iwebix/webixbot/core/telegram/callbacks"
	tghelpers "github.com/iwebix/webixbot/core/telegram/helpers"
	"github.com/iwebix/webixbot/internal/wizard"
)

// Callback uniques. The wizard action tokens double as callback keys so the
// render directives map one-to-one onto registered handlers.
const (
	cbNeedBot   = "need_bot"
	cbExamples  = "examples"
	cbContact   = "contact_me"
	cbMenu      = wizard.ActMenu
	cbCalcStart = wizard.ActStart
	cbQuizStart = "quiz_start"
	cbQuizAns   = "quiz_ans"
)

func (h *Handlers) callbackHandlers() map[string]tele.HandlerFunc {
	return map[string]tele.HandlerFunc{
		cbNeedBot:  h.handleNeedBot,
		cbExamples: h.handleExamples,
		cbContact:  h.handleContact,
		cbMenu:     h.handleMenu,

		cbCalcStart:           h.handleCalcStart,
		wizard.ActCategory:    h.handleCategory,
		wizard.ActTemplate:    h.handleTemplate,
		wizard.ActModule:      h.handleModule,
		wizard.ActModulesDone: h.handleModulesDone,
		wizard.ActSupport:     h.handleSupport,
		wizard.ActBack:        h.handleBack,

		cbQuizStart: h.handleQuizStart,
		cbQuizAns:   h.handleQuizAnswer,
	}
}

// handleCalc implements the /calc command: resume a persisted session if one
// exists, otherwise start a fresh flow.
func (h *Handlers) handleCalc(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID
	r, ok, err := h.machine.Resume(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		r, err = h.machine.Start(ctx, userID)
		if err != nil {
			return err
		}
	}
	return tghelpers.SendMD(c, r.Text, markupOf(r))
}

func (h *Handlers) handleCalcStart(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	r, err := h.machine.Start(ctx, c.Sender().ID)
	return showResult(c, r, err)
}

func (h *Handlers) handleCategory(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	r, err := h.machine.ChooseCategory(ctx, c.Sender().ID, callbacks.CallbackPayload(c))
	return showResult(c, r, err)
}

func (h *Handlers) handleTemplate(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	r, err := h.machine.ChooseTemplate(ctx, c.Sender().ID, callbacks.CallbackPayload(c))
	return showResult(c, r, err)
}

func (h *Handlers) handleModule(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	r, err := h.machine.ToggleModule(ctx, c.Sender().ID, callbacks.CallbackPayload(c))
	return showResult(c, r, err)
}

func (h *Handlers) handleModulesDone(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	r, err := h.machine.FinishModules(ctx, c.Sender().ID)
	return showResult(c, r, err)
}

func (h *Handlers) handleSupport(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	r, err := h.machine.ChooseSupport(ctx, c.Sender().ID, callbacks.CallbackPayload(c))
	return showResult(c, r, err)
}

func (h *Handlers) handleBack(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	r, err := h.machine.Back(ctx, c.Sender().ID)
	return showResult(c, r, err)
}
