package handlers

import (
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/iwebix/webixbot/core/telegram/callbacks"
	tghelpers "github.com/iwebix/webixbot/core/telegram/helpers"
	"github.com/iwebix/webixbot/core/telegram/keyboard"
	"github.com/iwebix/webixbot/core/telegram/state"
)

// The engagement quiz: three multiple-choice questions scored 0..2 each.
// Finishing it awards the configured coupon code regardless of score; the
// score only picks the verdict text.

const stateQuiz state.State = "quiz"

const quizTempQuestion = "quiz_q"
const quizTempScore = "quiz_score"

type quizQuestion struct {
	Text    string
	Options []string
}

var quizQuestions = []quizQuestion{
	{
		Text: "Вопрос 1/3. Сколько однотипных вопросов вы получаете от клиентов в день?",
		Options: []string{
			"Почти не получаю",
			"Несколько в день",
			"Десятки, не успеваю отвечать",
		},
	},
	{
		Text: "Вопрос 2/3. Как клиенты записываются или оформляют заказ?",
		Options: []string{
			"Лично при встрече",
			"Звонят или пишут в личку",
			"Хотелось бы полностью онлайн",
		},
	},
	{
		Text: "Вопрос 3/3. Ведёте ли вы базу клиентов для повторных продаж?",
		Options: []string{
			"Нет, не планирую",
			"Веду вручную",
			"Хочу автоматизировать",
		},
	},
}

var quizVerdicts = []string{
	"Пока можно обойтись без бота — но присмотритесь к автоматизации на будущее.",
	"Бот заметно разгрузит вас: автоответы и онлайн-запись закроют рутину.",
	"Вам точно нужен бот: он вернёт вам часы времени и не упустит ни одного клиента.",
}

func (h *Handlers) registerQuizStates() {
	// Stray text while the quiz is active gets a gentle nudge instead of
	// falling through to the menu fallback.
	state.RegisterHandler(stateQuiz, func(c tele.Context) error {
		return tghelpers.SendText(c, "Пожалуйста, отвечайте кнопками под вопросом.")
	})
}

func (h *Handlers) handleQuizStart(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID
	// The quiz is an unrelated flow: abandon any calculator session.
	if err := h.machine.Quit(ctx, userID); err != nil {
		_ = respond(c, "Сервис временно недоступен, попробуйте позже", true)
		return err
	}
	h.fsm.SetState(userID, stateQuiz)
	h.fsm.SetTemp(userID, quizTempQuestion, int64(0))
	h.fsm.SetTemp(userID, quizTempScore, int64(0))
	if err := safeEdit(c, quizQuestions[0].Text, h.quizMarkup(0)); err != nil {
		return err
	}
	return respond(c, "", false)
}

func (h *Handlers) handleQuizAnswer(c tele.Context) error {
	userID := c.Sender().ID
	current, ok := h.fsm.GetTempInt64(userID, quizTempQuestion)
	if !ok || h.fsm.GetState(userID) != stateQuiz {
		return respond(c, "Тест уже завершён", false)
	}

	q64, opt64, err := callbacks.PayloadTwoInt64(c, ":")
	q, opt := int(q64), int(opt64)
	if err != nil || q != int(current) || opt < 0 || opt >= len(quizQuestions[q].Options) {
		// Stale button from an earlier question; ignore quietly.
		return respond(c, "Используйте кнопки под текущим вопросом", false)
	}

	score, _ := h.fsm.GetTempInt64(userID, quizTempScore)
	score += int64(opt)

	next := q + 1
	if next < len(quizQuestions) {
		h.fsm.SetTemp(userID, quizTempQuestion, int64(next))
		h.fsm.SetTemp(userID, quizTempScore, score)
		if err := safeEdit(c, quizQuestions[next].Text, h.quizMarkup(next)); err != nil {
			return err
		}
		return respond(c, "", false)
	}

	return h.finishQuiz(c, score)
}

func (h *Handlers) finishQuiz(c tele.Context, score int64) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID
	h.fsm.Clear(userID)

	var b strings.Builder
	b.WriteString(quizVerdict(score))
	if h.cfg.CouponCode != "" {
		if err := h.coupons.Award(ctx, userID, h.cfg.CouponCode); err != nil {
			_ = respond(c, "Сервис временно недоступен, попробуйте позже", true)
			return err
		}
		fmt.Fprintf(&b, "\n\n🎁 Спасибо за ответы! Ваш купон на скидку %d%% уже активен "+
			"и применится при расчёте стоимости.", h.cfg.CouponPercent)
	}

	markup := keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "💰 Рассчитать стоимость", Unique: cbCalcStart}},
		[]keyboard.InlineBtn{{Text: "↩️ Вернуться в меню", Unique: cbMenu}},
	)
	if err := safeEdit(c, b.String(), markup); err != nil {
		return err
	}
	return respond(c, "", false)
}

func quizVerdict(score int64) string {
	switch {
	case score >= 5:
		return quizVerdicts[2]
	case score >= 3:
		return quizVerdicts[1]
	}
	return quizVerdicts[0]
}

func (h *Handlers) quizMarkup(q int) *tele.ReplyMarkup {
	rows := make([][]keyboard.InlineBtn, 0, len(quizQuestions[q].Options)+1)
	for i, opt := range quizQuestions[q].Options {
		rows = append(rows, []keyboard.InlineBtn{{
			Text:   opt,
			Unique: cbQuizAns,
			Data:   fmt.Sprintf("%d:%d", q, i),
		}})
	}
	rows = append(rows, []keyboard.InlineBtn{{Text: "↩️ Вернуться в меню", Unique: cbMenu}})
	return keyboard.InlineButtonsRows(rows...)
}
