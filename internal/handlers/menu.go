package handlers

import (
	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/iwebix/webixbot/core/telegram/helpers"
	"github.com/iwebix/webixbot/core/telegram/keyboard"
)

const greeting = "Здравствуйте! Я помогу разобраться, зачем вашему делу Telegram-бот, " +
	"покажу работающие примеры, рассчитаю стоимость решения и свяжу вас напрямую с автором."

const menuPrompt = "Выберите нужный пункт меню:"

func (h *Handlers) menuMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "🤖 Зачем мне нужен бот", Unique: cbNeedBot}},
		[]keyboard.InlineBtn{{Text: "📺 Примеры", Unique: cbExamples}},
		[]keyboard.InlineBtn{{Text: "💰 Рассчитать стоимость", Unique: cbCalcStart}},
		[]keyboard.InlineBtn{{Text: "✉️ Написать мне", Unique: cbContact}},
	)
}

func (h *Handlers) handleStart(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID
	h.fsm.Clear(userID)
	if err := h.machine.Quit(ctx, userID); err != nil {
		return err
	}
	if err := tghelpers.SendText(c, greeting); err != nil {
		return err
	}
	return tghelpers.SendMD(c, menuPrompt, h.menuMarkup())
}

func (h *Handlers) handleMenu(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID
	h.fsm.Clear(userID)
	if err := h.machine.Quit(ctx, userID); err != nil {
		_ = respond(c, "Сервис временно недоступен, попробуйте позже", true)
		return err
	}
	if err := safeEdit(c, menuPrompt, h.menuMarkup()); err != nil {
		return err
	}
	return respond(c, "", false)
}

func (h *Handlers) handleNeedBot(c tele.Context) error {
	text := "Telegram-боты помогают автоматизировать продажи, поддержку и маркетинг. " +
		"Они доступны 24/7, мгновенно отвечают на запросы и интегрируются с CRM, «1С» " +
		"и другими системами. Используя ботов, компании снижают нагрузку на менеджеров " +
		"и повышают лояльность клиентов."
	markup := keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "🤔 Нужен ли бот мне? Мини-тест", Unique: cbQuizStart}},
		[]keyboard.InlineBtn{{Text: "↩️ Вернуться в меню", Unique: cbMenu}},
	)
	if err := safeEdit(c, text, markup); err != nil {
		return err
	}
	return respond(c, "", false)
}

func (h *Handlers) handleExamples(c tele.Context) error {
	text := "Ниже несколько демонстрационных проектов. Откройте любой бот и протестируйте " +
		"его функциональность."
	rows := [][]keyboard.InlineBtn{}
	if h.cfg.ExampleShopURL != "" {
		rows = append(rows, []keyboard.InlineBtn{{Text: "🛒 Магазин-бот", URL: h.cfg.ExampleShopURL}})
	}
	if h.cfg.ExampleBookURL != "" {
		rows = append(rows, []keyboard.InlineBtn{{Text: "📆 Бронирование", URL: h.cfg.ExampleBookURL}})
	}
	rows = append(rows, []keyboard.InlineBtn{{Text: "↩️ Вернуться в меню", Unique: cbMenu}})
	if err := safeEdit(c, text, keyboard.InlineButtonsRows(rows...)); err != nil {
		return err
	}
	return respond(c, "", false)
}

func (h *Handlers) handleContact(c tele.Context) error {
	text := "Отлично! Свяжитесь с автором, чтобы обсудить детали – https://t.me/" + h.cfg.OwnerUsername
	markup := keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "✉️ Написать в личку", URL: "https://t.me/" + h.cfg.OwnerUsername}},
		[]keyboard.InlineBtn{{Text: "↩️ Вернуться в меню", Unique: cbMenu}},
	)
	if err := safeEdit(c, text, markup); err != nil {
		return err
	}
	return respond(c, "", false)
}

// UnknownText falls back to the main menu for any text the bot does not
// understand.
func (h *Handlers) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendMD(c, menuPrompt, h.menuMarkup())
	}
}

// UnknownCallback answers presses on keyboards from retired message versions.
func (h *Handlers) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return respond(c, "Кнопка устарела. Отправьте /start", false)
	}
}
