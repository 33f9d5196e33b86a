package handlers

import (
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	tgformat "github.com/iwebix/webixbot/core/telegram/format"
	tghelpers "github.com/iwebix/webixbot/core/telegram/helpers"
)

const recentQuotesLimit = 10

// handleQuotes shows the owner the most recent completed calculations.
func (h *Handlers) handleQuotes(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	rows, err := h.quotes.Recent(ctx, recentQuotesLimit)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return tghelpers.SendText(c, "Расчётов пока нет.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*Последние расчёты (%d):*\n", len(rows))
	for _, q := range rows {
		fmt.Fprintf(&b, "\n%s · user %d\n%s + %d мод. + %s = *%d ₽*",
			q.CreatedAt.Format("02.01 15:04"), q.UserID,
			mdSafe(q.Template), len(q.Modules), mdSafe(q.Support), q.Total-q.Discount)
		if q.Discount > 0 {
			fmt.Fprintf(&b, " (купон −%d ₽)", q.Discount)
		}
	}
	return tghelpers.SendMD(c, b.String())
}

// mdSafe escapes catalog ids for the Markdown listing.
func mdSafe(s string) string {
	out, err := tgformat.EscapeMarkdown(s, tgformat.MarkdownV1, "")
	if err != nil {
		return s
	}
	return out
}
