package wizard

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/iwebix/webixbot/internal/catalog"
	"github.com/iwebix/webixbot/internal/pricing"
)

// Callback action tokens shared between renders and the transport layer.
const (
	ActStart       = "calc_cost"
	ActCategory    = "calc_cat"
	ActTemplate    = "calc_tpl"
	ActModule      = "calc_mod"
	ActModulesDone = "calc_mod_done"
	ActSupport     = "calc_sup"
	ActBack        = "calc_back"
	ActMenu        = "back_menu"
)

// Button is one keyboard entry: either a callback action with an optional
// payload or an external link, never both.
type Button struct {
	Label  string
	Action string
	Data   string
	URL    string
}

// Render is the directive the transport layer turns into an edited message:
// body text, ordered button rows, and an optional transient notice shown as a
// callback answer.
type Render struct {
	Text   string
	Rows   [][]Button
	Notice string
	Alert  bool
}

func withNotice(r Render, notice string) Render {
	r.Notice = notice
	return r
}

const noticeUseButtons = "Используйте кнопки ниже"

func backRow() []Button {
	return []Button{
		{Label: "↩️ Назад", Action: ActBack},
		{Label: "🏠 В меню", Action: ActMenu},
	}
}

func (m *Machine) renderCategories() Render {
	r := Render{Text: "Шаг 1/4. Какая задача ближе вам? Выберите категорию:"}
	for _, cat := range m.cat.Categories() {
		r.Rows = append(r.Rows, []Button{{Label: cat.Name, Action: ActCategory, Data: cat.ID}})
	}
	r.Rows = append(r.Rows, []Button{{Label: "↩️ Вернуться в меню", Action: ActMenu}})
	return r
}

func (m *Machine) renderTemplates(cat catalog.Category) Render {
	var b strings.Builder
	fmt.Fprintf(&b, "Шаг 2/4. %s — выберите подходящий шаблон:\n", cat.Name)
	r := Render{}
	for _, tpl := range m.cat.TemplatesIn(cat) {
		fmt.Fprintf(&b, "\n🏷 %s — %d ₽\n%s\n", tpl.Name, tpl.BasePrice, tpl.Description)
		r.Rows = append(r.Rows, []Button{{
			Label:  fmt.Sprintf("%s — %d ₽", tpl.Name, tpl.BasePrice),
			Action: ActTemplate,
			Data:   tpl.ID,
		}})
	}
	r.Text = b.String()
	r.Rows = append(r.Rows, backRow())
	return r
}

func (m *Machine) renderModules(s Session, tpl *catalog.Template) Render {
	var b strings.Builder
	b.WriteString("Шаг 3/4. Выберите необходимые модули (можно несколько):")
	if included := tpl.IncludedIDs(m.cat); len(included) > 0 {
		b.WriteString("\n\nУже входят в шаблон:")
		for _, id := range included {
			if mod, err := m.cat.Module(id); err == nil {
				b.WriteString("\n• " + mod.Name)
			}
		}
	}
	r := Render{Text: b.String()}
	for _, mod := range m.cat.OfferableModules(tpl) {
		prefix := ""
		if s.HasModule(mod.ID) {
			prefix = "✅ "
		}
		r.Rows = append(r.Rows, []Button{{
			Label:  fmt.Sprintf("%s%s (+%d ₽)", prefix, mod.Name, tpl.ModulePrice(mod)),
			Action: ActModule,
			Data:   mod.ID,
		}})
	}
	r.Rows = append(r.Rows, []Button{
		{Label: "↩️ Назад", Action: ActBack},
		{Label: "Далее ➡️", Action: ActModulesDone},
	})
	return r
}

func (m *Machine) renderSupport() Render {
	r := Render{Text: "Шаг 4/4. Выберите пакет поддержки:"}
	for _, pkg := range m.cat.SupportPackages() {
		r.Rows = append(r.Rows, []Button{{
			Label:  supportLabel(pkg),
			Action: ActSupport,
			Data:   pkg.ID,
		}})
	}
	r.Rows = append(r.Rows, backRow())
	return r
}

func supportLabel(pkg *catalog.SupportPackage) string {
	if pkg.Multiplier > 0 {
		return fmt.Sprintf("%s (+%d%%)", pkg.Name, int(pkg.Multiplier*100))
	}
	if pkg.Flat > 0 {
		return fmt.Sprintf("%s (+%d ₽)", pkg.Name, pkg.Flat)
	}
	return pkg.Name
}

func (m *Machine) renderSummary(q pricing.Quote, discount int, coupon string) Render {
	var b strings.Builder
	b.WriteString("Ваш выбор:\n\n")
	fmt.Fprintf(&b, "Шаблон: %s — %d ₽\n\n", q.TemplateName, q.Base)
	b.WriteString("Модули:\n")
	if len(q.Lines) == 0 {
		b.WriteString("—\n")
	}
	for _, line := range q.Lines {
		fmt.Fprintf(&b, "%s — %d ₽\n", line.Name, line.Price)
	}
	fmt.Fprintf(&b, "\n%s", supportLabel(supportForSummary(q)))
	if discount > 0 {
		fmt.Fprintf(&b, "\n\nСтоимость: %d ₽", q.Total)
		fmt.Fprintf(&b, "\nКупон %s: −%d ₽", coupon, discount)
		fmt.Fprintf(&b, "\n\nИтоговая стоимость: *%d ₽*", q.Total-discount)
	} else {
		fmt.Fprintf(&b, "\n\nИтоговая стоимость: *%d ₽*", q.Total)
	}

	r := Render{Text: b.String()}
	if m.owner != "" {
		r.Rows = append(r.Rows, []Button{{
			Label: "✉️ Написать в личку",
			URL:   m.contactLink(q, discount),
		}})
	}
	r.Rows = append(r.Rows, []Button{{Label: "↩️ Вернуться в меню", Action: ActMenu}})
	return r
}

func supportForSummary(q pricing.Quote) *catalog.SupportPackage {
	// The summary only needs name and flat cost; multiplier packages are shown
	// with their computed cost to avoid repeating the percentage math.
	return &catalog.SupportPackage{Name: q.SupportName, Flat: q.SupportCost}
}

func (m *Machine) contactLink(q pricing.Quote, discount int) string {
	names := make([]string, 0, len(q.Lines))
	for _, line := range q.Lines {
		names = append(names, line.Name)
	}
	modules := strings.Join(names, ", ")
	if modules == "" {
		modules = "—"
	}
	msg := fmt.Sprintf(
		"Приветствую! Заинтересовало создание Telegram-бота.\nШаблон: %s\nМодули: %s\nОбщая стоимость: %d ₽.\nХотелось бы обсудить детали сотрудничества.",
		q.TemplateName, modules, q.Total-discount,
	)
	return "https://t.me/" + m.owner + "?text=" + url.QueryEscape(msg)
}
