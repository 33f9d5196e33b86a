package wizard

import (
	"context"
	"log/slog"

	"github.com/iwebix/webixbot/core/logger"
	"github.com/iwebix/webixbot/internal/catalog"
	"github.com/iwebix/webixbot/internal/pricing"
)

const logComponent = "service.wizard"

// Machine drives the calculator flow. It is the only writer of wizard
// sessions: every action loads the persisted session, validates the input
// against the catalog, persists the next state, and returns the render for
// the transport layer. Invalid input never advances state and never surfaces
// as an error; store failures always do.
type Machine struct {
	cat      *catalog.Catalog
	engine   *pricing.Engine
	sessions SessionStore
	coupons  CouponStore
	quotes   QuoteStore
	owner    string
}

// NewMachine wires the state machine with its collaborators. owner is the
// Telegram username used for the contact deep link on the summary screen.
func NewMachine(cat *catalog.Catalog, engine *pricing.Engine, sessions SessionStore, coupons CouponStore, quotes QuoteStore, owner string) *Machine {
	return &Machine{
		cat:      cat,
		engine:   engine,
		sessions: sessions,
		coupons:  coupons,
		quotes:   quotes,
		owner:    owner,
	}
}

// Start begins (or restarts) the flow for a user at category selection.
func (m *Machine) Start(ctx context.Context, userID int64) (Render, error) {
	s := Session{UserID: userID, Step: StepCategory}
	if err := m.sessions.Put(ctx, s); err != nil {
		return Render{}, err
	}
	m.logTransition(ctx, userID, 0, StepCategory)
	return m.renderCategories(), nil
}

// Resume re-renders the persisted step for a user, if any. It is what makes
// a mid-wizard process restart invisible to the user.
func (m *Machine) Resume(ctx context.Context, userID int64) (Render, bool, error) {
	s, ok, err := m.sessions.Get(ctx, userID)
	if err != nil || !ok {
		return Render{}, false, err
	}
	r, err := m.renderStep(s)
	if err != nil {
		return Render{}, false, err
	}
	return r, true, nil
}

// ChooseCategory handles the category pick. The build-your-own category skips
// template selection and lands on module selection with its synthetic
// zero-price template.
func (m *Machine) ChooseCategory(ctx context.Context, userID int64, categoryID string) (Render, error) {
	s, ok, err := m.sessions.Get(ctx, userID)
	if err != nil {
		return Render{}, err
	}
	if !ok {
		return m.restart(ctx, userID)
	}
	if s.Step != StepCategory {
		return m.rejected(ctx, s, "category", categoryID)
	}
	cat, err := m.cat.Category(categoryID)
	if err != nil {
		return m.rejected(ctx, s, "category", categoryID)
	}

	next := s.clone()
	next.Category = cat.ID
	if cat.IsBuilder() {
		next.Template = cat.Builder
		next.Modules = nil
		next.Step = StepModules
	} else {
		next.Step = StepTemplate
	}
	if err := m.sessions.Put(ctx, next); err != nil {
		return Render{}, err
	}
	m.logTransition(ctx, userID, s.Step, next.Step)
	if cat.IsBuilder() {
		tpl, err := m.cat.Template(next.Template)
		if err != nil {
			return Render{}, err
		}
		return m.renderModules(next, tpl), nil
	}
	return m.renderTemplates(cat), nil
}

// ChooseTemplate handles the template pick and resets the module set.
func (m *Machine) ChooseTemplate(ctx context.Context, userID int64, templateID string) (Render, error) {
	s, ok, err := m.sessions.Get(ctx, userID)
	if err != nil {
		return Render{}, err
	}
	if !ok {
		return m.restart(ctx, userID)
	}
	if s.Step != StepTemplate {
		return m.rejected(ctx, s, "template", templateID)
	}
	cat, err := m.cat.Category(s.Category)
	if err != nil {
		return Render{}, err
	}
	if !categoryOffers(cat, templateID) {
		return m.rejected(ctx, s, "template", templateID)
	}
	tpl, err := m.cat.Template(templateID)
	if err != nil {
		return m.rejected(ctx, s, "template", templateID)
	}

	next := s.clone()
	next.Template = tpl.ID
	next.Modules = nil
	next.Step = StepModules
	if err := m.sessions.Put(ctx, next); err != nil {
		return Render{}, err
	}
	m.logTransition(ctx, userID, s.Step, next.Step)
	return m.renderModules(next, tpl), nil
}

// ToggleModule adds or removes a module and re-renders the same step.
// Toggling twice restores the original set and keyboard.
func (m *Machine) ToggleModule(ctx context.Context, userID int64, moduleID string) (Render, error) {
	s, ok, err := m.sessions.Get(ctx, userID)
	if err != nil {
		return Render{}, err
	}
	if !ok {
		return m.restart(ctx, userID)
	}
	if s.Step != StepModules {
		return m.rejected(ctx, s, "module", moduleID)
	}
	tpl, err := m.cat.Template(s.Template)
	if err != nil {
		return Render{}, err
	}
	mod, err := m.cat.Module(moduleID)
	if err != nil {
		return m.rejected(ctx, s, "module", moduleID)
	}
	if !tpl.IsOfferable(mod.ID) {
		return m.rejected(ctx, s, "module", moduleID)
	}

	next := s.clone()
	added := next.toggleModule(mod.ID)
	if err := m.sessions.Put(ctx, next); err != nil {
		return Render{}, err
	}

	notice := "➖ " + mod.Name
	if added {
		notice = "➕ " + mod.Name
	}
	logger.Debug(ctx, logComponent, "wizard.module_toggle",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.String("module", mod.ID),
		slog.Bool("added", added),
	)
	return withNotice(m.renderModules(next, tpl), notice), nil
}

// FinishModules advances from module selection to support selection.
func (m *Machine) FinishModules(ctx context.Context, userID int64) (Render, error) {
	s, ok, err := m.sessions.Get(ctx, userID)
	if err != nil {
		return Render{}, err
	}
	if !ok {
		return m.restart(ctx, userID)
	}
	if s.Step != StepModules {
		return m.rejected(ctx, s, "done", "")
	}

	next := s.clone()
	next.Step = StepSupport
	if err := m.sessions.Put(ctx, next); err != nil {
		return Render{}, err
	}
	m.logTransition(ctx, userID, s.Step, next.Step)
	return m.renderSupport(), nil
}

// ChooseSupport completes the flow: computes the total, applies the user's
// coupon if any, records the quote, deletes the session, and returns the
// summary render.
func (m *Machine) ChooseSupport(ctx context.Context, userID int64, supportID string) (Render, error) {
	s, ok, err := m.sessions.Get(ctx, userID)
	if err != nil {
		return Render{}, err
	}
	if !ok {
		return m.restart(ctx, userID)
	}
	if s.Step != StepSupport {
		return m.rejected(ctx, s, "support", supportID)
	}
	if _, err := m.cat.Support(supportID); err != nil {
		return m.rejected(ctx, s, "support", supportID)
	}

	quote, err := m.engine.Quote(s.Template, s.Modules, supportID)
	if err != nil {
		// Session data no longer matches the catalog: a logic fault,
		// not a user mistake.
		return Render{}, err
	}

	coupon := ""
	if code, has, err := m.coupons.Code(ctx, userID); err != nil {
		return Render{}, err
	} else if has {
		coupon = code
	}
	discount := m.engine.Discount(quote.Total, coupon)
	if discount == 0 {
		coupon = ""
	}

	if err := m.quotes.Record(ctx, QuoteRecord{
		UserID:   userID,
		Template: s.Template,
		Modules:  append([]string(nil), s.Modules...),
		Support:  supportID,
		Total:    quote.Total,
		Discount: discount,
		Coupon:   coupon,
	}); err != nil {
		return Render{}, err
	}
	if err := m.sessions.Delete(ctx, userID); err != nil {
		return Render{}, err
	}

	m.logTransition(ctx, userID, s.Step, StepCompleted)
	logger.Info(ctx, logComponent, "wizard.completed",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.String("template", s.Template),
		slog.Int("modules", len(s.Modules)),
		slog.String("support", supportID),
		slog.Int("total", quote.Total),
		slog.Int("discount", discount),
	)
	return m.renderSummary(quote, discount, coupon), nil
}

// Back performs a single-step back transition, reconstructing the prior
// step's render without losing state.
func (m *Machine) Back(ctx context.Context, userID int64) (Render, error) {
	s, ok, err := m.sessions.Get(ctx, userID)
	if err != nil {
		return Render{}, err
	}
	if !ok {
		return m.restart(ctx, userID)
	}

	next := s.clone()
	switch s.Step {
	case StepTemplate:
		next.Step = StepCategory
	case StepModules:
		cat, err := m.cat.Category(s.Category)
		if err != nil {
			return Render{}, err
		}
		if cat.IsBuilder() {
			next.Step = StepCategory
		} else {
			next.Step = StepTemplate
		}
	case StepSupport:
		next.Step = StepModules
	default:
		return m.rejected(ctx, s, "back", "")
	}

	if err := m.sessions.Put(ctx, next); err != nil {
		return Render{}, err
	}
	m.logTransition(ctx, userID, s.Step, next.Step)
	return m.renderStep(next)
}

// Quit abandons the flow and deletes the persisted session. It is also used
// when the user wanders into an unrelated flow.
func (m *Machine) Quit(ctx context.Context, userID int64) error {
	if err := m.sessions.Delete(ctx, userID); err != nil {
		return err
	}
	logger.Debug(ctx, logComponent, "wizard.quit",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
	)
	return nil
}

// InProgress reports whether the user has a persisted wizard session.
func (m *Machine) InProgress(ctx context.Context, userID int64) (bool, error) {
	_, ok, err := m.sessions.Get(ctx, userID)
	return ok, err
}

func (m *Machine) renderStep(s Session) (Render, error) {
	switch s.Step {
	case StepCategory:
		return m.renderCategories(), nil
	case StepTemplate:
		cat, err := m.cat.Category(s.Category)
		if err != nil {
			return Render{}, err
		}
		return m.renderTemplates(cat), nil
	case StepModules:
		tpl, err := m.cat.Template(s.Template)
		if err != nil {
			return Render{}, err
		}
		return m.renderModules(s, tpl), nil
	case StepSupport:
		return m.renderSupport(), nil
	}
	return m.renderCategories(), nil
}

// restart handles actions arriving without a persisted session (deleted row,
// very old keyboard): the flow restarts at category selection with a notice.
func (m *Machine) restart(ctx context.Context, userID int64) (Render, error) {
	r, err := m.Start(ctx, userID)
	if err != nil {
		return Render{}, err
	}
	return withNotice(r, "Начнём расчёт заново"), nil
}

// rejected re-renders the current step unchanged with a transient notice.
// The invalid input is logged and swallowed here, never propagated.
func (m *Machine) rejected(ctx context.Context, s Session, kind, value string) (Render, error) {
	logger.Debug(ctx, logComponent, "wizard.invalid_input",
		slog.String("status", "skip"),
		slog.Int64("user_id", s.UserID),
		slog.Int("step", int(s.Step)),
		slog.String("kind", kind),
		slog.String("value", value),
	)
	r, err := m.renderStep(s)
	if err != nil {
		return Render{}, err
	}
	return withNotice(r, noticeUseButtons), nil
}

func (m *Machine) logTransition(ctx context.Context, userID int64, from, to Step) {
	logger.Debug(ctx, logComponent, "wizard.transition",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.Int("from", int(from)),
		slog.Int("to", int(to)),
	)
}

func categoryOffers(cat catalog.Category, templateID string) bool {
	for _, id := range cat.Templates {
		if id == templateID {
			return true
		}
	}
	return false
}
