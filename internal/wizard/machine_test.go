package wizard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iwebix/webixbot/internal/catalog"
	"github.com/iwebix/webixbot/internal/pricing"
)

const testCatalogYAML = `
categories:
  - id: services
    name: Services
    templates: [infobot, shop]
  - id: custom
    name: Custom
    builder: custom

templates:
  - id: infobot
    name: Info bot
    base_price: 20000
    description: Answers questions.
    only_modules: [calendar, payments]
  - id: shop
    name: Shop
    base_price: 45000
    description: Sells things.
    included: [payments]
  - id: custom
    name: Custom build
    base_price: 0
    description: From scratch.
    module_markup: 1.2
    markup_round_to: 1000

modules:
  - id: calendar
    name: Calendar
    price: 5000
  - id: payments
    name: Payments
    price: 7000
  - id: webapp
    name: Web app
    price: 10000

support:
  - id: support_6
    name: Support 6m
    flat: 3000
  - id: support_pct
    name: Support 18%
    multiplier: 0.18
`

// memSessions is an in-memory SessionStore with an optional injected failure.
type memSessions struct {
	sessions map[int64]Session
	failNext error
}

func newMemSessions() *memSessions {
	return &memSessions{sessions: make(map[int64]Session)}
}

func (m *memSessions) fail() error {
	err := m.failNext
	m.failNext = nil
	return err
}

func (m *memSessions) Get(_ context.Context, userID int64) (Session, bool, error) {
	if err := m.fail(); err != nil {
		return Session{}, false, err
	}
	s, ok := m.sessions[userID]
	return s, ok, nil
}

func (m *memSessions) Put(_ context.Context, s Session) error {
	if err := m.fail(); err != nil {
		return err
	}
	m.sessions[s.UserID] = s
	return nil
}

func (m *memSessions) Delete(_ context.Context, userID int64) error {
	if err := m.fail(); err != nil {
		return err
	}
	delete(m.sessions, userID)
	return nil
}

type memCoupons struct {
	codes map[int64]string
}

func newMemCoupons() *memCoupons { return &memCoupons{codes: make(map[int64]string)} }

func (m *memCoupons) Code(_ context.Context, userID int64) (string, bool, error) {
	code, ok := m.codes[userID]
	return code, ok && code != "", nil
}

func (m *memCoupons) Award(_ context.Context, userID int64, code string) error {
	m.codes[userID] = code
	return nil
}

type memQuotes struct {
	records []QuoteRecord
}

func (m *memQuotes) Record(_ context.Context, rec QuoteRecord) error {
	m.records = append(m.records, rec)
	return nil
}

type fixture struct {
	machine  *Machine
	sessions *memSessions
	coupons  *memCoupons
	quotes   *memQuotes
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cat, err := catalog.Parse([]byte(testCatalogYAML))
	require.NoError(t, err)
	f := &fixture{
		sessions: newMemSessions(),
		coupons:  newMemCoupons(),
		quotes:   &memQuotes{},
	}
	engine := pricing.NewEngine(cat, pricing.Coupon{Code: "QUIZ5", Percent: 5})
	f.machine = NewMachine(cat, engine, f.sessions, f.coupons, f.quotes, "owner")
	return f
}

// act finds the first button with the given action and returns its payload,
// failing the test if the keyboard lacks it.
func act(t *testing.T, r Render, action, data string) {
	t.Helper()
	for _, row := range r.Rows {
		for _, btn := range row {
			if btn.Action == action && btn.Data == data {
				return
			}
		}
	}
	t.Fatalf("render has no button action=%q data=%q", action, data)
}

func TestSessionModuleSet(t *testing.T) {
	// HasModule must work on values read straight out of a store map.
	sessions := map[int64]Session{7: {UserID: 7, Modules: []string{"calendar"}}}
	assert.True(t, sessions[7].HasModule("calendar"))
	assert.False(t, sessions[7].HasModule("payments"))

	s := sessions[7]
	assert.True(t, s.toggleModule("payments"))
	assert.False(t, s.toggleModule("payments"))
	assert.Equal(t, []string{"calendar"}, s.Modules)
}

func TestFullFlow_TemplatePath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const user = int64(7)

	r, err := f.machine.Start(ctx, user)
	require.NoError(t, err)
	act(t, r, ActCategory, "services")

	r, err = f.machine.ChooseCategory(ctx, user, "services")
	require.NoError(t, err)
	act(t, r, ActTemplate, "infobot")

	r, err = f.machine.ChooseTemplate(ctx, user, "infobot")
	require.NoError(t, err)
	act(t, r, ActModule, "calendar")

	r, err = f.machine.ToggleModule(ctx, user, "calendar")
	require.NoError(t, err)
	assert.Equal(t, "➕ Calendar", r.Notice)

	r, err = f.machine.ToggleModule(ctx, user, "payments")
	require.NoError(t, err)
	assert.Equal(t, "➕ Payments", r.Notice)

	r, err = f.machine.FinishModules(ctx, user)
	require.NoError(t, err)
	act(t, r, ActSupport, "support_6")

	r, err = f.machine.ChooseSupport(ctx, user, "support_6")
	require.NoError(t, err)
	assert.Contains(t, r.Text, "Итоговая стоимость: *35000 ₽*")

	// Completion deletes the session and records one quote.
	_, ok, err := f.sessions.Get(ctx, user)
	require.NoError(t, err)
	assert.False(t, ok)
	require.Len(t, f.quotes.records, 1)
	rec := f.quotes.records[0]
	assert.Equal(t, "infobot", rec.Template)
	assert.ElementsMatch(t, []string{"calendar", "payments"}, rec.Modules)
	assert.Equal(t, 35000, rec.Total)
	assert.Zero(t, rec.Discount)
}

func TestFullFlow_BuilderShortcutAndCoupon(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const user = int64(8)
	require.NoError(t, f.coupons.Award(ctx, user, "QUIZ5"))

	_, err := f.machine.Start(ctx, user)
	require.NoError(t, err)

	// The builder category lands straight on module selection.
	r, err := f.machine.ChooseCategory(ctx, user, "custom")
	require.NoError(t, err)
	act(t, r, ActModule, "webapp")
	s := f.sessions.sessions[user]
	assert.Equal(t, StepModules, s.Step)
	assert.Equal(t, "custom", s.Template)

	// 7000*1.2=8400 -> 9000 with the builder markup.
	r, err = f.machine.ToggleModule(ctx, user, "payments")
	require.NoError(t, err)
	act(t, r, ActModule, "payments")
	assert.Contains(t, r.Text, "Шаг 3/4")

	_, err = f.machine.FinishModules(ctx, user)
	require.NoError(t, err)

	r, err = f.machine.ChooseSupport(ctx, user, "support_pct")
	require.NoError(t, err)

	// Total: 0 + 9000 + floor(9000*0.18)=1620 -> 10620; coupon floor(10620*0.05)=531.
	assert.Contains(t, r.Text, "Купон QUIZ5: −531 ₽")
	assert.Contains(t, r.Text, "Итоговая стоимость: *10089 ₽*")
	require.Len(t, f.quotes.records, 1)
	assert.Equal(t, 531, f.quotes.records[0].Discount)
	assert.Equal(t, "QUIZ5", f.quotes.records[0].Coupon)
}

func TestToggleModule_TwiceRestoresRender(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const user = int64(9)

	_, err := f.machine.Start(ctx, user)
	require.NoError(t, err)
	_, err = f.machine.ChooseCategory(ctx, user, "services")
	require.NoError(t, err)
	before, err := f.machine.ChooseTemplate(ctx, user, "infobot")
	require.NoError(t, err)

	on, err := f.machine.ToggleModule(ctx, user, "calendar")
	require.NoError(t, err)
	assert.NotEqual(t, before.Rows, on.Rows, "selected module gets a marker")

	off, err := f.machine.ToggleModule(ctx, user, "calendar")
	require.NoError(t, err)
	assert.Equal(t, "➖ Calendar", off.Notice)
	assert.Equal(t, before.Text, off.Text)
	assert.Equal(t, before.Rows, off.Rows, "double toggle restores the exact keyboard")
	assert.Empty(t, f.sessions.sessions[user].Modules)
}

func TestToggleModule_RejectsUnofferable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const user = int64(10)

	_, err := f.machine.Start(ctx, user)
	require.NoError(t, err)
	_, err = f.machine.ChooseCategory(ctx, user, "services")
	require.NoError(t, err)
	_, err = f.machine.ChooseTemplate(ctx, user, "shop")
	require.NoError(t, err)

	// payments is included in shop: toggling it is invalid input, not an error.
	r, err := f.machine.ToggleModule(ctx, user, "payments")
	require.NoError(t, err)
	assert.Equal(t, "Используйте кнопки ниже", r.Notice)
	assert.Empty(t, f.sessions.sessions[user].Modules)

	r, err = f.machine.ToggleModule(ctx, user, "ghost")
	require.NoError(t, err)
	assert.Equal(t, "Используйте кнопки ниже", r.Notice)
}

func TestBack_RoundTripRendersIdentically(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const user = int64(11)

	_, err := f.machine.Start(ctx, user)
	require.NoError(t, err)
	templates, err := f.machine.ChooseCategory(ctx, user, "services")
	require.NoError(t, err)
	modules, err := f.machine.ChooseTemplate(ctx, user, "infobot")
	require.NoError(t, err)
	_, err = f.machine.ToggleModule(ctx, user, "calendar")
	require.NoError(t, err)
	support, err := f.machine.FinishModules(ctx, user)
	require.NoError(t, err)

	back, err := f.machine.Back(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, modules.Text, back.Text)
	assert.NotEqual(t, Render{}, back)
	assert.True(t, f.sessions.sessions[user].HasModule("calendar"), "back keeps selections")

	fwd, err := f.machine.FinishModules(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, support.Text, fwd.Text)
	assert.Equal(t, support.Rows, fwd.Rows)

	// Back from modules on a regular category goes to templates.
	_, err = f.machine.Back(ctx, user)
	require.NoError(t, err)
	back2, err := f.machine.Back(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, templates.Text, back2.Text)
	assert.Equal(t, templates.Rows, back2.Rows)
}

func TestBack_BuilderModulesReturnToCategories(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const user = int64(12)

	start, err := f.machine.Start(ctx, user)
	require.NoError(t, err)
	_, err = f.machine.ChooseCategory(ctx, user, "custom")
	require.NoError(t, err)

	back, err := f.machine.Back(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, start.Text, back.Text)
	assert.Equal(t, StepCategory, f.sessions.sessions[user].Step)
}

func TestResume_AfterRestart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const user = int64(13)

	_, err := f.machine.Start(ctx, user)
	require.NoError(t, err)
	_, err = f.machine.ChooseCategory(ctx, user, "services")
	require.NoError(t, err)
	screen, err := f.machine.ChooseTemplate(ctx, user, "infobot")
	require.NoError(t, err)

	// A new machine over the same store stands in for a process restart.
	fresh := NewMachine(f.machine.cat, f.machine.engine, f.sessions, f.coupons, f.quotes, "owner")
	r, ok, err := fresh.Resume(ctx, user)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, screen.Text, r.Text)
	assert.Equal(t, screen.Rows, r.Rows)

	ok, err = fresh.InProgress(ctx, user)
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = fresh.Resume(ctx, 404)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestActionWithoutSession_Restarts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r, err := f.machine.ChooseCategory(ctx, 14, "services")
	require.NoError(t, err)
	assert.Equal(t, "Начнём расчёт заново", r.Notice)
	assert.Equal(t, StepCategory, f.sessions.sessions[14].Step)
}

func TestOutOfStepInput_Rejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const user = int64(15)

	start, err := f.machine.Start(ctx, user)
	require.NoError(t, err)

	// Support pick on the category step must not advance anything.
	r, err := f.machine.ChooseSupport(ctx, user, "support_6")
	require.NoError(t, err)
	assert.Equal(t, "Используйте кнопки ниже", r.Notice)
	assert.Equal(t, start.Text, r.Text)
	assert.Equal(t, StepCategory, f.sessions.sessions[user].Step)
	assert.Empty(t, f.quotes.records)
}

func TestStoreFailure_Propagates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const user = int64(16)
	boom := errors.New("db down")

	f.sessions.failNext = boom
	_, err := f.machine.Start(ctx, user)
	require.ErrorIs(t, err, boom)
	assert.NotContains(t, f.sessions.sessions, user, "failed put leaves no state behind")

	_, err = f.machine.Start(ctx, user)
	require.NoError(t, err)
	f.sessions.failNext = boom
	_, err = f.machine.ChooseCategory(ctx, user, "services")
	require.ErrorIs(t, err, boom)
	assert.Equal(t, StepCategory, f.sessions.sessions[user].Step, "state unchanged after failed load")
}

func TestQuit_DeletesSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const user = int64(17)

	_, err := f.machine.Start(ctx, user)
	require.NoError(t, err)
	require.NoError(t, f.machine.Quit(ctx, user))

	ok, err := f.machine.InProgress(ctx, user)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSummary_ContactLinkCarriesSelection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const user = int64(18)

	_, err := f.machine.Start(ctx, user)
	require.NoError(t, err)
	_, err = f.machine.ChooseCategory(ctx, user, "services")
	require.NoError(t, err)
	_, err = f.machine.ChooseTemplate(ctx, user, "infobot")
	require.NoError(t, err)
	_, err = f.machine.ToggleModule(ctx, user, "calendar")
	require.NoError(t, err)
	_, err = f.machine.FinishModules(ctx, user)
	require.NoError(t, err)
	r, err := f.machine.ChooseSupport(ctx, user, "support_6")
	require.NoError(t, err)

	var link string
	for _, row := range r.Rows {
		for _, btn := range row {
			if btn.URL != "" {
				link = btn.URL
			}
		}
	}
	require.NotEmpty(t, link, "summary must offer a contact link")
	assert.Contains(t, link, "https://t.me/owner?text=")
	assert.NotContains(t, link, " ", "deep link payload must be escaped")
}
