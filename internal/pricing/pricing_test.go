package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iwebix/webixbot/internal/catalog"
)

const testCatalogYAML = `
categories:
  - id: main
    name: Main
    templates: [infobot, shop]
  - id: custom
    name: Custom
    builder: custom

templates:
  - id: infobot
    name: Info bot
    base_price: 20000
    only_modules: [calendar, payments, mailing]
  - id: shop
    name: Shop
    base_price: 45000
    included: [payments]
  - id: custom
    name: Custom build
    base_price: 0
    module_markup: 1.2
    markup_round_to: 1000

modules:
  - id: calendar
    name: Calendar
    price: 5000
  - id: payments
    name: Payments
    price: 7000
  - id: mailing
    name: Mailing
    price: 3000
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
  - id: none
    name: No support
    flat: 0
`

func testEngine(t *testing.T, coupon Coupon) *Engine {
	t.Helper()
	cat, err := catalog.Parse([]byte(testCatalogYAML))
	require.NoError(t, err)
	return NewEngine(cat, coupon)
}

func TestQuote_BaseModulesAndFlatSupport(t *testing.T) {
	e := testEngine(t, Coupon{})

	q, err := e.Quote("infobot", []string{"calendar", "payments"}, "support_6")
	require.NoError(t, err)

	assert.Equal(t, 20000, q.Base)
	require.Len(t, q.Lines, 2)
	assert.Equal(t, Line{ModuleID: "calendar", Name: "Calendar", Price: 5000}, q.Lines[0])
	assert.Equal(t, Line{ModuleID: "payments", Name: "Payments", Price: 7000}, q.Lines[1])
	assert.Equal(t, 12000, q.ModulesSubtotal)
	assert.Equal(t, 3000, q.SupportCost)
	assert.Equal(t, 35000, q.Total)
}

func TestQuote_MultiplierSupportFloors(t *testing.T) {
	e := testEngine(t, Coupon{})

	// Subtotal 20000 + 5000 + 3000 = 28000; 28000*0.18 = 5040.
	q, err := e.Quote("infobot", []string{"calendar", "mailing"}, "support_pct")
	require.NoError(t, err)
	assert.Equal(t, 5040, q.SupportCost)
	assert.Equal(t, 33040, q.Total)

	// Support applies to the modules-adjusted subtotal, not the base alone.
	bare, err := e.Quote("infobot", nil, "support_pct")
	require.NoError(t, err)
	assert.Equal(t, 3600, bare.SupportCost, "floor(20000*0.18)")
	assert.Less(t, bare.Total, q.Total, "adding modules never lowers the total")
}

func TestQuote_BuilderMarkupRoundsUp(t *testing.T) {
	e := testEngine(t, Coupon{})

	q, err := e.Quote("custom", []string{"payments", "webapp"}, "none")
	require.NoError(t, err)

	assert.Zero(t, q.Base)
	// 7000*1.2 = 8400 -> 9000; 10000*1.2 = 12000 stays.
	assert.Equal(t, 9000, q.Lines[0].Price)
	assert.Equal(t, 12000, q.Lines[1].Price)
	assert.Equal(t, 21000, q.Total)
}

func TestQuote_RejectsIncludedAndUnofferable(t *testing.T) {
	e := testEngine(t, Coupon{})

	var inv *InvalidSelectionError

	_, err := e.Quote("shop", []string{"payments"}, "none")
	require.ErrorAs(t, err, &inv, "included module must not be sellable twice")
	assert.Equal(t, "INVALID_SELECTION", inv.Code())

	_, err = e.Quote("infobot", []string{"webapp"}, "none")
	require.ErrorAs(t, err, &inv, "module outside the allow-list")

	var nf *catalog.NotFoundError
	_, err = e.Quote("infobot", []string{"ghost"}, "none")
	require.ErrorAs(t, err, &nf)

	_, err = e.Quote("ghost", nil, "none")
	require.ErrorAs(t, err, &nf)

	_, err = e.Quote("infobot", nil, "ghost")
	require.ErrorAs(t, err, &nf)
}

func TestDiscount(t *testing.T) {
	e := testEngine(t, Coupon{Code: "QUIZ5", Percent: 5})

	assert.Equal(t, 1750, e.Discount(35000, "QUIZ5"))
	// 33333*0.05 = 1666.65 rounds down.
	assert.Equal(t, 1666, e.Discount(33333, "QUIZ5"))
	assert.Zero(t, e.Discount(35000, "WRONG"))
	assert.Zero(t, e.Discount(35000, ""))

	disabled := testEngine(t, Coupon{})
	assert.Zero(t, disabled.Discount(35000, "QUIZ5"))

	assert.Equal(t, "QUIZ5", e.CouponCode())
	assert.Equal(t, 5, e.CouponPercent())
}
