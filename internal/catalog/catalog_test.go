package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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
    included: [portfolio]
    only_modules: [calendar, payments]
  - id: shop
    name: Shop
    base_price: 45000
    included: [payments]
    deny_modules: [webapp]
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
  - id: portfolio
    name: Portfolio
    price: 4000
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

func mustParse(t *testing.T) *Catalog {
	t.Helper()
	c, err := Parse([]byte(testCatalogYAML))
	require.NoError(t, err)
	return c
}

func TestParse_LookupAndOrder(t *testing.T) {
	c := mustParse(t)

	tpl, err := c.Template("infobot")
	require.NoError(t, err)
	assert.Equal(t, 20000, tpl.BasePrice)

	_, err = c.Template("nope")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "NOT_FOUND", nf.Code())

	cats := c.Categories()
	require.Len(t, cats, 2)
	assert.Equal(t, "main", cats[0].ID)
	assert.True(t, cats[1].IsBuilder())
	assert.Equal(t, "custom", cats[1].Builder)
}

func TestParse_EmbeddedDefaultCatalog(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err, "embedded catalog must always parse")
	require.NotEmpty(t, c.Categories())

	// The build-your-own category must point at a zero-price template with
	// a markup adjustment.
	var builder Category
	for _, cat := range c.Categories() {
		if cat.IsBuilder() {
			builder = cat
		}
	}
	require.True(t, builder.IsBuilder(), "default catalog must have a builder category")
	tpl, err := c.Template(builder.Builder)
	require.NoError(t, err)
	assert.Zero(t, tpl.BasePrice)
}

func TestIsOfferable_IncludedAllowDeny(t *testing.T) {
	c := mustParse(t)

	info, err := c.Template("infobot")
	require.NoError(t, err)
	// Included modules are never offered.
	assert.False(t, info.IsOfferable("portfolio"))
	// Allow-list restricts the set.
	assert.True(t, info.IsOfferable("calendar"))
	assert.False(t, info.IsOfferable("webapp"))

	shop, err := c.Template("shop")
	require.NoError(t, err)
	// Deny-list carves out ids; everything else is offerable.
	assert.False(t, shop.IsOfferable("webapp"))
	assert.False(t, shop.IsOfferable("payments"), "included beats everything")
	assert.True(t, shop.IsOfferable("calendar"))

	custom, err := c.Template("custom")
	require.NoError(t, err)
	assert.True(t, custom.IsOfferable("webapp"))

	mods := c.OfferableModules(info)
	ids := make([]string, 0, len(mods))
	for _, m := range mods {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"calendar", "payments"}, ids, "catalog order preserved")
}

func TestModulePrice_MarkupRounding(t *testing.T) {
	c := mustParse(t)

	custom, err := c.Template("custom")
	require.NoError(t, err)
	calendar, err := c.Module("calendar")
	require.NoError(t, err)
	// 5000 * 1.2 = 6000, already on a 1000 boundary.
	assert.Equal(t, 6000, custom.ModulePrice(calendar))

	payments, err := c.Module("payments")
	require.NoError(t, err)
	// 7000 * 1.2 = 8400, rounds up to 9000.
	assert.Equal(t, 9000, custom.ModulePrice(payments))

	shop, err := c.Template("shop")
	require.NoError(t, err)
	assert.Equal(t, 5000, shop.ModulePrice(calendar), "ordinary templates charge base price")
}

func TestSupportCost_FlatAndMultiplier(t *testing.T) {
	c := mustParse(t)

	flat, err := c.Support("support_6")
	require.NoError(t, err)
	assert.Equal(t, 3000, flat.Cost(30000))

	pct, err := c.Support("support_pct")
	require.NoError(t, err)
	assert.Equal(t, 5400, pct.Cost(30000), "floor(30000*0.18)")
	assert.Equal(t, 5467, pct.Cost(30375), "fractional products round down")

	none, err := c.Support("none")
	require.NoError(t, err)
	assert.Zero(t, none.Cost(99999))
}

func TestParse_Validation(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"unknown included module", `
categories: [{id: a, name: A, templates: [t]}]
templates: [{id: t, name: T, base_price: 1, included: [ghost]}]
modules: []
support: [{id: s, name: S, flat: 0}]
`},
		{"support with both prices", `
categories: [{id: a, name: A, templates: [t]}]
templates: [{id: t, name: T, base_price: 1}]
modules: []
support: [{id: s, name: S, flat: 100, multiplier: 0.2}]
`},
		{"support with neither price", `
categories: [{id: a, name: A, templates: [t]}]
templates: [{id: t, name: T, base_price: 1}]
modules: []
support: [{id: s, name: S}]
`},
		{"negative module price", `
categories: [{id: a, name: A, templates: [t]}]
templates: [{id: t, name: T, base_price: 1}]
modules: [{id: m, name: M, price: -5}]
support: [{id: s, name: S, flat: 0}]
`},
		{"builder references unknown template", `
categories: [{id: a, name: A, builder: ghost}]
templates: [{id: t, name: T, base_price: 1}]
modules: []
support: [{id: s, name: S, flat: 0}]
`},
		{"markup below one", `
categories: [{id: a, name: A, templates: [t]}]
templates: [{id: t, name: T, base_price: 1, module_markup: 0.5}]
modules: []
support: [{id: s, name: S, flat: 0}]
`},
		{"no categories", `
categories: []
templates: [{id: t, name: T, base_price: 1}]
modules: []
support: [{id: s, name: S, flat: 0}]
`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			assert.Error(t, err)
		})
	}
}
