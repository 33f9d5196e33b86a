// Package pricing computes project totals from catalog selections and applies
// coupon discounts. All computation is pure and in-memory: inputs are
// validated by the wizard before they reach the engine, so every error here
// is a caller bug, not a user mistake.
package pricing

import (
	"fmt"
	"math"

	"github.com/iwebix/webixbot/internal/catalog"
)

// InvalidSelectionError reports a selection that violates catalog rules, such
// as adding a module the template already includes.
type InvalidSelectionError struct {
	Reason string
}

func (e *InvalidSelectionError) Error() string {
	return "pricing: invalid selection: " + e.Reason
}

// Code exposes a stable error code for handler summary logs.
func (e *InvalidSelectionError) Code() string { return "INVALID_SELECTION" }

// Line is a priced module entry inside a quote. Price is the charged price
// after the template's adjustment, which may differ from the module's base.
type Line struct {
	ModuleID string
	Name     string
	Price    int
}

// Quote is the result of a total computation, broken down for display.
type Quote struct {
	TemplateID      string
	TemplateName    string
	Base            int
	Lines           []Line
	ModulesSubtotal int
	SupportID       string
	SupportName     string
	SupportCost     int
	Total           int
}

// Coupon is a recognized discount code with a fixed percentage.
type Coupon struct {
	Code    string
	Percent int
}

// Engine resolves selections against the catalog and produces quotes.
type Engine struct {
	cat    *catalog.Catalog
	coupon Coupon
}

// NewEngine builds an engine over the given catalog. The coupon defines the
// single recognized discount code; an empty code disables discounting.
func NewEngine(cat *catalog.Catalog, coupon Coupon) *Engine {
	return &Engine{cat: cat, coupon: coupon}
}

// Quote computes the total price for a (template, module set, support) triple.
func (e *Engine) Quote(templateID string, moduleIDs []string, supportID string) (Quote, error) {
	tpl, err := e.cat.Template(templateID)
	if err != nil {
		return Quote{}, err
	}
	sup, err := e.cat.Support(supportID)
	if err != nil {
		return Quote{}, err
	}

	q := Quote{
		TemplateID:   tpl.ID,
		TemplateName: tpl.Name,
		Base:         tpl.BasePrice,
		SupportID:    sup.ID,
		SupportName:  sup.Name,
	}

	for _, id := range moduleIDs {
		mod, err := e.cat.Module(id)
		if err != nil {
			return Quote{}, err
		}
		if tpl.Includes(id) {
			return Quote{}, &InvalidSelectionError{
				Reason: fmt.Sprintf("module %q is already included in template %q", id, tpl.ID),
			}
		}
		if !tpl.IsOfferable(id) {
			return Quote{}, &InvalidSelectionError{
				Reason: fmt.Sprintf("module %q is not offerable for template %q", id, tpl.ID),
			}
		}
		price := tpl.ModulePrice(mod)
		q.Lines = append(q.Lines, Line{ModuleID: mod.ID, Name: mod.Name, Price: price})
		q.ModulesSubtotal += price
	}

	q.SupportCost = sup.Cost(q.Base + q.ModulesSubtotal)
	q.Total = q.Base + q.ModulesSubtotal + q.SupportCost
	return q, nil
}

// Discount returns the discount amount for a coupon code applied to a total.
// Unrecognized codes yield zero. The computation has no side effects.
func (e *Engine) Discount(total int, code string) int {
	if code == "" || code != e.coupon.Code || e.coupon.Percent <= 0 {
		return 0
	}
	return int(math.Floor(float64(total) * float64(e.coupon.Percent) / 100))
}

// CouponCode returns the recognized discount code.
func (e *Engine) CouponCode() string { return e.coupon.Code }

// CouponPercent returns the discount percentage.
func (e *Engine) CouponPercent() int { return e.coupon.Percent }
