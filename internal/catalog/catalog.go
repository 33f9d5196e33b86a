// Package catalog holds the immutable pricing tables the calculator wizard
// sells from: bot templates, add-on modules, and support packages. The data
// is loaded once at startup and never mutated afterwards.
package catalog

import (
	"fmt"
	"math"
)

// NotFoundError reports a lookup for an id that is absent from the catalog
// tables. In correct operation this never happens: it means a stale keyboard
// or broken wiring, not user input.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("catalog: %s %q not found", e.Kind, e.ID)
}

// Code exposes a stable error code for handler summary logs.
func (e *NotFoundError) Code() string { return "NOT_FOUND" }

// Module is an optional add-on feature with its own price.
type Module struct {
	ID          string
	Name        string
	Price       int
	Description string
}

// PriceAdjust recomputes the charged price of a module for templates that do
// not bundle modules into a base price (the build-your-own template). A zero
// value is the identity adjustment.
type PriceAdjust struct {
	Markup    float64
	RoundUpTo int
}

// Apply returns the adjusted price for a module base price.
func (a PriceAdjust) Apply(price int) int {
	if a.Markup <= 0 {
		return price
	}
	adjusted := float64(price) * a.Markup
	if a.RoundUpTo > 1 {
		step := float64(a.RoundUpTo)
		return int(math.Ceil(adjusted/step) * step)
	}
	return int(math.Ceil(adjusted))
}

// Template is a pre-packaged bot offering with a base price and a set of
// modules already included in that price.
type Template struct {
	ID          string
	Name        string
	BasePrice   int
	Description string

	included map[string]struct{}
	allow    map[string]struct{} // nil means "no allow-list"
	deny     map[string]struct{}
	adjust   PriceAdjust
}

// Includes reports whether the module is bundled into the template price.
func (t *Template) Includes(moduleID string) bool {
	_, ok := t.included[moduleID]
	return ok
}

// IncludedIDs returns the bundled module ids in catalog order.
func (t *Template) IncludedIDs(c *Catalog) []string {
	out := make([]string, 0, len(t.included))
	for _, id := range c.moduleOrder {
		if t.Includes(id) {
			out = append(out, id)
		}
	}
	return out
}

// IsOfferable reports whether the module may be offered on top of this
// template. Included modules are never offered; an allow-list restricts the
// set, a deny-list carves ids out of it.
func (t *Template) IsOfferable(moduleID string) bool {
	if t.Includes(moduleID) {
		return false
	}
	if t.allow != nil {
		if _, ok := t.allow[moduleID]; !ok {
			return false
		}
	}
	if _, ok := t.deny[moduleID]; ok {
		return false
	}
	return true
}

// ModulePrice returns the price charged for a module on this template,
// after the per-template adjustment.
func (t *Template) ModulePrice(m *Module) int {
	return t.adjust.Apply(m.Price)
}

// SupportPackage is a post-delivery maintenance tier. Exactly one of Flat and
// Multiplier is set: a flat price is added as-is, a multiplier is applied to
// the (base + modules) subtotal and rounded down.
type SupportPackage struct {
	ID         string
	Name       string
	Flat       int
	Multiplier float64
}

// Cost computes the support charge for the given subtotal.
func (s *SupportPackage) Cost(subtotal int) int {
	if s.Multiplier > 0 {
		return int(math.Floor(float64(subtotal) * s.Multiplier))
	}
	return s.Flat
}

// Category groups templates on the first wizard step. A builder category has
// no template list: choosing it jumps straight to module selection with the
// category's synthetic zero-price template.
type Category struct {
	ID        string
	Name      string
	Templates []string
	Builder   string // template id; set only for the build-your-own category
}

// IsBuilder reports whether the category skips template selection.
func (c Category) IsBuilder() bool { return c.Builder != "" }

// Catalog is the read-only lookup structure over all pricing tables.
type Catalog struct {
	categories []Category

	templates     map[string]*Template
	templateOrder []string

	modules     map[string]*Module
	moduleOrder []string

	support      map[string]*SupportPackage
	supportOrder []string
}

// Categories returns all categories in display order.
func (c *Catalog) Categories() []Category {
	return c.categories
}

// Category returns a category by id.
func (c *Catalog) Category(id string) (Category, error) {
	for _, cat := range c.categories {
		if cat.ID == id {
			return cat, nil
		}
	}
	return Category{}, &NotFoundError{Kind: "category", ID: id}
}

// Template returns a template by id.
func (c *Catalog) Template(id string) (*Template, error) {
	if t, ok := c.templates[id]; ok {
		return t, nil
	}
	return nil, &NotFoundError{Kind: "template", ID: id}
}

// Module returns a module by id.
func (c *Catalog) Module(id string) (*Module, error) {
	if m, ok := c.modules[id]; ok {
		return m, nil
	}
	return nil, &NotFoundError{Kind: "module", ID: id}
}

// Support returns a support package by id.
func (c *Catalog) Support(id string) (*SupportPackage, error) {
	if s, ok := c.support[id]; ok {
		return s, nil
	}
	return nil, &NotFoundError{Kind: "support package", ID: id}
}

// TemplatesIn returns the category's templates in display order.
func (c *Catalog) TemplatesIn(cat Category) []*Template {
	out := make([]*Template, 0, len(cat.Templates))
	for _, id := range cat.Templates {
		if t, ok := c.templates[id]; ok {
			out = append(out, t)
		}
	}
	return out
}

// OfferableModules returns the modules that may be added on top of the
// template, in catalog display order.
func (c *Catalog) OfferableModules(t *Template) []*Module {
	var out []*Module
	for _, id := range c.moduleOrder {
		if t.IsOfferable(id) {
			out = append(out, c.modules[id])
		}
	}
	return out
}

// SupportPackages returns all support tiers in display order.
func (c *Catalog) SupportPackages() []*SupportPackage {
	out := make([]*SupportPackage, 0, len(c.supportOrder))
	for _, id := range c.supportOrder {
		out = append(out, c.support[id])
	}
	return out
}
