package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

type moduleSpec struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Price       int    `yaml:"price"`
	Description string `yaml:"description"`
}

type templateSpec struct {
	ID            string   `yaml:"id"`
	Name          string   `yaml:"name"`
	BasePrice     int      `yaml:"base_price"`
	Description   string   `yaml:"description"`
	Included      []string `yaml:"included"`
	OnlyModules   []string `yaml:"only_modules"`
	DenyModules   []string `yaml:"deny_modules"`
	ModuleMarkup  float64  `yaml:"module_markup"`
	MarkupRoundTo int      `yaml:"markup_round_to"`
}

type supportSpec struct {
	ID         string  `yaml:"id"`
	Name       string  `yaml:"name"`
	Flat       *int    `yaml:"flat"`
	Multiplier float64 `yaml:"multiplier"`
}

type categorySpec struct {
	ID        string   `yaml:"id"`
	Name      string   `yaml:"name"`
	Templates []string `yaml:"templates"`
	Builder   string   `yaml:"builder"`
}

type catalogSpec struct {
	Categories []categorySpec `yaml:"categories"`
	Templates  []templateSpec `yaml:"templates"`
	Modules    []moduleSpec   `yaml:"modules"`
	Support    []supportSpec  `yaml:"support"`
}

// Load reads and validates a catalog file. An empty path loads the embedded
// default catalog.
func Load(path string) (*Catalog, error) {
	data := defaultCatalogYAML
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("catalog: read file: %w", err)
		}
	}
	return Parse(data)
}

// Parse builds an immutable Catalog from YAML bytes.
func Parse(data []byte) (*Catalog, error) {
	var spec catalogSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("catalog: parse yaml: %w", err)
	}
	return build(spec)
}

func build(spec catalogSpec) (*Catalog, error) {
	c := &Catalog{
		templates: make(map[string]*Template, len(spec.Templates)),
		modules:   make(map[string]*Module, len(spec.Modules)),
		support:   make(map[string]*SupportPackage, len(spec.Support)),
	}

	for _, m := range spec.Modules {
		if m.ID == "" || m.Name == "" {
			return nil, fmt.Errorf("catalog: module %q: id and name are required", m.ID)
		}
		if m.Price < 0 {
			return nil, fmt.Errorf("catalog: module %q: negative price", m.ID)
		}
		if _, dup := c.modules[m.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate module id %q", m.ID)
		}
		c.modules[m.ID] = &Module{ID: m.ID, Name: m.Name, Price: m.Price, Description: m.Description}
		c.moduleOrder = append(c.moduleOrder, m.ID)
	}

	for _, t := range spec.Templates {
		if t.ID == "" || t.Name == "" {
			return nil, fmt.Errorf("catalog: template %q: id and name are required", t.ID)
		}
		if t.BasePrice < 0 {
			return nil, fmt.Errorf("catalog: template %q: negative base price", t.ID)
		}
		if _, dup := c.templates[t.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate template id %q", t.ID)
		}
		included, err := c.moduleSet(t.ID, "included", t.Included)
		if err != nil {
			return nil, err
		}
		deny, err := c.moduleSet(t.ID, "deny_modules", t.DenyModules)
		if err != nil {
			return nil, err
		}
		var allow map[string]struct{}
		if len(t.OnlyModules) > 0 {
			allow, err = c.moduleSet(t.ID, "only_modules", t.OnlyModules)
			if err != nil {
				return nil, err
			}
		}
		if t.ModuleMarkup < 0 || (t.ModuleMarkup > 0 && t.ModuleMarkup < 1) {
			return nil, fmt.Errorf("catalog: template %q: module_markup must be >= 1", t.ID)
		}
		c.templates[t.ID] = &Template{
			ID:          t.ID,
			Name:        t.Name,
			BasePrice:   t.BasePrice,
			Description: t.Description,
			included:    included,
			allow:       allow,
			deny:        deny,
			adjust:      PriceAdjust{Markup: t.ModuleMarkup, RoundUpTo: t.MarkupRoundTo},
		}
		c.templateOrder = append(c.templateOrder, t.ID)
	}

	for _, s := range spec.Support {
		if s.ID == "" || s.Name == "" {
			return nil, fmt.Errorf("catalog: support package %q: id and name are required", s.ID)
		}
		if s.Flat != nil && s.Multiplier > 0 {
			return nil, fmt.Errorf("catalog: support package %q: flat and multiplier are mutually exclusive", s.ID)
		}
		if s.Flat == nil && s.Multiplier <= 0 {
			return nil, fmt.Errorf("catalog: support package %q: flat or multiplier is required", s.ID)
		}
		if _, dup := c.support[s.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate support package id %q", s.ID)
		}
		pkg := &SupportPackage{ID: s.ID, Name: s.Name, Multiplier: s.Multiplier}
		if s.Flat != nil {
			if *s.Flat < 0 {
				return nil, fmt.Errorf("catalog: support package %q: negative flat price", s.ID)
			}
			pkg.Flat = *s.Flat
		}
		c.support[s.ID] = pkg
		c.supportOrder = append(c.supportOrder, s.ID)
	}

	if len(spec.Categories) == 0 {
		return nil, fmt.Errorf("catalog: at least one category is required")
	}
	for _, cat := range spec.Categories {
		if cat.ID == "" || cat.Name == "" {
			return nil, fmt.Errorf("catalog: category %q: id and name are required", cat.ID)
		}
		if cat.Builder != "" {
			if len(cat.Templates) > 0 {
				return nil, fmt.Errorf("catalog: category %q: builder and templates are mutually exclusive", cat.ID)
			}
			if _, ok := c.templates[cat.Builder]; !ok {
				return nil, fmt.Errorf("catalog: category %q: unknown builder template %q", cat.ID, cat.Builder)
			}
		} else if len(cat.Templates) == 0 {
			return nil, fmt.Errorf("catalog: category %q: empty template list", cat.ID)
		}
		for _, id := range cat.Templates {
			if _, ok := c.templates[id]; !ok {
				return nil, fmt.Errorf("catalog: category %q: unknown template %q", cat.ID, id)
			}
		}
		c.categories = append(c.categories, Category{
			ID:        cat.ID,
			Name:      cat.Name,
			Templates: append([]string(nil), cat.Templates...),
			Builder:   cat.Builder,
		})
	}

	return c, nil
}

func (c *Catalog) moduleSet(templateID, field string, ids []string) (map[string]struct{}, error) {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := c.modules[id]; !ok {
			return nil, fmt.Errorf("catalog: template %q: %s references unknown module %q", templateID, field, id)
		}
		set[id] = struct{}{}
	}
	return set, nil
}
