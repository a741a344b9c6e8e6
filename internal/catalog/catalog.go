// Package catalog holds the static requirement checklists per destination.
// A Catalog is immutable after construction and safe for concurrent use.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"

	"visa-checker-backend/internal/models"
)

//go:embed data/requirements.yaml
var defaultData []byte

// Entry is one (country, visaType) checklist.
type Entry struct {
	Country      string                   `yaml:"country"`
	CountryName  string                   `yaml:"countryName"`
	VisaCategory string                   `yaml:"visaCategory"`
	VisaType     string                   `yaml:"visaType"`
	Label        string                   `yaml:"label"`
	Requirements []models.RequirementRule `yaml:"requirements"`
}

type document struct {
	Destinations []Entry `yaml:"destinations"`
}

type key struct {
	country  string
	visaType string
}

type Catalog struct {
	entries map[key]Entry
	order   []key
}

// New validates entries and builds a Catalog. Rule IDs must be unique and
// non-empty within an entry; accepted formats are lower-cased and deduplicated.
func New(entries []Entry) (*Catalog, error) {
	c := &Catalog{entries: make(map[key]Entry, len(entries))}

	for i, e := range entries {
		k := newKey(e.Country, e.VisaType)
		if k.country == "" || k.visaType == "" {
			return nil, fmt.Errorf("entry %d: country and visaType are required", i)
		}
		if _, dup := c.entries[k]; dup {
			return nil, fmt.Errorf("entry %d: duplicate destination %s/%s", i, e.Country, e.VisaType)
		}

		rules := make([]models.RequirementRule, 0, len(e.Requirements))
		ids := make(map[string]struct{}, len(e.Requirements))
		for _, r := range e.Requirements {
			if strings.TrimSpace(r.ID) == "" {
				return nil, fmt.Errorf("%s/%s: requirement with empty id", e.Country, e.VisaType)
			}
			if _, dup := ids[r.ID]; dup {
				return nil, fmt.Errorf("%s/%s: duplicate requirement id %q", e.Country, e.VisaType, r.ID)
			}
			ids[r.ID] = struct{}{}
			r.AcceptedFormats = normalizeFormats(r.AcceptedFormats)
			rules = append(rules, r)
		}
		e.Requirements = rules

		c.entries[k] = e
		c.order = append(c.order, k)
	}

	return c, nil
}

// Load parses a YAML catalog document.
func Load(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return New(doc.Destinations)
}

func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Load(data)
}

// LoadDefault returns the catalog compiled into the binary.
func LoadDefault() (*Catalog, error) {
	return Load(defaultData)
}

// Lookup returns a copy of the checklist for the pair, or an empty slice when
// the pair is unknown.
func (c *Catalog) Lookup(country, visaType string) []models.RequirementRule {
	e, ok := c.entries[newKey(country, visaType)]
	if !ok {
		return []models.RequirementRule{}
	}

	out := make([]models.RequirementRule, len(e.Requirements))
	for i, r := range e.Requirements {
		r.AcceptedFormats = append([]string(nil), r.AcceptedFormats...)
		out[i] = r
	}
	return out
}

// Has reports whether the pair has a checklist.
func (c *Catalog) Has(country, visaType string) bool {
	_, ok := c.entries[newKey(country, visaType)]
	return ok
}

// Destinations lists entries in catalog order.
func (c *Catalog) Destinations() []models.Destination {
	out := make([]models.Destination, 0, len(c.order))
	for _, k := range c.order {
		e := c.entries[k]
		out = append(out, models.Destination{
			Country:      e.Country,
			CountryName:  e.CountryName,
			VisaCategory: e.VisaCategory,
			VisaType:     e.VisaType,
			Label:        e.Label,
			Requirements: len(e.Requirements),
		})
	}
	return out
}

func (c *Catalog) Len() int {
	return len(c.order)
}

// Casers are stateful, so a fresh one is used per call.
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

func newKey(country, visaType string) key {
	return key{country: fold(country), visaType: fold(visaType)}
}

func normalizeFormats(formats []string) []string {
	out := make([]string, 0, len(formats))
	seen := make(map[string]struct{}, len(formats))
	for _, f := range formats {
		f = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(f), "."))
		if f == "" {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
