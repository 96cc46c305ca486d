// Package catalog holds the metric category declaration: which metrics are
// tracked, which pillar they belong to, which are rate-like, and how integer
// cluster codes map to group names.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Pillar names accepted by Catalog.Pillar.
const (
	PillarTalent     = "talent"
	PillarInnovation = "innovation"
	PillarAdoption   = "adoption"
	PillarAll        = "all"
)

// FallbackCode is the group code assigned to metros with no cluster code.
const FallbackCode = 0

// NumGroups is the size of the fixed group code range 0..NumGroups-1.
const NumGroups = 7

var ErrInvalidDeclaration = errors.New("invalid metric declaration")

// Declaration is the on-disk (YAML) form of a catalog.
type Declaration struct {
	Talent     []string       `yaml:"talent"`
	Innovation []string       `yaml:"innovation"`
	Adoption   []string       `yaml:"adoption"`
	RateLike   []string       `yaml:"rate_like"`
	Groups     map[int]string `yaml:"groups,omitempty"`
}

// Catalog is the validated, read-only form of a Declaration.
type Catalog struct {
	pillars map[string][]string
	all     []string
	tracked map[string]bool
	rate    map[string]bool
	groups  [NumGroups]string
	byName  map[string]int
}

// DefaultGroups is the built-in code → group name scheme.
func DefaultGroups() map[int]string {
	return map[int]string{
		0: "Small metros",
		1: "AI Superstars",
		2: "Star Hubs",
		3: "Emerging Centers",
		4: "Focused Specialists",
		5: "Nascent Adopters",
		6: "Others",
	}
}

// DefaultDeclaration returns the built-in metric declaration.
func DefaultDeclaration() Declaration {
	return Declaration{
		Talent: []string{
			"AI Job Postings",
			"AI-Skilled Workers",
			"AI Degree Graduates",
			"AI Talent Share",
		},
		Innovation: []string{
			"AI Patents",
			"AI Publications",
			"AI VC Funding",
			"AI Startups",
			"AI Patents per 100k",
		},
		Adoption: []string{
			"Firm AI Use",
			"AI Adoption Rate",
			"AI Job Postings",
		},
		RateLike: []string{
			"AI Talent Share",
			"AI Patents per 100k",
			"Firm AI Use",
			"AI Adoption Rate",
		},
		Groups: DefaultGroups(),
	}
}

// Default returns the catalog built from DefaultDeclaration.
func Default() *Catalog {
	c, err := New(DefaultDeclaration())
	if err != nil {
		panic(fmt.Sprintf("default catalog: %v", err))
	}
	return c
}

// Load reads a YAML declaration from path. An empty path yields Default().
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var d Declaration
	if err := yaml.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return New(d)
}

// New validates d and builds a Catalog.
func New(d Declaration) (*Catalog, error) {
	c := &Catalog{
		pillars: map[string][]string{},
		tracked: map[string]bool{},
		rate:    map[string]bool{},
		byName:  map[string]int{},
	}
	for _, p := range []struct {
		name  string
		names []string
	}{
		{PillarTalent, d.Talent},
		{PillarInnovation, d.Innovation},
		{PillarAdoption, d.Adoption},
	} {
		seen := map[string]bool{}
		var list []string
		for _, m := range p.names {
			m = strings.TrimSpace(m)
			if m == "" || seen[m] {
				continue
			}
			seen[m] = true
			list = append(list, m)
			if !c.tracked[m] {
				c.tracked[m] = true
				c.all = append(c.all, m)
			}
		}
		c.pillars[p.name] = list
	}
	if len(c.all) == 0 {
		return nil, fmt.Errorf("%w: no metrics declared", ErrInvalidDeclaration)
	}
	for _, m := range d.RateLike {
		m = strings.TrimSpace(m)
		if !c.tracked[m] {
			return nil, fmt.Errorf("%w: rate-like metric %q is not in any pillar", ErrInvalidDeclaration, m)
		}
		c.rate[m] = true
	}

	groups := d.Groups
	if len(groups) == 0 {
		groups = DefaultGroups()
	}
	if len(groups) != NumGroups {
		return nil, fmt.Errorf("%w: expected %d groups, got %d", ErrInvalidDeclaration, NumGroups, len(groups))
	}
	for code := 0; code < NumGroups; code++ {
		name := strings.TrimSpace(groups[code])
		if name == "" {
			return nil, fmt.Errorf("%w: group code %d has no name", ErrInvalidDeclaration, code)
		}
		if prev, dup := c.byName[name]; dup {
			return nil, fmt.Errorf("%w: group name %q used by codes %d and %d", ErrInvalidDeclaration, name, prev, code)
		}
		c.groups[code] = name
		c.byName[name] = code
	}
	return c, nil
}

// All returns every tracked metric: talent, then innovation, then adoption,
// keeping the first occurrence of names listed in more than one pillar.
func (c *Catalog) All() []string {
	return append([]string(nil), c.all...)
}

func (c *Catalog) IsTracked(metric string) bool { return c.tracked[metric] }

// IsRate reports whether metric is rate-like (averaged, never summed).
func (c *Catalog) IsRate(metric string) bool { return c.rate[metric] }

// Pillar returns the metrics of one pillar, or All() for PillarAll.
func (c *Catalog) Pillar(name string) ([]string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == PillarAll {
		return c.All(), nil
	}
	list, ok := c.pillars[name]
	if !ok {
		return nil, fmt.Errorf("unknown pillar %q (use talent|innovation|adoption|all)", name)
	}
	return append([]string(nil), list...), nil
}

// Pillars lists the pillars that declare metric.
func (c *Catalog) Pillars(metric string) []string {
	var out []string
	for _, p := range []string{PillarTalent, PillarInnovation, PillarAdoption} {
		for _, m := range c.pillars[p] {
			if m == metric {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// RateLike returns the rate-like metrics in All() order.
func (c *Catalog) RateLike() []string {
	var out []string
	for _, m := range c.all {
		if c.rate[m] {
			out = append(out, m)
		}
	}
	return out
}

// GroupName maps a cluster code to its group name.
func (c *Catalog) GroupName(code int) (string, bool) {
	if code < 0 || code >= NumGroups {
		return "", false
	}
	return c.groups[code], true
}

// GroupCode is the inverse of GroupName.
func (c *Catalog) GroupCode(name string) (int, bool) {
	code, ok := c.byName[name]
	return code, ok
}

// Groups returns all group names in code order.
func (c *Catalog) Groups() []string {
	return append([]string(nil), c.groups[:]...)
}

// Declaration returns a copy of the catalog in its YAML form.
func (c *Catalog) Declaration() Declaration {
	d := Declaration{
		Talent:     append([]string(nil), c.pillars[PillarTalent]...),
		Innovation: append([]string(nil), c.pillars[PillarInnovation]...),
		Adoption:   append([]string(nil), c.pillars[PillarAdoption]...),
		RateLike:   c.RateLike(),
		Groups:     map[int]string{},
	}
	for code, name := range c.groups {
		d.Groups[code] = name
	}
	return d
}
