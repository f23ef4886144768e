// Package guides serves the static phoneme pronunciation guides.
package guides

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed guides.yaml
var guidesYAML []byte

type Guide struct {
	ID            string   `yaml:"id" json:"id"`
	Phoneme       string   `yaml:"phoneme" json:"phoneme"`
	Name          string   `yaml:"name" json:"name"`
	Category      string   `yaml:"category" json:"category"`
	Difficulty    string   `yaml:"difficulty" json:"difficulty"`
	Description   string   `yaml:"description" json:"description"`
	MouthPosition string   `yaml:"mouthPosition" json:"mouthPosition"`
	Examples      []string `yaml:"examples" json:"examples"`
	Tips          []string `yaml:"tips" json:"tips"`
}

type Catalog struct {
	guides []Guide
	byID   map[string]Guide
}

func Parse(data []byte) (*Catalog, error) {
	var list []Guide
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("guides: parse: %w", err)
	}
	c := &Catalog{guides: list, byID: make(map[string]Guide, len(list))}
	for _, g := range list {
		if g.ID == "" {
			return nil, fmt.Errorf("guides: entry %q has no id", g.Name)
		}
		if _, dup := c.byID[g.ID]; dup {
			return nil, fmt.Errorf("guides: duplicate id %q", g.ID)
		}
		c.byID[g.ID] = g
	}
	return c, nil
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(guidesYAML)
}

// Filter returns guides matching category and difficulty, case-insensitively.
// An empty filter matches everything.
func (c *Catalog) Filter(category, difficulty string) []Guide {
	out := make([]Guide, 0, len(c.guides))
	for _, g := range c.guides {
		if category != "" && !strings.EqualFold(g.Category, category) {
			continue
		}
		if difficulty != "" && !strings.EqualFold(g.Difficulty, difficulty) {
			continue
		}
		out = append(out, g)
	}
	return out
}

func (c *Catalog) Get(id string) (Guide, bool) {
	g, ok := c.byID[id]
	return g, ok
}
