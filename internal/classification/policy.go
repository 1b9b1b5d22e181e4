package classification

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"schemabrowser/internal/models"
)

// Policy maps table names to presentation categories. A table named in no
// list is general unless InferUnlisted is set, in which case its category
// is derived from the shape of its foreign keys.
type Policy struct {
	Reference     []string `yaml:"reference"`
	Parent        []string `yaml:"parent"`
	Child         []string `yaml:"child"`
	InferUnlisted bool     `yaml:"infer_unlisted"`

	index map[string]models.Category
}

// New builds a policy from explicit name lists.
func New(reference, parent, child []string) *Policy {
	p := &Policy{Reference: reference, Parent: parent, Child: child}
	p.build()
	return p
}

// Empty classifies every table as general.
func Empty() *Policy {
	return New(nil, nil, nil)
}

// LoadFile reads a YAML policy. A table listed under two categories is
// rejected.
func LoadFile(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read classification file: %w", err)
	}

	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse classification YAML: %w", err)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	p.build()
	return &p, nil
}

func (p *Policy) validate() error {
	seen := make(map[string]models.Category)
	for cat, names := range p.lists() {
		for _, name := range names {
			if prev, ok := seen[name]; ok && prev != cat {
				return fmt.Errorf("table %q listed as both %s and %s", name, prev, cat)
			}
			seen[name] = cat
		}
	}
	return nil
}

func (p *Policy) lists() map[models.Category][]string {
	return map[models.Category][]string{
		models.CategoryReference: p.Reference,
		models.CategoryParent:    p.Parent,
		models.CategoryChild:     p.Child,
	}
}

func (p *Policy) build() {
	p.index = make(map[string]models.Category)
	for cat, names := range p.lists() {
		for _, name := range names {
			p.index[name] = cat
		}
	}
}

// Category returns the listed category of table, or general.
func (p *Policy) Category(table string) models.Category {
	if p == nil {
		return models.CategoryGeneral
	}
	if p.index == nil {
		for cat, names := range p.lists() {
			for _, name := range names {
				if name == table {
					return cat
				}
			}
		}
		return models.CategoryGeneral
	}
	if cat, ok := p.index[table]; ok {
		return cat
	}
	return models.CategoryGeneral
}

// CategoryFor classifies table using its outward foreign keys and the
// number of other tables referencing it when the table is unlisted and
// inference is enabled. Self references are ignored.
func (p *Policy) CategoryFor(table string, fks []models.ForeignKeyDescriptor, referencedBy int) models.Category {
	cat := p.Category(table)
	if cat != models.CategoryGeneral || p == nil || !p.InferUnlisted {
		return cat
	}

	outward := 0
	for _, fk := range fks {
		if fk.ReferencedTable != table {
			outward++
		}
	}

	switch {
	case outward == 0 && referencedBy > 0:
		return models.CategoryReference
	case outward > 0 && referencedBy > 0:
		return models.CategoryParent
	case outward > 0:
		return models.CategoryChild
	default:
		return models.CategoryGeneral
	}
}
