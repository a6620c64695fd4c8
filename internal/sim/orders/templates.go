package orders

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/ecs"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/sim/components"
)

// Template is an order skeleton: a kind and the kinds of its actions, all
// aimed at one target given when the order is built.
type Template struct {
	Name    string                  `yaml:"name"`
	Kind    components.OrderKind    `yaml:"kind"`
	Actions []components.ActionKind `yaml:"actions"`
}

// Build instantiates the template against target.
func (t Template) Build(target ecs.EntityID) *components.Order {
	o := &components.Order{Kind: t.Kind, Target: target}
	for _, kind := range t.Actions {
		o.Actions = append(o.Actions, action(kind, target))
	}
	return o
}

type templateFile struct {
	Templates []Template `yaml:"templates"`
}

// LoadTemplates decodes order templates from YAML:
//
//	templates:
//	  - name: resupply
//	    kind: dock
//	    actions: [move, dock]
func LoadTemplates(r io.Reader) (map[string]Template, error) {
	var f templateFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode order templates: %w", err)
	}
	out := make(map[string]Template, len(f.Templates))
	for i, t := range f.Templates {
		if t.Name == "" || t.Kind == "" {
			return nil, fmt.Errorf("order template #%d: name and kind are required", i)
		}
		if _, dup := out[t.Name]; dup {
			return nil, fmt.Errorf("order template %q declared twice", t.Name)
		}
		out[t.Name] = t
	}
	return out, nil
}
