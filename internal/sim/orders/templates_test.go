package orders

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sectoralphagame/sector-alpha-sub002/internal/sim/components"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTemplates(t *testing.T) {
	src := `
templates:
  - name: resupply
    kind: dock
    actions: [move, dock]
  - name: blink
    kind: teleport
    actions: [teleport]
`
	tpls, err := LoadTemplates(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, tpls, 2)

	o := tpls["resupply"].Build(12)
	assert.Equal(t, components.OrderDock, o.Kind)
	assert.Equal(t, []components.Action{
		{Kind: components.ActionMove, Target: 12},
		{Kind: components.ActionDock, Target: 12},
	}, o.Actions)
	assert.True(t, o.References(12))
}

func TestLoadTemplatesRejectsInvalid(t *testing.T) {
	_, err := LoadTemplates(strings.NewReader("templates:\n  - kind: dock\n"))
	assert.Error(t, err)

	_, err = LoadTemplates(strings.NewReader("templates:\n  - {name: a, kind: dock}\n  - {name: a, kind: move}\n"))
	assert.Error(t, err)

	tpls, err := LoadTemplates(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, tpls)
}

func TestShippedTemplates(t *testing.T) {
	f, err := os.Open(filepath.Join("..", "..", "..", "configs", "templates.yaml"))
	require.NoError(t, err)
	defer f.Close()

	templates, err := LoadTemplates(f)
	require.NoError(t, err)
	assert.Equal(t, components.OrderDock, templates["resupply"].Kind)
	assert.Equal(t, []components.ActionKind{components.ActionMine}, templates["harvest"].Actions)
}
