package gallery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gallery/internal/scene"
)

func TestBuildCreatesScene(t *testing.T) {
	g := scene.NewGraph()
	layout, err := Build(g, DefaultOptions())
	require.NoError(t, err)

	// 4 preloaded clips, anchor, 9 cells, button, label.
	assert.Equal(t, 16, g.Len())
	require.Len(t, layout.Cells, NumImages)

	meshes, materials, textures := g.AssetCounts()
	assert.Equal(t, 2, meshes)
	assert.Equal(t, 2, materials)
	assert.Equal(t, 0, textures)

	blank, ok := g.Material(blankMaterialName)
	require.True(t, ok)
	first, _ := g.Actor(layout.Cells[0])
	for _, id := range layout.Cells {
		cell, ok := g.Actor(id)
		require.True(t, ok)
		assert.Equal(t, layout.AnchorID, cell.ParentID)
		assert.Equal(t, blank.ID, cell.Appearance.MaterialID)
		assert.Equal(t, first.Appearance.MeshID, cell.Appearance.MeshID)
		require.NotNil(t, cell.Collider)
		assert.Equal(t, scene.LayerHologram, cell.Collider.Layer)
	}
	assert.InDelta(t, -0.41, first.Transform.Position.X, 1e-9)
	assert.InDelta(t, 0.41, first.Transform.Position.Y, 1e-9)

	anchor, _ := g.Actor(layout.AnchorID)
	assert.InDelta(t, 1.16, anchor.Transform.Position.Y, 1e-9)

	button, _ := g.Actor(layout.ButtonID)
	assert.Equal(t, scene.BehaviorButton, button.Behavior)
	require.NotNil(t, button.Collider)

	text, _ := g.Actor(layout.TextID)
	assert.Equal(t, layout.ButtonID, text.ParentID)
	assert.InDelta(t, 0.5, text.Transform.Position.Y, 1e-9)
	require.NotNil(t, text.Text)
	assert.Equal(t, "", text.Text.Contents)
}

func TestBuildPreloadsClipsHidden(t *testing.T) {
	g := scene.NewGraph()
	_, err := Build(g, DefaultOptions())
	require.NoError(t, err)

	hidden := 0
	for _, a := range g.Snapshot().Actors {
		if a.ResourceID == "" {
			continue
		}
		hidden++
		require.NotNil(t, a.Appearance)
		assert.False(t, a.Appearance.Enabled)
		assert.InDelta(t, preloadScale, a.Transform.Scale.X, 1e-12)
	}
	assert.Equal(t, 4, hidden)
}

func TestBuildCapsCellsAtNine(t *testing.T) {
	opts := DefaultOptions()
	opts.Size = GridSize{Row: 2, Col: 5}
	g := scene.NewGraph()
	layout, err := Build(g, opts)
	require.NoError(t, err)
	assert.Len(t, layout.Cells, NumImages)
}
