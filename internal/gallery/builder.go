package gallery

import (
	"fmt"

	"gallery/internal/domain"
	"gallery/internal/scene"
)

// Asset names shared across the builder and renderer.
const (
	blankMaterialName     = "white"
	debugMaterialName     = "debug"
	cellMeshName          = "cell_plane"
	buttonColliderName    = "debug_collider"
	buttonActorName       = "debug"
	preloadScale          = 0.000001
	textHeight            = 0.1
	textOffsetAboveButton = 0.15
)

// Layout holds the actor ids created by Build.
type Layout struct {
	AnchorID string
	ButtonID string
	TextID   string
	Cells    []string
	Grid     *scene.PlanarGrid
}

func blankMaterialSpec() scene.MaterialSpec {
	return scene.MaterialSpec{Color: scene.Red.WithAlpha(0), AlphaMode: scene.AlphaBlend}
}

// Build constructs the static scene: preloaded clips, anchor, cell grid,
// button and status label. It must run once before any job is submitted.
func Build(g *scene.Graph, opts Options) (*Layout, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	g.FindOrCreateMaterial(debugMaterialName, blankMaterialSpec())

	if err := preload(g, opts); err != nil {
		return nil, err
	}
	layout := &Layout{}
	if err := createAnchor(g, opts, layout); err != nil {
		return nil, err
	}
	if err := createGallery(g, opts, layout); err != nil {
		return nil, err
	}
	if err := createButton(g, opts, layout); err != nil {
		return nil, err
	}
	if err := createText(g, opts, layout); err != nil {
		return nil, err
	}
	return layout, nil
}

// preload instantiates every clip once, hidden and shrunk, so clients fetch
// the resources before the first state change.
func preload(g *scene.Graph, opts Options) error {
	for _, c := range domain.Clips {
		t := scene.DefaultTransform()
		t.Scale = scene.Vector3{X: preloadScale, Y: preloadScale, Z: preloadScale}
		_, err := g.CreateFromLibrary(opts.Button.Clips[string(c)], scene.ActorSpec{
			Name:       "preload_" + string(c),
			Transform:  &t,
			Appearance: &scene.Appearance{Enabled: false},
		})
		if err != nil {
			return fmt.Errorf("gallery: preload %s: %w", c, err)
		}
	}
	return nil
}

func createAnchor(g *scene.Graph, opts Options, layout *Layout) error {
	t := scene.DefaultTransform()
	t.Position = scene.Vector3{Y: opts.AnchorHeight()}
	anchor, err := g.CreateActor(scene.ActorSpec{Name: "anchor", Transform: &t})
	if err != nil {
		return fmt.Errorf("gallery: anchor: %w", err)
	}
	layout.AnchorID = anchor.ID
	layout.Grid = scene.NewPlanarGrid(anchor.ID)
	return nil
}

func createGallery(g *scene.Graph, opts Options, layout *Layout) error {
	dim := opts.Dimensions
	mesh := g.FindOrCreatePlaneMesh(cellMeshName, dim.Width, dim.Height)
	material := g.FindOrCreateMaterial(blankMaterialName, blankMaterialSpec())

	for r := 0; r < opts.Size.Row; r++ {
		for c := 0; c < opts.Size.Col; c++ {
			if r*opts.Size.Col+c >= NumImages {
				continue
			}
			t := scene.DefaultTransform()
			t.Rotation = scene.QuaternionFromEuler(-90*scene.DegreesToRadians, 0, 0)
			cell, err := g.CreateActor(scene.ActorSpec{
				Name:       fmt.Sprintf("cell_%d", len(layout.Cells)+1),
				ParentID:   layout.AnchorID,
				Transform:  &t,
				Appearance: &scene.Appearance{MeshID: mesh.ID, MaterialID: material.ID, Enabled: true},
				Collider:   &scene.Collider{Shape: scene.ColliderBox, Layer: scene.LayerHologram},
			})
			if err != nil {
				return fmt.Errorf("gallery: cell %d,%d: %w", r, c, err)
			}
			layout.Grid.AddCell(scene.GridCell{
				Row:     r,
				Column:  c,
				Width:   dim.Width + opts.Margin,
				Height:  dim.Height + opts.Margin,
				ActorID: cell.ID,
			})
			layout.Cells = append(layout.Cells, cell.ID)
		}
	}
	return layout.Grid.Apply(g)
}

func createButton(g *scene.Graph, opts Options, layout *Layout) error {
	dim := opts.Button.Dimensions
	mesh := g.FindOrCreateBoxMesh(buttonColliderName, dim.Width, dim.Height, dim.Depth)
	material := g.FindOrCreateMaterial(debugMaterialName, blankMaterialSpec())
	t := scene.Translate(scene.TransformSpec{})
	button, err := g.CreateActor(scene.ActorSpec{
		Name:       buttonActorName,
		Transform:  &t,
		Appearance: &scene.Appearance{MeshID: mesh.ID, MaterialID: material.ID, Enabled: true},
		Collider:   &scene.Collider{Shape: scene.ColliderBox, Layer: scene.LayerHologram},
	})
	if err != nil {
		return fmt.Errorf("gallery: button: %w", err)
	}
	if err := g.SetBehavior(button.ID, scene.BehaviorButton); err != nil {
		return fmt.Errorf("gallery: button behavior: %w", err)
	}
	layout.ButtonID = button.ID
	return nil
}

func createText(g *scene.Graph, opts Options, layout *Layout) error {
	t := scene.DefaultTransform()
	t.Position = scene.Vector3{Y: opts.Button.Dimensions.Height/2 + textOffsetAboveButton}
	text, err := g.CreateActor(scene.ActorSpec{
		Name:      "status",
		ParentID:  layout.ButtonID,
		Transform: &t,
		Text: &scene.Text{
			Height: textHeight,
			Color:  scene.White,
			Anchor: scene.AnchorMiddleCenter,
		},
	})
	if err != nil {
		return fmt.Errorf("gallery: text: %w", err)
	}
	layout.TextID = text.ID
	return nil
}
