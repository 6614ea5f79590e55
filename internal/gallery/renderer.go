package gallery

import (
	"strings"
	"sync"

	"gallery/internal/scene"
	"gallery/internal/storage"
)

// Slot is the material currently bound to one display position.
type Slot struct {
	Index        int    `json:"index"`
	ActorID      string `json:"actor_id"`
	MaterialID   string `json:"material_id"`
	MaterialName string `json:"material_name"`
	TextureURI   string `json:"texture_uri,omitempty"`
}

// Renderer binds generated images to the cell actors.
type Renderer struct {
	graph       *scene.Graph
	textureBase string

	mu    sync.Mutex
	slots []Slot
}

// NewRenderer manages the given cell actors, in slot order.
func NewRenderer(g *scene.Graph, cells []string, textureBase string) *Renderer {
	slots := make([]Slot, len(cells))
	for i, id := range cells {
		slots[i] = Slot{Index: i + 1, ActorID: id}
	}
	return &Renderer{graph: g, textureBase: strings.TrimRight(textureBase, "/"), slots: slots}
}

// TextureURI is where clients load image i (1-based) of a request hash.
func (r *Renderer) TextureURI(hash string, i int) string {
	key := storage.ImageKey(hash, i)
	if r.textureBase == "" {
		return key
	}
	return r.textureBase + "/" + key
}

// Bind assigns <hash>/image-<n>.png to slot n. Textures and materials are
// looked up by name first so repeated hashes reuse the same resources.
func (r *Renderer) Bind(hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.slots {
		uri := r.TextureURI(hash, i+1)
		emissive := scene.White
		texture := r.graph.FindOrCreateTexture("texture_"+uri, uri)
		material := r.graph.FindOrCreateMaterial("material_"+uri, scene.MaterialSpec{
			Color:             scene.White.WithAlpha(1),
			EmissiveColor:     &emissive,
			MainTextureID:     texture.ID,
			EmissiveTextureID: texture.ID,
			AlphaMode:         scene.AlphaMask,
			AlphaCutoff:       0,
		})
		if err := r.assign(i, material, uri); err != nil {
			return err
		}
	}
	return nil
}

// Clear assigns the shared blank material to every slot.
func (r *Renderer) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	blank := r.graph.FindOrCreateMaterial(blankMaterialName, blankMaterialSpec())
	for i := range r.slots {
		if err := r.assign(i, blank, ""); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) assign(i int, m *scene.Material, uri string) error {
	if err := r.graph.SetMaterial(r.slots[i].ActorID, m.ID); err != nil {
		return err
	}
	r.slots[i].MaterialID = m.ID
	r.slots[i].MaterialName = m.Name
	r.slots[i].TextureURI = uri
	return nil
}

// Slots returns a copy of the current bindings.
func (r *Renderer) Slots() []Slot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Slot(nil), r.slots...)
}
