package scene

import "github.com/google/uuid"

// MeshKind is the primitive a mesh was generated from.
type MeshKind string

const (
	MeshBox   MeshKind = "box"
	MeshPlane MeshKind = "plane"
)

// AlphaMode controls how a material's alpha channel is rendered.
type AlphaMode string

const (
	AlphaOpaque AlphaMode = "opaque"
	AlphaBlend  AlphaMode = "blend"
	AlphaMask   AlphaMode = "mask"
)

// Mesh is a primitive mesh asset.
type Mesh struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Kind   MeshKind `json:"kind"`
	Width  float64  `json:"width"`
	Height float64  `json:"height"`
	Depth  float64  `json:"depth,omitempty"`
}

// Texture is an image loaded from a URI relative to the app's base URL.
type Texture struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// MaterialSpec describes a material to create.
type MaterialSpec struct {
	Color             Color4    `json:"color"`
	EmissiveColor     *Color3   `json:"emissiveColor,omitempty"`
	MainTextureID     string    `json:"mainTextureId,omitempty"`
	EmissiveTextureID string    `json:"emissiveTextureId,omitempty"`
	AlphaMode         AlphaMode `json:"alphaMode"`
	AlphaCutoff       float64   `json:"alphaCutoff"`
}

// Material is a named material asset.
type Material struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	MaterialSpec
}

// Asset is the union published in asset patches.
type Asset struct {
	Mesh     *Mesh     `json:"mesh,omitempty"`
	Material *Material `json:"material,omitempty"`
	Texture  *Texture  `json:"texture,omitempty"`
}

// AssetContainer owns the meshes, materials and textures of one graph.
// It is not safe for concurrent use on its own; Graph serialises access.
type AssetContainer struct {
	meshes    []*Mesh
	materials []*Material
	textures  []*Texture
	onCreate  func(Asset)
}

func newAssetContainer(onCreate func(Asset)) *AssetContainer {
	return &AssetContainer{onCreate: onCreate}
}

func (c *AssetContainer) findMesh(name string) *Mesh {
	for _, m := range c.meshes {
		if m.Name == name {
			return m
		}
	}
	return nil
}

func (c *AssetContainer) findMaterial(name string) *Material {
	for _, m := range c.materials {
		if m.Name == name {
			return m
		}
	}
	return nil
}

func (c *AssetContainer) findTexture(name string) *Texture {
	for _, t := range c.textures {
		if t.Name == name {
			return t
		}
	}
	return nil
}

func (c *AssetContainer) addMesh(m *Mesh) *Mesh {
	m.ID = uuid.NewString()
	c.meshes = append(c.meshes, m)
	c.onCreate(Asset{Mesh: m})
	return m
}

func (c *AssetContainer) addMaterial(name string, spec MaterialSpec) *Material {
	m := &Material{ID: uuid.NewString(), Name: name, MaterialSpec: spec}
	c.materials = append(c.materials, m)
	c.onCreate(Asset{Material: m})
	return m
}

func (c *AssetContainer) addTexture(name, uri string) *Texture {
	t := &Texture{ID: uuid.NewString(), Name: name, URI: uri}
	c.textures = append(c.textures, t)
	c.onCreate(Asset{Texture: t})
	return t
}

func (c *AssetContainer) all() []Asset {
	out := make([]Asset, 0, len(c.meshes)+len(c.materials)+len(c.textures))
	for _, m := range c.meshes {
		out = append(out, Asset{Mesh: m})
	}
	for _, t := range c.textures {
		out = append(out, Asset{Texture: t})
	}
	for _, m := range c.materials {
		out = append(out, Asset{Material: m})
	}
	return out
}
