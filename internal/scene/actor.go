package scene

// ColliderShape is the geometry of a collider.
type ColliderShape string

const ColliderBox ColliderShape = "box"

// CollisionLayer groups colliders for physics and input.
type CollisionLayer string

const LayerHologram CollisionLayer = "hologram"

// TextAnchor positions text relative to its actor.
type TextAnchor string

const AnchorMiddleCenter TextAnchor = "middle-center"

// Collider makes an actor clickable.
type Collider struct {
	Shape ColliderShape  `json:"shape"`
	Layer CollisionLayer `json:"layer"`
}

// Appearance binds a mesh and a material.
type Appearance struct {
	MeshID     string `json:"meshId,omitempty"`
	MaterialID string `json:"materialId,omitempty"`
	Enabled    bool   `json:"enabled"`
}

// Text is a floating label.
type Text struct {
	Contents string     `json:"contents"`
	Height   float64    `json:"height"`
	Color    Color3     `json:"color"`
	Anchor   TextAnchor `json:"anchor"`
}

// Behavior marks actors that react to user input.
type Behavior string

const BehaviorButton Behavior = "button"

// Actor is a node of the scene graph. Values returned by Graph are copies.
type Actor struct {
	ID         string      `json:"id"`
	Name       string      `json:"name,omitempty"`
	ParentID   string      `json:"parentId,omitempty"`
	ResourceID string      `json:"resourceId,omitempty"`
	Transform  Transform   `json:"transform"`
	Appearance *Appearance `json:"appearance,omitempty"`
	Collider   *Collider   `json:"collider,omitempty"`
	Text       *Text       `json:"text,omitempty"`
	Behavior   Behavior    `json:"behavior,omitempty"`
}

// ActorSpec describes an actor to create.
type ActorSpec struct {
	Name       string
	ParentID   string
	Transform  *Transform
	Appearance *Appearance
	Collider   *Collider
	Text       *Text
}

func (a Actor) clone() Actor {
	out := a
	if a.Appearance != nil {
		app := *a.Appearance
		out.Appearance = &app
	}
	if a.Collider != nil {
		col := *a.Collider
		out.Collider = &col
	}
	if a.Text != nil {
		txt := *a.Text
		out.Text = &txt
	}
	return out
}
