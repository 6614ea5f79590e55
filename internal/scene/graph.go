package scene

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"gallery/internal/domain"
)

// PatchKind enumerates scene mutations.
type PatchKind string

const (
	PatchActor   PatchKind = "actor"
	PatchDestroy PatchKind = "destroy"
	PatchAsset   PatchKind = "asset"
)

// Patch is one published mutation.
type Patch struct {
	Kind    PatchKind `json:"kind"`
	Actor   *Actor    `json:"actor,omitempty"`
	ActorID string    `json:"actorId,omitempty"`
	Asset   *Asset    `json:"asset,omitempty"`
}

// Snapshot is the full state sent to a client when it joins.
type Snapshot struct {
	Actors []Actor `json:"actors"`
	Assets []Asset `json:"assets"`
}

// Graph is the scene runtime. All methods are safe for concurrent use and
// mutations are applied one at a time. Subscribers are invoked while the
// graph lock is held and must not call back into the graph.
type Graph struct {
	mu          sync.Mutex
	actors      map[string]*Actor
	order       []string
	assets      *AssetContainer
	subscribers map[int]func(Patch)
	nextSub     int
}

// NewGraph returns an empty scene.
func NewGraph() *Graph {
	g := &Graph{
		actors:      make(map[string]*Actor),
		subscribers: make(map[int]func(Patch)),
	}
	g.assets = newAssetContainer(func(a Asset) {
		asset := a
		g.publish(Patch{Kind: PatchAsset, Asset: &asset})
	})
	return g
}

// Watch hands the current state to onSnapshot and registers fn, both under the
// graph lock, so onSnapshot always runs before the first patch reaches fn.
func (g *Graph) Watch(onSnapshot func(Snapshot), fn func(Patch)) func() {
	g.mu.Lock()
	onSnapshot(g.snapshotLocked())
	id := g.nextSub
	g.nextSub++
	g.subscribers[id] = fn
	g.mu.Unlock()
	return func() {
		g.mu.Lock()
		delete(g.subscribers, id)
		g.mu.Unlock()
	}
}

func (g *Graph) publish(p Patch) {
	for _, fn := range g.subscribers {
		fn(p)
	}
}

func (g *Graph) publishActorLocked(a *Actor) {
	copied := a.clone()
	g.publish(Patch{Kind: PatchActor, Actor: &copied})
}

// CreateActor adds an actor built from spec.
func (g *Graph) CreateActor(spec ActorSpec) (Actor, error) {
	return g.create(spec, "")
}

// CreateFromLibrary adds an actor that renders a prebuilt library resource.
func (g *Graph) CreateFromLibrary(resourceID string, spec ActorSpec) (Actor, error) {
	if resourceID == "" {
		return Actor{}, fmt.Errorf("scene: resource id is required")
	}
	return g.create(spec, resourceID)
}

func (g *Graph) create(spec ActorSpec, resourceID string) (Actor, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if spec.ParentID != "" {
		if _, ok := g.actors[spec.ParentID]; !ok {
			return Actor{}, fmt.Errorf("scene: parent %s: %w", spec.ParentID, domain.ErrNotFound)
		}
	}
	a := &Actor{
		ID:         uuid.NewString(),
		Name:       spec.Name,
		ParentID:   spec.ParentID,
		ResourceID: resourceID,
		Transform:  DefaultTransform(),
		Appearance: spec.Appearance,
		Collider:   spec.Collider,
		Text:       spec.Text,
	}
	if spec.Transform != nil {
		a.Transform = *spec.Transform
	}
	stored := a.clone()
	g.actors[a.ID] = &stored
	g.order = append(g.order, a.ID)
	g.publishActorLocked(&stored)
	return stored.clone(), nil
}

// Actor returns a copy of the actor with the given id.
func (g *Graph) Actor(id string) (Actor, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	a, ok := g.actors[id]
	if !ok {
		return Actor{}, false
	}
	return a.clone(), true
}

// Len returns the number of live actors.
func (g *Graph) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.actors)
}

func (g *Graph) mutate(id string, fn func(a *Actor)) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	a, ok := g.actors[id]
	if !ok {
		return fmt.Errorf("scene: actor %s: %w", id, domain.ErrNotFound)
	}
	fn(a)
	g.publishActorLocked(a)
	return nil
}

// SetMaterial rebinds the material of an actor's appearance.
func (g *Graph) SetMaterial(id, materialID string) error {
	return g.mutate(id, func(a *Actor) {
		if a.Appearance == nil {
			a.Appearance = &Appearance{Enabled: true}
		}
		a.Appearance.MaterialID = materialID
	})
}

// SetText replaces the contents of an actor's text.
func (g *Graph) SetText(id, contents string) error {
	return g.mutate(id, func(a *Actor) {
		if a.Text == nil {
			a.Text = &Text{Height: 0.1, Color: White, Anchor: AnchorMiddleCenter}
		}
		a.Text.Contents = contents
	})
}

// SetPosition moves an actor within its parent.
func (g *Graph) SetPosition(id string, p Vector3) error {
	return g.mutate(id, func(a *Actor) {
		a.Transform.Position = p
	})
}

// SetBehavior attaches an input behaviour to an actor.
func (g *Graph) SetBehavior(id string, b Behavior) error {
	return g.mutate(id, func(a *Actor) {
		a.Behavior = b
	})
}

// Destroy removes an actor and all of its descendants.
func (g *Graph) Destroy(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.actors[id]; !ok {
		return fmt.Errorf("scene: actor %s: %w", id, domain.ErrNotFound)
	}
	doomed := map[string]bool{id: true}
	for changed := true; changed; {
		changed = false
		for aid, a := range g.actors {
			if !doomed[aid] && doomed[a.ParentID] {
				doomed[aid] = true
				changed = true
			}
		}
	}
	kept := g.order[:0]
	for _, aid := range g.order {
		if doomed[aid] {
			delete(g.actors, aid)
			g.publish(Patch{Kind: PatchDestroy, ActorID: aid})
			continue
		}
		kept = append(kept, aid)
	}
	g.order = kept
	return nil
}

// FindOrCreateBoxMesh returns the mesh called name, creating a box mesh when absent.
func (g *Graph) FindOrCreateBoxMesh(name string, width, height, depth float64) *Mesh {
	g.mu.Lock()
	defer g.mu.Unlock()
	if m := g.assets.findMesh(name); m != nil {
		return m
	}
	return g.assets.addMesh(&Mesh{Name: name, Kind: MeshBox, Width: width, Height: height, Depth: depth})
}

// FindOrCreatePlaneMesh returns the mesh called name, creating a plane mesh when absent.
func (g *Graph) FindOrCreatePlaneMesh(name string, width, height float64) *Mesh {
	g.mu.Lock()
	defer g.mu.Unlock()
	if m := g.assets.findMesh(name); m != nil {
		return m
	}
	return g.assets.addMesh(&Mesh{Name: name, Kind: MeshPlane, Width: width, Height: height})
}

// FindOrCreateMaterial returns the material called name, creating it from spec when absent.
func (g *Graph) FindOrCreateMaterial(name string, spec MaterialSpec) *Material {
	g.mu.Lock()
	defer g.mu.Unlock()
	if m := g.assets.findMaterial(name); m != nil {
		return m
	}
	return g.assets.addMaterial(name, spec)
}

// FindOrCreateTexture returns the texture called name, creating it from uri when absent.
func (g *Graph) FindOrCreateTexture(name, uri string) *Texture {
	g.mu.Lock()
	defer g.mu.Unlock()
	if t := g.assets.findTexture(name); t != nil {
		return t
	}
	return g.assets.addTexture(name, uri)
}

// Material looks up a material by name.
func (g *Graph) Material(name string) (*Material, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	m := g.assets.findMaterial(name)
	return m, m != nil
}

// AssetCounts reports how many meshes, materials and textures exist.
func (g *Graph) AssetCounts() (meshes, materials, textures int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.assets.meshes), len(g.assets.materials), len(g.assets.textures)
}

// Snapshot returns copies of every actor in creation order plus all assets.
func (g *Graph) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked()
}

func (g *Graph) snapshotLocked() Snapshot {
	snap := Snapshot{Actors: make([]Actor, 0, len(g.order)), Assets: g.assets.all()}
	for _, id := range g.order {
		snap.Actors = append(snap.Actors, g.actors[id].clone())
	}
	return snap
}
