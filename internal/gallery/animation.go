package gallery

import (
	"fmt"
	"sync"

	"gallery/internal/domain"
	"gallery/internal/scene"
)

// Animator owns at most one clip actor parented to the button. Setting a new
// clip destroys the old actor before creating the next one.
type Animator struct {
	graph     *scene.Graph
	parentID  string
	clips     map[string]string
	transform scene.Transform

	mu      sync.Mutex
	current domain.Clip
	actorID string
}

// NewAnimator binds clip resources to the button actor.
func NewAnimator(g *scene.Graph, buttonID string, opts ButtonOptions) *Animator {
	return &Animator{
		graph:     g,
		parentID:  buttonID,
		clips:     opts.Clips,
		transform: scene.Translate(opts.Transform),
	}
}

// Current returns the playing clip.
func (a *Animator) Current() domain.Clip {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// ActorID returns the id of the actor playing the current clip.
func (a *Animator) ActorID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.actorID
}

// Set switches to clip. Re-setting the current clip is a no-op.
func (a *Animator) Set(clip domain.Clip) error {
	if !clip.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownClip, clip)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == clip {
		return nil
	}
	if a.actorID != "" {
		if err := a.graph.Destroy(a.actorID); err != nil {
			return fmt.Errorf("gallery: release clip %s: %w", a.current, err)
		}
		a.actorID = ""
	}
	t := a.transform
	actor, err := a.graph.CreateFromLibrary(a.clips[string(clip)], scene.ActorSpec{
		Name:      "clip_" + string(clip),
		ParentID:  a.parentID,
		Transform: &t,
	})
	if err != nil {
		a.current = domain.ClipNone
		return fmt.Errorf("gallery: play clip %s: %w", clip, err)
	}
	a.current = clip
	a.actorID = actor.ID
	return nil
}
