package gallery

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gallery/internal/domain"
	"gallery/internal/scene"
)

func newAnimatorFixture(t *testing.T) (*scene.Graph, *Animator, string) {
	t.Helper()
	g := scene.NewGraph()
	button, err := g.CreateActor(scene.ActorSpec{Name: "button"})
	require.NoError(t, err)
	return g, NewAnimator(g, button.ID, DefaultOptions().Button), button.ID
}

func TestAnimatorReplacesActor(t *testing.T) {
	g, anim, buttonID := newAnimatorFixture(t)

	require.NoError(t, anim.Set(domain.ClipSleep))
	first := anim.ActorID()
	actor, ok := g.Actor(first)
	require.True(t, ok)
	assert.Equal(t, buttonID, actor.ParentID)
	assert.Equal(t, "artifact:2109625984289341582", actor.ResourceID)
	assert.InDelta(t, -0.1, actor.Transform.Position.Y, 1e-9)

	require.NoError(t, anim.Set(domain.ClipActivate))
	_, ok = g.Actor(first)
	assert.False(t, ok, "previous clip actor must be destroyed")
	assert.Equal(t, domain.ClipActivate, anim.Current())
	assert.Equal(t, 2, g.Len())
}

func TestAnimatorSameClipIsNoop(t *testing.T) {
	g, anim, _ := newAnimatorFixture(t)
	require.NoError(t, anim.Set(domain.ClipSleep))
	id := anim.ActorID()

	var patches int
	g.Watch(func(scene.Snapshot) {}, func(scene.Patch) { patches++ })
	require.NoError(t, anim.Set(domain.ClipSleep))
	assert.Equal(t, id, anim.ActorID())
	assert.Zero(t, patches)
}

func TestAnimatorUnknownClip(t *testing.T) {
	_, anim, _ := newAnimatorFixture(t)
	err := anim.Set("dance")
	assert.True(t, errors.Is(err, domain.ErrUnknownClip))
	assert.Equal(t, domain.ClipNone, anim.Current())
}
