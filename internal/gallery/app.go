package gallery

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"gallery/internal/domain"
	"gallery/internal/generator"
	"gallery/internal/scene"
	"gallery/internal/storage"
)

// Config wires an App.
type Config struct {
	Options     Options
	Generator   generator.Generator
	Store       *storage.FileStore
	Notifier    Notifier
	ReuseOutput bool
	Logger      *zerolog.Logger
}

// App is the gallery: it builds the scene on start and routes user events to the runner.
type App struct {
	graph  *scene.Graph
	cfg    Config
	logger zerolog.Logger

	mu       sync.RWMutex
	layout   *Layout
	animator *Animator
	renderer *Renderer
	runner   *Runner
	users    map[string]domain.User
}

// NewApp prepares an App over graph. Nothing is created until Start.
func NewApp(g *scene.Graph, cfg Config) *App {
	a := &App{graph: g, cfg: cfg, logger: zerolog.Nop(), users: make(map[string]domain.User)}
	if cfg.Logger != nil {
		a.logger = *cfg.Logger
	}
	return a
}

// Start builds the scene once and puts the button to sleep. ctx bounds generator runs.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.layout != nil {
		return errors.New("gallery: already started")
	}
	layout, err := Build(a.graph, a.cfg.Options)
	if err != nil {
		return err
	}
	a.layout = layout
	a.animator = NewAnimator(a.graph, layout.ButtonID, a.cfg.Options.Button)
	a.renderer = NewRenderer(a.graph, layout.Cells, a.cfg.Options.TextureBaseURL)
	a.runner = NewRunner(ctx, RunnerOptions{
		Display:     &sceneDisplay{graph: a.graph, textID: layout.TextID, animator: a.animator, renderer: a.renderer},
		Generator:   a.cfg.Generator,
		Store:       a.cfg.Store,
		Notifier:    a.cfg.Notifier,
		ReuseOutput: a.cfg.ReuseOutput,
		Logger:      &a.logger,
	})
	if err := a.animator.Set(domain.ClipSleep); err != nil {
		return fmt.Errorf("gallery: initial clip: %w", err)
	}
	a.logger.Info().Int("actors", a.graph.Len()).Msg("gallery: scene built")
	return nil
}

func (a *App) started() (*Runner, *Layout, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.runner == nil {
		return nil, nil, domain.ErrSceneNotReady
	}
	return a.runner, a.layout, nil
}

// UserJoined records a participant.
func (a *App) UserJoined(u domain.User) {
	a.mu.Lock()
	a.users[u.ID] = u
	count := len(a.users)
	a.mu.Unlock()
	a.logger.Info().Str("user", u.DisplayName()).Int("users", count).Msg("gallery: user joined")
}

// UserLeft forgets a participant.
func (a *App) UserLeft(u domain.User) {
	a.mu.Lock()
	delete(a.users, u.ID)
	count := len(a.users)
	a.mu.Unlock()
	a.logger.Info().Str("user", u.DisplayName()).Int("users", count).Msg("gallery: user left")
}

// IsButton reports whether actorID is the trigger button; clicks on it open the prompt dialog.
func (a *App) IsButton(actorID string) bool {
	_, layout, err := a.started()
	return err == nil && layout.ButtonID == actorID
}

// Submit forwards a dialog submission to the runner.
func (a *App) Submit(prompt string, user domain.User) error {
	runner, _, err := a.started()
	if err != nil {
		return err
	}
	return runner.Submit(prompt, user)
}

// Wait blocks until the in-flight job has completed.
func (a *App) Wait() {
	if runner, _, err := a.started(); err == nil {
		runner.Wait()
	}
}

// Status is the externally visible state of the gallery.
type Status struct {
	State       domain.JobState `json:"state"`
	Hash        string          `json:"hash,omitempty"`
	Prompt      string          `json:"prompt,omitempty"`
	Text        string          `json:"text"`
	Clip        domain.Clip     `json:"clip"`
	Slots       []Slot          `json:"slots"`
	LastFailure string          `json:"last_failure,omitempty"`
	LastReused  bool            `json:"last_reused,omitempty"`
	Users       int             `json:"users"`
}

// Status reports the current job, clip, label and slot bindings.
func (a *App) Status() (Status, error) {
	runner, _, err := a.started()
	if err != nil {
		return Status{}, err
	}
	st := runner.State()
	a.mu.RLock()
	users := len(a.users)
	a.mu.RUnlock()
	out := Status{
		State: domain.JobStateIdle,
		Text:  st.Status,
		Clip:  a.animator.Current(),
		Slots: a.renderer.Slots(),
		Users: users,
	}
	if st.Job != nil {
		out.State = st.Job.State
		out.Hash = st.Job.RequestHash
		out.Prompt = st.Job.Prompt
	}
	if st.LastOutcome != nil {
		out.LastFailure = string(st.LastOutcome.Failure)
		out.LastReused = st.LastOutcome.Reused
	}
	return out, nil
}

// sceneDisplay applies runner decisions to the scene graph.
type sceneDisplay struct {
	graph    *scene.Graph
	textID   string
	animator *Animator
	renderer *Renderer
}

func (d *sceneDisplay) SetClip(c domain.Clip) error { return d.animator.Set(c) }
func (d *sceneDisplay) SetStatus(text string) error { return d.graph.SetText(d.textID, text) }
func (d *sceneDisplay) Clear() error                { return d.renderer.Clear() }
func (d *sceneDisplay) Bind(hash string) error      { return d.renderer.Bind(hash) }
