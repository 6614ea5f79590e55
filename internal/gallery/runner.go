package gallery

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"gallery/internal/domain"
	"gallery/internal/generator"
	"gallery/internal/storage"
)

// Notifier delivers a short message to a single user.
type Notifier interface {
	Notify(user domain.User, text string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(user domain.User, text string)

// Notify calls f.
func (f NotifierFunc) Notify(user domain.User, text string) { f(user, text) }

// Display is what the runner drives on completion: the clip, the status
// label and the slots.
type Display interface {
	SetClip(domain.Clip) error
	SetStatus(text string) error
	Clear() error
	Bind(hash string) error
}

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	Display   Display
	Generator generator.Generator
	Store     *storage.FileStore
	Notifier  Notifier
	// ReuseOutput completes a job immediately when every image for its hash already exists.
	ReuseOutput bool
	Logger      *zerolog.Logger
}

// State is a point-in-time view of the runner.
type State struct {
	Job         *domain.Job
	Status      string
	LastQuery   string
	LastOutcome *domain.Outcome
}

// Runner accepts one prompt at a time and drives the display from the
// generator's outcome. The busy check and the transition to running happen
// under a single lock acquisition.
type Runner struct {
	display  Display
	gen      generator.Generator
	store    *storage.FileStore
	notifier Notifier
	reuse    bool
	logger   zerolog.Logger
	now      func() time.Time

	ctx context.Context
	wg  sync.WaitGroup

	mu          sync.Mutex
	job         *domain.Job
	status      string
	lastQuery   string
	lastOutcome *domain.Outcome
}

// NewRunner returns an idle runner. ctx bounds every generator run; canceling it aborts the in-flight process.
func NewRunner(ctx context.Context, opts RunnerOptions) *Runner {
	r := &Runner{
		display:  opts.Display,
		gen:      opts.Generator,
		store:    opts.Store,
		notifier: opts.Notifier,
		reuse:    opts.ReuseOutput,
		logger:   zerolog.Nop(),
		now:      time.Now,
		ctx:      ctx,
	}
	if r.notifier == nil {
		r.notifier = NotifierFunc(func(domain.User, string) {})
	}
	if opts.Logger != nil {
		r.logger = *opts.Logger
	}
	return r
}

// Submit starts a job for prompt unless one is already running. The busy and
// empty-query cases notify the user and return domain.ErrBusy or
// domain.ErrEmptyQuery without touching any state. Once the runner's context
// is done every submission fails with domain.ErrShuttingDown.
func (r *Runner) Submit(prompt string, user domain.User) error {
	r.mu.Lock()
	if r.ctx.Err() != nil {
		r.mu.Unlock()
		return domain.ErrShuttingDown
	}
	if r.job != nil {
		r.mu.Unlock()
		r.reject(user, domain.ErrBusy)
		return domain.ErrBusy
	}
	sanitized := Sanitize(prompt)
	if strings.TrimSpace(sanitized) == "" {
		r.mu.Unlock()
		r.reject(user, domain.ErrEmptyQuery)
		return domain.ErrEmptyQuery
	}
	job := domain.Job{
		Prompt:      sanitized,
		Query:       prompt,
		RequestHash: Hash(sanitized),
		User:        user,
		State:       domain.JobStateRunning,
		StartedAt:   r.now(),
	}
	r.job = &job
	r.status = user.DisplayName() + " prompted: " + prompt
	r.logDisplayErr(r.display.SetClip(domain.ClipActivate), "set clip")
	r.logDisplayErr(r.display.SetStatus(r.status), "set status")
	r.logDisplayErr(r.display.Clear(), "clear slots")
	r.wg.Add(1)
	r.mu.Unlock()

	r.logger.Info().Str("hash", job.RequestHash).Str("user", user.DisplayName()).Msg("runner: job started")
	go r.run(job)
	return nil
}

func (r *Runner) run(job domain.Job) {
	defer r.wg.Done()
	start := r.now()

	if r.reuse && r.store != nil && len(r.store.MissingImages(job.RequestHash, NumImages)) == 0 {
		outcome := domain.SucceededOutcome(0)
		outcome.Reused = true
		r.complete(job, outcome)
		return
	}

	err := r.gen.Generate(r.ctx, generator.Request{Prompt: job.Prompt, Hash: job.RequestHash, Count: NumImages})
	elapsed := r.now().Sub(start)
	if err != nil {
		r.complete(job, domain.FailedOutcome(generator.Classify(err), err, elapsed))
		return
	}
	r.complete(job, domain.SucceededOutcome(elapsed))
}

// complete returns the runner to idle, plays the deactivate clip, shows the
// original prompt and, on success only, binds the slots to the prompt's hash.
func (r *Runner) complete(job domain.Job, outcome domain.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.job = nil
	r.status = job.Query
	r.lastQuery = job.Query
	r.lastOutcome = &outcome
	r.logDisplayErr(r.display.SetClip(domain.ClipDeactivate), "set clip")
	r.logDisplayErr(r.display.SetStatus(job.Query), "set status")

	if !outcome.Succeeded {
		r.logger.Warn().
			Err(outcome.Err).
			Str("hash", job.RequestHash).
			Str("failure", string(outcome.Failure)).
			Dur("elapsed", outcome.Duration).
			Msg("runner: job failed")
		r.notifier.Notify(job.User, domain.Notice(job.User.Locale, domain.NoticeGenerationFailed, outcome.Failure))
		return
	}

	r.logDisplayErr(r.display.Bind(RequestHash(job.Query)), "bind slots")
	r.logger.Info().
		Str("hash", job.RequestHash).
		Bool("reused", outcome.Reused).
		Dur("elapsed", outcome.Duration).
		Msg("runner: job finished")
}

func (r *Runner) reject(user domain.User, err error) {
	key, _ := domain.NoticeForError(err)
	r.notifier.Notify(user, domain.Notice(user.Locale, key))
	r.logger.Debug().Err(err).Str("user", user.DisplayName()).Msg("runner: submission rejected")
}

func (r *Runner) logDisplayErr(err error, what string) {
	if err != nil {
		r.logger.Error().Err(err).Msg("runner: " + what)
	}
}

// State returns a copy of the runner state.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := State{Status: r.status, LastQuery: r.lastQuery}
	if r.job != nil {
		job := *r.job
		s.Job = &job
	}
	if r.lastOutcome != nil {
		o := *r.lastOutcome
		s.LastOutcome = &o
	}
	return s
}

// Wait blocks until the in-flight job, if any, has completed. Taking the lock
// first orders Wait after any Submit already past its context check, so once
// the context is done no job can start behind Wait's back.
func (r *Runner) Wait() {
	r.mu.Lock()
	r.mu.Unlock() //nolint:staticcheck // empty critical section
	r.wg.Wait()
}
