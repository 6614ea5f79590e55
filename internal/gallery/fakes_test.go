package gallery

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gallery/internal/domain"
	"gallery/internal/generator"
)

// blockingGenerator records requests and returns whatever is sent on release.
type blockingGenerator struct {
	started chan generator.Request
	release chan error
}

func newBlockingGenerator() *blockingGenerator {
	return &blockingGenerator{
		started: make(chan generator.Request, 4),
		release: make(chan error),
	}
}

func (g *blockingGenerator) Generate(ctx context.Context, req generator.Request) error {
	g.started <- req
	select {
	case err := <-g.release:
		return err
	case <-ctx.Done():
		return &generator.Error{Class: domain.FailureCanceled, Err: ctx.Err()}
	}
}

func (g *blockingGenerator) waitStarted(t *testing.T) generator.Request {
	t.Helper()
	select {
	case req := <-g.started:
		return req
	case <-time.After(2 * time.Second):
		t.Fatal("generator was not invoked")
		return generator.Request{}
	}
}

type notice struct {
	user domain.User
	text string
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []notice
}

func (n *recordingNotifier) Notify(user domain.User, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice{user: user, text: text})
}

func (n *recordingNotifier) all() []notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notice(nil), n.notices...)
}

// recordingDisplay captures the calls a runner makes.
type recordingDisplay struct {
	mu     sync.Mutex
	calls  []string
	clip   domain.Clip
	status string
	bound  string
}

func (d *recordingDisplay) record(call string) {
	d.calls = append(d.calls, call)
}

func (d *recordingDisplay) SetClip(c domain.Clip) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clip = c
	d.record("clip:" + string(c))
	return nil
}

func (d *recordingDisplay) SetStatus(text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.status = text
	d.record("status:" + text)
	return nil
}

func (d *recordingDisplay) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bound = ""
	d.record("clear")
	return nil
}

func (d *recordingDisplay) Bind(hash string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bound = hash
	d.record("bind:" + hash)
	return nil
}

func (d *recordingDisplay) snapshot() (domain.Clip, string, string, []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.clip, d.status, d.bound, append([]string(nil), d.calls...)
}

func waitIdle(t *testing.T, r *Runner) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		r.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		require.FailNow(t, "runner did not finish")
	}
}
