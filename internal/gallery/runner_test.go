package gallery

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gallery/internal/domain"
	"gallery/internal/generator"
	"gallery/internal/storage"
)

var alice = domain.User{ID: "u-1", Name: "Alice", Locale: "en"}

const redBalloonHash = "e4e300320a863a59c58796d1d5166167c801c16808971e6afa80029475164410"

func newTestRunner(t *testing.T, opts RunnerOptions) (*Runner, *recordingDisplay, *blockingGenerator, *recordingNotifier) {
	t.Helper()
	display := &recordingDisplay{}
	gen := newBlockingGenerator()
	notifier := &recordingNotifier{}
	opts.Display = display
	opts.Generator = gen
	opts.Notifier = notifier
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewRunner(ctx, opts), display, gen, notifier
}

func TestRunnerSuccessBindsSanitizedHash(t *testing.T) {
	r, display, gen, notifier := newTestRunner(t, RunnerOptions{})

	require.NoError(t, r.Submit("A red balloon!!", alice))
	req := gen.waitStarted(t)
	assert.Equal(t, "A red balloon", req.Prompt)
	assert.Equal(t, redBalloonHash, req.Hash)
	assert.Equal(t, NumImages, req.Count)

	st := r.State()
	require.NotNil(t, st.Job)
	assert.Equal(t, domain.JobStateRunning, st.Job.State)
	assert.Equal(t, "Alice prompted: A red balloon!!", st.Status)
	clip, _, bound, _ := display.snapshot()
	assert.Equal(t, domain.ClipActivate, clip)
	assert.Empty(t, bound)

	gen.release <- nil
	waitIdle(t, r)

	clip, status, bound, calls := display.snapshot()
	assert.Equal(t, domain.ClipDeactivate, clip)
	assert.Equal(t, "A red balloon!!", status)
	assert.Equal(t, redBalloonHash, bound)
	assert.Equal(t, []string{
		"clip:activate",
		"status:Alice prompted: A red balloon!!",
		"clear",
		"clip:deactivate",
		"status:A red balloon!!",
		"bind:" + redBalloonHash,
	}, calls)
	assert.Nil(t, r.State().Job)
	assert.Empty(t, notifier.all())

	st = r.State()
	require.NotNil(t, st.LastOutcome)
	assert.True(t, st.LastOutcome.Succeeded)
	assert.Equal(t, "A red balloon!!", st.LastQuery)
}

func TestRunnerRejectsWhileBusy(t *testing.T) {
	r, display, gen, notifier := newTestRunner(t, RunnerOptions{})
	require.NoError(t, r.Submit("first", alice))
	gen.waitStarted(t)
	_, _, _, before := display.snapshot()

	bob := domain.User{ID: "u-2", Name: "Bob", Locale: "id-ID"}
	err := r.Submit("second", bob)
	assert.ErrorIs(t, err, domain.ErrBusy)
	assert.True(t, domain.IsUserError(err))

	_, _, _, after := display.snapshot()
	assert.Equal(t, before, after, "busy submissions must not touch the display")
	notices := notifier.all()
	require.Len(t, notices, 1)
	assert.Equal(t, bob, notices[0].user)
	assert.Equal(t, "Tugas sedang berjalan, mohon tunggu", notices[0].text)

	gen.release <- nil
	waitIdle(t, r)
	assert.Equal(t, "first", r.State().LastQuery)
}

func TestRunnerBusyTakesPrecedenceOverEmpty(t *testing.T) {
	r, _, gen, notifier := newTestRunner(t, RunnerOptions{})
	require.NoError(t, r.Submit("first", alice))
	gen.waitStarted(t)

	assert.ErrorIs(t, r.Submit("", alice), domain.ErrBusy)
	assert.Equal(t, "Task running please wait", notifier.all()[0].text)

	gen.release <- nil
	waitIdle(t, r)
}

func TestRunnerRejectsEmptyQuery(t *testing.T) {
	for _, prompt := range []string{"", "   ", "!!! 123 ???"} {
		r, display, _, notifier := newTestRunner(t, RunnerOptions{})
		err := r.Submit(prompt, alice)
		assert.ErrorIs(t, err, domain.ErrEmptyQuery, "prompt %q", prompt)
		assert.Nil(t, r.State().Job)
		_, _, _, calls := display.snapshot()
		assert.Empty(t, calls)
		require.Len(t, notifier.all(), 1)
		assert.Equal(t, "Query can't be empty", notifier.all()[0].text)
	}
}

func TestRunnerFailureLeavesSlotsBlank(t *testing.T) {
	r, display, gen, notifier := newTestRunner(t, RunnerOptions{})
	require.NoError(t, r.Submit("a cat", alice))
	gen.waitStarted(t)

	gen.release <- &generator.Error{Class: domain.FailureMissingOutput, Err: errors.New("missing image-4.png")}
	waitIdle(t, r)

	clip, status, bound, _ := display.snapshot()
	assert.Equal(t, domain.ClipDeactivate, clip)
	assert.Equal(t, "a cat", status)
	assert.Empty(t, bound)

	notices := notifier.all()
	require.Len(t, notices, 1)
	assert.Equal(t, "Generation failed: missing_output", notices[0].text)

	st := r.State()
	require.NotNil(t, st.LastOutcome)
	assert.False(t, st.LastOutcome.Succeeded)
	assert.Equal(t, domain.FailureMissingOutput, st.LastOutcome.Failure)

	require.NoError(t, r.Submit("a dog", alice), "runner must accept new work after a failure")
	gen.waitStarted(t)
	gen.release <- nil
	waitIdle(t, r)
}

func TestRunnerCanceledByContext(t *testing.T) {
	display := &recordingDisplay{}
	gen := newBlockingGenerator()
	notifier := &recordingNotifier{}
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRunner(ctx, RunnerOptions{Display: display, Generator: gen, Notifier: notifier})

	require.NoError(t, r.Submit("a cat", alice))
	gen.waitStarted(t)
	cancel()
	waitIdle(t, r)

	st := r.State()
	require.NotNil(t, st.LastOutcome)
	assert.Equal(t, domain.FailureCanceled, st.LastOutcome.Failure)
	_, _, bound, _ := display.snapshot()
	assert.Empty(t, bound)
}

func TestRunnerRejectsSubmitAfterShutdown(t *testing.T) {
	display := &recordingDisplay{}
	gen := newBlockingGenerator()
	notifier := &recordingNotifier{}
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRunner(ctx, RunnerOptions{Display: display, Generator: gen, Notifier: notifier})
	cancel()

	err := r.Submit("a cat", alice)
	assert.ErrorIs(t, err, domain.ErrShuttingDown)
	assert.False(t, domain.IsUserError(err))
	assert.Nil(t, r.State().Job)
	assert.Empty(t, gen.started, "no job may start once the runner is shutting down")
	_, _, _, calls := display.snapshot()
	assert.Empty(t, calls)
	waitIdle(t, r)
}

func TestRunnerReusesExistingOutput(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	hash := RequestHash("a cat")
	require.NoError(t, store.EnsureDir(hash))
	for i := 1; i <= NumImages; i++ {
		path, err := store.Path(storage.ImageKey(hash, i))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(path, []byte("png"), 0o644))
	}

	r, display, gen, _ := newTestRunner(t, RunnerOptions{Store: store, ReuseOutput: true})
	require.NoError(t, r.Submit("a cat", alice))
	waitIdle(t, r)

	assert.Empty(t, gen.started, "generator must not run for reused output")
	_, _, bound, _ := display.snapshot()
	assert.Equal(t, hash, bound)
	st := r.State()
	require.NotNil(t, st.LastOutcome)
	assert.True(t, st.LastOutcome.Reused)
}

func TestRunnerReuseWithPartialOutputRunsGenerator(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	hash := RequestHash("a cat")
	require.NoError(t, store.EnsureDir(hash))
	require.NoError(t, os.WriteFile(filepath.Join(store.BasePath(), hash, "image-1.png"), []byte("png"), 0o644))

	r, _, gen, _ := newTestRunner(t, RunnerOptions{Store: store, ReuseOutput: true})
	require.NoError(t, r.Submit("a cat", alice))
	gen.waitStarted(t)
	gen.release <- nil
	waitIdle(t, r)
}
