package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"gallery/internal/domain"
	"gallery/internal/storage"
)

// ImagesPerRequest is the number of images every backend must produce.
const ImagesPerRequest = 9

const (
	defaultTimeout    = 10 * time.Minute
	defaultRetryDelay = 2 * time.Second
	stderrTail        = 512
)

// Request is a single generation run.
type Request struct {
	Prompt string
	Hash   string
	Count  int
}

// Generator is the contract the job runner depends on.
type Generator interface {
	Generate(ctx context.Context, req Request) error
}

// Options configures a ProcessGenerator.
type Options struct {
	Backend       Backend
	Store         *storage.FileStore
	APIKey        string
	WorkDir       string
	Timeout       time.Duration
	LaunchRetries int
	RetryDelay    time.Duration
	Logger        *zerolog.Logger
}

// ProcessGenerator launches a backend as an external process and verifies its output.
type ProcessGenerator struct {
	backend    Backend
	store      *storage.FileStore
	apiKey     string
	workDir    string
	timeout    time.Duration
	retries    int
	retryDelay time.Duration
	logger     zerolog.Logger
}

// New validates options and constructs a ProcessGenerator.
func New(opts Options) (*ProcessGenerator, error) {
	if opts.Backend.Command == "" {
		return nil, errors.New("generator: backend command is required")
	}
	if opts.Store == nil {
		return nil, errors.New("generator: output store is required")
	}
	g := &ProcessGenerator{
		backend:    opts.Backend,
		store:      opts.Store,
		apiKey:     opts.APIKey,
		workDir:    opts.WorkDir,
		timeout:    opts.Timeout,
		retries:    opts.LaunchRetries,
		retryDelay: opts.RetryDelay,
		logger:     zerolog.Nop(),
	}
	if g.timeout <= 0 {
		g.timeout = defaultTimeout
	}
	if g.retries < 0 {
		g.retries = 0
	}
	if g.retryDelay <= 0 {
		g.retryDelay = defaultRetryDelay
	}
	if opts.Logger != nil {
		g.logger = opts.Logger.With().Str("backend", opts.Backend.Name).Logger()
	}
	return g, nil
}

// Backend returns the configured backend.
func (g *ProcessGenerator) Backend() Backend { return g.backend }

// Generate runs the backend once (plus launch retries), harvests its files and
// checks that every expected image exists. Errors are always *Error.
func (g *ProcessGenerator) Generate(ctx context.Context, req Request) error {
	if req.Count <= 0 {
		req.Count = ImagesPerRequest
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if g.backend.PrepareDir {
		if err := g.store.EnsureDir(req.Hash); err != nil {
			return &Error{Class: domain.FailureLaunch, Err: err}
		}
	}

	var err error
	for attempt := 0; ; attempt++ {
		err = g.run(ctx, req)
		if err == nil || Classify(err) != domain.FailureLaunch || attempt >= g.retries {
			break
		}
		g.logger.Warn().Err(err).Int("attempt", attempt+1).Str("hash", req.Hash).Msg("generator: launch failed, retrying")
		select {
		case <-ctx.Done():
			return contextError(ctx)
		case <-time.After(g.retryDelay):
		}
	}
	if err != nil {
		return err
	}

	if g.backend.Harvest {
		if err := g.harvest(ctx, req); err != nil {
			return &Error{Class: domain.FailureMissingOutput, Err: err}
		}
	}
	if g.backend.OutputDir != "" {
		if err := g.collect(ctx, req); err != nil {
			return &Error{Class: domain.FailureMissingOutput, Err: err}
		}
	}

	if missing := g.store.MissingImages(req.Hash, req.Count); len(missing) > 0 {
		return &Error{
			Class: domain.FailureMissingOutput,
			Err:   fmt.Errorf("%d of %d images missing (first: %s)", len(missing), req.Count, storage.ImageKey(req.Hash, missing[0])),
		}
	}
	return nil
}

func (g *ProcessGenerator) run(ctx context.Context, req Request) error {
	cmd := exec.Command(g.backend.Command, g.backend.Argv(req, g.apiKey)...)
	cmd.Dir = g.backend.Dir
	cmd.Env = append(os.Environ(), "WD="+g.workDir, "API_KEY="+g.apiKey)
	setProcessGroup(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return &Error{Class: domain.FailureLaunch, Err: fmt.Errorf("start %s: %w", g.backend.Command, err)}
	}
	g.logger.Info().Int("pid", cmd.Process.Pid).Str("hash", req.Hash).Msg("generator: process started")

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case <-ctx.Done():
		killProcessGroup(cmd)
		<-done
		return contextError(ctx)
	case err := <-done:
		if err == nil {
			g.logger.Info().Str("hash", req.Hash).Dur("elapsed", time.Since(start)).Msg("generator: process finished")
			return nil
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &Error{
				Class:    domain.FailureGeneration,
				ExitCode: exitErr.ExitCode(),
				Stderr:   tail(stderr.String(), stderrTail),
				Err:      err,
			}
		}
		return &Error{Class: domain.FailureLaunch, Err: err}
	}
}

// harvest moves <n>_<hash>.png from the backend directory to <hash>/image-<n+1>.png
// and appends the prompt to the query sidecar.
func (g *ProcessGenerator) harvest(ctx context.Context, req Request) error {
	pattern := filepath.Join(g.backend.Dir, "*_"+req.Hash+".png")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return fmt.Errorf("harvest: %w", err)
	}
	moved := 0
	for _, src := range matches {
		prefix, _, _ := strings.Cut(filepath.Base(src), "_")
		n, err := strconv.Atoi(prefix)
		if err != nil || n < 0 {
			g.logger.Warn().Str("file", src).Msg("generator: skipping unexpected output file")
			continue
		}
		if _, err := g.store.Import(ctx, src, storage.ImageKey(req.Hash, n+1)); err != nil {
			return fmt.Errorf("harvest: %w", err)
		}
		moved++
	}
	g.logger.Debug().Int("files", moved).Str("hash", req.Hash).Msg("generator: harvested output")
	return g.store.AppendQuery(req.Hash, req.Prompt)
}

// collect imports <Dir>/<OutputDir>/<hash>/image-<n>.png into the store. The
// query sidecar is copied so the tool's own output directory stays in place.
func (g *ProcessGenerator) collect(ctx context.Context, req Request) error {
	srcDir, err := filepath.Abs(filepath.Join(g.backend.Dir, g.backend.OutputDir, req.Hash))
	if err != nil {
		return fmt.Errorf("collect: %w", err)
	}
	dstDir, err := g.store.Path(req.Hash)
	if err != nil {
		return fmt.Errorf("collect: %w", err)
	}
	if srcDir == dstDir {
		return nil
	}
	moved := 0
	for i := 1; i <= req.Count; i++ {
		key := storage.ImageKey(req.Hash, i)
		src := filepath.Join(srcDir, filepath.Base(key))
		if _, err := os.Stat(src); err != nil {
			continue
		}
		if _, err := g.store.Import(ctx, src, key); err != nil {
			return fmt.Errorf("collect: %w", err)
		}
		moved++
	}
	if query, err := os.ReadFile(filepath.Join(srcDir, storage.QueryFile)); err == nil {
		if _, err := g.store.Write(ctx, req.Hash+"/"+storage.QueryFile, query); err != nil {
			return fmt.Errorf("collect: %w", err)
		}
	}
	g.logger.Debug().Int("files", moved).Str("hash", req.Hash).Str("from", srcDir).Msg("generator: collected output")
	return nil
}

func contextError(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &Error{Class: domain.FailureTimeout, Err: ctx.Err()}
	}
	return &Error{Class: domain.FailureCanceled, Err: ctx.Err()}
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

var _ Generator = (*ProcessGenerator)(nil)
