package generator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"gallery/internal/domain"
	"gallery/internal/storage"
)

const testHash = "5f1b9a"

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not available on windows")
	}
}

func newStore(t *testing.T) *storage.FileStore {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return store
}

func shellBackend(dir, script string, harvest bool) Backend {
	return Backend{
		Name:       "test",
		Command:    "sh",
		Args:       []string{"-c", script, "gen", "{prompt}", "{hash}", "{count}"},
		Dir:        dir,
		PrepareDir: true,
		Harvest:    harvest,
	}
}

func TestArgvKeepsPromptAsSingleArgument(t *testing.T) {
	b := StableHorde("python", "/opt/horde")
	argv := b.Argv(Request{Prompt: "a b'; rm -rf /", Hash: "abc", Count: 9}, "key")

	found := false
	for i, arg := range argv {
		if arg == "-p" {
			if argv[i+1] != "a b'; rm -rf /" {
				t.Fatalf("prompt argument altered: %q", argv[i+1])
			}
			found = true
		}
	}
	if !found {
		t.Fatalf("prompt flag missing in %v", argv)
	}
	joined := strings.Join(argv, " ")
	for _, want := range []string{"-n 9", "-f abc.png", "--api_key key", "--horde=https://stablehorde.net"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("argv %q missing %q", joined, want)
		}
	}
}

func TestNewBackend(t *testing.T) {
	b, err := NewBackend("CRAIYON", "python3", "/wd", "/srv")
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	if b.Name != BackendCraiyon || b.Dir != "/srv" || b.OutputDir != "public" || b.Harvest || b.PrepareDir {
		t.Fatalf("unexpected craiyon backend %+v", b)
	}
	b, err = NewBackend("stable_horde", "python3", "/wd", "/srv")
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	if b.Dir != "/wd" || !b.Harvest {
		t.Fatalf("unexpected stable horde backend %+v", b)
	}
	if _, err := NewBackend("dalle", "python3", "", ""); !errors.Is(err, domain.ErrUnknownBackend) {
		t.Fatalf("expected ErrUnknownBackend, got %v", err)
	}
}

func TestGenerateHarvestsOutput(t *testing.T) {
	requireShell(t)
	store := newStore(t)
	workDir := t.TempDir()
	script := `i=0; while [ $i -lt $3 ]; do echo png > "${i}_$2.png"; i=$((i+1)); done`

	g, err := New(Options{Backend: shellBackend(workDir, script, true), Store: store, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := g.Generate(context.Background(), Request{Prompt: "A red balloon", Hash: testHash, Count: 9}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if missing := store.MissingImages(testHash, 9); len(missing) != 0 {
		t.Fatalf("missing images %v", missing)
	}
	leftovers, _ := filepath.Glob(filepath.Join(workDir, "*.png"))
	if len(leftovers) != 0 {
		t.Fatalf("expected work dir to be drained, got %v", leftovers)
	}
	query, err := store.Read(testHash + "/" + storage.QueryFile)
	if err != nil || strings.TrimSpace(string(query)) != "A red balloon" {
		t.Fatalf("query sidecar = %q, %v", query, err)
	}
}

// fakeCraiyon writes an executable standing in for the python interpreter. It
// mimics craiyon.py by writing public/<arg>/image-1..9.png and a query file
// relative to its working directory.
func fakeCraiyon(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "python")
	script := `#!/bin/sh
out="public/$2"
mkdir -p "$out"
printf '%s\n' "$2" > "$out/query"
i=1; while [ $i -le 9 ]; do echo png > "$out/image-$i.png"; i=$((i+1)); done
`
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake interpreter: %v", err)
	}
	return path
}

func TestGenerateCollectsCraiyonOutputIntoStore(t *testing.T) {
	requireShell(t)
	python := fakeCraiyon(t)

	tests := []struct {
		name      string
		storeRoot func(scriptDir string) string
	}{
		{name: "custom public root", storeRoot: func(string) string { return t.TempDir() }},
		{name: "public root inside script dir", storeRoot: func(dir string) string { return filepath.Join(dir, "public") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scriptDir := t.TempDir()
			store, err := storage.NewFileStore(tt.storeRoot(scriptDir))
			if err != nil {
				t.Fatalf("NewFileStore: %v", err)
			}
			backend, err := NewBackend(BackendCraiyon, python, t.TempDir(), scriptDir)
			if err != nil {
				t.Fatalf("NewBackend: %v", err)
			}
			g, err := New(Options{Backend: backend, Store: store, Timeout: 5 * time.Second})
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if err := g.Generate(context.Background(), Request{Prompt: testHash, Hash: testHash, Count: 9}); err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if missing := store.MissingImages(testHash, 9); len(missing) != 0 {
				t.Fatalf("missing images %v", missing)
			}
			query, err := store.Read(testHash + "/" + storage.QueryFile)
			if err != nil || strings.TrimSpace(string(query)) != testHash {
				t.Fatalf("query sidecar = %q, %v", query, err)
			}
		})
	}
}

func TestGenerateClassifiesFailures(t *testing.T) {
	requireShell(t)

	tests := []struct {
		name     string
		backend  func(dir string) Backend
		timeout  time.Duration
		want     domain.FailureClass
		exitCode int
	}{
		{
			name:     "non-zero exit",
			backend:  func(dir string) Backend { return shellBackend(dir, "echo boom >&2; exit 3", true) },
			want:     domain.FailureGeneration,
			exitCode: 3,
		},
		{
			name:    "no output",
			backend: func(dir string) Backend { return shellBackend(dir, "exit 0", true) },
			want:    domain.FailureMissingOutput,
		},
		{
			name:    "timeout",
			backend: func(dir string) Backend { return shellBackend(dir, "sleep 5", true) },
			timeout: 100 * time.Millisecond,
			want:    domain.FailureTimeout,
		},
		{
			name: "launch",
			backend: func(dir string) Backend {
				return Backend{Name: "missing", Command: filepath.Join(dir, "does-not-exist"), Dir: dir}
			},
			want: domain.FailureLaunch,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			timeout := tc.timeout
			if timeout == 0 {
				timeout = 5 * time.Second
			}
			g, err := New(Options{
				Backend:       tc.backend(t.TempDir()),
				Store:         newStore(t),
				Timeout:       timeout,
				LaunchRetries: 1,
				RetryDelay:    time.Millisecond,
			})
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			err = g.Generate(context.Background(), Request{Prompt: "p", Hash: testHash, Count: 9})
			if got := Classify(err); got != tc.want {
				t.Fatalf("Classify = %q, want %q (err %v)", got, tc.want, err)
			}
			var gerr *Error
			if !errors.As(err, &gerr) {
				t.Fatalf("expected *Error, got %T", err)
			}
			if gerr.ExitCode != tc.exitCode {
				t.Fatalf("ExitCode = %d, want %d", gerr.ExitCode, tc.exitCode)
			}
			if tc.want == domain.FailureGeneration && !strings.Contains(gerr.Stderr, "boom") {
				t.Fatalf("stderr tail not captured: %q", gerr.Stderr)
			}
		})
	}
}

func TestGenerateCanceled(t *testing.T) {
	requireShell(t)
	g, err := New(Options{Backend: shellBackend(t.TempDir(), "sleep 5", true), Store: newStore(t)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	start := time.Now()
	err = g.Generate(ctx, Request{Prompt: "p", Hash: testHash})
	if got := Classify(err); got != domain.FailureCanceled {
		t.Fatalf("Classify = %q, want canceled (err %v)", got, err)
	}
	if time.Since(start) > 3*time.Second {
		t.Fatalf("cancellation did not kill the process promptly")
	}
}

func TestGenerateSkipsUnexpectedFiles(t *testing.T) {
	requireShell(t)
	store := newStore(t)
	workDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(workDir, "x_"+testHash+".png"), []byte("junk"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	script := `i=0; while [ $i -lt 9 ]; do echo png > "${i}_$2.png"; i=$((i+1)); done`
	g, err := New(Options{Backend: shellBackend(workDir, script, true), Store: store})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := g.Generate(context.Background(), Request{Prompt: "p", Hash: testHash}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := os.Stat(filepath.Join(workDir, "x_"+testHash+".png")); err != nil {
		t.Fatalf("unexpected file should be left in place: %v", err)
	}
}

func TestClassifyPlainError(t *testing.T) {
	if got := Classify(errors.New("x")); got != domain.FailureGeneration {
		t.Fatalf("Classify = %q", got)
	}
	if got := Classify(nil); got != domain.FailureNone {
		t.Fatalf("Classify(nil) = %q", got)
	}
}

func TestNewValidatesOptions(t *testing.T) {
	if _, err := New(Options{Store: newStore(t)}); err == nil {
		t.Fatal("expected error without command")
	}
	if _, err := New(Options{Backend: Backend{Command: "sh"}}); err == nil {
		t.Fatal("expected error without store")
	}
}
