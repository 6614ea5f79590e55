package generator

import (
	"fmt"
	"strconv"
	"strings"

	"gallery/internal/domain"
)

// Backend names.
const (
	BackendStableHorde = "stable_horde"
	BackendCraiyon     = "craiyon"
)

const stableHordeURL = "https://stablehorde.net"

// Backend describes how to launch one text-to-image tool. Args are templates;
// {prompt}, {hash}, {api_key} and {count} are substituted per argument, so a
// prompt always travels as exactly one argv entry and never through a shell.
type Backend struct {
	Name    string
	Command string
	Args    []string
	Dir     string
	// PrepareDir creates <public-root>/<hash> before launch.
	PrepareDir bool
	// Harvest moves <n>_<hash>.png files from Dir into the store after a successful run.
	Harvest bool
	// OutputDir, relative to Dir, is where a tool writes <hash>/image-<n>.png on
	// its own. Its files are collected into the store unless it is the store.
	OutputDir string
}

// StableHorde returns the backend driving the Stable Horde cli_request.py client from workDir.
func StableHorde(python, workDir string) Backend {
	return Backend{
		Name:    BackendStableHorde,
		Command: python,
		Args: []string{
			"cli_request.py",
			"--horde=" + stableHordeURL,
			"-n", "{count}",
			"-p", "{prompt}",
			"-w", "512",
			"-l", "512",
			"-s", "7",
			"-f", "{hash}.png",
			"-q",
			"--api_key", "{api_key}",
		},
		Dir:        workDir,
		PrepareDir: true,
		Harvest:    true,
	}
}

// Craiyon returns the backend running craiyon.py from dir. The script hashes
// its arguments itself and writes into public/<hash> relative to dir.
func Craiyon(python, dir string) Backend {
	return Backend{
		Name:      BackendCraiyon,
		Command:   python,
		Args:      []string{"craiyon.py", "{prompt}"},
		Dir:       dir,
		OutputDir: "public",
	}
}

// NewBackend selects a backend by name. scriptDir is where craiyon.py lives.
func NewBackend(name, python, workDir, scriptDir string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case BackendStableHorde:
		return StableHorde(python, workDir), nil
	case BackendCraiyon:
		return Craiyon(python, scriptDir), nil
	default:
		return Backend{}, fmt.Errorf("%w: %q", domain.ErrUnknownBackend, name)
	}
}

// Argv expands the argument templates for a request.
func (b Backend) Argv(req Request, apiKey string) []string {
	r := strings.NewReplacer(
		"{prompt}", req.Prompt,
		"{hash}", req.Hash,
		"{api_key}", apiKey,
		"{count}", strconv.Itoa(req.Count),
	)
	out := make([]string, len(b.Args))
	for i, arg := range b.Args {
		out[i] = r.Replace(arg)
	}
	return out
}
