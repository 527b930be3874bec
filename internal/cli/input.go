// Package cli canonicalizes command-line input and maps pipeline outcomes
// to semantic exit codes.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

const (
	ExitSuccess           = 0
	ExitTaskFailure       = 1
	ExitInvalidInvocation = 2
	ExitConfigError       = 3
	ExitInternalError     = 4
)

// StoreKind selects the output store backend.
type StoreKind string

const (
	StoreFile   StoreKind = "file"
	StoreMemory StoreKind = "memory"
	StoreObject StoreKind = "object"
)

// Invocation is the canonicalized description of one run: normalized paths,
// validated store selection, bounded worker count.
type Invocation struct {
	ManifestPath string
	SettingsPath string
	EnvFile      string
	Store        StoreKind
	StoreDir     string
	Workers      int
}

type InvocationError struct {
	ExitCode int
	Message  string
}

func (e *InvocationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func invalidInvocationf(format string, args ...any) error {
	return &InvocationError{ExitCode: ExitInvalidInvocation, Message: fmt.Sprintf(format, args...)}
}

// ParseInvocation parses CLI flags (excluding argv[0]) into an Invocation.
func ParseInvocation(args []string) (Invocation, error) {
	fs := flag.NewFlagSet("surfgen", flag.ContinueOnError)
	fs.SetOutput(io.Discard) // parsing errors are returned, not printed

	var manifestPath string
	var settingsPath string
	var envFile string
	var storeKind string
	var storeDir string
	var workers int

	fs.StringVar(&manifestPath, "manifest", "", "Task manifest (YAML). Required.")
	fs.StringVar(&settingsPath, "settings", "", "Settings file (YAML, optional; built-in defaults otherwise).")
	fs.StringVar(&envFile, "env-file", "", ".env file for service credentials (optional).")
	fs.StringVar(&storeKind, "store", string(StoreFile), "Output store backend: file|memory|object")
	fs.StringVar(&storeDir, "store-dir", "", "Root directory of the file store. Required with --store file.")
	fs.IntVar(&workers, "workers", 1, "Number of concurrent task workers.")

	if err := fs.Parse(args); err != nil {
		return Invocation{}, invalidInvocationf("%v", err)
	}
	if fs.NArg() != 0 {
		return Invocation{}, invalidInvocationf("unexpected positional arguments: %q", strings.Join(fs.Args(), " "))
	}

	if manifestPath == "" {
		return Invocation{}, invalidInvocationf("--manifest is required")
	}
	if workers < 1 {
		return Invocation{}, invalidInvocationf("--workers must be at least 1 (got %d)", workers)
	}

	kind, err := parseStoreKind(storeKind)
	if err != nil {
		return Invocation{}, err
	}
	if kind == StoreFile && storeDir == "" {
		return Invocation{}, invalidInvocationf("--store-dir is required with --store file")
	}
	if kind != StoreFile && storeDir != "" {
		return Invocation{}, invalidInvocationf("--store-dir only applies to --store file")
	}

	inv := Invocation{
		ManifestPath: filepath.Clean(manifestPath),
		EnvFile:      envFile,
		Store:        kind,
		Workers:      workers,
	}
	if settingsPath != "" {
		inv.SettingsPath = filepath.Clean(settingsPath)
	}
	if storeDir != "" {
		inv.StoreDir = filepath.Clean(storeDir)
	}
	if envFile != "" {
		inv.EnvFile = filepath.Clean(envFile)
	}
	return inv, nil
}

func parseStoreKind(raw string) (StoreKind, error) {
	n := strings.ToLower(strings.TrimSpace(raw))
	switch StoreKind(n) {
	case StoreFile, StoreMemory, StoreObject:
		return StoreKind(n), nil
	case "":
		return "", invalidInvocationf("--store is required")
	default:
		return "", invalidInvocationf("invalid --store %q (expected file|memory|object)", raw)
	}
}

// ExitCodeFor extracts a semantic exit code from an error. Unknown errors
// map to ExitInternalError.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var invErr *InvocationError
	if errors.As(err, &invErr) && invErr != nil {
		if invErr.ExitCode != 0 {
			return invErr.ExitCode
		}
		return ExitInvalidInvocation
	}
	return ExitInternalError
}
