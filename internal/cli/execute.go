package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"surfgen/internal/config"
	"surfgen/internal/core"
	"surfgen/internal/dag"
	"surfgen/internal/geometry"
	"surfgen/internal/library"
	"surfgen/internal/matdb"
	"surfgen/internal/objstore"
	"surfgen/internal/telemetry"
)

// Result is the outcome of one CLI execution.
type Result struct {
	ExitCode int
	Report   *dag.RunReport
}

func configErrorf(format string, args ...any) error {
	return &InvocationError{ExitCode: ExitConfigError, Message: fmt.Sprintf(format, args...)}
}

// Execute maps a canonical Invocation to a resolver run.
//
// Responsibilities:
//   - Load settings and credentials, build the task environment.
//   - Select the store backend.
//   - Instantiate the manifest's root tasks through the registry.
//   - Translate outcomes to semantic exit codes. Task failures yield
//     ExitTaskFailure with the report still populated.
func Execute(ctx context.Context, inv Invocation, logger *slog.Logger, counters *telemetry.Counters) (Result, error) {
	creds, err := config.LoadCredentials(inv.EnvFile)
	if err != nil {
		return Result{ExitCode: ExitConfigError}, configErrorf("%v", err)
	}

	settings := config.Default()
	if inv.SettingsPath != "" {
		settings, err = config.Load(inv.SettingsPath)
		if err != nil {
			return Result{ExitCode: ExitConfigError}, configErrorf("%v", err)
		}
	}

	store, err := buildStore(inv)
	if err != nil {
		return Result{ExitCode: ExitConfigError}, configErrorf("%v", err)
	}

	env := &library.Env{
		Geometry: geometry.NewHTTPOperations(creds.GeometryEndpoint),
		Gases:    geometry.StandardGases{},
		MatDB:    matdb.NewHTTPClient(creds.MatDBEndpoint, creds.MatDBAPIKey),
		Settings: settings,
	}
	reg := library.DefaultRegistry(env)

	manifest, err := LoadManifest(inv.ManifestPath)
	if err != nil {
		return Result{ExitCode: ExitConfigError}, configErrorf("%v", err)
	}
	roots, err := manifest.Instantiate(reg)
	if err != nil {
		return Result{ExitCode: ExitConfigError}, configErrorf("%v", err)
	}

	resolver := &dag.Resolver{
		Store:    store,
		Workers:  inv.Workers,
		Logger:   logger,
		Counters: counters,
	}
	report, err := resolver.Run(ctx, roots...)
	if err != nil {
		code := ExitInternalError
		if errors.Is(err, core.ErrCyclicDependency) {
			code = ExitConfigError
		}
		return Result{ExitCode: code, Report: report}, err
	}

	if reportErr := report.Err(); reportErr != nil {
		return Result{ExitCode: ExitTaskFailure, Report: report}, reportErr
	}
	return Result{ExitCode: ExitSuccess, Report: report}, nil
}

func buildStore(inv Invocation) (core.Store, error) {
	switch inv.Store {
	case StoreFile:
		return core.NewFileStore(inv.StoreDir), nil
	case StoreMemory:
		return core.NewMemoryStore(), nil
	case StoreObject:
		cfg, err := objstore.ConfigFromEnv()
		if err != nil {
			return nil, fmt.Errorf("object store: %w", err)
		}
		return objstore.New(cfg)
	default:
		return nil, fmt.Errorf("unknown store backend %q", inv.Store)
	}
}

// WriteReport renders a run summary, one line per task identity in
// dependency order.
func WriteReport(w io.Writer, report *dag.RunReport) {
	if report == nil {
		return
	}
	fmt.Fprintf(w, "run %s\n", report.RunID)
	for _, res := range report.Results {
		switch {
		case res.State == dag.StateDone && res.FromCache:
			fmt.Fprintf(w, "  cached  %s  %s\n", res.ID, res.Location)
		case res.State == dag.StateDone:
			fmt.Fprintf(w, "  done    %s  %s  (%d documents)\n", res.ID, res.Location, res.Documents)
		case res.State == dag.StateFailed:
			fmt.Fprintf(w, "  failed  %s  %v\n", res.ID, res.Err)
		default:
			fmt.Fprintf(w, "  %-7s %s\n", res.State, res.ID)
		}
	}
}
