package cli

import (
	"context"
	"log/slog"

	"surfgen/internal/telemetry"
)

// Run is a high-level entrypoint suitable for black-box tests. It accepts
// the argument slice (excluding argv[0]) and returns the semantic exit code
// plus any error.
func Run(ctx context.Context, args []string, logger *slog.Logger, counters *telemetry.Counters) (Result, error) {
	inv, err := ParseInvocation(args)
	if err != nil {
		return Result{ExitCode: ExitCodeFor(err)}, err
	}
	return Execute(ctx, inv, logger, counters)
}
