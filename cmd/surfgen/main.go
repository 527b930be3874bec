package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"surfgen/internal/cli"
	"surfgen/internal/telemetry"
)

func main() {
	os.Exit(run())
}

// run canonicalizes CLI input, wires telemetry, executes the invocation,
// and flushes telemetry before the process exits.
func run() int {
	inv, err := cli.ParseInvocation(os.Args[1:])
	if err != nil {
		var invErr *cli.InvocationError
		if errors.As(err, &invErr) {
			fmt.Fprintln(os.Stderr, invErr.Message)
			return invErr.ExitCode
		}
		fmt.Fprintln(os.Stderr, err)
		return cli.ExitInternalError
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.Setup(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "telemetry setup:", err)
		return cli.ExitInternalError
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			fmt.Fprintln(os.Stderr, "telemetry shutdown:", err)
		}
	}()

	counters, err := telemetry.NewCounters()
	if err != nil {
		fmt.Fprintln(os.Stderr, "telemetry counters:", err)
		return cli.ExitInternalError
	}

	result, execErr := cli.Execute(ctx, inv, telemetry.NewLogger(), counters)
	if execErr != nil {
		fmt.Fprintln(os.Stderr, execErr)
	}
	cli.WriteReport(os.Stdout, result.Report)
	return result.ExitCode
}
