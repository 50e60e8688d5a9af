// Command stacktail follows the in-flight operation of a
// CloudFormation stack and of every nested stack it
// spawns, printing events as they happen. It exits 0
// when the stack's operation succeeded (or nothing was
// running) and 1 otherwise.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/byte4ever/stacktail/config"
	"github.com/byte4ever/stacktail/eventsource"
	"github.com/byte4ever/stacktail/render"
	"github.com/byte4ever/stacktail/tailer"
)

const usage = `Usage: stacktail <stack-name>
  <stack-name> the name or ARN of the stack to tail
`

var (
	errUsage       = errors.New("missing stack name")
	errStackFailed = errors.New("stack operation failed")
)

// sourceFactory builds the raw event source; throttling
// retries are layered on top by run.
type sourceFactory func(
	ctx context.Context,
	cfg config.Config,
) (eventsource.Source, error)

func cloudFormationSource(
	ctx context.Context,
	cfg config.Config,
) (eventsource.Source, error) {
	return eventsource.NewCloudFormationFromConfig(
		ctx,
		eventsource.AWSConfig{
			Region:  cfg.Region,
			Profile: cfg.Profile,
		},
	)
}

func run(
	ctx context.Context,
	args []string,
	stdout io.Writer,
	stderr io.Writer,
	newSource sourceFactory,
) error {
	const errCtx = "stacktail"

	if len(args) < 1 || args[0] == "" {
		fmt.Fprint(stdout, usage)

		return errUsage
	}

	stackID := args[0]

	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	lvl, err := cfg.SlogLevel()
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(
		stderr, &slog.HandlerOptions{Level: lvl},
	)))

	raw, err := newSource(ctx, cfg)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	renderer, err := render.New(cfg.Format, stdout)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	tl, err := tailer.New(tailer.Config{
		Source: &eventsource.Retrying{
			Source:  raw,
			Retries: cfg.ThrottleRetries,
			Delay:   cfg.ThrottleDelay,
		},
		Renderer:     renderer,
		PollInterval: cfg.PollInterval,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	res, err := tl.Tail(ctx, stackID)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if tailer.ExitCode(res, nil) != 0 {
		fmt.Fprintln(stderr, render.Message(
			cfg.FailureMessage, res.StackName, res.Status,
		))

		return errStackFailed
	}

	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)

	err := run(
		ctx, os.Args[1:], os.Stdout, os.Stderr,
		cloudFormationSource,
	)

	stop()

	switch {
	case err == nil:
	case errors.Is(err, errUsage), errors.Is(err, errStackFailed):
		os.Exit(1)
	default:
		slog.Error(err.Error())
		os.Exit(1)
	}
}
