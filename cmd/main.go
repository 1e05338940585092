package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"slide-narrator/cli"
	"slide-narrator/config"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("Failed to load .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Stdout, os.Args[1:])
	stop()

	if err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, outW io.Writer, args []string) error {
	workspace := config.GetWorkspaceConfig()

	invocation, shouldExit, err := cli.Parse(args, outW, workspace)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	logConfig, err := config.GetLogConfig()
	if err != nil {
		return &cli.ExitError{Code: 2, Message: err.Error()}
	}
	if invocation.Movie != nil && invocation.Movie.Quiet {
		logConfig.Level = "warn"
	}

	a, err := newApp(outW, os.Stderr, workspace, logConfig)
	if err != nil {
		return err
	}
	defer a.close()

	switch invocation.Command {
	case cli.CommandImages:
		return a.runImages(ctx, invocation.Images)
	case cli.CommandVoice:
		return a.runVoice(ctx, invocation.Voice)
	case cli.CommandMovie:
		return a.runMovie(ctx, invocation.Movie)
	case cli.CommandCreateConfig:
		return a.runCreateConfig(invocation.CreateConfig)
	case cli.CommandBuild:
		return a.runBuild(ctx, invocation.Build)
	case cli.CommandServe:
		return a.runServe(ctx, invocation.Serve)
	case cli.CommandWatch:
		return a.runWatch(ctx, invocation.Watch)
	}

	return &cli.ExitError{Code: 2, Message: fmt.Sprintf("unknown command %q", invocation.Command)}
}
