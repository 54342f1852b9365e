package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/the-judge/playlist-sync/internal/shared"
)

// flagError tags parse and usage errors from the CLI layer so they share the
// argument-error exit code with the hand-checked flag combinations.
func flagError(ctx context.Context, cmd *cli.Command, err error, isSubcommand bool) error {
	return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
}

// tagUsageErrors installs flagError on every command in the tree. The CLI
// library consults OnUsageError on the command that failed to parse, not on
// the root, so subcommands need their own hook.
func tagUsageErrors(commands []*cli.Command) {
	for _, command := range commands {
		command.OnUsageError = flagError
		tagUsageErrors(command.Commands)
	}
}

// newApp assembles the CLI around a Runner.
func newApp(runner *Runner) *cli.Command {
	app := &cli.Command{
		Name:         "playlist-sync",
		Usage:        "Copy saved tracks, artists, albums and playlists between Spotify accounts",
		Version:      "1.0.0",
		Flags:        rootFlags(),
		Action:       runner.Sync,
		Commands:     runner.register(),
		OnUsageError: flagError,
	}
	tagUsageErrors(app.Commands)
	return app
}

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	if err := newApp(runner).Run(context.Background(), os.Args); err != nil {
		switch {
		case errors.Is(err, shared.ErrInvalidFlag):
			logger.Errorf("%v", err)
			os.Exit(2)
		case errors.Is(err, shared.ErrMissingConfig),
			errors.Is(err, shared.ErrInvalidConfig),
			errors.Is(err, shared.ErrMissingCredentials):
			logger.Errorf("%v", err)
			os.Exit(1)
		default:
			logger.Fatalf("application error: %v", err)
		}
	}
}
