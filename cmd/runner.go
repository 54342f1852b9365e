package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/the-judge/playlist-sync/internal/auth"
	"github.com/the-judge/playlist-sync/internal/services"
	"github.com/the-judge/playlist-sync/internal/shared"
	"github.com/the-judge/playlist-sync/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	logger   *log.Logger
	output   io.Writer
	launcher shared.Launcher
	engine   tasks.SyncEngine

	// authorize obtains sessions for one account group; swapped in tests.
	authorize func(ctx context.Context, config *shared.Config, dataDir string, group map[string]shared.Account, scopes []string) (map[string]services.Service, error)
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Logger   *log.Logger
	Output   io.Writer
	Launcher shared.Launcher
	Engine   tasks.SyncEngine
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Launcher == nil {
		opts.Launcher = shared.PrivateLauncher{}
	}
	if opts.Engine == nil {
		opts.Engine = tasks.NewLibraryEngine(0)
	}

	r := &Runner{
		logger:   opts.Logger,
		output:   opts.Output,
		launcher: opts.Launcher,
		engine:   opts.Engine,
	}
	r.authorize = r.authorizeGroup
	return r
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		authCommand, snapshotCommand, historyCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig resolves and parses the configuration for a command invocation,
// returning the config along with the effective data directory. A missing
// file falls back to the embedded defaults; credential validation is what
// makes an empty config fatal.
func (r *Runner) loadConfig(cmd *cli.Command) (*shared.Config, string, error) {
	path := shared.FindConfigFile(cmd.String("config"))
	if path == "" {
		r.logger.Warn("no configuration file found, using defaults; create ~/.playlist_sync.yaml")
		config := shared.DefaultConfig()
		return config, shared.ResolveDataDir(config), nil
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		return nil, "", err
	}

	r.logger.Debugf("loaded config from %s", path)
	return config, shared.ResolveDataDir(config), nil
}

// authorizeGroup builds a fresh authorizer and obtains sessions for every
// account in the group.
func (r *Runner) authorizeGroup(ctx context.Context, config *shared.Config, dataDir string, group map[string]shared.Account, scopes []string) (map[string]services.Service, error) {
	authorizer := auth.NewAuthorizer(config, auth.NewTokenCache(dataDir), r.launcher, r.logger)
	return authorizer.AuthorizeGroup(ctx, group, scopes)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
