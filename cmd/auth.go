package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/the-judge/playlist-sync/internal/auth"
	"github.com/the-judge/playlist-sync/internal/shared"
	"github.com/the-judge/playlist-sync/internal/ui"
)

// Auth walks every configured account through the OAuth flow so their tokens
// are cached before a real sync. Sources get read scopes, destinations get
// write scopes.
func (r *Runner) Auth(ctx context.Context, cmd *cli.Command) error {
	onlySources := cmd.Bool("sources")
	onlyDestinations := cmd.Bool("destinations")
	if onlySources && onlyDestinations {
		return fmt.Errorf("%w: --sources and --destinations are mutually exclusive", shared.ErrInvalidFlag)
	}

	config, dataDir, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := config.ValidateCredentials(); err != nil {
		return err
	}

	if !onlyDestinations {
		r.writePlain("%s\n", ui.Title("Authorizing source accounts"))
		sessions, err := r.authorize(ctx, config, dataDir, config.Sources, auth.ReadScopes())
		if err != nil {
			return err
		}
		for _, name := range shared.SortedKeys(sessions) {
			r.writePlain("%s\n", ui.OK("✓ "+name))
		}
	}

	if !onlySources {
		r.writePlain("%s\n", ui.Title("Authorizing destination accounts"))
		sessions, err := r.authorize(ctx, config, dataDir, config.Destinations, auth.WriteScopes())
		if err != nil {
			return err
		}
		for _, name := range shared.SortedKeys(sessions) {
			r.writePlain("%s\n", ui.OK("✓ "+name))
		}
	}

	return nil
}
