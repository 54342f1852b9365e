package main

import (
	"context"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/the-judge/playlist-sync/internal/repositories"
	"github.com/the-judge/playlist-sync/internal/shared"
	"github.com/the-judge/playlist-sync/internal/ui"
)

// History lists recent sync runs from the local history database.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	_, dataDir, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := shared.NewDatabase(filepath.Join(dataDir, historyFile))
	if err != nil {
		return err
	}
	defer db.Close()

	repo, err := repositories.NewSyncRunRepository(db)
	if err != nil {
		return err
	}

	runs, err := repo.List(cmd.Int("limit"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(runs, true)
	}

	if len(runs) == 0 {
		return r.writePlain("%s\n", ui.Warn("No sync runs recorded yet"))
	}

	r.writePlain("%s\n", ui.Title("Recent sync runs"))
	for _, run := range runs {
		status := ui.OK("ok")
		if run.Error != "" {
			status = ui.Err("failed: " + run.Error)
		}
		r.writePlain("  %s  %-10s  %4d tracks  %4d artists  %4d albums  %4d playlists  %s\n",
			run.StartedAt.Local().Format(time.DateTime), run.Mode,
			run.Tracks, run.Artists, run.Albums, run.Playlists, status)
	}

	return nil
}
